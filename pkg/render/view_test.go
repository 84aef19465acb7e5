package render

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/model"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

func recapQuestionnaire() model.Questionnaire {
	return model.Questionnaire{
		ID:      "candidate-intake",
		Title:   "Candidate Intake",
		Version: "3",
		Steps: []model.Step{
			{
				ID:    "profile",
				Title: "Profile",
				Intro: "Tell us about yourself.",
				Sections: []model.Section{{
					ID: "identity",
					Fields: []model.Field{
						{Name: "fullName", Type: model.FieldTypeString, Label: "Full Name"},
						{Name: "email", Type: model.FieldTypeString},
						{Name: "address", Type: model.FieldTypeAddress},
					},
				}},
			},
			{
				ID:    "situation",
				Title: "Situation",
				Sections: []model.Section{
					{
						ID: "status",
						Fields: []model.Field{
							{Name: "employmentStatus", Type: model.FieldTypeSelect, Options: []model.Option{
								{Value: "employed", Label: "Currently employed"},
								{Value: "searching", Label: "Looking for work"},
							}},
							{Name: "transportMethods", Type: model.FieldTypeMultiSelect, MaxSelections: 2, Options: []model.Option{
								{Value: "car", Label: "Car"},
								{Value: "bike", Label: "Bicycle"},
								{Value: "transit", Label: "Public transit"},
							}},
						},
					},
					{
						ID:          "employed",
						VisibleWhen: `employmentStatus == "employed"`,
						Fields: []model.Field{
							{Name: "jobTitle", Type: model.FieldTypeString},
						},
					},
				},
			},
			{
				ID:    "compensation",
				Title: "Compensation",
				Sections: []model.Section{{
					ID: "salary",
					Fields: []model.Field{
						{Name: "salaryMin", Type: model.FieldTypeNumber},
						{Name: "weeklyHours", Type: model.FieldTypeInteger},
						{Name: "motivations", Type: model.FieldTypeMultiSelect, Ranked: true, MaxSelections: 3, Options: []model.Option{
							{Value: "pay", Label: "Pay"},
							{Value: "growth", Label: "Growth"},
							{Value: "stability", Label: "Stability"},
						}},
						{Name: "consent", Type: model.FieldTypeBoolean},
					},
				}},
			},
		},
	}
}

func TestBuildViewResolvesLabelsAndOrder(t *testing.T) {
	t.Parallel()

	completed := time.Date(2026, time.March, 9, 14, 30, 0, 0, time.UTC)
	snap := wizard.Snapshot{
		QuestionnaireID: "candidate-intake",
		CompletedAt:     completed,
		Answers: map[string]any{
			"fullName":          "Alex Moreau",
			"email":             "alex.moreau@example.com",
			"address":           "12 Rue de la Paix, 75002 Paris",
			"address_validated": true,
			"address_latitude":  48.8692,
			"address_longitude": 2.3310,
			"employmentStatus":  "employed",
			"transportMethods":  []string{"transit", "bike"},
			"jobTitle":          "Warehouse Operator",
			"salaryMin":         float64(28500),
			"weeklyHours":       35,
			"motivations":       []any{"growth", "pay"},
			"consent":           true,
		},
	}

	view := BuildView(recapQuestionnaire(), snap)

	if view.QuestionnaireID != "candidate-intake" || view.Title != "Candidate Intake" {
		t.Fatalf("header mismatch: %+v", view)
	}
	if !view.CompletedAt.Equal(completed) {
		t.Fatalf("completedAt = %v", view.CompletedAt)
	}
	if view.Simulated {
		t.Fatalf("simulated should default to false")
	}
	if len(view.Steps) != 3 {
		t.Fatalf("steps = %d, want 3", len(view.Steps))
	}

	profile := view.Steps[0]
	if profile.Intro != "Tell us about yourself." {
		t.Fatalf("intro lost: %q", profile.Intro)
	}
	wantProfile := []Row{
		{Field: "fullName", Label: "Full Name", Value: "Alex Moreau"},
		{Field: "email", Label: "Email", Value: "alex.moreau@example.com"},
		{Field: "address", Label: "Address", Value: "12 Rue de la Paix, 75002 Paris", Note: "verified"},
	}
	if diff := cmp.Diff(wantProfile, profile.Rows); diff != "" {
		t.Fatalf("profile rows (-want +got):\n%s", diff)
	}

	situation := view.Steps[1]
	wantSituation := []Row{
		{Field: "employmentStatus", Label: "Employment Status", Value: "Currently employed"},
		{
			Field:  "transportMethods",
			Label:  "Transport Methods",
			Value:  "Public transit, Bicycle",
			Values: []string{"Public transit", "Bicycle"},
		},
		{Field: "jobTitle", Label: "Job Title", Value: "Warehouse Operator"},
	}
	if diff := cmp.Diff(wantSituation, situation.Rows); diff != "" {
		t.Fatalf("situation rows (-want +got):\n%s", diff)
	}

	compensation := view.Steps[2]
	wantCompensation := []Row{
		{Field: "salaryMin", Label: "Salary Min", Value: "28500"},
		{Field: "weeklyHours", Label: "Weekly Hours", Value: "35"},
		{
			Field:  "motivations",
			Label:  "Motivations",
			Value:  "Growth, Pay",
			Values: []string{"Growth", "Pay"},
			Ranked: true,
		},
		{Field: "consent", Label: "Consent", Value: "Yes"},
	}
	if diff := cmp.Diff(wantCompensation, compensation.Rows); diff != "" {
		t.Fatalf("compensation rows (-want +got):\n%s", diff)
	}
}

func TestBuildViewSkipsEmptyAnswersAndSteps(t *testing.T) {
	t.Parallel()

	snap := wizard.Snapshot{
		QuestionnaireID: "candidate-intake",
		Answers: map[string]any{
			"fullName":         "  ",
			"email":            "a@b.example",
			"transportMethods": []string{},
		},
	}

	view := BuildView(recapQuestionnaire(), snap)

	if len(view.Steps) != 1 {
		t.Fatalf("expected only the profile step, got %d", len(view.Steps))
	}
	if len(view.Steps[0].Rows) != 1 || view.Steps[0].Rows[0].Field != "email" {
		t.Fatalf("rows = %+v", view.Steps[0].Rows)
	}
	if !view.HasRows() {
		t.Fatalf("HasRows should be true")
	}
}

func TestBuildViewMarksUnverifiedAddressesAndSimulatedData(t *testing.T) {
	t.Parallel()

	snap := wizard.Snapshot{
		Answers: map[string]any{
			"address":      "somewhere vague",
			"cv_simulated": true,
		},
	}

	view := BuildView(recapQuestionnaire(), snap)

	if !view.Simulated {
		t.Fatalf("simulated flag not picked up")
	}
	if view.QuestionnaireID != "candidate-intake" {
		t.Fatalf("questionnaire id should fall back to the definition")
	}
	row := view.Steps[0].Rows[0]
	if row.Field != "address" || row.Note != "unverified" {
		t.Fatalf("address row = %+v", row)
	}
}
