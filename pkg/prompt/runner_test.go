package prompt

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/geocode"
	"github.com/goliatone/go-formwizard/pkg/model"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

// scriptDriver replays queued answers instead of talking to a terminal.
type scriptDriver struct {
	inputs   []string
	confirms []bool
	selects  []int
	multis   [][]int
	infos    []string
}

func (d *scriptDriver) Input(_ context.Context, _ InputConfig) (string, error) {
	if len(d.inputs) == 0 {
		return "", ErrDriverExhausted
	}
	out := d.inputs[0]
	d.inputs = d.inputs[1:]
	return out, nil
}

func (d *scriptDriver) Password(ctx context.Context, cfg InputConfig) (string, error) {
	return d.Input(ctx, cfg)
}

func (d *scriptDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if len(d.confirms) == 0 {
		return false, ErrDriverExhausted
	}
	out := d.confirms[0]
	d.confirms = d.confirms[1:]
	return out, nil
}

func (d *scriptDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if len(d.selects) == 0 {
		return 0, ErrDriverExhausted
	}
	out := d.selects[0]
	d.selects = d.selects[1:]
	return out, nil
}

func (d *scriptDriver) MultiSelect(_ context.Context, _ SelectConfig) ([]int, error) {
	if len(d.multis) == 0 {
		return nil, ErrDriverExhausted
	}
	out := d.multis[0]
	d.multis = d.multis[1:]
	return out, nil
}

func (d *scriptDriver) TextArea(ctx context.Context, cfg TextAreaConfig) (string, error) {
	return d.Input(ctx, InputConfig{})
}

func (d *scriptDriver) Info(_ context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

func testQuestionnaire() model.Questionnaire {
	return model.Questionnaire{
		ID:    "runner-test",
		Title: "Runner test",
		Steps: []model.Step{
			{
				ID:    "identity",
				Title: "About you",
				Sections: []model.Section{
					{
						ID: "contact",
						Fields: []model.Field{
							{Name: "fullName", Type: model.FieldTypeString, Required: true},
							{
								Name:     "employed",
								Type:     model.FieldTypeSelect,
								Required: true,
								Options: []model.Option{
									{Value: "yes"},
									{Value: "no"},
								},
							},
						},
					},
					{
						ID:          "currentRole",
						VisibleWhen: `employed == "yes"`,
						Fields: []model.Field{
							{Name: "jobTitle", Type: model.FieldTypeString, Required: true},
						},
					},
				},
			},
			{
				ID:    "preferences",
				Title: "Preferences",
				Sections: []model.Section{
					{
						ID: "motivations",
						Fields: []model.Field{
							{
								Name:          "motivations",
								Type:          model.FieldTypeMultiSelect,
								Ranked:        true,
								MinSelections: 1,
								MaxSelections: 2,
								Options: []model.Option{
									{Value: "salary"},
									{Value: "location"},
									{Value: "growth"},
								},
							},
							{Name: "consent", Type: model.FieldTypeBoolean, Required: true},
						},
					},
				},
			},
		},
	}
}

func TestRunnerDrivesSessionToSubmission(t *testing.T) {
	t.Parallel()

	session, err := wizard.New(testQuestionnaire())
	if err != nil {
		t.Fatalf("wizard.New: %v", err)
	}

	driver := &scriptDriver{
		inputs: []string{"Nora Leroy", "Line cook"},
		// employed=yes, then ranked picks: growth, salary, stop at max.
		selects:  []int{0, 2, 0},
		confirms: []bool{true},
	}
	runner := NewRunner(WithDriver(driver))

	snap, err := runner.Run(context.Background(), session)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if session.State() != wizard.StateSubmitted {
		t.Fatalf("state = %q, want submitted", session.State())
	}

	want := map[string]any{
		"fullName":    "Nora Leroy",
		"employed":    "yes",
		"jobTitle":    "Line cook",
		"motivations": []string{"growth", "salary"},
		"consent":     true,
	}
	if diff := cmp.Diff(want, snap.Answers); diff != "" {
		t.Fatalf("answers mismatch (-want +got):\n%s", diff)
	}
}

func TestRunnerSkipsHiddenConditionalSection(t *testing.T) {
	t.Parallel()

	session, err := wizard.New(testQuestionnaire())
	if err != nil {
		t.Fatalf("wizard.New: %v", err)
	}

	driver := &scriptDriver{
		inputs: []string{"Nora Leroy"},
		// employed=no, one ranked pick, then the "(done)" entry.
		selects:  []int{1, 0, 2},
		confirms: []bool{true},
	}
	runner := NewRunner(WithDriver(driver))

	snap, err := runner.Run(context.Background(), session)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, ok := snap.Answers["jobTitle"]; ok {
		t.Fatal("jobTitle prompted despite hidden section")
	}
}

func TestRunnerReportsCheckFailuresAndRetries(t *testing.T) {
	t.Parallel()

	session, err := wizard.New(testQuestionnaire())
	if err != nil {
		t.Fatalf("wizard.New: %v", err)
	}

	driver := &scriptDriver{
		// First pass leaves fullName blank; the whole step re-prompts.
		inputs: []string{"", "Cook", "Nora Leroy", "Cook"},
		// employed twice, one ranked pick, then "(done)".
		selects:  []int{0, 0, 0, 2},
		confirms: []bool{true},
	}
	runner := NewRunner(WithDriver(driver))

	if _, err := runner.Run(context.Background(), session); err != nil {
		t.Fatalf("run: %v", err)
	}

	found := false
	for _, msg := range driver.infos {
		if msg == "Full Name is required" {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing required-field message, infos: %v", driver.infos)
	}
}

func TestRunnerAddressLookupFailureKeepsText(t *testing.T) {
	t.Parallel()

	q := model.Questionnaire{
		ID:    "address-test",
		Title: "Address",
		Steps: []model.Step{{
			ID:    "only",
			Title: "Only",
			Sections: []model.Section{{
				ID: "loc",
				Fields: []model.Field{
					{Name: "address", Type: model.FieldTypeAddress, Required: true},
				},
			}},
		}},
	}
	session, err := wizard.New(q)
	if err != nil {
		t.Fatalf("wizard.New: %v", err)
	}

	resolver, err := geocode.NewResolver(geocode.ProviderFunc(
		func(context.Context, string) ([]geocode.Location, error) {
			return nil, geocode.ErrUnavailable
		}))
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}

	driver := &scriptDriver{inputs: []string{"12 rue des Lilas, Lyon"}}
	runner := NewRunner(WithDriver(driver), WithResolver(resolver))

	snap, err := runner.Run(context.Background(), session)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := snap.Answers["address"]; got != "12 rue des Lilas, Lyon" {
		t.Fatalf("address = %v", got)
	}
	if _, ok := snap.Answers["address"+wizard.SuffixLatitude]; ok {
		t.Fatal("latitude stored despite failed lookup")
	}
}

func TestRunnerAddressLookupSuccessStoresCoordinates(t *testing.T) {
	t.Parallel()

	q := model.Questionnaire{
		ID:    "address-ok",
		Title: "Address",
		Steps: []model.Step{{
			ID:    "only",
			Title: "Only",
			Sections: []model.Section{{
				ID: "loc",
				Fields: []model.Field{
					{Name: "address", Type: model.FieldTypeAddress, Required: true},
				},
			}},
		}},
	}
	session, err := wizard.New(q)
	if err != nil {
		t.Fatalf("wizard.New: %v", err)
	}

	resolver, err := geocode.NewResolver(geocode.ProviderFunc(
		func(_ context.Context, query string) ([]geocode.Location, error) {
			return []geocode.Location{{
				Formatted: "12 Rue des Lilas, 69003 Lyon",
				Latitude:  45.7578,
				Longitude: 4.8655,
				PlaceID:   "place-123",
			}}, nil
		}))
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}

	driver := &scriptDriver{inputs: []string{"12 rue des lilas lyon"}}
	runner := NewRunner(WithDriver(driver), WithResolver(resolver))

	snap, err := runner.Run(context.Background(), session)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := snap.Answers["address"]; got != "12 Rue des Lilas, 69003 Lyon" {
		t.Fatalf("address = %v", got)
	}
	if got := snap.Answers["address"+wizard.SuffixValidated]; got != true {
		t.Fatalf("validated = %v", got)
	}
	if got := snap.Answers["address"+wizard.SuffixLatitude]; got != 45.7578 {
		t.Fatalf("latitude = %v", got)
	}
}
