package wizard

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/geocode"
	"github.com/goliatone/go-formwizard/pkg/model"
	"github.com/goliatone/go-formwizard/pkg/selection"
	"github.com/goliatone/go-formwizard/pkg/visibility"
)

func testQuestionnaire() model.Questionnaire {
	return model.Questionnaire{
		ID:    "candidate-intake",
		Title: "Candidate Intake",
		Steps: []model.Step{
			{
				ID:    "profile",
				Title: "Your profile",
				Sections: []model.Section{
					{
						ID: "identity",
						Fields: []model.Field{
							{Name: "fullName", Type: model.FieldTypeString, Required: true},
							{Name: "email", Type: model.FieldTypeString, Required: true, Validations: []model.ValidationRule{
								{Kind: model.ValidationRulePattern, Params: map[string]string{"pattern": `^[^@\s]+@[^@\s]+$`}},
							}},
							{Name: "address", Type: model.FieldTypeAddress},
						},
					},
				},
			},
			{
				ID:    "situation",
				Title: "Your situation",
				Sections: []model.Section{
					{
						ID: "status",
						Fields: []model.Field{
							{Name: "employmentStatus", Type: model.FieldTypeSelect, Required: true, Options: []model.Option{
								{Value: "employed"}, {Value: "searching"},
							}},
							{Name: "transportMethods", Type: model.FieldTypeMultiSelect, MinSelections: 1, MaxSelections: 2, Options: []model.Option{
								{Value: "car"}, {Value: "bike"}, {Value: "transit"}, {Value: "walk"},
							}},
						},
					},
					{
						ID:          "currentRole",
						VisibleWhen: `employmentStatus == "employed"`,
						Fields: []model.Field{
							{Name: "jobTitle", Type: model.FieldTypeString, Required: true},
						},
					},
				},
			},
			{
				ID:    "compensation",
				Title: "Compensation",
				Sections: []model.Section{
					{
						ID: "salary",
						Fields: []model.Field{
							{Name: "salaryMin", Type: model.FieldTypeNumber, Required: true},
							{Name: "salaryMax", Type: model.FieldTypeNumber, Required: true},
							{Name: "motivations", Type: model.FieldTypeMultiSelect, Ranked: true, MaxSelections: 3, Options: []model.Option{
								{Value: "salary"}, {Value: "remote"}, {Value: "growth"}, {Value: "stability"},
							}},
							{Name: "consent", Type: model.FieldTypeBoolean, Required: true},
						},
					},
				},
				Ranges: []model.RangeRule{{Min: "salaryMin", Max: "salaryMax"}},
			},
		},
	}
}

func newTestSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	session, err := New(testQuestionnaire(), opts...)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return session
}

func mustSet(t *testing.T, s *Session, field string, value any) {
	t.Helper()
	if err := s.Set(field, value); err != nil {
		t.Fatalf("Set(%q) returned error: %v", field, err)
	}
}

// fillStep writes passing answers for the given step id.
func fillStep(t *testing.T, s *Session, stepID string) {
	t.Helper()
	switch stepID {
	case "profile":
		mustSet(t, s, "fullName", "Dana Ortiz")
		mustSet(t, s, "email", "dana@example.com")
	case "situation":
		mustSet(t, s, "employmentStatus", "searching")
		if _, err := s.Toggle("transportMethods", "bike"); err != nil {
			t.Fatalf("Toggle returned error: %v", err)
		}
	case "compensation":
		mustSet(t, s, "salaryMin", 38000)
		mustSet(t, s, "salaryMax", 45000)
		mustSet(t, s, "consent", true)
	default:
		t.Fatalf("unknown step %q", stepID)
	}
}

func advanceTo(t *testing.T, s *Session, stepID string) {
	t.Helper()
	for s.Step().ID != stepID {
		fillStep(t, s, s.Step().ID)
		result, err := s.Advance()
		if err != nil {
			t.Fatalf("Advance returned error: %v", err)
		}
		if !result.OK() {
			t.Fatalf("Advance blocked: %v", result.Messages())
		}
	}
}

func TestSessionStartsOnFirstStep(t *testing.T) {
	t.Parallel()

	session := newTestSession(t)

	if got := session.Step().ID; got != "profile" {
		t.Fatalf("Step().ID = %q, want profile", got)
	}
	if got := session.State(); got != StateActive {
		t.Fatalf("State() = %q, want active", got)
	}

	progress := session.Progress()
	want := Progress{Current: 1, Total: 3, Ratio: 1.0 / 3.0}
	if diff := cmp.Diff(want, progress); diff != "" {
		t.Fatalf("Progress mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckCollectsEveryIssue(t *testing.T) {
	t.Parallel()

	session := newTestSession(t)
	mustSet(t, session, "email", "not-an-email")

	result := session.Check()
	if result.OK() {
		t.Fatalf("expected issues on an empty profile step")
	}

	want := CheckResult{
		Step: "profile",
		Issues: []Issue{
			{Field: "fullName", Label: "Full Name", Message: "is required", Kind: IssueRequired},
			{Field: "email", Label: "Email", Message: "does not match the expected format", Kind: IssueValidation},
		},
	}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Fatalf("CheckResult mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckIsIdempotent(t *testing.T) {
	t.Parallel()

	session := newTestSession(t)
	first := session.Check()
	second := session.Check()

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("repeated Check diverged (-first +second):\n%s", diff)
	}
}

func TestAdvanceBlockedUntilStepPasses(t *testing.T) {
	t.Parallel()

	session := newTestSession(t)

	result, err := session.Advance()
	if err != nil {
		t.Fatalf("Advance returned error: %v", err)
	}
	if result.OK() {
		t.Fatalf("expected a blocked advance")
	}
	if got := session.Step().ID; got != "profile" {
		t.Fatalf("blocked advance moved to %q", got)
	}

	fillStep(t, session, "profile")
	result, err = session.Advance()
	if err != nil {
		t.Fatalf("Advance returned error: %v", err)
	}
	if !result.OK() {
		t.Fatalf("Advance still blocked: %v", result.Messages())
	}
	if got := session.Step().ID; got != "situation" {
		t.Fatalf("Step().ID = %q, want situation", got)
	}
}

func TestHiddenSectionExcludedFromCheck(t *testing.T) {
	t.Parallel()

	session := newTestSession(t)
	advanceTo(t, session, "situation")

	mustSet(t, session, "employmentStatus", "searching")
	if _, err := session.Toggle("transportMethods", "car"); err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}

	if result := session.Check(); !result.OK() {
		t.Fatalf("jobTitle required while its section is hidden: %v", result.Messages())
	}

	mustSet(t, session, "employmentStatus", "employed")
	result := session.Check()
	if result.OK() {
		t.Fatalf("expected jobTitle to be required once the section is shown")
	}
	if got := result.Issues[0].Field; got != "jobTitle" {
		t.Fatalf("Issues[0].Field = %q, want jobTitle", got)
	}
}

func TestHiddenSectionKeepsItsAnswers(t *testing.T) {
	t.Parallel()

	session := newTestSession(t)
	advanceTo(t, session, "situation")

	mustSet(t, session, "employmentStatus", "employed")
	mustSet(t, session, "jobTitle", "Forklift Operator")
	if _, err := session.Toggle("transportMethods", "car"); err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}

	mustSet(t, session, "employmentStatus", "searching")

	if result := session.Check(); !result.OK() {
		t.Fatalf("stale hidden answer blocked the step: %v", result.Messages())
	}
	if got := session.GetString("jobTitle"); got != "Forklift Operator" {
		t.Fatalf("hidden answer was dropped, got %q", got)
	}
}

func TestVisibleSectionsFollowControllingField(t *testing.T) {
	t.Parallel()

	session := newTestSession(t)
	advanceTo(t, session, "situation")

	ids := func() []string {
		var out []string
		for _, sec := range session.VisibleSections() {
			out = append(out, sec.ID)
		}
		return out
	}

	if diff := cmp.Diff([]string{"status"}, ids()); diff != "" {
		t.Fatalf("sections before controlling answer (-want +got):\n%s", diff)
	}

	mustSet(t, session, "employmentStatus", "employed")
	if diff := cmp.Diff([]string{"status", "currentRole"}, ids()); diff != "" {
		t.Fatalf("sections after controlling answer (-want +got):\n%s", diff)
	}
}

func TestToggleAtCapacity(t *testing.T) {
	t.Parallel()

	session := newTestSession(t)
	advanceTo(t, session, "situation")

	for _, option := range []string{"car", "bike"} {
		if _, err := session.Toggle("transportMethods", option); err != nil {
			t.Fatalf("Toggle(%q) returned error: %v", option, err)
		}
	}

	_, err := session.Toggle("transportMethods", "walk")
	if !errors.Is(err, selection.ErrAtCapacity) {
		t.Fatalf("Toggle = %v, want ErrAtCapacity", err)
	}
	if diff := cmp.Diff([]string{"car", "bike"}, session.Selection("transportMethods")); diff != "" {
		t.Fatalf("rejected toggle mutated the selection (-want +got):\n%s", diff)
	}

	got, _ := session.Get("transportMethods")
	if diff := cmp.Diff([]string{"car", "bike"}, got); diff != "" {
		t.Fatalf("answer bag out of sync with group (-want +got):\n%s", diff)
	}
}

func TestRankingCompressesAfterRemoval(t *testing.T) {
	t.Parallel()

	session := newTestSession(t)
	advanceTo(t, session, "compensation")

	for _, option := range []string{"salary", "remote", "growth"} {
		if _, err := session.Toggle("motivations", option); err != nil {
			t.Fatalf("Toggle(%q) returned error: %v", option, err)
		}
	}
	if _, err := session.Toggle("motivations", "remote"); err != nil {
		t.Fatalf("Toggle off returned error: %v", err)
	}

	want := []selection.Ranked{{Value: "salary", Rank: 1}, {Value: "growth", Rank: 2}}
	if diff := cmp.Diff(want, session.Ranking("motivations")); diff != "" {
		t.Fatalf("Ranking mismatch (-want +got):\n%s", diff)
	}
}

func TestRangeRuleBlocksInvertedSalaries(t *testing.T) {
	t.Parallel()

	session := newTestSession(t)
	advanceTo(t, session, "compensation")

	mustSet(t, session, "salaryMin", 52000)
	mustSet(t, session, "salaryMax", 40000)
	mustSet(t, session, "consent", true)

	result := session.Check()
	if result.OK() {
		t.Fatalf("expected the inverted salary range to block")
	}
	issue := result.Issues[len(result.Issues)-1]
	if issue.Kind != IssueRange || issue.Field != "salaryMin" {
		t.Fatalf("unexpected range issue: %+v", issue)
	}

	mustSet(t, session, "salaryMax", 60000)
	if result := session.Check(); !result.OK() {
		t.Fatalf("fixed range still blocked: %v", result.Messages())
	}
}

func TestRequiredBooleanMustBeTrue(t *testing.T) {
	t.Parallel()

	session := newTestSession(t)
	advanceTo(t, session, "compensation")

	mustSet(t, session, "salaryMin", 38000)
	mustSet(t, session, "salaryMax", 45000)
	mustSet(t, session, "consent", false)

	result := session.Check()
	if result.OK() {
		t.Fatalf("expected unchecked consent to block")
	}
	var found bool
	for _, issue := range result.Issues {
		if issue.Field == "consent" && issue.Message == "must be accepted" {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing consent issue in %+v", result.Issues)
	}
}

func TestRetreatNeverValidates(t *testing.T) {
	t.Parallel()

	session := newTestSession(t)
	advanceTo(t, session, "situation")

	mustSet(t, session, "employmentStatus", "")
	if !session.Retreat() {
		t.Fatalf("Retreat from step 2 reported false")
	}
	if got := session.Step().ID; got != "profile" {
		t.Fatalf("Step().ID = %q, want profile", got)
	}
	if session.Retreat() {
		t.Fatalf("Retreat on the first step must be a no-op")
	}
}

func TestJumpBackNeverForward(t *testing.T) {
	t.Parallel()

	session := newTestSession(t)
	advanceTo(t, session, "compensation")

	if session.JumpBack(5) {
		t.Fatalf("JumpBack accepted a forward target")
	}
	if session.JumpBack(3) {
		t.Fatalf("JumpBack accepted the current step")
	}
	if !session.JumpBack(1) {
		t.Fatalf("JumpBack rejected a backward target")
	}
	if got := session.Progress().Current; got != 1 {
		t.Fatalf("Progress.Current = %d, want 1", got)
	}
}

func TestSubmitLifecycle(t *testing.T) {
	t.Parallel()

	stamp := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	var hooked []Snapshot
	session := newTestSession(t,
		WithClock(func() time.Time { return stamp }),
		WithSubmitHook(func(_ context.Context, snap Snapshot) error {
			hooked = append(hooked, snap)
			return nil
		}),
	)

	advanceTo(t, session, "compensation")
	fillStep(t, session, "compensation")

	if _, err := session.Advance(); !errors.Is(err, ErrLastStep) {
		t.Fatalf("Advance on last step = %v, want ErrLastStep", err)
	}

	snap, err := session.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if snap.QuestionnaireID != "candidate-intake" {
		t.Fatalf("QuestionnaireID = %q", snap.QuestionnaireID)
	}
	if !snap.CompletedAt.Equal(stamp) {
		t.Fatalf("CompletedAt = %v, want %v", snap.CompletedAt, stamp)
	}
	if got := snap.Answers["fullName"]; got != "Dana Ortiz" {
		t.Fatalf("snapshot answers missing fullName, got %v", got)
	}
	if len(hooked) != 1 {
		t.Fatalf("submit hook ran %d times, want 1", len(hooked))
	}

	if got := session.State(); got != StateSubmitted {
		t.Fatalf("State() = %q, want submitted", got)
	}
	if err := session.Set("fullName", "late edit"); !errors.Is(err, ErrSubmitted) {
		t.Fatalf("Set after submit = %v, want ErrSubmitted", err)
	}
	if _, err := session.Advance(); !errors.Is(err, ErrSubmitted) {
		t.Fatalf("Advance after submit = %v, want ErrSubmitted", err)
	}
	if session.Retreat() {
		t.Fatalf("Retreat after submit must be a no-op")
	}
	if _, err := session.Submit(context.Background()); !errors.Is(err, ErrSubmitted) {
		t.Fatalf("second Submit = %v, want ErrSubmitted", err)
	}
}

func TestSubmitBlockedCollectsIssues(t *testing.T) {
	t.Parallel()

	session := newTestSession(t)
	advanceTo(t, session, "compensation")

	_, err := session.Submit(context.Background())
	var blocked *BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("Submit = %v, want BlockedError", err)
	}
	if len(blocked.Result.Issues) < 3 {
		t.Fatalf("expected every compensation issue, got %+v", blocked.Result.Issues)
	}
	if got := session.State(); got != StateActive {
		t.Fatalf("blocked submit flipped state to %q", got)
	}
}

func TestSubmitBeforeLastStep(t *testing.T) {
	t.Parallel()

	session := newTestSession(t)
	if _, err := session.Submit(context.Background()); !errors.Is(err, ErrNotLastStep) {
		t.Fatalf("Submit = %v, want ErrNotLastStep", err)
	}
}

func TestSubmitHookFailureKeepsSessionSubmitted(t *testing.T) {
	t.Parallel()

	session := newTestSession(t, WithSubmitHook(func(context.Context, Snapshot) error {
		return fmt.Errorf("store offline")
	}))
	advanceTo(t, session, "compensation")
	fillStep(t, session, "compensation")

	snap, err := session.Submit(context.Background())
	if err == nil {
		t.Fatalf("expected the hook failure to surface")
	}
	if snap.QuestionnaireID == "" {
		t.Fatalf("failed hook dropped the snapshot")
	}
	if got := session.State(); got != StateSubmitted {
		t.Fatalf("State() = %q, want submitted", got)
	}
}

func TestApplyAddressStoresCompanionKeys(t *testing.T) {
	t.Parallel()

	session := newTestSession(t)
	mustSet(t, session, "address", "12 rue de la paix")

	applied := session.ApplyAddress("address", geocode.Location{
		Query:     "12 rue de la paix",
		Formatted: "12 Rue de la Paix, 75002 Paris",
		Latitude:  48.8693,
		Longitude: 2.3312,
		PlaceID:   "pl_123",
	})
	if !applied {
		t.Fatalf("ApplyAddress reported false for a matching query")
	}

	if got := session.GetString("address"); got != "12 Rue de la Paix, 75002 Paris" {
		t.Fatalf("address = %q", got)
	}
	if lat, _ := session.Get("address_latitude"); lat != 48.8693 {
		t.Fatalf("address_latitude = %v", lat)
	}
	if validated, _ := session.Get("address_validated"); validated != true {
		t.Fatalf("address_validated = %v", validated)
	}
	if place, _ := session.Get("address_place_id"); place != "pl_123" {
		t.Fatalf("address_place_id = %v", place)
	}
}

func TestApplyAddressDropsLateResolutions(t *testing.T) {
	t.Parallel()

	session := newTestSession(t)
	mustSet(t, session, "address", "a completely different street")

	applied := session.ApplyAddress("address", geocode.Location{
		Query:     "12 rue de la paix",
		Formatted: "12 Rue de la Paix, 75002 Paris",
		Latitude:  48.8693,
		Longitude: 2.3312,
	})
	if applied {
		t.Fatalf("late resolution must be dropped once the text changed")
	}
	if got := session.GetString("address"); got != "a completely different street" {
		t.Fatalf("dropped resolution still mutated the field: %q", got)
	}
	if _, ok := session.Get("address_latitude"); ok {
		t.Fatalf("dropped resolution stored coordinates")
	}

	if session.ApplyAddress("fullName", geocode.Location{Query: "x", Latitude: 1, Longitude: 1}) {
		t.Fatalf("ApplyAddress accepted a non-address field")
	}
}

func TestImportAnswersKeepsTypedValues(t *testing.T) {
	t.Parallel()

	session := newTestSession(t)
	mustSet(t, session, "fullName", "Typed By Hand")

	err := session.ImportAnswers(map[string]any{
		"fullName":         "Parsed Name",
		"email":            "parsed@example.com",
		"transportMethods": []any{"bike", "rocket", "car", "walk"},
	}, false)
	if err != nil {
		t.Fatalf("ImportAnswers returned error: %v", err)
	}

	if got := session.GetString("fullName"); got != "Typed By Hand" {
		t.Fatalf("import clobbered a typed answer: %q", got)
	}
	if got := session.GetString("email"); got != "parsed@example.com" {
		t.Fatalf("import skipped an empty field: %q", got)
	}

	// unknown option dropped, limit of two enforced
	if diff := cmp.Diff([]string{"bike", "car"}, session.Selection("transportMethods")); diff != "" {
		t.Fatalf("imported selection not normalized (-want +got):\n%s", diff)
	}
}

func TestPrefillSeedsSelectionGroups(t *testing.T) {
	t.Parallel()

	session := newTestSession(t, WithPrefill(map[string]any{
		"transportMethods": []any{"walk", "transit"},
		"fullName":         "Dana Ortiz",
	}))

	if diff := cmp.Diff([]string{"walk", "transit"}, session.Selection("transportMethods")); diff != "" {
		t.Fatalf("prefill did not seed the group (-want +got):\n%s", diff)
	}
	got, _ := session.Get("transportMethods")
	if diff := cmp.Diff([]string{"walk", "transit"}, got); diff != "" {
		t.Fatalf("prefill not normalized to []string (-want +got):\n%s", diff)
	}
}

func TestEvaluatorErrorKeepsSectionVisible(t *testing.T) {
	t.Parallel()

	broken := visibility.EvaluatorFunc(func(string, string, visibility.Context) (bool, error) {
		return false, fmt.Errorf("rule engine offline")
	})
	session := newTestSession(t, WithEvaluator(broken))

	// the mutation lands even though the recompute failed
	if err := session.Set("fullName", "Dana Ortiz"); err == nil {
		t.Fatalf("expected Set to surface the evaluation failure")
	}
	if got := session.GetString("fullName"); got != "Dana Ortiz" {
		t.Fatalf("failed recompute dropped the mutation, got %q", got)
	}
	_ = session.Set("email", "dana@example.com")

	result, err := session.Advance()
	if err != nil {
		t.Fatalf("Advance returned error: %v", err)
	}
	if !result.OK() {
		t.Fatalf("Advance blocked: %v", result.Messages())
	}

	var ids []string
	for _, sec := range session.VisibleSections() {
		ids = append(ids, sec.ID)
	}
	if diff := cmp.Diff([]string{"status", "currentRole"}, ids); diff != "" {
		t.Fatalf("evaluation failure hid a section (-want +got):\n%s", diff)
	}
}

func TestSetValidatesSelectionFields(t *testing.T) {
	t.Parallel()

	session := newTestSession(t)
	advanceTo(t, session, "situation")

	err := session.Set("transportMethods", []string{"car", "bike", "walk"})
	if !errors.Is(err, selection.ErrAtCapacity) {
		t.Fatalf("Set over limit = %v, want ErrAtCapacity", err)
	}
	if got := session.Selection("transportMethods"); len(got) != 0 {
		t.Fatalf("rejected Set mutated the group: %v", got)
	}

	if err := session.Set("transportMethods", []string{"car", "bike"}); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"car", "bike"}, session.Selection("transportMethods")); diff != "" {
		t.Fatalf("Set did not sync the group (-want +got):\n%s", diff)
	}
}
