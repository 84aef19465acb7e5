// Package wizard drives one attempt at a multi-step questionnaire: a guarded
// step machine over an answer bag, with conditional section visibility and
// capped selection groups. Exactly one step is current at any time; leaving a
// step forward requires a passing check, moving backward never does.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-formwizard/pkg/answers"
	"github.com/goliatone/go-formwizard/pkg/geocode"
	"github.com/goliatone/go-formwizard/pkg/model"
	"github.com/goliatone/go-formwizard/pkg/selection"
	"github.com/goliatone/go-formwizard/pkg/visibility"
	"github.com/goliatone/go-formwizard/pkg/visibility/expr"
)

// State is the lifecycle phase of a session.
type State string

const (
	StateActive    State = "active"
	StateSubmitted State = "submitted"
)

// Progress describes how far the candidate is, with Current 1-based so it can
// be shown directly as "step 2 of 5".
type Progress struct {
	Current int     `json:"current" yaml:"current"`
	Total   int     `json:"total" yaml:"total"`
	Ratio   float64 `json:"ratio" yaml:"ratio"`
}

// Snapshot is the immutable result of a submitted session.
type Snapshot struct {
	QuestionnaireID string         `json:"questionnaireId" yaml:"questionnaireId"`
	Answers         map[string]any `json:"answers" yaml:"answers"`
	CompletedAt     time.Time      `json:"completedAt" yaml:"completedAt"`
}

// SubmitHook runs after a session reaches the submitted state. Hooks are the
// seam where the transfer record gets published.
type SubmitHook func(ctx context.Context, snap Snapshot) error

// Session is one candidate's pass through a questionnaire. It is not safe for
// concurrent use; like the form it models, it lives on a single event loop.
type Session struct {
	def     model.Questionnaire
	store   *answers.Store
	eval    visibility.Evaluator
	extras  map[string]any
	prefill map[string]any

	groups  map[string]*selection.Group
	ranked  map[string]*selection.RankedGroup
	visible map[string]bool
	rules   map[string]fieldRules

	current int
	state   State
	evalErr error
	now     func() time.Time
	hooks   []SubmitHook
}

// Option configures a Session at construction time.
type Option func(*Session)

// WithEvaluator swaps the visibility evaluator. Rules still have to parse as
// expressions at validation time; a custom evaluator reinterprets them.
func WithEvaluator(eval visibility.Evaluator) Option {
	return func(s *Session) {
		if eval != nil {
			s.eval = eval
		}
	}
}

// WithExtras exposes ambient facts to visibility rules under the `extras.`
// prefix.
func WithExtras(extras map[string]any) Option {
	return func(s *Session) { s.extras = extras }
}

// WithPrefill seeds the answer bag, typically from a consumed transfer record
// or a parsed CV.
func WithPrefill(values map[string]any) Option {
	return func(s *Session) { s.prefill = values }
}

// WithClock overrides the submission timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSubmitHook appends a hook to run after submission, in registration
// order.
func WithSubmitHook(hook SubmitHook) Option {
	return func(s *Session) {
		if hook != nil {
			s.hooks = append(s.hooks, hook)
		}
	}
}

// New validates the questionnaire and opens a session on its first step.
func New(q model.Questionnaire, opts ...Option) (*Session, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		def:     q,
		eval:    expr.New(),
		groups:  map[string]*selection.Group{},
		ranked:  map[string]*selection.RankedGroup{},
		visible: map[string]bool{},
		rules:   map[string]fieldRules{},
		state:   StateActive,
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	s.store = answers.New(s.prefill)
	s.prefill = nil

	for _, step := range q.Steps {
		for _, sec := range step.Sections {
			for _, field := range sec.Fields {
				if field.Type != model.FieldTypeMultiSelect {
					continue
				}
				if field.Ranked {
					rg, err := selection.NewRankedGroup(field.OptionValues(), field.MaxSelections)
					if err != nil {
						return nil, fmt.Errorf("wizard: field %q: %w", field.Name, err)
					}
					s.ranked[field.Name] = rg
					s.groups[field.Name] = &rg.Group
				} else {
					g, err := selection.NewGroup(field.OptionValues(), field.MaxSelections)
					if err != nil {
						return nil, fmt.Errorf("wizard: field %q: %w", field.Name, err)
					}
					s.groups[field.Name] = g
				}
			}
		}
	}

	_ = s.store.Subscribe(func(answers.Change) { s.recompute() })
	s.seedGroups()
	s.recompute()
	return s, nil
}

// Definition returns the questionnaire this session executes.
func (s *Session) Definition() model.Questionnaire { return s.def }

// State reports whether the session is still active or already submitted.
func (s *Session) State() State { return s.state }

// Step returns the current step.
func (s *Session) Step() model.Step { return s.def.Steps[s.current] }

// Progress reports the 1-based position within the questionnaire.
func (s *Session) Progress() Progress {
	total := len(s.def.Steps)
	return Progress{
		Current: s.current + 1,
		Total:   total,
		Ratio:   float64(s.current+1) / float64(total),
	}
}

// Set stores an answer. Multi-select fields are validated against their
// option set and capacity before anything is written. The returned error also
// carries visibility evaluation failures; the value is stored in that case
// and the affected sections stay visible.
func (s *Session) Set(field string, value any) error {
	if s.state == StateSubmitted {
		return ErrSubmitted
	}
	if group, ok := s.groups[field]; ok {
		values := toStrings(value)
		if err := group.SetSelected(values); err != nil {
			return fmt.Errorf("wizard: field %q: %w", field, err)
		}
		if err := s.store.Set(field, group.Selected()); err != nil {
			return err
		}
		return s.evalErr
	}
	if err := s.store.Set(field, value); err != nil {
		return err
	}
	return s.evalErr
}

// Get reads an answer from the bag.
func (s *Session) Get(field string) (any, bool) { return s.store.Get(field) }

// GetString reads an answer as text.
func (s *Session) GetString(field string) string { return s.store.GetString(field) }

// Answers returns a copy of every collected answer.
func (s *Session) Answers() map[string]any { return s.store.All() }

// Toggle flips one option of a multi-select field and mirrors the group into
// the answer bag. A toggle-on against a full group fails with
// selection.ErrAtCapacity and changes nothing.
func (s *Session) Toggle(field, option string) (bool, error) {
	if s.state == StateSubmitted {
		return false, ErrSubmitted
	}
	group, ok := s.groups[field]
	if !ok {
		return false, fmt.Errorf("%w: %q is not a multi-select field", ErrUnknownField, field)
	}
	selected, err := group.Toggle(option)
	if err != nil {
		return false, fmt.Errorf("wizard: field %q: %w", field, err)
	}
	if err := s.store.Set(field, group.Selected()); err != nil {
		return selected, err
	}
	return selected, nil
}

// Selection returns the chosen values of a multi-select field in toggle
// order.
func (s *Session) Selection(field string) []string {
	group, ok := s.groups[field]
	if !ok {
		return nil
	}
	return group.Selected()
}

// Ranking returns the rank-annotated selection of a ranked field. Ranks are
// dense: removing a middle value closes the gap.
func (s *Session) Ranking(field string) []selection.Ranked {
	group, ok := s.ranked[field]
	if !ok {
		return nil
	}
	return group.Ranking()
}

// VisibleSections returns the current step's sections that pass their
// visibility rules, declaration order preserved.
func (s *Session) VisibleSections() []model.Section {
	step := s.def.Steps[s.current]
	out := make([]model.Section, 0, len(step.Sections))
	for _, sec := range step.Sections {
		if s.sectionVisible(sec) {
			out = append(out, sec)
		}
	}
	return out
}

// Check validates the current step and reports every failure at once. Fields
// inside hidden sections keep their answers but are skipped. Check never
// mutates the session; calling it repeatedly yields the same result.
func (s *Session) Check() CheckResult {
	step := s.def.Steps[s.current]
	result := CheckResult{Step: step.ID}

	visibleFields := map[string]bool{}
	for _, sec := range step.Sections {
		if !s.sectionVisible(sec) {
			continue
		}
		for _, field := range sec.Fields {
			visibleFields[field.Name] = true
			result.Issues = append(result.Issues, s.fieldIssues(field)...)
		}
	}

	for _, rule := range step.Ranges {
		if !visibleFields[rule.Min] || !visibleFields[rule.Max] {
			continue
		}
		minVal, okMin := s.numericAnswer(rule.Min)
		maxVal, okMax := s.numericAnswer(rule.Max)
		if !okMin || !okMax || minVal <= maxVal {
			continue
		}
		minField, _ := s.def.Field(rule.Min)
		maxField, _ := s.def.Field(rule.Max)
		message := rule.Message
		if message == "" {
			message = fmt.Sprintf("must not exceed %s", strings.ToLower(maxField.DisplayLabel()))
		}
		result.Issues = append(result.Issues, Issue{
			Field:   rule.Min,
			Label:   minField.DisplayLabel(),
			Message: message,
			Kind:    IssueRange,
		})
	}

	return result
}

// Advance moves to the next step when the current one checks out. A failing
// check blocks the transition and returns the full issue list with a nil
// error; the error reports misuse only.
func (s *Session) Advance() (CheckResult, error) {
	if s.state == StateSubmitted {
		return CheckResult{}, ErrSubmitted
	}
	if s.current == len(s.def.Steps)-1 {
		return CheckResult{}, ErrLastStep
	}
	result := s.Check()
	if !result.OK() {
		return result, nil
	}
	s.current++
	return result, nil
}

// Retreat moves one step back without validation. It reports false on the
// first step and after submission, where it is a no-op.
func (s *Session) Retreat() bool {
	if s.state == StateSubmitted || s.current == 0 {
		return false
	}
	s.current--
	return true
}

// JumpBack moves directly to an earlier step, given 1-based like
// Progress.Current. Forward jumps and out-of-range targets report false.
func (s *Session) JumpBack(step int) bool {
	target := step - 1
	if s.state == StateSubmitted || target < 0 || target >= s.current {
		return false
	}
	s.current = target
	return true
}

// Submit finishes the questionnaire from its last step. The check guard runs
// first; once it passes the session is terminal even if a submit hook fails,
// so hosts can retry publication without re-collecting answers.
func (s *Session) Submit(ctx context.Context) (Snapshot, error) {
	if s.state == StateSubmitted {
		return Snapshot{}, ErrSubmitted
	}
	if s.current != len(s.def.Steps)-1 {
		return Snapshot{}, ErrNotLastStep
	}
	if result := s.Check(); !result.OK() {
		return Snapshot{}, &BlockedError{Result: result}
	}

	s.state = StateSubmitted
	snap := Snapshot{
		QuestionnaireID: s.def.ID,
		Answers:         s.store.All(),
		CompletedAt:     s.now().UTC(),
	}

	var errs []error
	for _, hook := range s.hooks {
		if err := hook(ctx, snap); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return snap, fmt.Errorf("wizard: submit hooks: %w", err)
	}
	return snap, nil
}

// Companion answer keys written next to an address field. Renderers and
// publication consumers read these by suffix.
const (
	SuffixLatitude  = "_latitude"
	SuffixLongitude = "_longitude"
	SuffixPlaceID   = "_place_id"
	SuffixValidated = "_validated"
)

// ApplyAddress writes a resolved address and its companion keys into the bag.
// A resolution that arrives after the candidate changed the field text, or
// after submission, is dropped and reported false. Coordinates are stored
// only when the location actually carries them; the `<field>_validated` flag
// tells renderers whether to show the verified badge.
func (s *Session) ApplyAddress(field string, loc geocode.Location) bool {
	if s.state == StateSubmitted {
		return false
	}
	def, ok := s.def.Field(field)
	if !ok || def.Type != model.FieldTypeAddress {
		return false
	}
	query := strings.TrimSpace(loc.Query)
	if query == "" {
		return false
	}
	stored := strings.TrimSpace(s.store.GetString(field))
	if stored != "" && stored != query {
		return false
	}

	formatted := strings.TrimSpace(loc.Formatted)
	if formatted == "" {
		formatted = query
	}
	validated := loc.Latitude != 0 || loc.Longitude != 0

	_ = s.store.Set(field, formatted)
	if validated {
		_ = s.store.Set(field+SuffixLatitude, loc.Latitude)
		_ = s.store.Set(field+SuffixLongitude, loc.Longitude)
	}
	if loc.PlaceID != "" {
		_ = s.store.Set(field+SuffixPlaceID, loc.PlaceID)
	}
	_ = s.store.Set(field+SuffixValidated, validated)
	return true
}

// ImportAnswers merges a batch of values, re-seeding selection groups from
// the result. Unknown options and over-limit selections are trimmed rather
// than rejected, since imports come from records this session did not write.
func (s *Session) ImportAnswers(values map[string]any, overwrite bool) error {
	if s.state == StateSubmitted {
		return ErrSubmitted
	}
	if err := s.store.Import(values, overwrite); err != nil {
		return err
	}
	s.seedGroups()
	return nil
}

func (s *Session) sectionVisible(sec model.Section) bool {
	if sec.VisibleWhen == "" {
		return true
	}
	return s.visible[sec.ID]
}

// recompute re-evaluates every visibility rule against the current answers.
// It runs after each mutation of the bag; an evaluation failure leaves the
// section visible and is surfaced through Set.
func (s *Session) recompute() {
	ctx := visibility.Context{Values: s.store.All(), Extras: s.extras}
	var errs []error
	for _, step := range s.def.Steps {
		for _, sec := range step.Sections {
			if sec.VisibleWhen == "" {
				s.visible[sec.ID] = true
				continue
			}
			ok, err := s.eval.Eval(sec.ID, sec.VisibleWhen, ctx)
			if err != nil {
				errs = append(errs, fmt.Errorf("wizard: section %q: %w", sec.ID, err))
				s.visible[sec.ID] = true
				continue
			}
			s.visible[sec.ID] = ok
		}
	}
	s.evalErr = errors.Join(errs...)
}

// seedGroups aligns selection groups with the answer bag, dropping values a
// group cannot hold and normalizing the stored form to []string.
func (s *Session) seedGroups() {
	for name, group := range s.groups {
		raw, ok := s.store.Get(name)
		if !ok {
			continue
		}
		values := toStrings(raw)

		allowed := map[string]struct{}{}
		for _, opt := range group.Options() {
			allowed[opt] = struct{}{}
		}

		filtered := make([]string, 0, len(values))
		seen := map[string]struct{}{}
		for _, v := range values {
			if _, known := allowed[v]; !known {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			filtered = append(filtered, v)
			if limit := group.Limit(); limit > 0 && len(filtered) == limit {
				break
			}
		}

		_ = group.SetSelected(filtered)
		_ = s.store.Set(name, group.Selected())
	}
}

func (s *Session) fieldIssues(field model.Field) []Issue {
	var issues []Issue
	value, ok := s.store.Get(field.Name)
	empty := !ok || isEmptyAnswer(value)

	issue := func(message string, kind IssueKind) {
		issues = append(issues, Issue{
			Field:   field.Name,
			Label:   field.DisplayLabel(),
			Message: message,
			Kind:    kind,
		})
	}

	if field.Required && empty {
		issue("is required", IssueRequired)
	}
	if field.Required && !empty && field.Type == model.FieldTypeBoolean {
		if b, isBool := value.(bool); isBool && !b {
			issue("must be accepted", IssueRequired)
		}
	}

	if field.Type == model.FieldTypeMultiSelect && field.MinSelections > 0 && !(field.Required && empty) {
		if count := len(toStrings(value)); count < field.MinSelections {
			if field.MinSelections == 1 {
				issue("needs at least 1 selection", IssueSelection)
			} else {
				issue(fmt.Sprintf("needs at least %d selections", field.MinSelections), IssueSelection)
			}
		}
	}

	if !empty {
		rules := collectFieldRules(field, s.rules)
		for _, message := range rules.apply(field, value) {
			issue(message, IssueValidation)
		}
	}

	return issues
}

func (s *Session) numericAnswer(field string) (float64, bool) {
	value, ok := s.store.Get(field)
	if !ok {
		return 0, false
	}
	return coerceFloat(value)
}

// toStrings coerces the loose value shapes an answer bag can hold for a
// multi-select into a string slice.
func toStrings(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}
