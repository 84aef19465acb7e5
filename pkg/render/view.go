package render

import (
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-formwizard/pkg/cvparse"
	"github.com/goliatone/go-formwizard/pkg/model"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

// View is the renderer-agnostic recap of a completed questionnaire. Rows
// resolve option labels and companion keys so renderers only deal with
// display strings.
type View struct {
	QuestionnaireID string
	Title           string
	Version         string
	CompletedAt     time.Time
	// Simulated is set when the CV-derived answers came from the demo
	// candidate rather than a live parse.
	Simulated bool
	Steps     []StepView
}

// StepView groups the answered rows of one questionnaire step.
type StepView struct {
	ID    string
	Title string
	Intro string
	Rows  []Row
}

// Row is one answered field. Multi-value answers carry their entries in
// Values (rank order for ranked fields) with Value as the joined fallback.
type Row struct {
	Field  string
	Label  string
	Value  string
	Values []string
	Ranked bool
	// Note annotates the value, e.g. "verified" for a geocoded address.
	Note string
}

// HasRows reports whether any step contributed at least one row.
func (v View) HasRows() bool {
	for _, step := range v.Steps {
		if len(step.Rows) > 0 {
			return true
		}
	}
	return false
}

// BuildView projects a submitted snapshot onto the questionnaire definition.
// Fields without an answer are left out; answers kept from hidden sections
// appear because they were part of the submission.
func BuildView(q model.Questionnaire, snap wizard.Snapshot) View {
	view := View{
		QuestionnaireID: snap.QuestionnaireID,
		Title:           q.Title,
		Version:         q.Version,
		CompletedAt:     snap.CompletedAt,
	}
	if view.QuestionnaireID == "" {
		view.QuestionnaireID = q.ID
	}
	if simulated, ok := snap.Answers[cvparse.SimulatedAnswerKey].(bool); ok {
		view.Simulated = simulated
	}

	for _, step := range q.Steps {
		stepView := StepView{ID: step.ID, Title: step.Title, Intro: step.Intro}
		for _, section := range step.Sections {
			for _, field := range section.Fields {
				if row, ok := rowFor(field, snap.Answers); ok {
					stepView.Rows = append(stepView.Rows, row)
				}
			}
		}
		if len(stepView.Rows) > 0 {
			view.Steps = append(view.Steps, stepView)
		}
	}
	return view
}

func rowFor(field model.Field, answers map[string]any) (Row, bool) {
	raw, ok := answers[field.Name]
	if !ok || isEmptyValue(raw) {
		return Row{}, false
	}

	row := Row{Field: field.Name, Label: field.DisplayLabel()}

	switch field.Type {
	case model.FieldTypeBoolean:
		row.Value = boolText(raw)
	case model.FieldTypeSelect:
		row.Value = field.OptionLabel(stringValue(raw))
	case model.FieldTypeMultiSelect:
		values := stringList(raw)
		if len(values) == 0 {
			return Row{}, false
		}
		labels := make([]string, 0, len(values))
		for _, value := range values {
			labels = append(labels, field.OptionLabel(value))
		}
		row.Values = labels
		row.Value = strings.Join(labels, ", ")
		row.Ranked = field.Ranked
	case model.FieldTypeNumber, model.FieldTypeInteger:
		row.Value = numberText(raw)
	case model.FieldTypeAddress:
		row.Value = stringValue(raw)
		if validated, ok := answers[field.Name+wizard.SuffixValidated].(bool); ok && validated {
			row.Note = "verified"
		} else {
			row.Note = "unverified"
		}
	default:
		row.Value = stringValue(raw)
	}

	if row.Value == "" && len(row.Values) == 0 {
		return Row{}, false
	}
	return row, true
}

func isEmptyValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	default:
		return false
	}
}

func stringValue(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return strings.TrimSpace(strconvFormat(v))
	}
}

func stringList(value any) []string {
	switch v := value.(type) {
	case []string:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				if trimmed := strings.TrimSpace(s); trimmed != "" {
					out = append(out, trimmed)
				}
			}
		}
		return out
	case string:
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return []string{trimmed}
		}
		return nil
	default:
		return nil
	}
}

func boolText(value any) string {
	switch v := value.(type) {
	case bool:
		if v {
			return "Yes"
		}
		return "No"
	case string:
		if strings.EqualFold(strings.TrimSpace(v), "true") {
			return "Yes"
		}
		return "No"
	default:
		return ""
	}
}

func numberText(value any) string {
	switch v := value.(type) {
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return strings.TrimSpace(v)
	default:
		return ""
	}
}

func strconvFormat(value any) string {
	switch v := value.(type) {
	case bool:
		return strconv.FormatBool(v)
	case int, int32, int64, float32, float64:
		return numberText(v)
	default:
		return ""
	}
}
