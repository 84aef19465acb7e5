package model

// FieldType is the simplified enum for questionnaire input kinds.
type FieldType string

const (
	FieldTypeString      FieldType = "string"
	FieldTypeInteger     FieldType = "integer"
	FieldTypeNumber      FieldType = "number"
	FieldTypeBoolean     FieldType = "boolean"
	FieldTypeSelect      FieldType = "select"
	FieldTypeMultiSelect FieldType = "multiselect"
	FieldTypeAddress     FieldType = "address"
	FieldTypeFile        FieldType = "file"
	FieldTypeDate        FieldType = "date"
)

const (
	ValidationRuleMin       = "min"
	ValidationRuleMax       = "max"
	ValidationRuleMinLength = "minLength"
	ValidationRuleMaxLength = "maxLength"
	ValidationRulePattern   = "pattern"
)

// ValidationRule represents a single validation constraint applied to a field.
// Numeric bounds and length limits encode their threshold in Params["value"]
// while pattern rules preserve the original expression in Params["pattern"].
type ValidationRule struct {
	Kind   string            `json:"kind" yaml:"kind"`
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
}

// Option is a selectable value with an optional display label.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Field models an individual question. Struct fields are annotated so
// definitions round-trip through JSON and YAML documents unchanged.
type Field struct {
	Name          string            `json:"name" yaml:"name"`
	Type          FieldType         `json:"type" yaml:"type"`
	Format        string            `json:"format,omitempty" yaml:"format,omitempty"`
	Required      bool              `json:"required" yaml:"required"`
	Label         string            `json:"label,omitempty" yaml:"label,omitempty"`
	Placeholder   string            `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Help          string            `json:"help,omitempty" yaml:"help,omitempty"`
	Default       any               `json:"default,omitempty" yaml:"default,omitempty"`
	Options       []Option          `json:"options,omitempty" yaml:"options,omitempty"`
	MinSelections int               `json:"minSelections,omitempty" yaml:"minSelections,omitempty"`
	MaxSelections int               `json:"maxSelections,omitempty" yaml:"maxSelections,omitempty"`
	Ranked        bool              `json:"ranked,omitempty" yaml:"ranked,omitempty"`
	Validations   []ValidationRule  `json:"validations,omitempty" yaml:"validations,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// RangeRule ties two numeric fields on the same step together: the value of
// Min must not exceed the value of Max. Message overrides the default text
// shown when the pair is inverted.
type RangeRule struct {
	Min     string `json:"min" yaml:"min"`
	Max     string `json:"max" yaml:"max"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Section groups related fields inside a step. VisibleWhen holds a visibility
// expression evaluated against the answer bag; the empty string means the
// section is always shown. Fields inside a hidden section keep any stored
// answers but do not participate in required checks.
type Section struct {
	ID          string  `json:"id" yaml:"id"`
	Title       string  `json:"title,omitempty" yaml:"title,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	VisibleWhen string  `json:"visibleWhen,omitempty" yaml:"visibleWhen,omitempty"`
	Fields      []Field `json:"fields" yaml:"fields"`
}

// Step is one screen of the questionnaire. Intro may carry limited markup;
// renderers sanitize it before display.
type Step struct {
	ID       string      `json:"id" yaml:"id"`
	Title    string      `json:"title" yaml:"title"`
	Intro    string      `json:"intro,omitempty" yaml:"intro,omitempty"`
	Sections []Section   `json:"sections" yaml:"sections"`
	Ranges   []RangeRule `json:"ranges,omitempty" yaml:"ranges,omitempty"`
}

// Questionnaire is the top-level definition a session executes.
type Questionnaire struct {
	ID       string            `json:"id" yaml:"id"`
	Title    string            `json:"title" yaml:"title"`
	Version  string            `json:"version,omitempty" yaml:"version,omitempty"`
	Steps    []Step            `json:"steps" yaml:"steps"`
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Fields flattens every field in the step, section order preserved.
func (s Step) Fields() []Field {
	var out []Field
	for _, section := range s.Sections {
		out = append(out, section.Fields...)
	}
	return out
}

// Field returns the first field with the given name across all steps.
func (q Questionnaire) Field(name string) (Field, bool) {
	for _, step := range q.Steps {
		for _, section := range step.Sections {
			for _, field := range section.Fields {
				if field.Name == name {
					return field, true
				}
			}
		}
	}
	return Field{}, false
}

// StepOf reports the index of the step declaring the named field.
func (q Questionnaire) StepOf(name string) (int, bool) {
	for i, step := range q.Steps {
		for _, section := range step.Sections {
			for _, field := range section.Fields {
				if field.Name == name {
					return i, true
				}
			}
		}
	}
	return 0, false
}

// DisplayLabel resolves the label renderers should show for a field.
func (f Field) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return DefaultLabeler(f.Name)
}

// OptionLabel resolves the display label for a stored option value.
func (f Field) OptionLabel(value string) string {
	for _, opt := range f.Options {
		if opt.Value == value {
			if opt.Label != "" {
				return opt.Label
			}
			return opt.Value
		}
	}
	return value
}

// OptionValues returns the selectable values in declaration order.
func (f Field) OptionValues() []string {
	out := make([]string, 0, len(f.Options))
	for _, opt := range f.Options {
		out = append(out, opt.Value)
	}
	return out
}

// IsSelection reports whether the field stores one-of/many-of option values.
func (f Field) IsSelection() bool {
	return f.Type == FieldTypeSelect || f.Type == FieldTypeMultiSelect
}

// IsNumeric reports whether the field stores a number.
func (f Field) IsNumeric() bool {
	return f.Type == FieldTypeNumber || f.Type == FieldTypeInteger
}
