package model

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/visibility/expr"
)

// Problem describes one defect found while validating a questionnaire
// definition. Location is a dotted path such as "steps.availability.fields.contractType".
type Problem struct {
	Location string
	Message  string
}

func (p Problem) String() string {
	return p.Location + ": " + p.Message
}

// Validate checks the questionnaire definition for structural defects and
// returns an error summarising every problem found. Use Problems for the
// individual entries.
func (q Questionnaire) Validate() error {
	problems := q.Problems()
	if len(problems) == 0 {
		return nil
	}
	lines := make([]string, 0, len(problems))
	for _, p := range problems {
		lines = append(lines, p.String())
	}
	return fmt.Errorf("model: invalid questionnaire %q: %s", q.ID, strings.Join(lines, "; "))
}

// Problems collects every defect in the definition rather than stopping at
// the first, so lint tooling can report them all at once.
func (q Questionnaire) Problems() []Problem {
	var out []Problem
	add := func(location, format string, args ...any) {
		out = append(out, Problem{Location: location, Message: fmt.Sprintf(format, args...)})
	}

	if q.ID == "" {
		add("id", "questionnaire id is required")
	}
	if len(q.Steps) == 0 {
		add("steps", "at least one step is required")
	}

	stepIDs := make(map[string]bool, len(q.Steps))
	fieldSteps := make(map[string]string)

	for _, step := range q.Steps {
		loc := "steps." + step.ID
		if step.ID == "" {
			add("steps", "step id is required")
		} else if stepIDs[step.ID] {
			add(loc, "duplicate step id")
		}
		stepIDs[step.ID] = true

		if len(step.Sections) == 0 {
			add(loc, "step has no sections")
		}

		sectionIDs := make(map[string]bool, len(step.Sections))
		for _, section := range step.Sections {
			sloc := loc + ".sections." + section.ID
			if section.ID == "" {
				add(loc+".sections", "section id is required")
			} else if sectionIDs[section.ID] {
				add(sloc, "duplicate section id")
			}
			sectionIDs[section.ID] = true

			if section.VisibleWhen != "" {
				if _, err := expr.Compile(section.VisibleWhen); err != nil {
					add(sloc+".visibleWhen", "invalid expression: %v", err)
				}
			}

			for _, field := range section.Fields {
				floc := sloc + ".fields." + field.Name
				if field.Name == "" {
					add(sloc+".fields", "field name is required")
					continue
				}
				if prev, dup := fieldSteps[field.Name]; dup {
					add(floc, "field already declared in step %q", prev)
				}
				fieldSteps[field.Name] = step.ID

				out = append(out, fieldProblems(floc, field)...)
			}
		}

		for i, rr := range step.Ranges {
			rloc := fmt.Sprintf("%s.ranges.%d", loc, i)
			out = append(out, rangeProblems(rloc, step, rr)...)
		}
	}

	return out
}

func fieldProblems(loc string, field Field) []Problem {
	var out []Problem
	add := func(format string, args ...any) {
		out = append(out, Problem{Location: loc, Message: fmt.Sprintf(format, args...)})
	}

	switch field.Type {
	case FieldTypeString, FieldTypeInteger, FieldTypeNumber, FieldTypeBoolean,
		FieldTypeAddress, FieldTypeFile, FieldTypeDate:
	case FieldTypeSelect, FieldTypeMultiSelect:
		if len(field.Options) == 0 {
			add("%s field needs options", field.Type)
		}
		seen := make(map[string]bool, len(field.Options))
		for _, opt := range field.Options {
			if opt.Value == "" {
				add("option value is required")
				continue
			}
			if seen[opt.Value] {
				add("duplicate option value %q", opt.Value)
			}
			seen[opt.Value] = true
		}
	case "":
		add("field type is required")
	default:
		add("unknown field type %q", field.Type)
	}

	if field.Type != FieldTypeMultiSelect {
		if field.MinSelections > 0 || field.MaxSelections > 0 {
			add("selection bounds only apply to multiselect fields")
		}
		if field.Ranked {
			add("ranked only applies to multiselect fields")
		}
	} else {
		if field.MaxSelections < 0 || field.MinSelections < 0 {
			add("selection bounds must not be negative")
		}
		if field.MaxSelections > 0 && field.MinSelections > field.MaxSelections {
			add("minSelections %d exceeds maxSelections %d", field.MinSelections, field.MaxSelections)
		}
		if field.MaxSelections > 0 && field.MaxSelections > len(field.Options) {
			add("maxSelections %d exceeds option count %d", field.MaxSelections, len(field.Options))
		}
		if field.Ranked && field.MaxSelections == 0 {
			add("ranked multiselect needs maxSelections")
		}
	}

	for _, rule := range field.Validations {
		switch rule.Kind {
		case ValidationRuleMin, ValidationRuleMax, ValidationRuleMinLength, ValidationRuleMaxLength:
			if rule.Params["value"] == "" {
				add("validation %s needs params.value", rule.Kind)
			}
		case ValidationRulePattern:
			if rule.Params["pattern"] == "" {
				add("validation pattern needs params.pattern")
			}
		default:
			add("unknown validation kind %q", rule.Kind)
		}
	}

	return out
}

func rangeProblems(loc string, step Step, rr RangeRule) []Problem {
	var out []Problem
	add := func(format string, args ...any) {
		out = append(out, Problem{Location: loc, Message: fmt.Sprintf(format, args...)})
	}

	if rr.Min == "" || rr.Max == "" {
		add("range rule needs min and max field names")
		return out
	}

	check := func(name string) {
		for _, field := range step.Fields() {
			if field.Name != name {
				continue
			}
			if !field.IsNumeric() {
				add("range field %q is not numeric", name)
			}
			return
		}
		add("range field %q not declared on step %q", name, step.ID)
	}
	check(rr.Min)
	check(rr.Max)
	return out
}
