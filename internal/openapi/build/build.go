// Package build derives runnable questionnaire definitions from parsed
// OpenAPI operations. The request body becomes a single-step questionnaire:
// enums turn into selects, arrays of enums into multiselects, and schema
// constraints into field validations.
package build

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/goliatone/go-formwizard/pkg/model"
	pkgopenapi "github.com/goliatone/go-formwizard/pkg/openapi"
)

const (
	stepID    = "request"
	sectionID = "body"
)

// Questionnaire converts one operation's request schema into a single-step
// questionnaire definition. Properties that cannot be asked in a terminal
// (arrays of objects, arrays without enums) are left out.
func Questionnaire(op pkgopenapi.Operation) (model.Questionnaire, error) {
	if op.ID == "" {
		return model.Questionnaire{}, fmt.Errorf("openapi build: operation id is required")
	}

	body := op.RequestBody
	if body.Type != "" && body.Type != "object" {
		return model.Questionnaire{}, fmt.Errorf("openapi build: operation %q request body is %q, want object", op.ID, body.Type)
	}
	if len(body.Properties) == 0 {
		return model.Questionnaire{}, fmt.Errorf("openapi build: operation %q has no request properties", op.ID)
	}

	fields := fieldsFromObject("", body)
	if len(fields) == 0 {
		return model.Questionnaire{}, fmt.Errorf("openapi build: operation %q has no mappable request properties", op.ID)
	}

	title := op.Summary
	if title == "" {
		title = model.DefaultLabeler(op.ID)
	}

	q := model.Questionnaire{
		ID:    op.ID,
		Title: title,
		Steps: []model.Step{{
			ID:       stepID,
			Title:    title,
			Intro:    op.Description,
			Sections: []model.Section{{ID: sectionID, Fields: fields}},
		}},
	}

	if err := q.Validate(); err != nil {
		return model.Questionnaire{}, fmt.Errorf("openapi build: operation %q: %w", op.ID, err)
	}
	return q, nil
}

// fieldsFromObject walks an object schema in sorted property order. Nested
// objects flatten into dotted field names so the answer bag stays flat.
func fieldsFromObject(prefix string, schema pkgopenapi.Schema) []model.Field {
	requiredSet := make(map[string]struct{}, len(schema.Required))
	for _, name := range schema.Required {
		requiredSet[name] = struct{}{}
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	var fields []model.Field
	for _, name := range names {
		prop := schema.Properties[name]
		qualified := name
		if prefix != "" {
			qualified = prefix + "." + name
		}
		_, required := requiredSet[name]

		if prop.Type == "object" || (prop.Type == "" && len(prop.Properties) > 0) {
			fields = append(fields, fieldsFromObject(qualified, prop)...)
			continue
		}

		if field, ok := fieldFromSchema(qualified, prop, required); ok {
			fields = append(fields, field)
		}
	}
	return fields
}

func fieldFromSchema(name string, schema pkgopenapi.Schema, required bool) (model.Field, bool) {
	field := model.Field{
		Name:     name,
		Required: required,
		Format:   schema.Format,
		Help:     schema.Description,
		Default:  schema.Default,
	}

	switch schema.Type {
	case "boolean":
		field.Type = model.FieldTypeBoolean
	case "integer":
		field.Type = model.FieldTypeInteger
		field.Validations = numericValidations(schema)
	case "number":
		field.Type = model.FieldTypeNumber
		field.Validations = numericValidations(schema)
	case "array":
		if schema.Items == nil || len(schema.Items.Enum) == 0 {
			return model.Field{}, false
		}
		options := optionsFromEnum(schema.Items.Enum)
		if len(options) == 0 {
			return model.Field{}, false
		}
		field.Type = model.FieldTypeMultiSelect
		field.Options = options
		if schema.MinItems != nil && *schema.MinItems > 0 {
			field.MinSelections = *schema.MinItems
		}
		if schema.MaxItems != nil && *schema.MaxItems > 0 {
			field.MaxSelections = *schema.MaxItems
			if field.MaxSelections > len(options) {
				field.MaxSelections = len(options)
			}
			if field.MinSelections > field.MaxSelections {
				field.MinSelections = field.MaxSelections
			}
		}
	case "string", "":
		if len(schema.Enum) > 0 {
			options := optionsFromEnum(schema.Enum)
			if len(options) == 0 {
				return model.Field{}, false
			}
			field.Type = model.FieldTypeSelect
			field.Options = options
			break
		}
		if schema.Format == "date" || schema.Format == "date-time" {
			field.Type = model.FieldTypeDate
			break
		}
		field.Type = model.FieldTypeString
		field.Validations = stringValidations(schema)
	default:
		return model.Field{}, false
	}

	return field, true
}

func optionsFromEnum(enum []any) []model.Option {
	options := make([]model.Option, 0, len(enum))
	seen := make(map[string]struct{}, len(enum))
	for _, raw := range enum {
		value := fmt.Sprint(raw)
		if value == "" {
			continue
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		options = append(options, model.Option{Value: value})
	}
	return options
}

func numericValidations(schema pkgopenapi.Schema) []model.ValidationRule {
	var rules []model.ValidationRule
	if schema.Minimum != nil {
		rules = append(rules, model.ValidationRule{
			Kind:   model.ValidationRuleMin,
			Params: map[string]string{"value": strconv.FormatFloat(*schema.Minimum, 'f', -1, 64)},
		})
	}
	if schema.Maximum != nil {
		rules = append(rules, model.ValidationRule{
			Kind:   model.ValidationRuleMax,
			Params: map[string]string{"value": strconv.FormatFloat(*schema.Maximum, 'f', -1, 64)},
		})
	}
	return rules
}

func stringValidations(schema pkgopenapi.Schema) []model.ValidationRule {
	var rules []model.ValidationRule
	if schema.MinLength != nil && *schema.MinLength > 0 {
		rules = append(rules, model.ValidationRule{
			Kind:   model.ValidationRuleMinLength,
			Params: map[string]string{"value": strconv.Itoa(*schema.MinLength)},
		})
	}
	if schema.MaxLength != nil && *schema.MaxLength > 0 {
		rules = append(rules, model.ValidationRule{
			Kind:   model.ValidationRuleMaxLength,
			Params: map[string]string{"value": strconv.Itoa(*schema.MaxLength)},
		})
	}
	if schema.Pattern != "" {
		rules = append(rules, model.ValidationRule{
			Kind:   model.ValidationRulePattern,
			Params: map[string]string{"pattern": schema.Pattern},
		})
	}
	return rules
}
