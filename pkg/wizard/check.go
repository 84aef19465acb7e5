package wizard

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/model"
)

// IssueKind classifies why a field blocks the current step.
type IssueKind string

const (
	IssueRequired   IssueKind = "required"
	IssueSelection  IssueKind = "selection"
	IssueValidation IssueKind = "validation"
	IssueRange      IssueKind = "range"
)

// Issue is one human-readable reason the current step cannot be left.
type Issue struct {
	Field   string    `json:"field" yaml:"field"`
	Label   string    `json:"label" yaml:"label"`
	Message string    `json:"message" yaml:"message"`
	Kind    IssueKind `json:"kind" yaml:"kind"`
}

// CheckResult is the outcome of validating the current step. It always
// carries every failure, not just the first, so callers can report them
// together.
type CheckResult struct {
	Step   string  `json:"step" yaml:"step"`
	Issues []Issue `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// OK reports whether the step may be left.
func (r CheckResult) OK() bool { return len(r.Issues) == 0 }

// Messages flattens the issues into display strings, step order preserved.
func (r CheckResult) Messages() []string {
	out := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		out = append(out, fmt.Sprintf("%s %s", issue.Label, issue.Message))
	}
	return out
}

// fieldRules is the parsed form of a field's validation list.
type fieldRules struct {
	min     *float64
	max     *float64
	minLen  *int
	maxLen  *int
	pattern *regexp.Regexp
}

func collectFieldRules(field model.Field, cache map[string]fieldRules) fieldRules {
	if rules, ok := cache[field.Name]; ok {
		return rules
	}
	rules := fieldRules{}
	for _, v := range field.Validations {
		switch v.Kind {
		case model.ValidationRuleMin:
			if val, ok := parseFloat(v.Params["value"]); ok {
				rules.min = &val
			}
		case model.ValidationRuleMax:
			if val, ok := parseFloat(v.Params["value"]); ok {
				rules.max = &val
			}
		case model.ValidationRuleMinLength:
			if val, ok := parseInt(v.Params["value"]); ok {
				rules.minLen = &val
			}
		case model.ValidationRuleMaxLength:
			if val, ok := parseInt(v.Params["value"]); ok {
				rules.maxLen = &val
			}
		case model.ValidationRulePattern:
			if expr := v.Params["pattern"]; expr != "" {
				if re, err := regexp.Compile(expr); err == nil {
					rules.pattern = re
				}
			}
		}
	}
	cache[field.Name] = rules
	return rules
}

// apply returns every rule violation for a present, non-empty value.
func (r fieldRules) apply(field model.Field, value any) []string {
	var out []string

	switch v := value.(type) {
	case string:
		if r.minLen != nil && len(v) < *r.minLen {
			out = append(out, fmt.Sprintf("needs at least %d characters", *r.minLen))
		}
		if r.maxLen != nil && len(v) > *r.maxLen {
			out = append(out, fmt.Sprintf("allows at most %d characters", *r.maxLen))
		}
		if r.pattern != nil && !r.pattern.MatchString(v) {
			out = append(out, "does not match the expected format")
		}
		if field.IsNumeric() {
			if n, ok := parseFloat(v); ok {
				out = append(out, r.applyBounds(n)...)
			}
		}
	case []string:
		if r.minLen != nil && len(v) < *r.minLen {
			out = append(out, fmt.Sprintf("needs at least %d entries", *r.minLen))
		}
		if r.maxLen != nil && len(v) > *r.maxLen {
			out = append(out, fmt.Sprintf("allows at most %d entries", *r.maxLen))
		}
	case []any:
		if r.minLen != nil && len(v) < *r.minLen {
			out = append(out, fmt.Sprintf("needs at least %d entries", *r.minLen))
		}
		if r.maxLen != nil && len(v) > *r.maxLen {
			out = append(out, fmt.Sprintf("allows at most %d entries", *r.maxLen))
		}
	default:
		if n, ok := coerceFloat(value); ok {
			out = append(out, r.applyBounds(n)...)
		}
	}

	return out
}

func (r fieldRules) applyBounds(v float64) []string {
	var out []string
	if r.min != nil && v < *r.min {
		out = append(out, fmt.Sprintf("must be at least %s", formatNumber(*r.min)))
	}
	if r.max != nil && v > *r.max {
		out = append(out, fmt.Sprintf("must be at most %s", formatNumber(*r.max)))
	}
	return out
}

// isEmptyAnswer mirrors the presence rules of the answer bag: whitespace-only
// strings and empty collections do not satisfy a required field.
func isEmptyAnswer(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}

func coerceFloat(value any) (float64, bool) {
	switch n := value.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case string:
		return parseFloat(n)
	default:
		return 0, false
	}
}

func parseFloat(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	val, err := strconv.ParseFloat(raw, 64)
	return val, err == nil
}

func parseInt(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	val, err := strconv.Atoi(raw)
	return val, err == nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
