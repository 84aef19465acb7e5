package bridge

import (
	"fmt"
	"strings"
	"time"
)

// SchemaVersion is stamped on every record this package publishes. Version 1
// covers the historical wrapper shapes consumed for backward compatibility.
const SchemaVersion = 2

// Record is the transfer envelope a completed questionnaire hands to the
// results surface.
type Record struct {
	ID            string         `json:"id"`
	SchemaVersion int            `json:"schemaVersion"`
	CreatedAt     time.Time      `json:"createdAt"`
	Answers       map[string]any `json:"answers"`
}

// Summary is the short-lived projection shown while the full record loads.
type Summary struct {
	FullName    string `json:"fullName"`
	JobTitle    string `json:"jobTitle"`
	SalaryRange string `json:"salaryRange"`
}

// FieldMap names the answer fields a summary is projected from.
type FieldMap struct {
	FullName  string
	JobTitle  string
	SalaryMin string
	SalaryMax string
}

// DefaultFieldMap matches the field names of the bundled candidate
// questionnaire.
func DefaultFieldMap() FieldMap {
	return FieldMap{
		FullName:  "fullName",
		JobTitle:  "jobTitle",
		SalaryMin: "salaryMin",
		SalaryMax: "salaryMax",
	}
}

// SummaryFromAnswers projects the summary fields out of an answer bag.
func SummaryFromAnswers(answers map[string]any, fields FieldMap) Summary {
	return Summary{
		FullName:    stringAnswer(answers[fields.FullName]),
		JobTitle:    stringAnswer(answers[fields.JobTitle]),
		SalaryRange: salaryRange(answers[fields.SalaryMin], answers[fields.SalaryMax]),
	}
}

func salaryRange(min, max any) string {
	lo := numberAnswer(min)
	hi := numberAnswer(max)
	switch {
	case lo != "" && hi != "":
		return lo + "-" + hi
	case lo != "":
		return lo + "+"
	case hi != "":
		return "up to " + hi
	default:
		return ""
	}
}

func stringAnswer(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func numberAnswer(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	case float32:
		return numberAnswer(float64(v))
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	case string:
		return strings.TrimSpace(v)
	default:
		return ""
	}
}
