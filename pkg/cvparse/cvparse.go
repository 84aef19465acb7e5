// Package cvparse talks to the document parsing backend that extracts
// candidate details from an uploaded CV. The backend is optional: every
// entry point has a demo fallback so a questionnaire session keeps working
// when the service is down, slow, or simply not deployed.
package cvparse

import "errors"

// SimulatedAnswerKey marks an answer bag whose CV-derived values came from
// the demo candidate instead of a live parse. Renderers surface it so sample
// data is never mistaken for the real document.
const SimulatedAnswerKey = "cv_simulated"

var (
	// ErrNotFound reports that the backend has no record for the given id.
	ErrNotFound = errors.New("cvparse: record not found")
	// ErrPending reports that parsing started but has not finished yet.
	ErrPending = errors.New("cvparse: parsing still in progress")
	// ErrUnavailable reports that the backend could not be reached or
	// answered with a server failure.
	ErrUnavailable = errors.New("cvparse: backend unavailable")
)

// Receipt acknowledges an accepted upload. The id is used to poll for the
// parsed record.
type Receipt struct {
	ID string `json:"id"`
}

// Candidate is the parsed view of an uploaded CV.
type Candidate struct {
	FullName string   `json:"fullName"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	JobTitle string   `json:"jobTitle"`
	Skills   []string `json:"skills,omitempty"`
	Summary  string   `json:"summary,omitempty"`
}

// IsZero reports whether no field of the candidate carries data.
func (c Candidate) IsZero() bool {
	return c.FullName == "" && c.Email == "" && c.Phone == "" &&
		c.JobTitle == "" && len(c.Skills) == 0 && c.Summary == ""
}

// Prefill converts the candidate into answer values keyed by the canonical
// questionnaire field names. Empty fields are omitted so prefilling never
// clobbers an answer the user already typed.
func (c Candidate) Prefill() map[string]any {
	values := map[string]any{}
	if c.FullName != "" {
		values["fullName"] = c.FullName
	}
	if c.Email != "" {
		values["email"] = c.Email
	}
	if c.Phone != "" {
		values["phone"] = c.Phone
	}
	if c.JobTitle != "" {
		values["jobTitle"] = c.JobTitle
	}
	if len(c.Skills) != 0 {
		values["skills"] = append([]string{}, c.Skills...)
	}
	if c.Summary != "" {
		values["summary"] = c.Summary
	}
	return values
}
