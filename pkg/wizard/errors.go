package wizard

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSubmitted signals an operation against a session that already
	// reached its terminal state.
	ErrSubmitted = errors.New("wizard: session already submitted")
	// ErrLastStep signals an Advance on the final step; finishing the
	// questionnaire is Submit's job.
	ErrLastStep = errors.New("wizard: already on the last step")
	// ErrNotLastStep signals a Submit before the final step was reached.
	ErrNotLastStep = errors.New("wizard: submit requires the last step")
	// ErrUnknownField signals an operation against a field the
	// questionnaire does not declare.
	ErrUnknownField = errors.New("wizard: unknown field")
)

// BlockedError carries the full set of issues that stopped a guarded
// transition. Hosts unwrap it with errors.As to show every message at once.
type BlockedError struct {
	Result CheckResult
}

func (e *BlockedError) Error() string {
	if e == nil || len(e.Result.Issues) == 0 {
		return "wizard: step check failed"
	}
	parts := make([]string, 0, len(e.Result.Issues))
	for _, issue := range e.Result.Issues {
		parts = append(parts, fmt.Sprintf("%s %s", issue.Label, issue.Message))
	}
	return "wizard: step check failed: " + strings.Join(parts, "; ")
}
