package cvparse

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

//go:embed data/demo_candidate.json
var demoFS embed.FS

const demoPath = "data/demo_candidate.json"

var (
	demoOnce      sync.Once
	demoCandidate Candidate
	demoErr       error
)

// Demo returns the bundled example candidate used when the parsing backend
// cannot be reached.
func Demo() (Candidate, error) {
	demoOnce.Do(func() {
		raw, err := demoFS.ReadFile(demoPath)
		if err != nil {
			demoErr = fmt.Errorf("cvparse: read demo record: %w", err)
			return
		}
		if err := json.Unmarshal(raw, &demoCandidate); err != nil {
			demoErr = fmt.Errorf("cvparse: decode demo record: %w", err)
		}
	})

	if demoErr != nil {
		return Candidate{}, demoErr
	}
	out := demoCandidate
	out.Skills = append([]string{}, demoCandidate.Skills...)
	return out, nil
}

// ParseOrDemo uploads a document and waits for the parsed record, degrading
// to the bundled example candidate when the backend is unreachable, times
// out, or has no record. The second return reports whether the candidate is
// simulated data rather than the real parse result. It never returns an
// error; a nil client always yields the demo candidate.
func (c *Client) ParseOrDemo(ctx context.Context, filename string, r io.Reader) (Candidate, bool) {
	if c == nil || r == nil {
		candidate, _ := Demo()
		return candidate, true
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.waitTimeout)
		defer cancel()
	}

	candidate, err := c.ParseAndWait(ctx, filename, r)
	if err != nil || candidate.IsZero() {
		fallback, _ := Demo()
		return fallback, true
	}
	return candidate, false
}
