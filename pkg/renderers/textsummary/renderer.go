// Package textsummary renders a completed questionnaire as aligned plain
// text for terminals and logs.
package textsummary

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/render"
)

// Renderer writes one block per answered step with label-aligned rows.
type Renderer struct{}

// New constructs the plain-text recap renderer.
func New() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Name() string {
	return "text"
}

func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

func (r *Renderer) Render(ctx context.Context, view render.View, opts render.Options) ([]byte, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	var b strings.Builder

	heading := opts.Heading
	if heading == "" {
		heading = view.Title
	}
	if heading != "" {
		b.WriteString(heading)
		b.WriteString("\n")
		b.WriteString(strings.Repeat("=", len(heading)))
		b.WriteString("\n")
	}
	if !view.CompletedAt.IsZero() {
		fmt.Fprintf(&b, "Completed %s\n", view.CompletedAt.Format("2006-01-02 15:04 MST"))
	}
	if view.Simulated {
		b.WriteString("Note: CV details below are example data; the parsing service was unavailable.\n")
	}

	for _, step := range view.Steps {
		b.WriteString("\n")
		b.WriteString(step.Title)
		b.WriteString("\n")
		b.WriteString(strings.Repeat("-", len(step.Title)))
		b.WriteString("\n")

		width := 0
		for _, row := range step.Rows {
			if len(row.Label) > width {
				width = len(row.Label)
			}
		}
		for _, row := range step.Rows {
			switch {
			case row.Ranked && len(row.Values) > 0:
				fmt.Fprintf(&b, "%-*s  %s\n", width, row.Label, rankedLine(row.Values))
			case row.Note != "":
				fmt.Fprintf(&b, "%-*s  %s (%s)\n", width, row.Label, row.Value, row.Note)
			default:
				fmt.Fprintf(&b, "%-*s  %s\n", width, row.Label, row.Value)
			}
		}
	}

	return []byte(b.String()), nil
}

func rankedLine(values []string) string {
	parts := make([]string, 0, len(values))
	for i, value := range values {
		parts = append(parts, fmt.Sprintf("%d. %s", i+1, value))
	}
	return strings.Join(parts, "  ")
}
