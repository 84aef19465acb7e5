// Package htmlsummary renders a completed questionnaire as a standalone HTML
// recap page. Markup coming from definitions is sanitized, theme tokens map
// onto CSS custom properties, and the template bundle can be swapped out.
package htmlsummary

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/goliatone/go-formwizard/pkg/render"
	rendertemplate "github.com/goliatone/go-formwizard/pkg/render/template"
	gotemplate "github.com/goliatone/go-formwizard/pkg/render/template/gotemplate"
)

const recapTemplate = "templates/recap"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

type Renderer struct {
	templates rendertemplate.TemplateRenderer
}

// New constructs the HTML recap renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("htmlsummary: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{templates: renderer}, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

func (r *Renderer) Render(ctx context.Context, view render.View, opts render.Options) ([]byte, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	if r.templates == nil {
		return nil, fmt.Errorf("htmlsummary: template renderer is nil")
	}

	result, err := r.templates.RenderTemplate(recapTemplate, templateContext(view, opts))
	if err != nil {
		return nil, fmt.Errorf("htmlsummary: render template: %w", err)
	}
	return []byte(result), nil
}

// templateContext flattens the view into plain maps so the template never
// touches un-sanitized definition markup.
func templateContext(view render.View, opts render.Options) map[string]any {
	heading := opts.Heading
	if heading == "" {
		heading = view.Title
	}

	steps := make([]any, 0, len(view.Steps))
	for _, step := range view.Steps {
		rows := make([]any, 0, len(step.Rows))
		for _, row := range step.Rows {
			values := make([]any, 0, len(row.Values))
			for _, value := range row.Values {
				values = append(values, value)
			}
			rows = append(rows, map[string]any{
				"field":  row.Field,
				"label":  row.Label,
				"value":  row.Value,
				"values": values,
				"ranked": row.Ranked,
				"note":   row.Note,
			})
		}
		steps = append(steps, map[string]any{
			"id":    step.ID,
			"title": step.Title,
			"intro": sanitizeMarkup(step.Intro),
			"rows":  rows,
		})
	}

	completed := ""
	if !view.CompletedAt.IsZero() {
		completed = view.CompletedAt.Format("2 January 2006, 15:04 MST")
	}

	theme := buildThemeContext(opts.Theme)

	return map[string]any{
		"heading":     heading,
		"version":     view.Version,
		"completedAt": completed,
		"simulated":   view.Simulated,
		"steps":       steps,
		"theme": map[string]any{
			"name":         theme.Name,
			"variant":      theme.Variant,
			"cssVarsStyle": theme.CSSVarsStyle,
		},
	}
}
