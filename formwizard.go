// Package formwizard is the composition root for the questionnaire engine:
// it opens sessions over loaded or derived definitions and wires transfer
// record publication into submission.
package formwizard

import (
	"context"

	"github.com/goliatone/go-formwizard/pkg/bridge"
	"github.com/goliatone/go-formwizard/pkg/definition"
	"github.com/goliatone/go-formwizard/pkg/model"
	"github.com/goliatone/go-formwizard/pkg/visibility"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

// Option configures a session opened through this package.
type Option func(*config)

type config struct {
	wizardOpts    []wizard.Option
	bridge        *bridge.Bridge
	summaryFields bridge.FieldMap
}

// WithPrefill seeds the answer bag before the session starts.
func WithPrefill(values map[string]any) Option {
	return func(c *config) {
		c.wizardOpts = append(c.wizardOpts, wizard.WithPrefill(values))
	}
}

// WithEvaluator swaps the visibility evaluator.
func WithEvaluator(eval visibility.Evaluator) Option {
	return func(c *config) {
		c.wizardOpts = append(c.wizardOpts, wizard.WithEvaluator(eval))
	}
}

// WithExtras exposes ambient facts to visibility rules.
func WithExtras(extras map[string]any) Option {
	return func(c *config) {
		c.wizardOpts = append(c.wizardOpts, wizard.WithExtras(extras))
	}
}

// WithSubmitHook appends a custom hook to run after submission.
func WithSubmitHook(hook wizard.SubmitHook) Option {
	return func(c *config) {
		c.wizardOpts = append(c.wizardOpts, wizard.WithSubmitHook(hook))
	}
}

// WithBridge publishes the transfer record and the summary projection through
// the bridge when the session submits.
func WithBridge(b *bridge.Bridge) Option {
	return func(c *config) {
		c.bridge = b
	}
}

// WithSummaryFields overrides the answer fields the published summary is
// projected from. Defaults to the bundled questionnaire's field names.
func WithSummaryFields(fields bridge.FieldMap) Option {
	return func(c *config) {
		c.summaryFields = fields
	}
}

// NewSession validates the questionnaire and opens a session on its first
// step, with bridge publication wired as a submit hook when configured.
func NewSession(q model.Questionnaire, options ...Option) (*wizard.Session, error) {
	cfg := config{summaryFields: bridge.DefaultFieldMap()}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	if cfg.bridge != nil {
		b := cfg.bridge
		fields := cfg.summaryFields
		cfg.wizardOpts = append(cfg.wizardOpts, wizard.WithSubmitHook(
			func(ctx context.Context, snap wizard.Snapshot) error {
				if _, err := b.Publish(ctx, snap.Answers); err != nil {
					return err
				}
				return b.PublishSummary(ctx, bridge.SummaryFromAnswers(snap.Answers, fields))
			}))
	}

	return wizard.New(q, cfg.wizardOpts...)
}

// DefaultDefinition returns the embedded candidate-intake questionnaire.
func DefaultDefinition() (model.Questionnaire, error) {
	return definition.Default()
}

// LoadDefinition reads and validates a questionnaire definition file, JSON
// attempted first with YAML as fallback.
func LoadDefinition(path string) (model.Questionnaire, error) {
	return definition.LoadFile(path)
}
