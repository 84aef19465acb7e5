package prompt

import (
	"github.com/goliatone/go-formwizard/pkg/cvparse"
	"github.com/goliatone/go-formwizard/pkg/geocode"
)

// Option configures the Runner.
type Option func(*Runner)

// WithDriver overrides the prompt driver used by the runner.
func WithDriver(driver PromptDriver) Option {
	return func(r *Runner) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithResolver enables address verification for address fields. Without a
// resolver the typed text is stored as-is and stays unvalidated.
func WithResolver(resolver *geocode.Resolver) Option {
	return func(r *Runner) {
		r.resolver = resolver
	}
}

// WithParser enables CV parsing for file fields. Parsing degrades to the
// embedded demo candidate when the backend is unreachable, so wiring a
// parser never makes the questionnaire depend on the network.
func WithParser(parser *cvparse.Client) Option {
	return func(r *Runner) {
		r.parser = parser
	}
}

// WithPageSize caps the number of options shown at once in select prompts.
func WithPageSize(size int) Option {
	return func(r *Runner) {
		if size > 0 {
			r.pageSize = size
		}
	}
}
