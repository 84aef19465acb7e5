package render

import theme "github.com/goliatone/go-theme"

// Options describe per-request data renderers can use to customise their
// output without mutating the view.
type Options struct {
	// Heading overrides the questionnaire title shown at the top of the
	// recap. Empty keeps the view's own title.
	Heading string

	// Theme carries resolved go-theme configuration. The HTML renderer maps
	// theme tokens onto CSS custom properties; text renderers ignore it.
	Theme *theme.RendererConfig
}
