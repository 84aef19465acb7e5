package render

import "context"

// Renderer converts a recap view into a byte representation (HTML, plain
// text). Implementations register themselves by name so hosts can pick an
// output format at request time.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view View, options Options) ([]byte, error)
}
