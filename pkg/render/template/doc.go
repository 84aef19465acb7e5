// Package template defines the renderer-agnostic template seam. Renderers
// depend on the TemplateRenderer interface; the pongo2-backed implementation
// lives in the gotemplate subpackage.
package template
