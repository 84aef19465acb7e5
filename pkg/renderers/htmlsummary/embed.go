package htmlsummary

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

// TemplatesFS exposes the embedded recap template bundle for consumers that
// want the built-in markup out of the box.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}
