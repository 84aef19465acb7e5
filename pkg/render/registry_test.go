package render

import (
	"context"
	"testing"
)

type stubRenderer struct {
	name string
}

func (s stubRenderer) Name() string        { return s.name }
func (s stubRenderer) ContentType() string { return "text/plain" }
func (s stubRenderer) Render(context.Context, View, Options) ([]byte, error) {
	return []byte(s.name), nil
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.MustRegister(stubRenderer{name: "text"})
	registry.MustRegister(stubRenderer{name: "html"})

	if err := registry.Register(stubRenderer{name: "text"}); err == nil {
		t.Fatalf("duplicate registration should fail")
	}
	if err := registry.Register(nil); err == nil {
		t.Fatalf("nil renderer should fail")
	}
	if err := registry.Register(stubRenderer{}); err == nil {
		t.Fatalf("unnamed renderer should fail")
	}

	if !registry.Has("html") {
		t.Fatalf("html renderer should be registered")
	}
	if registry.Has("pdf") {
		t.Fatalf("pdf renderer should not exist")
	}

	renderer, err := registry.Get("text")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if renderer.Name() != "text" {
		t.Fatalf("unexpected renderer %q", renderer.Name())
	}
	if _, err := registry.Get("pdf"); err == nil {
		t.Fatalf("missing renderer should error")
	}

	names := registry.List()
	if len(names) != 2 || names[0] != "html" || names[1] != "text" {
		t.Fatalf("list = %v", names)
	}
}
