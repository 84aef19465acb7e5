package formwizard

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formwizard/internal/openapi/build"
	internalLoader "github.com/goliatone/go-formwizard/internal/openapi/loader"
	internalParser "github.com/goliatone/go-formwizard/internal/openapi/parser"
	"github.com/goliatone/go-formwizard/pkg/model"
	pkgopenapi "github.com/goliatone/go-formwizard/pkg/openapi"
)

// NewLoader constructs an OpenAPI loader using the internal implementation
// while keeping the concrete type hidden from consumers.
func NewLoader(options ...pkgopenapi.LoaderOption) pkgopenapi.Loader {
	cfg := pkgopenapi.NewLoaderOptions(options...)
	return internalLoader.New(cfg)
}

// NewParser constructs an OpenAPI parser backed by the internal
// implementation.
func NewParser(options ...pkgopenapi.ParserOption) pkgopenapi.Parser {
	cfg := pkgopenapi.NewParserOptions(options...)
	return internalParser.New(cfg)
}

// FromOpenAPI loads an OpenAPI document and derives a single-step
// questionnaire from the named operation's request schema.
func FromOpenAPI(ctx context.Context, src pkgopenapi.Source, operationID string, loaderOpts ...pkgopenapi.LoaderOption) (model.Questionnaire, error) {
	loader := NewLoader(loaderOpts...)
	doc, err := loader.Load(ctx, src)
	if err != nil {
		return model.Questionnaire{}, fmt.Errorf("formwizard: load document: %w", err)
	}

	operations, err := NewParser().Operations(ctx, doc)
	if err != nil {
		return model.Questionnaire{}, fmt.Errorf("formwizard: parse document: %w", err)
	}

	op, ok := operations[operationID]
	if !ok {
		return model.Questionnaire{}, fmt.Errorf("formwizard: operation %q not found in %s", operationID, doc.Location())
	}
	return build.Questionnaire(op)
}
