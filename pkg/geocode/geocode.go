// Package geocode resolves postal addresses typed into a questionnaire.
// Coordinates are enrichment: when no provider answers, the typed text stays
// usable and the attempt degrades to an unvalidated address.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound signals the provider answered but matched nothing.
	ErrNotFound = errors.New("geocode: address not found")
	// ErrUnavailable signals the provider could not be reached or failed.
	ErrUnavailable = errors.New("geocode: provider unavailable")
)

// Location is a resolved address. Query preserves the text the resolution
// was requested for, so late results can be matched against the answer they
// belong to.
type Location struct {
	Query     string  `json:"query,omitempty"`
	Formatted string  `json:"formatted"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
	PlaceID   string  `json:"placeId,omitempty"`
}

// Suggestion is an autocomplete entry the host UI already holds, geometry
// included. Extracting it needs no network round trip.
type Suggestion struct {
	Label     string
	Latitude  float64
	Longitude float64
	PlaceID   string
}

// Provider turns free text into candidate locations.
type Provider interface {
	Geocode(ctx context.Context, query string) ([]Location, error)
}

// ProviderFunc adapts a function into a Provider.
type ProviderFunc func(ctx context.Context, query string) ([]Location, error)

// Geocode delegates to the underlying function.
func (fn ProviderFunc) Geocode(ctx context.Context, query string) ([]Location, error) {
	return fn(ctx, query)
}

// Resolver wraps a Provider with the two resolution paths the questionnaire
// uses: extraction from a picked suggestion and geocoding of free text.
type Resolver struct {
	provider Provider
}

// NewResolver builds a resolver over the provider.
func NewResolver(provider Provider) (*Resolver, error) {
	if provider == nil {
		return nil, errors.New("geocode: provider is required")
	}
	return &Resolver{provider: provider}, nil
}

// FromSelection lifts a suggestion the user picked into a validated Location
// without touching the provider.
func (r *Resolver) FromSelection(sel Suggestion) (Location, error) {
	label := strings.TrimSpace(sel.Label)
	if label == "" {
		return Location{}, errors.New("geocode: selection has no label")
	}
	if sel.Latitude == 0 && sel.Longitude == 0 {
		return Location{}, errors.New("geocode: selection has no geometry")
	}
	return Location{
		Query:     label,
		Formatted: label,
		Latitude:  sel.Latitude,
		Longitude: sel.Longitude,
		PlaceID:   sel.PlaceID,
	}, nil
}

// Lookup geocodes free text and returns the best match. The returned
// location carries the original query for late-resolution matching.
func (r *Resolver) Lookup(ctx context.Context, query string) (Location, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Location{}, fmt.Errorf("%w: empty query", ErrNotFound)
	}

	results, err := r.provider.Geocode(ctx, query)
	if err != nil {
		return Location{}, err
	}
	if len(results) == 0 {
		return Location{}, fmt.Errorf("%w: %q", ErrNotFound, query)
	}

	best := results[0]
	best.Query = query
	if best.Formatted == "" {
		best.Formatted = query
	}
	return best, nil
}
