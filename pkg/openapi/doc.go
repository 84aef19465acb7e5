// Package openapi exposes the public contracts for loading and parsing
// OpenAPI documents. Implementations live under internal/openapi so the
// kin-openapi dependency stays hidden from consumers; the root package turns
// parsed operations into runnable questionnaires.
package openapi
