// Package model defines the questionnaire structures shared across loaders,
// sessions, and renderers: steps, sections, fields, selection constraints,
// and the validation rules attached to them.
package model
