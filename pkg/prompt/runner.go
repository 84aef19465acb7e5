// Package prompt runs a questionnaire session in the terminal. The runner
// walks the visible sections of each step, prompts field by field through a
// PromptDriver, and lets the wizard's step checks decide when the candidate
// may move on.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/cvparse"
	"github.com/goliatone/go-formwizard/pkg/geocode"
	"github.com/goliatone/go-formwizard/pkg/model"
	"github.com/goliatone/go-formwizard/pkg/selection"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

const rankedDoneLabel = "(done)"

// Runner drives one wizard.Session through an interactive terminal.
type Runner struct {
	driver   PromptDriver
	resolver *geocode.Resolver
	parser   *cvparse.Client
	pageSize int
}

// NewRunner builds a runner; the survey driver is used unless WithDriver
// swaps it out.
func NewRunner(options ...Option) *Runner {
	r := &Runner{driver: NewSurveyDriver()}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Run walks every step of the session and submits it from the last one. A
// failing step check re-prompts the step with every message shown; the
// returned snapshot is the submitted answer set.
func (r *Runner) Run(ctx context.Context, session *wizard.Session) (wizard.Snapshot, error) {
	if session == nil {
		return wizard.Snapshot{}, errors.New("prompt: session is required")
	}

	for {
		if err := ctx.Err(); err != nil {
			return wizard.Snapshot{}, err
		}

		step := session.Step()
		progress := session.Progress()
		header := fmt.Sprintf("Step %d of %d: %s", progress.Current, progress.Total, step.Title)
		if err := r.driver.Info(ctx, header); err != nil {
			return wizard.Snapshot{}, err
		}
		if intro := strings.TrimSpace(step.Intro); intro != "" {
			if err := r.driver.Info(ctx, intro); err != nil {
				return wizard.Snapshot{}, err
			}
		}

		if err := r.promptStep(ctx, session); err != nil {
			return wizard.Snapshot{}, err
		}

		if progress.Current == progress.Total {
			snap, err := session.Submit(ctx)
			var blocked *wizard.BlockedError
			if errors.As(err, &blocked) {
				if err := r.reportIssues(ctx, blocked.Result); err != nil {
					return wizard.Snapshot{}, err
				}
				continue
			}
			return snap, err
		}

		result, err := session.Advance()
		if err != nil {
			return wizard.Snapshot{}, err
		}
		if !result.OK() {
			if err := r.reportIssues(ctx, result); err != nil {
				return wizard.Snapshot{}, err
			}
		}
	}
}

// promptStep asks every field of the current step's visible sections. The
// visible set is re-read after each section because answering a controlling
// field can reveal one that was hidden when the step started.
func (r *Runner) promptStep(ctx context.Context, session *wizard.Session) error {
	done := map[string]bool{}
	for {
		var next *model.Section
		for _, sec := range session.VisibleSections() {
			if !done[sec.ID] {
				next = &sec
				break
			}
		}
		if next == nil {
			return nil
		}
		done[next.ID] = true

		if title := strings.TrimSpace(next.Title); title != "" {
			if err := r.driver.Info(ctx, title); err != nil {
				return err
			}
		}
		for _, field := range next.Fields {
			if err := r.promptField(ctx, session, field); err != nil {
				return err
			}
		}
	}
}

func (r *Runner) promptField(ctx context.Context, session *wizard.Session, field model.Field) error {
	switch field.Type {
	case model.FieldTypeBoolean:
		return r.promptBoolean(ctx, session, field)
	case model.FieldTypeInteger, model.FieldTypeNumber:
		return r.promptNumber(ctx, session, field)
	case model.FieldTypeSelect:
		return r.promptSelect(ctx, session, field)
	case model.FieldTypeMultiSelect:
		if field.Ranked {
			return r.promptRanked(ctx, session, field)
		}
		return r.promptMultiSelect(ctx, session, field)
	case model.FieldTypeAddress:
		return r.promptAddress(ctx, session, field)
	case model.FieldTypeFile:
		return r.promptFile(ctx, session, field)
	default:
		return r.promptString(ctx, session, field)
	}
}

func (r *Runner) promptString(ctx context.Context, session *wizard.Session, field model.Field) error {
	cfg := InputConfig{
		Message:     field.DisplayLabel(),
		Default:     session.GetString(field.Name),
		Help:        field.Help,
		Placeholder: field.Placeholder,
	}

	var response string
	var err error
	switch {
	case field.Format == "password":
		response, err = r.driver.Password(ctx, cfg)
	case field.Format == "textarea":
		response, err = r.driver.TextArea(ctx, TextAreaConfig{
			Message: cfg.Message,
			Default: cfg.Default,
			Help:    cfg.Help,
		})
	default:
		response, err = r.driver.Input(ctx, cfg)
	}
	if err != nil {
		return err
	}
	if strings.TrimSpace(response) == "" && !field.Required {
		return nil
	}
	return session.Set(field.Name, response)
}

func (r *Runner) promptBoolean(ctx context.Context, session *wizard.Session, field model.Field) error {
	current, _ := session.Get(field.Name)
	def, _ := current.(bool)
	response, err := r.driver.Confirm(ctx, ConfirmConfig{
		Message: field.DisplayLabel(),
		Default: def,
		Help:    field.Help,
	})
	if err != nil {
		return err
	}
	return session.Set(field.Name, response)
}

func (r *Runner) promptNumber(ctx context.Context, session *wizard.Session, field model.Field) error {
	for {
		input, err := r.driver.Input(ctx, InputConfig{
			Message: field.DisplayLabel(),
			Default: session.GetString(field.Name),
			Help:    field.Help,
		})
		if err != nil {
			return err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			if !field.Required {
				return nil
			}
			if err := r.driver.Info(ctx, fmt.Sprintf("%s is required", field.DisplayLabel())); err != nil {
				return err
			}
			continue
		}

		if field.Type == model.FieldTypeInteger {
			parsed, err := strconv.ParseInt(input, 10, 64)
			if err != nil {
				if err := r.driver.Info(ctx, fmt.Sprintf("%s must be a whole number", field.DisplayLabel())); err != nil {
					return err
				}
				continue
			}
			return session.Set(field.Name, parsed)
		}

		parsed, err := strconv.ParseFloat(input, 64)
		if err != nil {
			if err := r.driver.Info(ctx, fmt.Sprintf("%s must be a number", field.DisplayLabel())); err != nil {
				return err
			}
			continue
		}
		return session.Set(field.Name, parsed)
	}
}

func (r *Runner) promptSelect(ctx context.Context, session *wizard.Session, field model.Field) error {
	labels := optionLabels(field)
	defaultIndex := indexOf(field.OptionValues(), session.GetString(field.Name))
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      field.DisplayLabel(),
		Options:      labels,
		DefaultIndex: defaultIndex,
		Help:         field.Help,
		PageSize:     r.pageSize,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(field.Options) {
		return nil
	}
	return session.Set(field.Name, field.Options[idx].Value)
}

func (r *Runner) promptMultiSelect(ctx context.Context, session *wizard.Session, field model.Field) error {
	values := field.OptionValues()
	labels := optionLabels(field)

	for {
		indices, err := r.driver.MultiSelect(ctx, SelectConfig{
			Message:  field.DisplayLabel(),
			Options:  labels,
			Defaults: indicesOf(values, session.Selection(field.Name)),
			Help:     field.Help,
			PageSize: r.pageSize,
		})
		if err != nil {
			return err
		}

		picked := make([]string, 0, len(indices))
		for _, idx := range indices {
			if idx >= 0 && idx < len(values) {
				picked = append(picked, values[idx])
			}
		}
		if err := session.Set(field.Name, picked); err != nil {
			if errors.Is(err, selection.ErrAtCapacity) {
				msg := fmt.Sprintf("%s allows at most %d choices", field.DisplayLabel(), field.MaxSelections)
				if err := r.driver.Info(ctx, msg); err != nil {
					return err
				}
				continue
			}
			return err
		}
		return nil
	}
}

// promptRanked collects an ordered selection one pick at a time: the next
// choice gets the next rank, and a "(done)" entry finishes the list once the
// group allows stopping.
func (r *Runner) promptRanked(ctx context.Context, session *wizard.Session, field model.Field) error {
	for {
		ranking := session.Ranking(field.Name)
		if field.MaxSelections > 0 && len(ranking) >= field.MaxSelections {
			return nil
		}

		chosen := map[string]bool{}
		for _, entry := range ranking {
			chosen[entry.Value] = true
		}

		var labels []string
		var values []string
		for _, opt := range field.Options {
			if chosen[opt.Value] {
				continue
			}
			labels = append(labels, field.OptionLabel(opt.Value))
			values = append(values, opt.Value)
		}
		if len(values) == 0 {
			return nil
		}
		if len(ranking) > 0 {
			labels = append(labels, rankedDoneLabel)
		}

		message := fmt.Sprintf("%s (choice %d)", field.DisplayLabel(), len(ranking)+1)
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:  message,
			Options:  labels,
			Help:     field.Help,
			PageSize: r.pageSize,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(values) {
			return nil
		}
		if _, err := session.Toggle(field.Name, values[idx]); err != nil {
			return err
		}
	}
}

// promptAddress stores the typed text and, when a resolver is wired, tries to
// verify it. A failed lookup keeps the text and tells the candidate the
// address stays unverified; it never blocks the questionnaire.
func (r *Runner) promptAddress(ctx context.Context, session *wizard.Session, field model.Field) error {
	text, err := r.driver.Input(ctx, InputConfig{
		Message:     field.DisplayLabel(),
		Default:     session.GetString(field.Name),
		Help:        field.Help,
		Placeholder: field.Placeholder,
	})
	if err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if err := session.Set(field.Name, text); err != nil {
		return err
	}
	if r.resolver == nil {
		return nil
	}

	loc, err := r.resolver.Lookup(ctx, text)
	if err != nil {
		msg := "Could not verify the address; keeping it as typed."
		if errors.Is(err, geocode.ErrNotFound) {
			msg = "No match for that address; keeping it as typed."
		}
		return r.driver.Info(ctx, msg)
	}
	if session.ApplyAddress(field.Name, loc) {
		return r.driver.Info(ctx, fmt.Sprintf("Address verified: %s", loc.Formatted))
	}
	return nil
}

// promptFile asks for a CV path and, when a parser is wired, prefills the
// session from the parsed candidate. Answers the candidate already gave win
// over parsed values.
func (r *Runner) promptFile(ctx context.Context, session *wizard.Session, field model.Field) error {
	path, err := r.driver.Input(ctx, InputConfig{
		Message: field.DisplayLabel(),
		Help:    field.Help,
	})
	if err != nil {
		return err
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if err := session.Set(field.Name, filepath.Base(path)); err != nil {
		return err
	}
	if r.parser == nil {
		return nil
	}

	file, err := os.Open(path)
	if err != nil {
		return r.driver.Info(ctx, fmt.Sprintf("Could not read %s; continuing without it.", path))
	}
	defer file.Close()

	candidate, simulated := r.parser.ParseOrDemo(ctx, filepath.Base(path), file)
	if err := session.ImportAnswers(candidate.Prefill(), false); err != nil {
		return err
	}
	if err := session.Set(cvparse.SimulatedAnswerKey, simulated); err != nil {
		return err
	}
	if simulated {
		return r.driver.Info(ctx, "Parsing service unavailable; showing example data instead.")
	}
	return r.driver.Info(ctx, fmt.Sprintf("Extracted details for %s; please verify them.", candidate.FullName))
}

func (r *Runner) reportIssues(ctx context.Context, result wizard.CheckResult) error {
	for _, msg := range result.Messages() {
		if err := r.driver.Info(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func optionLabels(field model.Field) []string {
	out := make([]string, 0, len(field.Options))
	for _, opt := range field.Options {
		out = append(out, field.OptionLabel(opt.Value))
	}
	return out
}
