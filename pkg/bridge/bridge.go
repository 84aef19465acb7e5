// Package bridge publishes completed questionnaire answers as a versioned
// transfer record through a key-value store and reads them back on the
// consuming side, including the wrapper shapes older publishers wrote.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formwizard/pkg/kvstore"
)

const (
	// DefaultRecordKey is the well-known key the transfer record lives under.
	DefaultRecordKey = "formwizard.transfer"
	// DefaultSummaryKey holds the short projection for the results surface.
	DefaultSummaryKey = "formwizard.summary"
)

// ErrCorruptRecord signals a payload under the record key that no supported
// shape can decode. Consumers fall back to an empty start.
var ErrCorruptRecord = errors.New("bridge: corrupt record")

// Bridge reads and writes transfer records through a kvstore.Store.
type Bridge struct {
	store      kvstore.Store
	recordKey  string
	summaryKey string
	now        func() time.Time
	newID      func() string
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithRecordKey overrides the transfer record key.
func WithRecordKey(key string) Option {
	return func(b *Bridge) {
		if key != "" {
			b.recordKey = key
		}
	}
}

// WithSummaryKey overrides the summary projection key.
func WithSummaryKey(key string) Option {
	return func(b *Bridge) {
		if key != "" {
			b.summaryKey = key
		}
	}
}

// WithClock overrides the timestamp source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Bridge) {
		if now != nil {
			b.now = now
		}
	}
}

// WithIDGenerator overrides record ID generation, mainly for tests.
func WithIDGenerator(newID func() string) Option {
	return func(b *Bridge) {
		if newID != nil {
			b.newID = newID
		}
	}
}

// New builds a bridge over the supplied store.
func New(store kvstore.Store, options ...Option) (*Bridge, error) {
	if store == nil {
		return nil, errors.New("bridge: store is required")
	}
	b := &Bridge{
		store:      store,
		recordKey:  DefaultRecordKey,
		summaryKey: DefaultSummaryKey,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range options {
		if opt != nil {
			opt(b)
		}
	}
	return b, nil
}

// Publish stamps the answers into a fresh record and overwrites the record
// key unconditionally.
func (b *Bridge) Publish(ctx context.Context, answers map[string]any) (Record, error) {
	record := Record{
		ID:            b.newID(),
		SchemaVersion: SchemaVersion,
		CreatedAt:     b.now().UTC(),
		Answers:       answers,
	}
	if record.Answers == nil {
		record.Answers = map[string]any{}
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return Record{}, fmt.Errorf("bridge: encode record: %w", err)
	}
	if err := b.store.Set(ctx, b.recordKey, payload); err != nil {
		return Record{}, fmt.Errorf("bridge: publish record: %w", err)
	}
	return record, nil
}

// PublishSummary writes the short projection under the summary key.
func (b *Bridge) PublishSummary(ctx context.Context, summary Summary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("bridge: encode summary: %w", err)
	}
	if err := b.store.Set(ctx, b.summaryKey, payload); err != nil {
		return fmt.Errorf("bridge: publish summary: %w", err)
	}
	return nil
}

// Consume reads the transfer record. An absent key yields (zero, false, nil);
// a payload no supported shape decodes yields ErrCorruptRecord.
func (b *Bridge) Consume(ctx context.Context) (Record, bool, error) {
	payload, err := b.store.Get(ctx, b.recordKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("bridge: read record: %w", err)
	}

	record, err := decodeRecord(payload)
	if err != nil {
		return Record{}, false, err
	}
	return record, true, nil
}

// ConsumeOrEmpty is the degraded read: corruption and store failures collapse
// to an absent record so the consumer starts fresh instead of failing.
func (b *Bridge) ConsumeOrEmpty(ctx context.Context) (Record, bool) {
	record, ok, err := b.Consume(ctx)
	if err != nil {
		return Record{}, false
	}
	return record, ok
}

// ConsumeSummary reads the summary projection if one was published.
func (b *Bridge) ConsumeSummary(ctx context.Context) (Summary, bool, error) {
	payload, err := b.store.Get(ctx, b.summaryKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return Summary{}, false, nil
	}
	if err != nil {
		return Summary{}, false, fmt.Errorf("bridge: read summary: %w", err)
	}

	var summary Summary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return Summary{}, false, fmt.Errorf("%w: summary: %v", ErrCorruptRecord, err)
	}
	return summary, true, nil
}

// Clear removes the record and summary keys.
func (b *Bridge) Clear(ctx context.Context) error {
	if err := b.store.Delete(ctx, b.recordKey); err != nil {
		return fmt.Errorf("bridge: clear record: %w", err)
	}
	if err := b.store.Delete(ctx, b.summaryKey); err != nil {
		return fmt.Errorf("bridge: clear summary: %w", err)
	}
	return nil
}

// decodeRecord accepts the canonical envelope first, then the wrapper shapes
// older publishers wrote: {"data": {...}}, {"fullData": {...}}, and finally a
// flat answers object.
func decodeRecord(payload []byte) (Record, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(payload, &probe); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}

	if _, hasVersion := probe["schemaVersion"]; hasVersion {
		var record Record
		if err := json.Unmarshal(payload, &record); err != nil {
			return Record{}, fmt.Errorf("%w: envelope: %v", ErrCorruptRecord, err)
		}
		if record.Answers == nil {
			record.Answers = map[string]any{}
		}
		return record, nil
	}

	for _, wrapper := range []string{"data", "fullData"} {
		raw, ok := probe[wrapper]
		if !ok {
			continue
		}
		var answers map[string]any
		if err := json.Unmarshal(raw, &answers); err == nil {
			return Record{SchemaVersion: 1, Answers: answers}, nil
		}
	}

	var answers map[string]any
	if err := json.Unmarshal(payload, &answers); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return Record{SchemaVersion: 1, Answers: answers}, nil
}
