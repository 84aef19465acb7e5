package answers

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Store is the single mutable answer bag for one questionnaire attempt.
// Values are keyed by field name; dotted paths traverse nested maps for
// answers imported from structured sources. All mutation flows through Set,
// Remove, and Import so change subscribers never miss an update.
//
// A Store is owned by one goroutine, matching the event-driven model of the
// questionnaire UI it backs.
type Store struct {
	values      map[string]any
	subscribers map[int]func(Change)
	nextSub     int
}

// Change describes a single mutation of the bag.
type Change struct {
	Field string
	Old   any
	New   any
}

// New seeds a store with a deep copy of the prefill values.
func New(prefill map[string]any) *Store {
	return &Store{
		values:      cloneValues(prefill),
		subscribers: make(map[int]func(Change)),
	}
}

// Get resolves a field name or dotted path. Exact keys win over traversal so
// companion keys such as "address_latitude" are always found verbatim.
func (s *Store) Get(field string) (any, bool) {
	if s == nil || field == "" {
		return nil, false
	}
	if v, ok := s.values[field]; ok {
		return copyValue(v), true
	}
	if !strings.Contains(field, ".") {
		return nil, false
	}
	v, ok := getPath(s.values, field)
	if !ok {
		return nil, false
	}
	return copyValue(v), true
}

// GetString is a convenience accessor for text answers.
func (s *Store) GetString(field string) string {
	v, ok := s.Get(field)
	if !ok {
		return ""
	}
	if str, ok := v.(string); ok {
		return str
	}
	return fmt.Sprint(v)
}

// Set stores a value, creating intermediate maps for dotted paths, and
// notifies subscribers.
func (s *Store) Set(field string, value any) error {
	if s == nil {
		return fmt.Errorf("answers: store is nil")
	}
	if field == "" {
		return fmt.Errorf("answers: field name is empty")
	}
	if s.values == nil {
		s.values = make(map[string]any)
	}

	old, _ := s.Get(field)
	stored := copyValue(value)

	if strings.Contains(field, ".") {
		if _, flat := s.values[field]; !flat {
			if err := setNested(s.values, field, stored); err != nil {
				return err
			}
			s.notify(Change{Field: field, Old: old, New: copyValue(value)})
			return nil
		}
	}
	s.values[field] = stored
	s.notify(Change{Field: field, Old: old, New: copyValue(value)})
	return nil
}

// Remove deletes a field if present and notifies subscribers.
func (s *Store) Remove(field string) {
	if s == nil || field == "" {
		return
	}
	old, ok := s.values[field]
	if !ok {
		return
	}
	delete(s.values, field)
	s.notify(Change{Field: field, Old: copyValue(old), New: nil})
}

// Import merges a batch of values in sorted key order. With overwrite false,
// fields that already hold a non-empty answer are left alone, which is how
// CV-derived prefill avoids clobbering what the candidate already typed.
func (s *Store) Import(values map[string]any, overwrite bool) error {
	if s == nil {
		return fmt.Errorf("answers: store is nil")
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if !overwrite {
			if existing, ok := s.Get(k); ok && !isEmpty(existing) {
				continue
			}
		}
		if err := s.Set(k, values[k]); err != nil {
			return err
		}
	}
	return nil
}

// All returns a deep copy of every stored answer.
func (s *Store) All() map[string]any {
	if s == nil {
		return nil
	}
	return cloneValues(s.values)
}

// Len reports the number of top-level answers.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.values)
}

// Subscribe registers a change listener and returns its cancel function.
// Listeners run synchronously, in registration order, after the mutation has
// been applied.
func (s *Store) Subscribe(fn func(Change)) func() {
	if s == nil || fn == nil {
		return func() {}
	}
	if s.subscribers == nil {
		s.subscribers = make(map[int]func(Change))
	}
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	return func() { delete(s.subscribers, id) }
}

func (s *Store) notify(change Change) {
	if len(s.subscribers) == 0 {
		return
	}
	ids := make([]int, 0, len(s.subscribers))
	for id := range s.subscribers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if fn, ok := s.subscribers[id]; ok {
			fn(change)
		}
	}
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}

func cloneValues(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = copyValue(v)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = copyValue(v)
		}
		return clone
	case []string:
		return append([]string(nil), typed...)
	default:
		return typed
	}
}

func getPath(root map[string]any, path string) (any, bool) {
	if root == nil || path == "" {
		return nil, false
	}
	current := any(root)
	for _, segment := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

func setNested(root map[string]any, path string, value any) error {
	segments := strings.Split(path, ".")
	node := root
	for i, segment := range segments {
		if segment == "" {
			return fmt.Errorf("answers: empty segment in path %q", path)
		}
		if i == len(segments)-1 {
			node[segment] = value
			return nil
		}
		child, ok := node[segment].(map[string]any)
		if !ok {
			if _, exists := node[segment]; exists {
				return fmt.Errorf("answers: segment %q in path %q is not a map", segment, path)
			}
			child = make(map[string]any)
			node[segment] = child
		}
		node = child
	}
	return nil
}
