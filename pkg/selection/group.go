package selection

import "fmt"

// Group is a capped multi-select: a set of toggled option values that keeps
// insertion order and never admits duplicates. A limit of zero means
// unlimited.
type Group struct {
	options  map[string]struct{}
	ordered  []string
	limit    int
	selected []string
}

// NewGroup builds a group over the allowed option values.
func NewGroup(options []string, limit int) (*Group, error) {
	if len(options) == 0 {
		return nil, fmt.Errorf("selection: group needs at least one option")
	}
	if limit < 0 {
		return nil, fmt.Errorf("selection: negative limit %d", limit)
	}

	set := make(map[string]struct{}, len(options))
	ordered := make([]string, 0, len(options))
	for _, opt := range options {
		if opt == "" {
			return nil, fmt.Errorf("selection: empty option value")
		}
		if _, dup := set[opt]; dup {
			return nil, fmt.Errorf("selection: duplicate option %q", opt)
		}
		set[opt] = struct{}{}
		ordered = append(ordered, opt)
	}

	return &Group{options: set, ordered: ordered, limit: limit}, nil
}

// Toggle flips the membership of value and reports whether it is selected
// afterwards. Toggling a new value when the group is full returns
// ErrAtCapacity and leaves the selection untouched.
func (g *Group) Toggle(value string) (bool, error) {
	if _, ok := g.options[value]; !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownOption, value)
	}

	for i, existing := range g.selected {
		if existing == value {
			g.selected = append(g.selected[:i], g.selected[i+1:]...)
			return false, nil
		}
	}

	if g.AtCapacity() {
		return false, fmt.Errorf("%w: limit %d", ErrAtCapacity, g.limit)
	}
	g.selected = append(g.selected, value)
	return true, nil
}

// Selected returns the chosen values in the order they were toggled on.
func (g *Group) Selected() []string {
	return append([]string(nil), g.selected...)
}

// SetSelected replaces the selection wholesale, validating each value. Used
// to seed groups from stored answers.
func (g *Group) SetSelected(values []string) error {
	if g.limit > 0 && len(values) > g.limit {
		return fmt.Errorf("%w: %d values, limit %d", ErrAtCapacity, len(values), g.limit)
	}
	next := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		if _, ok := g.options[value]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownOption, value)
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		next = append(next, value)
	}
	g.selected = next
	return nil
}

// Contains reports whether value is currently selected.
func (g *Group) Contains(value string) bool {
	for _, existing := range g.selected {
		if existing == value {
			return true
		}
	}
	return false
}

// AtCapacity reports whether another toggle-on would be rejected.
func (g *Group) AtCapacity() bool {
	return g.limit > 0 && len(g.selected) >= g.limit
}

// Len reports how many values are selected.
func (g *Group) Len() int { return len(g.selected) }

// Limit reports the configured maximum, zero meaning unlimited.
func (g *Group) Limit() int { return g.limit }

// Options returns the allowed values in declaration order.
func (g *Group) Options() []string {
	return append([]string(nil), g.ordered...)
}

// Reset clears the selection.
func (g *Group) Reset() { g.selected = nil }
