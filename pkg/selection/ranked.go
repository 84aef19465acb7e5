package selection

import "fmt"

// Ranked pairs a selected value with its 1-based rank.
type Ranked struct {
	Value string
	Rank  int
}

// RankedGroup is a capped multi-select whose insertion order doubles as a
// ranking. Removing a value closes the gap, so the remaining ranks always
// form a dense 1..n sequence.
type RankedGroup struct {
	Group
}

// NewRankedGroup builds a ranked group. Unlike plain groups a ranking always
// carries an explicit limit.
func NewRankedGroup(options []string, limit int) (*RankedGroup, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("selection: ranked group needs a positive limit")
	}
	group, err := NewGroup(options, limit)
	if err != nil {
		return nil, err
	}
	return &RankedGroup{Group: *group}, nil
}

// RankOf reports the 1-based rank of value, or false when it is unselected.
func (g *RankedGroup) RankOf(value string) (int, bool) {
	for i, existing := range g.selected {
		if existing == value {
			return i + 1, true
		}
	}
	return 0, false
}

// Ranking returns the current selection with rank badges, rank order.
func (g *RankedGroup) Ranking() []Ranked {
	out := make([]Ranked, 0, len(g.selected))
	for i, value := range g.selected {
		out = append(out, Ranked{Value: value, Rank: i + 1})
	}
	return out
}
