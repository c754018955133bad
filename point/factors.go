// Package point implements job evaluation by compensable factors.
// Jobs pick one level per factor; the summed level scores place them in
// fixed score-interval grades.
package point

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidFactor is returned when a factor map breaks its invariants.
var ErrInvalidFactor = errors.New("invalid factor definition")

// ErrFactorNotFound is returned when an edit references a missing factor.
var ErrFactorNotFound = errors.New("factor not found")

// =============================================================================
// FACTOR DEFINITIONS
// =============================================================================

// FactorOption is one selectable level of a factor.
type FactorOption struct {
	Value int    `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
	Score int    `json:"score" yaml:"score"`
}

// FactorDefinition is a compensable factor (education, experience, ...).
type FactorDefinition struct {
	ID      string         `json:"id" yaml:"id"`
	Label   string         `json:"label" yaml:"label"`
	Options []FactorOption `json:"options" yaml:"options"`
}

// Option returns the option with the given value.
func (f FactorDefinition) Option(value int) (FactorOption, bool) {
	for _, opt := range f.Options {
		if opt.Value == value {
			return opt, true
		}
	}
	return FactorOption{}, false
}

// FactorMap is the versioned set of factors used to score jobs.
// Version is bumped on every settings update so a score can be tied to
// the configuration that produced it.
type FactorMap struct {
	Version int                         `json:"version"`
	Order   []string                    `json:"order"`
	Factors map[string]FactorDefinition `json:"factors"`
}

// Keys returns factor IDs in display order. Factors missing from Order
// follow in lexical order.
func (m FactorMap) Keys() []string {
	keys := make([]string, 0, len(m.Factors))
	seen := make(map[string]bool, len(m.Factors))
	for _, k := range m.Order {
		if _, ok := m.Factors[k]; ok && !seen[k] {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range m.Factors {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// Clone returns a deep copy.
func (m FactorMap) Clone() FactorMap {
	out := FactorMap{
		Version: m.Version,
		Order:   append([]string(nil), m.Order...),
		Factors: make(map[string]FactorDefinition, len(m.Factors)),
	}
	for k, f := range m.Factors {
		f.Options = append([]FactorOption(nil), f.Options...)
		out.Factors[k] = f
	}
	return out
}

// Validate checks that every factor has an ID matching its key, unique
// option values and non-negative scores.
func (m FactorMap) Validate() error {
	for key, f := range m.Factors {
		if key == "" || f.ID != key {
			return fmt.Errorf("%w: factor key %q does not match id %q", ErrInvalidFactor, key, f.ID)
		}
		values := make(map[int]bool, len(f.Options))
		for _, opt := range f.Options {
			if values[opt.Value] {
				return fmt.Errorf("%w: factor %q has duplicate level %d", ErrInvalidFactor, key, opt.Value)
			}
			values[opt.Value] = true
			if opt.Score < 0 {
				return fmt.Errorf("%w: factor %q level %d has negative score %d", ErrInvalidFactor, key, opt.Value, opt.Score)
			}
		}
	}
	return nil
}

// DefaultSelections selects level 1 for every factor.
func (m FactorMap) DefaultSelections() map[string]int {
	sel := make(map[string]int, len(m.Factors))
	for k := range m.Factors {
		sel[k] = 1
	}
	return sel
}

// =============================================================================
// FACTOR SCORE CALCULATOR
// =============================================================================

// Score sums, over every factor in the map, the score of the option the
// job selected. Unselected factors, unmatched levels and selection keys
// unknown to the map contribute nothing.
func Score(selections map[string]int, m FactorMap) int {
	if len(selections) == 0 || len(m.Factors) == 0 {
		return 0
	}
	total := 0
	for key, f := range m.Factors {
		selected, ok := selections[key]
		if !ok {
			continue
		}
		if opt, ok := f.Option(selected); ok {
			total += opt.Score
		}
	}
	return total
}

// Unmatched lists the selection keys that did not contribute to Score,
// either because the factor is unknown or the level has no option.
func Unmatched(selections map[string]int, m FactorMap) []string {
	var out []string
	for key, selected := range selections {
		f, ok := m.Factors[key]
		if !ok {
			out = append(out, key)
			continue
		}
		if _, ok := f.Option(selected); !ok {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// =============================================================================
// FACTOR EDITING
// =============================================================================

// DefaultOptionLabel names levels added without a label.
const DefaultOptionLabel = "New level"

// NewFactor returns a factor with a single level worth 10 points.
func NewFactor(id, label string) FactorDefinition {
	return FactorDefinition{
		ID:      id,
		Label:   label,
		Options: []FactorOption{{Value: 1, Label: "Level 1", Score: 10}},
	}
}

// AddFactor inserts or replaces a factor and appends it to the order.
func (m *FactorMap) AddFactor(f FactorDefinition) {
	if m.Factors == nil {
		m.Factors = make(map[string]FactorDefinition)
	}
	if _, exists := m.Factors[f.ID]; !exists {
		m.Order = append(m.Order, f.ID)
	}
	m.Factors[f.ID] = f
}

// RemoveFactor deletes a factor.
func (m *FactorMap) RemoveFactor(id string) error {
	if _, ok := m.Factors[id]; !ok {
		return fmt.Errorf("%w: %q", ErrFactorNotFound, id)
	}
	delete(m.Factors, id)
	order := m.Order[:0]
	for _, k := range m.Order {
		if k != id {
			order = append(order, k)
		}
	}
	m.Order = order
	return nil
}

// AddOption appends a new zero-score level numbered one above the highest
// existing level. An empty label becomes DefaultOptionLabel.
func (m *FactorMap) AddOption(factorID, label string) (FactorOption, error) {
	f, ok := m.Factors[factorID]
	if !ok {
		return FactorOption{}, fmt.Errorf("%w: %q", ErrFactorNotFound, factorID)
	}
	if label == "" {
		label = DefaultOptionLabel
	}
	next := 1
	for _, opt := range f.Options {
		if opt.Value >= next {
			next = opt.Value + 1
		}
	}
	opt := FactorOption{Value: next, Label: label, Score: 0}
	f.Options = append(append([]FactorOption(nil), f.Options...), opt)
	m.Factors[factorID] = f
	return opt, nil
}

// SetFactorLabel renames a factor.
func (m *FactorMap) SetFactorLabel(factorID, label string) error {
	f, ok := m.Factors[factorID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrFactorNotFound, factorID)
	}
	f.Label = label
	m.Factors[factorID] = f
	return nil
}

// SetOption updates the label and score of the level with the given value.
func (m *FactorMap) SetOption(factorID string, value int, label string, score int) error {
	f, ok := m.Factors[factorID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrFactorNotFound, factorID)
	}
	opts := append([]FactorOption(nil), f.Options...)
	for i := range opts {
		if opts[i].Value == value {
			opts[i].Label = label
			opts[i].Score = score
			f.Options = opts
			m.Factors[factorID] = f
			return nil
		}
	}
	return fmt.Errorf("%w: factor %q has no level %d", ErrFactorNotFound, factorID, value)
}

// RemoveOption deletes the level with the given value. Jobs that selected
// it score zero for the factor until they pick another level.
func (m *FactorMap) RemoveOption(factorID string, value int) error {
	f, ok := m.Factors[factorID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrFactorNotFound, factorID)
	}
	opts := make([]FactorOption, 0, len(f.Options))
	for _, opt := range f.Options {
		if opt.Value != value {
			opts = append(opts, opt)
		}
	}
	if len(opts) == len(f.Options) {
		return fmt.Errorf("%w: factor %q has no level %d", ErrFactorNotFound, factorID, value)
	}
	f.Options = opts
	m.Factors[factorID] = f
	return nil
}
