package permute

import (
	"fmt"
	"strings"

	"github.com/gekko3d/fundamentals/lessonrt/rt/core"
)

// Choice is one independent setting with Values discrete options.
type Choice struct {
	Name   string
	Values int
}

func Binary(name string) Choice { return Choice{Name: name, Values: 2} }

// Combination holds one value index per choice, in choice order.
type Combination []int

func (c Combination) String() string {
	parts := make([]string, len(c))
	for i, v := range c {
		parts[i] = fmt.Sprint(v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Key packs a Combination as a mixed-radix integer with choice 0 varying fastest.
// For binary choices choice i is bit i.
type Key int

// Table holds one prebuilt value per combination of its choices.
type Table[T any] struct {
	choices []Choice
	entries []T
}

func validateChoices(choices []Choice) (int, error) {
	if len(choices) == 0 {
		return 0, core.Configf("permutation table needs at least one choice")
	}
	total := 1
	for _, c := range choices {
		if c.Values < 1 {
			return 0, core.Configf("choice %q has %d values", c.Name, c.Values)
		}
		total *= c.Values
	}
	return total, nil
}

// BuildAll calls factory once per combination in key order. On a factory error the
// entries built so far are released (when T is a core.Handle) and the error returned.
func BuildAll[T any](choices []Choice, factory func(Combination) (T, error)) (*Table[T], error) {
	total, err := validateChoices(choices)
	if err != nil {
		return nil, err
	}
	t := &Table[T]{
		choices: append([]Choice(nil), choices...),
		entries: make([]T, 0, total),
	}
	for k := 0; k < total; k++ {
		v, err := factory(t.Combination(Key(k)))
		if err != nil {
			t.Release(nil)
			return nil, fmt.Errorf("permutation %v: %w", t.Combination(Key(k)), err)
		}
		t.entries = append(t.entries, v)
	}
	return t, nil
}

func (t *Table[T]) Len() int          { return len(t.entries) }
func (t *Table[T]) Choices() []Choice { return append([]Choice(nil), t.choices...) }

func (t *Table[T]) Key(c Combination) (Key, error) {
	if len(c) != len(t.choices) {
		return 0, core.Rangef("combination has %d values, table has %d choices", len(c), len(t.choices))
	}
	key, radix := 0, 1
	for i, v := range c {
		if v < 0 || v >= t.choices[i].Values {
			return 0, core.Rangef("choice %q value %d out of range [0,%d)", t.choices[i].Name, v, t.choices[i].Values)
		}
		key += v * radix
		radix *= t.choices[i].Values
	}
	return Key(key), nil
}

func (t *Table[T]) Combination(k Key) Combination {
	c := make(Combination, len(t.choices))
	rest := int(k)
	for i, ch := range t.choices {
		c[i] = rest % ch.Values
		rest /= ch.Values
	}
	return c
}

func (t *Table[T]) Lookup(k Key) (T, error) {
	if k < 0 || int(k) >= len(t.entries) {
		var zero T
		return zero, core.Rangef("permutation key %d out of range [0,%d)", k, len(t.entries))
	}
	return t.entries[k], nil
}

// LookupCombination is Key followed by Lookup.
func (t *Table[T]) LookupCombination(c Combination) (T, error) {
	k, err := t.Key(c)
	if err != nil {
		var zero T
		return zero, err
	}
	return t.Lookup(k)
}

func (t *Table[T]) MustLookup(k Key) T {
	v, err := t.Lookup(k)
	if err != nil {
		panic(err)
	}
	return v
}

func (t *Table[T]) Each(fn func(Key, T)) {
	for i, v := range t.entries {
		fn(Key(i), v)
	}
}

// Release hands every entry to release, or calls Release on entries that are
// core.Handles when release is nil. The table is empty afterwards.
func (t *Table[T]) Release(release func(T)) {
	for _, v := range t.entries {
		if release != nil {
			release(v)
			continue
		}
		if h, ok := any(v).(core.Handle); ok && h != nil {
			h.Release()
		}
	}
	t.entries = nil
}
