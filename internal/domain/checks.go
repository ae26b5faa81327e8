package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// CheckKey builds the key under which an item's checked state is stored.
func CheckKey(ci, si, ii int) string {
	return fmt.Sprintf("%d-%d-%d", ci, si, ii)
}

// ParseCheckKey splits a key produced by CheckKey.
func ParseCheckKey(key string) (ci, si, ii int, ok bool) {
	parts := strings.Split(key, "-")
	if len(parts) != 3 {
		return 0, 0, 0, false
	}
	var idx [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, 0, 0, false
		}
		idx[i] = n
	}
	return idx[0], idx[1], idx[2], true
}

// position is the (category, skill, item) address of a checked item.
type position struct{ ci, si, ii int }

// remapChecks rewrites every parsable key through fn. Keys for which fn
// reports false are dropped, as are keys that cannot be parsed.
func (g *Guide) remapChecks(fn func(p position) (position, bool)) {
	out := make(map[string]bool, len(g.Checked))
	for key, v := range g.Checked {
		ci, si, ii, ok := ParseCheckKey(key)
		if !ok || !v {
			continue
		}
		np, keep := fn(position{ci, si, ii})
		if keep {
			out[CheckKey(np.ci, np.si, np.ii)] = true
		}
	}
	g.Checked = out
}

// movedIndex returns where index i ends up after the element at from is
// moved to to.
func movedIndex(i, from, to int) int {
	switch {
	case i == from:
		return to
	case from < to && i > from && i <= to:
		return i - 1
	case to < from && i >= to && i < from:
		return i + 1
	default:
		return i
	}
}

// moveElement moves s[from] to position to, shifting the elements between.
func moveElement[T any](s []T, from, to int) []T {
	v := s[from]
	s = append(s[:from], s[from+1:]...)
	s = append(s[:to], append([]T{v}, s[to:]...)...)
	return s
}

func removeElement[T any](s []T, i int) []T {
	return append(s[:i], s[i+1:]...)
}

func insertElement[T any](s []T, i int, v T) []T {
	return append(s[:i], append([]T{v}, s[i:]...)...)
}

// IsChecked reports whether the item at (ci, si, ii) is checked.
func (g *Guide) IsChecked(ci, si, ii int) bool {
	return g.Checked[CheckKey(ci, si, ii)]
}

// SetChecked records the checked state of an item. Unchecked items are
// removed from the map rather than stored as false.
func (g *Guide) SetChecked(ci, si, ii int, checked bool) error {
	s, err := g.Skill(ci, si)
	if err != nil {
		return err
	}
	if ii < 0 || ii >= len(s.Items) {
		return fmt.Errorf("%w: item %d", ErrNotFound, ii)
	}
	if g.Checked == nil {
		g.Checked = make(map[string]bool)
	}
	key := CheckKey(ci, si, ii)
	if checked {
		g.Checked[key] = true
	} else {
		delete(g.Checked, key)
	}
	return nil
}

// ToggleItem flips an item's checked state and returns the new state.
func (g *Guide) ToggleItem(ci, si, ii int) (bool, error) {
	next := !g.IsChecked(ci, si, ii)
	if err := g.SetChecked(ci, si, ii, next); err != nil {
		return false, err
	}
	return next, nil
}

// ResetChecks clears every checked item.
func (g *Guide) ResetChecks() {
	g.Checked = make(map[string]bool)
}

// PruneChecks drops keys that no longer address an existing item.
func (g *Guide) PruneChecks() {
	g.remapChecks(func(p position) (position, bool) {
		s, err := g.Skill(p.ci, p.si)
		if err != nil {
			return p, false
		}
		return p, p.ii < len(s.Items)
	})
}
