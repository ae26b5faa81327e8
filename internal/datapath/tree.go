package datapath

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/nfrund/notebook/internal/domain"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Get returns the value at field inside g as plain JSON data (maps, slices,
// strings, numbers and booleans). An empty field returns the whole guide.
func Get(g *domain.Guide, field []string) (any, error) {
	doc, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("failed to encode guide: %w", err)
	}
	res := lookup(doc, field)
	if res.Exists() {
		return res.Value(), nil
	}
	if len(field) == 2 && field[0] == "checked" {
		return false, nil
	}
	for i := range field {
		if !lookup(doc, field[:i+1]).Exists() {
			return nil, notFound(field[:i+1])
		}
	}
	return nil, notFound(field)
}

// Set replaces the value at field with value and writes the result back into
// g. The updated guide must still validate; g is left untouched otherwise.
// Setting an index one past the end of a list appends to it.
func Set(g *domain.Guide, field []string, value any) error {
	doc, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to encode guide: %w", err)
	}
	raw, err := replace(doc, field, value)
	if err != nil {
		return err
	}
	var next domain.Guide
	if err := json.Unmarshal(raw, &next); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	// identity fields are never writable through a path
	next.ID, next.Owner, next.CreatedAt, next.UpdatedAt = g.ID, g.Owner, g.CreatedAt, g.UpdatedAt
	next.Normalize()
	next.PruneChecks()
	// also rejects journal entries that share an id
	if err := next.Validate(); err != nil {
		return err
	}
	*g = next
	return nil
}

// replace writes value at field in doc. An empty field replaces the whole
// document.
func replace(doc []byte, field []string, value any) ([]byte, error) {
	if len(field) == 0 {
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		return raw, nil
	}
	path, err := writePath(doc, field)
	if err != nil {
		return nil, err
	}
	raw, err := sjson.SetBytes(doc, path, value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return raw, nil
}

// lookup resolves field in doc. An empty field is the whole document.
func lookup(doc []byte, field []string) gjson.Result {
	if len(field) == 0 {
		return gjson.ParseBytes(doc)
	}
	return gjson.GetBytes(doc, readPath(field))
}

func readPath(field []string) string {
	segs := make([]string, len(field))
	for i, seg := range field {
		segs[i] = escape(seg)
	}
	return strings.Join(segs, ".")
}

// writePath turns field into an sjson path after checking that every parent
// exists. Lists only grow by one: index len(list) becomes the append marker.
func writePath(doc []byte, field []string) (string, error) {
	segs := make([]string, len(field))
	for i, seg := range field {
		parent := lookup(doc, field[:i])
		switch {
		case parent.IsArray():
			idx, err := strconv.Atoi(seg)
			n := len(parent.Array())
			if err != nil || idx < 0 || idx > n || (idx == n && i < len(field)-1) {
				return "", notFound(field[:i+1])
			}
			if idx == n {
				segs[i] = "-1"
			} else {
				segs[i] = seg
			}
		case parent.IsObject():
			// a numeric key would otherwise be taken as a list index
			if _, err := strconv.Atoi(seg); err == nil {
				segs[i] = ":" + seg
			} else {
				segs[i] = escape(seg)
			}
		case !parent.Exists() || parent.Type == gjson.Null:
			// a missing map entry can only be created as a leaf
			return "", notFound(field[:i+1])
		default:
			return "", fmt.Errorf("%w: %q has no children", domain.ErrInvalidInput, strings.Join(field[:i], "/"))
		}
	}
	return strings.Join(segs, "."), nil
}

// escape quotes the characters gjson and sjson treat as path syntax.
func escape(seg string) string {
	if !strings.ContainsAny(seg, `.*?|#@\!=<>%:,"`) {
		return seg
	}
	var b strings.Builder
	for _, r := range seg {
		if strings.ContainsRune(`.*?|#@\!=<>%:,"`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Delete removes the element at field. Lists shrink and check marks are
// remapped so they stay with their items.
func Delete(g *domain.Guide, field []string) error {
	ints := func(segs ...string) []int {
		out := make([]int, len(segs))
		for i, s := range segs {
			out[i], _ = strconv.Atoi(s)
		}
		return out
	}
	f := field
	switch {
	case len(f) == 1 && f[0] == "checked":
		g.ResetChecks()
		return nil
	case len(f) == 2 && f[0] == "checked":
		delete(g.Checked, f[1])
		return nil
	case len(f) == 2 && f[0] == "entries":
		i := ints(f[1])[0]
		if i < 0 || i >= len(g.Entries) {
			return notFound(f)
		}
		return g.RemoveEntry(g.Entries[i].ID)
	case len(f) == 2 && f[0] == "categories":
		return g.RemoveCategory(ints(f[1])[0])
	case len(f) == 4 && f[0] == "categories" && f[2] == "skills":
		n := ints(f[1], f[3])
		return g.RemoveSkill(n[0], n[1])
	case len(f) == 6 && f[0] == "categories" && f[2] == "skills" && f[4] == "items":
		n := ints(f[1], f[3], f[5])
		return g.RemoveItem(n[0], n[1], n[2])
	default:
		return fmt.Errorf("%w: %q cannot be deleted", domain.ErrInvalidInput, strings.Join(f, "/"))
	}
}

func notFound(segs []string) error {
	return fmt.Errorf("%w: %s", domain.ErrNotFound, strings.Join(segs, "/"))
}
