// Package datapath addresses values inside a user's notebook with slash
// separated paths such as "users/{uid}/guides/{gid}/categories/0/name".
package datapath

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nfrund/notebook/internal/domain"
)

// Kind tells what a path points at.
type Kind int

const (
	KindUser   Kind = iota // users/{uid}
	KindGuides             // users/{uid}/guides
	KindGuide              // users/{uid}/guides/{gid}
	KindField              // users/{uid}/guides/{gid}/...
)

// Path is a parsed data path.
type Path struct {
	UID     string
	GuideID string
	// Field holds the segments below the guide, e.g. ["categories", "0", "name"].
	Field []string

	kind Kind
}

var segmentPattern = regexp.MustCompile(`^[A-Za-z0-9_:\-]+$`)

// Parse splits and checks a data path. Only fields that belong to a guide's
// editable tree are accepted.
func Parse(raw string) (Path, error) {
	segs := strings.Split(strings.Trim(raw, "/"), "/")
	if len(segs) < 2 || segs[0] != "users" || segs[1] == "" {
		return Path{}, fmt.Errorf("%w: path must start with users/{uid}: %q", domain.ErrInvalidInput, raw)
	}
	for _, s := range segs {
		if !segmentPattern.MatchString(s) {
			return Path{}, fmt.Errorf("%w: bad path segment %q", domain.ErrInvalidInput, s)
		}
	}
	p := Path{UID: segs[1], kind: KindUser}
	if len(segs) == 2 {
		return p, nil
	}
	if segs[2] != "guides" {
		return Path{}, fmt.Errorf("%w: unknown collection %q", domain.ErrInvalidInput, segs[2])
	}
	p.kind = KindGuides
	if len(segs) == 3 {
		return p, nil
	}
	p.GuideID = segs[3]
	p.kind = KindGuide
	if len(segs) > 4 {
		p.Field = segs[4:]
		p.kind = KindField
		if err := checkField(p.Field); err != nil {
			return Path{}, err
		}
	}
	return p, nil
}

// Kind reports what the path addresses.
func (p Path) Kind() Kind { return p.kind }

// UserTable is the table user records live in. Guides store their owner as
// the full record id, "user:{uid}".
const UserTable = "user"

// Owner returns the owner key guides under this path are stored with.
func (p Path) Owner() string { return OwnerKey(p.UID) }

// OwnerKey turns the uid segment of a path into an owner key.
func OwnerKey(uid string) string {
	if strings.HasPrefix(uid, UserTable+":") {
		return uid
	}
	return UserTable + ":" + uid
}

// UID strips the table prefix from an owner key.
func UID(owner string) string {
	return strings.TrimPrefix(owner, UserTable+":")
}

// String renders the path back in its canonical form.
func (p Path) String() string {
	parts := []string{"users", p.UID}
	if p.kind != KindUser {
		parts = append(parts, "guides")
	}
	if p.GuideID != "" {
		parts = append(parts, p.GuideID)
	}
	parts = append(parts, p.Field...)
	return strings.Join(parts, "/")
}

// shape describes which segments may follow a given node.
type shape struct {
	fields map[string]*shape
	index  *shape // list or map element
	key    bool   // elements are addressed by free-form key instead of index
}

var leaf = &shape{}

var guideShape = func() *shape {
	item := leaf
	skill := &shape{fields: map[string]*shape{
		"title": leaf, "icon": leaf, "bullet": leaf, "collapsed": leaf, "show_progress": leaf,
		"items": {index: item},
	}}
	category := &shape{fields: map[string]*shape{
		"name": leaf, "icon": leaf,
		"skills": {index: skill},
	}}
	entry := &shape{fields: map[string]*shape{
		"title": leaf, "date": leaf, "tags": leaf, "mood": leaf, "content": leaf,
	}}
	return &shape{fields: map[string]*shape{
		"title": leaf, "subtitle": leaf, "icon": leaf, "theme_color": leaf, "layout": leaf,
		"categories": {index: category},
		"checked":    {index: leaf, key: true},
		"entries":    {index: entry},
	}}
}()

func checkField(segs []string) error {
	node := guideShape
	for i, s := range segs {
		switch {
		case node.index != nil:
			if !node.key {
				if _, err := strconv.Atoi(s); err != nil {
					return fmt.Errorf("%w: %q is not an index", domain.ErrInvalidInput, s)
				}
			}
			node = node.index
		case node.fields != nil:
			next, ok := node.fields[s]
			if !ok {
				return fmt.Errorf("%w: unknown field %q", domain.ErrInvalidInput, strings.Join(segs[:i+1], "/"))
			}
			node = next
		default:
			return fmt.Errorf("%w: %q has no children", domain.ErrInvalidInput, strings.Join(segs[:i], "/"))
		}
	}
	return nil
}
