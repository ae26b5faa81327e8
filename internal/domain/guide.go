package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// BulletStyle is the marker drawn in front of a skill's items.
type BulletStyle string

const (
	BulletCheckbox BulletStyle = "checkbox"
	BulletNumber   BulletStyle = "number"
	BulletSquare   BulletStyle = "square"
	BulletCircle   BulletStyle = "circle"
	BulletNone     BulletStyle = "none"
)

// Checkable reports whether items drawn with this bullet can be ticked.
func (b BulletStyle) Checkable() bool {
	return b == BulletCheckbox || b == ""
}

// Layout controls how a guide's cards are arranged.
type Layout string

const (
	LayoutGrid    Layout = "grid"
	LayoutList    Layout = "list"
	LayoutCompact Layout = "compact"
)

// GuideKind separates checklist guides from journals.
type GuideKind string

const (
	KindChecklist GuideKind = "checklist"
	KindJournal   GuideKind = "journal"
)

// DefaultThemeColor is used when a guide is created without a color.
const DefaultThemeColor = "#4f46e5"

// Guide is a user-created document: a set of category tabs holding cards,
// or a journal of dated entries. It is persisted as one nested document and
// every save replaces the previous version.
type Guide struct {
	ID         string                        `json:"id"`
	Owner      string                        `json:"owner" validate:"required"`
	Title      string                        `json:"title" validate:"required,max=120"`
	Subtitle   string                        `json:"subtitle" validate:"max=240"`
	Icon       string                        `json:"icon" validate:"max=32"`
	ThemeColor string                        `json:"theme_color" validate:"required,hexcolor"`
	Layout     Layout                        `json:"layout" validate:"oneof=grid list compact"`
	Kind       GuideKind                     `json:"kind" validate:"oneof=checklist journal"`
	Categories []Category                    `json:"categories" validate:"dive"`
	Checked    map[string]bool               `json:"checked"`
	Entries    []JournalEntry                `json:"entries" validate:"unique=ID,dive"`
	CreatedAt  *surrealmodels.CustomDateTime `json:"created_at,omitempty"`
	UpdatedAt  *surrealmodels.CustomDateTime `json:"updated_at,omitempty"`
}

// Category is a named tab grouping skills within a guide.
type Category struct {
	Name   string  `json:"name" validate:"required,max=80"`
	Icon   string  `json:"icon" validate:"max=32"`
	Skills []Skill `json:"skills" validate:"dive"`
}

// Skill is a card: a titled list of checklist items.
type Skill struct {
	Title        string      `json:"title" validate:"required,max=120"`
	Icon         string      `json:"icon" validate:"max=32"`
	Bullet       BulletStyle `json:"bullet" validate:"omitempty,oneof=checkbox number square circle none"`
	Items        []string    `json:"items" validate:"dive,max=1000"`
	Collapsed    bool        `json:"collapsed"`
	ShowProgress bool        `json:"show_progress"`
}

// Mood is the self-reported mood attached to a journal entry.
type Mood string

const (
	MoodGreat Mood = "great"
	MoodGood  Mood = "good"
	MoodOkay  Mood = "okay"
	MoodBad   Mood = "bad"
	MoodAwful Mood = "awful"
)

// JournalEntry is a dated free-text note.
type JournalEntry struct {
	ID      string   `json:"id" validate:"required"`
	Title   string   `json:"title" validate:"max=160"`
	Date    string   `json:"date" validate:"datestr"`
	Tags    []string `json:"tags" validate:"dive,max=40"`
	Mood    Mood     `json:"mood" validate:"omitempty,oneof=great good okay bad awful"`
	Content string   `json:"content" validate:"max=100000"`
}

const entryDateLayout = "2006-01-02"

// ParseEntryDate parses the YYYY-MM-DD form used by journal entries.
func ParseEntryDate(s string) (time.Time, error) {
	return time.Parse(entryDateLayout, s)
}

// FormatEntryDate formats t in the journal date form.
func FormatEntryDate(t time.Time) string {
	return t.Format(entryDateLayout)
}

// Validate runs validation checks on the guide and all nested values.
func (g *Guide) Validate() error {
	return Validate(g)
}

// Normalize fills zero values with defaults so that documents written by
// older clients render consistently.
func (g *Guide) Normalize() {
	if g.Layout == "" {
		g.Layout = LayoutGrid
	}
	if g.Kind == "" {
		g.Kind = KindChecklist
	}
	if g.ThemeColor == "" {
		g.ThemeColor = DefaultThemeColor
	}
	if g.Checked == nil {
		g.Checked = make(map[string]bool)
	}
	if g.Categories == nil {
		g.Categories = []Category{}
	}
	if g.Entries == nil {
		g.Entries = []JournalEntry{}
	}
	for ci := range g.Categories {
		if g.Categories[ci].Skills == nil {
			g.Categories[ci].Skills = []Skill{}
		}
		for si := range g.Categories[ci].Skills {
			s := &g.Categories[ci].Skills[si]
			if s.Bullet == "" {
				s.Bullet = BulletCheckbox
			}
			if s.Items == nil {
				s.Items = []string{}
			}
		}
	}
}

// Clone returns a deep copy of the guide.
func (g *Guide) Clone() (*Guide, error) {
	raw, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("failed to clone guide: %w", err)
	}
	var out Guide
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to clone guide: %w", err)
	}
	return &out, nil
}

// Category returns a pointer to the category at index ci.
func (g *Guide) Category(ci int) (*Category, error) {
	if ci < 0 || ci >= len(g.Categories) {
		return nil, fmt.Errorf("%w: category %d", ErrNotFound, ci)
	}
	return &g.Categories[ci], nil
}

// Skill returns a pointer to the skill at (ci, si).
func (g *Guide) Skill(ci, si int) (*Skill, error) {
	cat, err := g.Category(ci)
	if err != nil {
		return nil, err
	}
	if si < 0 || si >= len(cat.Skills) {
		return nil, fmt.Errorf("%w: skill %d in category %d", ErrNotFound, si, ci)
	}
	return &cat.Skills[si], nil
}

// Item returns the text of the item at (ci, si, ii).
func (g *Guide) Item(ci, si, ii int) (string, error) {
	s, err := g.Skill(ci, si)
	if err != nil {
		return "", err
	}
	if ii < 0 || ii >= len(s.Items) {
		return "", fmt.Errorf("%w: item %d", ErrNotFound, ii)
	}
	return s.Items[ii], nil
}

// Entry returns the index of the journal entry with the given id.
func (g *Guide) Entry(id string) (int, error) {
	for i := range g.Entries {
		if g.Entries[i].ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: entry %s", ErrNotFound, id)
}

// NewGuide builds a guide from the starter template for its kind.
func NewGuide(id, owner, title string, kind GuideKind) *Guide {
	g := &Guide{
		ID:         id,
		Owner:      owner,
		Title:      title,
		ThemeColor: DefaultThemeColor,
		Layout:     LayoutGrid,
		Kind:       kind,
	}
	if kind == KindChecklist || kind == "" {
		g.Kind = KindChecklist
		g.Icon = "📋"
		g.Categories = []Category{{
			Name: "General",
			Icon: "⭐",
			Skills: []Skill{{
				Title:  "Getting started",
				Icon:   "✅",
				Bullet: BulletCheckbox,
				Items: []string{
					"Tap the pencil to enter edit mode",
					"Swipe an item right to check it off",
					"Drag cards to reorder them",
				},
				ShowProgress: true,
			}},
		}}
	} else {
		g.Icon = "📓"
	}
	g.Normalize()
	return g
}

// GuideRepository defines the persistence contract for guides. Every guide
// is owned by exactly one user and is addressed by (owner, id).
type GuideRepository interface {
	List(ctx context.Context, owner string) ([]*Guide, error)
	Get(ctx context.Context, owner, id string) (*Guide, error)
	Save(ctx context.Context, guide *Guide) (*Guide, error)
	Delete(ctx context.Context, owner, id string) error
}
