package guides

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nfrund/notebook/internal/domain"
)

// EntryInput carries the fields of a journal entry. Tags may be given as a
// list or as one comma separated string.
type EntryInput struct {
	Title    string      `json:"title" form:"title"`
	Date     string      `json:"date" form:"date"`
	Tags     []string    `json:"tags" form:"-"`
	TagsText string      `json:"tags_text,omitempty" form:"tags"`
	Mood     domain.Mood `json:"mood" form:"mood"`
	Content  string      `json:"content" form:"content"`
}

func (in EntryInput) entry(id string, today time.Time) domain.JournalEntry {
	date := strings.TrimSpace(in.Date)
	if date == "" {
		date = domain.FormatEntryDate(today)
	}
	tags := append([]string(nil), in.Tags...)
	if in.TagsText != "" {
		tags = append(tags, domain.ParseTags(in.TagsText)...)
	}
	return domain.JournalEntry{
		ID:      id,
		Title:   cleanText(in.Title),
		Date:    date,
		Tags:    domain.NormalizeTags(tags),
		Mood:    in.Mood,
		Content: strings.TrimSpace(in.Content),
	}
}

func requireJournal(g *domain.Guide) error {
	if g.Kind != domain.KindJournal {
		return fmt.Errorf("%w: guide %s is not a journal", domain.ErrInvalidInput, g.ID)
	}
	return nil
}

// AddEntry adds a journal entry. An empty date means today.
func (s *Service) AddEntry(ctx context.Context, uid, gid string, in EntryInput) (*domain.Guide, domain.JournalEntry, error) {
	var added domain.JournalEntry
	g, err := s.mutate(ctx, uid, gid, func(g *domain.Guide) error {
		if err := requireJournal(g); err != nil {
			return err
		}
		added = in.entry(s.ids.EntryID(), time.Now())
		return g.AddEntry(added)
	})
	if err != nil {
		return nil, domain.JournalEntry{}, err
	}
	return g, added, nil
}

// UpdateEntry replaces the fields of entry eid.
func (s *Service) UpdateEntry(ctx context.Context, uid, gid, eid string, in EntryInput) (*domain.Guide, error) {
	return s.mutate(ctx, uid, gid, func(g *domain.Guide) error {
		i, err := g.Entry(eid)
		if err != nil {
			return err
		}
		e := in.entry(eid, time.Now())
		if strings.TrimSpace(in.Date) == "" {
			e.Date = g.Entries[i].Date
		}
		return g.ReplaceEntry(e)
	})
}

// DeleteEntry removes entry eid.
func (s *Service) DeleteEntry(ctx context.Context, uid, gid, eid string) (*domain.Guide, error) {
	return s.mutate(ctx, uid, gid, func(g *domain.Guide) error {
		return g.RemoveEntry(eid)
	})
}

// Entries lists the journal entries matching f, newest date first.
func (s *Service) Entries(ctx context.Context, uid, gid string, f domain.EntryFilter) ([]domain.JournalEntry, error) {
	g, err := s.load(ctx, uid, gid)
	if err != nil {
		return nil, err
	}
	return g.FilterEntries(f), nil
}
