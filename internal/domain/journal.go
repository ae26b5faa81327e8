package domain

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// foldTag returns the case-insensitive comparison form of a tag. Casers are
// stateful and must not be shared between goroutines.
func foldTag(t string) string {
	return cases.Fold().String(t)
}

// NormalizeTags trims, case-folds and de-duplicates tags, keeping the first
// spelling seen.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(t), "#"))
		if t == "" {
			continue
		}
		key := foldTag(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

// ParseTags splits a comma separated tag list as typed into the entry form.
func ParseTags(s string) []string {
	return NormalizeTags(strings.Split(s, ","))
}

// EntryFilter narrows the journal listing. Zero fields match everything.
type EntryFilter struct {
	Tag  string
	Mood Mood
}

func (f EntryFilter) match(e JournalEntry) bool {
	if f.Mood != "" && e.Mood != f.Mood {
		return false
	}
	if f.Tag == "" {
		return true
	}
	want := foldTag(strings.TrimSpace(f.Tag))
	for _, t := range e.Tags {
		if foldTag(t) == want {
			return true
		}
	}
	return false
}

// FilterEntries returns the matching entries newest first. Entries on the
// same date keep the order of their ids, newest id first.
func (g *Guide) FilterEntries(f EntryFilter) []JournalEntry {
	out := make([]JournalEntry, 0, len(g.Entries))
	for _, e := range g.Entries {
		if f.match(e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return idLess(out[j].ID, out[i].ID)
	})
	return out
}

// Tags lists every distinct tag used across the journal, sorted.
func (g *Guide) Tags() []string {
	var all []string
	for _, e := range g.Entries {
		all = append(all, e.Tags...)
	}
	tags := NormalizeTags(all)
	sort.Slice(tags, func(i, j int) bool {
		return foldTag(tags[i]) < foldTag(tags[j])
	})
	return tags
}

// AddEntry inserts a journal entry. The entry's id must be unique.
func (g *Guide) AddEntry(e JournalEntry) error {
	if _, err := g.Entry(e.ID); err == nil {
		return fmt.Errorf("%w: duplicate entry %s", ErrInvalidInput, e.ID)
	}
	e.Tags = NormalizeTags(e.Tags)
	g.Entries = append(g.Entries, e)
	return nil
}

// ReplaceEntry overwrites the entry with the same id.
func (g *Guide) ReplaceEntry(e JournalEntry) error {
	i, err := g.Entry(e.ID)
	if err != nil {
		return err
	}
	e.Tags = NormalizeTags(e.Tags)
	g.Entries[i] = e
	return nil
}

// RemoveEntry deletes the entry with the given id.
func (g *Guide) RemoveEntry(id string) error {
	i, err := g.Entry(id)
	if err != nil {
		return err
	}
	g.Entries = removeElement(g.Entries, i)
	return nil
}

// idLess orders timestamp ids of the same prefix numerically.
func idLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
