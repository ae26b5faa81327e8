package database

import (
	"context"
	"fmt"
	"time"

	"github.com/nfrund/notebook/internal/domain"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// GuideTable is the table guides are stored in. The guide id is the record
// key, so guide "g123" lives at guide:g123.
const GuideTable = "guide"

const selectGuide = "SELECT *, meta::id(id) AS id FROM "

// guideDocument is the stored form of a guide. The id is carried by the
// record itself and is left out of the content.
type guideDocument struct {
	Owner      string                        `json:"owner"`
	Title      string                        `json:"title"`
	Subtitle   string                        `json:"subtitle"`
	Icon       string                        `json:"icon"`
	ThemeColor string                        `json:"theme_color"`
	Layout     domain.Layout                 `json:"layout"`
	Kind       domain.GuideKind              `json:"kind"`
	Categories []domain.Category             `json:"categories"`
	Checked    map[string]bool               `json:"checked"`
	Entries    []domain.JournalEntry         `json:"entries"`
	CreatedAt  *surrealmodels.CustomDateTime `json:"created_at,omitempty"`
	UpdatedAt  *surrealmodels.CustomDateTime `json:"updated_at,omitempty"`
}

func documentFor(g *domain.Guide) guideDocument {
	return guideDocument{
		Owner:      g.Owner,
		Title:      g.Title,
		Subtitle:   g.Subtitle,
		Icon:       g.Icon,
		ThemeColor: g.ThemeColor,
		Layout:     g.Layout,
		Kind:       g.Kind,
		Categories: g.Categories,
		Checked:    g.Checked,
		Entries:    g.Entries,
		CreatedAt:  g.CreatedAt,
		UpdatedAt:  g.UpdatedAt,
	}
}

// ownerRow is used to check who owns an existing record before a write.
type ownerRow struct {
	Owner string `json:"owner"`
}

// GuideStore implements domain.GuideRepository on SurrealDB.
type GuideStore struct {
	client Client[domain.Guide]
	owners Client[ownerRow]
	now    func() time.Time
}

var _ domain.GuideRepository = (*GuideStore)(nil)

// NewGuideStore creates a guide repository on conn.
func NewGuideStore(conn DBConnection) (*GuideStore, error) {
	c, err := NewClient[domain.Guide](conn)
	if err != nil {
		return nil, err
	}
	o, err := NewClient[ownerRow](conn)
	if err != nil {
		return nil, err
	}
	return &GuideStore{client: c, owners: o, now: time.Now}, nil
}

// List returns the owner's guides, most recently updated first.
func (s *GuideStore) List(ctx context.Context, owner string) ([]*domain.Guide, error) {
	rows, err := s.client.Query(ctx, selectGuide+GuideTable+" WHERE owner = $owner ORDER BY updated_at DESC",
		map[string]any{"owner": owner})
	if err != nil {
		return nil, toDomainError(WrapError(err, "list guides"))
	}
	out := make([]*domain.Guide, 0, len(rows))
	for i := range rows {
		g := rows[i]
		g.Normalize()
		out = append(out, &g)
	}
	return out, nil
}

// Get loads one guide. A guide owned by someone else is reported as not
// found.
func (s *GuideStore) Get(ctx context.Context, owner, id string) (*domain.Guide, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty guide id", domain.ErrInvalidInput)
	}
	g, err := s.client.QueryOne(ctx, selectGuide+"type::thing($table, $id) WHERE owner = $owner",
		map[string]any{"table": GuideTable, "id": id, "owner": owner})
	if err != nil {
		return nil, toDomainError(WrapError(err, "get guide"))
	}
	if g == nil {
		return nil, fmt.Errorf("%w: guide %s", domain.ErrNotFound, id)
	}
	g.Normalize()
	return g, nil
}

// Save writes the whole guide, replacing the stored version. Writing over a
// guide that belongs to another owner is refused.
func (s *GuideStore) Save(ctx context.Context, g *domain.Guide) (*domain.Guide, error) {
	if g.ID == "" || g.Owner == "" {
		return nil, fmt.Errorf("%w: guide id and owner are required", domain.ErrInvalidInput)
	}
	params := map[string]any{"table": GuideTable, "id": g.ID}

	existing, err := s.owners.QueryOne(ctx, "SELECT owner FROM type::thing($table, $id)", params)
	if err != nil {
		return nil, toDomainError(WrapError(err, "check guide owner"))
	}
	if existing != nil && existing.Owner != g.Owner {
		return nil, fmt.Errorf("%w: guide %s", domain.ErrPermissionDenied, g.ID)
	}

	now := &surrealmodels.CustomDateTime{Time: s.now().UTC()}
	if g.CreatedAt == nil {
		g.CreatedAt = now
	}
	g.UpdatedAt = now
	params["data"] = documentFor(g)

	if err := s.client.Execute(ctx, "UPSERT type::thing($table, $id) CONTENT $data", params); err != nil {
		return nil, toDomainError(WrapError(err, "save guide"))
	}
	return s.Get(ctx, g.Owner, g.ID)
}

// Delete removes a guide.
func (s *GuideStore) Delete(ctx context.Context, owner, id string) error {
	deleted, err := s.owners.Query(ctx, "DELETE type::thing($table, $id) WHERE owner = $owner RETURN BEFORE",
		map[string]any{"table": GuideTable, "id": id, "owner": owner})
	if err != nil {
		return toDomainError(WrapError(err, "delete guide"))
	}
	if len(deleted) == 0 {
		return fmt.Errorf("%w: guide %s", domain.ErrNotFound, id)
	}
	return nil
}
