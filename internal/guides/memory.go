package guides

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nfrund/notebook/internal/domain"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// MemoryRepository keeps guides in process memory. Saves and reads hand out
// copies, so callers never share a guide with the repository.
type MemoryRepository struct {
	mu     sync.RWMutex
	guides map[string]*domain.Guide
}

var _ domain.GuideRepository = (*MemoryRepository)(nil)

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{guides: make(map[string]*domain.Guide)}
}

func (r *MemoryRepository) List(_ context.Context, owner string) ([]*domain.Guide, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Guide
	for _, g := range r.guides {
		if g.Owner != owner {
			continue
		}
		cp, err := g.Clone()
		if err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *MemoryRepository) Get(_ context.Context, owner, id string) (*domain.Guide, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.guides[id]
	if !ok || g.Owner != owner {
		return nil, fmt.Errorf("%w: guide %s", domain.ErrNotFound, id)
	}
	return g.Clone()
}

func (r *MemoryRepository) Save(_ context.Context, guide *domain.Guide) (*domain.Guide, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.guides[guide.ID]; ok && prev.Owner != guide.Owner {
		return nil, fmt.Errorf("%w: guide %s", domain.ErrPermissionDenied, guide.ID)
	}
	cp, err := guide.Clone()
	if err != nil {
		return nil, err
	}
	now := surrealmodels.CustomDateTime{Time: time.Now().UTC()}
	if cp.CreatedAt == nil {
		cp.CreatedAt = &now
	}
	cp.UpdatedAt = &now
	r.guides[cp.ID] = cp
	return cp.Clone()
}

func (r *MemoryRepository) Delete(_ context.Context, owner, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.guides[id]
	if !ok || g.Owner != owner {
		return fmt.Errorf("%w: guide %s", domain.ErrNotFound, id)
	}
	delete(r.guides, id)
	return nil
}
