package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/nfrund/notebook/internal/domain"
)

// GuideRepository wraps a domain.GuideRepository with a read-through cache.
// Saves and deletes drop the cached copy; a cache that fails is logged and
// bypassed, never surfaced to the caller.
type GuideRepository struct {
	next  domain.GuideRepository
	cache Cache
	ttl   time.Duration
}

// NewGuideRepository returns a caching decorator around next.
func NewGuideRepository(next domain.GuideRepository, c Cache, ttl time.Duration) *GuideRepository {
	return &GuideRepository{next: next, cache: c, ttl: ttl}
}

var _ domain.GuideRepository = (*GuideRepository)(nil)

func (r *GuideRepository) List(ctx context.Context, owner string) ([]*domain.Guide, error) {
	return r.next.List(ctx, owner)
}

func (r *GuideRepository) Get(ctx context.Context, owner, id string) (*domain.Guide, error) {
	key := GuideKey(owner, id)
	if raw, err := r.cache.Get(ctx, key); err == nil {
		var g domain.Guide
		if err := json.Unmarshal(raw, &g); err == nil {
			return &g, nil
		}
		slog.WarnContext(ctx, "discarding undecodable cache entry", "event", "cache_decode_failed", "key", key)
	} else if !errors.Is(err, ErrMiss) {
		slog.WarnContext(ctx, "cache read failed", "event", "cache_get_failed", "key", key, "error", err)
	}

	g, err := r.next.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, g)
	return g, nil
}

func (r *GuideRepository) Save(ctx context.Context, g *domain.Guide) (*domain.Guide, error) {
	saved, err := r.next.Save(ctx, g)
	r.Invalidate(ctx, g.Owner, g.ID)
	if err != nil {
		return nil, err
	}
	r.store(ctx, saved)
	return saved, nil
}

func (r *GuideRepository) Delete(ctx context.Context, owner, id string) error {
	err := r.next.Delete(ctx, owner, id)
	r.Invalidate(ctx, owner, id)
	return err
}

// Invalidate drops the cached copy of a guide. It is also called when a
// change arrives from another server through the live feed.
func (r *GuideRepository) Invalidate(ctx context.Context, owner, id string) {
	if err := r.cache.Delete(ctx, GuideKey(owner, id)); err != nil {
		slog.WarnContext(ctx, "cache invalidation failed", "event", "cache_delete_failed", "owner", owner, "guide", id, "error", err)
	}
}

func (r *GuideRepository) store(ctx context.Context, g *domain.Guide) {
	raw, err := json.Marshal(g)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, GuideKey(g.Owner, g.ID), raw, r.ttl); err != nil {
		slog.WarnContext(ctx, "cache write failed", "event", "cache_set_failed", "guide", g.ID, "error", err)
	}
}
