package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nfrund/notebook/internal/database"
	"github.com/nfrund/notebook/internal/pubsub"
)

// Invalidator drops cached copies of a guide.
type Invalidator interface {
	Invalidate(ctx context.Context, owner, id string)
}

// Watcher turns live query notifications on the guide table into
// GuideChanged events.
type Watcher struct {
	live  database.LiveQueryService
	pub   pubsub.Publisher
	cache Invalidator
	now   func() time.Time

	sub *database.Subscription
}

// NewWatcher creates a Watcher. cache may be nil.
func NewWatcher(live database.LiveQueryService, pub pubsub.Publisher, cache Invalidator) *Watcher {
	return &Watcher{live: live, pub: pub, cache: cache, now: time.Now}
}

// Start begins the live query. Events are published until Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	sub, err := w.live.Subscribe(ctx, database.GuideTable, nil, w.handle)
	if err != nil {
		return fmt.Errorf("failed to watch guides: %w", err)
	}
	w.sub = sub
	return nil
}

// Stop ends the live query.
func (w *Watcher) Stop() error {
	if w.sub == nil {
		return nil
	}
	return w.live.Unsubscribe(w.sub.ID)
}

func (w *Watcher) handle(ctx context.Context, action database.LiveQueryAction, data any) {
	change, err := changeFrom(action, data, w.now())
	if err != nil {
		slog.WarnContext(ctx, "ignoring guide notification", "event", "guide_change_skipped", "error", err)
		return
	}
	if w.cache != nil {
		w.cache.Invalidate(ctx, change.Owner, change.GuideID)
	}
	meta := map[string]string{"guide_id": change.GuideID, "action": change.Action}
	if err := pubsub.Publish(ctx, w.pub, GuideChanged, change.Owner, change, meta); err != nil {
		slog.ErrorContext(ctx, "failed to publish guide change",
			"event", "guide_change_publish_failed",
			"guide_id", change.GuideID,
			"error", err,
		)
	}
}
