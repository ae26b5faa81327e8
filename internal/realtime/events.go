// Package realtime pushes guide changes to the signed in user's open pages.
//
// A live query on the guide table feeds the Watcher, which drops stale cache
// entries and publishes a GuideChanged event. The Hub relays those events
// over a websocket to every connection of the guide's owner.
package realtime

import (
	"fmt"
	"strings"
	"time"

	"github.com/nfrund/notebook/internal/database"
	"github.com/nfrund/notebook/internal/pubsub"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// GuideChanged is published whenever a stored guide is created, updated or
// deleted.
var GuideChanged = pubsub.NewEvent[Change]("guide.changed")

// Change describes one guide change as sent to browsers.
type Change struct {
	Action  string    `json:"action"`
	GuideID string    `json:"guide_id"`
	Owner   string    `json:"-"`
	At      time.Time `json:"at"`
}

// changeFrom extracts the guide id and owner from a live query record.
func changeFrom(action database.LiveQueryAction, data any, now time.Time) (Change, error) {
	var fields func(string) any
	switch m := data.(type) {
	case map[string]any:
		fields = func(k string) any { return m[k] }
	case map[any]any:
		fields = func(k string) any { return m[k] }
	default:
		return Change{}, fmt.Errorf("unexpected guide record type %T", data)
	}

	owner, _ := fields("owner").(string)
	id := recordKey(fields("id"))
	if owner == "" || id == "" {
		return Change{}, fmt.Errorf("guide record without id or owner")
	}
	return Change{
		Action:  strings.ToLower(string(action)),
		GuideID: id,
		Owner:   owner,
		At:      now.UTC(),
	}, nil
}

func recordKey(v any) string {
	switch id := v.(type) {
	case models.RecordID:
		return fmt.Sprint(id.ID)
	case *models.RecordID:
		if id == nil {
			return ""
		}
		return fmt.Sprint(id.ID)
	case string:
		return strings.TrimPrefix(id, database.GuideTable+":")
	default:
		return ""
	}
}
