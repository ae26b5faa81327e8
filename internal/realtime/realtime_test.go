package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/notebook/internal/database"
	"github.com/nfrund/notebook/internal/domain"
	"github.com/nfrund/notebook/internal/middleware"
	"github.com/nfrund/notebook/internal/pubsub"
	"github.com/nfrund/notebook/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

func TestChangeFrom(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	change, err := changeFrom(database.ActionUpdate, map[string]any{
		"id":    models.NewRecordID("guide", "g1"),
		"owner": "user:alice",
	}, now)
	require.NoError(t, err)
	assert.Equal(t, Change{Action: "update", GuideID: "g1", Owner: "user:alice", At: now}, change)

	change, err = changeFrom(database.ActionDelete, map[any]any{"id": "guide:g2", "owner": "user:bob"}, now)
	require.NoError(t, err)
	assert.Equal(t, "g2", change.GuideID)
	assert.Equal(t, "delete", change.Action)

	_, err = changeFrom(database.ActionCreate, map[string]any{"id": "guide:g3"}, now)
	assert.Error(t, err)
	_, err = changeFrom(database.ActionCreate, "nonsense", now)
	assert.Error(t, err)
}

type fakeLive struct {
	handler database.LiveQueryHandler
	table   string
	stopped bool
}

func (f *fakeLive) Subscribe(_ context.Context, table string, _ *database.LiveQueryFilter, h database.LiveQueryHandler) (*database.Subscription, error) {
	f.table, f.handler = table, h
	return &database.Subscription{ID: "sub1", Table: table}, nil
}

func (f *fakeLive) Unsubscribe(string) error { f.stopped = true; return nil }
func (f *fakeLive) Close()                   {}

type recordingInvalidator struct {
	mu   sync.Mutex
	keys []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, owner, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, owner+"/"+id)
}

func TestWatcher_PublishesAndInvalidates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := pubsub.NewBus(0)
	defer bus.Close()
	live := &fakeLive{}
	inv := &recordingInvalidator{}
	w := NewWatcher(live, bus, inv)

	got := make(chan Change, 1)
	require.NoError(t, pubsub.Subscribe(ctx, bus, GuideChanged, func(_ context.Context, owner string, c Change) error {
		assert.Equal(t, "user:alice", owner)
		got <- c
		return nil
	}))

	require.NoError(t, w.Start(ctx))
	assert.Equal(t, database.GuideTable, live.table)

	live.handler(ctx, database.ActionUpdate, map[string]any{"id": "guide:g1", "owner": "user:alice"})
	live.handler(ctx, database.ActionUpdate, map[string]any{"unrelated": true})

	select {
	case c := <-got:
		assert.Equal(t, "g1", c.GuideID)
		assert.Equal(t, "update", c.Action)
	case <-time.After(time.Second):
		t.Fatal("change not published")
	}
	assert.Equal(t, []string{"user:alice/g1"}, inv.keys)

	require.NoError(t, w.Stop())
	assert.True(t, live.stopped)
}

func TestHub_DeliversOnlyToOwner(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	alice := testutils.NewVerifiedUser("alice@example.com")
	bob := testutils.NewVerifiedUser("bob@example.com")
	users := map[string]*domain.User{"alice": alice, "bob": bob}

	hub := NewHub()
	e := echo.New()
	e.GET("/app/sync", hub.Handler(), func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(middleware.UserContextKey, users[c.QueryParam("as")])
			return next(c)
		}
	})
	srv := httptest.NewServer(e)
	defer srv.Close()

	dial := func(as string) *websocket.Conn {
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/app/sync?as=" + as
		conn, _, err := websocket.Dial(ctx, url, nil)
		require.NoError(t, err)
		return conn
	}
	aliceConn := dial("alice")
	defer aliceConn.CloseNow()
	bobConn := dial("bob")
	defer bobConn.CloseNow()

	require.Eventually(t, func() bool {
		return hub.Connections(alice.Key()) == 1 && hub.Connections(bob.Key()) == 1
	}, time.Second, 10*time.Millisecond)

	bus := pubsub.NewBus(0)
	defer bus.Close()
	require.NoError(t, hub.Start(ctx, bus))

	change := Change{Action: "update", GuideID: "g1", At: time.Now().UTC()}
	require.NoError(t, pubsub.Publish(ctx, bus, GuideChanged, alice.Key(), change, nil))

	readCtx, readCancel := context.WithTimeout(ctx, time.Second)
	defer readCancel()
	_, data, err := aliceConn.Read(readCtx)
	require.NoError(t, err)
	var got Change
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "g1", got.GuideID)

	bobCtx, bobCancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer bobCancel()
	_, _, err = bobConn.Read(bobCtx)
	assert.Error(t, err)

	aliceConn.Close(websocket.StatusNormalClosure, "")
	require.Eventually(t, func() bool {
		return hub.Connections(alice.Key()) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestHub_CloseEndsConnections(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	alice := testutils.NewVerifiedUser("alice@example.com")
	hub := NewHub()
	e := echo.New()
	e.GET("/app/sync", hub.Handler(), func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(middleware.UserContextKey, alice)
			return next(c)
		}
	})
	srv := httptest.NewServer(e)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/app/sync"

	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.CloseNow()
	require.Eventually(t, func() bool { return hub.Connections(alice.Key()) == 1 }, time.Second, 10*time.Millisecond)

	hub.Close()
	hub.Close()

	readCtx, readCancel := context.WithTimeout(ctx, time.Second)
	defer readCancel()
	_, _, err = conn.Read(readCtx)
	assert.Equal(t, websocket.StatusGoingAway, websocket.CloseStatus(err))
	require.Eventually(t, func() bool { return hub.Connections(alice.Key()) == 0 }, time.Second, 10*time.Millisecond)

	_, resp, err := websocket.Dial(ctx, url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
