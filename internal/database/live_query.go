package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// LiveQueryAction represents the type of change in a live query update
type LiveQueryAction string

const (
	ActionCreate LiveQueryAction = "CREATE"
	ActionUpdate LiveQueryAction = "UPDATE"
	ActionDelete LiveQueryAction = "DELETE"
)

// LiveQueryHandler is called when live query data changes. data is the
// record as decoded by the driver.
type LiveQueryHandler func(ctx context.Context, action LiveQueryAction, data any)

// LiveQueryFilter narrows a table subscription.
type LiveQueryFilter struct {
	Where  string         // SurrealQL WHERE clause
	Params map[string]any // Query parameters
}

// Subscription represents an active live query subscription
type Subscription struct {
	ID    string
	Table string
}

// LiveQueryService provides real-time data subscriptions via SurrealDB Live Queries
type LiveQueryService interface {
	Subscribe(ctx context.Context, table string, filter *LiveQueryFilter, handler LiveQueryHandler) (*Subscription, error)
	Unsubscribe(subID string) error
	Close()
}

// SurrealLiveQueryService implements LiveQueryService using SurrealDB
type SurrealLiveQueryService struct {
	db DBConnection

	subscriptions sync.Map // map[string]*subscriptionState
}

type subscriptionState struct {
	id          string
	table       string
	handler     LiveQueryHandler
	cancel      context.CancelFunc
	liveQueryID string
}

// NewSurrealLiveQueryService creates a new live query service
func NewSurrealLiveQueryService(db DBConnection) *SurrealLiveQueryService {
	return &SurrealLiveQueryService{db: db}
}

// Subscribe starts a LIVE SELECT on table and calls handler for each change.
func (s *SurrealLiveQueryService) Subscribe(ctx context.Context, table string, filter *LiveQueryFilter, handler LiveQueryHandler) (*Subscription, error) {
	if handler == nil {
		return nil, fmt.Errorf("handler cannot be nil")
	}
	if !isIdentifier(table) {
		return nil, NewDBError(ErrInvalidInput, fmt.Sprintf("invalid table name %q", table))
	}

	query := "LIVE SELECT * FROM " + table
	params := map[string]any{}
	if filter != nil {
		if filter.Where != "" {
			query += " WHERE " + filter.Where
		}
		if filter.Params != nil {
			params = filter.Params
		}
	}

	subID := uuid.New().String()
	subCtx, cancel := context.WithCancel(context.Background())
	state := &subscriptionState{id: subID, table: table, handler: handler, cancel: cancel}

	err := s.db.WithConnection(ctx, func(dbConn *surrealdb.DB) error {
		results, err := surrealdb.Query[any](ctx, dbConn, query, params)
		if err != nil {
			return fmt.Errorf("failed to execute live query: %w", err)
		}
		if results == nil || len(*results) == 0 {
			return fmt.Errorf("live query returned no results")
		}
		result := (*results)[0]
		if result.Status != "OK" {
			return fmt.Errorf("live query failed with status: %s", result.Status)
		}

		liveID, err := liveQueryID(result.Result)
		if err != nil {
			return err
		}
		state.liveQueryID = liveID

		notifications, err := dbConn.LiveNotifications(liveID)
		if err != nil {
			return fmt.Errorf("failed to get notification channel: %w", err)
		}

		go s.listen(subCtx, state, notifications)
		go s.killOnCancel(subCtx, dbConn, liveID)
		return nil
	})
	if err != nil {
		cancel()
		return nil, WrapError(err, "failed to start live query")
	}

	s.subscriptions.Store(subID, state)
	slog.InfoContext(ctx, "Live query established", "event", "live_query_started", "subID", subID, "table", table, "liveQueryID", state.liveQueryID)
	return &Subscription{ID: subID, Table: table}, nil
}

func liveQueryID(v any) (string, error) {
	switch id := v.(type) {
	case string:
		if id != "" {
			return id, nil
		}
	case models.UUID:
		return id.String(), nil
	case map[string]any:
		return liveQueryID(id["id"])
	}
	return "", fmt.Errorf("unexpected live query result type: %T", v)
}

func (s *SurrealLiveQueryService) killOnCancel(ctx context.Context, dbConn *surrealdb.DB, liveID string) {
	<-ctx.Done()
	cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := dbConn.CloseLiveNotifications(liveID); err != nil {
		slog.Warn("Failed to close live notifications", "event", "live_query_close_failure", "error", err, "liveQueryID", liveID)
	}
	if _, err := surrealdb.Query[any](cleanupCtx, dbConn, "KILL $liveQueryID", map[string]any{"liveQueryID": liveID}); err != nil {
		slog.Warn("Failed to kill live query", "event", "live_query_kill_failure", "error", err, "liveQueryID", liveID)
	}
}

// Unsubscribe removes a live query subscription
func (s *SurrealLiveQueryService) Unsubscribe(subID string) error {
	if v, ok := s.subscriptions.LoadAndDelete(subID); ok {
		v.(*subscriptionState).cancel()
		slog.Info("Live query subscription removed", "event", "live_query_stopped", "subID", subID)
	}
	return nil
}

// Close cancels every subscription.
func (s *SurrealLiveQueryService) Close() {
	s.subscriptions.Range(func(key, _ any) bool {
		_ = s.Unsubscribe(key.(string))
		return true
	})
}

func (s *SurrealLiveQueryService) listen(ctx context.Context, state *subscriptionState, notifications <-chan connection.Notification) {
	defer s.subscriptions.Delete(state.id)

	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-notifications:
			if !ok {
				slog.Debug("Live query notification channel closed", "subID", state.id)
				return
			}
			var action LiveQueryAction
			switch n.Action {
			case connection.CreateAction:
				action = ActionCreate
			case connection.UpdateAction:
				action = ActionUpdate
			case connection.DeleteAction:
				action = ActionDelete
			default:
				slog.Warn("Unknown notification action", "subID", state.id, "action", n.Action)
				continue
			}
			s.dispatch(ctx, state, action, n.Result)
		}
	}
}

// dispatch runs the handler inline so notifications for one subscription are
// delivered in order.
func (s *SurrealLiveQueryService) dispatch(ctx context.Context, state *subscriptionState, action LiveQueryAction, data any) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic in live query handler", "event", "live_query_handler_panic", "subID", state.id, "panic", r)
		}
	}()
	state.handler(ctx, action, data)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool {
		return !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	}) < 0
}
