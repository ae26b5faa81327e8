package database

import (
	"context"
	"time"
)

type client[T any] struct {
	executor       QueryExecutor[T]
	queryTimeout   time.Duration
	executeTimeout time.Duration
}

// NewClient creates a new type-safe database client on top of conn.
func NewClient[T any](conn DBConnection, opts ...ClientOption[T]) (Client[T], error) {
	if conn == nil {
		return nil, NewDBError(ErrInvalidInput, "connection cannot be nil")
	}
	queryTimeout := conn.GetDBQueryTimeout()
	if queryTimeout <= 0 {
		return nil, NewDBError(ErrInvalidInput, "DB_QUERY_TIMEOUT must be a positive duration")
	}
	executeTimeout := conn.GetDBExecuteTimeout()
	if executeTimeout <= 0 {
		return nil, NewDBError(ErrInvalidInput, "DB_EXECUTE_TIMEOUT must be a positive duration")
	}

	c := &client[T]{
		executor:       NewSurrealExecutor[T](conn),
		queryTimeout:   queryTimeout,
		executeTimeout: executeTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *client[T]) Query(ctx context.Context, query string, params map[string]any) ([]T, error) {
	ctx, cancel := getTimeoutFromContext(ctx, c.queryTimeout, ContextKeyQueryTimeout)
	defer cancel()
	return c.executor.Query(ctx, query, params)
}

func (c *client[T]) QueryOne(ctx context.Context, query string, params map[string]any) (*T, error) {
	ctx, cancel := getTimeoutFromContext(ctx, c.queryTimeout, ContextKeyQueryTimeout)
	defer cancel()
	return c.executor.QueryOne(ctx, query, params)
}

func (c *client[T]) Execute(ctx context.Context, query string, params map[string]any) error {
	ctx, cancel := getTimeoutFromContext(ctx, c.executeTimeout, ContextKeyExecuteTimeout)
	defer cancel()
	return c.executor.Execute(ctx, query, params)
}

func (c *client[T]) Select(ctx context.Context, id string) (*T, error) {
	if id == "" {
		return nil, NewDBError(ErrInvalidInput, "id cannot be empty")
	}
	result, err := c.QueryOne(ctx, "SELECT * FROM type::thing($id)", map[string]any{"id": id})
	if err != nil {
		return nil, WrapError(err, "select operation failed")
	}
	if result == nil {
		return nil, NewDBError(ErrNotFound, "record "+id)
	}
	return result, nil
}

func (c *client[T]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return NewDBError(ErrInvalidInput, "id cannot be empty")
	}
	return c.Execute(ctx, "DELETE type::thing($id)", map[string]any{"id": id})
}
