package database

import (
	"context"
	"strings"

	"github.com/surrealdb/surrealdb.go"
)

type surrealExecutor[T any] struct {
	conn DBConnection
}

// NewSurrealExecutor returns an executor that runs queries on conn,
// reconnecting when the connection has dropped.
func NewSurrealExecutor[T any](conn DBConnection) QueryExecutor[T] {
	return &surrealExecutor[T]{conn: conn}
}

func (e *surrealExecutor[T]) Query(ctx context.Context, query string, params map[string]any) ([]T, error) {
	var rows []T
	err := e.conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		results, err := surrealdb.Query[[]T](ctx, db, query, params)
		if err != nil {
			return NewDBError(err, "query failed").WithQuery(query)
		}
		if results == nil || len(*results) == 0 {
			rows = nil
			return nil
		}
		first := (*results)[0]
		if first.Status != "" && first.Status != "OK" {
			return NewDBError(ErrQueryFailed, "statement status "+first.Status).WithQuery(query)
		}
		rows = first.Result
		return nil
	})
	return rows, err
}

func (e *surrealExecutor[T]) QueryOne(ctx context.Context, query string, params map[string]any) (*T, error) {
	// CREATE/UPDATE/DELETE statements don't support LIMIT.
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "SELECT") && !hasLimitClause(query) {
		query += " LIMIT 1"
	}
	rows, err := e.Query(ctx, query, params)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (e *surrealExecutor[T]) Execute(ctx context.Context, query string, params map[string]any) error {
	return e.conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		if _, err := surrealdb.Query[any](ctx, db, query, params); err != nil {
			return NewDBError(err, "execute failed").WithQuery(query)
		}
		return nil
	})
}

// hasLimitClause checks if the query already has a LIMIT clause
func hasLimitClause(query string) bool {
	query = " " + strings.ToUpper(query) + " "
	return strings.Contains(query, " LIMIT ")
}
