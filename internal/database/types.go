package database

import (
	"context"
	"time"

	"github.com/surrealdb/surrealdb.go"
)

// DBConnection defines the interface for a managed database connection.
// It abstracts the underlying database driver and handles connection logic,
// allowing repositories to perform driver-specific operations without being
// tied to a concrete implementation.
type DBConnection interface {
	WithConnection(ctx context.Context, fn func(*surrealdb.DB) error) error
	Connect(ctx context.Context) error
	Close(ctx context.Context) error
	IsHealthy() bool
	StartMonitoring()
	GetDBNs() string
	GetDBDb() string
	GetDBQueryTimeout() time.Duration
	GetDBExecuteTimeout() time.Duration
}

// Client is a type-safe wrapper over a connection for records of type T.
type Client[T any] interface {
	// Query executes a raw query and returns the rows of its first statement.
	Query(ctx context.Context, query string, params map[string]any) ([]T, error)

	// QueryOne executes a raw query and returns a single result.
	// Returns (nil, nil) if no results are found.
	QueryOne(ctx context.Context, query string, params map[string]any) (*T, error)

	// Execute runs a query whose result is not needed.
	Execute(ctx context.Context, query string, params map[string]any) error

	// Select retrieves a record by its full ID (e.g., "user:123").
	// Returns ErrNotFound if no record exists with the given ID.
	Select(ctx context.Context, id string) (*T, error)

	// Delete removes a record with the given ID.
	Delete(ctx context.Context, id string) error
}

// QueryExecutor handles the execution of database queries.
// This interface is used internally by the Client implementation.
type QueryExecutor[T any] interface {
	Query(ctx context.Context, query string, params map[string]any) ([]T, error)
	QueryOne(ctx context.Context, query string, params map[string]any) (*T, error)
	Execute(ctx context.Context, query string, params map[string]any) error
}

// ClientOption defines a function that configures a Client.
type ClientOption[T any] func(*client[T])

// WithExecutor configures the client to use a custom QueryExecutor.
// This is useful for testing or for adding middleware to the executor.
func WithExecutor[T any](executor QueryExecutor[T]) ClientOption[T] {
	return func(c *client[T]) {
		c.executor = executor
	}
}
