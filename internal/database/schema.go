package database

import (
	"context"
	"log/slog"

	"github.com/surrealdb/surrealdb.go"
)

// AccessMethod is the record access method users sign up and sign in with.
const AccessMethod = "account"

// schema defines the tables, indexes and record access the stores rely on.
// Every statement is idempotent so it runs on each start.
var schema = []string{
	`DEFINE TABLE IF NOT EXISTS user SCHEMALESS
		PERMISSIONS FOR select, update WHERE id = $auth.id, FOR create, delete NONE`,
	`DEFINE FIELD IF NOT EXISTS email ON user TYPE string ASSERT string::is::email($value)`,
	`DEFINE FIELD IF NOT EXISTS password ON user TYPE string PERMISSIONS FOR select NONE`,
	`DEFINE FIELD IF NOT EXISTS email_verified ON user TYPE bool DEFAULT false PERMISSIONS FOR update NONE`,
	`DEFINE FIELD IF NOT EXISTS verify_token ON user TYPE option<string> PERMISSIONS FOR select, update NONE`,
	`DEFINE INDEX IF NOT EXISTS user_email ON user FIELDS email UNIQUE`,
	`DEFINE ACCESS IF NOT EXISTS account ON DATABASE TYPE RECORD
		SIGNUP ( CREATE user SET email = $email, name = $name, password = crypto::argon2::generate($password), email_verified = false )
		SIGNIN ( SELECT * FROM user WHERE email = $email AND crypto::argon2::compare(password, $password) )
		DURATION FOR TOKEN 1h, FOR SESSION 24h`,
	`DEFINE TABLE IF NOT EXISTS guide SCHEMALESS
		PERMISSIONS FOR select, create, update, delete WHERE owner = <string> $auth.id`,
	`DEFINE INDEX IF NOT EXISTS guide_owner ON guide FIELDS owner`,
}

// ApplySchema runs the schema statements on a root connection.
func ApplySchema(ctx context.Context, conn DBConnection) error {
	return conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		for _, stmt := range schema {
			if _, err := surrealdb.Query[any](ctx, db, stmt, nil); err != nil {
				return NewDBError(err, "failed to apply schema").WithQuery(stmt)
			}
		}
		slog.InfoContext(ctx, "Database schema applied", "event", "db_schema_applied", "statements", len(schema))
		return nil
	})
}
