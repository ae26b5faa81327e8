package database

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/nfrund/notebook/internal/domain"
	"github.com/surrealdb/surrealdb.go"
)

// UserStore implements domain.UserRepository. Account reads and token
// updates run on the root client; sign-up, sign-in and token checks run on
// a separate access connection, one at a time, because authenticating
// changes the session of the connection it runs on.
type UserStore struct {
	client Client[domain.User]
	access DBConnection
	ns     string
	dbName string

	accessMu sync.Mutex
}

var _ domain.UserRepository = (*UserStore)(nil)

// NewUserStore creates a new user repository.
func NewUserStore(dbClient Client[domain.User], access DBConnection) *UserStore {
	return &UserStore{
		client: dbClient,
		access: access,
		ns:     access.GetDBNs(),
		dbName: access.GetDBDb(),
	}
}

func (s *UserStore) credentials(email, password string) map[string]any {
	return map[string]any{
		"ns":       s.ns,
		"db":       s.dbName,
		"ac":       AccessMethod,
		"email":    email,
		"password": password,
	}
}

// SignUp registers a user through record access and fills in user.ID.
func (s *UserStore) SignUp(ctx context.Context, user *domain.User, password string) (string, error) {
	creds := s.credentials(user.Email, password)
	if user.Name != nil {
		creds["name"] = *user.Name
	} else {
		creds["name"] = ""
	}

	var token string
	err := s.withAccess(ctx, func(db *surrealdb.DB) error {
		var err error
		token, err = db.SignUp(ctx, creds)
		return err
	})
	if err != nil {
		msg := err.Error()
		if strings.Contains(msg, "already exists") || strings.Contains(msg, "already contains") || strings.Contains(msg, "signup query failed") {
			return "", domain.ErrUserAlreadyExists
		}
		return "", toDomainError(WrapError(err, "sign up failed"))
	}

	created, err := s.FindUserByEmail(ctx, user.Email)
	if err != nil {
		return "", fmt.Errorf("failed to fetch user after sign-up: %w", err)
	}
	user.ID = created.ID
	slog.InfoContext(ctx, "User signed up", "event", "user_signed_up", "user_id", created.Key())
	return token, nil
}

// SignIn checks the password and returns a session token.
func (s *UserStore) SignIn(ctx context.Context, user *domain.User, password string) (string, error) {
	var token string
	err := s.withAccess(ctx, func(db *surrealdb.DB) error {
		var err error
		token, err = db.SignIn(ctx, s.credentials(user.Email, password))
		return err
	})
	if err != nil {
		if isConnectionError(err) {
			return "", toDomainError(err)
		}
		return "", domain.ErrInvalidCredentials
	}
	return token, nil
}

// Authenticate validates a session token and returns the associated user.
func (s *UserStore) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	var user *domain.User
	err := s.withAccess(ctx, func(db *surrealdb.DB) error {
		if err := db.Authenticate(ctx, token); err != nil {
			if isConnectionError(err) {
				return err
			}
			return domain.ErrInvalidToken
		}
		users, err := surrealdb.Query[[]domain.User](ctx, db, "SELECT * FROM $auth", nil)
		if err != nil {
			return NewDBError(err, "failed to get authenticated user")
		}
		if users == nil || len(*users) == 0 || len((*users)[0].Result) == 0 {
			return domain.ErrInvalidToken
		}
		user = &(*users)[0].Result[0]
		return nil
	})
	if err != nil {
		return nil, toDomainError(err)
	}
	return user, nil
}

// withAccess runs fn on the access connection and drops the session it
// leaves behind.
func (s *UserStore) withAccess(ctx context.Context, fn func(db *surrealdb.DB) error) error {
	s.accessMu.Lock()
	defer s.accessMu.Unlock()
	return s.access.WithConnection(ctx, func(db *surrealdb.DB) error {
		defer func() {
			if err := db.Invalidate(ctx); err != nil {
				slog.DebugContext(ctx, "failed to invalidate access session", "event", "db_invalidate_failure", "error", err)
			}
		}()
		return fn(db)
	})
}

// FindUserByEmail retrieves a user by their email address.
func (s *UserStore) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.client.QueryOne(ctx, "SELECT * FROM user WHERE email = $email", map[string]any{"email": email})
	if err != nil {
		return nil, toDomainError(WrapError(err, "find user by email"))
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

// GenerateVerifyToken stores a fresh verification token on the account and
// returns it.
func (s *UserStore) GenerateVerifyToken(ctx context.Context, email string) (string, error) {
	token, err := generateSecureToken(32)
	if err != nil {
		return "", err
	}
	query := `UPDATE user SET verify_token = $verify_token WHERE email = $email RETURN AFTER`
	updated, err := s.client.QueryOne(ctx, query, map[string]any{"email": email, "verify_token": token})
	if err != nil {
		return "", toDomainError(WrapError(err, "failed to store verification token"))
	}
	if updated == nil {
		return "", domain.ErrNotFound
	}
	return token, nil
}

// VerifyEmail marks the account holding token as verified and consumes the
// token.
func (s *UserStore) VerifyEmail(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrInvalidToken
	}
	query := `UPDATE user SET email_verified = true, verify_token = NONE WHERE verify_token = $verify_token RETURN AFTER`
	user, err := s.client.QueryOne(ctx, query, map[string]any{"verify_token": token})
	if err != nil {
		return nil, toDomainError(WrapError(err, "failed to verify email"))
	}
	if user == nil {
		return nil, domain.ErrInvalidToken
	}
	slog.InfoContext(ctx, "Email verified", "event", "user_email_verified", "user_id", user.Key())
	return user, nil
}

// generateSecureToken creates a cryptographically secure random token.
func generateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate secure token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
