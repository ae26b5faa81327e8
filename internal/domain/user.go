package domain

import (
	"context"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// User represents the core user model in the application domain.
type User struct {
	ID            *surrealmodels.RecordID `json:"id,omitempty"`
	Email         string                  `json:"email"`
	Name          *string                 `json:"name,omitempty"`
	EmailVerified bool                    `json:"email_verified"`
	VerifyToken   *string                 `json:"verify_token,omitempty"`
}

// Key returns the identifier that guides are keyed by ("user:xyz").
func (u *User) Key() string {
	if u == nil || u.ID == nil {
		return ""
	}
	return u.ID.String()
}

// UserRepository defines the contract for user data storage operations.
// It lives in the domain because it's a requirement OF the domain, not
// of the database implementation.
type UserRepository interface {
	SignUp(ctx context.Context, user *User, password string) (string, error)
	SignIn(ctx context.Context, user *User, password string) (string, error)
	Authenticate(ctx context.Context, token string) (*User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	GenerateVerifyToken(ctx context.Context, email string) (string, error)
	VerifyEmail(ctx context.Context, token string) (*User, error)
}
