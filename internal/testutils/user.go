package testutils

import (
	"github.com/nfrund/notebook/internal/domain"
)

// NewVerifiedUser returns a signed-in, verified user with a random record id.
func NewVerifiedUser(email string) *domain.User {
	return &domain.User{ID: NewTestRecordID("user"), Email: email, EmailVerified: true}
}
