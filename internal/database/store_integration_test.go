package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nfrund/notebook/internal/domain"
	"github.com/nfrund/notebook/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB connects a root and an access connection to the test database
// described by .env.test and applies the schema.
func setupTestDB(t *testing.T) (*Connection, *Connection) {
	t.Helper()
	cfg := testutils.ConfigForTests(t)
	ctx := context.Background()

	root := NewConnection(cfg)
	require.NoError(t, root.Connect(ctx), "failed to connect to test database")
	access := NewAccessConnection(cfg)
	require.NoError(t, access.Connect(ctx))
	require.NoError(t, ApplySchema(ctx, root))

	t.Cleanup(func() {
		_ = access.Close(context.Background())
		_ = root.Close(context.Background())
	})
	return root, access
}

func TestGuideStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	root, _ := setupTestDB(t)
	store, err := NewGuideStore(root)
	require.NoError(t, err)

	owner := fmt.Sprintf("user:it%d", time.Now().UnixNano())
	id := fmt.Sprintf("g%d", time.Now().UnixMilli())
	g := domain.NewGuide(id, owner, "Integration", domain.KindChecklist)
	_, err = g.ToggleItem(0, 0, 1)
	require.NoError(t, err)

	saved, err := store.Save(ctx, g)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Delete(context.Background(), owner, id) })
	assert.Equal(t, id, saved.ID)
	assert.NotNil(t, saved.CreatedAt)
	assert.True(t, saved.IsChecked(0, 0, 1))

	list, err := store.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Integration", list[0].Title)

	_, err = store.Get(ctx, "user:someone-else", id)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	stolen := *saved
	stolen.Owner = "user:someone-else"
	_, err = store.Save(ctx, &stolen)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	require.NoError(t, store.Delete(ctx, owner, id))
	assert.ErrorIs(t, store.Delete(ctx, owner, id), domain.ErrNotFound)
}

func TestUserStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	root, access := setupTestDB(t)
	client, err := NewClient[domain.User](root)
	require.NoError(t, err)
	store := NewUserStore(client, access)

	email := fmt.Sprintf("it-%d@example.com", time.Now().UnixNano())
	t.Cleanup(func() {
		_ = client.Execute(context.Background(), "DELETE user WHERE email = $email", map[string]any{"email": email})
	})

	user := &domain.User{Email: email}
	token, err := store.SignUp(ctx, user, "password123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotNil(t, user.ID)

	_, err = store.SignUp(ctx, &domain.User{Email: email}, "password123")
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)

	_, err = store.SignIn(ctx, &domain.User{Email: email}, "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	token, err = store.SignIn(ctx, &domain.User{Email: email}, "password123")
	require.NoError(t, err)

	authed, err := store.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, email, authed.Email)
	assert.False(t, authed.EmailVerified)

	_, err = store.Authenticate(ctx, "not-a-token")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	verifyToken, err := store.GenerateVerifyToken(ctx, email)
	require.NoError(t, err)
	verified, err := store.VerifyEmail(ctx, verifyToken)
	require.NoError(t, err)
	assert.True(t, verified.EmailVerified)

	_, err = store.VerifyEmail(ctx, verifyToken)
	assert.ErrorIs(t, err, domain.ErrInvalidToken, "tokens are single use")
}
