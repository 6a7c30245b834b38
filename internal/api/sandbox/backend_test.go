package sandbox

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/client/internal/core/domain"
	"github.com/taskflow/client/internal/core/ports"
)

func newSeeded(t *testing.T) *Backend {
	t.Helper()
	b := NewBackend(NewTokens("secret", time.Minute, time.Hour), zerolog.Nop())
	require.NoError(t, b.Seed(context.Background()))
	return b
}

func login(t *testing.T, b *Backend, email, password string) (*domain.TokenPair, Actor) {
	t.Helper()
	pair, err := b.Login(context.Background(), email, password)
	require.NoError(t, err)
	claims, err := b.tokens.Parse(pair.AccessToken, KindAccess)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	return pair, Actor{UserID: id, Role: claims.Role}
}

func TestBackend_LoginAndRefresh(t *testing.T) {
	ctx := context.Background()
	b := newSeeded(t)

	_, err := b.Login(ctx, "user1@taskflow.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = b.Login(ctx, "ghost@taskflow.com", "User123!")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	pair, actor := login(t, b, "User1@TaskFlow.com", "User123!")
	assert.Equal(t, domain.RoleUser, actor.Role)
	assert.Equal(t, "bearer", pair.TokenType)

	access, err := b.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessToken, access.AccessToken)

	_, err = b.Refresh(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken, "access token must not be accepted as refresh token")
}

func TestBackend_ExpireAndRevoke(t *testing.T) {
	ctx := context.Background()
	b := newSeeded(t)
	pair, _ := login(t, b, "admin@taskflow.com", "Admin123!")

	assert.Equal(t, 1, b.ExpireAccessTokens())
	_, err := b.tokens.Parse(pair.AccessToken, KindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = b.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	assert.Equal(t, 1, b.RevokeRefreshTokens())
	_, err = b.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBackend_TaskOwnership(t *testing.T) {
	ctx := context.Background()
	b := newSeeded(t)
	_, user1 := login(t, b, "user1@taskflow.com", "User123!")
	_, user2 := login(t, b, "user2@taskflow.com", "User123!")
	_, admin := login(t, b, "admin@taskflow.com", "Admin123!")

	own, err := b.ListTasks(ctx, user1, domain.TaskFilters{})
	require.NoError(t, err)
	require.Len(t, own, 3)
	assert.Greater(t, own[0].ID, own[1].ID, "newest first")

	all, err := b.ListTasks(ctx, admin, domain.TaskFilters{})
	require.NoError(t, err)
	assert.Len(t, all, 5)

	_, err = b.GetTask(ctx, user2, own[0].ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, b.DeleteTask(ctx, user2, own[0].ID), ErrTaskNotFound)

	task, err := b.GetTask(ctx, admin, own[0].ID)
	require.NoError(t, err)
	assert.Equal(t, user1.UserID, task.OwnerID)
}

func TestBackend_TaskFilters(t *testing.T) {
	ctx := context.Background()
	b := newSeeded(t)
	_, user1 := login(t, b, "user1@taskflow.com", "User123!")

	done, err := b.ListTasks(ctx, user1, domain.TaskFilters{Status: domain.StatusDone})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "Fix authentication bug", done[0].Title)

	found, err := b.ListTasks(ctx, user1, domain.TaskFilters{Search: "PULL"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Review pull requests", found[0].Title)
}

func TestBackend_TaskLifecycle(t *testing.T) {
	ctx := context.Background()
	b := newSeeded(t)
	_, user2 := login(t, b, "user2@taskflow.com", "User123!")

	created, err := b.CreateTask(ctx, user2, domain.TaskCreate{Title: "Ship it"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusTodo, created.Status)
	assert.Equal(t, user2.UserID, created.OwnerID)

	title := "Ship it now"
	updated, err := b.UpdateTask(ctx, user2, created.ID, domain.TaskUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, domain.StatusTodo, updated.Status)

	moved, err := b.UpdateTaskStatus(ctx, user2, created.ID, domain.StatusDone)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, moved.Status)

	bad := domain.TaskStatus("Blocked")
	_, err = b.UpdateTask(ctx, user2, created.ID, domain.TaskUpdate{Status: &bad})
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, b.DeleteTask(ctx, user2, created.ID))
	_, err = b.GetTask(ctx, user2, created.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestBackend_RegisterRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	b := newSeeded(t)

	user, err := b.Register(ctx, ports.RegisterInput{Email: "new@taskflow.com", Password: "Secret123", FullName: "New Person"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Equal(t, "New Person", user.DisplayName())

	_, err = b.Register(ctx, ports.RegisterInput{Email: "NEW@taskflow.com", Password: "Secret123"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	users, err := b.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 4)
}
