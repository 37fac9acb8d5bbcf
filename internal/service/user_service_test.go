package service_test

import (
	"context"
	"testing"

	"github.com/Baaaki/yamdb/internal/models"
	"github.com/Baaaki/yamdb/internal/repository"
	"github.com/Baaaki/yamdb/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_AdminOnly(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, _, err := e.userSvc.List(ctx, e.moderator, "", repository.Page{})
	assert.ErrorIs(t, err, service.ErrPermission)

	_, _, err = e.userSvc.List(ctx, nil, "", repository.Page{})
	assert.ErrorIs(t, err, service.ErrUnauthenticated)

	_, err = e.userSvc.Get(ctx, e.alice, "bob")
	assert.ErrorIs(t, err, service.ErrPermission)

	users, total, err := e.userSvc.List(ctx, e.admin, "", repository.Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, users, 4)

	users, total, err = e.userSvc.List(ctx, e.admin, "ALI", repository.Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "alice", users[0].Username)
}

func TestUserService_Create(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	user, err := e.userSvc.Create(ctx, e.admin, service.UserInput{
		Username: "carol",
		Email:    "carol@example.com",
		Bio:      "reader",
		Role:     models.RoleModerator,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleModerator, user.Role)

	user, err = e.userSvc.Create(ctx, e.admin, service.UserInput{Username: "dave", Email: "dave@example.com"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)

	_, err = e.userSvc.Create(ctx, e.admin, service.UserInput{Username: "erin", Email: "erin@example.com", Role: "owner"})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = e.userSvc.Create(ctx, e.admin, service.UserInput{Username: "carol", Email: "new@example.com"})
	assert.ErrorIs(t, err, service.ErrConflict)

	_, err = e.userSvc.Create(ctx, e.admin, service.UserInput{Username: "me", Email: "me@example.com"})
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestUserService_AdminUpdateChangesRole(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	role := models.RoleModerator

	updated, err := e.userSvc.Update(ctx, e.admin, "alice", service.UserPatch{Role: &role, Bio: strPtr("promoted")})
	require.NoError(t, err)
	assert.Equal(t, models.RoleModerator, updated.Role)
	assert.Equal(t, "promoted", updated.Bio)

	_, err = e.userSvc.Update(ctx, e.admin, "alice", service.UserPatch{Email: strPtr("bob@example.com")})
	assert.ErrorIs(t, err, service.ErrConflict)

	_, err = e.userSvc.Update(ctx, e.admin, "nobody", service.UserPatch{Bio: strPtr("x")})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestUserService_UpdateMeIgnoresRole(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	role := models.RoleAdmin

	updated, err := e.userSvc.UpdateMe(ctx, e.alice, service.UserPatch{
		Role:      &role,
		FirstName: strPtr("Alice"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, updated.Role)
	assert.Equal(t, "Alice", updated.FirstName)

	stored, err := e.users.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, stored.Role)

	_, err = e.userSvc.UpdateMe(ctx, nil, service.UserPatch{})
	assert.ErrorIs(t, err, service.ErrUnauthenticated)

	_, err = e.userSvc.UpdateMe(ctx, e.alice, service.UserPatch{Username: strPtr("bob")})
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestUserService_DeleteIsSoft(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.userSvc.Delete(ctx, e.admin, "bob"))

	_, err := e.userSvc.Get(ctx, e.admin, "bob")
	assert.ErrorIs(t, err, service.ErrNotFound)

	var count int64
	e.db.Unscoped().Model(&models.User{}).Where("username = ?", "bob").Count(&count)
	assert.Equal(t, int64(1), count, "row is kept")
}
