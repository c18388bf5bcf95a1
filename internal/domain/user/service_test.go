package user_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/xiebiao/bookshelf/internal/domain/user"
	"github.com/xiebiao/bookshelf/internal/infrastructure/persistence/sqlstore"
	"github.com/xiebiao/bookshelf/internal/infrastructure/persistence/sqlstore/sqlstoretest"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

func newService(t *testing.T) (user.Service, user.Repository) {
	t.Helper()
	repo := sqlstore.NewUserRepository(sqlstoretest.Open(t))
	return user.NewService(repo, user.WithBcryptCost(bcrypt.MinCost)), repo
}

func TestRegister(t *testing.T) {
	svc, _ := newService(t)

	u, err := svc.Register(context.Background(), "  alice ", "Alice@Example.COM", "secret1")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, user.RoleUser, u.Role)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "secret1", u.Password)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "al", "bad-email", "secret1")
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	require.Len(t, appErr.Details, 2)
	assert.Equal(t, "username", appErr.Details[0].Field)
	assert.Equal(t, "email", appErr.Details[1].Field)

	_, err = svc.Register(ctx, "bad name!", "a@example.com", "secret1")
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "username", appErr.Details[0].Field)

	_, err = svc.Register(ctx, "alice", "a@example.com", "12345")
	assert.ErrorIs(t, err, apperrors.ErrWeakPassword)
}

func TestRegister_Duplicates(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "other@example.com", "secret1")
	assert.ErrorIs(t, err, apperrors.ErrUsernameDuplicate)

	_, err = svc.Register(ctx, "alice2", "ALICE@example.com", "secret1")
	assert.ErrorIs(t, err, apperrors.ErrEmailDuplicate)
}

func TestLogin(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	u, err := svc.Login(ctx, "ALICE@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, u.ID)

	_, err = svc.Login(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)
	_, err = svc.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)

	u.Deactivate()
	require.NoError(t, repo.Update(ctx, u))
	_, err = svc.Login(ctx, "alice@example.com", "secret1")
	assert.ErrorIs(t, err, apperrors.ErrAccountInactive)
}

func TestGetActiveUser(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	got, err := svc.GetActiveUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = svc.GetActiveUser(ctx, u.ID+1)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	u.Deactivate()
	require.NoError(t, repo.Update(ctx, u))
	_, err = svc.GetActiveUser(ctx, u.ID)
	assert.ErrorIs(t, err, apperrors.ErrAccountInactive)
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	alice, err := svc.Register(ctx, "alice", "alice@example.com", "secret1")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "bob", "bob@example.com", "secret1")
	require.NoError(t, err)

	u, err := svc.UpdateProfile(ctx, alice.ID, " alice_w ")
	require.NoError(t, err)
	assert.Equal(t, "alice_w", u.Username)

	got, err := svc.GetActiveUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice_w", got.Username)

	// 用户名未变化
	_, err = svc.UpdateProfile(ctx, alice.ID, "alice_w")
	assert.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, alice.ID, "bob")
	assert.ErrorIs(t, err, apperrors.ErrUsernameDuplicate)

	_, err = svc.UpdateProfile(ctx, alice.ID, "no spaces")
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrCodeInvalidParams, appErr.Code)
	assert.Equal(t, "username", appErr.Details[0].Field)
}

func TestDeactivate(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	admin, err := svc.Register(ctx, "root", "root@example.com", "secret1")
	require.NoError(t, err)
	alice, err := svc.Register(ctx, "alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	_, err = svc.Deactivate(ctx, admin.ID, admin.ID)
	assert.ErrorIs(t, err, apperrors.ErrSelfDeactivation)

	u, err := svc.Deactivate(ctx, admin.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, u.IsActive)

	_, err = svc.Login(ctx, "alice@example.com", "secret1")
	assert.ErrorIs(t, err, apperrors.ErrAccountInactive)
	_, err = svc.GetActiveUser(ctx, alice.ID)
	assert.ErrorIs(t, err, apperrors.ErrAccountInactive)

	// 重复停用
	_, err = svc.Deactivate(ctx, admin.ID, alice.ID)
	assert.NoError(t, err)

	_, err = svc.Deactivate(ctx, admin.ID, alice.ID+100)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}
