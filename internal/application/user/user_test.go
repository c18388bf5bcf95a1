package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	appuser "github.com/xiebiao/bookshelf/internal/application/user"
	"github.com/xiebiao/bookshelf/internal/domain/user"
	"github.com/xiebiao/bookshelf/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookshelf/internal/infrastructure/persistence/sqlstore"
	"github.com/xiebiao/bookshelf/internal/infrastructure/persistence/sqlstore/sqlstoretest"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
	"github.com/xiebiao/bookshelf/pkg/jwt"
)

type env struct {
	mr       *miniredis.Miniredis
	sessions *redis.SessionStore
	jwt      *jwt.Manager
	register *appuser.RegisterUseCase
	login    *appuser.LoginUseCase
	logout   *appuser.LogoutUseCase
	me       *appuser.MeUseCase
	profile  *appuser.UpdateProfileUseCase
	disable  *appuser.DeactivateUserUseCase
}

func newEnv(t *testing.T) *env {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sessions := redis.NewSessionStore(client)
	jwtManager := jwt.NewManager("test-secret", time.Hour, 24*time.Hour)
	users := user.NewService(sqlstore.NewUserRepository(sqlstoretest.Open(t)), user.WithBcryptCost(bcrypt.MinCost))
	log := zap.NewNop()

	return &env{
		mr:       mr,
		sessions: sessions,
		jwt:      jwtManager,
		register: appuser.NewRegisterUseCase(users, jwtManager, sessions, log),
		login:    appuser.NewLoginUseCase(users, jwtManager, sessions, log),
		logout:   appuser.NewLogoutUseCase(sessions, log),
		me:       appuser.NewMeUseCase(users),
		profile:  appuser.NewUpdateProfileUseCase(users, log),
		disable:  appuser.NewDeactivateUserUseCase(users, sessions, log),
	}
}

func TestRegisterAndLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	reg, err := e.register.Execute(ctx, appuser.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret1",
		ClientIP: "10.0.0.1",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", reg.User.Username)
	assert.Equal(t, user.RoleUser, reg.User.Role)
	assert.NotEmpty(t, reg.AccessToken)
	assert.Equal(t, int64(3600), reg.ExpiresIn)

	claims, err := e.jwt.ParseToken(reg.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, claims.UserID)

	res, err := e.login.Execute(ctx, appuser.LoginRequest{Email: "alice@example.com", Password: "secret1", ClientIP: "10.0.0.2"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, res.User.ID)

	session, err := e.sessions.GetSession(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.2", session["ip"])
	assert.Equal(t, "alice", session["username"])

	_, err = e.login.Execute(ctx, appuser.LoginRequest{Email: "alice@example.com", Password: "nope"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)
}

func TestLogout_BlacklistsToken(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	reg, err := e.register.Execute(ctx, appuser.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	claims, err := e.jwt.ParseToken(reg.AccessToken)
	require.NoError(t, err)

	require.NoError(t, e.logout.Execute(ctx, appuser.LogoutRequest{
		UserID:      reg.User.ID,
		AccessToken: reg.AccessToken,
		ExpiresAt:   claims.ExpiresAt.Time,
	}))

	revoked, err := e.sessions.IsInBlacklist(ctx, reg.AccessToken)
	require.NoError(t, err)
	assert.True(t, revoked)

	_, err = e.sessions.GetSession(ctx, reg.User.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	// 黑名单只保留到Token过期
	e.mr.FastForward(time.Hour + time.Minute)
	revoked, err = e.sessions.IsInBlacklist(ctx, reg.AccessToken)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestLogout_WithoutSessionStore(t *testing.T) {
	uc := appuser.NewLogoutUseCase(nil, nil)
	assert.NoError(t, uc.Execute(context.Background(), appuser.LogoutRequest{UserID: 1, AccessToken: "t"}))
}

func TestMe(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	reg, err := e.register.Execute(ctx, appuser.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	me, err := e.me.Execute(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", me.Email)

	_, err = e.me.Execute(ctx, reg.User.ID+99)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestRefreshToken(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	users := user.NewService(sqlstore.NewUserRepository(sqlstoretest.Open(t)), user.WithBcryptCost(bcrypt.MinCost))
	register := appuser.NewRegisterUseCase(users, e.jwt, nil, nil)
	refresh := appuser.NewRefreshTokenUseCase(users, e.jwt)

	reg, err := register.Execute(ctx, appuser.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	res, err := refresh.Execute(ctx, reg.RefreshToken)
	require.NoError(t, err)
	claims, err := e.jwt.ParseAccessToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)

	_, err = refresh.Execute(ctx, reg.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestUpdateProfile(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	reg, err := e.register.Execute(ctx, appuser.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	view, err := e.profile.Execute(ctx, appuser.UpdateProfileRequest{UserID: reg.User.ID, Username: "alice_w"})
	require.NoError(t, err)
	assert.Equal(t, "alice_w", view.Username)
	assert.Equal(t, "alice@example.com", view.Email)

	me, err := e.me.Execute(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice_w", me.Username)
}

func TestDeactivateUser(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	admin, err := e.register.Execute(ctx, appuser.RegisterRequest{Username: "root", Email: "root@example.com", Password: "secret1"})
	require.NoError(t, err)
	alice, err := e.register.Execute(ctx, appuser.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "secret1", ClientIP: "10.0.0.1"})
	require.NoError(t, err)
	_, err = e.sessions.GetSession(ctx, alice.User.ID)
	require.NoError(t, err)

	require.NoError(t, e.disable.Execute(ctx, appuser.DeactivateUserRequest{AdminID: admin.User.ID, TargetID: alice.User.ID}))

	// 会话被删除,已签发的Token不再可用
	_, err = e.sessions.GetSession(ctx, alice.User.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	_, err = e.me.Execute(ctx, alice.User.ID)
	assert.ErrorIs(t, err, apperrors.ErrAccountInactive)

	err = e.disable.Execute(ctx, appuser.DeactivateUserRequest{AdminID: admin.User.ID, TargetID: admin.User.ID})
	assert.ErrorIs(t, err, apperrors.ErrSelfDeactivation)
}
