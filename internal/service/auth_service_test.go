package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taichu-system/tenancy-management/internal/model"
)

func TestAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	caretaker, err := env.auth.ProvisionCaretaker(ctx, model.CreateCaretakerRequest{
		Name: "Carol", Email: "Carol@Example.com ", Password: testPassword,
	})
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", caretaker.Email)

	t.Run("success", func(t *testing.T) {
		resp, err := env.auth.Authenticate(ctx, "CAROL@example.com", testPassword, model.RequestMeta{IPAddress: "127.0.0.1"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, model.RoleCaretaker, resp.Role)
		assert.Equal(t, caretaker.ID, resp.User.ID)
		assert.True(t, resp.ExpiresAt.After(time.Now()))

		sess, err := env.auth.ResolveSession(ctx, resp.Token)
		require.NoError(t, err)
		assert.Equal(t, caretaker.ID, sess.UserID)
		assert.Equal(t, model.RoleCaretaker, sess.Role)
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		_, errWrong := env.auth.Authenticate(ctx, "carol@example.com", "nope-nope", model.RequestMeta{})
		_, errUnknown := env.auth.Authenticate(ctx, "nobody@example.com", testPassword, model.RequestMeta{})

		assert.ErrorIs(t, errWrong, ErrInvalidCredentials)
		assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
		assert.Equal(t, errWrong.Error(), errUnknown.Error())
	})

	t.Run("duplicate caretaker email", func(t *testing.T) {
		_, err := env.auth.ProvisionCaretaker(ctx, model.CreateCaretakerRequest{
			Name: "Other", Email: "carol@example.com", Password: testPassword,
		})
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("short password rejected", func(t *testing.T) {
		_, err := env.auth.ProvisionCaretaker(ctx, model.CreateCaretakerRequest{
			Name: "Short", Email: "short@example.com", Password: "123",
		})
		assert.Equal(t, KindValidation, KindOf(err))
	})
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	unit := env.createUnit(t, "A", "101")
	tenant := env.onboard(t, "jane", unit.ID)
	require.NoError(t, env.onboarding.OffboardTenant(ctx, env.caretaker, tenant.ID))

	_, err := env.auth.Authenticate(ctx, "jane@example.com", testPassword, model.RequestMeta{})
	assert.ErrorIs(t, err, ErrAccountInactive)

	// 密码错误时不暴露账号状态
	_, err = env.auth.Authenticate(ctx, "jane@example.com", "wrong-password", model.RequestMeta{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResolveSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.ProvisionCaretaker(ctx, model.CreateCaretakerRequest{Name: "Carol", Email: "carol@example.com", Password: testPassword})
	require.NoError(t, err)

	login := func(t *testing.T) string {
		resp, err := env.auth.Authenticate(ctx, "carol@example.com", testPassword, model.RequestMeta{})
		require.NoError(t, err)
		return resp.Token
	}

	t.Run("malformed", func(t *testing.T) {
		_, err := env.auth.ResolveSession(ctx, "not-a-token")
		assert.ErrorIs(t, err, ErrSessionInvalid)

		_, err = env.auth.ResolveSession(ctx, "")
		assert.ErrorIs(t, err, ErrSessionInvalid)
	})

	t.Run("forged signature", func(t *testing.T) {
		claims := SessionClaims{
			Role: string(model.RoleCaretaker),
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				Subject:   uuid.NewString(),
				Issuer:    "tenancy-management",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
		require.NoError(t, err)

		_, err = env.auth.ResolveSession(ctx, forged)
		assert.ErrorIs(t, err, ErrSessionInvalid)
	})

	t.Run("unknown session id", func(t *testing.T) {
		claims := SessionClaims{
			Role: string(model.RoleCaretaker),
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				Subject:   uuid.NewString(),
				Issuer:    "tenancy-management",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = env.auth.ResolveSession(ctx, token)
		assert.ErrorIs(t, err, ErrSessionInvalid)
	})

	t.Run("expired", func(t *testing.T) {
		token := login(t)
		env.auth.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { env.auth.now = time.Now }()

		_, err := env.auth.ResolveSession(ctx, token)
		assert.ErrorIs(t, err, ErrSessionExpired)
	})

	t.Run("logout revokes", func(t *testing.T) {
		token := login(t)
		sess, err := env.auth.ResolveSession(ctx, token)
		require.NoError(t, err)

		require.NoError(t, env.auth.Logout(ctx, sess))

		_, err = env.auth.ResolveSession(ctx, token)
		assert.ErrorIs(t, err, ErrSessionInvalid)
	})

	t.Run("current user", func(t *testing.T) {
		sess, err := env.auth.ResolveSession(ctx, login(t))
		require.NoError(t, err)

		me, err := env.auth.CurrentUser(ctx, sess)
		require.NoError(t, err)
		assert.Equal(t, "Carol", me.Name)
		assert.Equal(t, model.RoleCaretaker, me.Role)
	})
}

func TestAuthorize(t *testing.T) {
	env := newTestEnv(t)

	tenantSession := &model.Session{UserID: uuid.New(), Role: model.RoleTenant}
	caretakerSession := &model.Session{UserID: uuid.New(), Role: model.RoleCaretaker}

	assert.NoError(t, env.auth.Authorize(caretakerSession, model.RoleCaretaker))
	assert.ErrorIs(t, env.auth.Authorize(tenantSession, model.RoleCaretaker), ErrForbidden)
	assert.NoError(t, env.auth.Authorize(tenantSession, model.RoleCaretaker, model.RoleTenant))
	assert.ErrorIs(t, env.auth.Authorize(nil, model.RoleCaretaker), ErrSessionInvalid)
}

func TestOffboardRevokesSessions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	unit := env.createUnit(t, "A", "101")
	tenant := env.onboard(t, "jane", unit.ID)

	resp, err := env.auth.Authenticate(ctx, "jane@example.com", testPassword, model.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, model.RoleTenant, resp.Role)

	require.NoError(t, env.onboarding.OffboardTenant(ctx, env.caretaker, tenant.ID))

	_, err = env.auth.ResolveSession(ctx, resp.Token)
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestResolveSessionRejectsDeactivatedUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	unit := env.createUnit(t, "A", "101")
	env.onboard(t, "jane", unit.ID)

	resp, err := env.auth.Authenticate(ctx, "jane@example.com", testPassword, model.RequestMeta{})
	require.NoError(t, err)

	// 停用账号但会话仍在存储中
	require.NoError(t, env.db.Model(&model.User{}).Where("email = ?", "jane@example.com").Update("is_active", false).Error)
	assert.Equal(t, int64(1), env.count(t, &model.Session{}, "user_id = ? AND revoked_at IS NULL", resp.User.ID))

	_, err = env.auth.ResolveSession(ctx, resp.Token)
	assert.ErrorIs(t, err, ErrSessionInvalid)

	assert.Equal(t, int64(0), env.count(t, &model.Session{}, "user_id = ? AND revoked_at IS NULL", resp.User.ID))
}
