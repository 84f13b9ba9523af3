package user

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/forgevyn/zenzero/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	userRepo *StubUserRepository
	sessions *MemorySessionStore
	service  *UserServiceImpl
)

func setup(t *testing.T) func() {
	userRepo = NewStubUserRepository()
	sessions = NewMemorySessionStore(time.Hour, &utils.MockClock{FixedNow: time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)})
	service = NewUserService(userRepo, sessions)
	return func() {
		t.Log("Teardown after test")
	}
}

func TestUserServiceImpl_Login(t *testing.T) {
	t.Run("should create the user on first login", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		user, token, err := service.Login(context.Background(), " Ada ", "Ada@Example.com")

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, user.Id)
		assert.Equal(t, "Ada", user.Name)
		assert.Equal(t, "ada@example.com", user.Email)
		assert.Equal(t, LightTheme, user.Theme)
		assert.NotEmpty(t, user.Uid)
		assert.NotEmpty(t, token)
	})

	t.Run("should reuse the user on the next login", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		first, firstToken, err := service.Login(context.Background(), "Ada", "ada@example.com")
		require.NoError(t, err)

		// when
		second, secondToken, err := service.Login(context.Background(), "Someone else", "ada@example.com")

		// then
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.NotEqual(t, firstToken, secondToken)
	})

	t.Run("should fall back to the default identity", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		user, _, err := service.Login(context.Background(), "", "")

		// then
		require.NoError(t, err)
		assert.Equal(t, DefaultName, user.Name)
		assert.Equal(t, DefaultEmail, user.Email)
	})

	t.Run("should reject an invalid email", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, _, err := service.Login(context.Background(), "Ada", "not-an-email")

		// then
		assert.ErrorIs(t, err, ErrUserDataInvalid)
	})
}

func TestUserServiceImpl_ResolveSession(t *testing.T) {
	t.Run("should resolve the user of a session", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		user, token, err := service.Login(context.Background(), "Ada", "ada@example.com")
		require.NoError(t, err)

		// when
		resolved, err := service.ResolveSession(context.Background(), token)

		// then
		require.NoError(t, err)
		assert.Equal(t, user, resolved)
	})

	t.Run("should not resolve after logout", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		_, token, err := service.Login(context.Background(), "Ada", "ada@example.com")
		require.NoError(t, err)
		require.NoError(t, service.Logout(context.Background(), token))

		// when
		_, err = service.ResolveSession(context.Background(), token)

		// then
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("should drop the session of a removed user", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		token, err := sessions.Create(context.Background(), 99)
		require.NoError(t, err)

		// when
		_, err = service.ResolveSession(context.Background(), token)

		// then
		assert.ErrorIs(t, err, ErrSessionNotFound)
		_, err = sessions.Lookup(context.Background(), token)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestUserServiceImpl_UpdateProfile(t *testing.T) {
	t.Run("should update name and image", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		user, _, err := service.Login(context.Background(), "Ada", "ada@example.com")
		require.NoError(t, err)
		ctx := WithUser(context.Background(), user)

		// when
		updated, err := service.UpdateProfile(ctx, "Ada L.", "data:image/png;base64,iVBORw0KGgo=")

		// then
		require.NoError(t, err)
		assert.Equal(t, "Ada L.", updated.Name)
		assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", updated.Image)
		stored, err := userRepo.GetUser(context.Background(), user.Id)
		require.NoError(t, err)
		assert.Equal(t, updated, stored)
	})

	t.Run("should reject an image that is too large or not an image", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		user, _, err := service.Login(context.Background(), "Ada", "ada@example.com")
		require.NoError(t, err)
		ctx := WithUser(context.Background(), user)

		// then
		_, err = service.UpdateProfile(ctx, "Ada", "data:image/png;base64,"+strings.Repeat("A", MaxImageLength))
		assert.ErrorIs(t, err, ErrUserDataInvalid)
		_, err = service.UpdateProfile(ctx, "Ada", "javascript:alert(1)")
		assert.ErrorIs(t, err, ErrUserDataInvalid)
		_, err = service.UpdateProfile(ctx, " ", "")
		assert.ErrorIs(t, err, ErrUserDataInvalid)
	})

	t.Run("should return error when context has no user", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.UpdateProfile(context.Background(), "Ada", "")

		// then
		assert.ErrorIs(t, err, ErrNoUser)
	})
}

func TestUserServiceImpl_ToggleTheme(t *testing.T) {
	t.Run("should switch between light and dark", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		user, _, err := service.Login(context.Background(), "Ada", "ada@example.com")
		require.NoError(t, err)
		ctx := WithUser(context.Background(), user)

		// when
		dark, err := service.ToggleTheme(ctx)
		require.NoError(t, err)
		light, err := service.ToggleTheme(ctx)
		require.NoError(t, err)

		// then
		assert.Equal(t, DarkTheme, dark.Theme)
		assert.Equal(t, LightTheme, light.Theme)
	})
}
