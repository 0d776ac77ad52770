package session

import (
	"context"
	"errors"
	"testing"

	"labcare/internal/events"
	"labcare/internal/models"
	"labcare/internal/repository"
	"labcare/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	kv    *repository.MemoryStore
	users *repository.UserRepository
	bus   *events.EventBus
	seen  []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zerolog.Nop()
	kv := repository.NewMemoryStore()
	f := &fixture{
		kv:    kv,
		users: repository.NewUserRepository(store.New(kv, "", &logger)),
		bus:   events.NewEventBus(&logger),
	}
	for _, ev := range []string{events.EventUserRegistered, events.EventUserLoggedIn, events.EventUserLoggedOut} {
		f.bus.Subscribe(ev, func(e *events.Event) error {
			f.seen = append(f.seen, e.Type)
			return nil
		})
	}
	return f
}

func (f *fixture) session(p AuthProvider) *Session {
	logger := zerolog.Nop()
	return New(f.users, p, f.bus, &logger)
}

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := f.session(InsecureAuthProvider{})

	registered, err := s.Register(ctx, RegisterInput{FullName: "Nimal Perera", Email: "nimal@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.NotEmpty(t, registered.ID)
	assert.False(t, s.IsAuthenticated())

	raw, _, _ := f.kv.Get(ctx, models.KeyAuth)
	assert.Equal(t, "false", raw)

	// insecure mode keeps no password in the user record
	stored, _, _ := f.kv.Get(ctx, models.KeyUser)
	assert.Contains(t, stored, "nimal@example.com")
	assert.NotContains(t, stored, "password")
	assert.NotContains(t, stored, "secret")

	user, err := s.Login(ctx, "nimal@example.com", "secret")
	require.NoError(t, err)
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "nimal@example.com", user.Email)
	assert.Equal(t, registered.ID, user.ID)

	current, ok := s.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "nimal@example.com", current.Email)

	raw, _, _ = f.kv.Get(ctx, models.KeyAuth)
	assert.Equal(t, "true", raw)
	assert.Equal(t, []string{events.EventUserRegistered, events.EventUserLoggedIn}, f.seen)
}

func TestRegisterDefaults(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := f.session(nil)

	user, err := s.Register(ctx, RegisterInput{})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultUserName, user.FullName)
	assert.Equal(t, models.DefaultUserEmail, user.Email)
	assert.Empty(t, user.Password)
}

func TestLoginWithoutRegistration(t *testing.T) {
	ctx := context.Background()

	t.Run("SynthesizesUserFromEmail", func(t *testing.T) {
		f := newFixture(t)
		s := f.session(InsecureAuthProvider{})

		user, err := s.Login(ctx, "guest@example.com", "")
		require.NoError(t, err)
		assert.Equal(t, "guest@example.com", user.Email)
		assert.Equal(t, "guest@example.com", user.FullName)

		stored, err := f.users.GetUser(ctx)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, user.ID, stored.ID)
	})

	t.Run("BlankEmail", func(t *testing.T) {
		f := newFixture(t)
		user, err := f.session(InsecureAuthProvider{}).Login(ctx, "  ", "")
		require.NoError(t, err)
		assert.Equal(t, models.DefaultUserEmail, user.Email)
		assert.Equal(t, models.DefaultUserName, user.FullName)
	})

	t.Run("PasswordProviderRejects", func(t *testing.T) {
		f := newFixture(t)
		s := f.session(PasswordAuthProvider{Cost: bcrypt.MinCost})

		_, err := s.Login(ctx, "guest@example.com", "x")
		assert.ErrorIs(t, err, ErrNoUser)
		assert.False(t, s.IsAuthenticated())
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := f.session(InsecureAuthProvider{})

	_, err := s.Login(ctx, "a@example.com", "")
	require.NoError(t, err)
	require.NoError(t, s.Logout(ctx))

	assert.False(t, s.IsAuthenticated())
	_, ok := s.CurrentUser()
	assert.False(t, ok)

	stored, err := f.users.GetUser(ctx)
	require.NoError(t, err)
	assert.NotNil(t, stored, "logout keeps the user record")

	raw, _, _ := f.kv.Get(ctx, models.KeyAuth)
	assert.Equal(t, "false", raw)
	assert.Contains(t, f.seen, events.EventUserLoggedOut)
}

func TestRestore(t *testing.T) {
	ctx := context.Background()

	t.Run("UserAndFlag", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.session(nil).Login(ctx, "a@example.com", "")
		require.NoError(t, err)

		restored := f.session(nil)
		require.NoError(t, restored.Restore(ctx))
		assert.True(t, restored.IsAuthenticated())
		user, ok := restored.CurrentUser()
		require.True(t, ok)
		assert.Equal(t, "a@example.com", user.Email)
	})

	t.Run("FlagWithoutUser", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.kv.Set(ctx, models.KeyAuth, "true"))

		s := f.session(nil)
		require.NoError(t, s.Restore(ctx))
		assert.False(t, s.IsAuthenticated())
	})

	t.Run("UserWithoutFlag", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.session(nil).Register(ctx, RegisterInput{Email: "b@example.com"})
		require.NoError(t, err)

		s := f.session(nil)
		require.NoError(t, s.Restore(ctx))
		assert.False(t, s.IsAuthenticated())
	})

	t.Run("FlagNotExactlyTrue", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.session(nil).Register(ctx, RegisterInput{Email: "b@example.com"})
		require.NoError(t, err)
		require.NoError(t, f.kv.Set(ctx, models.KeyAuth, "TRUE"))

		s := f.session(nil)
		require.NoError(t, s.Restore(ctx))
		assert.False(t, s.IsAuthenticated())
	})
}

func TestPasswordProvider(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := f.session(PasswordAuthProvider{Cost: bcrypt.MinCost})

	_, err := s.Register(ctx, RegisterInput{Email: "c@example.com", Password: "hunter22"})
	require.NoError(t, err)

	stored, err := f.users.GetUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, "hunter22", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("hunter22")))

	_, err = s.Login(ctx, "c@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.False(t, s.IsAuthenticated())

	_, err = s.Login(ctx, "other@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	user, err := s.Login(ctx, "C@example.com", "hunter22")
	require.NoError(t, err)
	assert.Empty(t, user.Password)
	assert.True(t, s.IsAuthenticated())

	_, err = s.Register(ctx, RegisterInput{Email: "d@example.com"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestNewAuthProvider(t *testing.T) {
	p, err := NewAuthProvider("")
	require.NoError(t, err)
	assert.Equal(t, "insecure", p.Name())

	p, err = NewAuthProvider("password")
	require.NoError(t, err)
	assert.Equal(t, "password", p.Name())

	_, err = NewAuthProvider("ldap")
	assert.Error(t, err)
}

type failingUsers struct {
	repository.UserRepository
}

func (failingUsers) GetUser(context.Context) (*models.User, error) {
	return nil, errors.New("backend down")
}

func TestRestoreStorageFailure(t *testing.T) {
	logger := zerolog.Nop()
	s := New(failingUsers{}, nil, nil, &logger)
	assert.Error(t, s.Restore(context.Background()))
	assert.False(t, s.IsAuthenticated())
}
