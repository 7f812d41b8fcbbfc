package session

import (
	"context"
	"testing"
	"time"

	"denuncias/internal/models"
	"denuncias/internal/seed"
	"denuncias/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestManager(t *testing.T) (*Manager, *store.Store, *fakeClock) {
	t.Helper()
	f, err := seed.Default(bcrypt.MinCost)
	require.NoError(t, err)
	s := store.New(f)
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	m := NewManager(s, "test-secret", WithClock(clock.Now), WithBcryptCost(bcrypt.MinCost))
	return m, s, clock
}

func TestSignIn(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials open a session", func(t *testing.T) {
		m, _, _ := newTestManager(t)
		payload, err := m.SignIn(ctx, "user@example.com", "password")
		require.NoError(t, err)
		assert.Equal(t, "user-1", payload.User.ID)
		assert.Equal(t, "user-1", payload.Session.UserID)
		assert.Equal(t, int64(3600), payload.Session.ExpiresIn)
		assert.NotEmpty(t, payload.Session.AccessToken)

		u := m.Resolve(payload.Session.AccessToken)
		require.NotNil(t, u)
		assert.Equal(t, "user-1", u.ID)
	})

	t.Run("email lookup ignores case", func(t *testing.T) {
		m, _, _ := newTestManager(t)
		payload, err := m.SignIn(ctx, "Admin@Example.com", "password")
		require.NoError(t, err)
		assert.Equal(t, "admin-1", payload.User.ID)
	})

	t.Run("wrong password and unknown email fail alike", func(t *testing.T) {
		m, _, _ := newTestManager(t)
		_, err := m.SignIn(ctx, "user@example.com", "nope")
		assert.True(t, models.IsCode(err, models.CodeInvalidCredentials))

		_, err = m.SignIn(ctx, "ghost@example.com", "password")
		assert.True(t, models.IsCode(err, models.CodeInvalidCredentials))
	})

	t.Run("each sign-in yields a distinct token", func(t *testing.T) {
		m, _, _ := newTestManager(t)
		a, err := m.SignIn(ctx, "user@example.com", "password")
		require.NoError(t, err)
		b, err := m.SignIn(ctx, "user@example.com", "password")
		require.NoError(t, err)
		assert.NotEqual(t, a.Session.AccessToken, b.Session.AccessToken)
	})
}

func TestSignUp(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a user-role account and signs it in", func(t *testing.T) {
		m, s, _ := newTestManager(t)
		payload, err := m.SignUp(ctx, "nuevo@example.com", "secreto1")
		require.NoError(t, err)
		assert.Equal(t, "nuevo", payload.User.Name)
		assert.Equal(t, models.RoleUser, payload.User.Role)
		assert.NotNil(t, s.UserByEmail("nuevo@example.com"))
		assert.NotNil(t, m.Resolve(payload.Session.AccessToken))

		_, err = m.SignIn(ctx, "nuevo@example.com", "secreto1")
		assert.NoError(t, err)
	})

	t.Run("rejects a taken email", func(t *testing.T) {
		m, _, _ := newTestManager(t)
		_, err := m.SignUp(ctx, "USER@example.com", "password")
		assert.True(t, models.IsCode(err, models.CodeAlreadyRegistered))
	})

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"malformed email", "not-an-email", "password"},
		{"display name form", "Nuevo <nuevo@example.com>", "password"},
		{"short password", "corto@example.com", "12345"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, s, _ := newTestManager(t)
			before := len(s.Users)
			_, err := m.SignUp(ctx, tt.email, tt.password)
			assert.True(t, models.IsCode(err, models.CodeInvalidRequest))
			assert.Len(t, s.Users, before)
		})
	}
}

func TestSignOut(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(t)

	payload, err := m.SignIn(ctx, "user@example.com", "password")
	require.NoError(t, err)
	token := payload.Session.AccessToken

	m.SignOut(ctx, token)
	assert.Nil(t, m.Resolve(token))

	// Revoking twice is harmless.
	m.SignOut(ctx, token)
	m.SignOut(ctx, "never-issued")
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown and empty tokens are anonymous", func(t *testing.T) {
		m, _, _ := newTestManager(t)
		assert.Nil(t, m.Resolve(""))
		assert.Nil(t, m.Resolve("garbage"))
	})

	t.Run("expired sessions are purged", func(t *testing.T) {
		m, _, clock := newTestManager(t)
		payload, err := m.SignIn(ctx, "user@example.com", "password")
		require.NoError(t, err)
		token := payload.Session.AccessToken

		clock.Advance(59 * time.Minute)
		assert.NotNil(t, m.Resolve(token))

		clock.Advance(time.Minute)
		assert.Nil(t, m.Resolve(token))
		_, ok := m.Session(token)
		assert.False(t, ok)
	})

	t.Run("token signed with another secret is rejected", func(t *testing.T) {
		m, s, clock := newTestManager(t)
		other := NewManager(s, "other-secret", WithClock(clock.Now))
		payload, err := other.SignIn(ctx, "user@example.com", "password")
		require.NoError(t, err)

		// Plant the foreign session directly so only the signature differs.
		forged, _ := other.Session(payload.Session.AccessToken)
		m.sessions[forged.AccessToken] = forged
		assert.Nil(t, m.Resolve(forged.AccessToken))
	})

	t.Run("reset drops all sessions", func(t *testing.T) {
		m, _, _ := newTestManager(t)
		payload, err := m.SignIn(ctx, "admin@example.com", "password")
		require.NoError(t, err)
		m.Reset()
		assert.Nil(t, m.Resolve(payload.Session.AccessToken))
	})
}
