// Package session manages accounts, credentials and bearer sessions.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"denuncias/internal/models"
	"denuncias/internal/observability"
	"denuncias/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultTTL is how long a session stays valid after sign-in.
	DefaultTTL = time.Hour

	// MinPasswordLength is the shortest password sign-up accepts.
	MinPasswordLength = 6

	tokenType = "bearer"
)

// Manager issues and resolves sessions against a store's users. It keeps its
// own session table and does no locking; the dispatcher serialises callers.
type Manager struct {
	store    *store.Store
	secret   []byte
	ttl      time.Duration
	cost     int
	now      func() time.Time
	sessions map[string]*models.Session
}

// Option configures a Manager.
type Option func(*Manager)

// WithTTL sets the session lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithBcryptCost sets the hashing cost for new accounts.
func WithBcryptCost(cost int) Option {
	return func(m *Manager) { m.cost = cost }
}

// NewManager creates a Manager signing tokens with secret.
func NewManager(s *store.Store, secret string, opts ...Option) *Manager {
	m := &Manager{
		store:    s,
		secret:   []byte(secret),
		ttl:      DefaultTTL,
		cost:     bcrypt.DefaultCost,
		now:      func() time.Time { return time.Now().UTC() },
		sessions: make(map[string]*models.Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SignUp registers a user-role account named after the email's local part
// and opens a session for it.
func (m *Manager) SignUp(ctx context.Context, email, password string) (*models.AuthPayload, error) {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return nil, models.NewInvalidRequestError("Unable to validate email address: invalid format")
	}
	if len(password) < MinPasswordLength {
		return nil, models.NewInvalidRequestError("Password should be at least %d characters", MinPasswordLength)
	}
	if m.store.UserByEmail(email) != nil {
		return nil, models.NewAlreadyRegisteredError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), m.cost)
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("hash password: %w", err))
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.SplitN(email, "@", 2)[0],
		Role:         models.RoleUser,
		CreatedAt:    m.now(),
		PasswordHash: string(hash),
	}
	m.store.AddUser(user)
	observability.GlobalLogger.InfoContext(ctx, "user registered", slog.String("user_id", user.ID))

	return m.open(ctx, user)
}

// SignIn checks credentials and opens a new session. Unknown emails and wrong
// passwords fail identically.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*models.AuthPayload, error) {
	user := m.store.UserByEmail(strings.TrimSpace(email))
	if user == nil {
		return nil, models.NewInvalidCredentialsError()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, models.NewInvalidCredentialsError()
	}
	return m.open(ctx, user)
}

func (m *Manager) open(ctx context.Context, user *models.User) (*models.AuthPayload, error) {
	now := m.now()
	expires := now.Add(m.ttl).Truncate(time.Second)

	token, err := m.sign(user.ID, now, expires)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	s := &models.Session{
		AccessToken: token,
		TokenType:   tokenType,
		UserID:      user.ID,
		ExpiresAt:   expires,
	}
	m.sessions[token] = s
	observability.ActiveSessions.Set(float64(len(m.sessions)))
	observability.GlobalLogger.InfoContext(ctx, "session opened",
		slog.String("user_id", user.ID),
		slog.Time("expires_at", expires),
	)

	u := user.Clone()
	return &models.AuthPayload{User: &u, Session: s.View(now)}, nil
}

func (m *Manager) sign(userID string, now, expires time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// SignOut revokes token. Unknown or already revoked tokens are a no-op.
func (m *Manager) SignOut(ctx context.Context, token string) {
	s, ok := m.sessions[token]
	if !ok {
		return
	}
	delete(m.sessions, token)
	observability.ActiveSessions.Set(float64(len(m.sessions)))
	observability.GlobalLogger.InfoContext(ctx, "session closed", slog.String("user_id", s.UserID))
}

// Resolve returns the live user behind token, or nil for anonymous callers.
// Expired sessions are purged on sight.
func (m *Manager) Resolve(token string) *models.User {
	if token == "" {
		return nil
	}
	s, ok := m.sessions[token]
	if !ok {
		return nil
	}
	if s.Expired(m.now()) {
		delete(m.sessions, token)
		observability.ActiveSessions.Set(float64(len(m.sessions)))
		return nil
	}
	if err := m.verify(token, s.UserID); err != nil {
		return nil
	}
	return m.store.UserByID(s.UserID)
}

func (m *Manager) verify(token, userID string) error {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !parsed.Valid {
		return fmt.Errorf("invalid token: %w", err)
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub != userID {
		return errors.New("token subject mismatch")
	}
	return nil
}

// Session returns the stored session for token, if any.
func (m *Manager) Session(token string) (*models.Session, bool) {
	s, ok := m.sessions[token]
	return s, ok
}

// Reset drops every session.
func (m *Manager) Reset() {
	clear(m.sessions)
	observability.ActiveSessions.Set(0)
}
