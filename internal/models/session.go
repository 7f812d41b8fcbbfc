package models

import "time"

// Session binds a bearer token to a user until ExpiresAt.
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	UserID      string    `json:"user_id"`
	ExpiresAt   time.Time `json:"-"`
}

// ExpiresAtUnix is the expiry as seconds since the epoch, as clients see it.
func (s *Session) ExpiresAtUnix() int64 {
	return s.ExpiresAt.Unix()
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// AuthPayload is the data returned by sign-in and sign-up.
type AuthPayload struct {
	User    *User        `json:"user"`
	Session *SessionView `json:"session"`
}

// SessionView is the client-facing session representation.
type SessionView struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	ExpiresAt   int64  `json:"expires_at"`
	UserID      string `json:"user_id"`
}

// View renders the session for clients at now.
func (s *Session) View(now time.Time) *SessionView {
	return &SessionView{
		AccessToken: s.AccessToken,
		TokenType:   s.TokenType,
		ExpiresIn:   int64(s.ExpiresAt.Sub(now).Seconds()),
		ExpiresAt:   s.ExpiresAtUnix(),
		UserID:      s.UserID,
	}
}
