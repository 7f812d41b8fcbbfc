package models

import "time"

// Like records a user's support for a report.
// The combination of DenunciaID and UserID must be unique.
type Like struct {
	ID         string    `json:"id" yaml:"id"`
	DenunciaID string    `json:"denuncia_id" yaml:"denuncia_id"`
	UserID     string    `json:"user_id" yaml:"user_id"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
}

func (l *Like) OwnerID() string { return l.UserID }

// Clone returns a copy.
func (l *Like) Clone() Like {
	return *l
}

// LikeDraft is the insert shape for a like.
type LikeDraft struct {
	ID         string     `json:"id,omitempty"`
	DenunciaID string     `json:"denuncia_id"`
	UserID     string     `json:"user_id"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

func (d LikeDraft) OwnerID() string { return d.UserID }
