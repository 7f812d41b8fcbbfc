package models

import "time"

// Comentario is a comment left on a report.
type Comentario struct {
	ID         string    `json:"id" yaml:"id"`
	DenunciaID string    `json:"denuncia_id" yaml:"denuncia_id"`
	UserID     string    `json:"user_id" yaml:"user_id"`
	Contenido  string    `json:"contenido" yaml:"contenido"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
}

func (c *Comentario) OwnerID() string { return c.UserID }

// Clone returns a copy.
func (c *Comentario) Clone() Comentario {
	return *c
}

// ComentarioDraft is the insert shape for a comment.
type ComentarioDraft struct {
	ID         string     `json:"id,omitempty"`
	DenunciaID string     `json:"denuncia_id"`
	UserID     string     `json:"user_id"`
	Contenido  string     `json:"contenido"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

func (d ComentarioDraft) OwnerID() string { return d.UserID }

// Author is the user projection inlined into enriched comments.
type Author struct {
	Name string `json:"name"`
}

// ComentarioWithAuthor is a comment with its author's name inlined.
type ComentarioWithAuthor struct {
	Comentario
	Users Author `json:"users"`
}
