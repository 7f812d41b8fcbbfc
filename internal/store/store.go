// Package store holds the engine's table state in memory.
//
// A Store is an explicitly owned container: construct one per engine (or per
// test) and pass it by handle. It performs no locking; callers serialise
// access (the dispatcher does this for every external request).
package store

import (
	"strings"

	"denuncias/internal/models"
	"denuncias/internal/seed"
)

// Store holds the five ordered collections. Rows are mutated in place;
// anything handed outside the engine must be cloned first.
type Store struct {
	fixture *seed.Fixture

	Users        []*models.User
	Denuncias    []*models.Denuncia
	Comentarios  []*models.Comentario
	Likes        []*models.Like
	Moderaciones []*models.Moderacion
}

// New creates a store initialised from fixture.
func New(fixture *seed.Fixture) *Store {
	s := &Store{fixture: fixture}
	s.Reset()
	return s
}

// Reset restores every table to the fixture. Calling it repeatedly is idempotent.
func (s *Store) Reset() {
	f := s.fixture

	s.Users = make([]*models.User, 0, len(f.Users))
	for i := range f.Users {
		u := f.Users[i].Clone()
		s.Users = append(s.Users, &u)
	}
	s.Denuncias = make([]*models.Denuncia, 0, len(f.Denuncias))
	for i := range f.Denuncias {
		d := f.Denuncias[i].Clone()
		s.Denuncias = append(s.Denuncias, &d)
	}
	s.Comentarios = make([]*models.Comentario, 0, len(f.Comentarios))
	for i := range f.Comentarios {
		c := f.Comentarios[i].Clone()
		s.Comentarios = append(s.Comentarios, &c)
	}
	s.Likes = make([]*models.Like, 0, len(f.Likes))
	for i := range f.Likes {
		l := f.Likes[i].Clone()
		s.Likes = append(s.Likes, &l)
	}
	s.Moderaciones = make([]*models.Moderacion, 0, len(f.Moderaciones))
	for i := range f.Moderaciones {
		m := f.Moderaciones[i].Clone()
		s.Moderaciones = append(s.Moderaciones, &m)
	}

	s.RecountAll()
}

// UserByID returns the live user row or nil.
func (s *Store) UserByID(id string) *models.User {
	for _, u := range s.Users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// UserByEmail matches case-insensitively.
func (s *Store) UserByEmail(email string) *models.User {
	for _, u := range s.Users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

// DenunciaByID returns the live report row or nil.
func (s *Store) DenunciaByID(id string) *models.Denuncia {
	for _, d := range s.Denuncias {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// AddUser appends a new account.
func (s *Store) AddUser(u *models.User) {
	s.Users = append(s.Users, u)
}

// Recount recomputes the derived counters of one report. Unknown ids are ignored.
func (s *Store) Recount(denunciaID string) {
	d := s.DenunciaByID(denunciaID)
	if d == nil {
		return
	}
	likes, comentarios := 0, 0
	for _, l := range s.Likes {
		if l.DenunciaID == denunciaID {
			likes++
		}
	}
	for _, c := range s.Comentarios {
		if c.DenunciaID == denunciaID {
			comentarios++
		}
	}
	d.LikesCount = likes
	d.ComentariosCount = comentarios
}

// RecountAll recomputes every report's counters.
func (s *Store) RecountAll() {
	for _, d := range s.Denuncias {
		s.Recount(d.ID)
	}
}
