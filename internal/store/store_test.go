package store

import (
	"testing"

	"denuncias/internal/seed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	f, err := seed.Default(bcrypt.MinCost)
	require.NoError(t, err)
	return New(f)
}

func TestNew_SeedCounters(t *testing.T) {
	s := newTestStore(t)

	d1 := s.DenunciaByID("denuncia-1")
	require.NotNil(t, d1)
	assert.Equal(t, 1, d1.LikesCount)
	assert.Equal(t, 1, d1.ComentariosCount)

	d2 := s.DenunciaByID("denuncia-2")
	require.NotNil(t, d2)
	assert.Equal(t, 0, d2.LikesCount)
	assert.Equal(t, 1, d2.ComentariosCount)
}

func TestReset_Idempotent(t *testing.T) {
	s := newTestStore(t)

	s.Denuncias[0].Descripcion = "changed"
	s.Likes = nil
	s.Recount("denuncia-1")

	s.Reset()
	once := snapshot(s)
	s.Reset()
	twice := snapshot(s)

	assert.Equal(t, once, twice)
	assert.Equal(t, "Incumplimiento de contrato en la entrega de servicios.", s.Denuncias[0].Descripcion)
	assert.Equal(t, 1, s.Denuncias[0].LikesCount)
}

func TestReset_DoesNotShareRowsWithFixture(t *testing.T) {
	s := newTestStore(t)
	*s.Denuncias[0].MailAsociado = "mutated@example.com"

	s.Reset()
	assert.Equal(t, "contacto@xyz.com", *s.Denuncias[0].MailAsociado)
}

func TestIndependentInstances(t *testing.T) {
	a := newTestStore(t)
	b := newTestStore(t)

	a.Denuncias = a.Denuncias[:1]
	assert.Len(t, b.Denuncias, 2)
}

func TestUserByEmail_CaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	u := s.UserByEmail("ADMIN@example.com")
	require.NotNil(t, u)
	assert.Equal(t, "admin-1", u.ID)
	assert.Nil(t, s.UserByEmail("nobody@example.com"))
}

type image struct {
	users, denuncias, comentarios, likes, moderaciones []any
}

func snapshot(s *Store) image {
	var img image
	for _, u := range s.Users {
		img.users = append(img.users, u.Clone())
	}
	for _, d := range s.Denuncias {
		img.denuncias = append(img.denuncias, d.Clone())
	}
	for _, c := range s.Comentarios {
		img.comentarios = append(img.comentarios, c.Clone())
	}
	for _, l := range s.Likes {
		img.likes = append(img.likes, l.Clone())
	}
	for _, m := range s.Moderaciones {
		img.moderaciones = append(img.moderaciones, m.Clone())
	}
	return img
}
