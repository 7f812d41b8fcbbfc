package policy

import (
	"testing"

	"denuncias/internal/models"
	"denuncias/internal/query"
	"denuncias/internal/seed"
	"denuncias/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	engine *Engine
	store  *store.Store
	user1  *models.User
	user2  *models.User
	admin  *models.User
}

func setup(t *testing.T) fixture {
	t.Helper()
	f, err := seed.Default(bcrypt.MinCost)
	require.NoError(t, err)
	s := store.New(f)
	return fixture{
		engine: NewEngine(query.NewExecutor(s)),
		store:  s,
		user1:  s.UserByID("user-1"),
		user2:  s.UserByID("user-2"),
		admin:  s.UserByID("admin-1"),
	}
}

func assertCode(t *testing.T, err error, code models.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, models.IsCode(err, code), "want %s, got %v", code, err)
}

func TestAnonymousCallerIsRejected(t *testing.T) {
	fx := setup(t)
	byID := []query.Filter{query.Eq("id", "denuncia-1")}

	assertCode(t, fx.engine.AuthorizeSelect(nil, models.TableDenuncias), models.CodeNotAuthenticated)
	assertCode(t, fx.engine.AuthorizeInsert(nil, models.TableLikes, []models.LikeDraft{{DenunciaID: "denuncia-1"}}), models.CodeNotAuthenticated)
	assertCode(t, fx.engine.AuthorizeUpdate(nil, models.TableDenuncias, byID, models.DenunciaPatch{}), models.CodeNotAuthenticated)
	assertCode(t, fx.engine.AuthorizeDelete(nil, models.TableDenuncias, byID), models.CodeNotAuthenticated)
}

func TestAuthorizeSelect(t *testing.T) {
	fx := setup(t)
	for _, table := range models.Tables {
		assert.NoError(t, fx.engine.AuthorizeSelect(fx.user1, table), table)
	}
}

func TestAuthorizeInsert(t *testing.T) {
	fx := setup(t)

	tests := []struct {
		name   string
		caller *models.User
		table  models.Table
		drafts any
		want   models.ErrorCode
	}{
		{"own report", fx.user1, models.TableDenuncias, []models.DenunciaDraft{{UserID: "user-1"}}, ""},
		{"report for someone else", fx.user1, models.TableDenuncias, []models.DenunciaDraft{{UserID: "user-2"}}, models.CodeForbidden},
		{"mixed batch", fx.user1, models.TableComentarios, []models.ComentarioDraft{{UserID: "user-1"}, {UserID: "user-2"}}, models.CodeForbidden},
		{"own like", fx.user2, models.TableLikes, []models.LikeDraft{{UserID: "user-2"}}, ""},
		{"like as admin for a user", fx.admin, models.TableLikes, []models.LikeDraft{{UserID: "user-1"}}, models.CodeForbidden},
		{"moderation by admin", fx.admin, models.TableModeraciones, []models.ModeracionDraft{{AdminID: "admin-1"}}, ""},
		{"moderation in another admin's name", fx.admin, models.TableModeraciones, []models.ModeracionDraft{{AdminID: "user-1"}}, models.CodeForbidden},
		{"moderation by user", fx.user1, models.TableModeraciones, []models.ModeracionDraft{{AdminID: "user-1"}}, models.CodeForbidden},
		{"users table", fx.admin, models.TableUsers, []models.User{{ID: "x"}}, models.CodeForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fx.engine.AuthorizeInsert(tt.caller, tt.table, tt.drafts)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assertCode(t, err, tt.want)
		})
	}
}

func TestAuthorizeUpdate(t *testing.T) {
	fx := setup(t)
	byID := func(id string) []query.Filter { return []query.Filter{query.Eq("id", id)} }
	estado := models.DenunciaPatch{Estado: models.Some(models.EstadoResuelta)}
	text := models.DenunciaPatch{Descripcion: models.Some("nuevo texto")}
	both := models.DenunciaPatch{Estado: models.Some(models.EstadoResuelta), Descripcion: models.Some("x")}

	assert.NoError(t, fx.engine.AuthorizeUpdate(fx.user1, models.TableDenuncias, byID("denuncia-1"), text))
	assert.NoError(t, fx.engine.AuthorizeUpdate(fx.user1, models.TableDenuncias, byID("denuncia-1"), estado))
	assert.NoError(t, fx.engine.AuthorizeUpdate(fx.admin, models.TableDenuncias, byID("denuncia-2"), estado))

	assertCode(t, fx.engine.AuthorizeUpdate(fx.user2, models.TableDenuncias, byID("denuncia-1"), text), models.CodeForbidden)
	assertCode(t, fx.engine.AuthorizeUpdate(fx.user2, models.TableDenuncias, byID("denuncia-1"), estado), models.CodeForbidden)
	assertCode(t, fx.engine.AuthorizeUpdate(fx.admin, models.TableDenuncias, byID("denuncia-2"), both), models.CodeForbidden)

	// Unfiltered updates must own every row.
	assertCode(t, fx.engine.AuthorizeUpdate(fx.user1, models.TableDenuncias, nil, text), models.CodeForbidden)

	for _, table := range []models.Table{models.TableComentarios, models.TableLikes, models.TableModeraciones, models.TableUsers} {
		assertCode(t, fx.engine.AuthorizeUpdate(fx.admin, table, nil, text), models.CodeForbidden)
	}
}

func TestAuthorizeDelete(t *testing.T) {
	fx := setup(t)
	byID := func(id string) []query.Filter { return []query.Filter{query.Eq("id", id)} }

	assert.NoError(t, fx.engine.AuthorizeDelete(fx.user1, models.TableDenuncias, byID("denuncia-1")))
	assert.NoError(t, fx.engine.AuthorizeDelete(fx.admin, models.TableDenuncias, byID("denuncia-1")))
	assertCode(t, fx.engine.AuthorizeDelete(fx.user2, models.TableDenuncias, byID("denuncia-1")), models.CodeForbidden)

	assert.NoError(t, fx.engine.AuthorizeDelete(fx.user2, models.TableComentarios, byID("comentario-1")))
	assertCode(t, fx.engine.AuthorizeDelete(fx.user1, models.TableComentarios, byID("comentario-1")), models.CodeForbidden)
	assertCode(t, fx.engine.AuthorizeDelete(fx.admin, models.TableComentarios, byID("comentario-1")), models.CodeForbidden)

	assert.NoError(t, fx.engine.AuthorizeDelete(fx.user2, models.TableLikes, byID("like-1")))
	assertCode(t, fx.engine.AuthorizeDelete(fx.user1, models.TableLikes, byID("like-1")), models.CodeForbidden)

	assertCode(t, fx.engine.AuthorizeDelete(fx.admin, models.TableModeraciones, nil), models.CodeForbidden)
	assertCode(t, fx.engine.AuthorizeDelete(fx.admin, models.TableUsers, byID("user-1")), models.CodeForbidden)

	// Nothing matched, nothing to own.
	assert.NoError(t, fx.engine.AuthorizeDelete(fx.user1, models.TableLikes, byID("missing")))
}

func TestUnknownColumnIsRejectedBeforeOwnership(t *testing.T) {
	fx := setup(t)
	err := fx.engine.AuthorizeDelete(fx.user1, models.TableLikes, []query.Filter{query.Eq("nope", 1)})
	assertCode(t, err, models.CodeInvalidRequest)
}
