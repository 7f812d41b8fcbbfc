package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"denuncias/internal/models"
	"denuncias/internal/observability"
	"denuncias/internal/query"
	"denuncias/internal/seed"
	"denuncias/internal/session"
	"denuncias/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"golang.org/x/crypto/bcrypt"
)

type harness struct {
	d     *Dispatcher
	store *store.Store
}

func newHarness(t *testing.T) harness {
	t.Helper()
	f, err := seed.Default(bcrypt.MinCost)
	require.NoError(t, err)
	s := store.New(f)
	d := New(Deps{
		Store:    s,
		Executor: query.NewExecutor(s),
		Sessions: session.NewManager(s, "test-secret", session.WithBcryptCost(bcrypt.MinCost)),
	})
	return harness{d: d, store: s}
}

func (h harness) signIn(t *testing.T, email string) string {
	t.Helper()
	resp := h.d.SignIn(context.Background(), email, "password")
	require.True(t, resp.OK(), "sign in %s: %+v", email, resp.Error)
	return resp.Data.(*models.AuthPayload).Session.AccessToken
}

func values(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func byID(id string) []query.Filter {
	return []query.Filter{query.Eq("id", id)}
}

func assertError(t *testing.T, resp Response, code models.ErrorCode, status int) {
	t.Helper()
	require.NotNil(t, resp.Error, "expected %s", code)
	assert.Equal(t, code, resp.Error.Code)
	assert.Equal(t, status, resp.Status)
	assert.Nil(t, resp.Data)
}

func (h harness) report(t *testing.T, token, id string) models.Denuncia {
	t.Helper()
	resp := h.d.Dispatch(context.Background(), token, Request{
		Operation: OpSelect, Table: models.TableDenuncias, Filters: byID(id), Single: true,
	})
	require.True(t, resp.OK(), "%+v", resp.Error)
	return resp.Data.(models.Denuncia)
}

func TestScenario_SignInResolvesSeedUsers(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	resp := h.d.SignIn(ctx, "user@example.com", "password")
	require.True(t, resp.OK())
	payload := resp.Data.(*models.AuthPayload)
	assert.Equal(t, "user-1", payload.User.ID)
	assert.Equal(t, "user-1", h.d.CurrentUser(payload.Session.AccessToken).ID)

	admin := h.signIn(t, "admin@example.com")
	assert.True(t, h.d.CurrentUser(admin).IsAdmin())

	bad := h.d.SignIn(ctx, "user@example.com", "wrong")
	assertError(t, bad, models.CodeInvalidCredentials, http.StatusBadRequest)
	assert.Equal(t, "Invalid login credentials", bad.Error.Message)
}

func TestScenario_LikeCounters(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	token := h.signIn(t, "user@example.com")

	assert.Equal(t, 1, h.report(t, token, "denuncia-1").LikesCount)

	resp := h.d.Dispatch(ctx, token, Request{
		Operation: OpInsert,
		Table:     models.TableLikes,
		Values:    values(t, map[string]string{"denuncia_id": "denuncia-1", "user_id": "user-1"}),
	})
	require.True(t, resp.OK(), "%+v", resp.Error)
	like := resp.Data.([]models.Like)[0]
	assert.Equal(t, 2, h.report(t, token, "denuncia-1").LikesCount)

	resp = h.d.Dispatch(ctx, token, Request{Operation: OpDelete, Table: models.TableLikes, Filters: byID(like.ID)})
	require.True(t, resp.OK(), "%+v", resp.Error)
	assert.Equal(t, 1, h.report(t, token, "denuncia-1").LikesCount)
}

func TestScenario_NonOwnerDeleteIsForbidden(t *testing.T) {
	h := newHarness(t)
	token := h.signIn(t, "user@example.com")

	resp := h.d.Dispatch(context.Background(), token, Request{
		Operation: OpDelete, Table: models.TableDenuncias, Filters: byID("denuncia-2"),
	})
	assertError(t, resp, models.CodeForbidden, http.StatusForbidden)
	assert.Equal(t, "Operation not permitted", resp.Error.Message)
	assert.NotNil(t, h.store.DenunciaByID("denuncia-2"))
}

func TestScenario_AdminModeration(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.signIn(t, "admin@example.com")

	resp := h.d.Dispatch(ctx, admin, Request{
		Operation: OpUpdate,
		Table:     models.TableDenuncias,
		Filters:   byID("denuncia-2"),
		Values:    values(t, map[string]string{"estado": "resuelta"}),
	})
	require.True(t, resp.OK(), "%+v", resp.Error)

	resp = h.d.Dispatch(ctx, admin, Request{
		Operation: OpInsert,
		Table:     models.TableModeraciones,
		Values:    values(t, map[string]string{"denuncia_id": "denuncia-2", "accion": "Resuelta"}),
	})
	require.True(t, resp.OK(), "%+v", resp.Error)
	assert.Equal(t, "admin-1", resp.Data.([]models.Moderacion)[0].AdminID)

	assert.Equal(t, models.EstadoResuelta, h.report(t, admin, "denuncia-2").Estado)

	resp = h.d.Dispatch(ctx, admin, Request{
		Operation: OpSelect,
		Table:     models.TableModeraciones,
		Filters:   []query.Filter{query.Eq("denuncia_id", "denuncia-2")},
	})
	require.True(t, resp.OK())
	assert.Len(t, resp.Data, 1)
}

func TestScenario_InFilterWithStableOrder(t *testing.T) {
	h := newHarness(t)
	token := h.signIn(t, "maria@example.com")

	resp := h.d.Dispatch(context.Background(), token, Request{
		Operation: OpSelect,
		Table:     models.TableDenuncias,
		Filters:   []query.Filter{query.In("estado", "activa", "en revisión")},
		Order:     &query.Order{Column: "created_at", Ascending: false},
	})
	require.True(t, resp.OK())
	rows := resp.Data.([]models.Denuncia)
	require.Len(t, rows, 2)
	assert.Equal(t, "denuncia-1", rows[0].ID)
	assert.Equal(t, "denuncia-2", rows[1].ID)
}

func TestScenario_SingleBecomesMultiple(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	token := h.signIn(t, "user@example.com")
	sel := Request{
		Operation: OpSelect,
		Table:     models.TableComentarios,
		Filters:   []query.Filter{query.Eq("denuncia_id", "denuncia-1")},
		Single:    true,
	}

	resp := h.d.Dispatch(ctx, token, sel)
	require.True(t, resp.OK())
	assert.Equal(t, "comentario-1", resp.Data.(models.Comentario).ID)

	resp = h.d.Dispatch(ctx, token, Request{
		Operation: OpInsert,
		Table:     models.TableComentarios,
		Values:    values(t, []map[string]string{{"denuncia_id": "denuncia-1", "user_id": "user-1", "contenido": "Yo también"}}),
	})
	require.True(t, resp.OK(), "%+v", resp.Error)

	resp = h.d.Dispatch(ctx, token, sel)
	assertError(t, resp, models.CodeMultipleRows, http.StatusOK)
}

func TestCheckOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.signIn(t, "user@example.com")

	t.Run("unknown operation beats missing session", func(t *testing.T) {
		resp := h.d.Dispatch(ctx, "", Request{Operation: "upsert", Table: models.TableLikes})
		assertError(t, resp, models.CodeUnknownOperation, http.StatusBadRequest)
	})

	t.Run("missing session beats bad values", func(t *testing.T) {
		resp := h.d.Dispatch(ctx, "", Request{Operation: OpInsert, Table: models.TableLikes, Values: json.RawMessage(`{"nope":1}`)})
		assertError(t, resp, models.CodeNotAuthenticated, http.StatusUnauthorized)
		assert.Equal(t, "Auth session missing", resp.Error.Message)
	})

	t.Run("bad values beat policy", func(t *testing.T) {
		resp := h.d.Dispatch(ctx, user, Request{
			Operation: OpInsert, Table: models.TableDenuncias,
			Values: json.RawMessage(`{"user_id":"user-2","likes_count":5}`),
		})
		assertError(t, resp, models.CodeInvalidRequest, http.StatusBadRequest)
	})

	t.Run("revoked token is anonymous", func(t *testing.T) {
		token := h.signIn(t, "maria@example.com")
		h.d.SignOut(ctx, token)
		resp := h.d.Dispatch(ctx, token, Request{Operation: OpSelect, Table: models.TableDenuncias})
		assertError(t, resp, models.CodeNotAuthenticated, http.StatusUnauthorized)
	})
}

func TestRejectedRequestsLeaveStateUnchanged(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	maria := h.signIn(t, "maria@example.com")

	before := h.report(t, maria, "denuncia-1")
	reqs := []Request{
		{Operation: OpUpdate, Table: models.TableDenuncias, Filters: byID("denuncia-1"), Values: values(t, map[string]string{"descripcion": "hackeada"})},
		{Operation: OpUpdate, Table: models.TableDenuncias, Filters: byID("denuncia-1"), Values: values(t, map[string]string{"estado": "resuelta"})},
		{Operation: OpDelete, Table: models.TableDenuncias, Filters: byID("denuncia-1")},
		{Operation: OpDelete, Table: models.TableComentarios, Filters: byID("comentario-2")},
		{Operation: OpUpdate, Table: models.TableComentarios, Filters: byID("comentario-1"), Values: values(t, map[string]string{"contenido": "x"})},
		{Operation: OpInsert, Table: models.TableModeraciones, Values: values(t, map[string]string{"denuncia_id": "denuncia-1", "accion": "Resuelta"})},
		{Operation: OpInsert, Table: models.TableUsers, Values: values(t, map[string]string{"email": "x@example.com"})},
	}
	for _, req := range reqs {
		resp := h.d.Dispatch(ctx, maria, req)
		assertError(t, resp, models.CodeForbidden, http.StatusForbidden)
	}

	assert.Equal(t, before, h.report(t, maria, "denuncia-1"))
	assert.Len(t, h.store.Comentarios, 2)
	assert.Empty(t, h.store.Moderaciones)
}

func TestUpdateRejectsNullForRequiredColumns(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	token := h.signIn(t, "user@example.com")

	before := h.report(t, token, "denuncia-1")
	for _, body := range []string{
		`{"descripcion":"x","updated_at":null}`,
		`{"estado":null}`,
		`{"nombre_asociado":null}`,
	} {
		resp := h.d.Dispatch(ctx, token, Request{
			Operation: OpUpdate, Table: models.TableDenuncias, Filters: byID("denuncia-1"),
			Values: json.RawMessage(body),
		})
		assertError(t, resp, models.CodeInvalidRequest, http.StatusBadRequest)
	}
	after := h.report(t, token, "denuncia-1")
	assert.Equal(t, before, after)
	assert.Equal(t, time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC), after.UpdatedAt.UTC())

	resp := h.d.Dispatch(ctx, token, Request{
		Operation: OpUpdate, Table: models.TableDenuncias, Filters: byID("denuncia-1"),
		Values: json.RawMessage(`{"mail_asociado":null}`),
	})
	require.True(t, resp.OK())
	assert.Nil(t, h.report(t, token, "denuncia-1").MailAsociado)
}

func TestAdminEstadoOnlyException(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.signIn(t, "admin@example.com")

	resp := h.d.Dispatch(ctx, admin, Request{
		Operation: OpUpdate, Table: models.TableDenuncias, Filters: byID("denuncia-1"),
		Values: values(t, map[string]string{"estado": "en revisión", "descripcion": "editada"}),
	})
	assertError(t, resp, models.CodeForbidden, http.StatusForbidden)

	resp = h.d.Dispatch(ctx, admin, Request{
		Operation: OpDelete, Table: models.TableDenuncias, Filters: byID("denuncia-1"),
	})
	require.True(t, resp.OK())
	assert.Nil(t, h.store.DenunciaByID("denuncia-1"))
}

func TestInsertThenSelectSingle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	token := h.signIn(t, "user@example.com")

	resp := h.d.Dispatch(ctx, token, Request{
		Operation: OpInsert,
		Table:     models.TableDenuncias,
		Values: values(t, map[string]any{
			"user_id":         "user-1",
			"nombre_asociado": "Tienda ABC",
			"mail_asociado":   "abc@example.com",
			"descripcion":     "Producto defectuoso.",
		}),
	})
	require.True(t, resp.OK(), "%+v", resp.Error)
	created := resp.Data.([]models.Denuncia)[0]

	got := h.report(t, token, created.ID)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "Tienda ABC", got.NombreAsociado)
	assert.Equal(t, "abc@example.com", *got.MailAsociado)
	assert.Equal(t, models.EstadoActiva, got.Estado)
	assert.False(t, got.CreatedAt.IsZero())
	assert.Equal(t, got.CreatedAt, got.UpdatedAt)
	assert.Zero(t, got.LikesCount)
	assert.Zero(t, got.ComentariosCount)
}

func TestSelectCountAndEnrichment(t *testing.T) {
	h := newHarness(t)
	token := h.signIn(t, "user@example.com")

	resp := h.d.Dispatch(context.Background(), token, Request{
		Operation: OpSelect,
		Table:     models.TableComentarios,
		Columns:   "*, users(name)",
		Options:   Options{Count: query.CountExact},
	})
	require.True(t, resp.OK())
	require.NotNil(t, resp.Count)
	assert.Equal(t, 2, *resp.Count)
	rows := resp.Data.([]models.ComentarioWithAuthor)
	assert.Equal(t, "María", rows[0].Users.Name)
	assert.Equal(t, "Usuario Uno", rows[1].Users.Name)
}

func TestSignUpThroughDispatcher(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	resp := h.d.SignUp(ctx, "nueva@example.com", "secreto")
	require.True(t, resp.OK())
	token := resp.Data.(*models.AuthPayload).Session.AccessToken

	resp = h.d.Dispatch(ctx, token, Request{Operation: OpSelect, Table: models.TableUsers, Filters: []query.Filter{query.Eq("email", "nueva@example.com")}, Single: true})
	require.True(t, resp.OK())
	assert.Equal(t, "nueva", resp.Data.(models.User).Name)

	resp = h.d.SignUp(ctx, "nueva@example.com", "secreto")
	assertError(t, resp, models.CodeAlreadyRegistered, http.StatusBadRequest)
}

func TestReset(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	token := h.signIn(t, "user@example.com")

	resp := h.d.Dispatch(ctx, token, Request{Operation: OpDelete, Table: models.TableDenuncias, Filters: byID("denuncia-1")})
	require.True(t, resp.OK())

	h.d.Reset(ctx)
	h.d.Reset(ctx)

	assert.Nil(t, h.d.CurrentUser(token))
	fresh := h.signIn(t, "user@example.com")
	d := h.report(t, fresh, "denuncia-1")
	assert.Equal(t, 1, d.LikesCount)
	assert.Equal(t, 1, d.ComentariosCount)
}

func TestViews(t *testing.T) {
	h := newHarness(t)
	views, err := h.d.Views(context.Background(), "user-2")
	require.NoError(t, err)

	assert.Len(t, views.List, 2)
	require.Len(t, views.Comentarios["denuncia-1"], 1)
	assert.Equal(t, "María", views.Comentarios["denuncia-1"][0].Users.Name)
	assert.Len(t, views.Likes["denuncia-1"], 1)
	assert.Empty(t, views.Likes["denuncia-2"])
	assert.Len(t, views.ByUser, 1)

	anon, err := h.d.Views(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, anon.ByUser)
}

func TestResponseJSON(t *testing.T) {
	ok, err := json.Marshal(Response{Data: []int{1}, Status: http.StatusOK})
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[1],"error":null}`, string(ok))

	failed, err := json.Marshal(failure(models.NewForbiddenError()))
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":null,"error":{"message":"Operation not permitted","code":"FORBIDDEN"}}`, string(failed))
}

func TestDispatchSpanCarriesCaller(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := observability.Tracer
	observability.Tracer = tp.Tracer("test")
	t.Cleanup(func() { observability.Tracer = prev })

	h := newHarness(t)
	token := h.signIn(t, "user@example.com")
	resp := h.d.Dispatch(context.Background(), token, Request{Operation: OpSelect, Table: models.TableLikes})
	require.True(t, resp.OK())

	ended := rec.Ended()
	require.NotEmpty(t, ended)
	last := ended[len(ended)-1]
	assert.Equal(t, "dispatch.select", last.Name())
	assert.Contains(t, last.Attributes(), attribute.String("user.id", "user-1"))
	assert.Contains(t, last.Attributes(), attribute.String("dispatch.table", "likes"))
}
