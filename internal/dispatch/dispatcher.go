// Package dispatch is the single entry point into the engine. It resolves the
// caller, decodes values, consults the policy and runs the executor, turning
// every outcome into a response envelope.
package dispatch

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"denuncias/internal/cache"
	"denuncias/internal/models"
	"denuncias/internal/observability"
	"denuncias/internal/policy"
	"denuncias/internal/query"
	"denuncias/internal/session"
	"denuncias/internal/store"

	"go.opentelemetry.io/otel/attribute"
)

// Dispatcher serialises every operation in submission order.
type Dispatcher struct {
	mu       sync.Mutex
	store    *store.Store
	executor *query.Executor
	sessions *session.Manager
	policy   *policy.Engine
}

// Deps are the collaborators a Dispatcher coordinates.
type Deps struct {
	Store    *store.Store
	Executor *query.Executor
	Sessions *session.Manager
}

// New wires a dispatcher. The executor also serves as the policy's target finder.
func New(deps Deps) *Dispatcher {
	return &Dispatcher{
		store:    deps.Store,
		executor: deps.Executor,
		sessions: deps.Sessions,
		policy:   policy.NewEngine(deps.Executor),
	}
}

// Dispatch runs req on behalf of the bearer of token. An empty token is anonymous.
func (d *Dispatcher) Dispatch(ctx context.Context, token string, req Request) Response {
	d.mu.Lock()
	defer d.mu.Unlock()

	op, table := string(req.Operation), string(req.Table)
	defer observability.TrackDispatch(op, table)()
	span, ctx := observability.NewSpan(ctx, "dispatch."+op,
		attribute.String("dispatch.operation", op),
		attribute.String("dispatch.table", table),
	)
	defer span.End()
	if tid := span.TraceID(); tid != "" {
		ctx = observability.WithTraceID(ctx, tid)
	}

	res, err := d.dispatch(ctx, span, token, req)
	if err != nil {
		span.SetError(err)
		appErr := models.AsAppError(err)
		observability.RecordDispatch(op, table, string(appErr.Code))
		level := slog.LevelInfo
		if appErr.Code == models.CodeInternal {
			level = slog.LevelError
		}
		observability.GlobalLogger.Log(ctx, level, "request rejected",
			slog.String("operation", op),
			slog.String("table", table),
			slog.String("code", string(appErr.Code)),
			slog.String("error", err.Error()),
		)
		return failure(appErr)
	}
	observability.RecordDispatch(op, table, "")
	return success(res)
}

func (d *Dispatcher) dispatch(ctx context.Context, span *observability.Span, token string, req Request) (query.Result, error) {
	if !req.Operation.valid() {
		return query.Result{}, models.NewUnknownOperationError()
	}
	caller := d.sessions.Resolve(token)
	if caller == nil {
		return query.Result{}, models.NewNotAuthenticatedError()
	}
	ctx = observability.WithUserID(ctx, caller.ID)
	span.AddAttributes(attribute.String("user.id", caller.ID), attribute.String("user.role", string(caller.Role)))

	switch req.Operation {
	case OpSelect:
		if err := d.policy.AuthorizeSelect(caller, req.Table); err != nil {
			return query.Result{}, err
		}
		return d.executor.Select(ctx, query.SelectQuery{
			Table:       req.Table,
			Filters:     req.Filters,
			Order:       req.Order,
			Columns:     req.Columns,
			Single:      req.Single,
			MaybeSingle: req.MaybeSingle,
			Count:       req.Options.Count,
		})

	case OpInsert:
		drafts, err := decodeInsert(req.Table, req.Values)
		if err != nil {
			return query.Result{}, err
		}
		if mods, ok := drafts.([]models.ModeracionDraft); ok {
			for i := range mods {
				if mods[i].AdminID == "" {
					mods[i].AdminID = caller.ID
				}
			}
		}
		if err := d.policy.AuthorizeInsert(caller, req.Table, drafts); err != nil {
			return query.Result{}, err
		}
		return d.executor.Insert(ctx, req.Table, drafts)

	case OpUpdate:
		patch, err := decodePatch(req.Table, req.Values)
		if err != nil {
			return query.Result{}, err
		}
		if err := query.ValidateFilters(req.Table, req.Filters, nil); err != nil {
			return query.Result{}, err
		}
		if err := d.policy.AuthorizeUpdate(caller, req.Table, req.Filters, patch); err != nil {
			return query.Result{}, err
		}
		return d.executor.Update(ctx, query.UpdateQuery{Table: req.Table, Filters: req.Filters, Patch: patch})

	case OpDelete:
		if !req.Table.Valid() {
			return query.Result{}, models.NewInvalidRequestError("unknown table %q", req.Table)
		}
		if err := query.ValidateFilters(req.Table, req.Filters, nil); err != nil {
			return query.Result{}, err
		}
		if err := d.policy.AuthorizeDelete(caller, req.Table, req.Filters); err != nil {
			return query.Result{}, err
		}
		return d.executor.Delete(ctx, query.DeleteQuery{Table: req.Table, Filters: req.Filters})
	}
	return query.Result{}, models.NewUnknownOperationError()
}

// SignUp registers an account and opens a session.
func (d *Dispatcher) SignUp(ctx context.Context, email, password string) Response {
	d.mu.Lock()
	defer d.mu.Unlock()
	payload, err := d.sessions.SignUp(ctx, email, password)
	return authResponse("sign_up", payload, err)
}

// SignIn opens a session for valid credentials.
func (d *Dispatcher) SignIn(ctx context.Context, email, password string) Response {
	d.mu.Lock()
	defer d.mu.Unlock()
	payload, err := d.sessions.SignIn(ctx, email, password)
	return authResponse("sign_in", payload, err)
}

// SignOut revokes token. It always succeeds.
func (d *Dispatcher) SignOut(ctx context.Context, token string) Response {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sessions.SignOut(ctx, token)
	observability.RecordAuthEvent("sign_out", "")
	return Response{Status: http.StatusOK}
}

func authResponse(event string, payload *models.AuthPayload, err error) Response {
	if err != nil {
		observability.RecordAuthEvent(event, string(models.AsAppError(err).Code))
		return failure(err)
	}
	observability.RecordAuthEvent(event, "")
	return Response{Data: payload, Status: http.StatusOK}
}

// CurrentUser returns a copy of the user behind token, or nil.
func (d *Dispatcher) CurrentUser(token string) *models.User {
	d.mu.Lock()
	defer d.mu.Unlock()
	u := d.sessions.Resolve(token)
	if u == nil {
		return nil
	}
	c := u.Clone()
	return &c
}

// Reset restores the seed and drops every session.
func (d *Dispatcher) Reset(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.store.Reset()
	d.sessions.Reset()
	observability.GlobalLogger.InfoContext(ctx, "engine reset", slog.Time("at", time.Now().UTC()))
}

// Views snapshots the derived read views. userID selects the per-caller
// views and may be empty.
func (d *Dispatcher) Views(ctx context.Context, userID string) (cache.Views, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	list, err := d.executor.Select(ctx, query.SelectQuery{Table: models.TableDenuncias})
	if err != nil {
		return cache.Views{}, err
	}
	comentarios, err := d.executor.Select(ctx, query.SelectQuery{Table: models.TableComentarios, Columns: "*, users(name)"})
	if err != nil {
		return cache.Views{}, err
	}
	likes, err := d.executor.Select(ctx, query.SelectQuery{Table: models.TableLikes})
	if err != nil {
		return cache.Views{}, err
	}

	v := cache.Views{
		List:        list.Data.([]models.Denuncia),
		Comentarios: make(map[string][]models.ComentarioWithAuthor),
		Likes:       make(map[string][]models.Like),
		UserID:      userID,
	}
	for _, c := range comentarios.Data.([]models.ComentarioWithAuthor) {
		v.Comentarios[c.DenunciaID] = append(v.Comentarios[c.DenunciaID], c)
	}
	for _, l := range likes.Data.([]models.Like) {
		v.Likes[l.DenunciaID] = append(v.Likes[l.DenunciaID], l)
		if userID != "" && l.UserID == userID {
			v.ByUser = append(v.ByUser, l)
		}
	}
	return v, nil
}
