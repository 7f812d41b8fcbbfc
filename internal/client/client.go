// Package client is the application-side data-access client. It mirrors a
// hosted backend's SDK: a fluent query builder per table, password auth with
// state-change listeners, and a cache resync after every state change.
package client

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"denuncias/internal/cache"
	"denuncias/internal/dispatch"
	"denuncias/internal/models"
	"denuncias/internal/observability"
)

// AuthEvent is delivered to auth state listeners.
type AuthEvent string

const (
	SignedIn  AuthEvent = "SIGNED_IN"
	SignedOut AuthEvent = "SIGNED_OUT"
)

// AuthListener observes sign-in and sign-out. session is nil after sign-out.
type AuthListener func(event AuthEvent, session *models.SessionView)

// Client holds the current session and talks to a dispatcher.
type Client struct {
	dispatcher *dispatch.Dispatcher
	observer   cache.Observer

	mu        sync.Mutex
	session   *models.SessionView
	user      *models.User
	listeners map[int]AuthListener
	nextID    int
}

// Option configures a Client.
type Option func(*Client)

// WithObserver sets where derived views are republished after state changes.
func WithObserver(obs cache.Observer) Option {
	return func(c *Client) { c.observer = obs }
}

// New returns a signed-out client.
func New(d *dispatch.Dispatcher, opts ...Option) *Client {
	c := &Client{
		dispatcher: d,
		listeners:  make(map[int]AuthListener),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// From starts a query against table.
func (c *Client) From(table models.Table) *Builder {
	return &Builder{client: c, table: table}
}

// SignInWithPassword opens a session and makes it current.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) dispatch.Response {
	resp := c.dispatcher.SignIn(ctx, email, password)
	c.adopt(ctx, resp)
	return resp
}

// SignUp registers an account and signs it in.
func (c *Client) SignUp(ctx context.Context, email, password string) dispatch.Response {
	resp := c.dispatcher.SignUp(ctx, email, password)
	c.adopt(ctx, resp)
	return resp
}

func (c *Client) adopt(ctx context.Context, resp dispatch.Response) {
	payload, ok := resp.Data.(*models.AuthPayload)
	if !resp.OK() || !ok {
		return
	}
	c.mu.Lock()
	c.session = payload.Session
	c.user = payload.User
	c.mu.Unlock()

	c.notify(SignedIn, payload.Session)
	c.resync(ctx)
}

// SignOut revokes the current session. Signing out while signed out is a no-op.
func (c *Client) SignOut(ctx context.Context) dispatch.Response {
	c.mu.Lock()
	current := c.session
	c.session, c.user = nil, nil
	c.mu.Unlock()

	if current == nil {
		return dispatch.Response{Status: http.StatusOK}
	}
	resp := c.dispatcher.SignOut(ctx, current.AccessToken)
	c.notify(SignedOut, nil)
	c.resync(ctx)
	return resp
}

// Session returns the current session, or nil when signed out.
func (c *Client) Session() *models.SessionView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// User returns the signed-in user, or nil.
func (c *Client) User() *models.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

func (c *Client) token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ""
	}
	return c.session.AccessToken
}

func (c *Client) userID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return ""
	}
	return c.user.ID
}

// OnAuthStateChange registers fn and returns a function that removes it.
func (c *Client) OnAuthStateChange(fn AuthListener) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *Client) notify(event AuthEvent, session *models.SessionView) {
	c.mu.Lock()
	listeners := make([]AuthListener, 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(event, session)
	}
}

// resync republishes derived views. Failures are logged, never surfaced: the
// operation that triggered them already succeeded.
func (c *Client) resync(ctx context.Context) {
	if c.observer == nil {
		return
	}
	views, err := c.dispatcher.Views(ctx, c.userID())
	if err != nil {
		observability.GlobalLogger.WarnContext(ctx, "cache resync failed", slog.String("error", err.Error()))
		return
	}
	if err := c.observer.Publish(ctx, views); err != nil {
		observability.GlobalLogger.WarnContext(ctx, "cache resync failed", slog.String("error", err.Error()))
	}
}

// Moderate records an admin decision on a report and moves the report to the
// estado the decision maps to.
func (c *Client) Moderate(ctx context.Context, denunciaID string, accion models.Accion, comentario *string) dispatch.Response {
	estado, ok := models.EstadoForAccion(accion)
	if !ok {
		return invalid("invalid accion %q", accion)
	}
	resp := c.From(models.TableDenuncias).
		Update(map[string]any{"estado": estado}).
		Eq("id", denunciaID).
		Execute(ctx)
	if !resp.OK() {
		return resp
	}
	return c.From(models.TableModeraciones).
		Insert(models.ModeracionDraft{DenunciaID: denunciaID, Accion: accion, Comentario: comentario}).
		Execute(ctx)
}
