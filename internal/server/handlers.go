package server

import (
	"context"
	"log/slog"
	"strings"

	"denuncias/internal/cache"
	"denuncias/internal/dispatch"
	"denuncias/internal/middleware"
	"denuncias/internal/models"
	"denuncias/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// Credentials is the body of the sign-in and sign-up routes.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func respond(c *fiber.Ctx, resp dispatch.Response) error {
	return c.Status(resp.Status).JSON(resp)
}

func respondError(c *fiber.Ctx, err error) error {
	appErr := models.AsAppError(err)
	return c.Status(appErr.Status()).JSON(dispatch.Response{Error: appErr.Body()})
}

// Dispatch runs one engine request for the bearer of the Authorization header.
// @Summary Run an engine request
// @Description Executes a select, insert, update, delete or count against one table under the caller's permissions
// @Tags engine
// @Accept json
// @Produce json
// @Param request body dispatch.Request true "Engine request"
// @Success 200 {object} dispatch.Response
// @Failure 400 {object} dispatch.Response
// @Failure 401 {object} dispatch.Response
// @Failure 403 {object} dispatch.Response
// @Security BearerAuth
// @Router /__backend__/rpc [post]
func (s *Server) Dispatch(c *fiber.Ctx) error {
	req, err := dispatch.DecodeRequest(c.Body())
	if err != nil {
		return respondError(c, err)
	}

	ctx := c.UserContext()
	token := middleware.Token(c)
	resp := s.dispatcher.Dispatch(ctx, token, req)
	if resp.OK() && req.Operation != dispatch.OpSelect {
		s.resync(ctx, token)
	}
	return respond(c, resp)
}

// SignIn opens a session for valid credentials.
// @Summary Sign in
// @Description Authenticate with email and password and open a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Sign-in credentials"
// @Success 200 {object} object{data=models.AuthPayload,error=object}
// @Failure 400 {object} dispatch.Response
// @Router /__backend__/auth/sign-in [post]
func (s *Server) SignIn(c *fiber.Ctx) error {
	var body Credentials
	if err := c.BodyParser(&body); err != nil {
		return respondError(c, models.NewInvalidRequestError("invalid request body"))
	}
	resp := s.dispatcher.SignIn(c.UserContext(), body.Email, body.Password)
	s.resyncAuth(c.UserContext(), resp)
	return respond(c, resp)
}

// SignUp registers an account and signs it in.
// @Summary Sign up
// @Description Register a new account with the user role and open a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Sign-up credentials"
// @Success 200 {object} object{data=models.AuthPayload,error=object}
// @Failure 400 {object} dispatch.Response
// @Router /__backend__/auth/sign-up [post]
func (s *Server) SignUp(c *fiber.Ctx) error {
	var body Credentials
	if err := c.BodyParser(&body); err != nil {
		return respondError(c, models.NewInvalidRequestError("invalid request body"))
	}
	resp := s.dispatcher.SignUp(c.UserContext(), body.Email, body.Password)
	s.resyncAuth(c.UserContext(), resp)
	return respond(c, resp)
}

// SignOut revokes the bearer's session. It succeeds for anonymous callers too.
// @Summary Sign out
// @Tags auth
// @Produce json
// @Success 200 {object} dispatch.Response
// @Security BearerAuth
// @Router /__backend__/auth/sign-out [post]
func (s *Server) SignOut(c *fiber.Ctx) error {
	return respond(c, s.dispatcher.SignOut(c.UserContext(), middleware.Token(c)))
}

// Reset restores the seed and drops all sessions. Disabled in production.
// @Summary Reset engine state
// @Tags testing
// @Produce json
// @Success 200 {object} dispatch.Response
// @Failure 404 {object} dispatch.Response
// @Router /__backend__/testing/reset [post]
func (s *Server) Reset(c *fiber.Ctx) error {
	if s.config.IsProduction() {
		return fiber.ErrNotFound
	}
	s.dispatcher.Reset(c.UserContext())
	s.views.Clear()
	s.resync(c.UserContext(), "")
	return c.Status(fiber.StatusOK).JSON(dispatch.Response{})
}

// CachedView returns the last published value of a derived view, e.g.
// "denuncias:list" or "comentarios:byDenuncia:denuncia-1".
// @Summary Read a cached view
// @Tags engine
// @Produce json
// @Param key path string true "View key"
// @Success 200 {object} dispatch.Response
// @Failure 404 {object} dispatch.Response
// @Router /__backend__/cache/{key} [get]
func (s *Server) CachedView(c *fiber.Ctx) error {
	key := cache.Key(strings.Split(c.Params("key"), ":"))
	value, ok := s.views.Get(key)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "view not cached")
	}
	return c.Status(fiber.StatusOK).JSON(dispatch.Response{Data: value})
}

func (s *Server) resyncAuth(ctx context.Context, resp dispatch.Response) {
	payload, ok := resp.Data.(*models.AuthPayload)
	if !resp.OK() || !ok {
		return
	}
	s.resync(ctx, payload.Session.AccessToken)
}

// resync republishes the derived views. Failures are logged only.
func (s *Server) resync(ctx context.Context, token string) {
	var userID string
	if u := s.dispatcher.CurrentUser(token); u != nil {
		userID = u.ID
	}
	views, err := s.dispatcher.Views(ctx, userID)
	if err == nil {
		err = s.observer.Publish(ctx, views)
	}
	if err != nil {
		observability.GlobalLogger.WarnContext(ctx, "cache resync failed", slog.String("error", err.Error()))
	}
}
