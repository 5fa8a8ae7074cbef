// Package server receives trigger events over HTTP and hands them to a
// mirror.Handler.
package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/shadowsync/internal/mirror"
)

var (
	errMissingAuthorization = errors.New("missing authorization header")
	errBadAuthorization     = errors.New("bad auth header")
)

const bearerPrefix = "Bearer "

// Server is the trigger receiver.
type Server struct {
	e *echo.Echo
}

// New builds a Server dispatching to h. A non-empty token is required as a
// bearer token on every route except /healthz.
func New(h *mirror.Handler, token string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	Register(e, h, token)
	return &Server{e: e}
}

// Register wires the routes onto e.
func Register(e *echo.Echo, h *mirror.Handler, token string) {
	e.GET("/healthz", healthz)

	v1 := e.Group("/v1")
	if token != "" {
		v1.Use(requireToken(token))
	}
	v1.POST("/events/edit", postEdit(h))
	v1.POST("/events/form-submit", postFormSubmit(h))
	v1.POST("/backfill", postBackfill(h))
	v1.GET("/sheets", getSheets(h.Workbook()))
	v1.GET("/sheets/:name/rows", getRows(h.Workbook()))
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler { return s.e }

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	log.WithField("addr", addr).Info("Trigger receiver listening")
	err := s.e.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

func requireToken(token string) echo.MiddlewareFunc {
	want := []byte(token)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			got, err := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return c.String(http.StatusUnauthorized, err.Error())
			}
			if subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				return c.String(http.StatusUnauthorized, "invalid token")
			}
			return next(c)
		}
	}
}

func bearerToken(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errMissingAuthorization
	}
	if !strings.HasPrefix(raw, bearerPrefix) || len(raw) == len(bearerPrefix) {
		return "", errBadAuthorization
	}
	return raw[len(bearerPrefix):], nil
}

func healthz(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}
