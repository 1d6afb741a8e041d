package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"github.com/gradeassist/internal/feedback"
	"github.com/gradeassist/internal/quickaction"
	"github.com/gradeassist/internal/session"
	"github.com/gradeassist/internal/style"
)

// Options configures the HTTP server
type Options struct {
	Host           string
	Port           int
	BodyLimit      string
	RequestTimeout time.Duration
	DefaultProfile string
}

// Server represents the API server
type Server struct {
	echo        *echo.Echo
	opts        Options
	composer    *feedback.Composer
	transformer *quickaction.Transformer
	catalog     *style.Catalog
	sessions    *session.Registry
}

// NewServer creates a new API server
func NewServer(opts Options, composer *feedback.Composer, catalog *style.Catalog, sessions *session.Registry) *Server {
	if composer == nil {
		composer = feedback.NewComposer()
	}
	if opts.BodyLimit == "" {
		opts.BodyLimit = "2M"
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Debug().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("Request")
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit(opts.BodyLimit))

	server := &Server{
		echo:        e,
		opts:        opts,
		composer:    composer,
		transformer: quickaction.NewTransformer(composer),
		catalog:     catalog,
		sessions:    sessions,
	}
	server.setupRoutes()
	return server
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status": "healthy",
		})
	})

	v1 := s.echo.Group("/api/v1")
	v1.GET("/profiles", s.listProfiles)
	v1.POST("/grade", s.grade)
	v1.POST("/compose", s.compose)
	v1.POST("/score", s.score)
	v1.POST("/actions", s.applyAction)

	if s.sessions != nil {
		v1.POST("/sessions", s.createSession)
		v1.GET("/sessions/:id", s.getSession)
		v1.DELETE("/sessions/:id", s.deleteSession)
		v1.POST("/sessions/:id/actions", s.sessionAction)
	}
}

// Handler exposes the router
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("API server listening")
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info().Msg("Shutting down API server")
	if s.sessions != nil {
		s.sessions.Purge()
	}
	return s.echo.Shutdown(shutdownCtx)
}

// requestContext bounds a handler by the configured timeout
func (s *Server) requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	if s.opts.RequestTimeout > 0 {
		return context.WithTimeout(c.Request().Context(), s.opts.RequestTimeout)
	}
	return context.WithCancel(c.Request().Context())
}
