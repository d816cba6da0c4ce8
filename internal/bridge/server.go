package bridge

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
)

// Server hosts the same-origin proxy bridge: a single pass-through
// endpoint that relays GETs to an allow-listed set of content API hosts,
// optionally via a public proxy intermediary.
type Server struct {
	echo    *echo.Echo
	port    int
	handler *Handler
}

// NewServer creates a bridge server. allowedDomains is the fixed hostname
// allow-list; anything else is refused.
func NewServer(port int, allowedDomains []string, timeout time.Duration) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	handler := NewHandler(allowedDomains, timeout, rand.New(rand.NewSource(time.Now().UnixNano())))

	server := &Server{
		echo:    e,
		port:    port,
		handler: handler,
	}
	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status": "healthy",
		})
	})

	s.echo.GET("/api/proxy", s.handler.Proxy)
}

// Start runs the server until interrupted, then shuts down gracefully.
func (s *Server) Start() error {
	go func() {
		if err := s.echo.Start(fmt.Sprintf(":%d", s.port)); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("bridge server stopped")
		}
	}()

	log.Info().Int("port", s.port).Msg("proxy bridge listening")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.echo.Shutdown(ctx)
}
