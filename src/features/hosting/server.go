package hosting

import (
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/contre95/sigwatch/src/features/config"
	"github.com/contre95/sigwatch/src/features/metrics"
	"github.com/gofiber/fiber/v2"
)

// Server is the loopback HTTP server exposing operational endpoints.
type Server struct {
	app      *fiber.App
	addr     string
	listener net.Listener
}

// NewServer creates the metrics server bound to the configured loopback port.
func NewServer(cfg *config.Manager, m *metrics.Metrics) *Server {
	return newServer(fmt.Sprintf("127.0.0.1:%d", cfg.Get().Metrics.Port), m)
}

func newServer(addr string, m *metrics.Metrics) *Server {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.Error("Internal Server Error", "error", err)
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		},
		AppName:               "sigwatch",
		DisableStartupMessage: true,
	})

	app.Use(LogAllRequestsMiddleware())
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	metrics.RegisterRoutes(app, metrics.NewHandler(m))

	return &Server{app: app, addr: addr}
}

// Listen binds the listening socket so that a busy port fails at startup.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("metrics server: %w", err)
	}
	s.listener = ln
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start serves requests on the bound listener until Shutdown.
func (s *Server) Start() error {
	if s.listener == nil {
		return errors.New("metrics server: Start called before Listen")
	}
	slog.Debug("Metrics server listening", "addr", s.listener.Addr().String())
	return s.app.Listener(s.listener)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
