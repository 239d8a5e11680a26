package broadcasting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/contre95/sigwatch/src/features/config"
)

// ErrBindFailure is returned when the event listener cannot be created.
var ErrBindFailure = errors.New("error starting the server")

const maxAcceptDelay = time.Second

// Server accepts event subscribers on a loopback port and runs one session
// per connection.
type Server struct {
	addr      string
	eventName string
	eventPath string
	coalesce  bool
	registry  *Registry
	listener  net.Listener
	sessions  sync.WaitGroup
}

// NewServer creates the event server described by the broadcast configuration.
func NewServer(cfg *config.Manager, registry *Registry) *Server {
	b := cfg.Get().Broadcast
	return newServer(fmt.Sprintf("127.0.0.1:%d", b.Port), b.Name, b.Coalesce, registry)
}

func newServer(addr, eventName string, coalesce bool, registry *Registry) *Server {
	return &Server{
		addr:      addr,
		eventName: eventName,
		eventPath: config.EventPath,
		coalesce:  coalesce,
		registry:  registry,
	}
}

// Listen binds the listening socket.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBindFailure, err)
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

// Serve accepts connections until ctx is cancelled, then waits for the
// running sessions to wind down. A failed accept is retried after a short
// delay and never ends the loop.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		return fmt.Errorf("%w: Serve called before Listen", ErrBindFailure)
	}
	stop := context.AfterFunc(ctx, func() { s.listener.Close() })
	defer stop()
	defer s.sessions.Wait()

	slog.Debug("Event server listening", "addr", s.listener.Addr().String(), "path", s.eventPath, "event", s.eventName)

	var delay time.Duration
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			if delay == 0 {
				delay = 5 * time.Millisecond
			} else {
				delay = min(2*delay, maxAcceptDelay)
			}
			slog.Debug("Accept failed", "error", err, "retry_in", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil
			}
			continue
		}
		delay = 0

		sub := NewSubscriber(s.coalesce)
		s.registry.Register(sub)
		slog.Debug("Subscriber connected", "subscriber", sub.ID, "remote", conn.RemoteAddr().String())

		s.sessions.Add(1)
		go func() {
			defer s.sessions.Done()
			newSession(conn, sub, s.eventPath, s.eventName).run(ctx)
		}()
	}
}
