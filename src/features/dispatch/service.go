package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/contre95/sigwatch/src/features/config"
	"github.com/contre95/sigwatch/src/features/metrics"
)

// ErrLaunchFailure is returned when the configured command cannot be started.
var ErrLaunchFailure = errors.New("failed to run command")

// CommandSpec is the external command run on every update.
type CommandSpec struct {
	Name string
	Args []string
	// TTY runs the command attached to a pseudo-terminal.
	TTY bool
}

func (c CommandSpec) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Launcher starts a command and blocks until it exits. Only a failure to
// start is reported; the exit status is not an error.
type Launcher interface {
	Run(ctx context.Context, spec CommandSpec) error
}

// Broadcaster notifies event subscribers and forgets the ones that are gone.
type Broadcaster interface {
	BroadcastAndCompact() (live, dropped int)
}

// Service runs the side effects of a change: the command, then the broadcast.
type Service struct {
	command     *CommandSpec
	launcher    Launcher
	broadcaster Broadcaster
	eventName   string
	eventPort   uint16
	metrics     *metrics.Metrics
}

// NewService creates the dispatcher for the configured command and broadcast.
// broadcaster is only used when broadcasting is enabled.
func NewService(cfg *config.Manager, launcher Launcher, broadcaster Broadcaster, m *metrics.Metrics) *Service {
	c := cfg.Get()
	s := &Service{
		launcher: launcher,
		metrics:  m,
	}
	if len(c.Command) > 0 {
		s.command = &CommandSpec{Name: c.Command[0], Args: c.Command[1:], TTY: c.TTY}
	}
	if c.Broadcast.Enabled {
		s.broadcaster = broadcaster
		s.eventName = c.Broadcast.Name
		s.eventPort = c.Broadcast.Port
	}
	return s
}

// Update runs the command to completion, if any, then broadcasts to the
// subscribers, if enabled. Callers must not invoke Update concurrently.
func (s *Service) Update(ctx context.Context) error {
	if s.broadcaster != nil {
		slog.Info(fmt.Sprintf("Triggering signal '%s' on port %d", s.eventName, s.eventPort))
	}
	if s.command != nil {
		slog.Info("Triggering command: " + s.command.String())
	}
	s.metrics.IncUpdate()

	if s.command != nil {
		if err := s.launcher.Run(ctx, *s.command); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrLaunchFailure, s.command.Name, err)
		}
		s.metrics.IncCommandRun()
	}

	if s.broadcaster != nil {
		live, dropped := s.broadcaster.BroadcastAndCompact()
		slog.Debug("Broadcast sent", "subscribers", live, "dropped", dropped)
	}
	return nil
}
