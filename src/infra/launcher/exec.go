package launcher

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"github.com/contre95/sigwatch/src/features/dispatch"
)

// Exec runs commands as child processes sharing the standard streams of
// sigwatch.
type Exec struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New returns a launcher bound to the process standard streams.
func New() *Exec {
	return &Exec{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run starts the command and waits for it. The exit status is logged at
// debug level and otherwise ignored.
func (e *Exec) Run(ctx context.Context, spec dispatch.CommandSpec) error {
	if spec.TTY {
		return e.runTTY(ctx, spec)
	}

	cmd := exec.CommandContext(ctx, spec.Name, spec.Args...)
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	if err := cmd.Start(); err != nil {
		return err
	}
	logExit(spec, cmd.Wait())
	return nil
}

func logExit(spec dispatch.CommandSpec, err error) {
	if err != nil {
		slog.Debug("Command finished", "command", spec.Name, "error", err)
		return
	}
	slog.Debug("Command finished", "command", spec.Name, "status", 0)
}
