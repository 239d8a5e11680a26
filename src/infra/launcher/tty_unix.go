//go:build !windows

package launcher

import (
	"context"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/contre95/sigwatch/src/features/dispatch"
	"github.com/creack/pty"
)

// drainTimeout bounds how long output is still copied after the command exits,
// in case a background process keeps the terminal open.
const drainTimeout = 200 * time.Millisecond

func (e *Exec) runTTY(ctx context.Context, spec dispatch.CommandSpec) error {
	cmd := exec.CommandContext(ctx, spec.Name, spec.Args...)
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return err
	}

	out := &gatedWriter{w: e.Stdout}
	copied := make(chan struct{})
	go func() {
		io.Copy(out, ptmx)
		close(copied)
	}()
	if e.Stdin != nil {
		// Ends on the next read after the terminal is closed.
		go io.Copy(ptmx, e.Stdin)
	}

	logExit(spec, cmd.Wait())
	select {
	case <-copied:
	case <-time.After(drainTimeout):
	}
	ptmx.Close()
	select {
	case <-copied:
	case <-time.After(drainTimeout):
	}
	out.close()
	return nil
}

// gatedWriter forwards writes until closed and drops them afterwards, so
// output of processes outliving the command never reaches w after Run returns.
type gatedWriter struct {
	mu     sync.Mutex
	w      io.Writer
	closed bool
}

func (g *gatedWriter) Write(p []byte) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed || g.w == nil {
		return len(p), nil
	}
	return g.w.Write(p)
}

func (g *gatedWriter) close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
}
