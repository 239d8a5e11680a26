//go:build !windows

package launcher

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/contre95/sigwatch/src/features/dispatch"
	"github.com/stretchr/testify/require"
)

func TestExec_ExitStatusIsNotAnError(t *testing.T) {
	var out bytes.Buffer
	l := &Exec{Stdout: &out, Stderr: &out}

	err := l.Run(context.Background(), dispatch.CommandSpec{Name: "sh", Args: []string{"-c", "echo built; exit 3"}})
	require.NoError(t, err)
	require.Equal(t, "built\n", out.String())
}

func TestExec_StartFailure(t *testing.T) {
	l := &Exec{}
	err := l.Run(context.Background(), dispatch.CommandSpec{Name: "sigwatch-definitely-missing-binary"})
	require.Error(t, err)
}

func TestExec_TTY(t *testing.T) {
	var out bytes.Buffer
	l := &Exec{Stdout: &out}

	err := l.Run(context.Background(), dispatch.CommandSpec{Name: "sh", Args: []string{"-c", "test -t 1 && echo tty"}, TTY: true})
	require.NoError(t, err)
	require.Contains(t, out.String(), "tty")
}

func TestExec_TTYForwardsStdin(t *testing.T) {
	var out bytes.Buffer
	l := &Exec{Stdin: strings.NewReader("hello\n"), Stdout: &out}

	err := l.Run(context.Background(), dispatch.CommandSpec{Name: "sh", Args: []string{"-c", "read line; echo got:$line"}, TTY: true})
	require.NoError(t, err)
	require.Contains(t, out.String(), "got:hello")
}

func TestExec_TTYStopsWritingAfterReturn(t *testing.T) {
	var out bytes.Buffer
	l := &Exec{Stdout: &out}

	err := l.Run(context.Background(), dispatch.CommandSpec{Name: "sh", Args: []string{"-c", "(sleep 1; echo late) & echo early"}, TTY: true})
	require.NoError(t, err)
	seen := out.String()
	require.Contains(t, seen, "early")

	time.Sleep(1500 * time.Millisecond)
	require.Equal(t, seen, out.String())
	require.NotContains(t, out.String(), "late")
}
