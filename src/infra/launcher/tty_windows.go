//go:build windows

package launcher

import (
	"context"
	"errors"

	"github.com/contre95/sigwatch/src/features/dispatch"
)

func (e *Exec) runTTY(ctx context.Context, spec dispatch.CommandSpec) error {
	return errors.New("pseudo-terminals are not supported on windows")
}
