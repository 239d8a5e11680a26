package watcher

import (
	"time"

	"github.com/contre95/sigwatch/src/features/watching"
	"github.com/fsnotify/fsnotify"
)

// kindNone marks a pending change that cancelled itself out, such as a file
// created and removed within the same window.
const kindNone watching.Kind = -1

// pendingChange accumulates the operations seen on one path during a
// debounce window.
type pendingChange struct {
	kind    watching.Kind
	noticed bool
	timer   *time.Timer
}

// merge folds one operation into the change. It reports whether an early
// notice should be emitted, which happens once per window on the first write
// or remove.
func (p *pendingChange) merge(op fsnotify.Op) bool {
	early := false
	switch op {
	case fsnotify.Create:
		switch p.kind {
		case watching.KindRemove, watching.KindRename:
			// Deleted or moved away, then recreated under the same name.
			p.kind = watching.KindWrite
		case watching.KindWrite:
		default:
			p.kind = watching.KindCreate
		}
	case fsnotify.Write:
		if p.kind != watching.KindCreate {
			p.kind = watching.KindWrite
		}
		early = true
	case fsnotify.Chmod:
		if p.kind == kindNone {
			p.kind = watching.KindChmod
		}
	case fsnotify.Remove:
		switch p.kind {
		case watching.KindCreate:
			p.kind = kindNone
		case watching.KindRename:
		default:
			p.kind = watching.KindRemove
			early = true
		}
	case fsnotify.Rename:
		if p.kind == watching.KindCreate {
			p.kind = kindNone
		} else {
			p.kind = watching.KindRename
		}
	}
	if early && !p.noticed {
		p.noticed = true
		return true
	}
	return false
}

// splitOps returns the individual operations of a possibly combined op in
// the order they are applied.
func splitOps(op fsnotify.Op) []fsnotify.Op {
	var ops []fsnotify.Op
	for _, candidate := range []fsnotify.Op{fsnotify.Create, fsnotify.Write, fsnotify.Chmod, fsnotify.Remove, fsnotify.Rename} {
		if op.Has(candidate) {
			ops = append(ops, candidate)
		}
	}
	return ops
}
