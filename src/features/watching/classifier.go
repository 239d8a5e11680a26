package watching

import (
	"fmt"
	"log/slog"
)

// Action is the classification of a notice.
type Action int

const (
	Ignored Action = iota
	Actionable
	Fatal
)

func (a Action) String() string {
	switch a {
	case Ignored:
		return "ignored"
	case Actionable:
		return "actionable"
	case Fatal:
		return "fatal"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Outcome is the result of classifying one notice. Err is set only when
// Action is Fatal.
type Outcome struct {
	Action Action
	Err    *FatalError
}

// Rearmer re-establishes a non-recursive watch on a path.
type Rearmer interface {
	Rearm(path string) error
}

// Classifier turns raw notices into outcomes.
type Classifier struct {
	rearmer Rearmer
}

// NewClassifier creates a classifier that re-arms removed paths through r.
func NewClassifier(r Rearmer) *Classifier {
	return &Classifier{rearmer: r}
}

// Classify maps one notice to an outcome. Notices must be passed in arrival order.
func (c *Classifier) Classify(n Notice) Outcome {
	switch n.Kind {
	case KindNotice, KindRescan:
		return Outcome{Action: Ignored}

	case KindWrite, KindChmod, KindCreate:
		return Outcome{Action: Actionable}

	case KindRemove:
		// Some editors save by deleting the file and creating a new one with
		// the same name, so a path that can be watched again counts as changed.
		if err := c.rearmer.Rearm(n.Path); err != nil {
			slog.Debug("Re-arming removed path failed", "path", n.Path, "error", err)
			return fatal("file was deleted", n.Path, ErrWatchFailure)
		}
		return Outcome{Action: Actionable}

	case KindRename:
		return fatal("file was renamed", n.Path, ErrRenameDetected)

	case KindError:
		msg := "unknown notifier error"
		if n.Err != nil {
			msg = n.Err.Error()
		}
		return Outcome{Action: Fatal, Err: &FatalError{Message: msg, Path: n.Path, Err: joinNotifier(n.Err)}}
	}
	return fatal(fmt.Sprintf("unexpected notice kind %s", n.Kind), n.Path, ErrNotifier)
}

func fatal(msg, path string, err error) Outcome {
	return Outcome{Action: Fatal, Err: &FatalError{Message: msg, Path: path, Err: err}}
}

func joinNotifier(err error) error {
	if err == nil {
		return ErrNotifier
	}
	return fmt.Errorf("%w: %w", ErrNotifier, err)
}
