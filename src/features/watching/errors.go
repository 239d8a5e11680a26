package watching

import "errors"

var (
	ErrWatchFailure   = errors.New("watch failure")
	ErrRenameDetected = errors.New("rename detected")
	ErrNotifier       = errors.New("notifier error")
)

// FatalError halts the control loop. Path is empty when the notice had none.
type FatalError struct {
	Message string
	Path    string
	Err     error
}

func (e *FatalError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

func (e *FatalError) Unwrap() error {
	return e.Err
}
