package watching

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/contre95/sigwatch/src/features/metrics"
)

// ErrLoopRunning is returned when Run is entered while another Run is active.
var ErrLoopRunning = errors.New("control loop already running")

// Updater runs the side effects of an actionable change.
type Updater interface {
	Update(ctx context.Context) error
}

// Service owns the classify-then-dispatch control loop.
type Service struct {
	classifier *Classifier
	updater    Updater
	metrics    *metrics.Metrics
	running    atomic.Bool
}

// NewService creates the control loop service.
func NewService(classifier *Classifier, updater Updater, m *metrics.Metrics) *Service {
	return &Service{
		classifier: classifier,
		updater:    updater,
		metrics:    m,
	}
}

// Run consumes notices until the channel closes, ctx is cancelled, or a
// notice or update turns out fatal. Only the fatal case returns an error.
func (s *Service) Run(ctx context.Context, notices <-chan Notice) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer s.running.Store(false)

	for {
		select {
		case <-ctx.Done():
			return nil
		case notice, ok := <-notices:
			if !ok {
				return nil
			}
			if err := s.handle(ctx, notice); err != nil {
				return err
			}
		}
	}
}

func (s *Service) handle(ctx context.Context, notice Notice) error {
	s.metrics.ObserveNotice(notice.Kind.String())

	outcome := s.classifier.Classify(notice)
	slog.Debug("Notice classified", "kind", notice.Kind, "path", notice.Path, "action", outcome.Action)

	switch outcome.Action {
	case Actionable:
		return s.updater.Update(ctx)
	case Fatal:
		return outcome.Err
	}
	return nil
}
