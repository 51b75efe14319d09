package weathersync

import (
	"context"

	"github.com/couchcryptid/weather-sync-service/internal/domain"
)

// outcomeBuffer covers the longest outcome sequence of one run:
// Success(cached), Refreshing(true), Refreshing(false), Error.
const outcomeBuffer = 4

// Subscription is the channel form of one sync run. It has a single consumer.
type Subscription struct {
	outcomes chan domain.Outcome
	done     chan struct{}
	err      error
}

// Sync starts a run in the background and returns its outcome stream.
func (e *Engine) Sync(ctx context.Context, at *domain.Coordinates) *Subscription {
	sub := &Subscription{
		outcomes: make(chan domain.Outcome, outcomeBuffer),
		done:     make(chan struct{}),
	}
	go func() {
		err := e.Run(ctx, at, func(o domain.Outcome) {
			select {
			case sub.outcomes <- o:
			case <-ctx.Done():
			}
		})
		sub.err = err
		close(sub.done)
		close(sub.outcomes)
	}()
	return sub
}

// Outcomes yields the run's outcomes in order and is closed when the run ends.
func (s *Subscription) Outcomes() <-chan domain.Outcome {
	return s.outcomes
}

// Err blocks until the run ends and returns why it stopped early: a store
// failure or the context error. It is nil for a completed run.
func (s *Subscription) Err() error {
	<-s.done
	return s.err
}

// Wait drains the remaining outcomes and returns Err.
func (s *Subscription) Wait() ([]domain.Outcome, error) {
	var out []domain.Outcome
	for o := range s.outcomes {
		out = append(out, o)
	}
	return out, s.Err()
}
