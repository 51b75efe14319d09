package viewmodel

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/couchcryptid/weather-sync-service/internal/domain"
	"github.com/couchcryptid/weather-sync-service/internal/observability"
)

// ErrStopped is returned by Sync once the view model loop has exited.
var ErrStopped = errors.New("view model stopped")

const (
	updatesBuffer = 16
	eventsBuffer  = 16
)

// Syncer runs one weather sync, emitting outcomes in order.
type Syncer interface {
	Run(ctx context.Context, at *domain.Coordinates, emit func(domain.Outcome)) error
}

type syncRequest struct {
	at *domain.Coordinates
}

// runMessage is an outcome or the end of a run, tagged with its generation.
type runMessage struct {
	gen     uint64
	outcome domain.Outcome
	done    bool
	err     error
}

// ViewModel owns the weather State. A single goroutine (Run) applies every
// reduction; other goroutines only send requests and read snapshots.
//
// A Sync while another run is in flight cancels the older run, and any
// outcome it still produces is dropped.
type ViewModel struct {
	engine  Syncer
	res     Resources
	metrics *observability.Metrics
	logger  *slog.Logger

	requests chan syncRequest
	inbox    chan runMessage
	updates  chan State
	events   chan Event
	stopped  chan struct{}

	mu      sync.RWMutex
	current State
	lastErr error

	running        atomic.Bool
	cancelInFlight context.CancelFunc
}

// New creates a ViewModel in InitialState. Call Run to start it.
func New(engine Syncer, res Resources, metrics *observability.Metrics, logger *slog.Logger) *ViewModel {
	return &ViewModel{
		engine:   engine,
		res:      res,
		metrics:  metrics,
		logger:   logger,
		requests: make(chan syncRequest),
		inbox:    make(chan runMessage),
		updates:  make(chan State, updatesBuffer),
		events:   make(chan Event, eventsBuffer),
		stopped:  make(chan struct{}),
		current:  InitialState(),
	}
}

// Sync asks for a sync of at (nil syncs from the cache only). It returns once
// the loop accepted the request, not when the sync completes.
func (vm *ViewModel) Sync(ctx context.Context, at *domain.Coordinates) error {
	select {
	case vm.requests <- syncRequest{at: at}:
		return nil
	case <-vm.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Updates delivers every state emission, each carrying only the events of its
// own reduction. When the consumer falls behind the oldest pending state is
// discarded.
func (vm *ViewModel) Updates() <-chan State {
	return vm.updates
}

// Events delivers each one-shot event once, independent of state emissions.
func (vm *ViewModel) Events() <-chan Event {
	return vm.events
}

// DrainEvents returns the pending events without blocking.
func (vm *ViewModel) DrainEvents() []Event {
	var out []Event
	for {
		select {
		case ev := <-vm.events:
			out = append(out, ev)
		default:
			return out
		}
	}
}

// Current returns the latest state. Its Events are always empty, so a late
// reader never sees a notification again.
func (vm *ViewModel) Current() State {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.current
}

// CheckReadiness reports whether the loop is running and the last sync did
// not fail on the store.
func (vm *ViewModel) CheckReadiness(_ context.Context) error {
	if !vm.running.Load() {
		return errors.New("view model is not running")
	}
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.lastErr
}

// Run processes sync requests until ctx is cancelled. It cancels the
// in-flight sync on exit.
func (vm *ViewModel) Run(ctx context.Context) error {
	vm.running.Store(true)
	defer vm.running.Store(false)
	defer close(vm.stopped)

	var (
		gen   uint64
		state = vm.Current()
	)
	defer vm.cancelRun()

	for {
		select {
		case <-ctx.Done():
			vm.logger.Info("view model stopping", "reason", ctx.Err())
			return nil

		case req := <-vm.requests:
			vm.cancelRun()
			gen++
			runCtx, cancel := context.WithCancel(ctx)
			vm.cancelInFlight = cancel
			go vm.runSync(runCtx, gen, req.at)

		case msg := <-vm.inbox:
			if msg.gen != gen {
				continue
			}
			if msg.done {
				vm.finish(msg.err)
				continue
			}
			state = Reduce(state, msg.outcome, vm.res)
			vm.publish(state)
		}
	}
}

// cancelRun cancels the in-flight sync, if any. Only the Run goroutine calls it.
func (vm *ViewModel) cancelRun() {
	if vm.cancelInFlight != nil {
		vm.cancelInFlight()
		vm.cancelInFlight = nil
	}
}

func (vm *ViewModel) runSync(ctx context.Context, gen uint64, at *domain.Coordinates) {
	deliver := func(msg runMessage) {
		select {
		case vm.inbox <- msg:
		case <-ctx.Done():
		}
	}
	err := vm.engine.Run(ctx, at, func(o domain.Outcome) {
		deliver(runMessage{gen: gen, outcome: o})
	})
	deliver(runMessage{gen: gen, done: true, err: err})
}

func (vm *ViewModel) finish(err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	if err != nil {
		vm.logger.Error("weather sync failed", "error", err)
	}
	vm.mu.Lock()
	vm.lastErr = err
	vm.mu.Unlock()
}

func (vm *ViewModel) publish(s State) {
	vm.mu.Lock()
	vm.current = s.withoutEvents()
	vm.mu.Unlock()

	for _, ev := range s.Events {
		vm.metrics.EventsEmitted.WithLabelValues(string(ev.Kind)).Inc()
		select {
		case vm.events <- ev:
		default:
			vm.logger.Warn("event dropped, no consumer", "kind", ev.Kind)
		}
	}

	for {
		select {
		case vm.updates <- s:
			return
		default:
		}
		// Conflate: drop the oldest pending state to make room.
		select {
		case <-vm.updates:
		default:
		}
	}
}
