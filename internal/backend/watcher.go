package backend

import (
	"context"
	"sync"
	"time"

	"github.com/atomicstack/stacknav/internal/logging/events"
)

// minPollGap bounds how often the store is asked for its revision, whatever
// interval was configured.
const minPollGap = 100 * time.Millisecond

// RevisionSource is the part of a store the watcher needs.
type RevisionSource interface {
	Revision(ctx context.Context) (int64, error)
}

// Kind represents the type of data emitted by the backend watcher.
type Kind int

const (
	KindChanged Kind = iota
	KindError
)

// Event reports a revision change or a failed poll.
type Event struct {
	Kind     Kind
	Previous int64
	Revision int64
	Err      error
}

// Watcher polls a store revision at a fixed interval and publishes an event
// whenever it moves. Repeated identical failures are reported once.
type Watcher struct {
	source   RevisionSource
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	events chan Event
	wg     sync.WaitGroup

	mu   sync.Mutex
	last int64
}

// NewWatcher starts polling source every interval, treating baseline as the
// revision the caller has already loaded.
func NewWatcher(source RevisionSource, interval time.Duration, baseline int64) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		source:   source,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		events:   make(chan Event, 16),
		last:     baseline,
	}

	w.wg.Add(1)
	go w.poll()

	go func() {
		w.wg.Wait()
		close(w.events)
	}()

	return w
}

// Events returns a channel of backend events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Stop cancels the watcher. The poller exits after its current fetch completes;
// use Wait if a clean drain is required (e.g. in tests).
func (w *Watcher) Stop() {
	w.cancel()
}

// Wait blocks until the poller has exited and the events channel is closed.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

func (w *Watcher) poll() {
	defer w.wg.Done()

	interval := w.interval
	if interval < minPollGap {
		interval = minPollGap
	}
	throttle := newThrottle(minPollGap)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr string
	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
		}
		if !throttle.wait(w.ctx) {
			return
		}
		evt, ok := w.check(&lastErr)
		if !ok {
			continue
		}
		select {
		case <-w.ctx.Done():
			return
		case w.events <- evt:
		}
	}
}

func (w *Watcher) check(lastErr *string) (Event, bool) {
	rev, err := w.source.Revision(w.ctx)
	if err != nil {
		if w.ctx.Err() != nil || err.Error() == *lastErr {
			return Event{}, false
		}
		*lastErr = err.Error()
		events.Watch.Error(err)
		return Event{Kind: KindError, Err: err}, true
	}
	*lastErr = ""

	w.mu.Lock()
	prev := w.last
	if rev == prev {
		w.mu.Unlock()
		return Event{}, false
	}
	w.last = rev
	w.mu.Unlock()

	events.Watch.Change(prev, rev)
	return Event{Kind: KindChanged, Previous: prev, Revision: rev}, true
}
