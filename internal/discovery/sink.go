package discovery

import (
	"sync"
	"time"

	"github.com/helionav/starcharts/internal/clock"
	"github.com/helionav/starcharts/internal/dispatch"
	"github.com/helionav/starcharts/pkg/core"
)

// DefaultDedupeGuard is how long identical notifications are suppressed at
// the sink.
const DefaultDedupeGuard = time.Second

// Sink consumes notifications bound for the HUD or audio bus.
type Sink interface {
	Notify(n core.Notification)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(n core.Notification)

// Notify calls the function.
func (f SinkFunc) Notify(n core.Notification) { f(n) }

// DedupingSink suppresses identical (title, message) pairs arriving within
// the guard interval. Discovery can be initiated both by proximity sweeps
// and by target cycling; the store's first-writer check is the primary
// dedupe, this guards the log surface when both paths converge in the same
// instant.
type DedupingSink struct {
	next  Sink
	guard time.Duration
	clock clock.Clock

	mu   sync.Mutex
	seen map[[2]string]time.Time
}

// NewDedupingSink wraps next with a duplicate guard. A nil clock uses the
// system clock; a non-positive guard falls back to DefaultDedupeGuard.
func NewDedupingSink(next Sink, guard time.Duration, clk clock.Clock) *DedupingSink {
	if clk == nil {
		clk = clock.NewReal()
	}
	if guard <= 0 {
		guard = DefaultDedupeGuard
	}
	return &DedupingSink{
		next:  next,
		guard: guard,
		clock: clk,
		seen:  make(map[[2]string]time.Time),
	}
}

// Notify forwards the notification unless an identical one passed through
// within the guard interval.
func (s *DedupingSink) Notify(n core.Notification) {
	key := [2]string{n.Title, n.Message}
	now := s.clock.Now()

	s.mu.Lock()
	if last, ok := s.seen[key]; ok && now.Sub(last) < s.guard {
		s.mu.Unlock()
		return
	}
	s.seen[key] = now
	s.mu.Unlock()

	s.next.Notify(n)
}

// SinkHandler adapts a Sink to a dispatch subscriber for notification
// events. Events with other payload types are ignored.
func SinkHandler(sink Sink) dispatch.SubscriberFunc {
	return func(e dispatch.Event) {
		if n, ok := e.Payload.(core.Notification); ok {
			sink.Notify(n)
		}
	}
}
