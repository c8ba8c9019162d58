// Package dispatch fans events out from the core to registered observers.
// The core publishes; renderer and host glue subscribe. Subscribers never
// call back into the publisher, so a slow or failing observer cannot stall
// a discovery tick.
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Event names published by the core.
const (
	EventDiscovery     = "discovery.object"
	EventNotification  = "discovery.notification"
	EventNavState      = "nav.state"
	EventSectorEntered = "sector.entered"
)

// Event is one outbound occurrence.
type Event struct {
	Name      string
	Payload   any
	Timestamp time.Time
}

// SubscriberFunc consumes a delivered event.
type SubscriberFunc func(Event)

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Option configures a subscription.
type Option func(*config)

type config struct {
	bufferSize int
	blocking   bool
	logged     bool
}

// Buffered makes the subscriber async with a queue of the given size.
func Buffered(size int) Option {
	return func(c *config) {
		c.bufferSize = size
	}
}

// Blocking makes a buffered subscriber block when the queue is full instead
// of dropping.
func Blocking() Option {
	return func(c *config) {
		c.blocking = true
	}
}

// Logged adds debug logging around each delivery.
func Logged() Option {
	return func(c *config) {
		c.logged = true
	}
}

// Dispatcher delivers published events to subscribers in registration order.
type Dispatcher struct {
	logger Logger

	// OTEL metrics
	queueSize metric.Int64ObservableGauge
	delivered metric.Int64Counter
	dropped   metric.Int64Counter

	// Track buffers for gauge callback
	mu          sync.RWMutex
	subscribers map[string][]SubscriberFunc
	buffers     map[string]chan Event
}

// New creates a new Dispatcher with the given logger.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(logger Logger) (*Dispatcher, error) {
	d := &Dispatcher{
		logger:      logger,
		subscribers: make(map[string][]SubscriberFunc),
		buffers:     make(map[string]chan Event),
	}

	m := meter()

	var err error

	d.queueSize, err = m.Int64ObservableGauge(
		"dispatch.queue.size",
		metric.WithDescription("Current number of events queued per subscription"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queue size gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			d.mu.RLock()
			defer d.mu.RUnlock()
			for key, buf := range d.buffers {
				o.ObserveInt64(d.queueSize, int64(len(buf)),
					metric.WithAttributes(attribute.String("subscription", key)))
			}
			return nil
		},
		d.queueSize,
	)
	if err != nil {
		return nil, fmt.Errorf("registering queue callback: %w", err)
	}

	d.delivered, err = m.Int64Counter(
		"dispatch.events.delivered",
		metric.WithDescription("Total events delivered to subscribers"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating delivered counter: %w", err)
	}

	d.dropped, err = m.Int64Counter(
		"dispatch.events.dropped",
		metric.WithDescription("Total events dropped due to full queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}

	return d, nil
}

// Subscribe registers fn for events with the given name. Default delivery is
// synchronous inside Publish, in registration order.
func (d *Dispatcher) Subscribe(name string, fn SubscriberFunc, opts ...Option) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	d.mu.RLock()
	idx := len(d.subscribers[name])
	d.mu.RUnlock()

	sub := d.counted(name, fn)

	if cfg.bufferSize > 0 {
		sub = d.withBuffer(fmt.Sprintf("%s#%d", name, idx), cfg.bufferSize, cfg.blocking, sub)
	}

	if cfg.logged {
		sub = d.withLogging(name, sub)
	}

	d.mu.Lock()
	d.subscribers[name] = append(d.subscribers[name], sub)
	d.mu.Unlock()
}

// Publish delivers the event to every subscriber of its name. Synchronous
// subscribers run before Publish returns; buffered ones receive the event on
// their own goroutine. Publishing with no subscribers is a no-op.
func (d *Dispatcher) Publish(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	d.mu.RLock()
	subs := d.subscribers[e.Name]
	d.mu.RUnlock()

	for _, sub := range subs {
		sub(e)
	}
}

// HasSubscribers returns true if anything listens for the event name.
func (d *Dispatcher) HasSubscribers(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subscribers[name]) > 0
}

// counted wraps the innermost subscriber so sync and buffered deliveries
// increment the same counter exactly once per actual delivery.
func (d *Dispatcher) counted(name string, fn SubscriberFunc) SubscriberFunc {
	attr := attribute.String("event", name)
	return func(e Event) {
		fn(e)
		d.delivered.Add(context.Background(), 1, metric.WithAttributes(attr))
	}
}

func (d *Dispatcher) withBuffer(key string, size int, blocking bool, fn SubscriberFunc) SubscriberFunc {
	buffer := make(chan Event, size)

	d.mu.Lock()
	d.buffers[key] = buffer
	d.mu.Unlock()

	subAttr := attribute.String("subscription", key)

	go func() {
		for e := range buffer {
			fn(e)
		}
	}()

	if blocking {
		return func(e Event) {
			buffer <- e
		}
	}

	return func(e Event) {
		select {
		case buffer <- e:
		default:
			d.dropped.Add(context.Background(), 1, metric.WithAttributes(subAttr))
			if d.logger != nil {
				d.logger.Error("event dropped, queue full", "subscription", key)
			}
		}
	}
}

func (d *Dispatcher) withLogging(name string, fn SubscriberFunc) SubscriberFunc {
	return func(e Event) {
		start := time.Now()
		d.logger.Debug("delivering event", "event", name)

		fn(e)

		d.logger.Debug("event delivered", "event", name, "duration", time.Since(start))
	}
}
