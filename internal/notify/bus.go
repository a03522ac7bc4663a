package notify

import (
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
)

// Handler reacts to a signal. A returned error is logged and reported to
// the failure hook; it never reaches the publisher.
type Handler func(Signal) error

// FailureHook is told about every handler that returned an error or panicked.
type FailureHook func(kind Kind, subscriptionID string, err error)

type subscription struct {
	id      string
	kind    Kind
	handler Handler
}

// Bus is a synchronous in-process pub-sub for lifecycle signals.
// Publishers never learn who is subscribed, and a misbehaving handler
// cannot stop delivery to the others.
type Bus struct {
	mu            sync.RWMutex
	subscriptions map[Kind][]subscription
	logger        *slog.Logger
	onFailure     FailureHook
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used to report handler failures.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithFailureHook registers a callback for handler failures.
func WithFailureHook(hook FailureHook) Option {
	return func(b *Bus) { b.onFailure = hook }
}

// NewBus creates an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		subscriptions: make(map[Kind][]subscription),
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers handler for one signal kind and returns the
// subscription ID. Signals published before the call are not replayed.
func (b *Bus) Subscribe(kind Kind, handler Handler) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.NewString()
	b.subscriptions[kind] = append(b.subscriptions[kind], subscription{
		id:      id,
		kind:    kind,
		handler: handler,
	})
	return id
}

// SubscribeAll registers handler for every signal kind.
func (b *Bus) SubscribeAll(handler Handler) string {
	return b.Subscribe(kindAll, handler)
}

// Unsubscribe removes a subscription by ID.
// Returns true if the subscription was found and removed.
func (b *Bus) Unsubscribe(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for kind, subs := range b.subscriptions {
		for i, sub := range subs {
			if sub.id != id {
				continue
			}
			// copy so in-flight Publish snapshots keep their slice intact
			kept := make([]subscription, 0, len(subs)-1)
			kept = append(kept, subs[:i]...)
			kept = append(kept, subs[i+1:]...)
			if len(kept) == 0 {
				delete(b.subscriptions, kind)
			} else {
				b.subscriptions[kind] = kept
			}
			return true
		}
	}
	return false
}

// Publish delivers s to the handlers subscribed to its kind, then to the
// wildcard handlers, each group in registration order. Delivery happens on
// the caller's goroutine.
func (b *Bus) Publish(s Signal) {
	if s == nil {
		return
	}

	b.mu.RLock()
	specific := b.subscriptions[s.Kind()]
	wildcard := b.subscriptions[kindAll]
	targets := make([]subscription, 0, len(specific)+len(wildcard))
	targets = append(targets, specific...)
	targets = append(targets, wildcard...)
	b.mu.RUnlock()

	for _, sub := range targets {
		b.deliver(sub, s)
	}
}

// deliver invokes one handler and recovers from any panic.
func (b *Bus) deliver(sub subscription, s Signal) {
	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
			b.logger.Error("signal handler panicked",
				"signal", s.Kind(),
				"subscription_id", sub.id,
				"task_id", s.Task(),
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
		if err != nil {
			b.reportFailure(s.Kind(), sub.id, err)
		}
	}()

	if err = sub.handler(s); err != nil {
		b.logger.Warn("signal handler failed",
			"signal", s.Kind(),
			"subscription_id", sub.id,
			"task_id", s.Task(),
			"error", err,
		)
	}
}

func (b *Bus) reportFailure(kind Kind, id string, err error) {
	if b.onFailure == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("failure hook panicked", "signal", kind, "panic", r)
		}
	}()
	b.onFailure(kind, id, err)
}

// Clear removes all subscriptions.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscriptions = make(map[Kind][]subscription)
}

// SubscriptionCount returns the total number of active subscriptions.
func (b *Bus) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := 0
	for _, subs := range b.subscriptions {
		count += len(subs)
	}
	return count
}
