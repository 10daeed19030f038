package event

import (
	"context"
	"reflect"
	"sync"
	"time"

	"kiosk/internal/buffer"
	"kiosk/internal/logging"
	"kiosk/internal/metrics"
)

const defaultSubscriberBufferSize = 128

type BusOptions struct {
	Name                 string
	SubscriberBufferSize int
	// BlockOnFull makes Publish wait for slow subscribers instead of
	// dropping. A subscriber that stays full past WriteTimeout is removed.
	BlockOnFull  bool
	WriteTimeout time.Duration
	HistorySize  int
	Registry     *metrics.Registry
	Logger       *logging.Logger
}

// Bus fans events out to subscriber channels. Publish preserves per-subscriber
// ordering; it never holds the bus lock while sending.
type Bus[T any] struct {
	mu          sync.Mutex
	subscribers map[uint64]subscription[T]
	nextSubID   uint64
	closed      bool
	closeOnce   sync.Once
	options     BusOptions
	registry    *metrics.Registry
	logger      *logging.Logger
	history     *buffer.Ring[T]
}

type subscription[T any] struct {
	id     uint64
	ch     chan T
	filter func(T) bool
}

type typedEvent interface {
	Type() string
}

func NewBus[T any](ctx context.Context, opts BusOptions) *Bus[T] {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.SubscriberBufferSize <= 0 {
		opts.SubscriberBufferSize = defaultSubscriberBufferSize
	}
	if opts.Name == "" {
		opts.Name = "event_bus"
	}
	bus := &Bus[T]{
		subscribers: make(map[uint64]subscription[T]),
		options:     opts,
		registry:    opts.Registry,
		logger:      opts.Logger,
	}
	if opts.HistorySize > 0 {
		bus.history = buffer.NewRing[T](opts.HistorySize)
	}
	if bus.registry == nil {
		bus.registry = metrics.Default
	}
	if done := ctx.Done(); done != nil {
		go func() {
			<-done
			bus.Close()
		}()
	}
	return bus
}

func (b *Bus[T]) Name() string {
	if b == nil {
		return ""
	}
	return b.options.Name
}

func (b *Bus[T]) Subscribe() (<-chan T, func()) {
	return b.SubscribeFiltered(nil)
}

func (b *Bus[T]) SubscribeFiltered(filter func(T) bool) (<-chan T, func()) {
	if b == nil {
		return closedChannel[T](), func() {}
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return closedChannel[T](), func() {}
	}
	b.nextSubID++
	id := b.nextSubID
	ch := make(chan T, b.options.SubscriberBufferSize)
	b.subscribers[id] = subscription[T]{id: id, ch: ch, filter: filter}
	filtered, unfiltered := b.countSubscribersLocked()
	b.mu.Unlock()

	b.registry.SetEventSubscriberCounts(b.options.Name, filtered, unfiltered)
	return ch, func() { b.removeSubscriber(id) }
}

// SubscribeTypes delivers only events whose Type() is one of eventTypes.
// With no types every event is delivered.
func (b *Bus[T]) SubscribeTypes(eventTypes ...string) (<-chan T, func()) {
	typeSet := make(map[string]struct{}, len(eventTypes))
	for _, eventType := range eventTypes {
		if eventType != "" {
			typeSet[eventType] = struct{}{}
		}
	}
	if len(typeSet) == 0 {
		return b.Subscribe()
	}
	return b.SubscribeFiltered(func(event T) bool {
		typed, ok := any(event).(typedEvent)
		if !ok {
			return false
		}
		_, matched := typeSet[typed.Type()]
		return matched
	})
}

func (b *Bus[T]) Publish(event T) {
	if b == nil || isNil(event) {
		return
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	if b.history != nil {
		b.history.Add(event)
	}
	subscribers := make([]subscription[T], 0, len(b.subscribers))
	for _, sub := range b.subscribers {
		subscribers = append(subscribers, sub)
	}
	b.mu.Unlock()

	eventType := eventTypeOf(event)
	b.registry.IncEventPublished(b.options.Name, eventType)

	for _, sub := range subscribers {
		if !b.filterAllows(sub, event) {
			continue
		}
		if !b.send(sub, event) {
			b.registry.IncEventDropped(b.options.Name, eventType)
			b.logger.Debug("event dropped", map[string]string{
				"bus":  b.options.Name,
				"type": eventType,
			})
		}
	}
}

func (b *Bus[T]) Close() {
	if b == nil {
		return
	}
	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.closed = true
		subscribers := b.subscribers
		b.subscribers = make(map[uint64]subscription[T])
		b.mu.Unlock()

		for _, sub := range subscribers {
			close(sub.ch)
		}
		b.registry.SetEventSubscriberCounts(b.options.Name, 0, 0)
	})
}

// ReplayLast replays the most recent events into the provided channel in order.
func (b *Bus[T]) ReplayLast(count int, subscriber chan<- T) {
	if subscriber == nil {
		return
	}
	for _, event := range b.historySnapshot(count) {
		subscriber <- event
	}
}

// DumpHistory returns a copy of the stored event history in order.
func (b *Bus[T]) DumpHistory() []T {
	return b.historySnapshot(0)
}

func (b *Bus[T]) SubscriberCount() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

func (b *Bus[T]) send(sub subscription[T], event T) (delivered bool) {
	defer func() {
		// The subscriber cancelled concurrently and its channel is closed.
		if recover() != nil {
			delivered = true
		}
	}()

	if !b.options.BlockOnFull {
		select {
		case sub.ch <- event:
			return true
		default:
			return false
		}
	}

	if b.options.WriteTimeout <= 0 {
		sub.ch <- event
		return true
	}
	timer := time.NewTimer(b.options.WriteTimeout)
	defer timer.Stop()
	select {
	case sub.ch <- event:
		return true
	case <-timer.C:
		b.logger.Warn("event subscriber timed out", map[string]string{
			"bus":     b.options.Name,
			"timeout": b.options.WriteTimeout.String(),
		})
		b.removeSubscriber(sub.id)
		return false
	}
}

func (b *Bus[T]) removeSubscriber(id uint64) {
	b.mu.Lock()
	existing, ok := b.subscribers[id]
	if !ok {
		b.mu.Unlock()
		return
	}
	delete(b.subscribers, id)
	filtered, unfiltered := b.countSubscribersLocked()
	b.mu.Unlock()

	close(existing.ch)
	b.registry.SetEventSubscriberCounts(b.options.Name, filtered, unfiltered)
}

func (b *Bus[T]) filterAllows(sub subscription[T], event T) (allowed bool) {
	if sub.filter == nil {
		return true
	}
	defer func() {
		if recover() != nil {
			b.logger.Warn("event subscriber filter panicked", map[string]string{"bus": b.options.Name})
			b.removeSubscriber(sub.id)
			allowed = false
		}
	}()
	return sub.filter(event)
}

func (b *Bus[T]) countSubscribersLocked() (filtered int, unfiltered int) {
	for _, sub := range b.subscribers {
		if sub.filter == nil {
			unfiltered++
		} else {
			filtered++
		}
	}
	return filtered, unfiltered
}

func (b *Bus[T]) historySnapshot(count int) []T {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.history == nil {
		return nil
	}
	return b.history.Last(count)
}

func eventTypeOf[T any](event T) string {
	typed, ok := any(event).(typedEvent)
	if !ok || typed.Type() == "" {
		return "unknown"
	}
	return typed.Type()
}

func closedChannel[T any]() chan T {
	ch := make(chan T)
	close(ch)
	return ch
}

func isNil[T any](value T) bool {
	kind := reflect.ValueOf(value)
	if !kind.IsValid() {
		return true
	}
	switch kind.Kind() {
	case reflect.Chan, reflect.Func, reflect.Map, reflect.Pointer, reflect.Interface, reflect.Slice:
		return kind.IsNil()
	default:
		return false
	}
}
