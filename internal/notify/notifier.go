// Package notify publishes one change event per logical snapshot update to
// the rendering layer and forwards them to sinks.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"kiosk/internal/event"
	"kiosk/internal/logging"
	"kiosk/internal/metrics"
)

const (
	busName          = "changes"
	subscriberBuffer = 256
	writeTimeout     = 2 * time.Second
	historySize      = 64
)

type Options struct {
	Logger   *logging.Logger
	Registry *metrics.Registry
}

// Notifier owns the change bus. Publishing waits briefly for slow
// subscribers rather than dropping changes.
type Notifier struct {
	bus    *event.Bus[event.ChangeEvent]
	logger *logging.Logger
}

func New(ctx context.Context, options Options) *Notifier {
	logger := options.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	logger = logger.Category("notify")
	return &Notifier{
		bus: event.NewBus[event.ChangeEvent](ctx, event.BusOptions{
			Name:                 busName,
			SubscriberBufferSize: subscriberBuffer,
			BlockOnFull:          true,
			WriteTimeout:         writeTimeout,
			HistorySize:          historySize,
			Registry:             options.Registry,
			Logger:               logger,
		}),
		logger: logger,
	}
}

// FieldChanged reports that one snapshot field took a new value.
func (n *Notifier) FieldChanged(source, field, path string) {
	evt := event.NewChangeEvent(event.TypeFieldChanged, source)
	evt.Field = field
	evt.Path = path
	n.publish(evt)
}

// AssetsChanged asks consumers to re-resolve every image binding.
func (n *Notifier) AssetsChanged(source, path string) {
	evt := event.NewChangeEvent(event.TypeAssetsChanged, source)
	evt.Path = path
	n.publish(evt)
}

// ConfigChanged reports one whole-file config reload.
func (n *Notifier) ConfigChanged(source, path string, sections []string, resolutionChanged bool) {
	evt := event.NewChangeEvent(event.TypeConfigChanged, source)
	evt.Path = path
	evt.Sections = append([]string(nil), sections...)
	evt.ResolutionChanged = resolutionChanged
	n.publish(evt)
}

func (n *Notifier) Subscribe(eventTypes ...string) (<-chan event.ChangeEvent, func()) {
	if n == nil {
		ch := make(chan event.ChangeEvent)
		close(ch)
		return ch, func() {}
	}
	return n.bus.SubscribeTypes(eventTypes...)
}

// History returns the most recent change events, oldest first.
func (n *Notifier) History() []event.ChangeEvent {
	if n == nil {
		return nil
	}
	return n.bus.DumpHistory()
}

func (n *Notifier) Close() {
	if n == nil {
		return
	}
	n.bus.Close()
}

func (n *Notifier) publish(evt event.ChangeEvent) {
	if n == nil {
		return
	}
	evt.ID = uuid.NewString()
	n.bus.Publish(evt)
}
