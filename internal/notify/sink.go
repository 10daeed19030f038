package notify

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"kiosk/internal/event"
	"kiosk/internal/logging"
)

type Sink interface {
	Emit(ctx context.Context, evt event.ChangeEvent) error
}

type MemorySink struct {
	mu     sync.Mutex
	events []event.ChangeEvent
	err    error
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (sink *MemorySink) Emit(_ context.Context, evt event.ChangeEvent) error {
	if sink == nil {
		return nil
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	sink.events = append(sink.events, evt)
	return sink.err
}

func (sink *MemorySink) Events() []event.ChangeEvent {
	if sink == nil {
		return nil
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	events := make([]event.ChangeEvent, len(sink.events))
	copy(events, sink.events)
	return events
}

func (sink *MemorySink) SetError(err error) {
	if sink == nil {
		return
	}
	sink.mu.Lock()
	sink.err = err
	sink.mu.Unlock()
}

// LogSink writes each change as one info record.
type LogSink struct {
	logger *logging.Logger
}

func NewLogSink(logger *logging.Logger) *LogSink {
	if logger == nil {
		logger = logging.Discard()
	}
	return &LogSink{logger: logger.Category("changes")}
}

func (sink *LogSink) Emit(_ context.Context, evt event.ChangeEvent) error {
	fields := map[string]string{
		"id":     evt.ID,
		"source": evt.Source,
	}
	if evt.Field != "" {
		fields["field"] = evt.Field
	}
	if evt.Path != "" {
		fields["path"] = evt.Path
	}
	if len(evt.Sections) > 0 {
		fields["sections"] = strings.Join(evt.Sections, ",")
	}
	if evt.Type() == event.TypeConfigChanged {
		fields["resolution_changed"] = strconv.FormatBool(evt.ResolutionChanged)
	}
	sink.logger.Info(evt.Type(), fields)
	return nil
}

// Pump forwards change events to sink in publish order until ctx ends or the
// notifier closes. Sink errors are logged and do not stop the pump.
func (n *Notifier) Pump(ctx context.Context, sink Sink) {
	if n == nil || sink == nil {
		return
	}
	events, cancel := n.Subscribe()
	n.pump(ctx, events, cancel, sink)
}

// Attach subscribes sink before returning, so no event published afterwards
// is missed, and pumps in the background. The returned channel closes when
// the pump stops.
func (n *Notifier) Attach(ctx context.Context, sink Sink) <-chan struct{} {
	done := make(chan struct{})
	if n == nil || sink == nil {
		close(done)
		return done
	}
	events, cancel := n.Subscribe()
	go func() {
		defer close(done)
		n.pump(ctx, events, cancel, sink)
	}()
	return done
}

func (n *Notifier) pump(ctx context.Context, events <-chan event.ChangeEvent, cancel func(), sink Sink) {
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if err := sink.Emit(ctx, evt); err != nil {
				n.logger.Warn("change sink failed", map[string]string{
					"type":  evt.Type(),
					"error": err.Error(),
				})
			}
		}
	}
}
