package pennon

import (
	"sync"

	"github.com/open-feature/go-sdk/openfeature"
)

// defaultEventBuffer bounds each subscriber channel. Sends never block: when
// a subscriber falls this far behind, further events are dropped and counted
// instead of stalling an Init or evaluation call.
const defaultEventBuffer = 16

// eventMetadataInstanceID keys the provider instance ID in event metadata.
const eventMetadataInstanceID = "instance_id"

// eventEmitter fans lifecycle events out to registered observers. Each
// provider instance owns exactly one emitter; there is no process-wide
// event bus.
type eventEmitter struct {
	mu          sync.Mutex
	subscribers []chan openfeature.Event
}

func newEventEmitter() *eventEmitter {
	return &eventEmitter{}
}

// subscribe registers a new observer channel. The channel is never closed;
// observers simply stop reading when they are done.
func (e *eventEmitter) subscribe() <-chan openfeature.Event {
	ch := make(chan openfeature.Event, defaultEventBuffer)
	e.mu.Lock()
	e.subscribers = append(e.subscribers, ch)
	e.mu.Unlock()
	return ch
}

// emit delivers event to every subscriber without blocking and returns the
// number of subscribers that missed it.
func (e *eventEmitter) emit(event openfeature.Event) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	dropped := 0
	for _, sub := range e.subscribers {
		select {
		case sub <- event:
		default:
			dropped++
		}
	}
	return dropped
}

// EventChannel exposes lifecycle events to the OpenFeature SDK (part of
// EventHandler interface).
func (p *Provider) EventChannel() <-chan openfeature.Event {
	return p.eventChannel
}

func (p *Provider) emitReady(message string) {
	p.emit(openfeature.Event{
		ProviderName: providerName,
		EventType:    openfeature.ProviderReady,
		ProviderEventDetails: openfeature.ProviderEventDetails{
			Message:       message,
			EventMetadata: map[string]interface{}{eventMetadataInstanceID: p.instanceID},
		},
	})
}

func (p *Provider) emitError(message string, code openfeature.ErrorCode) {
	p.emit(openfeature.Event{
		ProviderName: providerName,
		EventType:    openfeature.ProviderError,
		ProviderEventDetails: openfeature.ProviderEventDetails{
			Message:       message,
			ErrorCode:     code,
			EventMetadata: map[string]interface{}{eventMetadataInstanceID: p.instanceID},
		},
	})
}

func (p *Provider) emit(event openfeature.Event) {
	dropped := p.events.emit(event)
	p.metrics.recordEvent(string(event.EventType), dropped)
}
