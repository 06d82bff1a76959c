package pennon

import (
	"testing"

	"github.com/open-feature/go-sdk/openfeature"

	"github.com/pennon-io/openfeature-provider-go/internal/testutil"
)

func TestEventEmitter_FanOut(t *testing.T) {
	emitter := newEventEmitter()
	first := emitter.subscribe()
	second := emitter.subscribe()

	event := openfeature.Event{ProviderName: providerName, EventType: openfeature.ProviderReady}
	if dropped := emitter.emit(event); dropped != 0 {
		t.Errorf("Expected no drops, got %d", dropped)
	}

	for i, ch := range []<-chan openfeature.Event{first, second} {
		got := testutil.AwaitEvent(t, ch, openfeature.ProviderReady)
		if got.ProviderName != providerName {
			t.Errorf("Expected subscriber %d to receive the event, got %+v", i, got)
		}
	}
}

func TestEventEmitter_NoSubscribers(t *testing.T) {
	emitter := newEventEmitter()
	if dropped := emitter.emit(openfeature.Event{EventType: openfeature.ProviderReady}); dropped != 0 {
		t.Errorf("Expected no drops without subscribers, got %d", dropped)
	}
}

func TestEventEmitter_DropsWhenFull(t *testing.T) {
	emitter := newEventEmitter()
	ch := emitter.subscribe()

	for i := 0; i < defaultEventBuffer; i++ {
		if dropped := emitter.emit(openfeature.Event{EventType: openfeature.ProviderReady}); dropped != 0 {
			t.Fatalf("Expected buffered send %d to succeed, got %d drops", i, dropped)
		}
	}
	if dropped := emitter.emit(openfeature.Event{EventType: openfeature.ProviderReady}); dropped != 1 {
		t.Errorf("Expected one drop on a full subscriber, got %d", dropped)
	}

	// The backlog survives the overflow untouched.
	for i := 0; i < defaultEventBuffer; i++ {
		select {
		case <-ch:
		default:
			t.Fatalf("Expected %d buffered events, drained only %d", defaultEventBuffer, i)
		}
	}
	select {
	case extra := <-ch:
		t.Errorf("Expected the overflow event to be dropped, got %+v", extra)
	default:
	}
}

func TestProvider_EventChannelIsStable(t *testing.T) {
	provider := newTestProvider(t, &testutil.MockClient{})
	if provider.EventChannel() != provider.EventChannel() {
		t.Error("Expected EventChannel to return the same channel across calls")
	}
}
