package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/open-feature/go-sdk/openfeature"

	"github.com/pennon-io/openfeature-provider-go/sdk"
)

// RecordedCall captures one variation call received by MockClient.
type RecordedCall struct {
	Method       string
	User         sdk.User
	FeatureID    string
	DefaultValue interface{}
}

// MockClient is a hand-rolled sdk.Client double. Responses are configured
// per value kind; with no response configured a call echoes its default
// with reason DEFAULT. All calls are recorded.
type MockClient struct {
	mu           sync.Mutex
	calls        []RecordedCall
	waitCalls    int
	destroyCalls int

	BooleanResponse *sdk.VariationDetails[bool]
	StringResponse  *sdk.VariationDetails[string]
	NumberResponse  *sdk.VariationDetails[float64]
	ObjectResponse  *sdk.VariationDetails[interface{}]

	WaitFunc    func(ctx context.Context, timeout time.Duration) error
	DestroyFunc func()
}

func (m *MockClient) BooleanVariationDetails(_ context.Context, user sdk.User, featureID string, defaultValue bool) sdk.VariationDetails[bool] {
	m.record("BooleanVariationDetails", user, featureID, defaultValue)
	if m.BooleanResponse != nil {
		return *m.BooleanResponse
	}
	return defaultDetails(user, featureID, defaultValue)
}

func (m *MockClient) StringVariationDetails(_ context.Context, user sdk.User, featureID string, defaultValue string) sdk.VariationDetails[string] {
	m.record("StringVariationDetails", user, featureID, defaultValue)
	if m.StringResponse != nil {
		return *m.StringResponse
	}
	return defaultDetails(user, featureID, defaultValue)
}

func (m *MockClient) NumberVariationDetails(_ context.Context, user sdk.User, featureID string, defaultValue float64) sdk.VariationDetails[float64] {
	m.record("NumberVariationDetails", user, featureID, defaultValue)
	if m.NumberResponse != nil {
		return *m.NumberResponse
	}
	return defaultDetails(user, featureID, defaultValue)
}

func (m *MockClient) ObjectVariationDetails(_ context.Context, user sdk.User, featureID string, defaultValue interface{}) sdk.VariationDetails[interface{}] {
	m.record("ObjectVariationDetails", user, featureID, defaultValue)
	if m.ObjectResponse != nil {
		return *m.ObjectResponse
	}
	return defaultDetails(user, featureID, defaultValue)
}

func (m *MockClient) WaitForInitialization(ctx context.Context, timeout time.Duration) error {
	m.mu.Lock()
	m.waitCalls++
	m.mu.Unlock()

	if m.WaitFunc != nil {
		return m.WaitFunc(ctx, timeout)
	}
	return nil
}

func (m *MockClient) Destroy() {
	m.mu.Lock()
	m.destroyCalls++
	m.mu.Unlock()

	if m.DestroyFunc != nil {
		m.DestroyFunc()
	}
}

func (m *MockClient) record(method string, user sdk.User, featureID string, defaultValue interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, RecordedCall{
		Method:       method,
		User:         user,
		FeatureID:    featureID,
		DefaultValue: defaultValue,
	})
}

// Calls returns a copy of all recorded variation calls.
func (m *MockClient) Calls() []RecordedCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]RecordedCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// CallsTo returns how many variation calls reached the given method.
func (m *MockClient) CallsTo(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, call := range m.calls {
		if call.Method == method {
			count++
		}
	}
	return count
}

// WaitCalls returns how many times WaitForInitialization was called.
func (m *MockClient) WaitCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.waitCalls
}

// DestroyCalls returns how many times Destroy was called.
func (m *MockClient) DestroyCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.destroyCalls
}

func defaultDetails[T any](user sdk.User, featureID string, defaultValue T) sdk.VariationDetails[T] {
	return sdk.VariationDetails[T]{
		FeatureID:      featureID,
		UserID:         user.ID,
		VariationValue: defaultValue,
		Reason:         sdk.ReasonDefault,
	}
}

// AwaitEvent reads events from ch until one of the wanted type arrives,
// failing the test after one second.
func AwaitEvent(t *testing.T, ch <-chan openfeature.Event, want openfeature.EventType) openfeature.Event {
	t.Helper()
	deadline := time.After(1 * time.Second)
	for {
		select {
		case event := <-ch:
			if event.EventType == want {
				return event
			}
		case <-deadline:
			t.Fatalf("Timed out waiting for %s event", want)
			return openfeature.Event{}
		}
	}
}

// ExpectNoEvent fails the test if an event is already waiting on ch.
func ExpectNoEvent(t *testing.T, ch <-chan openfeature.Event) {
	t.Helper()
	select {
	case event := <-ch:
		t.Fatalf("Expected no event, got %s (%s)", event.EventType, event.Message)
	default:
	}
}
