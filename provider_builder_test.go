package pennon

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pennon-io/openfeature-provider-go/internal/testutil"
	"github.com/pennon-io/openfeature-provider-go/sdk"
)

func TestNewProvider_RequiresClientFactory(t *testing.T) {
	_, err := NewProvider(ProviderConfig{Config: sdk.Config{APIKey: "test-key"}})
	if err == nil {
		t.Fatal("Expected an error for a missing ClientFactory")
	}
	if err.Error() != "ClientFactory is required" {
		t.Errorf("Expected 'ClientFactory is required', got: %v", err)
	}
}

func TestNewProvider_Defaults(t *testing.T) {
	t.Setenv(initializationTimeoutEnvVar, "")

	provider := newTestProvider(t, &testutil.MockClient{})

	if provider.initTimeout != DefaultInitializationTimeout {
		t.Errorf("Expected timeout %v, got %v", DefaultInitializationTimeout, provider.initTimeout)
	}
	if provider.logger == nil {
		t.Error("Expected a default logger")
	}
	if provider.metrics == nil {
		t.Error("Expected metrics to be constructed")
	}
	if provider.tracer == nil {
		t.Error("Expected a tracer from the global provider")
	}
	if provider.events == nil || provider.eventChannel == nil {
		t.Error("Expected the event emitter to be wired")
	}
	if provider.instanceID == "" {
		t.Error("Expected a non-empty instance ID")
	}

	other := newTestProvider(t, &testutil.MockClient{})
	if other.instanceID == provider.instanceID {
		t.Error("Expected each provider to get a distinct instance ID")
	}
}

func TestNewProvider_EnvironmentTimeout(t *testing.T) {
	t.Setenv(initializationTimeoutEnvVar, "1500")

	provider := newTestProvider(t, &testutil.MockClient{})
	if provider.initTimeout != 1500*time.Millisecond {
		t.Errorf("Expected the environment override 1500ms, got %v", provider.initTimeout)
	}
}

func TestNewProvider_ExplicitTimeoutWinsOverEnvironment(t *testing.T) {
	t.Setenv(initializationTimeoutEnvVar, "1500")

	provider, err := NewProvider(ProviderConfig{
		ClientFactory:         factoryFor(&testutil.MockClient{}),
		InitializationTimeout: 250 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Expected provider to be created, got: %v", err)
	}
	if provider.initTimeout != 250*time.Millisecond {
		t.Errorf("Expected the explicit timeout to win, got %v", provider.initTimeout)
	}
}

func TestInitializationTimeoutFromEnv(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	testCases := []struct {
		name     string
		value    string
		expected time.Duration
	}{
		{name: "Unset", value: "", expected: DefaultInitializationTimeout},
		{name: "Valid override", value: "1500", expected: 1500 * time.Millisecond},
		{name: "Non-numeric", value: "abc", expected: DefaultInitializationTimeout},
		{name: "Negative", value: "-100", expected: DefaultInitializationTimeout},
		{name: "Zero", value: "0", expected: DefaultInitializationTimeout},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(initializationTimeoutEnvVar, tc.value)
			if got := initializationTimeoutFromEnv(logger); got != tc.expected {
				t.Errorf("Expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestNewProvider_MetricsRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	provider, err := NewProvider(ProviderConfig{
		ClientFactory:     factoryFor(&testutil.MockClient{}),
		MetricsRegisterer: registry,
	})
	if err != nil {
		t.Fatalf("Expected provider to be created, got: %v", err)
	}

	// Trip the readiness gate so at least one counter has a sample.
	provider.BooleanEvaluation(context.Background(), "bool-flag", false, testFlattenedContext())

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Expected Gather to succeed, got: %v", err)
	}
	names := make(map[string]bool, len(families))
	for _, family := range families {
		names[family.GetName()] = true
	}
	if !names["pennon_provider_evaluations_total"] {
		t.Errorf("Expected pennon_provider_evaluations_total to be registered, got %v", names)
	}
}

// TestNewProvider_SharedMetricsRegistry verifies two providers can register
// their collectors on the same Registerer; each gets its own instance_id
// series.
func TestNewProvider_SharedMetricsRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()

	for i := 0; i < 2; i++ {
		if _, err := NewProvider(ProviderConfig{
			ClientFactory:     factoryFor(&testutil.MockClient{}),
			MetricsRegisterer: registry,
		}); err != nil {
			t.Fatalf("Expected provider %d to be created, got: %v", i+1, err)
		}
	}
}
