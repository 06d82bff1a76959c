package pennon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/pennon-io/openfeature-provider-go/sdk"
)

// DefaultInitializationTimeout bounds the readiness wait performed during
// Init when ProviderConfig.InitializationTimeout is zero.
const DefaultInitializationTimeout = 60 * time.Second

// initializationTimeoutEnvVar overrides the default readiness wait, in
// milliseconds. Invalid values are ignored with a warning. An explicit
// ProviderConfig.InitializationTimeout always wins over the environment.
const initializationTimeoutEnvVar = "PENNON_INITIALIZATION_TIMEOUT_MS"

// ClientFactory constructs the wrapped SDK client during Init. It doubles
// as the test seam: a factory returning a prepared double keeps provider
// behavior testable without the real SDK.
type ClientFactory func(ctx context.Context, config sdk.Config) (sdk.Client, error)

type ProviderConfig struct {
	// Config is handed to the ClientFactory. Its SourceID and SDKVersion
	// fields are overwritten with this wrapper's identity first.
	Config sdk.Config

	// ClientFactory constructs the wrapped SDK client. Required.
	ClientFactory ClientFactory

	// InitializationTimeout bounds the readiness wait during Init. Zero
	// means DefaultInitializationTimeout or the environment override.
	InitializationTimeout time.Duration

	Logger *slog.Logger

	// MetricsRegisterer receives the provider's Prometheus collectors,
	// labeled with the provider instance ID so several providers can share
	// one Registerer. Nil leaves them unregistered.
	MetricsRegisterer prometheus.Registerer

	// TracerProvider supplies the tracer for evaluation spans. Nil uses
	// the global provider.
	TracerProvider trace.TracerProvider
}

// NewProvider creates a Provider. The wrapped client is not constructed
// here; that happens in Init, once the OpenFeature SDK hands over the
// evaluation context.
func NewProvider(config ProviderConfig) (*Provider, error) {
	if config.ClientFactory == nil {
		return nil, fmt.Errorf("ClientFactory is required")
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	timeout := config.InitializationTimeout
	if timeout <= 0 {
		timeout = initializationTimeoutFromEnv(logger)
	}

	tracerProvider := config.TracerProvider
	if tracerProvider == nil {
		tracerProvider = otel.GetTracerProvider()
	}

	instanceID := newInstanceID()
	events := newEventEmitter()

	return &Provider{
		sdkConfig:     config.Config,
		clientFactory: config.ClientFactory,
		initTimeout:   timeout,
		logger:        logger.With("provider", providerName, "instance_id", instanceID),
		instanceID:    instanceID,
		events:        events,
		eventChannel:  events.subscribe(),
		metrics:       newProviderMetrics(config.MetricsRegisterer, instanceID),
		tracer:        tracerProvider.Tracer(tracerName),
	}, nil
}

// initializationTimeoutFromEnv reads the timeout override from the
// environment, falling back to DefaultInitializationTimeout.
func initializationTimeoutFromEnv(logger *slog.Logger) time.Duration {
	envVal := os.Getenv(initializationTimeoutEnvVar)
	if envVal == "" {
		return DefaultInitializationTimeout
	}
	millis, err := strconv.ParseInt(envVal, 10, 64)
	if err != nil || millis <= 0 {
		logger.Warn("Ignoring invalid initialization timeout override", "value", envVal)
		return DefaultInitializationTimeout
	}
	return time.Duration(millis) * time.Millisecond
}
