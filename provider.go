package pennon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/open-feature/go-sdk/openfeature"
	"go.opentelemetry.io/otel/trace"

	"github.com/pennon-io/openfeature-provider-go/sdk"
)

// Provider implements the OpenFeature FeatureProvider interface on top of
// the Pennon server-side SDK. It is a server provider: evaluation contexts
// arrive per call and are never pinned to the provider.
//
// Lifecycle is owned by the OpenFeature SDK through the StateHandler
// interface: Init constructs the wrapped client, Shutdown destroys it.
// Evaluation methods require the client handle and fail with
// PROVIDER_NOT_READY without one.
type Provider struct {
	sdkConfig     sdk.Config
	clientFactory ClientFactory
	initTimeout   time.Duration
	logger        *slog.Logger
	instanceID    string

	holder       clientHolder
	events       *eventEmitter
	eventChannel <-chan openfeature.Event
	metrics      *providerMetrics
	tracer       trace.Tracer
}

// Compile-time interface conformance checks
var (
	_ openfeature.FeatureProvider = (*Provider)(nil)
	_ openfeature.StateHandler    = (*Provider)(nil)
	_ openfeature.EventHandler    = (*Provider)(nil)
)

// Metadata returns the provider metadata
func (p *Provider) Metadata() openfeature.Metadata {
	return openfeature.Metadata{
		Name: providerName,
	}
}

// BooleanEvaluation evaluates a boolean flag
func (p *Provider) BooleanEvaluation(
	ctx context.Context,
	flag string,
	defaultValue bool,
	evalCtx openfeature.FlattenedContext,
) openfeature.BoolResolutionDetail {
	value, detail := resolveTyped(p, ctx, kindLabelBoolean, flag, defaultValue, evalCtx,
		func(ctx context.Context, client sdk.Client, user sdk.User) sdk.VariationDetails[bool] {
			return client.BooleanVariationDetails(ctx, user, flag, defaultValue)
		})

	return openfeature.BoolResolutionDetail{
		Value:                    value,
		ProviderResolutionDetail: detail,
	}
}

// StringEvaluation evaluates a string flag
func (p *Provider) StringEvaluation(
	ctx context.Context,
	flag string,
	defaultValue string,
	evalCtx openfeature.FlattenedContext,
) openfeature.StringResolutionDetail {
	value, detail := resolveTyped(p, ctx, kindLabelString, flag, defaultValue, evalCtx,
		func(ctx context.Context, client sdk.Client, user sdk.User) sdk.VariationDetails[string] {
			return client.StringVariationDetails(ctx, user, flag, defaultValue)
		})

	return openfeature.StringResolutionDetail{
		Value:                    value,
		ProviderResolutionDetail: detail,
	}
}

// FloatEvaluation evaluates a float flag
func (p *Provider) FloatEvaluation(
	ctx context.Context,
	flag string,
	defaultValue float64,
	evalCtx openfeature.FlattenedContext,
) openfeature.FloatResolutionDetail {
	value, detail := resolveTyped(p, ctx, kindLabelFloat, flag, defaultValue, evalCtx,
		func(ctx context.Context, client sdk.Client, user sdk.User) sdk.VariationDetails[float64] {
			return client.NumberVariationDetails(ctx, user, flag, defaultValue)
		})

	return openfeature.FloatResolutionDetail{
		Value:                    value,
		ProviderResolutionDetail: detail,
	}
}

// IntEvaluation evaluates an int flag. The wrapped SDK speaks float64 for
// numbers; results that do not round-trip through int64 fail as a type
// mismatch.
func (p *Provider) IntEvaluation(
	ctx context.Context,
	flag string,
	defaultValue int64,
	evalCtx openfeature.FlattenedContext,
) openfeature.IntResolutionDetail {
	start := time.Now()
	ctx, span := p.startEvaluationSpan(ctx, flag)

	value, detail := resolveValue(p, ctx, float64(defaultValue), evalCtx,
		func(ctx context.Context, client sdk.Client, user sdk.User) sdk.VariationDetails[float64] {
			return client.NumberVariationDetails(ctx, user, flag, float64(defaultValue))
		})

	intValue := defaultValue
	if !hasResolutionError(detail) {
		if converted := int64(value); float64(converted) == value {
			intValue = converted
		} else {
			detail = openfeature.ProviderResolutionDetail{
				Reason:          openfeature.ErrorReason,
				ResolutionError: openfeature.NewTypeMismatchResolutionError("value is not an integer"),
			}
		}
	}

	p.logResolutionErrorIfPresent(flag, detail)
	p.metrics.recordEvaluation(kindLabelInt, outcomeLabel(detail), time.Since(start))
	endEvaluationSpan(span, detail)

	return openfeature.IntResolutionDetail{
		Value:                    intValue,
		ProviderResolutionDetail: detail,
	}
}

// ObjectEvaluation evaluates an object or array flag.
//
// Static typing stops at this boundary: the wrapped value crossed the
// client's serialization boundary, so the adapter validates it at runtime.
// The caller's default must itself be an object or array; that guard runs
// before anything is sent to the wrapped client. Only the outermost
// array-versus-object shape of the result is checked against the default;
// nested element and property types are never validated.
func (p *Provider) ObjectEvaluation(
	ctx context.Context,
	flag string,
	defaultValue interface{},
	evalCtx openfeature.FlattenedContext,
) openfeature.InterfaceResolutionDetail {
	start := time.Now()
	ctx, span := p.startEvaluationSpan(ctx, flag)

	detail := p.resolveObject(ctx, flag, defaultValue, evalCtx)

	p.logResolutionErrorIfPresent(flag, detail.ProviderResolutionDetail)
	p.metrics.recordEvaluation(kindLabelObject, outcomeLabel(detail.ProviderResolutionDetail), time.Since(start))
	endEvaluationSpan(span, detail.ProviderResolutionDetail)
	return detail
}

// resolveObject runs the object validation pipeline. Type mismatches are
// data outcomes carrying the caller's original default, never Go errors.
func (p *Provider) resolveObject(
	ctx context.Context,
	flag string,
	defaultValue interface{},
	evalCtx openfeature.FlattenedContext,
) openfeature.InterfaceResolutionDetail {
	if err := checkObjectDefault(defaultValue); err != nil {
		return objectMismatch(defaultValue, err)
	}

	client, resErr := p.requiredClient()
	if resErr != nil {
		return openfeature.InterfaceResolutionDetail{
			Value:                    defaultValue,
			ProviderResolutionDetail: errorDetail(*resErr),
		}
	}

	user, resErr := toUser(evalCtx)
	if resErr != nil {
		return openfeature.InterfaceResolutionDetail{
			Value:                    defaultValue,
			ProviderResolutionDetail: errorDetail(*resErr),
		}
	}

	details := client.ObjectVariationDetails(ctx, user, flag, defaultValue)

	if err := checkObjectResult(defaultValue, details.VariationValue); err != nil {
		return objectMismatch(defaultValue, err)
	}

	return openfeature.InterfaceResolutionDetail{
		Value:                    details.VariationValue,
		ProviderResolutionDetail: successDetail(details),
	}
}

// Hooks returns provider hooks (none for this implementation)
func (p *Provider) Hooks() []openfeature.Hook {
	return []openfeature.Hook{}
}

// Init constructs the wrapped client and waits for its readiness (part of
// StateHandler interface).
//
// The handle is stored before the readiness wait and survives a failed
// one. After a timeout the provider still signals Ready and serves
// evaluations from the possibly not-yet-synced client. After any other
// wait failure Init reports PROVIDER_FATAL, yet the handle stays set;
// callers wanting a clean slate must call Shutdown. A panic out of the
// factory or the wait is contained and reported as PROVIDER_FATAL too.
func (p *Provider) Init(evaluationContext openfeature.EvaluationContext) (err error) {
	ctx := context.Background()
	defer func() {
		if r := recover(); r != nil {
			message := fmt.Sprintf("Init panicked: %v", r)
			p.logger.Error("Recovered from panic during initialization", "panic", r)
			p.metrics.recordInit(initResultFatal)
			p.emitError(message, openfeature.ProviderFatalCode)
			err = &openfeature.ProviderInitError{
				ErrorCode: openfeature.ProviderFatalCode,
				Message:   message,
			}
		}
	}()

	if isAbsentContext(evaluationContext) {
		p.metrics.recordInit(initResultInvalidContext)
		return &openfeature.ProviderInitError{
			ErrorCode: openfeature.InvalidContextCode,
			Message:   "evaluation context is required",
		}
	}

	cfg := p.sdkConfig
	cfg.SourceID = sourceIDOpenFeatureGo
	cfg.SDKVersion = Version

	client, err := p.clientFactory(ctx, cfg)
	if err != nil {
		p.logger.Error("Failed to construct wrapped client", "error", err)
		p.metrics.recordInit(initResultFatal)
		p.emitError(fmt.Sprintf("client construction failed: %v", err), openfeature.ProviderFatalCode)
		return &openfeature.ProviderInitError{
			ErrorCode: openfeature.ProviderFatalCode,
			Message:   fmt.Sprintf("client construction failed: %v", err),
		}
	}
	if client == nil {
		p.logger.Error("Client factory returned no client")
		p.metrics.recordInit(initResultFatal)
		p.emitError("client construction failed: factory returned a nil client", openfeature.ProviderFatalCode)
		return &openfeature.ProviderInitError{
			ErrorCode: openfeature.ProviderFatalCode,
			Message:   "client construction failed: factory returned a nil client",
		}
	}

	// Store the handle before the readiness wait; a client that fails the
	// wait below stays reachable.
	p.holder.Set(client)

	err = client.WaitForInitialization(ctx, p.initTimeout)
	switch {
	case err == nil:
		p.logger.Info("Provider initialized successfully")
		p.metrics.recordInit(initResultReady)
		p.emitReady("provider ready")
		return nil
	case errors.Is(err, sdk.ErrInitializeTimeout) || errors.Is(err, context.DeadlineExceeded):
		// The client keeps syncing in the background and may still become
		// usable; a timeout here is a degraded start, not a failure.
		p.logger.Warn("Timed out waiting for client initialization", "timeout", p.initTimeout, "error", err)
		p.metrics.recordInit(initResultTimeout)
		p.emitReady("provider ready, initialization timed out")
		return nil
	default:
		p.logger.Error("Client initialization failed", "error", err)
		p.metrics.recordInit(initResultFatal)
		p.emitError(fmt.Sprintf("client initialization failed: %v", err), openfeature.ProviderFatalCode)
		return &openfeature.ProviderInitError{
			ErrorCode: openfeature.ProviderFatalCode,
			Message:   fmt.Sprintf("client initialization failed: %v", err),
		}
	}
}

// Shutdown tears down the wrapped client (part of StateHandler interface).
// Destroy is best effort; the handle is cleared regardless. Calling
// Shutdown again is a no-op.
func (p *Provider) Shutdown() {
	p.logger.Info("Shutting down provider")

	if client, ok := p.holder.Get(); ok {
		client.Destroy()
		p.logger.Debug("Destroyed wrapped client")
	}
	p.holder.Clear()

	p.logger.Info("Provider has been shut down")
}

// requiredClient returns the wrapped client handle. Every evaluation goes
// through this gate: without a handle the call fails as not ready and an
// Error event is emitted.
func (p *Provider) requiredClient() (sdk.Client, *openfeature.ResolutionError) {
	if client, ok := p.holder.Get(); ok {
		return client, nil
	}

	p.emitError("provider not ready", openfeature.ProviderNotReadyCode)
	resErr := openfeature.NewProviderNotReadyResolutionError("provider not ready")
	return nil, &resErr
}

// resolveTyped runs the instrumented pipeline for the directly projected
// kinds: readiness gate, user translation, client call, and the unchanged
// {value, variant, reason} projection. Go methods cannot be generic, hence
// the free function.
func resolveTyped[T any](
	p *Provider,
	ctx context.Context,
	kind string,
	flag string,
	defaultValue T,
	evalCtx openfeature.FlattenedContext,
	evaluate func(ctx context.Context, client sdk.Client, user sdk.User) sdk.VariationDetails[T],
) (T, openfeature.ProviderResolutionDetail) {
	start := time.Now()
	ctx, span := p.startEvaluationSpan(ctx, flag)

	value, detail := resolveValue(p, ctx, defaultValue, evalCtx, evaluate)

	p.logResolutionErrorIfPresent(flag, detail)
	p.metrics.recordEvaluation(kind, outcomeLabel(detail), time.Since(start))
	endEvaluationSpan(span, detail)
	return value, detail
}

// resolveValue is the uninstrumented core of resolveTyped. IntEvaluation
// wraps it itself so the integer coercion is part of its recorded outcome.
func resolveValue[T any](
	p *Provider,
	ctx context.Context,
	defaultValue T,
	evalCtx openfeature.FlattenedContext,
	evaluate func(ctx context.Context, client sdk.Client, user sdk.User) sdk.VariationDetails[T],
) (T, openfeature.ProviderResolutionDetail) {
	client, resErr := p.requiredClient()
	if resErr != nil {
		return defaultValue, errorDetail(*resErr)
	}

	user, resErr := toUser(evalCtx)
	if resErr != nil {
		return defaultValue, errorDetail(*resErr)
	}

	details := evaluate(ctx, client, user)
	return details.VariationValue, successDetail(details)
}

// successDetail projects a wrapped result's variant and reason unchanged.
func successDetail[T any](details sdk.VariationDetails[T]) openfeature.ProviderResolutionDetail {
	return openfeature.ProviderResolutionDetail{
		Variant: details.VariationName,
		Reason:  openfeature.Reason(details.Reason),
	}
}

func errorDetail(resErr openfeature.ResolutionError) openfeature.ProviderResolutionDetail {
	return openfeature.ProviderResolutionDetail{
		ResolutionError: resErr,
		Reason:          openfeature.ErrorReason,
	}
}

// objectMismatch builds the TYPE_MISMATCH outcome for object flags: the
// caller's original default comes back unchanged.
func objectMismatch(defaultValue interface{}, err error) openfeature.InterfaceResolutionDetail {
	return openfeature.InterfaceResolutionDetail{
		Value: defaultValue,
		ProviderResolutionDetail: openfeature.ProviderResolutionDetail{
			Reason:          openfeature.ErrorReason,
			ResolutionError: openfeature.NewTypeMismatchResolutionError(err.Error()),
		},
	}
}

// isAbsentContext reports whether the host passed no usable context at all.
// Go cannot express an undefined argument, so the zero EvaluationContext
// stands in for absence. A context that merely lacks the targeting key is
// present; that case surfaces per evaluation as TARGETING_KEY_MISSING.
func isAbsentContext(evalCtx openfeature.EvaluationContext) bool {
	return evalCtx.TargetingKey() == "" && len(evalCtx.Attributes()) == 0
}

// hasResolutionError reports whether the detail carries a real error; the
// zero ResolutionError renders as ": ".
func hasResolutionError(detail openfeature.ProviderResolutionDetail) bool {
	errStr := detail.ResolutionError.Error()
	return errStr != "" && errStr != ": "
}

// logResolutionErrorIfPresent logs a warning if the resolution detail
// contains an error
func (p *Provider) logResolutionErrorIfPresent(flag string, detail openfeature.ProviderResolutionDetail) {
	if hasResolutionError(detail) {
		p.logger.Warn("Flag evaluation error", "flag", flag, "error_code", detail.ResolutionError.Error())
	}
}
