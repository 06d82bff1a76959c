package pennon

import (
	"context"

	"github.com/open-feature/go-sdk/openfeature"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation scope reported on evaluation spans.
const tracerName = "github.com/pennon-io/openfeature-provider-go"

// startEvaluationSpan opens a span for one flag evaluation, tagged with the
// OpenTelemetry feature-flag semantic attributes.
func (p *Provider) startEvaluationSpan(ctx context.Context, flag string) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, "pennon.evaluate",
		trace.WithAttributes(
			attribute.String("feature_flag.key", flag),
			attribute.String("feature_flag.provider_name", providerName),
		),
	)
}

// endEvaluationSpan records the outcome on the span before closing it.
func endEvaluationSpan(span trace.Span, detail openfeature.ProviderResolutionDetail) {
	if detail.Variant != "" {
		span.SetAttributes(attribute.String("feature_flag.variant", detail.Variant))
	}
	if hasResolutionError(detail) {
		span.SetStatus(codes.Error, detail.ResolutionError.Error())
	}
	span.End()
}
