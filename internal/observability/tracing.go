package observability

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationPrefix = "github.com/noah-isme/quiz-api/internal/"

// Tracer returns the tracer for an instrumented package, e.g. Tracer("service/grading").
// Spans are no-ops until a tracer provider is installed with otel.SetTracerProvider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(instrumentationPrefix + name)
}
