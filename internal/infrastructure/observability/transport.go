package observability

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/cassiomorais/yamoney/pkg/yamoney"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/cassiomorais/yamoney"

// InstrumentedTransport records metrics and a span for every call of the
// wrapped transport.
type InstrumentedTransport struct {
	next    yamoney.Transport
	metrics *Metrics
	tracer  trace.Tracer
}

var _ yamoney.Transport = (*InstrumentedTransport)(nil)

// NewInstrumentedTransport wraps next. A nil tp uses the global provider.
func NewInstrumentedTransport(next yamoney.Transport, m *Metrics, tp trace.TracerProvider) *InstrumentedTransport {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &InstrumentedTransport{
		next:    next,
		metrics: m,
		tracer:  tp.Tracer(instrumentationName),
	}
}

func (t *InstrumentedTransport) Call(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	ctx, span := t.tracer.Start(ctx, endpoint, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	start := time.Now()
	body, err := t.next.Call(ctx, endpoint, params)
	t.observe(span, endpoint, start, err)

	if err == nil && endpoint == yamoney.EndpointOperationHistory {
		t.metrics.HistoryPages.Inc()
	}
	return body, err
}

func (t *InstrumentedTransport) Redirect(ctx context.Context, endpoint string, params url.Values) (string, error) {
	ctx, span := t.tracer.Start(ctx, endpoint, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	start := time.Now()
	location, err := t.next.Redirect(ctx, endpoint, params)
	t.observe(span, endpoint, start, err)
	return location, err
}

func (t *InstrumentedTransport) observe(span trace.Span, endpoint string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "network_error"
		var e *yamoney.Error
		if errors.As(err, &e) && e.StatusCode != 0 {
			span.SetAttributes(attribute.Int("http.response.status_code", e.StatusCode))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	span.SetAttributes(attribute.String("yamoney.endpoint", endpoint))
	t.metrics.RequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	t.metrics.RequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}
