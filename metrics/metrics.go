package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const (
	MeterName = "github.com/kardolus/jssdk"

	resultKey   = "result"
	resultOK    = "ok"
	resultError = "error"
)

// Recorder counts ticket cache and signature activity.
//
// Implementations must be safe for concurrent use and must not panic.
//
//go:generate mockgen -destination=../jssdk/recordermocks_test.go -package=jssdk_test github.com/kardolus/jssdk/metrics Recorder
type Recorder interface {
	CacheHit(ctx context.Context)
	CacheMiss(ctx context.Context)
	TicketFetched(ctx context.Context, err error)
	SignatureIssued(ctx context.Context)
}

type meterRecorder struct {
	cacheLookups metric.Int64Counter
	fetches      metric.Int64Counter
	signatures   metric.Int64Counter
}

// NewRecorder registers the jssdk instruments on meter.
func NewRecorder(meter metric.Meter) (Recorder, error) {
	cacheLookups, err := meter.Int64Counter(
		"jssdk.ticket.cache.lookups",
		metric.WithDescription("Ticket cache lookups by result"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	fetches, err := meter.Int64Counter(
		"jssdk.ticket.fetches",
		metric.WithDescription("Remote ticket requests by result"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	signatures, err := meter.Int64Counter(
		"jssdk.signatures",
		metric.WithDescription("Page signatures issued"),
		metric.WithUnit("{signature}"),
	)
	if err != nil {
		return nil, err
	}

	return &meterRecorder{
		cacheLookups: cacheLookups,
		fetches:      fetches,
		signatures:   signatures,
	}, nil
}

func (m *meterRecorder) CacheHit(ctx context.Context) {
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String(resultKey, "hit")))
}

func (m *meterRecorder) CacheMiss(ctx context.Context) {
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String(resultKey, "miss")))
}

func (m *meterRecorder) TicketFetched(ctx context.Context, err error) {
	result := resultOK
	if err != nil {
		result = resultError
	}
	m.fetches.Add(ctx, 1, metric.WithAttributes(attribute.String(resultKey, result)))
}

func (m *meterRecorder) SignatureIssued(ctx context.Context) {
	m.signatures.Add(ctx, 1)
}

type noopRecorder struct{}

// Noop returns a Recorder that discards everything.
func Noop() Recorder { return noopRecorder{} }

func (noopRecorder) CacheHit(context.Context)             {}
func (noopRecorder) CacheMiss(context.Context)            {}
func (noopRecorder) TicketFetched(context.Context, error) {}
func (noopRecorder) SignatureIssued(context.Context)      {}

// NewPrometheusProvider returns a MeterProvider whose instruments are exposed
// through registry.
func NewPrometheusProvider(registry prometheus.Registerer) (*sdkmetric.MeterProvider, error) {
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}
	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter)), nil
}
