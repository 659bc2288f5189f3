package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	ServiceName string
}

// InitMetrics initializes the Prometheus exporter and returns the handler
// serving the /metrics endpoint.
func InitMetrics(_ MetricsConfig) (*sdkmetric.MeterProvider, http.Handler, error) {
	exporter, err := promexporter.New()
	if err != nil {
		return nil, nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)

	return provider, promhttp.Handler(), nil
}

// Reconciliation and gateway counters. Background reconciliation failures
// are invisible to end users, so these are the operational window into the
// webhook+poll merge (outcomes: applied, duplicate, unknown_reference,
// failed, error).
var (
	ReconciliationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agriloan",
		Name:      "reconciliations_total",
		Help:      "Reconciliation attempts by outcome.",
	}, []string{"outcome"})

	GatewayRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agriloan",
		Name:      "gateway_requests_total",
		Help:      "Outbound mobile-money gateway calls by operation and result.",
	}, []string{"operation", "result"})

	NotificationFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "agriloan",
		Name:      "notification_failures_total",
		Help:      "SMS sends that failed and were dropped.",
	})
)
