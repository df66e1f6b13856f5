// Package metrics provides counters, Prometheus collectors, and HTTP
// handlers for exporting notification delivery metrics.
package metrics

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 1. Internal State (Source of Truth)
var (
	delivered      int64
	failed         int64
	skipped        int64
	gatewayAccepts int64
	gatewayRejects int64
	lastDelivery   int64
)

const counterInc int64 = 1

// 2. Prometheus Collectors
var (
	promAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buildmate_notify_attempts_total",
			Help: "Channel delivery attempts by channel and outcome",
		},
		[]string{"channel", "outcome"},
	)
	promGatewayRelays = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buildmate_notify_sms_gateway_relays_total",
			Help: "Email-to-SMS gateway relay attempts by status",
		},
		[]string{"status"},
	)
	promDeliveryDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name: "buildmate_notify_delivery_duration_seconds",
			Help: "Duration of full fallback-chain delivery calls",
			Buckets: []float64{
				0.05,
				0.1,
				0.25,
				0.5,
				1,
				2,
				5,
				10,
				30,
			},
		},
	)
	promLastDelivery = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "buildmate_notify_last_delivery_timestamp_seconds",
			Help: "Unix timestamp of the last delivery call",
		},
	)
)

func init() {
	prometheus.MustRegister(
		promAttempts,
		promGatewayRelays,
		promDeliveryDuration,
		promLastDelivery,
	)
}

// 3. Public API (Updates both Atomic and Prometheus)

// IncDelivered increments the delivered counter for a channel.
func IncDelivered(channel string) {
	atomic.AddInt64(&delivered, counterInc)
	promAttempts.WithLabelValues(channel, "delivered").Inc()
}

// IncFailed increments the failed counter for a channel.
func IncFailed(channel string) {
	atomic.AddInt64(&failed, counterInc)
	promAttempts.WithLabelValues(channel, "failed").Inc()
}

// IncSkipped increments the skipped counter for a channel.
func IncSkipped(channel string) {
	atomic.AddInt64(&skipped, counterInc)
	promAttempts.WithLabelValues(channel, "skipped").Inc()
}

// IncGatewayAccept increments the counter for accepted SMS gateway relays.
func IncGatewayAccept() {
	atomic.AddInt64(&gatewayAccepts, counterInc)
	promGatewayRelays.WithLabelValues("accepted").Inc()
}

// IncGatewayReject increments the counter for rejected SMS gateway relays.
func IncGatewayReject() {
	atomic.AddInt64(&gatewayRejects, counterInc)
	promGatewayRelays.WithLabelValues("rejected").Inc()
}

// ObserveDeliveryDuration records the duration (in seconds) of one full
// delivery call in the Prometheus histogram.
func ObserveDeliveryDuration(seconds float64) {
	promDeliveryDuration.Observe(seconds)
}

// SetLastDelivery stores the provided time as the last delivery timestamp
// and updates the corresponding Prometheus gauge.
func SetLastDelivery(t time.Time) {
	atomic.StoreInt64(&lastDelivery, t.Unix())
	promLastDelivery.Set(float64(t.Unix()))
}

// 4. JSON Snapshot Struct (For simple scrapers)

// StatsSnapshot is a snapshot of metrics for JSON encoding.
type StatsSnapshot struct {
	Delivered         int64  `json:"delivered"`
	Failed            int64  `json:"failed"`
	Skipped           int64  `json:"skipped"`
	GatewayAccepts    int64  `json:"gateway_accepts"`
	GatewayRejects    int64  `json:"gateway_rejects"`
	LastDelivery      int64  `json:"last_delivery_timestamp"`
	LastDeliveryHuman string `json:"last_delivery_human"`
}

// GetSnapshot returns a StatsSnapshot with the current values of all
// internal counters and timestamps.
func GetSnapshot() StatsSnapshot {
	ts := atomic.LoadInt64(&lastDelivery)
	return StatsSnapshot{
		Delivered:         atomic.LoadInt64(&delivered),
		Failed:            atomic.LoadInt64(&failed),
		Skipped:           atomic.LoadInt64(&skipped),
		GatewayAccepts:    atomic.LoadInt64(&gatewayAccepts),
		GatewayRejects:    atomic.LoadInt64(&gatewayRejects),
		LastDelivery:      ts,
		LastDeliveryHuman: time.Unix(ts, 0).Format(time.RFC3339),
	}
}

// 5. Handlers

// PromHandler returns an HTTP handler that exposes Prometheus metrics.
func PromHandler() http.Handler { return promhttp.Handler() }

// JSONHandler returns an HTTP handler that serves the current metrics as
// a JSON-encoded StatsSnapshot.
func JSONHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(GetSnapshot())
	})
}
