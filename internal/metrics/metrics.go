package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var durationBuckets = []float64{
	0.001, // 1ms
	0.005, // 5ms
	0.01,  // 10ms
	0.025, // 25ms
	0.05,  // 50ms
	0.1,   // 100ms
	0.25,  // 250ms
	0.5,   // 500ms
	1.0,   // 1s
	2.5,   // 2.5s
	5.0,   // 5s
	10.0,  // 10s
}

var (
	// RedeemDuration tracks the latency of unit redemption requests
	RedeemDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redeem_duration_seconds",
			Help:    "Duration of redemption requests in seconds",
			Buckets: durationBuckets,
		},
		[]string{"status"}, // success or rejection reason
	)

	// RefundDuration tracks the latency of refund processing
	RefundDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "refund_duration_seconds",
			Help:    "Duration of refund requests in seconds",
			Buckets: durationBuckets,
		},
		[]string{"status"},
	)
)

// RecordRedeemDuration records the duration of a redemption request
func RecordRedeemDuration(status string, duration float64) {
	RedeemDuration.WithLabelValues(status).Observe(duration)
}

// RecordRefundDuration records the duration of a refund request
func RecordRefundDuration(status string, duration float64) {
	RefundDuration.WithLabelValues(status).Observe(duration)
}
