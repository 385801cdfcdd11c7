// Package metrics holds lock-free counters for the exchange's operational
// surface (orders submitted, trades executed, latency), adapted from a
// matching-engine throughput monitor into a ledger-submission-pipeline
// monitor: one metrics instance per Exchange, updated on every completed
// buy/sell submission and cancel, and on every failed operation (a failed
// deposit or withdraw also counts under OrdersRejected). Successful
// deposits and withdrawals are not counted.
package metrics

import (
	"encoding/json"
	"math"
	"sync/atomic"
	"time"
)

// MaxLatencyMicros bounds the latency histogram; anything slower is bucketed
// into the last slot rather than growing the histogram unbounded.
const MaxLatencyMicros = 100000

// Metrics holds thread-safe counters for one Exchange instance.
type Metrics struct {
	StartTime        time.Time
	OrdersSubmitted  atomic.Int64
	OrdersRejected   atomic.Int64
	OrdersFilled     atomic.Int64
	OrdersCanceled   atomic.Int64
	TradesExecuted   atomic.Int64
	TotalLatency     atomic.Int64 // microseconds, across all submissions

	// latencyHistogram[i] counts submissions taking i microseconds; the
	// last slot accumulates everything >= MaxLatencyMicros.
	latencyHistogram [MaxLatencyMicros + 1]atomic.Int64
}

// New returns a fresh, zeroed metrics instance.
func New() *Metrics {
	return &Metrics{StartTime: time.Now()}
}

func (m *Metrics) IncOrdersSubmitted() { m.OrdersSubmitted.Add(1) }
func (m *Metrics) IncOrdersRejected()  { m.OrdersRejected.Add(1) }
func (m *Metrics) IncOrdersCanceled()  { m.OrdersCanceled.Add(1) }
func (m *Metrics) IncOrdersFilled(n int64) {
	if n > 0 {
		m.OrdersFilled.Add(n)
	}
}
func (m *Metrics) IncTradesExecuted(n int64) {
	if n > 0 {
		m.TradesExecuted.Add(n)
	}
}

// AddLatency records one submission's wall-clock cost in microseconds.
func (m *Metrics) AddLatency(micros int64) {
	m.TotalLatency.Add(micros)
	idx := micros
	if idx > MaxLatencyMicros {
		idx = MaxLatencyMicros
	}
	if idx < 0 {
		idx = 0
	}
	m.latencyHistogram[idx].Add(1)
}

func (m *Metrics) percentile(p float64, total int64) float64 {
	if total == 0 {
		return 0
	}
	target := int64(math.Ceil(float64(total) * p))
	var running int64
	for i := 0; i <= MaxLatencyMicros; i++ {
		running += m.latencyHistogram[i].Load()
		if running >= target {
			return float64(i) / 1000.0
		}
	}
	return float64(MaxLatencyMicros) / 1000.0
}

// MarshalJSON implements json.Marshaler, exposing derived throughput and
// latency percentiles alongside the raw counters.
func (m *Metrics) MarshalJSON() ([]byte, error) {
	submitted := m.OrdersSubmitted.Load()

	avgLatency := 0.0
	if submitted > 0 {
		avgLatency = float64(m.TotalLatency.Load()) / float64(submitted) / 1000.0
	}

	uptime := time.Since(m.StartTime).Seconds()
	throughput := 0.0
	if uptime > 0 {
		throughput = float64(submitted) / uptime
	}

	return json.Marshal(map[string]interface{}{
		"orders_submitted":         submitted,
		"orders_rejected":          m.OrdersRejected.Load(),
		"orders_filled":            m.OrdersFilled.Load(),
		"orders_canceled":          m.OrdersCanceled.Load(),
		"trades_executed":          m.TradesExecuted.Load(),
		"latency_avg_ms":           avgLatency,
		"latency_p50_ms":           m.percentile(0.50, submitted),
		"latency_p99_ms":           m.percentile(0.99, submitted),
		"latency_p999_ms":          m.percentile(0.999, submitted),
		"throughput_orders_per_sec": throughput,
	})
}
