// Package metrics exposes prometheus collectors for the contract runtime
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pricefetcher"

var (
	ReceiptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "vm",
			Name:      "receipts_total",
			Help:      "Number of executed receipts by receiver, method and status.",
		},
		[]string{"receiver", "method", "status"},
	)

	TransactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "vm",
			Name:      "transactions_total",
			Help:      "Number of executed transactions by final status.",
		},
		[]string{"status"},
	)

	GasBurntTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "vm",
			Name:      "gas_burnt_total",
			Help:      "Gas burnt by receipts, by receiver account.",
		},
		[]string{"receiver"},
	)

	ReceiptDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "vm",
			Name:      "receipt_duration_seconds",
			Help:      "Wall time spent executing one receipt.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		},
		[]string{"receiver", "method"},
	)
)

// ObserveReceipt records one executed receipt
func ObserveReceipt(receiver, method, status string, gasBurnt uint64, elapsed time.Duration) {
	ReceiptsTotal.WithLabelValues(receiver, method, status).Inc()
	GasBurntTotal.WithLabelValues(receiver).Add(float64(gasBurnt))
	ReceiptDuration.WithLabelValues(receiver, method).Observe(elapsed.Seconds())
}

// ObserveTransaction records the final status of one transaction
func ObserveTransaction(status string) {
	TransactionsTotal.WithLabelValues(status).Inc()
}
