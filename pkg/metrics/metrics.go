// Package metrics exposes the ledger's Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Ledger groups the collectors updated by the payment ledger
type Ledger struct {
	PaymentsRecorded  *prometheus.CounterVec
	AmountRecorded    *prometheus.CounterVec
	PaymentsRejected  *prometheus.CounterVec
	NumbersRepaired   *prometheus.CounterVec
	BalanceMismatches prometheus.Gauge
	UnitOfWork        *prometheus.HistogramVec
}

// NewLedger creates the ledger collectors and registers them with reg.
// A nil registerer leaves them unregistered, which tests rely on.
func NewLedger(reg prometheus.Registerer) *Ledger {
	m := &Ledger{
		PaymentsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "studio",
			Subsystem: "ledger",
			Name:      "payments_recorded_total",
			Help:      "Payments recorded, by order kind and payment method.",
		}, []string{"order_kind", "method"}),
		AmountRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "studio",
			Subsystem: "ledger",
			Name:      "amount_recorded_total",
			Help:      "Sum of recorded payment amounts, by order kind.",
		}, []string{"order_kind"}),
		PaymentsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "studio",
			Subsystem: "ledger",
			Name:      "payments_rejected_total",
			Help:      "Payments rejected, by error kind.",
		}, []string{"kind"}),
		NumbersRepaired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "studio",
			Subsystem: "ledger",
			Name:      "numbers_repaired_total",
			Help:      "Missing receipt numbers regenerated by reconciliation.",
		}, []string{"target"}),
		BalanceMismatches: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "studio",
			Subsystem: "ledger",
			Name:      "balance_mismatches",
			Help:      "Orders whose paid amount differed from their receipts at the last reconciliation.",
		}),
		UnitOfWork: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "studio",
			Subsystem: "ledger",
			Name:      "unit_of_work_seconds",
			Help:      "Duration of ledger units of work, including retries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "outcome"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.PaymentsRecorded,
			m.AmountRecorded,
			m.PaymentsRejected,
			m.NumbersRepaired,
			m.BalanceMismatches,
			m.UnitOfWork,
		)
	}
	return m
}

// ObserveUnitOfWork records how long an operation took and whether it failed
func (m *Ledger) ObserveUnitOfWork(operation string, started time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.UnitOfWork.WithLabelValues(operation, outcome).Observe(time.Since(started).Seconds())
}
