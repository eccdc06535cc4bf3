// Package metrics exposes the Prometheus instrumentation surface for the
// core. It mirrors observability/metrics/potso.go's shape: a single
// sync.Once-guarded registry reachable through a package-level accessor, so
// every component records into the same set of collectors without having to
// thread a registry handle through constructors.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Core aggregates the counters and gauges emitted by the trading and oracle
// paths.
type Core struct {
	ReserveBalance   *prometheus.GaugeVec
	TradeVolume      *prometheus.CounterVec
	TradeCount       *prometheus.CounterVec
	GraduationCount  prometheus.Counter
	TreasuryBalance  *prometheus.GaugeVec
	CreatorWithdrawn prometheus.Counter
	ProtocolWithdraw prometheus.Counter
	ReportsFinalized *prometheus.CounterVec
}

var (
	once sync.Once
	core *Core
)

// Soulcore returns the process-wide metrics registry, constructing it on
// first use.
func Soulcore() *Core {
	once.Do(func() {
		core = &Core{
			ReserveBalance: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "soulcore_curve_reserve_balance",
				Help: "Current reserve balance held by a curve, in wad units.",
			}, []string{"person_id"}),
			TradeVolume: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "soulcore_trade_volume_total",
				Help: "Cumulative coin volume traded through a curve, by side.",
			}, []string{"person_id", "side"}),
			TradeCount: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "soulcore_trade_count_total",
				Help: "Count of executed trades, by side.",
			}, []string{"person_id", "side"}),
			GraduationCount: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "soulcore_graduations_total",
				Help: "Count of curves that have crossed their graduation threshold.",
			}),
			TreasuryBalance: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "soulcore_treasury_balance",
				Help: "Current treasury ledger balance, by bucket.",
			}, []string{"bucket"}),
			CreatorWithdrawn: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "soulcore_creator_withdrawn_total",
				Help: "Cumulative amount withdrawn by creators.",
			}),
			ProtocolWithdraw: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "soulcore_protocol_withdrawn_total",
				Help: "Cumulative amount withdrawn to the protocol wallet.",
			}),
			ReportsFinalized: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "soulcore_oracle_reports_finalized_total",
				Help: "Count of finalized oracle reports, by outcome.",
			}, []string{"outcome"}),
		}
	})
	return core
}

// Register adds every collector to r. Call once during process startup;
// tests that construct components without a real registry can skip this.
func Register(r prometheus.Registerer) error {
	c := Soulcore()
	collectors := []prometheus.Collector{
		c.ReserveBalance, c.TradeVolume, c.TradeCount, c.GraduationCount,
		c.TreasuryBalance, c.CreatorWithdrawn, c.ProtocolWithdraw, c.ReportsFinalized,
	}
	for _, coll := range collectors {
		if err := r.Register(coll); err != nil {
			return err
		}
	}
	return nil
}
