package economy

import (
	"math/big"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes the latest snapshot of each network as gauges
type Metrics struct {
	registry *prometheus.Registry

	lazySupply      *prometheus.GaugeVec
	gasHbar         *prometheus.GaugeVec
	gasLazy         *prometheus.GaugeVec
	burnPercent     *prometheus.GaugeVec
	itemsStaked     *prometheus.GaugeVec
	missionCount    *prometheus.GaugeVec
	slotsAvailable  *prometheus.GaugeVec
	slotsTotal      *prometheus.GaugeVec
	boostLazyCost   *prometheus.GaugeVec
	sectionErrors   *prometheus.GaugeVec
	lastSnapshot    *prometheus.GaugeVec
	snapshotsByKind *prometheus.CounterVec
}

func newGauge(name, help string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "mission",
		Subsystem: "economy",
		Name:      name,
		Help:      help,
	}, []string{"network"})
}

// NewMetrics registers the economy gauges on a private registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry:       prometheus.NewRegistry(),
		lazySupply:     newGauge("lazy_total_supply", "LAZY total supply in the smallest unit."),
		gasHbar:        newGauge("gas_station_hbar_tinybar", "HBAR held by the Lazy Gas Station, in tinybar."),
		gasLazy:        newGauge("gas_station_lazy_balance", "LAZY held by the Lazy Gas Station, in the smallest unit."),
		burnPercent:    newGauge("lazy_burn_percent", "Share of LAZY burned on payout, in percent."),
		itemsStaked:    newGauge("staking_items_staked", "NFTs currently staked."),
		missionCount:   newGauge("missions_deployed", "Missions deployed by the factory."),
		slotsAvailable: newGauge("missions_slots_available", "Open slots across deployed missions."),
		slotsTotal:     newGauge("missions_slots_total", "Slots across deployed missions."),
		boostLazyCost:  newGauge("boost_lazy_cost", "LAZY cost of a boost, in the smallest unit."),
		sectionErrors:  newGauge("snapshot_section_errors", "Sections that failed in the latest snapshot."),
		lastSnapshot:   newGauge("snapshot_timestamp_seconds", "Capture time of the latest snapshot."),
		snapshotsByKind: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mission",
			Subsystem: "economy",
			Name:      "snapshots_total",
			Help:      "Snapshots taken, by outcome.",
		}, []string{"network", "outcome"}),
	}
	m.registry.MustRegister(
		m.lazySupply, m.gasHbar, m.gasLazy, m.burnPercent, m.itemsStaked,
		m.missionCount, m.slotsAvailable, m.slotsTotal, m.boostLazyCost,
		m.sectionErrors, m.lastSnapshot, m.snapshotsByKind,
	)
	return m
}

// Registry returns the registry the gauges live on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Observe updates the gauges from a snapshot. Failed sections keep their
// previous values.
func (m *Metrics) Observe(s *Snapshot) {
	net := s.Network
	if s.LazyToken != nil {
		m.lazySupply.WithLabelValues(net).Set(decimalFloat(s.LazyToken.TotalSupply))
	}
	if s.GasStation != nil {
		m.gasHbar.WithLabelValues(net).Set(float64(s.GasStation.HbarBalance))
		m.gasLazy.WithLabelValues(net).Set(float64(s.GasStation.LazyBalance))
		m.burnPercent.WithLabelValues(net).Set(float64(s.GasStation.BurnPercentage))
	}
	if s.Staking != nil {
		m.itemsStaked.WithLabelValues(net).Set(float64(s.Staking.TotalItemsStaked))
	}
	if s.Missions != nil {
		m.missionCount.WithLabelValues(net).Set(float64(s.Missions.Count))
		m.slotsAvailable.WithLabelValues(net).Set(float64(s.Missions.SlotsAvailable))
		m.slotsTotal.WithLabelValues(net).Set(float64(s.Missions.TotalSlots))
	}
	if s.Boost != nil {
		m.boostLazyCost.WithLabelValues(net).Set(decimalFloat(s.Boost.LazyCost))
	}
	m.sectionErrors.WithLabelValues(net).Set(float64(len(s.Errors)))
	m.lastSnapshot.WithLabelValues(net).Set(float64(s.CapturedAt.Unix()))

	outcome := "complete"
	if !s.Complete() {
		outcome = "partial"
	}
	m.snapshotsByKind.WithLabelValues(net, outcome).Inc()
}

func decimalFloat(s string) float64 {
	n, ok := new(big.Float).SetString(s)
	if !ok {
		return 0
	}
	f, _ := n.Float64()
	return f
}
