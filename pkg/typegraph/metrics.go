package typegraph

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the counters a SymbolManager updates as it merges
// symbols. A nil *Metrics is valid everywhere it is accepted: every
// method on it is a no-op guard, so callers that don't care about
// observability (tests, one-off CLI runs without --metrics-addr) can
// pass nil instead of threading a real registry through.
type Metrics struct {
	SymbolsCreated   *prometheus.CounterVec
	SymbolsMerged    *prometheus.CounterVec
	KindMismatches   prometheus.Counter
	MissingReferents prometheus.Counter
}

// NewMetrics registers a full set of counters on reg and returns them.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SymbolsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dwarfgraph",
			Name:      "symbols_created_total",
			Help:      "Entities created in the type graph, by kind.",
		}, []string{"kind"}),
		SymbolsMerged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dwarfgraph",
			Name:      "symbols_merged_total",
			Help:      "Re-sightings merged onto an existing entity as an alternative id, by kind.",
		}, []string{"kind"}),
		KindMismatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dwarfgraph",
			Name:      "kind_mismatches_total",
			Help:      "RefBaseType name collisions between incompatible variants.",
		}),
		MissingReferents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dwarfgraph",
			Name:      "missing_referents_total",
			Help:      "Ids that update_types could not resolve to a live entity.",
		}),
	}
	reg.MustRegister(m.SymbolsCreated, m.SymbolsMerged, m.KindMismatches, m.MissingReferents)
	return m
}

func (m *Metrics) created(k Kind) {
	if m == nil {
		return
	}
	m.SymbolsCreated.WithLabelValues(k.String()).Inc()
}

func (m *Metrics) merged(k Kind) {
	if m == nil {
		return
	}
	m.SymbolsMerged.WithLabelValues(k.String()).Inc()
}

func (m *Metrics) kindMismatch() {
	if m == nil {
		return
	}
	m.KindMismatches.Inc()
}

func (m *Metrics) missingReferent() {
	if m == nil {
		return
	}
	m.MissingReferents.Inc()
}
