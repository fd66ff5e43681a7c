package mesh

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the construction counters of a process. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	builds   *prometheus.CounterVec
	faces    *prometheus.CounterVec
	exchange prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg when reg is
// not nil
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ddmesh",
			Name:      "builds_total",
			Help:      "Mesh constructions by outcome.",
		}, []string{"result"}),
		faces: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ddmesh",
			Name:      "faces_total",
			Help:      "Cell faces classified, by neighbor kind.",
		}, []string{"kind"}),
		exchange: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ddmesh",
			Name:      "ghost_exchange_seconds",
			Help:      "Duration of the ghost stitching exchange.",
			Buckets:   prometheus.ExponentialBuckets(1e-4, 4, 10),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.builds, m.faces, m.exchange)
	}
	return m
}

func (m *Metrics) observeBuild(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = KindOf(err).String()
	}
	m.builds.WithLabelValues(result).Inc()
}

func (m *Metrics) observeFaces(kind NeighborKind, n int) {
	if m == nil {
		return
	}
	m.faces.WithLabelValues(kind.String()).Add(float64(n))
}

func (m *Metrics) observeExchange(d time.Duration) {
	if m == nil {
		return
	}
	m.exchange.Observe(d.Seconds())
}
