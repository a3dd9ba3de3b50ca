package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes counters/histograms for the geocode proxy and intake flow.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	geocodeTotal     *prometheus.CounterVec
	geocodeLatency   *prometheus.HistogramVec
	resolutionsTotal *prometheus.CounterVec
	popupTotal       *prometheus.CounterVec
	historyErrors    prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		geocodeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "intake",
			Subsystem: "geocode",
			Name:      "requests_total",
			Help:      "Upstream geocode lookups by search step and result",
		}, []string{"step", "result"}),
		geocodeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "intake",
			Subsystem: "geocode",
			Name:      "duration_seconds",
			Help:      "Upstream geocode call latency",
			Buckets:   []float64{.025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"step"}),
		resolutionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "intake",
			Subsystem: "flow",
			Name:      "resolutions_total",
			Help:      "Address resolutions by outcome",
		}, []string{"outcome"}),
		popupTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "intake",
			Subsystem: "flow",
			Name:      "directions_open_total",
			Help:      "Directions opens by whether a secondary context was granted",
		}, []string{"granted"}),
		historyErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "intake",
			Subsystem: "history",
			Name:      "write_errors_total",
			Help:      "Failed history writes",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.geocodeTotal, m.geocodeLatency, m.resolutionsTotal, m.popupTotal, m.historyErrors)
	return m
}

func (m *Metrics) ObserveGeocode(step, result string, seconds float64) {
	if m == nil {
		return
	}
	m.geocodeTotal.WithLabelValues(step, result).Inc()
	m.geocodeLatency.WithLabelValues(step).Observe(seconds)
}

func (m *Metrics) ObserveResolution(outcome string) {
	if m == nil {
		return
	}
	m.resolutionsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObservePopup(granted bool) {
	if m == nil {
		return
	}
	label := "false"
	if granted {
		label = "true"
	}
	m.popupTotal.WithLabelValues(label).Inc()
}

func (m *Metrics) ObserveHistoryError() {
	if m == nil {
		return
	}
	m.historyErrors.Inc()
}

// Handler serves the default registry for Prometheus scraping.
func Handler() http.Handler { return promhttp.Handler() }
