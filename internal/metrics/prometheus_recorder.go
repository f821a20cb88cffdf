package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "docsite"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	renderDuration *prom.HistogramVec
	cacheLookups   *prom.CounterVec
	buildDuration  prom.Histogram
	pagesBuilt     prom.Counter
	longPolls      *prom.CounterVec
	epochBumps     prom.Counter
	waitingClients prom.Gauge
}

// NewPrometheusRecorder constructs the metrics and registers them with reg,
// a fresh registry when nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		renderDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Duration of page renders by kind (page, social)",
			Buckets:   prom.DefBuckets,
		}, []string{"kind", "result"}),
		cacheLookups: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Render cache lookups by hit or miss",
		}, []string{"result"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total static build duration",
			Buckets:   prom.DefBuckets,
		}),
		pagesBuilt: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pages_built_total",
			Help:      "Pages written by static builds",
		}),
		longPolls: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "livereload_polls_total",
			Help:      "Live reload long-polls by outcome (woken or timeout)",
		}, []string{"outcome"}),
		epochBumps: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "livereload_epoch_bumps_total",
			Help:      "Times the reload epoch advanced",
		}),
		waitingClients: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "livereload_waiting_clients",
			Help:      "Browsers currently waiting on a long-poll",
		}),
	}
	reg.MustRegister(pr.renderDuration, pr.cacheLookups, pr.buildDuration, pr.pagesBuilt,
		pr.longPolls, pr.epochBumps, pr.waitingClients)
	return pr
}

func (p *PrometheusRecorder) ObserveRenderDuration(kind string, d time.Duration, result ResultLabel) {
	if p == nil {
		return
	}
	p.renderDuration.WithLabelValues(kind, string(result)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncCacheLookup(hit bool) {
	if p == nil {
		return
	}
	res := "miss"
	if hit {
		res = "hit"
	}
	p.cacheLookups.WithLabelValues(res).Inc()
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) AddPagesBuilt(n int) {
	if p == nil {
		return
	}
	p.pagesBuilt.Add(float64(n))
}

func (p *PrometheusRecorder) IncLongPoll(woken bool) {
	if p == nil {
		return
	}
	outcome := "timeout"
	if woken {
		outcome = "woken"
	}
	p.longPolls.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) IncEpochBump() {
	if p == nil {
		return
	}
	p.epochBumps.Inc()
}

func (p *PrometheusRecorder) SetWaitingClients(n int) {
	if p == nil {
		return
	}
	p.waitingClients.Set(float64(n))
}
