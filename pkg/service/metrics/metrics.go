package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/secmon-lab/zia/pkg/domain/model"
	"github.com/secmon-lab/zia/pkg/domain/types"
)

const namespace = "zia"

// Collector holds the Prometheus metrics of one server. Every method is safe
// on a nil Collector so that callers need no metrics specific branches.
type Collector struct {
	registry *prometheus.Registry

	answers       *prometheus.CounterVec
	taught        prometheus.Counter
	importPackets *prometheus.CounterVec
	peerPulls     *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// New creates a Collector with its own registry
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		answers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "answers_total",
				Help:      "Answers returned, by source",
			},
			[]string{"source", "intent"},
		),
		taught: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "knowledge_taught_total",
				Help:      "Knowledge records taught locally",
			},
		),
		importPackets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_import_packets_total",
				Help:      "Imported packets, by outcome",
			},
			[]string{"outcome"},
		),
		peerPulls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_peer_pulls_total",
				Help:      "Pulls from peers, by status",
			},
			[]string{"status"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests, by route and status",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	c.registry.MustRegister(
		c.answers,
		c.taught,
		c.importPackets,
		c.peerPulls,
		c.httpRequests,
		c.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) ObserveAnswer(source types.AnswerSource, intent types.Intent) {
	if c == nil {
		return
	}
	c.answers.WithLabelValues(source.String(), intent.String()).Inc()
}

func (c *Collector) ObserveTeach() {
	if c == nil {
		return
	}
	c.taught.Inc()
}

// ObserveImport records one import batch. Skipped counts packets that were
// valid but did not win the merge.
func (c *Collector) ObserveImport(result model.ImportResult) {
	if c == nil {
		return
	}
	c.importPackets.WithLabelValues("merged").Add(float64(result.Merged))
	c.importPackets.WithLabelValues("skipped").Add(float64(result.Skipped - result.Invalid - result.Failed))
	c.importPackets.WithLabelValues("invalid").Add(float64(result.Invalid))
	c.importPackets.WithLabelValues("failed").Add(float64(result.Failed))
}

func (c *Collector) ObservePeerPull(err error) {
	if c == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.peerPulls.WithLabelValues(status).Inc()
}

func (c *Collector) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
