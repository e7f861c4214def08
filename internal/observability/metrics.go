// Package observability exposes Prometheus metrics for the site.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "yatube"

// Feed names used as the feed label.
const (
	FeedIndex   = "index"
	FeedGroup   = "group"
	FeedProfile = "profile"
	FeedFollow  = "follow"
)

// Metrics holds every collector. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	feedRequests    *prometheus.CounterVec
	indexCache      *prometheus.CounterVec
	followOps       *prometheus.CounterVec
	commentsCreated prometheus.Counter
	requestDuration *prometheus.HistogramVec
}

// NewMetrics registers the collectors on a fresh registry, so several
// instances (tests) never clash.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		feedRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_requests_total",
			Help:      "Feed pages served, by feed.",
		}, []string{"feed"}),
		indexCache: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_cache_total",
			Help:      "Index page cache lookups, by result.",
		}, []string{"result"}),
		followOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "follow_operations_total",
			Help:      "Follow and unfollow requests.",
		}, []string{"op"}),
		commentsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comments_created_total",
			Help:      "Comments stored.",
		}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

func (m *Metrics) FeedServed(feed string) {
	if m == nil {
		return
	}
	m.feedRequests.WithLabelValues(feed).Inc()
}

// CacheLookup matches cache.Observer.
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.indexCache.WithLabelValues(result).Inc()
}

func (m *Metrics) FollowOperation(op string) {
	if m == nil {
		return
	}
	m.followOps.WithLabelValues(op).Inc()
}

func (m *Metrics) CommentCreated() {
	if m == nil {
		return
	}
	m.commentsCreated.Inc()
}

func (m *Metrics) ObserveRequest(route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler serves the registry in the exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return nil
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
