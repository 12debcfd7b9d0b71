// Package metrics turns sync lifecycle events into Prometheus series.
//
// A [Collector] is subscribed to the event bus; it never calls back into the
// sync engine, so every series reflects what the engine published.
package metrics

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MKhiriev/go-offline-sync/models"
)

type Collector struct {
	registry *prometheus.Registry

	events        *prometheus.CounterVec
	cycles        *prometheus.CounterVec
	items         *prometheus.CounterVec
	cycleDuration prometheus.Histogram
	queueLength   prometheus.Gauge
	online        prometheus.Gauge
	inProgress    prometheus.Gauge
	lastSuccess   prometheus.Gauge

	mu         sync.Mutex
	cycleStart time.Time
	now        func() time.Time
}

// NewCollector registers the sync series on reg under namespace. Dots in the
// namespace are turned into underscores.
func NewCollector(reg *prometheus.Registry, namespace string) *Collector {
	namespace = strings.ReplaceAll(namespace, ".", "_")
	const subsystem = "sync"

	c := &Collector{
		registry: reg,
		now:      time.Now,
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "events_total",
			Help:      "published sync events by kind",
		}, []string{"kind"}),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cycles_total",
			Help:      "finished sync cycles by result",
		}, []string{"result"}),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "items_total",
			Help:      "collections pulled, queue items pushed, failures and backoff skips",
		}, []string{"outcome"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cycle_duration_seconds",
			Help:      "duration of sync cycles",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		queueLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "queue_length",
			Help:      "pending queue items",
		}),
		online: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "online",
			Help:      "1 when the remote side is reachable",
		}),
		inProgress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "in_progress",
			Help:      "1 while a sync cycle runs",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "last_success_timestamp_seconds",
			Help:      "unix time of the last completed cycle",
		}),
	}

	reg.MustRegister(
		c.events,
		c.cycles,
		c.items,
		c.cycleDuration,
		c.queueLength,
		c.online,
		c.inProgress,
		c.lastSuccess,
	)
	return c
}

// Observe is an events.Listener.
func (c *Collector) Observe(e models.Event) {
	c.events.WithLabelValues(string(e.Kind)).Inc()

	switch e.Kind {
	case models.EventSyncStart:
		c.inProgress.Set(1)
		c.mu.Lock()
		c.cycleStart = c.now()
		c.mu.Unlock()

	case models.EventSyncComplete:
		c.finishCycle("success")
		if p, ok := e.Payload.(models.CompletePayload); ok {
			c.items.WithLabelValues("pulled").Add(float64(p.Pulled))
			c.items.WithLabelValues("pushed").Add(float64(p.Pushed))
			c.items.WithLabelValues("failed").Add(float64(p.Failed))
			c.items.WithLabelValues("skipped").Add(float64(p.Skipped))
		}
		c.lastSuccess.Set(float64(c.now().Unix()))

	case models.EventSyncError:
		c.finishCycle("error")

	case models.EventQueueUpdated:
		if p, ok := e.Payload.(models.QueuePayload); ok {
			c.queueLength.Set(float64(p.Count))
		}

	case models.EventOnline:
		c.online.Set(1)

	case models.EventOffline:
		c.online.Set(0)
	}
}

func (c *Collector) finishCycle(result string) {
	c.inProgress.Set(0)
	c.cycles.WithLabelValues(result).Inc()

	c.mu.Lock()
	start := c.cycleStart
	c.cycleStart = time.Time{}
	c.mu.Unlock()

	if !start.IsZero() {
		c.cycleDuration.Observe(c.now().Sub(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
