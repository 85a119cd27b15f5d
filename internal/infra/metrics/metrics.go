// Package metrics collects Prometheus instruments for the ingestion and
// dispatch pipelines.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the counters recorded by the application services.
type Collector struct {
	menusIngested       prometheus.Counter
	candidatesRejected  *prometheus.CounterVec
	feedFailures        prometheus.Counter
	notificationsSent   prometheus.Counter
	notificationsFailed prometheus.Counter
	broadcastsSent      prometheus.Counter
}

// NewCollector creates a Collector and registers its instruments on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		menusIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mealbot_menus_ingested_total",
			Help: "Genuine menus upserted into storage.",
		}),
		candidatesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mealbot_candidates_rejected_total",
			Help: "Feed candidates rejected as provider noise, by reason.",
		}, []string{"reason"}),
		feedFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mealbot_feed_failures_total",
			Help: "Feed fetches abandoned due to network or parse failure.",
		}),
		notificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mealbot_notifications_sent_total",
			Help: "Outbound messages delivered to subscribers.",
		}),
		notificationsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mealbot_notifications_failed_total",
			Help: "Outbound messages that failed for a single recipient.",
		}),
		broadcastsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mealbot_broadcasts_total",
			Help: "Administrative broadcast runs.",
		}),
	}

	reg.MustRegister(
		c.menusIngested,
		c.candidatesRejected,
		c.feedFailures,
		c.notificationsSent,
		c.notificationsFailed,
		c.broadcastsSent,
	)
	return c
}

func (c *Collector) RecordMenuIngested()        { c.menusIngested.Inc() }
func (c *Collector) RecordFeedFailure()         { c.feedFailures.Inc() }
func (c *Collector) RecordNotificationSent()    { c.notificationsSent.Inc() }
func (c *Collector) RecordNotificationFailure() { c.notificationsFailed.Inc() }
func (c *Collector) RecordBroadcast()           { c.broadcastsSent.Inc() }

func (c *Collector) RecordCandidateRejected(reason string) {
	c.candidatesRejected.WithLabelValues(reason).Inc()
}
