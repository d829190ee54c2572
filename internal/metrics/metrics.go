package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks sponsorship transitions, search latency and notification
// dispatch outcomes.
type Metrics struct {
	SponsorshipsCreated  prometheus.Counter
	SponsorshipsAccepted prometheus.Counter
	SponsorshipsDeleted  prometheus.Counter
	SponsorshipConflicts prometheus.Counter
	NotificationsFailed  prometheus.Counter
	UsersRegistered      prometheus.Counter
	SearchDuration       prometheus.Histogram
	SearchResults        prometheus.Histogram
}

// New registers the metrics with reg. Pass prometheus.DefaultRegisterer in
// binaries and prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SponsorshipsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "matching_sponsorships_created_total",
			Help: "Total number of sponsorship requests created",
		}),
		SponsorshipsAccepted: f.NewCounter(prometheus.CounterOpts{
			Name: "matching_sponsorships_accepted_total",
			Help: "Total number of sponsorship requests accepted",
		}),
		SponsorshipsDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "matching_sponsorships_deleted_total",
			Help: "Total number of sponsorships deleted or rejected",
		}),
		SponsorshipConflicts: f.NewCounter(prometheus.CounterOpts{
			Name: "matching_sponsorship_conflicts_total",
			Help: "Create or accept attempts rejected by a uniqueness constraint",
		}),
		NotificationsFailed: f.NewCounter(prometheus.CounterOpts{
			Name: "matching_notifications_failed_total",
			Help: "Push notifications that could not be handed over for delivery",
		}),
		UsersRegistered: f.NewCounter(prometheus.CounterOpts{
			Name: "matching_users_registered_total",
			Help: "Total number of users enrolled",
		}),
		SearchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "matching_search_duration_seconds",
			Help:    "Duration of proximity searches",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		SearchResults: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "matching_search_results",
			Help:    "Number of candidates returned by a proximity search before pagination",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}
}

// The helpers below are nil-safe so services can run without metrics.

func (m *Metrics) IncSponsorshipCreated() {
	if m != nil {
		m.SponsorshipsCreated.Inc()
	}
}

func (m *Metrics) IncSponsorshipAccepted() {
	if m != nil {
		m.SponsorshipsAccepted.Inc()
	}
}

func (m *Metrics) IncSponsorshipDeleted() {
	if m != nil {
		m.SponsorshipsDeleted.Inc()
	}
}

func (m *Metrics) IncSponsorshipConflict() {
	if m != nil {
		m.SponsorshipConflicts.Inc()
	}
}

func (m *Metrics) IncNotificationFailed() {
	if m != nil {
		m.NotificationsFailed.Inc()
	}
}

func (m *Metrics) IncUserRegistered() {
	if m != nil {
		m.UsersRegistered.Inc()
	}
}

// ObserveSearch records a search that started at start and produced n candidates.
func (m *Metrics) ObserveSearch(start time.Time, n int) {
	if m == nil {
		return
	}
	m.SearchDuration.Observe(time.Since(start).Seconds())
	m.SearchResults.Observe(float64(n))
}
