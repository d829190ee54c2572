package services

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/AchilleasB/parrainage/matching-service/internal/metrics"
)

const defaultNotifyTimeout = 5 * time.Second

type serviceOptions struct {
	logger        *slog.Logger
	metrics       *metrics.Metrics
	now           func() time.Time
	newID         func() string
	notifyTimeout time.Duration
}

// Option configures the optional collaborators of a service.
type Option func(*serviceOptions)

func WithLogger(logger *slog.Logger) Option {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *serviceOptions) {
		o.metrics = m
	}
}

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *serviceOptions) {
		o.now = now
	}
}

// WithIDGenerator overrides uuid.NewString, mostly for tests.
func WithIDGenerator(newID func() string) Option {
	return func(o *serviceOptions) {
		o.newID = newID
	}
}

// WithNotifyTimeout bounds how long a state transition waits on the notifier.
func WithNotifyTimeout(d time.Duration) Option {
	return func(o *serviceOptions) {
		if d > 0 {
			o.notifyTimeout = d
		}
	}
}

func buildOptions(opts []Option) serviceOptions {
	o := serviceOptions{
		logger:        slog.Default(),
		now:           time.Now,
		newID:         newUUID,
		notifyTimeout: defaultNotifyTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func newUUID() string {
	return uuid.NewString()
}
