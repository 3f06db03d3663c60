package session

import (
	"context"

	"github.com/gocql/gocql"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	requestDuration *prometheus.HistogramVec
	requestFailures *prometheus.CounterVec
}

func newMetrics(r prometheus.Registerer) *metrics {
	return &metrics{
		requestDuration: promauto.With(r).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cassandra_request_duration_seconds",
			Help:    "Time spent executing a request, per attempt.",
			Buckets: prometheus.DefBuckets,
		}, []string{"keyspace"}),
		requestFailures: promauto.With(r).NewCounterVec(prometheus.CounterOpts{
			Name: "cassandra_request_failures_total",
			Help: "Total number of failed request attempts.",
		}, []string{"keyspace"}),
	}
}

// observer implements gocql.QueryObserver.
type observer struct {
	m *metrics
}

func (o observer) ObserveQuery(_ context.Context, q gocql.ObservedQuery) {
	o.m.requestDuration.WithLabelValues(q.Keyspace).Observe(q.End.Sub(q.Start).Seconds())
	// Prepare aborts its binding callback on purpose once metadata arrives.
	if q.Err != nil && !errors.Is(q.Err, errPrepared) {
		o.m.requestFailures.WithLabelValues(q.Keyspace).Inc()
	}
}
