package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Roll Metrics
var (
	RollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameRollsTotal,
			Help: HelpTextRollsTotal,
		},
		[]string{LabelTool, LabelCategory},
	)

	RollFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameRollFailuresTotal,
			Help: HelpTextRollFailuresTotal,
		},
		[]string{LabelReason},
	)

	PityTriggered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNamePityTriggered,
			Help: HelpTextPityTriggered,
		},
	)

	PityExhausted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNamePityExhausted,
			Help: HelpTextPityExhausted,
		},
	)
)

// State Cache Metrics
var (
	StateLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameStateLoadsTotal,
			Help: HelpTextStateLoadsTotal,
		},
		[]string{LabelOutcome},
	)

	StateSavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameStateSavesTotal,
			Help: HelpTextStateSavesTotal,
		},
		[]string{LabelOutcome},
	)

	CachedUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameCachedUsers,
			Help: HelpTextCachedUsers,
		},
	)
)

// Booster Metrics
var (
	BoostersApplied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameBoostersApplied,
			Help: HelpTextBoostersApplied,
		},
	)

	BoostersRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameBoostersRemoved,
			Help: HelpTextBoostersRemoved,
		},
	)

	BoosterErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameBoosterErrors,
			Help: HelpTextBoosterErrors,
		},
		[]string{LabelOp},
	)
)
