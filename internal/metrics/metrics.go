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

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)
)

// Duel Metrics
var (
	DuelsEnded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameDuelsEnded,
			Help: HelpTextDuelsEnded,
		},
		[]string{LabelReason},
	)

	GroundsJudged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameGroundsJudged,
			Help: HelpTextGroundsJudged,
		},
		[]string{LabelValidity},
	)

	JudgeCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameJudgeCallsTotal,
			Help: HelpTextJudgeCallsTotal,
		},
		[]string{LabelOperation, LabelOutcome},
	)

	JudgeCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameJudgeCallDuration,
			Help:    HelpTextJudgeCallDuration,
			Buckets: JudgeLatencyBuckets,
		},
		[]string{LabelOperation},
	)
)

// Broadcast Metrics
var (
	HubSinks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHubSinks,
			Help: HelpTextHubSinks,
		},
	)

	HubSinksPruned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameHubSinksPruned,
			Help: HelpTextHubSinksPruned,
		},
	)
)

// Janitor Metrics
var (
	JanitorSweeps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameJanitorSweeps,
			Help: HelpTextJanitorSweeps,
		},
		[]string{LabelSweep},
	)

	JanitorTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameJanitorTransitions,
			Help: HelpTextJanitorTransitions,
		},
		[]string{LabelSweep},
	)
)
