package metrics

// Metric names
const (
	MetricNameHTTPRequestsTotal    = "bothsides_http_requests_total"
	MetricNameHTTPRequestDuration  = "bothsides_http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "bothsides_http_requests_in_flight"
	MetricNameEventsPublished      = "bothsides_events_published_total"
	MetricNameDuelsEnded           = "bothsides_duels_ended_total"
	MetricNameGroundsJudged        = "bothsides_grounds_judged_total"
	MetricNameJudgeCallsTotal      = "bothsides_judge_calls_total"
	MetricNameJudgeCallDuration    = "bothsides_judge_call_duration_seconds"
	MetricNameHubSinks             = "bothsides_hub_sinks"
	MetricNameHubSinksPruned       = "bothsides_hub_sinks_pruned_total"
	MetricNameJanitorSweeps        = "bothsides_janitor_sweeps_total"
	MetricNameJanitorTransitions   = "bothsides_janitor_transitions_total"
)

// Help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Number of HTTP requests currently being served"
	HelpTextEventsPublished      = "Total number of domain events published"
	HelpTextDuelsEnded           = "Total number of duels completed, by end reason"
	HelpTextGroundsJudged        = "Total number of arguments judged, by verdict"
	HelpTextJudgeCallsTotal      = "Total number of judge calls, by operation and outcome"
	HelpTextJudgeCallDuration    = "Judge call latency in seconds"
	HelpTextHubSinks             = "Number of live viewer sinks"
	HelpTextHubSinksPruned       = "Total number of viewer sinks removed after a failed write"
	HelpTextJanitorSweeps        = "Total number of janitor sweeps run"
	HelpTextJanitorTransitions   = "Total number of duels transitioned by the janitor"
)

// Labels
const (
	LabelMethod    = "method"
	LabelPath      = "path"
	LabelStatus    = "status"
	LabelType      = "type"
	LabelReason    = "reason"
	LabelValidity  = "validity"
	LabelOperation = "operation"
	LabelOutcome   = "outcome"
	LabelSweep     = "sweep"
)

// Buckets
var (
	HTTPLatencyBuckets  = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	JudgeLatencyBuckets = []float64{.1, .25, .5, 1, 2, 4, 8, 15, 30}
)

// Log messages
const (
	LogMsgEventPayloadUnexpected = "Event payload has unexpected shape"
)
