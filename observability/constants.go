package observability

// Namespace prefixes every metric exported by the bot
const Namespace = "veilbot"

// Label keys
const (
	LabelOutcome   = "outcome"
	LabelEventType = "event_type"
	LabelResult    = "result"
	LabelReason    = "reason"
	LabelMethod    = "method"
	LabelRoute     = "route"
	LabelStatus    = "status"
	LabelJob       = "job"
)

// Result label values
const (
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultSkipped  = "skipped"
	ResultNotFound = "not_found"
)
