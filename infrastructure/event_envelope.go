package infrastructure

import (
	"encoding/json"
	"time"
)

// SourceService identifies this process in event envelopes
const SourceService = "veilbot"

// EventEnvelope wraps every event sent over NATS
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}
