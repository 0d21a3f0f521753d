package infrastructure

import (
	"fmt"

	"veilbot/domain/events"
)

// NATS subjects
const (
	SubjectVeilPosted     = "veils.posted"
	SubjectVeilUnveiled   = "veils.unveiled"
	SubjectGuessSettled   = "veils.guess_settled"
	SubjectBalanceChanged = "ledger.balance_changed"
	SubjectCoinsPurchased = "payments.coins.purchased"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// SubjectForType returns the subject an event type travels on
func (m *EventSubjectMapper) SubjectForType(eventType events.EventType) string {
	switch eventType {
	case events.EventTypeVeilPosted:
		return SubjectVeilPosted
	case events.EventTypeVeilUnveiled:
		return SubjectVeilUnveiled
	case events.EventTypeGuessSettled:
		return SubjectGuessSettled
	case events.EventTypeBalanceChange:
		return SubjectBalanceChanged
	case events.EventTypeCoinsPurchased:
		return SubjectCoinsPurchased
	default:
		return fmt.Sprintf("unknown.%s", eventType)
	}
}

// MapEventToSubject converts a domain event to its NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	return m.SubjectForType(event.Type())
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	switch subject {
	case SubjectVeilPosted:
		return events.EventTypeVeilPosted
	case SubjectVeilUnveiled:
		return events.EventTypeVeilUnveiled
	case SubjectGuessSettled:
		return events.EventTypeGuessSettled
	case SubjectBalanceChanged:
		return events.EventTypeBalanceChange
	case SubjectCoinsPurchased:
		return events.EventTypeCoinsPurchased
	default:
		return events.EventType(subject)
	}
}

// GetAllSubjects returns every subject on the veil event stream
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		SubjectVeilPosted,
		SubjectVeilUnveiled,
		SubjectGuessSettled,
		SubjectBalanceChanged,
		SubjectCoinsPurchased,
	}
}
