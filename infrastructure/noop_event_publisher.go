package infrastructure

import "veilbot/domain/events"

// NoopEventPublisher drops every event. Used by operator commands.
type NoopEventPublisher struct{}

// NewNoopEventPublisher creates a new no-op event publisher
func NewNoopEventPublisher() *NoopEventPublisher {
	return &NoopEventPublisher{}
}

// Publish does nothing
func (n *NoopEventPublisher) Publish(event events.Event) error {
	return nil
}
