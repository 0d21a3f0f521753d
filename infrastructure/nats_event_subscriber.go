package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"

	"veilbot/domain/events"

	log "github.com/sirupsen/logrus"
)

// NATSEventSubscriber subscribes to NATS subjects and decodes events for application handlers
type NATSEventSubscriber struct {
	natsClient    *NATSClient
	subjectMapper *EventSubjectMapper
	handlers      map[string]LocalHandler
}

// NewNATSEventSubscriber creates a new NATS event subscriber
func NewNATSEventSubscriber(natsClient *NATSClient, subjectMapper *EventSubjectMapper) *NATSEventSubscriber {
	return &NATSEventSubscriber{
		natsClient:    natsClient,
		subjectMapper: subjectMapper,
		handlers:      make(map[string]LocalHandler),
	}
}

// Subscribe registers a handler for an event type
func (s *NATSEventSubscriber) Subscribe(eventType events.EventType, handler LocalHandler) error {
	subject := s.subjectMapper.SubjectForType(eventType)
	s.handlers[subject] = handler

	log.WithFields(log.Fields{
		"eventType": eventType,
		"subject":   subject,
	}).Info("Registering event handler for subject")

	return s.natsClient.Subscribe(subject, func(data []byte) error {
		return s.handleMessage(context.Background(), subject, data)
	})
}

// handleMessage decodes an envelope and routes the event to its handler
func (s *NATSEventSubscriber) handleMessage(ctx context.Context, subject string, data []byte) error {
	var envelope EventEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("failed to unmarshal event envelope: %w", err)
	}

	event, err := DecodeEvent(events.EventType(envelope.EventType), envelope.Payload)
	if err != nil {
		log.WithFields(log.Fields{
			"subject":   subject,
			"eventType": envelope.EventType,
			"eventId":   envelope.EventID,
			"error":     err,
		}).Error("Failed to decode event payload")
		return err
	}

	handler, exists := s.handlers[subject]
	if !exists {
		return fmt.Errorf("no handler registered for subject %s", subject)
	}

	if err := handler(ctx, event); err != nil {
		log.WithFields(log.Fields{
			"subject":   subject,
			"eventType": envelope.EventType,
			"eventId":   envelope.EventID,
			"error":     err,
		}).Error("Event handler failed")
		return err
	}

	return nil
}

// DecodeEvent unmarshals a payload into the concrete event for eventType
func DecodeEvent(eventType events.EventType, payload []byte) (events.Event, error) {
	switch eventType {
	case events.EventTypeCoinsPurchased:
		var event events.CoinsPurchasedEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", eventType, err)
		}
		return event, nil
	case events.EventTypeBalanceChange:
		var event events.BalanceChangeEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", eventType, err)
		}
		return event, nil
	case events.EventTypeVeilUnveiled:
		var event events.VeilUnveiledEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", eventType, err)
		}
		return event, nil
	default:
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}
}
