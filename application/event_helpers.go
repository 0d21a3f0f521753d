package application

import (
	"fmt"

	"veilbot/domain/events"
)

// AssertEventType asserts an event to a concrete type with a descriptive error
func AssertEventType[T events.Event](event events.Event, expectedTypeName string) (T, error) {
	var zero T

	if e, ok := event.(T); ok {
		return e, nil
	}

	errMsg := fmt.Sprintf("event type assertion failed: expected %s, got %T", expectedTypeName, event)
	if event != nil {
		errMsg += fmt.Sprintf(" (event.Type()=%s)", event.Type())
	}
	return zero, fmt.Errorf("%s", errMsg)
}
