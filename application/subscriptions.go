package application

import (
	"context"
	"fmt"

	"veilbot/domain/events"
	"veilbot/observability"

	log "github.com/sirupsen/logrus"
)

// EventHandler handles one decoded event
type EventHandler = func(ctx context.Context, event events.Event) error

// LocalEventRegistry runs handlers in-process when an event is published
type LocalEventRegistry interface {
	RegisterLocalHandler(eventType events.EventType, handler EventHandler)
}

// EventSubscriber delivers events published by other processes
type EventSubscriber interface {
	Subscribe(eventType events.EventType, handler EventHandler) error
}

// RegisterApplicationSubscriptions wires application handlers to the event bus.
// subscriber may be nil when no message bus is configured.
func RegisterApplicationSubscriptions(local LocalEventRegistry, subscriber EventSubscriber, coinStore *CoinStore) error {
	local.RegisterLocalHandler(events.EventTypeBalanceChange, handleBalanceChange)
	local.RegisterLocalHandler(events.EventTypeVeilUnveiled, handleVeilUnveiled)

	if subscriber == nil {
		log.Info("No message bus configured; purchases arrive through the webhook only")
		return nil
	}

	if err := subscriber.Subscribe(events.EventTypeCoinsPurchased, coinStore.HandleCoinsPurchased); err != nil {
		return fmt.Errorf("failed to subscribe to coin purchases: %w", err)
	}
	return nil
}

func handleBalanceChange(ctx context.Context, event events.Event) error {
	change, err := AssertEventType[events.BalanceChangeEvent](event, "BalanceChangeEvent")
	if err != nil {
		return err
	}
	observability.RecordBalanceChange(string(change.Reason), change.ChangeAmount)
	return nil
}

func handleVeilUnveiled(ctx context.Context, event events.Event) error {
	unveiled, err := AssertEventType[events.VeilUnveiledEvent](event, "VeilUnveiledEvent")
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"guild_id":    unveiled.GuildID,
		"channel_id":  unveiled.ChannelID,
		"veil_number": unveiled.VeilNumber,
		"winner_id":   unveiled.WinnerID,
		"reward":      unveiled.Reward,
	}).Info("Veil unveiled")
	return nil
}
