package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"veilbot/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeEnvelope(t *testing.T, event events.Event) []byte {
	t.Helper()
	envelope, err := NewEnvelope(event)
	require.NoError(t, err)
	data, err := json.Marshal(envelope)
	require.NoError(t, err)
	return data
}

func TestNATSEventSubscriber_HandleMessage(t *testing.T) {
	purchase := events.CoinsPurchasedEvent{SessionID: "cs_1", UserID: 10, GuildID: 20, Coins: 250}

	tests := []struct {
		name       string
		subject    string
		data       func(t *testing.T) []byte
		handlerErr error
		wantErr    bool
		wantCalled bool
	}{
		{
			name:       "dispatches decoded purchase",
			subject:    SubjectCoinsPurchased,
			data:       func(t *testing.T) []byte { return encodeEnvelope(t, purchase) },
			wantCalled: true,
		},
		{
			name:    "malformed envelope",
			subject: SubjectCoinsPurchased,
			data:    func(t *testing.T) []byte { return []byte("{not json") },
			wantErr: true,
		},
		{
			name:    "unknown event type",
			subject: SubjectCoinsPurchased,
			data: func(t *testing.T) []byte {
				return []byte(`{"event_id":"x","event_type":"mystery","payload":{}}`)
			},
			wantErr: true,
		},
		{
			name:    "no handler for subject",
			subject: "payments.other",
			data:    func(t *testing.T) []byte { return encodeEnvelope(t, purchase) },
			wantErr: true,
		},
		{
			name:       "handler error is returned for redelivery",
			subject:    SubjectCoinsPurchased,
			data:       func(t *testing.T) []byte { return encodeEnvelope(t, purchase) },
			handlerErr: errors.New("store unavailable"),
			wantErr:    true,
			wantCalled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subscriber := NewNATSEventSubscriber(nil, NewEventSubjectMapper())

			called := false
			subscriber.handlers[SubjectCoinsPurchased] = func(ctx context.Context, event events.Event) error {
				called = true
				assert.Equal(t, purchase, event)
				return tt.handlerErr
			}

			err := subscriber.handleMessage(context.Background(), tt.subject, tt.data(t))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalled, called)
		})
	}
}

func TestDecodeEvent_BalanceChange(t *testing.T) {
	payload := []byte(`{"user_id":1,"guild_id":2,"change_amount":-5,"new_balance":95,"reason":"guess_cost"}`)

	event, err := DecodeEvent(events.EventTypeBalanceChange, payload)
	require.NoError(t, err)
	assert.Equal(t, events.BalanceChangeEvent{
		UserID:       1,
		GuildID:      2,
		ChangeAmount: -5,
		NewBalance:   95,
		Reason:       events.ReasonGuessCost,
	}, event)
}
