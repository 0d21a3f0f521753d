package veil

import (
	"errors"
	"fmt"
	"testing"

	"veilbot/bot/common"
	"veilbot/database"
	"veilbot/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBotError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		userMessage string
	}{
		{
			name:        "too long",
			err:         fmt.Errorf("%w: 250 characters exceeds the limit of 200", services.ErrInvalidVeil),
			userMessage: "Veils can be at most 200 characters.",
		},
		{
			name:        "too many emoji",
			err:         fmt.Errorf("%w: 51 emoji exceeds the limit of 50", services.ErrInvalidVeil),
			userMessage: "Veils can contain at most 50 emoji.",
		},
		{
			name:        "empty",
			err:         fmt.Errorf("%w: Content required", services.ErrInvalidVeil),
			userMessage: "A veil needs either some text or a photo.",
		},
		{
			name:        "store down",
			err:         fmt.Errorf("failed to begin transaction: %w", database.ErrStoreUnavailable),
			userMessage: "The veil archive is unreachable right now. Please try again later.",
		},
		{
			name:        "anything else",
			err:         errors.New("discord is on fire"),
			userMessage: common.GenericErrorMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var botErr *common.BotError
			require.ErrorAs(t, toBotError(tt.err), &botErr)
			assert.Equal(t, tt.userMessage, botErr.UserMessage)
			assert.True(t, botErr.Ephemeral)
		})
	}
}
