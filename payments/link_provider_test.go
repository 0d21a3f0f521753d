package payments

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"veilbot/application/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkProvider_CreateCheckoutSession(t *testing.T) {
	provider, err := NewLinkProvider("https://pay.example.com/checkout?ref=bot")
	require.NoError(t, err)

	link, err := provider.CreateCheckoutSession(context.Background(), dto.CheckoutRequest{
		GuildID:    1,
		UserID:     2,
		Coins:      500,
		PriceCents: 300,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link.SessionID, "cs_"))

	parsed, err := url.Parse(link.URL)
	require.NoError(t, err)
	assert.Equal(t, "pay.example.com", parsed.Host)
	assert.Equal(t, "/checkout", parsed.Path)

	query := parsed.Query()
	assert.Equal(t, link.SessionID, query.Get("session_id"))
	assert.Equal(t, "bot", query.Get("ref"))
	assert.Equal(t, "500", query.Get("coins"))
	assert.Equal(t, "300", query.Get("price_cents"))

	other, err := provider.CreateCheckoutSession(context.Background(), dto.CheckoutRequest{Coins: 100})
	require.NoError(t, err)
	assert.NotEqual(t, link.SessionID, other.SessionID)
}

func TestNewLinkProvider_RejectsRelativeURL(t *testing.T) {
	_, err := NewLinkProvider("/checkout")
	assert.Error(t, err)
}
