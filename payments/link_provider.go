package payments

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"veilbot/application/dto"

	"github.com/google/uuid"
)

// LinkProvider builds checkout links against a hosted checkout page. The page reports
// completed payments back through the coins webhook.
type LinkProvider struct {
	baseURL *url.URL
}

// NewLinkProvider creates a provider for the checkout page at baseURL
func NewLinkProvider(baseURL string) (*LinkProvider, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse checkout base URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("checkout base URL must be absolute, got %q", baseURL)
	}
	return &LinkProvider{baseURL: parsed}, nil
}

// CreateCheckoutSession returns a link carrying a new session ID and the pack details
func (p *LinkProvider) CreateCheckoutSession(ctx context.Context, req dto.CheckoutRequest) (*dto.CheckoutLink, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sessionID := "cs_" + uuid.NewString()

	link := *p.baseURL
	query := link.Query()
	query.Set("session_id", sessionID)
	query.Set("guild_id", strconv.FormatInt(req.GuildID, 10))
	query.Set("user_id", strconv.FormatInt(req.UserID, 10))
	query.Set("coins", strconv.FormatInt(req.Coins, 10))
	query.Set("price_cents", strconv.FormatInt(req.PriceCents, 10))
	link.RawQuery = query.Encode()

	return &dto.CheckoutLink{
		SessionID:  sessionID,
		URL:        link.String(),
		Coins:      req.Coins,
		PriceCents: req.PriceCents,
	}, nil
}
