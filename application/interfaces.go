package application

import (
	"context"
	"errors"

	"veilbot/application/dto"
)

// ErrMessageNotFound is returned by a VeilPresenter when the Discord message no longer exists
var ErrMessageNotFound = errors.New("message not found")

// VeilPresenter draws veils in Discord. The application layer calls it only after the
// surrounding transaction has committed.
type VeilPresenter interface {
	// PostVeil posts the rendered veil with its controls and returns the new message ID
	PostVeil(ctx context.Context, channelID int64, image []byte, state dto.VeilDisplayState) (int64, error)

	// EditVeil redraws the controls of an existing veil message
	EditVeil(ctx context.Context, state dto.VeilDisplayState) error

	// RevealVeil redraws the controls and replaces the veil image with its unveiled render
	RevealVeil(ctx context.Context, state dto.VeilDisplayState, image []byte) error

	// DeleteMessage removes a message that could not be recorded
	DeleteMessage(ctx context.Context, channelID, messageID int64) error

	// MirrorToAdminLog copies a new veil with its author's identity to the admin channel
	MirrorToAdminLog(ctx context.Context, adminChannelID int64, image []byte, state dto.VeilDisplayState) error
}

// Renderer turns veil content into an image
type Renderer interface {
	RenderText(content string) ([]byte, error)
	RenderPhoto(photo []byte, skinID int) ([]byte, error)
}

// UnveilRenderer draws a veil after its author has been revealed
type UnveilRenderer interface {
	RenderUnveiledText(content string) ([]byte, error)
	RenderUnveiledPhoto(photo []byte) ([]byte, error)
}

// PhotoFetcher downloads the photo attached to a veil request
type PhotoFetcher interface {
	FetchPhoto(ctx context.Context, url string) ([]byte, error)
}

// PaymentProvider creates checkout sessions for coin packs
type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, req dto.CheckoutRequest) (*dto.CheckoutLink, error)
}
