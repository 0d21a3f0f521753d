package application

import (
	"context"
	"fmt"

	"veilbot/application/dto"
	"veilbot/domain/entities"
	"veilbot/domain/services"
	"veilbot/observability"

	log "github.com/sirupsen/logrus"
)

// VeilPublisher posts new veils: claim a number, render, post, record, then tidy up
// the previous latest veil and mirror to the admin log when the tier allows it.
type VeilPublisher struct {
	uowFactory UnitOfWorkFactory
	renderer   Renderer
	photos     PhotoFetcher
	presenter  VeilPresenter
}

// NewVeilPublisher creates a new veil publisher
func NewVeilPublisher(uowFactory UnitOfWorkFactory, renderer Renderer, photos PhotoFetcher, presenter VeilPresenter) *VeilPublisher {
	return &VeilPublisher{
		uowFactory: uowFactory,
		renderer:   renderer,
		photos:     photos,
		presenter:  presenter,
	}
}

type postTarget struct {
	channelID int64
	number    int64
	settings  *entities.GuildSettings
}

// Publish posts a veil for the request and returns its display state
func (p *VeilPublisher) Publish(ctx context.Context, req services.VeilRequest) (state *dto.VeilDisplayState, err error) {
	defer func() { observability.RecordVeilPosted(err) }()

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	target, err := p.claim(ctx, req)
	if err != nil {
		return nil, err
	}

	image, photo, err := p.render(ctx, req, target.number)
	if err != nil {
		return nil, err
	}

	guessCap := target.settings.GuessCap()
	veil := &entities.Veil{
		GuildID:    req.GuildID,
		ChannelID:  target.channelID,
		AuthorID:   req.AuthorID,
		Content:    req.Content,
		IsPhoto:    req.IsPhoto(),
		VeilNumber: target.number,
		Photo:      photo,
	}
	if veil.IsPhoto {
		veil.Content = req.PhotoURL
	}

	display := dto.NewVeilDisplayState(veil, guessCap, true)
	messageID, err := p.presenter.PostVeil(ctx, target.channelID, image, display)
	if err != nil {
		return nil, fmt.Errorf("failed to post veil: %w", err)
	}
	veil.ID = messageID
	display.VeilID = messageID

	previous, err := p.record(ctx, veil)
	if err != nil {
		if delErr := p.presenter.DeleteMessage(ctx, target.channelID, messageID); delErr != nil {
			log.WithFields(log.Fields{
				"channel_id": target.channelID,
				"message_id": messageID,
				"error":      delErr,
			}).Error("Failed to delete unrecorded veil message")
		}
		return nil, err
	}

	if previous != nil {
		prevDisplay := dto.NewVeilDisplayState(previous, guessCap, false)
		if err := p.presenter.EditVeil(ctx, prevDisplay); err != nil {
			log.WithFields(log.Fields{
				"channel_id": target.channelID,
				"veil_id":    previous.ID,
				"error":      err,
			}).Warn("Failed to remove New Veil button from previous veil")
		}
	}

	if target.settings.ShouldMirrorToAdminLog() {
		if err := p.presenter.MirrorToAdminLog(ctx, *target.settings.AdminChannelID, image, display); err != nil {
			log.WithFields(log.Fields{
				"guild_id":         req.GuildID,
				"admin_channel_id": *target.settings.AdminChannelID,
				"error":            err,
			}).Warn("Failed to mirror veil to admin log")
		}
	}

	return &display, nil
}

// claim resolves the destination channel and reserves a veil number in a short transaction
func (p *VeilPublisher) claim(ctx context.Context, req services.VeilRequest) (*postTarget, error) {
	uow := p.uowFactory.CreateForGuild(req.GuildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	txCtx := uow.Context()
	settings, err := services.NewGuildSettingsService(uow.GuildSettingsRepository()).GetOrCreateSettings(txCtx, req.GuildID)
	if err != nil {
		return nil, err
	}

	channelID := req.ChannelID
	if settings.HasVeilChannel() {
		channelID = *settings.VeilChannelID
	}

	veilService := services.NewVeilService(uow.VeilRepository(), uow.ChannelCounterRepository(), uow.LatestPointerRepository(), uow.EventBus())
	number, err := veilService.ClaimNumber(txCtx, channelID)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit veil number claim: %w", err)
	}

	return &postTarget{channelID: channelID, number: number, settings: settings}, nil
}

// render returns the veil image and, for photo veils, the original photo bytes
func (p *VeilPublisher) render(ctx context.Context, req services.VeilRequest, number int64) ([]byte, []byte, error) {
	if !req.IsPhoto() {
		image, err := p.renderer.RenderText(req.Content)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to render veil text: %w", err)
		}
		return image, nil, nil
	}

	photo, err := p.photos.FetchPhoto(ctx, req.PhotoURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch veil photo: %w", err)
	}
	image, err := p.renderer.RenderPhoto(photo, int(number))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to render veil photo: %w", err)
	}
	return image, photo, nil
}

// record stores the posted veil, moves the latest pointer and returns the previous latest veil
func (p *VeilPublisher) record(ctx context.Context, veil *entities.Veil) (*entities.Veil, error) {
	uow := p.uowFactory.CreateForGuild(veil.GuildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	txCtx := uow.Context()
	veilService := services.NewVeilService(uow.VeilRepository(), uow.ChannelCounterRepository(), uow.LatestPointerRepository(), uow.EventBus())

	previousID, err := veilService.RecordPosted(txCtx, veil)
	if err != nil {
		return nil, err
	}

	var previous *entities.Veil
	if previousID != nil {
		previous, err = veilService.GetVeil(txCtx, *previousID)
		if err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit veil: %w", err)
	}
	return previous, nil
}
