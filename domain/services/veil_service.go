package services

import (
	"context"
	"fmt"

	"veilbot/domain/entities"
	"veilbot/domain/events"
	"veilbot/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// VeilService handles veil numbering and persistence for one guild
type VeilService struct {
	veilRepo       interfaces.VeilRepository
	counterRepo    interfaces.ChannelCounterRepository
	pointerRepo    interfaces.LatestPointerRepository
	eventPublisher interfaces.EventPublisher
}

// NewVeilService creates a new veil service
func NewVeilService(
	veilRepo interfaces.VeilRepository,
	counterRepo interfaces.ChannelCounterRepository,
	pointerRepo interfaces.LatestPointerRepository,
	eventPublisher interfaces.EventPublisher,
) *VeilService {
	return &VeilService{
		veilRepo:       veilRepo,
		counterRepo:    counterRepo,
		pointerRepo:    pointerRepo,
		eventPublisher: eventPublisher,
	}
}

// ClaimNumber reserves the next veil number in a channel
func (s *VeilService) ClaimNumber(ctx context.Context, channelID int64) (int64, error) {
	number, err := s.counterRepo.ClaimNext(ctx, channelID)
	if err != nil {
		return 0, fmt.Errorf("failed to claim veil number for channel %d: %w", channelID, err)
	}
	return number, nil
}

// RecordPosted stores a posted veil and makes it the channel's latest.
// Returns the veil that was latest before, if any.
func (s *VeilService) RecordPosted(ctx context.Context, veil *entities.Veil) (*int64, error) {
	if veil.ID == 0 || veil.ChannelID == 0 || veil.AuthorID == 0 {
		return nil, fmt.Errorf("%w: veil is missing message, channel or author", ErrInvalidVeil)
	}
	if veil.VeilNumber <= 0 {
		return nil, fmt.Errorf("%w: veil number must be claimed first", ErrInvalidVeil)
	}

	if err := s.veilRepo.Create(ctx, veil); err != nil {
		return nil, fmt.Errorf("failed to create veil: %w", err)
	}

	previous, err := s.pointerRepo.Set(ctx, veil.ChannelID, veil.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update latest veil pointer: %w", err)
	}

	log.WithFields(log.Fields{
		"guild_id":    veil.GuildID,
		"channel_id":  veil.ChannelID,
		"veil_id":     veil.ID,
		"veil_number": veil.VeilNumber,
		"previous":    previous,
	}).Info("Veil recorded")

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(events.VeilPostedEvent{
			GuildID:    veil.GuildID,
			ChannelID:  veil.ChannelID,
			VeilID:     veil.ID,
			VeilNumber: veil.VeilNumber,
			AuthorID:   veil.AuthorID,
			IsPhoto:    veil.IsPhoto,
		}); err != nil {
			log.WithError(err).Warn("Failed to publish veil posted event")
		}
	}

	return previous, nil
}

// GetVeil returns a veil by ID, or nil if it does not exist
func (s *VeilService) GetVeil(ctx context.Context, veilID int64) (*entities.Veil, error) {
	veil, err := s.veilRepo.GetByID(ctx, veilID)
	if err != nil {
		return nil, fmt.Errorf("failed to get veil %d: %w", veilID, err)
	}
	return veil, nil
}

// IsLatest reports whether veilID is the channel's latest veil
func (s *VeilService) IsLatest(ctx context.Context, channelID, veilID int64) (bool, error) {
	pointer, err := s.pointerRepo.Get(ctx, channelID)
	if err != nil {
		return false, fmt.Errorf("failed to get latest veil pointer: %w", err)
	}
	return pointer != nil && pointer.VeilID == veilID, nil
}
