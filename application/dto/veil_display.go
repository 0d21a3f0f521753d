package dto

import "veilbot/domain/entities"

// VeilDisplayState is everything the presentation layer needs to draw a veil's controls
type VeilDisplayState struct {
	GuildID    int64
	ChannelID  int64
	VeilID     int64 // Discord message ID of the veil post
	VeilNumber int64
	AuthorID   int64
	IsPhoto    bool
	GuessCount int
	GuessCap   int
	IsUnveiled bool
	UnveiledBy *int64
	IsLatest   bool // Only the latest veil carries the "New Veil" button
}

// NewVeilDisplayState builds the display state of a stored veil
func NewVeilDisplayState(veil *entities.Veil, guessCap int, isLatest bool) VeilDisplayState {
	return VeilDisplayState{
		GuildID:    veil.GuildID,
		ChannelID:  veil.ChannelID,
		VeilID:     veil.ID,
		VeilNumber: veil.VeilNumber,
		AuthorID:   veil.AuthorID,
		IsPhoto:    veil.IsPhoto,
		GuessCount: veil.GuessCount,
		GuessCap:   guessCap,
		IsUnveiled: veil.IsUnveiled,
		UnveiledBy: veil.UnveiledBy,
		IsLatest:   isLatest,
	}
}

// GuessDisabled reports whether the Unveil button must be disabled
func (s VeilDisplayState) GuessDisabled() bool {
	return s.IsUnveiled || s.GuessCount >= s.GuessCap
}

// AuthorRevealed reports whether the author's identity may be shown
func (s VeilDisplayState) AuthorRevealed() bool {
	return s.IsUnveiled
}
