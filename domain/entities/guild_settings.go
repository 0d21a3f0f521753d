package entities

import "time"

const (
	MinGuessCap     = 1
	MaxGuessCap     = 3
	DefaultGuessCap = 3
)

// GuildSettings represents per-guild configuration settings
type GuildSettings struct {
	GuildID        int64      `db:"guild_id"`
	MaxGuesses     int        `db:"max_guesses"`
	VeilChannelID  *int64     `db:"veil_channel_id"`  // Nullable - channel veils are posted to
	AdminChannelID *int64     `db:"admin_channel_id"` // Nullable - elite admin log channel
	Tier           Tier       `db:"tier"`
	TierRenewsAt   *time.Time `db:"tier_renews_at"`
}

// HasVeilChannel checks if a veil channel is linked
func (gs *GuildSettings) HasVeilChannel() bool {
	return gs.VeilChannelID != nil && *gs.VeilChannelID > 0
}

// HasAdminChannel checks if an admin log channel is configured
func (gs *GuildSettings) HasAdminChannel() bool {
	return gs.AdminChannelID != nil && *gs.AdminChannelID > 0
}

// GuessCap returns the configured cap, clamped to the allowed range
func (gs *GuildSettings) GuessCap() int {
	if gs.MaxGuesses < MinGuessCap || gs.MaxGuesses > MaxGuessCap {
		return DefaultGuessCap
	}
	return gs.MaxGuesses
}

// ShouldMirrorToAdminLog reports whether new veils are copied to the admin channel
func (gs *GuildSettings) ShouldMirrorToAdminLog() bool {
	return gs.Tier.Policy().AdminLog && gs.HasAdminChannel()
}

// ValidGuessCap reports whether n is an allowed guess cap
func ValidGuessCap(n int) bool {
	return n >= MinGuessCap && n <= MaxGuessCap
}
