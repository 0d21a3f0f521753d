package entities

// LatestPointer references the most recent open veil in a channel
type LatestPointer struct {
	ChannelID int64 `db:"channel_id"`
	GuildID   int64 `db:"guild_id"`
	VeilID    int64 `db:"veil_id"`
}

// HydrationTarget is a latest veil joined with its guild's guess cap
type HydrationTarget struct {
	Veil     Veil
	GuessCap int
}
