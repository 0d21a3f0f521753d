package entities

import "time"

// Veil is an anonymized post awaiting attribution
type Veil struct {
	ID         int64      `db:"id"` // Discord message ID
	GuildID    int64      `db:"guild_id"`
	ChannelID  int64      `db:"channel_id"`
	AuthorID   int64      `db:"author_id"`
	Content    string     `db:"content"` // Text, or the photo reference when IsPhoto is set
	IsPhoto    bool       `db:"is_photo"`
	VeilNumber int64      `db:"veil_number"`
	GuessCount int        `db:"guess_count"`
	IsUnveiled bool       `db:"is_unveiled"`
	UnveiledBy *int64     `db:"unveiled_by"`
	UnveiledAt *time.Time `db:"unveiled_at"`
	CreatedAt  time.Time  `db:"created_at"`

	// Photo holds the original photo bytes, kept for the unveiled render. Not loaded by GetByID.
	Photo []byte `db:"photo"`
}

// IsExhausted reports whether every allowed guess has been used
func (v *Veil) IsExhausted(guessCap int) bool {
	return v.GuessCount >= guessCap
}

// IsOpen reports whether the veil still accepts guesses
func (v *Veil) IsOpen(guessCap int) bool {
	return !v.IsUnveiled && !v.IsExhausted(guessCap)
}

// RemainingGuesses returns the number of attempts left before the cap
func (v *Veil) RemainingGuesses(guessCap int) int {
	remaining := guessCap - v.GuessCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsAuthor reports whether the given user posted the veil
func (v *Veil) IsAuthor(userID int64) bool {
	return v.AuthorID == userID
}
