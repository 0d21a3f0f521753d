package entities

import "time"

// LeaderboardEntry is one row of the correct-guess leaderboard
type LeaderboardEntry struct {
	Rank           int
	UserID         int64
	CorrectGuesses int64
}

// UserStats summarizes a user's activity in a guild
type UserStats struct {
	UserID           int64
	Coins            int64
	Unlimited        bool
	VeilsUnveiled    int
	IncorrectGuesses int64
	NextRefillAt     *time.Time
}

// Accuracy returns the share of the user's settled guesses that unveiled a veil.
// ok is false when the user has not guessed yet.
func (s *UserStats) Accuracy() (accuracy float64, ok bool) {
	total := int64(s.VeilsUnveiled) + s.IncorrectGuesses
	if total == 0 {
		return 0, false
	}
	return float64(s.VeilsUnveiled) / float64(total), true
}

// GuildStats summarizes veil activity across a guild
type GuildStats struct {
	VeilsSent     int64
	VeilsUnveiled int64
}
