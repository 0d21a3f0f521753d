package entities

import "time"

// Guess is a single attribution attempt. At most one exists per (veil, guesser).
type Guess struct {
	VeilID      int64     `db:"veil_id"`
	GuesserID   int64     `db:"guesser_id"`
	CandidateID int64     `db:"candidate_id"`
	IsCorrect   bool      `db:"is_correct"`
	CreatedAt   time.Time `db:"created_at"`
}
