package repository

import (
	"context"
	"fmt"

	"veilbot/domain/entities"
	"veilbot/domain/interfaces"
)

// GuessRepository implements the GuessRepository interface
type GuessRepository struct {
	q       Queryable
	guildID int64
}

// NewGuessRepositoryScoped creates a new guess repository with a transaction and guild scope
func NewGuessRepositoryScoped(tx Queryable, guildID int64) interfaces.GuessRepository {
	return &GuessRepository{
		q:       tx,
		guildID: guildID,
	}
}

// Exists reports whether the user already guessed the veil
func (r *GuessRepository) Exists(ctx context.Context, veilID, guesserID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM guesses WHERE veil_id = $1 AND guesser_id = $2)`

	var exists bool
	if err := r.q.QueryRow(ctx, query, veilID, guesserID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check guess for veil %d: %w", veilID, err)
	}

	return exists, nil
}

// Insert records a guess. The primary key on (veil_id, guesser_id) makes a second
// insert for the same pair a no-op that reports false.
func (r *GuessRepository) Insert(ctx context.Context, guess *entities.Guess) (bool, error) {
	query := `
		INSERT INTO guesses (veil_id, guesser_id, candidate_id, is_correct)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (veil_id, guesser_id) DO NOTHING
		RETURNING created_at
	`

	rows, err := r.q.Query(ctx, query, guess.VeilID, guess.GuesserID, guess.CandidateID, guess.IsCorrect)
	if err != nil {
		return false, fmt.Errorf("failed to insert guess: %w", err)
	}
	defer rows.Close()

	inserted := false
	for rows.Next() {
		if err := rows.Scan(&guess.CreatedAt); err != nil {
			return false, fmt.Errorf("failed to scan guess: %w", err)
		}
		inserted = true
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("failed to insert guess: %w", err)
	}

	return inserted, nil
}

// MarkIncorrect clears the correctness flag of a guess that lost the unveil race
func (r *GuessRepository) MarkIncorrect(ctx context.Context, veilID, guesserID int64) error {
	query := `UPDATE guesses SET is_correct = FALSE WHERE veil_id = $1 AND guesser_id = $2`

	if _, err := r.q.Exec(ctx, query, veilID, guesserID); err != nil {
		return fmt.Errorf("failed to mark guess incorrect: %w", err)
	}
	return nil
}

// Delete removes a guess
func (r *GuessRepository) Delete(ctx context.Context, veilID, guesserID int64) error {
	query := `DELETE FROM guesses WHERE veil_id = $1 AND guesser_id = $2`

	if _, err := r.q.Exec(ctx, query, veilID, guesserID); err != nil {
		return fmt.Errorf("failed to delete guess: %w", err)
	}
	return nil
}

// CountIncorrectByGuesser counts the user's wrong guesses on veils in the current guild
func (r *GuessRepository) CountIncorrectByGuesser(ctx context.Context, guesserID int64) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM guesses g
		JOIN veils v ON v.id = g.veil_id
		WHERE g.guesser_id = $1 AND v.guild_id = $2 AND g.is_correct = FALSE
	`

	var count int64
	if err := r.q.QueryRow(ctx, query, guesserID, r.guildID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count incorrect guesses: %w", err)
	}

	return count, nil
}

// CountCorrect counts the winning guesses on veils in the current guild
func (r *GuessRepository) CountCorrect(ctx context.Context) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM guesses g
		JOIN veils v ON v.id = g.veil_id
		WHERE v.guild_id = $1 AND g.is_correct
	`

	var count int64
	if err := r.q.QueryRow(ctx, query, r.guildID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count correct guesses: %w", err)
	}

	return count, nil
}

// GetLeaderboard ranks guessers in the current guild by correct guesses
func (r *GuessRepository) GetLeaderboard(ctx context.Context, limit int) ([]*entities.LeaderboardEntry, error) {
	query := `
		SELECT g.guesser_id, COUNT(*) AS correct
		FROM guesses g
		JOIN veils v ON v.id = g.veil_id
		WHERE v.guild_id = $1 AND g.is_correct = TRUE
		GROUP BY g.guesser_id
		ORDER BY correct DESC, MIN(g.created_at) ASC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, r.guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []*entities.LeaderboardEntry
	for rows.Next() {
		entry := &entities.LeaderboardEntry{Rank: len(entries) + 1}
		if err := rows.Scan(&entry.UserID, &entry.CorrectGuesses); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leaderboard: %w", err)
	}

	return entries, nil
}
