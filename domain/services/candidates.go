package services

import "math/rand"

const (
	// MaxCandidates is the most options a guess dropdown can show
	MaxCandidates = 25

	// MaxRecentCandidates caps how many recent channel posters are preferred
	MaxRecentCandidates = 12
)

// BuildCandidatePool picks the members offered in a guess dropdown. Recent posters
// come first (up to MaxRecentCandidates), random members fill the rest, the author
// is always included and the final order is shuffled.
func BuildCandidatePool(authorID int64, recentPosters, members []int64, rng *rand.Rand) []int64 {
	seen := make(map[int64]bool, MaxCandidates)
	pool := make([]int64, 0, MaxCandidates)

	add := func(id int64) bool {
		if id == 0 || seen[id] || len(pool) >= MaxCandidates {
			return false
		}
		seen[id] = true
		pool = append(pool, id)
		return true
	}

	// Reserve a slot for the author up front
	add(authorID)

	recentAdded := 0
	for _, id := range recentPosters {
		if recentAdded >= MaxRecentCandidates {
			break
		}
		if add(id) {
			recentAdded++
		}
	}

	shuffled := make([]int64, len(members))
	copy(shuffled, members)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	for _, id := range shuffled {
		if len(pool) >= MaxCandidates {
			break
		}
		add(id)
	}

	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	return pool
}
