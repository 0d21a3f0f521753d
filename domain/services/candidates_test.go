package services

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sequence(from, n int64) []int64 {
	ids := make([]int64, 0, n)
	for i := int64(0); i < n; i++ {
		ids = append(ids, from+i)
	}
	return ids
}

func TestBuildCandidatePool(t *testing.T) {
	tests := []struct {
		name       string
		authorID   int64
		recent     []int64
		members    []int64
		wantLen    int
		mustHave   []int64
		recentSeen int
	}{
		{
			name:     "small guild includes everyone",
			authorID: 1,
			recent:   []int64{2, 3},
			members:  []int64{1, 2, 3, 4},
			wantLen:  4,
			mustHave: []int64{1, 2, 3, 4},
		},
		{
			name:       "large guild caps at 25 with author and 12 recent",
			authorID:   1,
			recent:     sequence(100, 20),
			members:    sequence(1000, 200),
			wantLen:    MaxCandidates,
			mustHave:   append([]int64{1}, sequence(100, MaxRecentCandidates)...),
			recentSeen: MaxRecentCandidates,
		},
		{
			name:     "author missing from member list is still offered",
			authorID: 42,
			members:  sequence(1, 5),
			wantLen:  6,
			mustHave: []int64{42},
		},
		{
			name:     "duplicates and zero IDs are ignored",
			authorID: 1,
			recent:   []int64{1, 2, 2, 0},
			members:  []int64{0, 2, 3, 3},
			wantLen:  3,
			mustHave: []int64{1, 2, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(7))
			pool := BuildCandidatePool(tt.authorID, tt.recent, tt.members, rng)

			assert.Len(t, pool, tt.wantLen)
			for _, id := range tt.mustHave {
				assert.Contains(t, pool, id)
			}

			seen := make(map[int64]bool)
			for _, id := range pool {
				assert.False(t, seen[id], "duplicate candidate %d", id)
				seen[id] = true
			}

			if tt.recentSeen > 0 {
				count := 0
				for _, id := range sequence(100, 20) {
					if seen[id] {
						count++
					}
				}
				assert.Equal(t, tt.recentSeen, count)
			}
		})
	}
}
