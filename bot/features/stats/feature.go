package stats

import (
	"veilbot/application"
	"veilbot/domain/entities"

	"github.com/bwmarrin/discordgo"
)

// LeaderboardRenderer draws the leaderboard table
type LeaderboardRenderer interface {
	Generate(entries []*entities.LeaderboardEntry, usernames map[int64]string) ([]byte, error)
}

// Feature represents the stats feature
type Feature struct {
	uowFactory  application.UnitOfWorkFactory
	leaderboard LeaderboardRenderer
}

// NewFeature creates a new stats feature instance
func NewFeature(uowFactory application.UnitOfWorkFactory, leaderboard LeaderboardRenderer) *Feature {
	return &Feature{
		uowFactory:  uowFactory,
		leaderboard: leaderboard,
	}
}

// HandleCommand handles /veilstats and /leaderboard
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ApplicationCommandData().Name {
	case "veilstats":
		f.handleVeilStats(s, i)
	case "leaderboard":
		f.handleLeaderboard(s, i)
	}
}
