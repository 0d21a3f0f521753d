package guess

import (
	"veilbot/bot/common"

	"github.com/bwmarrin/discordgo"
)

const (
	recentMessageWindow = 100
	memberFetchLimit    = 1000
)

// candidateSource collects the raw inputs of the candidate pool from Discord
type candidateSource struct {
	recent  []int64
	members []int64
	names   map[int64]string
}

func (c *candidateSource) addName(id int64, name string) {
	if _, ok := c.names[id]; !ok && name != "" {
		c.names[id] = name
	}
}

// collectCandidates reads recent channel posters and guild members, skipping bots
func collectCandidates(s *discordgo.Session, guildID, channelID string) (*candidateSource, error) {
	src := &candidateSource{names: make(map[int64]string)}

	messages, err := s.ChannelMessages(channelID, recentMessageWindow, "", "", "")
	if err != nil {
		return nil, err
	}
	src.recent = recentPosters(messages)
	for _, m := range messages {
		if common.IsBot(m.Author) {
			continue
		}
		if id, err := common.ParseID(m.Author.ID); err == nil {
			name := m.Author.GlobalName
			if m.Member != nil && m.Member.Nick != "" {
				name = m.Member.Nick
			}
			if name == "" {
				name = m.Author.Username
			}
			src.addName(id, name)
		}
	}

	members, err := s.GuildMembers(guildID, "", memberFetchLimit)
	if err != nil {
		return nil, err
	}
	for _, member := range members {
		if common.IsBot(member.User) {
			continue
		}
		id, err := common.ParseID(member.User.ID)
		if err != nil {
			continue
		}
		src.members = append(src.members, id)
		src.addName(id, common.MemberName(member))
	}

	return src, nil
}

// recentPosters returns distinct human authors, most recent first
func recentPosters(messages []*discordgo.Message) []int64 {
	seen := make(map[int64]bool)
	posters := make([]int64, 0, len(messages))
	for _, m := range messages {
		if common.IsBot(m.Author) {
			continue
		}
		id, err := common.ParseID(m.Author.ID)
		if err != nil || seen[id] {
			continue
		}
		seen[id] = true
		posters = append(posters, id)
	}
	return posters
}
