package common

import (
	"github.com/bwmarrin/discordgo"
)

// MemberName returns the member's server nickname, global name or username, in that order
func MemberName(member *discordgo.Member) string {
	if member == nil {
		return ""
	}
	if member.Nick != "" {
		return member.Nick
	}
	if member.User == nil {
		return ""
	}
	if member.User.GlobalName != "" {
		return member.User.GlobalName
	}
	return member.User.Username
}

// GetDisplayName returns the server-specific display name for a user.
// Falls back to the user's ID if the member cannot be fetched.
func GetDisplayName(s *discordgo.Session, guildID string, userID int64) string {
	id := FormatID(userID)
	member, err := s.State.Member(guildID, id)
	if err != nil {
		member, err = s.GuildMember(guildID, id)
	}
	if err == nil {
		if name := MemberName(member); name != "" {
			return name
		}
	}
	return "User " + id
}

// IsBot reports whether the user is a bot account
func IsBot(user *discordgo.User) bool {
	return user == nil || user.Bot
}
