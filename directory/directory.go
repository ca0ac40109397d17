// Package directory declares the chat platform operations the staff
// engines depend on. Values are discordgo types; the live implementation
// lives in discordutils.
package directory

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Directory looks up and mutates guilds, members and roles. Lookups report
// absence, including lookup failures, with a false result. Mutations
// return an error the caller is expected to log and skip past.
type Directory interface {
	Guild(ctx context.Context, guildID string) (*discordgo.Guild, bool)
	Member(ctx context.Context, guildID, userID string) (*discordgo.Member, bool)
	Role(ctx context.Context, guildID, roleID string) (*discordgo.Role, bool)
	RoleHolders(ctx context.Context, guildID, roleID string) ([]*discordgo.Member, error)

	AddRole(ctx context.Context, guildID, userID, roleID string) error
	RemoveRole(ctx context.Context, guildID, userID, roleID string) error
	Kick(ctx context.Context, guildID, userID, reason string) error
}

// Notifier delivers messages. Delivery failures are absorbed by the
// implementation.
type Notifier interface {
	ChannelMessage(ctx context.Context, channelID, content string)
	DirectMessage(ctx context.Context, userID, content string)
}

// HasRole returns true if the given member has the given role.
func HasRole(member *discordgo.Member, roleID string) bool {
	for _, id := range member.Roles {
		if id == roleID {
			return true
		}
	}
	return false
}

// GuildName returns the guild's name, falling back to its ID.
func GuildName(guild *discordgo.Guild) string {
	if guild.Name != "" {
		return guild.Name
	}
	return guild.ID
}
