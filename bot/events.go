package bot

import (
	"context"

	"github.com/ASHU16DEV/StaffManager/rolesync"
	"github.com/bwmarrin/discordgo"
)

func (bot *Bot) onMemberUpdate(_ *discordgo.Session, m *discordgo.GuildMemberUpdate) {
	if m.Member == nil || m.User == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	// Uncached member: removed roles are unknown, only grants can be mirrored.
	if m.BeforeUpdate == nil {
		bot.Sync.RolesAdded(ctx, m.GuildID, m.User.ID, m.Roles)
		return
	}
	bot.Sync.MemberUpdated(ctx, m.GuildID, m.User.ID, m.BeforeUpdate.Roles, m.Roles)
}

func (bot *Bot) onMemberRemove(_ *discordgo.Session, m *discordgo.GuildMemberRemove) {
	if m.Member == nil || m.User == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	bot.Sync.MemberRemoved(ctx, m.GuildID, m.User.ID, nil, rolesync.RemovalLeft)
}

func (bot *Bot) onBanAdd(_ *discordgo.Session, b *discordgo.GuildBanAdd) {
	if b.User == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	bot.Sync.MemberRemoved(ctx, b.GuildID, b.User.ID, nil, rolesync.RemovalBanned)
}
