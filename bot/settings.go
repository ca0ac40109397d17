package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ASHU16DEV/StaffManager/models"
	"github.com/bwmarrin/discordgo"
)

// resetConfirmation must be typed to confirm a reset.
const resetConfirmation = "RESET"

// LinkServer links the main server with the staff server.
func (bot *Bot) LinkServer(ctx context.Context, i *discordgo.InteractionCreate) string {
	opts := newOptions(i.ApplicationCommandData().Options)
	primary, secondary := opts.string("main"), opts.string("staff")

	if err := bot.Sync.LinkServers(primary, secondary); err != nil {
		if errors.Is(err, models.ErrInvalidInput) {
			return "The main and staff servers must be two different server IDs."
		}
		return bot.failure(ctx, i, "link servers", err)
	}
	return fmt.Sprintf("Linked main server `%v` with staff server `%v`. Role sync is now active.", primary, secondary)
}

// RoleMap adds, removes or lists role mappings.
func (bot *Bot) RoleMap(ctx context.Context, i *discordgo.InteractionCreate) string {
	sub, opts := subcommandOptions(i.ApplicationCommandData())
	primary, secondary := opts.string("main_role"), opts.string("staff_role")

	switch sub {
	case "add":
		err := bot.Table.Add(primary, secondary)
		switch {
		case errors.Is(err, models.ErrAlreadyExists):
			return "One of those roles is already mapped. Remove its mapping first."
		case errors.Is(err, models.ErrInvalidInput):
			return "Both role IDs are required."
		case err != nil:
			return bot.failure(ctx, i, "add role mapping", err)
		}
		return fmt.Sprintf("Mapped main role `%v` to staff role `%v`.", primary, secondary)

	case "remove":
		err := bot.Table.Remove(primary, secondary)
		switch {
		case errors.Is(err, models.ErrNotFound):
			return "That role mapping doesn't exist."
		case err != nil:
			return bot.failure(ctx, i, "remove role mapping", err)
		}
		return fmt.Sprintf("Removed the mapping of main role `%v` to staff role `%v`.", primary, secondary)

	case "list":
		mappings, err := bot.Table.List()
		if err != nil {
			return bot.failure(ctx, i, "list role mappings", err)
		}
		if len(mappings) == 0 {
			return "No role mappings configured."
		}
		var reply strings.Builder
		reply.WriteString("**Role mappings** (main → staff):\n")
		for n, m := range mappings {
			fmt.Fprintf(&reply, "%v. `%v` → `%v`\n", n+1, m.PrimaryRoleID, m.SecondaryRoleID)
		}
		return reply.String()
	}
	return "Unknown subcommand."
}

// RoleSyncLogChannel sets the channel role sync activity is logged to.
func (bot *Bot) RoleSyncLogChannel(ctx context.Context, i *discordgo.InteractionCreate) string {
	channelID := newOptions(i.ApplicationCommandData().Options).id("channel")
	return bot.setChannel(ctx, i, models.ChannelRoleSyncLog, channelID)
}

// ChannelSet sets one of the guild's log channels.
func (bot *Bot) ChannelSet(ctx context.Context, i *discordgo.InteractionCreate) string {
	opts := newOptions(i.ApplicationCommandData().Options)
	kind := models.ChannelKind(opts.string("type"))
	if !kind.Valid() {
		return fmt.Sprintf("Unknown channel type `%v`.", kind)
	}
	return bot.setChannel(ctx, i, kind, opts.id("channel"))
}

// setChannel stores the channel for kind. The role sync log belongs to the
// main server wherever the command is used.
func (bot *Bot) setChannel(ctx context.Context, i *discordgo.InteractionCreate, kind models.ChannelKind, channelID string) string {
	guildID := i.GuildID
	if kind == models.ChannelRoleSyncLog {
		link, err := bot.Store.ServerLink()
		if errors.Is(err, models.ErrNotFound) {
			return "Link the servers with /linkserver first."
		}
		if err != nil {
			return bot.failure(ctx, i, "load server link", err)
		}
		guildID = link.PrimaryGuildID
	}

	if err := bot.Store.UpsertChannel(guildID, kind, channelID); err != nil {
		return bot.failure(ctx, i, "set channel", err)
	}
	return fmt.Sprintf("I will now use <#%v> for %v messages.", channelID, kind)
}

// InactiveRole sets the role given to inactive staff.
func (bot *Bot) InactiveRole(ctx context.Context, i *discordgo.InteractionCreate) string {
	roleID := newOptions(i.ApplicationCommandData().Options).id("role")
	if err := bot.Store.UpsertInactiveRole(i.GuildID, roleID); err != nil {
		return bot.failure(ctx, i, "set inactive role", err)
	}
	return fmt.Sprintf("I will now give <@&%v> to members on approved leave.", roleID)
}

// StaffRole adds, removes or lists staff roles.
func (bot *Bot) StaffRole(ctx context.Context, i *discordgo.InteractionCreate) string {
	sub, opts := subcommandOptions(i.ApplicationCommandData())
	roleID := opts.id("role")

	switch sub {
	case "add":
		err := bot.Staff.AddRole(i.GuildID, roleID)
		switch {
		case errors.Is(err, models.ErrAlreadyExists):
			return fmt.Sprintf("<@&%v> is already a staff role.", roleID)
		case err != nil:
			return bot.failure(ctx, i, "add staff role", err)
		}
		return fmt.Sprintf("<@&%v> is now a staff role.", roleID)

	case "remove":
		err := bot.Staff.RemoveRole(i.GuildID, roleID)
		switch {
		case errors.Is(err, models.ErrNotFound):
			return fmt.Sprintf("<@&%v> is not a staff role.", roleID)
		case err != nil:
			return bot.failure(ctx, i, "remove staff role", err)
		}
		return fmt.Sprintf("<@&%v> is no longer a staff role.", roleID)

	case "list":
		roles, err := bot.Staff.Roles(i.GuildID)
		if err != nil {
			return bot.failure(ctx, i, "list staff roles", err)
		}
		if len(roles) == 0 {
			return "No staff roles configured."
		}
		return "**Staff roles:** " + mentionRoles(roles)
	}
	return "Unknown subcommand."
}

// ManagerRole adds, removes or lists the roles allowed to use manager
// commands.
func (bot *Bot) ManagerRole(ctx context.Context, i *discordgo.InteractionCreate) string {
	sub, opts := subcommandOptions(i.ApplicationCommandData())
	roleID := opts.id("role")

	switch sub {
	case "add":
		added, err := bot.Store.AddManagerRole(i.GuildID, roleID)
		if err != nil {
			return bot.failure(ctx, i, "add manager role", err)
		}
		if !added {
			return fmt.Sprintf("<@&%v> is already a manager role.", roleID)
		}
		return fmt.Sprintf("<@&%v> is now a manager role.", roleID)

	case "remove":
		removed, err := bot.Store.RemoveManagerRole(i.GuildID, roleID)
		if err != nil {
			return bot.failure(ctx, i, "remove manager role", err)
		}
		if !removed {
			return fmt.Sprintf("<@&%v> is not a manager role.", roleID)
		}
		return fmt.Sprintf("<@&%v> is no longer a manager role.", roleID)

	case "list":
		roles, err := bot.Store.ManagerRoles(i.GuildID)
		if err != nil {
			return bot.failure(ctx, i, "list manager roles", err)
		}
		if len(roles) == 0 {
			return "No manager roles configured. Only administrators can use manager commands."
		}
		return "**Manager roles:** " + mentionRoles(roles)
	}
	return "Unknown subcommand."
}

// Reset permanently deletes every stored record.
func (bot *Bot) Reset(ctx context.Context, i *discordgo.InteractionCreate) string {
	if newOptions(i.ApplicationCommandData().Options).string("confirm") != resetConfirmation {
		return fmt.Sprintf("Reset cancelled. Type `%v` to confirm.", resetConfirmation)
	}
	if err := bot.Store.Reset(); err != nil {
		return bot.failure(ctx, i, "reset the database", err)
	}
	return "All data has been reset."
}
