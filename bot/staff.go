package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ASHU16DEV/StaffManager/models"
	"github.com/ASHU16DEV/StaffManager/staff"
	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
)

func (bot *Bot) staffAction(i *discordgo.InteractionCreate) staff.Action {
	opts := newOptions(i.ApplicationCommandData().Options)
	return staff.Action{
		GuildID:    i.GuildID,
		UserID:     opts.id("user"),
		RoleID:     opts.id("role"),
		Reason:     opts.string("reason"),
		ExecutorID: invokerID(i),
	}
}

// Promote grants a member a role.
func (bot *Bot) Promote(ctx context.Context, i *discordgo.InteractionCreate) string {
	a := bot.staffAction(i)
	if _, err := bot.Staff.Promote(ctx, a); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "That member or role could not be found."
		}
		return bot.failure(ctx, i, "promote", err)
	}
	return fmt.Sprintf("Promoted <@%v> to <@&%v>.", a.UserID, a.RoleID)
}

// Demote revokes a role from a member.
func (bot *Bot) Demote(ctx context.Context, i *discordgo.InteractionCreate) string {
	a := bot.staffAction(i)
	if _, err := bot.Staff.Demote(ctx, a); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Sprintf("<@%v> does not hold <@&%v>.", a.UserID, a.RoleID)
		}
		return bot.failure(ctx, i, "demote", err)
	}
	return fmt.Sprintf("Demoted <@%v> from <@&%v>.", a.UserID, a.RoleID)
}

// Fire removes a member from the staff team.
func (bot *Bot) Fire(ctx context.Context, i *discordgo.InteractionCreate) string {
	a := bot.staffAction(i)
	record, err := bot.Staff.Fire(ctx, a)
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		return fmt.Sprintf("<@%v> is not a staff member.", a.UserID)
	case errors.Is(err, models.ErrNotFound):
		return fmt.Sprintf("<@%v> is not in this server.", a.UserID)
	case err != nil:
		return bot.failure(ctx, i, "fire", err)
	}
	return fmt.Sprintf("Fired <@%v> from the staff team. Roles removed: %v", a.UserID, mentionRoles(record.RoleIDs))
}

// Resign removes the invoking member from the staff team.
func (bot *Bot) Resign(ctx context.Context, i *discordgo.InteractionCreate) string {
	userID := invokerID(i)
	reason := newOptions(i.ApplicationCommandData().Options).string("reason")

	_, err := bot.Staff.Resign(ctx, i.GuildID, userID, reason)
	if errors.Is(err, models.ErrInvalidInput) {
		return "You are not a staff member."
	}
	if err != nil {
		return bot.failure(ctx, i, "resign", err)
	}
	return "Your resignation has been processed. Thank you for your service."
}

// StaffList lists the members holding each staff role.
func (bot *Bot) StaffList(ctx context.Context, i *discordgo.InteractionCreate) string {
	roster, err := bot.Staff.Roster(ctx, i.GuildID)
	if err != nil {
		return bot.failure(ctx, i, "list staff", err)
	}
	if len(roster) == 0 {
		return "No staff roles configured."
	}

	var reply strings.Builder
	reply.WriteString("**Staff team**\n")
	for _, entry := range roster {
		mentions := make([]string, len(entry.Members))
		for n, member := range entry.Members {
			mentions[n] = member.Mention()
		}
		if len(mentions) == 0 {
			mentions = []string{"nobody"}
		}
		fmt.Fprintf(&reply, "\n<@&%v> (%v): %v", entry.RoleID, len(entry.Members), strings.Join(mentions, ", "))
	}
	return reply.String()
}

// StaffHistory lists recent staff actions.
func (bot *Bot) StaffHistory(ctx context.Context, i *discordgo.InteractionCreate) string {
	opts := newOptions(i.ApplicationCommandData().Options)
	userID := opts.id("user")
	limit, _ := opts.int("limit")

	records, err := bot.Staff.History(userID, int(limit))
	if err != nil {
		return bot.failure(ctx, i, "load staff history", err)
	}
	if len(records) == 0 {
		return "No staff action records found."
	}

	var reply strings.Builder
	fmt.Fprintf(&reply, "**Staff action history** (last %v)\n", len(records))
	for _, record := range records {
		fmt.Fprintf(&reply, "**%v** <@%v>, roles %v, by %v %v. %v\n",
			strings.ToUpper(string(record.Action)),
			record.UserID,
			mentionRoles(record.RoleIDs),
			executorMention(record.ExecutorID),
			humanize.Time(time.UnixMilli(record.Timestamp)),
			record.Reason,
		)
	}
	return reply.String()
}

func executorMention(userID string) string {
	if userID == "" {
		return "unknown"
	}
	return fmt.Sprintf("<@%v>", userID)
}
