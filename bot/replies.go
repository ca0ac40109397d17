package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ASHU16DEV/StaffManager/discordutils"
	"github.com/ASHU16DEV/StaffManager/duration"
	"github.com/ASHU16DEV/StaffManager/models"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const (
	adminRequired   = "You need administrator permissions to use this command."
	managerRequired = "You need administrator permissions or a manager role to do that."
)

// userError returns the message shown for errors caused by the command's
// input, or false for anything else.
func userError(err error) (string, bool) {
	var durationErr *duration.Error
	switch {
	case errors.As(err, &durationErr):
		return fmt.Sprintf("Invalid duration: %v.", durationErr), true
	case errors.Is(err, models.ErrInvalidInput):
		return "That input isn't valid.", true
	case errors.Is(err, models.ErrNotFound):
		return "I couldn't find that.", true
	case errors.Is(err, models.ErrAlreadyExists):
		return "That already exists.", true
	}
	return "", false
}

// failure logs an unexpected command error, reports it to the guild's
// error log channel and returns the reply for the user.
func (bot *Bot) failure(ctx context.Context, i *discordgo.InteractionCreate, action string, err error) string {
	if reply, ok := userError(err); ok {
		return reply
	}

	bot.log.Error("Command failed.",
		zap.String("guild", i.GuildID),
		zap.String("action", action),
		zap.Error(err),
	)

	channelID, chErr := bot.Store.Channel(i.GuildID, models.ChannelErrorLog)
	if chErr != nil {
		bot.log.Error("Failed to load error log channel.", zap.Error(chErr))
	}
	if channelID != "" {
		bot.Notify.ChannelMessage(ctx, channelID, fmt.Sprintf(
			"Error while trying to %v (used by <@%v>): %v",
			action,
			invokerID(i),
			err,
		))
	}
	return fmt.Sprintf("Failed to %v. The error has been logged.", action)
}

func invokerID(i *discordgo.InteractionCreate) string {
	if user := discordutils.InteractionUser(i.Interaction); user != nil {
		return user.ID
	}
	return ""
}

func mentionRoles(roleIDs []string) string {
	if len(roleIDs) == 0 {
		return "none"
	}
	mentions := make([]string, len(roleIDs))
	for i, roleID := range roleIDs {
		mentions[i] = fmt.Sprintf("<@&%v>", roleID)
	}
	return strings.Join(mentions, ", ")
}
