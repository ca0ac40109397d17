package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ASHU16DEV/StaffManager/discordutils"
	"github.com/ASHU16DEV/StaffManager/duration"
	"github.com/ASHU16DEV/StaffManager/models"
	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
)

// StrikeAdd gives a member a strike and reports any enforcement.
func (bot *Bot) StrikeAdd(ctx context.Context, i *discordgo.InteractionCreate) string {
	opts := newOptions(i.ApplicationCommandData().Options)
	userID := opts.id("user")

	length, err := duration.Parse(opts.string("duration"))
	if err != nil {
		return bot.failure(ctx, i, "parse duration", err)
	}

	result, err := bot.Strikes.Add(
		ctx,
		i.GuildID,
		userID,
		opts.string("reason"),
		length,
		discordutils.InteractionUser(i.Interaction).ID,
	)
	if err != nil {
		return bot.failure(ctx, i, "add strike", err)
	}

	reply := fmt.Sprintf(
		"Strike added to <@%v> for %v (expires %v).\n**Active strikes:** %v/%v\n**Strike ID:** `%v`",
		userID,
		duration.Format(length),
		humanize.Time(result.Strike.Ends()),
		result.Active,
		result.Limit,
		result.Strike.ID,
	)
	if e := result.Enforcement; e != nil {
		reply += "\n\n**Strike limit reached.**"
		if e.Kicked {
			reply += "\nKicked from the staff server."
		}
		reply += "\nStaff roles removed: " + mentionRoles(e.RolesRemoved)
	}
	return reply
}

// StrikeRemove removes a strike by ID.
func (bot *Bot) StrikeRemove(ctx context.Context, i *discordgo.InteractionCreate) string {
	id := strings.TrimSpace(newOptions(i.ApplicationCommandData().Options).string("id"))

	strike, err := bot.Strikes.Remove(i.GuildID, id)
	if errors.Is(err, models.ErrNotFound) {
		return fmt.Sprintf("No strike with ID `%v` exists in this server.", id)
	}
	if err != nil {
		return bot.failure(ctx, i, "remove strike", err)
	}
	return fmt.Sprintf("Removed strike `%v` from <@%v> (%v).", strike.ID, strike.UserID, strike.Reason)
}

// StrikeClear removes every strike of a member.
func (bot *Bot) StrikeClear(ctx context.Context, i *discordgo.InteractionCreate) string {
	userID := newOptions(i.ApplicationCommandData().Options).id("user")

	n, err := bot.Strikes.RemoveAll(i.GuildID, userID)
	if err != nil {
		return bot.failure(ctx, i, "clear strikes", err)
	}
	if n == 0 {
		return fmt.Sprintf("<@%v> has no strikes.", userID)
	}
	return fmt.Sprintf("Removed %v from <@%v>.", pluralStrikes(n), userID)
}

// StrikeList lists active strikes of one member, or of the whole guild.
func (bot *Bot) StrikeList(ctx context.Context, i *discordgo.InteractionCreate) string {
	userID := newOptions(i.ApplicationCommandData().Options).id("user")

	policy, err := bot.Strikes.Policy(i.GuildID)
	if err != nil {
		return bot.failure(ctx, i, "load strike policy", err)
	}

	var active []models.Strike
	if userID != "" {
		active, err = bot.Strikes.ListActive(i.GuildID, userID)
	} else {
		active, err = bot.Strikes.ListGuildActive(i.GuildID)
	}
	if err != nil {
		return bot.failure(ctx, i, "list strikes", err)
	}
	if len(active) == 0 {
		return "There are no active strikes."
	}

	var reply strings.Builder
	fmt.Fprintf(&reply, "**Active strikes** (limit %v, %v total)\n", policy.Limit, len(active))
	for _, group := range groupByUser(active) {
		fmt.Fprintf(&reply, "\n<@%v>: %v/%v\n", group[0].UserID, len(group), policy.Limit)
		for n, strike := range group {
			fmt.Fprintf(&reply, "%v. %v, expires %v, ID `%v`\n",
				n+1,
				strike.Reason,
				humanize.Time(strike.Ends()),
				strike.ID,
			)
		}
	}
	return reply.String()
}

// StrikeHistory lists every stored strike of a member.
func (bot *Bot) StrikeHistory(ctx context.Context, i *discordgo.InteractionCreate) string {
	userID := newOptions(i.ApplicationCommandData().Options).id("user")

	all, err := bot.Strikes.ListAll(i.GuildID, userID)
	if err != nil {
		return bot.failure(ctx, i, "load strike history", err)
	}
	if len(all) == 0 {
		return fmt.Sprintf("<@%v> has no strikes on record.", userID)
	}

	now := time.Now()
	var reply strings.Builder
	fmt.Fprintf(&reply, "**Strike history** for <@%v> (%v)\n", userID, pluralStrikes(len(all)))
	for n, strike := range all {
		status := "active"
		if !strike.Active(now) {
			status = "expired"
		}
		fmt.Fprintf(&reply, "%v. %v, %v for %v by <@%v>, %v, ID `%v`\n",
			n+1,
			strike.Reason,
			humanize.Time(time.UnixMilli(strike.AddedAt)),
			duration.FormatShort(time.Duration(strike.Duration)*time.Millisecond),
			strike.AddedBy,
			status,
			strike.ID,
		)
	}
	return reply.String()
}

// StrikeLimit sets the guild's strike limit.
func (bot *Bot) StrikeLimit(ctx context.Context, i *discordgo.InteractionCreate) string {
	limit, _ := newOptions(i.ApplicationCommandData().Options).int("limit")

	err := bot.Strikes.SetLimit(i.GuildID, int(limit))
	if errors.Is(err, models.ErrInvalidInput) {
		return "The strike limit must be at least 1."
	}
	if err != nil {
		return bot.failure(ctx, i, "set strike limit", err)
	}
	return fmt.Sprintf("Members reaching %v will now be removed from staff.", pluralStrikes(int(limit)))
}

// StrikeChannel sets the channel strike activity is logged to.
func (bot *Bot) StrikeChannel(ctx context.Context, i *discordgo.InteractionCreate) string {
	channelID := newOptions(i.ApplicationCommandData().Options).id("channel")
	if err := bot.Strikes.SetChannel(i.GuildID, channelID); err != nil {
		return bot.failure(ctx, i, "set strike channel", err)
	}
	return fmt.Sprintf("I will now log strikes to <#%v>.", channelID)
}

// groupByUser groups strikes by member, keeping the order each member
// first appears in.
func groupByUser(strikes []models.Strike) [][]models.Strike {
	index := make(map[string]int)
	var groups [][]models.Strike
	for _, strike := range strikes {
		n, ok := index[strike.UserID]
		if !ok {
			n = len(groups)
			index[strike.UserID] = n
			groups = append(groups, nil)
		}
		groups[n] = append(groups[n], strike)
	}
	return groups
}

func pluralStrikes(n int) string {
	if n == 1 {
		return "1 strike"
	}
	return fmt.Sprintf("%v strikes", n)
}
