package strikes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ASHU16DEV/StaffManager/directory"
	"github.com/ASHU16DEV/StaffManager/duration"
	"github.com/ASHU16DEV/StaffManager/models"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// announce logs a new strike to the policy channel and tells the member.
func (l *Ledger) announce(ctx context.Context, guildID string, strike *models.Strike, active int, policy models.StrikePolicy) {
	length := duration.Format(time.Duration(strike.Duration) * time.Millisecond)
	expires := humanize.RelTime(strike.Ends(), l.now(), "ago", "from now")

	if policy.ChannelID != "" {
		l.notify.ChannelMessage(ctx, policy.ChannelID, fmt.Sprintf(
			"Strike added to <@%v> by <@%v>.\n**Reason:** %v\n**Duration:** %v (expires %v)\n"+
				"**Active strikes:** %v/%v\n**Strike ID:** `%v`",
			strike.UserID,
			strike.AddedBy,
			strike.Reason,
			length,
			expires,
			active,
			policy.Limit,
			strike.ID,
		))
	}

	l.notify.DirectMessage(ctx, strike.UserID, fmt.Sprintf(
		"You have received a strike in **%v**.\n**Reason:** %v\n**Duration:** %v (expires %v)\n"+
			"**Active strikes:** %v/%v",
		l.guildName(ctx, guildID),
		strike.Reason,
		length,
		expires,
		active,
		policy.Limit,
	))
}

// enforce kicks the member from the staff server and strips their staff
// roles in the main server. Each step is attempted regardless of the
// others. Nothing happens without a server link.
func (l *Ledger) enforce(
	ctx context.Context,
	guildID string,
	userID string,
	active int,
	policy models.StrikePolicy,
) *Enforcement {
	log := l.log.With(zap.String("guild", guildID), zap.String("user", userID))

	link, err := l.store.ServerLink()
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			log.Error("Failed to load server link.", zap.Error(err))
		}
		log.Info("Strike limit reached without a server link.")
		return nil
	}

	log.Info("Strike limit reached, enforcing.", zap.Int("active", active), zap.Int("limit", policy.Limit))
	result := &Enforcement{}

	l.notify.DirectMessage(ctx, userID, fmt.Sprintf(
		"You have reached the strike limit (%v/%v) in **%v**. "+
			"You have been removed from the staff team.",
		active,
		policy.Limit,
		l.guildName(ctx, guildID),
	))

	if _, ok := l.dir.Member(ctx, link.SecondaryGuildID, userID); ok {
		reason := fmt.Sprintf("Strike limit reached: %v/%v strikes", active, policy.Limit)
		if err := l.dir.Kick(ctx, link.SecondaryGuildID, userID, reason); err != nil {
			log.Warn("Failed to kick from staff server.", zap.Error(err))
		} else {
			result.Kicked = true
			l.logToChannel(ctx, policy, fmt.Sprintf(
				"Auto-kick: <@%v> has been kicked from the staff server (%v/%v strikes).",
				userID,
				active,
				policy.Limit,
			))
		}
	}

	if member, ok := l.dir.Member(ctx, link.PrimaryGuildID, userID); ok {
		staffRoles, err := l.store.StaffRoles(link.PrimaryGuildID)
		if err != nil {
			log.Error("Failed to load staff roles.", zap.Error(err))
			staffRoles = nil
		}

		for _, roleID := range staffRoles {
			if !directory.HasRole(member, roleID) {
				continue
			}
			if err := l.dir.RemoveRole(ctx, link.PrimaryGuildID, userID, roleID); err != nil {
				log.Warn("Failed to remove staff role.", zap.String("role", roleID), zap.Error(err))
				continue
			}
			result.RolesRemoved = append(result.RolesRemoved, roleID)
		}

		if len(result.RolesRemoved) > 0 {
			mentions := make([]string, len(result.RolesRemoved))
			for i, roleID := range result.RolesRemoved {
				mentions[i] = fmt.Sprintf("<@&%v>", roleID)
			}
			l.logToChannel(ctx, policy, fmt.Sprintf(
				"Auto role removal: staff roles removed from <@%v> in the main server: %v",
				userID,
				strings.Join(mentions, ", "),
			))
		}
	}

	return result
}

func (l *Ledger) logToChannel(ctx context.Context, policy models.StrikePolicy, content string) {
	if policy.ChannelID != "" {
		l.notify.ChannelMessage(ctx, policy.ChannelID, content)
	}
}

func (l *Ledger) guildName(ctx context.Context, guildID string) string {
	if guild, ok := l.dir.Guild(ctx, guildID); ok {
		return directory.GuildName(guild)
	}
	return guildID
}
