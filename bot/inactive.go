package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ASHU16DEV/StaffManager/discordutils"
	"github.com/ASHU16DEV/StaffManager/duration"
	"github.com/ASHU16DEV/StaffManager/inactive"
	"github.com/ASHU16DEV/StaffManager/models"
	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// Component custom IDs. Requests are identified by the message they were
// posted as, so the buttons carry no payload; the deny modal carries the
// message ID after its prefix.
const (
	inactiveAcceptPrefix = "inactive_accept"
	inactiveDenyPrefix   = "inactive_deny"
	denyReasonPrefix     = "deny_reason_"
	denyReasonInput      = "reason"
)

// InactiveRequest posts a leave request to the guild's request channel
// with buttons to approve or deny it.
func (bot *Bot) InactiveRequest(ctx context.Context, i *discordgo.InteractionCreate) string {
	opts := newOptions(i.ApplicationCommandData().Options)
	user := discordutils.InteractionUser(i.Interaction)

	length, err := duration.Parse(opts.string("duration"))
	if err != nil {
		return bot.failure(ctx, i, "parse duration", err)
	}

	channelID, err := bot.Store.Channel(i.GuildID, models.ChannelInactiveRequest)
	if err != nil {
		return bot.failure(ctx, i, "load request channel", err)
	}
	if channelID == "" {
		return "No inactive request channel is set. Ask an administrator to set one with /channelset."
	}

	reason := opts.string("reason")
	message, err := bot.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: fmt.Sprintf(
			"**Inactive request** from %v\n**Duration:** %v\n**Ends:** %v\n**Reason:** %v",
			user.Mention(),
			duration.Format(length),
			humanize.Time(time.Now().Add(length)),
			reason,
		),
		Components: decisionButtons(),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return bot.failure(ctx, i, "post inactive request", err)
	}

	_, err = bot.Inactive.RequestLeave(inactive.LeaveRequest{
		Key:      message.ID,
		GuildID:  i.GuildID,
		UserID:   user.ID,
		Reason:   reason,
		Duration: length,
	})
	if err != nil {
		if delErr := bot.session.ChannelMessageDelete(channelID, message.ID); delErr != nil {
			bot.log.Warn("Failed to delete orphaned request message.", zap.Error(delErr))
		}
		return bot.failure(ctx, i, "save inactive request", err)
	}
	return fmt.Sprintf("Your inactive request for %v has been sent to <#%v>.", duration.Format(length), channelID)
}

func decisionButtons() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Accept", Style: discordgo.SuccessButton, CustomID: inactiveAcceptPrefix},
				discordgo.Button{Label: "Deny", Style: discordgo.DangerButton, CustomID: inactiveDenyPrefix},
			},
		},
	}
}

// decidedButtons replaces the decision buttons once a request is decided.
func decidedButtons(label string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    label,
					Style:    discordgo.SecondaryButton,
					CustomID: "inactive_decided",
					Disabled: true,
				},
			},
		},
	}
}

// InactiveAccept approves the request the clicked message was posted as.
func (bot *Bot) InactiveAccept(ctx context.Context, i *discordgo.InteractionCreate, _ string) {
	if !bot.isManager(i) {
		bot.respond(i, managerRequired)
		return
	}
	approver := discordutils.InteractionUser(i.Interaction)

	grant, err := bot.Inactive.Approve(ctx, i.Message.ID, approver.ID)
	if errors.Is(err, models.ErrNotFound) {
		bot.respond(i, "This request is no longer pending, or the member has left the server.")
		return
	}
	if err != nil {
		bot.respond(i, bot.failure(ctx, i, "approve inactive request", err))
		return
	}

	bot.updateMessage(i, fmt.Sprintf(
		"%v\n\n**Approved** by %v. Inactive until %v.",
		i.Message.Content,
		approver.Mention(),
		humanize.Time(grant.Ends()),
	), "Approved")
}

// InactiveDenyPrompt asks the manager for a reason before denying.
func (bot *Bot) InactiveDenyPrompt(_ context.Context, i *discordgo.InteractionCreate, _ string) {
	if !bot.isManager(i) {
		bot.respond(i, managerRequired)
		return
	}

	err := bot.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: denyReasonPrefix + i.Message.ID,
			Title:    "Deny inactive request",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:  denyReasonInput,
							Label:     "Reason",
							Style:     discordgo.TextInputParagraph,
							Required:  true,
							MaxLength: 500,
						},
					},
				},
			},
		},
	})
	if err != nil {
		bot.log.Warn("Failed to open deny reason modal.", zap.Error(err))
	}
}

// InactiveDenySubmit denies the request with the reason from the modal.
func (bot *Bot) InactiveDenySubmit(ctx context.Context, i *discordgo.InteractionCreate, messageID string) {
	if !bot.isManager(i) {
		bot.respond(i, managerRequired)
		return
	}
	approver := discordutils.InteractionUser(i.Interaction)
	reason := modalValue(i.ModalSubmitData(), denyReasonInput)

	_, err := bot.Inactive.Deny(ctx, messageID, approver.ID, reason)
	if errors.Is(err, models.ErrNotFound) {
		bot.respond(i, "This request is no longer pending.")
		return
	}
	if err != nil {
		bot.respond(i, bot.failure(ctx, i, "deny inactive request", err))
		return
	}

	content := fmt.Sprintf("**Denied** by %v.\n**Reason:** %v", approver.Mention(), reason)
	if i.Message != nil {
		content = i.Message.Content + "\n\n" + content
	}
	bot.updateMessage(i, content, "Denied")
}

// InactiveClear ends a member's inactive period early.
func (bot *Bot) InactiveClear(ctx context.Context, i *discordgo.InteractionCreate) string {
	userID := newOptions(i.ApplicationCommandData().Options).id("user")

	err := bot.Inactive.Clear(ctx, i.GuildID, userID)
	if errors.Is(err, models.ErrNotFound) {
		return fmt.Sprintf("<@%v> is not inactive.", userID)
	}
	if err != nil {
		return bot.failure(ctx, i, "clear inactive status", err)
	}
	return fmt.Sprintf("Cleared <@%v>'s inactive status.", userID)
}

// updateMessage edits the message the component was attached to.
func (bot *Bot) updateMessage(i *discordgo.InteractionCreate, content, status string) {
	err := bot.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Components: decidedButtons(status),
		},
	})
	if err != nil {
		bot.log.Warn("Failed to update request message.", zap.Error(err))
	}
}

// modalValue returns the value of the modal's text input with customID.
func modalValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, component := range data.Components {
		row, ok := component.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if input, ok := inner.(*discordgo.TextInput); ok && input.CustomID == customID {
				return input.Value
			}
		}
	}
	return ""
}
