package discordutils

import (
	"github.com/bwmarrin/discordgo"
)

// MemberHasAdminPermissions returns true if the given member has admin permissions.
func MemberHasAdminPermissions(guild *discordgo.Guild, member *discordgo.Member) bool {
	if member.User != nil && member.User.ID == guild.OwnerID {
		return true
	}
	if member.Permissions&discordgo.PermissionAdministrator > 0 {
		return true
	}

	guildRoles := make(map[string]*discordgo.Role)
	for _, role := range guild.Roles {
		guildRoles[role.ID] = role
	}

	for _, roleID := range member.Roles {
		if role, ok := guildRoles[roleID]; ok {
			if RoleAllowsAdminPermissions(role) {
				return true
			}
		}
	}

	return false
}

// MemberHasManagerPermissions returns true if the member has admin
// permissions or holds one of managerRoleIDs.
func MemberHasManagerPermissions(guild *discordgo.Guild, member *discordgo.Member, managerRoleIDs []string) bool {
	if MemberHasAdminPermissions(guild, member) {
		return true
	}
	for _, roleID := range member.Roles {
		for _, managerRoleID := range managerRoleIDs {
			if roleID == managerRoleID {
				return true
			}
		}
	}
	return false
}

// RoleAllowsAdminPermissions returns true if the given role allows admin permissions.
func RoleAllowsAdminPermissions(role *discordgo.Role) bool {
	return role.Permissions&discordgo.PermissionAdministrator > 0
}

// AckInteraction sends a deferred ephemeral response for the given
// interaction.
func AckInteraction(
	interaction *discordgo.Interaction,
	session *discordgo.Session,
) error {
	return session.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
}

// SendFollowup creates a followup message with the given content.
func SendFollowup(
	content string,
	interaction *discordgo.Interaction,
	session *discordgo.Session,
) error {
	_, err := session.FollowupMessageCreate(
		interaction,
		true,
		&discordgo.WebhookParams{
			Content: content,
		},
	)
	return err
}

// OptionMap indexes the options of a command or subcommand by name.
func OptionMap(
	options []*discordgo.ApplicationCommandInteractionDataOption,
) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	byName := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, option := range options {
		byName[option.Name] = option
	}
	return byName
}

// InteractionUser returns the user who triggered the interaction, whether
// it came from a guild or a direct message.
func InteractionUser(interaction *discordgo.Interaction) *discordgo.User {
	if interaction.Member != nil && interaction.Member.User != nil {
		return interaction.Member.User
	}
	return interaction.User
}
