package bot

import (
	"github.com/ASHU16DEV/StaffManager/discordutils"
	"github.com/ASHU16DEV/StaffManager/models"
	"github.com/ASHU16DEV/StaffManager/staff"
	"github.com/bwmarrin/discordgo"
)

var (
	adminPermission int64 = discordgo.PermissionAdministrator
	minLimit              = 1.0
)

func userOption(description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "user",
		Description: description,
		Required:    required,
	}
}

func roleOption(name, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionRole,
		Name:        name,
		Description: description,
		Required:    true,
	}
}

func channelOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionChannel,
		Name:         "channel",
		Description:  description,
		Required:     true,
		ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
	}
}

func stringOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

func subcommand(name, description string, options ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        name,
		Description: description,
		Options:     options,
	}
}

func channelKindChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, len(models.ChannelKinds))
	for i, kind := range models.ChannelKinds {
		choices[i] = &discordgo.ApplicationCommandOptionChoice{Name: string(kind), Value: string(kind)}
	}
	return choices
}

var botCommands = []*discordgo.ApplicationCommand{
	{
		Name:                     "linkserver",
		Description:              "Links the main server with the staff server.",
		DefaultMemberPermissions: &adminPermission,
		Options: []*discordgo.ApplicationCommandOption{
			stringOption("main", "Main server ID.", true),
			stringOption("staff", "Staff server ID.", true),
		},
	}, {
		Name:                     "rolemap",
		Description:              "Maps main server roles to staff server roles.",
		DefaultMemberPermissions: &adminPermission,
		Options: []*discordgo.ApplicationCommandOption{
			subcommand("add", "Maps a main server role to a staff server role.",
				stringOption("main_role", "Main server role ID.", true),
				stringOption("staff_role", "Staff server role ID.", true),
			),
			subcommand("remove", "Removes a role mapping.",
				stringOption("main_role", "Main server role ID.", true),
				stringOption("staff_role", "Staff server role ID.", true),
			),
			subcommand("list", "Lists every role mapping."),
		},
	}, {
		Name:                     "rolesynclogchannel",
		Description:              "Sets the channel role sync activity is logged to.",
		DefaultMemberPermissions: &adminPermission,
		Options:                  []*discordgo.ApplicationCommandOption{channelOption("The log channel.")},
	}, {
		Name:                     "channelset",
		Description:              "Sets a log channel.",
		DefaultMemberPermissions: &adminPermission,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "type",
				Description: "What the channel is used for.",
				Required:    true,
				Choices:     channelKindChoices(),
			},
			channelOption("The channel to use."),
		},
	}, {
		Name:                     "inactiverole",
		Description:              "Sets the role given to inactive staff.",
		DefaultMemberPermissions: &adminPermission,
		Options:                  []*discordgo.ApplicationCommandOption{roleOption("role", "The inactive role.")},
	}, {
		Name:        "inactiverequest",
		Description: "Requests a period of inactivity.",
		Options: []*discordgo.ApplicationCommandOption{
			stringOption("duration", "How long, for example 2w or 5d 12h.", true),
			stringOption("reason", "Why you will be inactive.", true),
		},
	}, {
		Name:        "inactiveclear",
		Description: "Ends a member's inactive period early.",
		Options:     []*discordgo.ApplicationCommandOption{userOption("The inactive member.", true)},
	}, {
		Name:        "strikeadd",
		Description: "Gives a member a strike.",
		Options: []*discordgo.ApplicationCommandOption{
			userOption("The member to strike.", true),
			stringOption("reason", "Why the strike is given.", true),
			stringOption("duration", "How long the strike lasts, for example 30d.", true),
		},
	}, {
		Name:        "strikeremove",
		Description: "Removes a strike by ID.",
		Options:     []*discordgo.ApplicationCommandOption{stringOption("id", "The strike ID.", true)},
	}, {
		Name:        "strikeclear",
		Description: "Removes every strike of a member.",
		Options:     []*discordgo.ApplicationCommandOption{userOption("The member to clear.", true)},
	}, {
		Name:        "strikelist",
		Description: "Lists active strikes in the server, or of one member.",
		Options:     []*discordgo.ApplicationCommandOption{userOption("The member to look up.", false)},
	}, {
		Name:        "strikehistory",
		Description: "Lists every stored strike of a member, expired ones included.",
		Options:     []*discordgo.ApplicationCommandOption{userOption("The member to look up.", true)},
	}, {
		Name:        "strikelimit",
		Description: "Sets how many active strikes trigger removal from staff.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "limit",
				Description: "The strike limit.",
				Required:    true,
				MinValue:    &minLimit,
			},
		},
	}, {
		Name:        "strikechannel",
		Description: "Sets the channel strike activity is logged to.",
		Options:     []*discordgo.ApplicationCommandOption{channelOption("The strike log channel.")},
	}, {
		Name:                     "staffrole",
		Description:              "Manages the roles that count as staff.",
		DefaultMemberPermissions: &adminPermission,
		Options: []*discordgo.ApplicationCommandOption{
			subcommand("add", "Marks a role as a staff role.", roleOption("role", "The role.")),
			subcommand("remove", "Unmarks a staff role.", roleOption("role", "The role.")),
			subcommand("list", "Lists the staff roles."),
		},
	}, {
		Name:        "stafflist",
		Description: "Lists the members holding each staff role.",
	}, {
		Name:        "promote",
		Description: "Promotes a member to a role.",
		Options: []*discordgo.ApplicationCommandOption{
			userOption("The member to promote.", true),
			roleOption("role", "The role to promote to."),
			stringOption("reason", "Reason for the promotion.", false),
		},
	}, {
		Name:        "demote",
		Description: "Demotes a member from a role.",
		Options: []*discordgo.ApplicationCommandOption{
			userOption("The member to demote.", true),
			roleOption("role", "The role to remove."),
			stringOption("reason", "Reason for the demotion.", false),
		},
	}, {
		Name:        "fire",
		Description: "Removes a member from the staff team.",
		Options: []*discordgo.ApplicationCommandOption{
			userOption("The member to fire.", true),
			stringOption("reason", "Reason for firing.", false),
		},
	}, {
		Name:        "resign",
		Description: "Resigns from your staff position.",
		Options:     []*discordgo.ApplicationCommandOption{stringOption("reason", "Reason for resigning.", false)},
	}, {
		Name:        "staffhistory",
		Description: "Shows recent staff actions.",
		Options: []*discordgo.ApplicationCommandOption{
			userOption("Only show actions for this member.", false),
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "limit",
				Description: "Number of records to show (default 10).",
				MinValue:    &minLimit,
				MaxValue:    staff.MaxHistory,
			},
		},
	}, {
		Name:                     "manager",
		Description:              "Manages the roles allowed to use manager commands.",
		DefaultMemberPermissions: &adminPermission,
		Options: []*discordgo.ApplicationCommandOption{
			subcommand("add", "Lets members holding a role use manager commands.", roleOption("role", "The role.")),
			subcommand("remove", "Removes a manager role.", roleOption("role", "The role.")),
			subcommand("list", "Lists the manager roles."),
		},
	}, {
		Name:                     "reset",
		Description:              "Deletes every stored record. This cannot be undone.",
		DefaultMemberPermissions: &adminPermission,
		Options: []*discordgo.ApplicationCommandOption{
			stringOption("confirm", "Type RESET to confirm.", true),
		},
	},
}

// adminCommands are refused to members without administrator permissions
// even if a server overrides the default command permissions.
var adminCommands = func() map[string]bool {
	admin := make(map[string]bool)
	for _, command := range botCommands {
		if command.DefaultMemberPermissions != nil {
			admin[command.Name] = true
		}
	}
	return admin
}()

// managerCommands are refused to members who are neither administrators
// nor holders of a manager role.
var managerCommands = map[string]bool{
	"inactiveclear": true,
	"strikeadd":     true,
	"strikeremove":  true,
	"strikeclear":   true,
	"strikelist":    true,
	"strikehistory": true,
	"strikelimit":   true,
	"strikechannel": true,
	"promote":       true,
	"demote":        true,
	"fire":          true,
	"staffhistory":  true,
}

// options indexes an interaction's options by name.
type options map[string]*discordgo.ApplicationCommandInteractionDataOption

func newOptions(opts []*discordgo.ApplicationCommandInteractionDataOption) options {
	return options(discordutils.OptionMap(opts))
}

// string returns the named string option, or "" if it was not given.
func (o options) string(name string) string {
	if opt, ok := o[name]; ok {
		return opt.StringValue()
	}
	return ""
}

// id returns the snowflake of the named user, role or channel option.
func (o options) id(name string) string {
	if opt, ok := o[name]; ok {
		if id, ok := opt.Value.(string); ok {
			return id
		}
	}
	return ""
}

// int returns the named integer option.
func (o options) int(name string) (int64, bool) {
	if opt, ok := o[name]; ok {
		return opt.IntValue(), true
	}
	return 0, false
}

// subcommandOptions splits a command with subcommands into the subcommand
// name and its options.
func subcommandOptions(data discordgo.ApplicationCommandInteractionData) (string, options) {
	if len(data.Options) == 0 {
		return "", options{}
	}
	sub := data.Options[0]
	return sub.Name, newOptions(sub.Options)
}
