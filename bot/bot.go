// Package bot connects the staff engines to Discord: slash commands,
// buttons, gateway events and the periodic sweeps.
package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ASHU16DEV/StaffManager/dal"
	"github.com/ASHU16DEV/StaffManager/directory"
	"github.com/ASHU16DEV/StaffManager/discordutils"
	"github.com/ASHU16DEV/StaffManager/inactive"
	"github.com/ASHU16DEV/StaffManager/rolesync"
	"github.com/ASHU16DEV/StaffManager/staff"
	"github.com/ASHU16DEV/StaffManager/strikes"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// handlerTimeout bounds the work done for one interaction or event.
const handlerTimeout = 30 * time.Second

type commandHandler = func(
	context.Context,
	*discordgo.InteractionCreate,
) string

type componentHandler = func(
	context.Context,
	*discordgo.InteractionCreate,
	string,
)

// Services are the engines the bot drives.
type Services struct {
	Store    *dal.Store
	Table    *rolesync.Table
	Sync     *rolesync.Engine
	Inactive *inactive.Engine
	Strikes  *strikes.Ledger
	Staff    *staff.Service
	Notify   directory.Notifier
}

// Bot represents an instance of the staff manager discord bot.
type Bot struct {
	Services

	session            *discordgo.Session
	log                *zap.Logger
	guildID            string
	registeredCommands []*discordgo.ApplicationCommand
	commandHandlers    map[string]commandHandler
	componentHandlers  map[string]componentHandler
}

// NewSession creates a discord session with the intents the bot needs.
// The session is not opened.
func NewSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildBans |
		discordgo.IntentsDirectMessages
	session.StateEnabled = true
	session.State.TrackMembers = true
	session.State.TrackRoles = true
	return session, nil
}

// New initialises a new bot on session. guildID scopes command
// registration; empty registers commands globally.
func New(
	session *discordgo.Session,
	guildID string,
	services Services,
	log *zap.Logger,
) *Bot {
	bot := &Bot{
		Services: services,
		session:  session,
		log:      log.Named("bot"),
		guildID:  guildID,
	}

	bot.commandHandlers = map[string]commandHandler{
		"linkserver":         bot.LinkServer,
		"rolemap":            bot.RoleMap,
		"rolesynclogchannel": bot.RoleSyncLogChannel,
		"channelset":         bot.ChannelSet,
		"inactiverole":       bot.InactiveRole,
		"inactiverequest":    bot.InactiveRequest,
		"inactiveclear":      bot.InactiveClear,
		"strikeadd":          bot.StrikeAdd,
		"strikeremove":       bot.StrikeRemove,
		"strikeclear":        bot.StrikeClear,
		"strikelist":         bot.StrikeList,
		"strikehistory":      bot.StrikeHistory,
		"strikelimit":        bot.StrikeLimit,
		"strikechannel":      bot.StrikeChannel,
		"staffrole":          bot.StaffRole,
		"manager":            bot.ManagerRole,
		"stafflist":          bot.StaffList,
		"promote":            bot.Promote,
		"demote":             bot.Demote,
		"fire":               bot.Fire,
		"resign":             bot.Resign,
		"staffhistory":       bot.StaffHistory,
		"reset":              bot.Reset,
	}

	bot.componentHandlers = map[string]componentHandler{
		inactiveAcceptPrefix: bot.InactiveAccept,
		inactiveDenyPrefix:   bot.InactiveDenyPrompt,
		denyReasonPrefix:     bot.InactiveDenySubmit,
	}

	bot.initSession()
	return bot
}

func (bot *Bot) initSession() {
	bot.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		bot.log.Info("Bot is up!", zap.String("user", r.User.Username), zap.Int("guilds", len(r.Guilds)))
	})
	bot.session.AddHandler(bot.onInteraction)
	bot.session.AddHandler(bot.onMemberUpdate)
	bot.session.AddHandler(bot.onMemberRemove)
	bot.session.AddHandler(bot.onBanAdd)
}

// Start opens the gateway connection and registers the slash commands.
func (bot *Bot) Start() error {
	if err := bot.session.Open(); err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	return bot.registerCommands()
}

func (bot *Bot) registerCommands() error {
	for _, command := range botCommands {
		newCommand, err := bot.session.ApplicationCommandCreate(
			bot.session.State.User.ID,
			bot.guildID,
			command,
		)
		if err != nil {
			return fmt.Errorf("create %v command: %w", command.Name, err)
		}
		bot.registeredCommands = append(bot.registeredCommands, newCommand)
		bot.log.Debug("Created command.", zap.String("command", command.Name))
	}
	bot.log.Info("Registered commands.", zap.Int("count", len(bot.registeredCommands)))
	return nil
}

// Shutdown shuts down the bot cleanly.
func (bot *Bot) Shutdown() {
	bot.log.Info("Shutting down.")

	for _, command := range bot.registeredCommands {
		err := bot.session.ApplicationCommandDelete(
			bot.session.State.User.ID,
			bot.guildID,
			command.ID,
		)
		if err != nil {
			bot.log.Warn("Failed to delete command.", zap.String("command", command.Name), zap.Error(err))
		} else {
			bot.log.Debug("Deleted command.", zap.String("command", command.Name))
		}
	}

	if err := bot.session.Close(); err != nil {
		bot.log.Warn("Failed to close session.", zap.Error(err))
	}
}

func (bot *Bot) onInteraction(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		bot.runCommand(ctx, i)
	case discordgo.InteractionMessageComponent:
		bot.runComponent(ctx, i, i.MessageComponentData().CustomID)
	case discordgo.InteractionModalSubmit:
		bot.runComponent(ctx, i, i.ModalSubmitData().CustomID)
	}
}

func (bot *Bot) runCommand(ctx context.Context, i *discordgo.InteractionCreate) {
	name := i.ApplicationCommandData().Name
	handler, ok := bot.commandHandlers[name]
	if !ok {
		return
	}
	if i.GuildID == "" {
		bot.respond(i, "Commands can only be used in a server.")
		return
	}

	if err := discordutils.AckInteraction(i.Interaction, bot.session); err != nil {
		bot.log.Warn("Failed to acknowledge interaction.", zap.String("command", name), zap.Error(err))
		return
	}

	var reply string
	switch {
	case adminCommands[name] && !bot.isAdmin(i):
		reply = adminRequired
	case managerCommands[name] && !bot.isManager(i):
		reply = managerRequired
	default:
		reply = handler(ctx, i)
	}

	if err := discordutils.SendFollowup(reply, i.Interaction, bot.session); err != nil {
		bot.log.Warn("Failed to send followup.", zap.String("command", name), zap.Error(err))
	}
}

func (bot *Bot) runComponent(ctx context.Context, i *discordgo.InteractionCreate, customID string) {
	for prefix, handler := range bot.componentHandlers {
		if strings.HasPrefix(customID, prefix) {
			handler(ctx, i, strings.TrimPrefix(customID, prefix))
			return
		}
	}
}

// respond replies to the interaction directly with an ephemeral message.
func (bot *Bot) respond(i *discordgo.InteractionCreate, content string) {
	err := bot.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		bot.log.Warn("Failed to respond to interaction.", zap.Error(err))
	}
}

func (bot *Bot) isAdmin(i *discordgo.InteractionCreate) bool {
	if i.Member == nil {
		return false
	}
	return discordutils.MemberHasAdminPermissions(bot.cachedGuild(i.GuildID), i.Member)
}

// isManager reports whether the invoker is an administrator or holds one
// of the guild's manager roles. If the roles cannot be loaded only
// administrators pass.
func (bot *Bot) isManager(i *discordgo.InteractionCreate) bool {
	if i.Member == nil {
		return false
	}
	managerRoles, err := bot.Store.ManagerRoles(i.GuildID)
	if err != nil {
		bot.log.Error("Failed to load manager roles.", zap.String("guild", i.GuildID), zap.Error(err))
		managerRoles = nil
	}
	return discordutils.MemberHasManagerPermissions(bot.cachedGuild(i.GuildID), i.Member, managerRoles)
}

func (bot *Bot) cachedGuild(guildID string) *discordgo.Guild {
	guild, err := bot.session.State.Guild(guildID)
	if err != nil {
		return &discordgo.Guild{ID: guildID}
	}
	return guild
}
