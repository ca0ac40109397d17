// Package discordutils adapts a discordgo session to the directory ports
// and holds interaction helpers shared by the command handlers.
package discordutils

import (
	"context"
	"errors"
	"net/http"

	"github.com/ASHU16DEV/StaffManager/directory"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

var (
	_ directory.Directory = (*Directory)(nil)
	_ directory.Notifier  = (*Notifier)(nil)
)

// maxMemberPage is the largest page the guild members endpoint returns.
const maxMemberPage = 1000

// Directory looks guilds, members and roles up through a discordgo
// session. Guild and role reads prefer the state cache; member reads
// always go to the API so role checks see current roles.
type Directory struct {
	session *discordgo.Session
	log     *zap.Logger
}

// NewDirectory returns a Directory backed by session.
func NewDirectory(session *discordgo.Session, log *zap.Logger) *Directory {
	return &Directory{session: session, log: log.Named("directory")}
}

func (d *Directory) Guild(ctx context.Context, guildID string) (*discordgo.Guild, bool) {
	if guild, err := d.session.State.Guild(guildID); err == nil {
		return guild, true
	}
	guild, err := d.session.Guild(guildID, discordgo.WithContext(ctx))
	if err != nil {
		d.lookupFailed("guild", guildID, err)
		return nil, false
	}
	return guild, true
}

func (d *Directory) Member(ctx context.Context, guildID, userID string) (*discordgo.Member, bool) {
	member, err := d.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		d.lookupFailed("member", userID, err, zap.String("guild", guildID))
		return nil, false
	}
	return member, true
}

func (d *Directory) Role(ctx context.Context, guildID, roleID string) (*discordgo.Role, bool) {
	if role, err := d.session.State.Role(guildID, roleID); err == nil {
		return role, true
	}
	roles, err := d.session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		d.lookupFailed("roles", guildID, err)
		return nil, false
	}
	for _, role := range roles {
		if role.ID == roleID {
			return role, true
		}
	}
	return nil, false
}

func (d *Directory) RoleHolders(ctx context.Context, guildID, roleID string) ([]*discordgo.Member, error) {
	var holders []*discordgo.Member
	after := ""
	for {
		page, err := d.session.GuildMembers(guildID, after, maxMemberPage, discordgo.WithContext(ctx))
		if err != nil {
			return nil, err
		}
		for _, member := range page {
			for _, id := range member.Roles {
				if id == roleID {
					holders = append(holders, member)
					break
				}
			}
		}
		if len(page) < maxMemberPage {
			return holders, nil
		}
		after = page[len(page)-1].User.ID
	}
}

func (d *Directory) AddRole(ctx context.Context, guildID, userID, roleID string) error {
	return d.session.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx))
}

func (d *Directory) RemoveRole(ctx context.Context, guildID, userID, roleID string) error {
	return d.session.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx))
}

func (d *Directory) Kick(ctx context.Context, guildID, userID, reason string) error {
	return d.session.GuildMemberDeleteWithReason(guildID, userID, reason, discordgo.WithContext(ctx))
}

// lookupFailed logs a failed lookup. Unknown entities are expected and
// logged at debug.
func (d *Directory) lookupFailed(kind, id string, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("id", id), zap.Error(err))
	if IsNotFound(err) {
		d.log.Debug("Lookup found nothing.", append(fields, zap.String("kind", kind))...)
		return
	}
	d.log.Warn("Lookup failed.", append(fields, zap.String("kind", kind))...)
}

// IsNotFound reports whether err is an API 404.
func IsNotFound(err error) bool {
	var restErr *discordgo.RESTError
	return errors.As(err, &restErr) &&
		restErr.Response != nil &&
		restErr.Response.StatusCode == http.StatusNotFound
}

// Notifier sends messages through a discordgo session. Failures, such as
// members with direct messages closed, are logged and dropped.
type Notifier struct {
	session *discordgo.Session
	log     *zap.Logger
}

// NewNotifier returns a Notifier backed by session.
func NewNotifier(session *discordgo.Session, log *zap.Logger) *Notifier {
	return &Notifier{session: session, log: log.Named("notifier")}
}

func (n *Notifier) ChannelMessage(ctx context.Context, channelID, content string) {
	_, err := n.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		n.log.Warn("Failed to send channel message.", zap.String("channel", channelID), zap.Error(err))
	}
}

func (n *Notifier) DirectMessage(ctx context.Context, userID, content string) {
	channel, err := n.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		n.log.Warn("Failed to open direct message channel.", zap.String("user", userID), zap.Error(err))
		return
	}
	if _, err := n.session.ChannelMessageSend(channel.ID, content, discordgo.WithContext(ctx)); err != nil {
		n.log.Info("Could not send direct message.", zap.String("user", userID), zap.Error(err))
	}
}
