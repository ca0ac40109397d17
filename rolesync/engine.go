// Package rolesync mirrors role changes between the linked main and staff
// servers.
package rolesync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ASHU16DEV/StaffManager/directory"
	"github.com/ASHU16DEV/StaffManager/models"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Store is the state the engine reads.
type Store interface {
	ServerLink() (*models.ServerLink, error)
	SetServerLink(primaryGuildID, secondaryGuildID string) error
	RoleMappings() ([]models.RoleMapping, error)
	Channel(guildID string, kind models.ChannelKind) (string, error)
}

// Removal describes how a member left a guild.
type Removal string

// Removal causes.
const (
	RemovalLeft   Removal = "left or was kicked from"
	RemovalBanned Removal = "was banned from"
)

// Engine mirrors role grants and revocations across the server link.
type Engine struct {
	store  Store
	dir    directory.Directory
	notify directory.Notifier
	log    *zap.Logger
}

// NewEngine returns an engine. A nil logger discards logs.
func NewEngine(
	store Store,
	dir directory.Directory,
	notify directory.Notifier,
	log *zap.Logger,
) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		store:  store,
		dir:    dir,
		notify: notify,
		log:    log.Named("rolesync"),
	}
}

// LinkServers replaces the server link.
func (e *Engine) LinkServers(primaryGuildID, secondaryGuildID string) error {
	if primaryGuildID == "" || secondaryGuildID == "" || primaryGuildID == secondaryGuildID {
		return fmt.Errorf("link %q to %q: %w", primaryGuildID, secondaryGuildID, models.ErrInvalidInput)
	}
	if err := e.store.SetServerLink(primaryGuildID, secondaryGuildID); err != nil {
		return fmt.Errorf("save server link: %w", err)
	}
	e.log.Info("Linked servers.",
		zap.String("primary", primaryGuildID),
		zap.String("secondary", secondaryGuildID),
	)
	return nil
}

// MemberUpdated mirrors the difference between a member's roles before and
// after an update. It returns the number of roles changed in the linked
// guild.
func (e *Engine) MemberUpdated(ctx context.Context, guildID, userID string, before, after []string) int {
	added := difference(after, before)
	removed := difference(before, after)

	n := 0
	if len(added) > 0 {
		n += e.RolesAdded(ctx, guildID, userID, added)
	}
	if len(removed) > 0 {
		n += e.RolesRemoved(ctx, guildID, userID, removed)
	}
	return n
}

// RolesAdded grants the mapped counterpart of each role in the linked
// guild. It returns the number of roles granted.
func (e *Engine) RolesAdded(ctx context.Context, guildID, userID string, roleIDs []string) int {
	return e.mirror(ctx, guildID, userID, roleIDs, true)
}

// RolesRemoved revokes the mapped counterpart of each role in the linked
// guild. It returns the number of roles revoked.
func (e *Engine) RolesRemoved(ctx context.Context, guildID, userID string, roleIDs []string) int {
	return e.mirror(ctx, guildID, userID, roleIDs, false)
}

func (e *Engine) mirror(ctx context.Context, guildID, userID string, roleIDs []string, grant bool) int {
	link, ok := e.link()
	if !ok {
		return 0
	}
	targetGuildID, ok := link.Counterpart(guildID)
	if !ok {
		return 0
	}
	fromPrimary := guildID == link.PrimaryGuildID

	mappings, err := e.store.RoleMappings()
	if err != nil {
		e.log.Error("Failed to load role mappings.", zap.Error(err))
		return 0
	}

	type pair struct{ source, target string }
	var pairs []pair
	for _, roleID := range roleIDs {
		if target, ok := Mappings(mappings).counterpart(roleID, fromPrimary); ok {
			pairs = append(pairs, pair{roleID, target})
		}
	}
	if len(pairs) == 0 {
		return 0
	}

	member, ok := e.dir.Member(ctx, targetGuildID, userID)
	if !ok {
		return 0
	}

	log := e.log.With(
		zap.String("user", userID),
		zap.String("from", guildID),
		zap.String("to", targetGuildID),
	)
	logChannel := e.syncLogChannel(link)

	changed := 0
	for _, p := range pairs {
		role, ok := e.dir.Role(ctx, targetGuildID, p.target)
		if !ok {
			log.Warn("Mapped role not found.", zap.String("role", p.target))
			continue
		}
		if directory.HasRole(member, role.ID) == grant {
			continue
		}

		if grant {
			err = e.dir.AddRole(ctx, targetGuildID, userID, role.ID)
		} else {
			err = e.dir.RemoveRole(ctx, targetGuildID, userID, role.ID)
		}
		if err != nil {
			log.Warn("Failed to sync role.",
				zap.String("role", role.ID),
				zap.Bool("grant", grant),
				zap.Error(err),
			)
			continue
		}

		if grant {
			member.Roles = append(member.Roles, role.ID)
		} else {
			member.Roles = without(member.Roles, role.ID)
		}
		changed++
		log.Info("Synced role.", zap.String("role", role.ID), zap.Bool("grant", grant))

		if logChannel != "" {
			e.notify.ChannelMessage(ctx, logChannel, syncMessage(member, role, p.source, grant, fromPrimary))
		}
	}
	return changed
}

// MemberRemoved strips the linked guild's counterparts of the roles a
// departing member held. If held is nil the member's roles are unknown and
// every mapping is considered. It returns the number of roles stripped.
func (e *Engine) MemberRemoved(ctx context.Context, guildID, userID string, held []string, cause Removal) int {
	link, ok := e.link()
	if !ok {
		return 0
	}
	targetGuildID, ok := link.Counterpart(guildID)
	if !ok {
		return 0
	}
	fromPrimary := guildID == link.PrimaryGuildID

	mappings, err := e.store.RoleMappings()
	if err != nil {
		e.log.Error("Failed to load role mappings.", zap.Error(err))
		return 0
	}

	var targets []string
	for _, m := range mappings {
		if held != nil && !contains(held, side(m, fromPrimary)) {
			continue
		}
		targets = append(targets, side(m, !fromPrimary))
	}
	if len(targets) == 0 {
		return 0
	}

	member, ok := e.dir.Member(ctx, targetGuildID, userID)
	if !ok {
		return 0
	}

	log := e.log.With(zap.String("user", userID), zap.String("guild", targetGuildID))

	var stripped []*discordgo.Role
	for _, roleID := range targets {
		if !directory.HasRole(member, roleID) {
			continue
		}
		role, ok := e.dir.Role(ctx, targetGuildID, roleID)
		if !ok {
			log.Warn("Mapped role not found.", zap.String("role", roleID))
			continue
		}
		if err := e.dir.RemoveRole(ctx, targetGuildID, userID, roleID); err != nil {
			log.Warn("Failed to strip role.", zap.String("role", roleID), zap.Error(err))
			continue
		}
		stripped = append(stripped, role)
	}

	if len(stripped) == 0 {
		return 0
	}
	log.Info("Stripped mapped roles after removal.",
		zap.Int("roles", len(stripped)),
		zap.String("cause", string(cause)),
	)

	if logChannel := e.syncLogChannel(link); logChannel != "" {
		names := make([]string, len(stripped))
		for i, role := range stripped {
			names[i] = role.Name
		}
		e.notify.ChannelMessage(ctx, logChannel, fmt.Sprintf(
			"%v %v the %v, removed from the %v: %v",
			member.Mention(),
			cause,
			serverLabel(fromPrimary),
			serverLabel(!fromPrimary),
			strings.Join(names, ", "),
		))
	}
	return len(stripped)
}

func (e *Engine) link() (*models.ServerLink, bool) {
	link, err := e.store.ServerLink()
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			e.log.Error("Failed to load server link.", zap.Error(err))
		}
		return nil, false
	}
	return link, true
}

func (e *Engine) syncLogChannel(link *models.ServerLink) string {
	channelID, err := e.store.Channel(link.PrimaryGuildID, models.ChannelRoleSyncLog)
	if err != nil {
		e.log.Warn("Failed to load role sync log channel.", zap.Error(err))
		return ""
	}
	return channelID
}

func syncMessage(member *discordgo.Member, role *discordgo.Role, sourceRoleID string, grant, fromPrimary bool) string {
	action := "added %v to %v"
	if !grant {
		action = "removed %v from %v"
	}
	return fmt.Sprintf(
		"Role sync: "+action+" in the %v (mirrors <@&%v> in the %v).",
		role.Mention(),
		member.Mention(),
		serverLabel(!fromPrimary),
		sourceRoleID,
		serverLabel(fromPrimary),
	)
}

func serverLabel(primary bool) string {
	if primary {
		return "main server"
	}
	return "staff server"
}

// difference returns the IDs in a that are not in b.
func difference(a, b []string) []string {
	var out []string
	for _, id := range a {
		if !contains(b, id) {
			out = append(out, id)
		}
	}
	return out
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, candidate := range ids {
		if candidate != id {
			out = append(out, candidate)
		}
	}
	return out
}
