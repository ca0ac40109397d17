// Package directorytest provides in-memory Directory and Notifier fakes.
package directorytest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// ErrDenied is returned by mutations the fake has been told to refuse.
var ErrDenied = errors.New("missing permissions")

// Call is one mutation observed by the fake.
type Call struct {
	Op      string // "add", "remove" or "kick"
	GuildID string
	UserID  string
	RoleID  string
}

// Directory is an in-memory guild directory. It is safe for concurrent
// use.
type Directory struct {
	mu      sync.Mutex
	guilds  map[string]*discordgo.Guild
	members map[string]map[string]*discordgo.Member
	deny    map[string]bool
	lookups int
	calls   []Call
}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		guilds:  make(map[string]*discordgo.Guild),
		members: make(map[string]map[string]*discordgo.Member),
		deny:    make(map[string]bool),
	}
}

// AddGuild creates a guild with the given role IDs.
func (d *Directory) AddGuild(guildID string, roleIDs ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	guild := &discordgo.Guild{ID: guildID, Name: "guild-" + guildID}
	for _, roleID := range roleIDs {
		guild.Roles = append(guild.Roles, &discordgo.Role{ID: roleID, Name: "role-" + roleID})
	}
	d.guilds[guildID] = guild
	d.members[guildID] = make(map[string]*discordgo.Member)
}

// AddMember puts a user in a guild holding the given roles.
func (d *Directory) AddMember(guildID, userID string, roleIDs ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.members[guildID][userID] = &discordgo.Member{
		GuildID: guildID,
		User:    &discordgo.User{ID: userID, Username: "user-" + userID},
		Roles:   append([]string(nil), roleIDs...),
	}
}

// Deny makes every mutation of roleID (or of userID for kicks) fail.
func (d *Directory) Deny(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deny[id] = true
}

// Roles returns the member's current role IDs, or nil if absent.
func (d *Directory) Roles(guildID, userID string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	member, ok := d.members[guildID][userID]
	if !ok {
		return nil
	}
	return append([]string(nil), member.Roles...)
}

// IsMember reports whether the user is in the guild.
func (d *Directory) IsMember(guildID, userID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.members[guildID][userID]
	return ok
}

// Calls returns every successful mutation in order.
func (d *Directory) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Call(nil), d.calls...)
}

// Lookups returns how many read operations have been made.
func (d *Directory) Lookups() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lookups
}

func (d *Directory) Guild(_ context.Context, guildID string) (*discordgo.Guild, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lookups++

	guild, ok := d.guilds[guildID]
	return guild, ok
}

func (d *Directory) Member(_ context.Context, guildID, userID string) (*discordgo.Member, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lookups++

	member, ok := d.members[guildID][userID]
	if !ok {
		return nil, false
	}
	clone := *member
	clone.Roles = append([]string(nil), member.Roles...)
	return &clone, true
}

func (d *Directory) Role(_ context.Context, guildID, roleID string) (*discordgo.Role, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lookups++

	guild, ok := d.guilds[guildID]
	if !ok {
		return nil, false
	}
	for _, role := range guild.Roles {
		if role.ID == roleID {
			return role, true
		}
	}
	return nil, false
}

func (d *Directory) RoleHolders(_ context.Context, guildID, roleID string) ([]*discordgo.Member, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lookups++

	var holders []*discordgo.Member
	for _, member := range d.members[guildID] {
		for _, id := range member.Roles {
			if id == roleID {
				holders = append(holders, member)
				break
			}
		}
	}
	return holders, nil
}

func (d *Directory) AddRole(_ context.Context, guildID, userID, roleID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	member, err := d.mutable(guildID, userID, roleID)
	if err != nil {
		return err
	}
	for _, id := range member.Roles {
		if id == roleID {
			return nil
		}
	}
	member.Roles = append(member.Roles, roleID)
	d.calls = append(d.calls, Call{Op: "add", GuildID: guildID, UserID: userID, RoleID: roleID})
	return nil
}

func (d *Directory) RemoveRole(_ context.Context, guildID, userID, roleID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	member, err := d.mutable(guildID, userID, roleID)
	if err != nil {
		return err
	}
	kept := member.Roles[:0]
	for _, id := range member.Roles {
		if id != roleID {
			kept = append(kept, id)
		}
	}
	member.Roles = kept
	d.calls = append(d.calls, Call{Op: "remove", GuildID: guildID, UserID: userID, RoleID: roleID})
	return nil
}

func (d *Directory) Kick(_ context.Context, guildID, userID, _ string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.deny[userID] {
		return ErrDenied
	}
	if _, ok := d.members[guildID][userID]; !ok {
		return fmt.Errorf("unknown member %s in %s", userID, guildID)
	}
	delete(d.members[guildID], userID)
	d.calls = append(d.calls, Call{Op: "kick", GuildID: guildID, UserID: userID})
	return nil
}

func (d *Directory) mutable(guildID, userID, roleID string) (*discordgo.Member, error) {
	if d.deny[roleID] {
		return nil, ErrDenied
	}
	member, ok := d.members[guildID][userID]
	if !ok {
		return nil, fmt.Errorf("unknown member %s in %s", userID, guildID)
	}
	return member, nil
}

// Message is one notification observed by the fake notifier.
type Message struct {
	ChannelID string // set for channel messages
	UserID    string // set for direct messages
	Content   string
}

// Notifier records every message it is asked to send.
type Notifier struct {
	mu       sync.Mutex
	messages []Message
}

func (n *Notifier) ChannelMessage(_ context.Context, channelID, content string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, Message{ChannelID: channelID, Content: content})
}

func (n *Notifier) DirectMessage(_ context.Context, userID, content string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, Message{UserID: userID, Content: content})
}

// Messages returns every recorded message in order.
func (n *Notifier) Messages() []Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Message(nil), n.messages...)
}

// ToChannel returns the messages sent to channelID.
func (n *Notifier) ToChannel(channelID string) []Message {
	var out []Message
	for _, m := range n.Messages() {
		if m.ChannelID == channelID {
			out = append(out, m)
		}
	}
	return out
}

// ToUser returns the direct messages sent to userID.
func (n *Notifier) ToUser(userID string) []Message {
	var out []Message
	for _, m := range n.Messages() {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out
}
