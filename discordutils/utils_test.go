package discordutils

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestMemberHasAdminPermissions(t *testing.T) {
	guild := &discordgo.Guild{
		ID:      "g1",
		OwnerID: "owner",
		Roles: []*discordgo.Role{
			{ID: "admin", Permissions: discordgo.PermissionAdministrator | discordgo.PermissionManageRoles},
			{ID: "mod", Permissions: discordgo.PermissionManageRoles | discordgo.PermissionKickMembers},
		},
	}

	tests := []struct {
		name   string
		member *discordgo.Member
		want   bool
	}{
		{"admin role", &discordgo.Member{User: &discordgo.User{ID: "u1"}, Roles: []string{"mod", "admin"}}, true},
		{"moderator only", &discordgo.Member{User: &discordgo.User{ID: "u1"}, Roles: []string{"mod"}}, false},
		{"unknown role", &discordgo.Member{User: &discordgo.User{ID: "u1"}, Roles: []string{"gone"}}, false},
		{"owner", &discordgo.Member{User: &discordgo.User{ID: "owner"}}, true},
		{"resolved permissions", &discordgo.Member{User: &discordgo.User{ID: "u1"}, Permissions: discordgo.PermissionAdministrator}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MemberHasAdminPermissions(guild, tt.member); got != tt.want {
				t.Errorf("MemberHasAdminPermissions = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMemberHasManagerPermissions(t *testing.T) {
	guild := &discordgo.Guild{
		ID:      "g1",
		OwnerID: "owner",
		Roles: []*discordgo.Role{
			{ID: "admin", Permissions: discordgo.PermissionAdministrator},
			{ID: "lead", Permissions: discordgo.PermissionManageRoles},
			{ID: "member"},
		},
	}
	managerRoles := []string{"lead"}

	tests := []struct {
		name    string
		member  *discordgo.Member
		manager []string
		want    bool
	}{
		{"manager role", &discordgo.Member{User: &discordgo.User{ID: "u1"}, Roles: []string{"member", "lead"}}, managerRoles, true},
		{"admin without manager role", &discordgo.Member{User: &discordgo.User{ID: "u1"}, Roles: []string{"admin"}}, managerRoles, true},
		{"owner", &discordgo.Member{User: &discordgo.User{ID: "owner"}}, nil, true},
		{"plain member", &discordgo.Member{User: &discordgo.User{ID: "u1"}, Roles: []string{"member"}}, managerRoles, false},
		{"no manager roles configured", &discordgo.Member{User: &discordgo.User{ID: "u1"}, Roles: []string{"lead"}}, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MemberHasManagerPermissions(guild, tt.member, tt.manager); got != tt.want {
				t.Errorf("MemberHasManagerPermissions = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOptionMap(t *testing.T) {
	options := []*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "user", Type: discordgo.ApplicationCommandOptionUser, Value: "u1"},
		{Name: "reason", Type: discordgo.ApplicationCommandOptionString, Value: "late"},
	}

	byName := OptionMap(options)
	if len(byName) != 2 {
		t.Fatalf("OptionMap has %d entries, want 2", len(byName))
	}
	if got := byName["reason"].StringValue(); got != "late" {
		t.Errorf("reason = %q", got)
	}
	if _, ok := byName["duration"]; ok {
		t.Error("unexpected duration option")
	}
}

func TestInteractionUser(t *testing.T) {
	guildUser := &discordgo.User{ID: "member"}
	dmUser := &discordgo.User{ID: "dm"}

	if got := InteractionUser(&discordgo.Interaction{Member: &discordgo.Member{User: guildUser}, User: dmUser}); got != guildUser {
		t.Errorf("guild interaction user = %v", got)
	}
	if got := InteractionUser(&discordgo.Interaction{User: dmUser}); got != dmUser {
		t.Errorf("direct message interaction user = %v", got)
	}
}

func TestIsNotFound(t *testing.T) {
	notFound := &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusNotFound}}
	forbidden := &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusForbidden}}

	tests := []struct {
		err  error
		want bool
	}{
		{notFound, true},
		{fmt.Errorf("fetch member: %w", notFound), true},
		{forbidden, false},
		{fmt.Errorf("network down"), false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := IsNotFound(tt.err); got != tt.want {
			t.Errorf("IsNotFound(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
