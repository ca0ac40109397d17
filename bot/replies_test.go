package bot

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ASHU16DEV/StaffManager/duration"
	"github.com/ASHU16DEV/StaffManager/models"
	"github.com/bwmarrin/discordgo"
)

func TestUserError(t *testing.T) {
	_, durationErr := duration.Parse("soon")

	tests := []struct {
		name   string
		err    error
		prefix string
		ok     bool
	}{
		{"duration", durationErr, "Invalid duration", true},
		{"invalid input", fmt.Errorf("limit: %w", models.ErrInvalidInput), "That input isn't valid", true},
		{"not found", fmt.Errorf("strike: %w", models.ErrNotFound), "I couldn't find", true},
		{"already exists", models.ErrAlreadyExists, "That already exists", true},
		{"unexpected", errors.New("disk full"), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply, ok := userError(tt.err)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if !strings.HasPrefix(reply, tt.prefix) {
				t.Errorf("expected reply starting with %q, got %q", tt.prefix, reply)
			}
		})
	}
}

func TestMentionRoles(t *testing.T) {
	if got := mentionRoles(nil); got != "none" {
		t.Errorf("expected none, got %q", got)
	}
	if got := mentionRoles([]string{"1", "2"}); got != "<@&1>, <@&2>" {
		t.Errorf("unexpected mentions %q", got)
	}
}

func TestGroupByUserKeepsFirstSeenOrder(t *testing.T) {
	groups := groupByUser([]models.Strike{
		{ID: "a", UserID: "u2"},
		{ID: "b", UserID: "u1"},
		{ID: "c", UserID: "u2"},
	})
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %v", len(groups))
	}
	if groups[0][0].UserID != "u2" || len(groups[0]) != 2 {
		t.Errorf("unexpected first group %+v", groups[0])
	}
	if groups[1][0].ID != "b" {
		t.Errorf("unexpected second group %+v", groups[1])
	}
}

func TestModalValue(t *testing.T) {
	data := discordgo.ModalSubmitInteractionData{
		Components: []discordgo.MessageComponent{
			&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				&discordgo.TextInput{CustomID: "other", Value: "x"},
			}},
			&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				&discordgo.TextInput{CustomID: denyReasonInput, Value: "Too long."},
			}},
		},
	}
	if got := modalValue(data, denyReasonInput); got != "Too long." {
		t.Errorf("expected reason, got %q", got)
	}
	if got := modalValue(data, "missing"); got != "" {
		t.Errorf("expected empty value, got %q", got)
	}
}

func TestPluralStrikes(t *testing.T) {
	if got := pluralStrikes(1); got != "1 strike" {
		t.Errorf("got %q", got)
	}
	if got := pluralStrikes(3); got != "3 strikes" {
		t.Errorf("got %q", got)
	}
}
