package staff

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ASHU16DEV/StaffManager/dal"
	"github.com/ASHU16DEV/StaffManager/dal/daltest"
	"github.com/ASHU16DEV/StaffManager/directory/directorytest"
	"github.com/ASHU16DEV/StaffManager/models"
)

const (
	guild   = "g1"
	manager = "mgr"
)

type fixture struct {
	store   *dal.Store
	dir     *directorytest.Directory
	notify  *directorytest.Notifier
	service *Service
	now     time.Time
}

// newFixture registers mod and admin as staff roles in g1; helper is an
// ordinary role.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:  daltest.New(t),
		dir:    directorytest.NewDirectory(),
		notify: &directorytest.Notifier{},
		now:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.service = New(f.store, f.dir, f.notify, nil, WithClock(func() time.Time { return f.now }))
	f.dir.AddGuild(guild, "mod", "admin", "helper")

	for _, roleID := range []string{"mod", "admin"} {
		if err := f.service.AddRole(guild, roleID); err != nil {
			t.Fatalf("AddRole: %v", err)
		}
	}
	return f
}

func TestRoleRegistry(t *testing.T) {
	f := newFixture(t)

	if err := f.service.AddRole(guild, "mod"); !errors.Is(err, models.ErrAlreadyExists) {
		t.Errorf("duplicate AddRole = %v, want ErrAlreadyExists", err)
	}
	if err := f.service.RemoveRole(guild, "helper"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("RemoveRole of unregistered role = %v, want ErrNotFound", err)
	}
	if err := f.service.RemoveRole(guild, "mod"); err != nil {
		t.Fatalf("RemoveRole: %v", err)
	}

	roles, err := f.service.Roles(guild)
	if err != nil {
		t.Fatalf("Roles: %v", err)
	}
	if len(roles) != 1 || roles[0] != "admin" {
		t.Errorf("Roles = %v, want [admin]", roles)
	}
}

func TestPromote(t *testing.T) {
	f := newFixture(t)
	f.dir.AddMember(guild, "u1")
	if err := f.store.UpsertChannel(guild, models.ChannelPromote, "promo-log"); err != nil {
		t.Fatalf("UpsertChannel: %v", err)
	}

	record, err := f.service.Promote(context.Background(), Action{
		GuildID:    guild,
		UserID:     "u1",
		RoleID:     "mod",
		ExecutorID: manager,
	})
	if err != nil {
		t.Fatalf("Promote: %v", err)
	}

	if roles := f.dir.Roles(guild, "u1"); len(roles) != 1 || roles[0] != "mod" {
		t.Errorf("roles = %v, want [mod]", roles)
	}
	if record.Action != models.ActionPromote || record.Reason != DefaultReason {
		t.Errorf("record = %+v", record)
	}
	if record.Timestamp != models.Millis(f.now) {
		t.Errorf("timestamp = %d, want %d", record.Timestamp, models.Millis(f.now))
	}
	if msgs := f.notify.ToChannel("promo-log"); len(msgs) != 1 {
		t.Errorf("sent %d log messages, want 1", len(msgs))
	}
	dms := f.notify.ToUser("u1")
	if len(dms) != 1 || !strings.Contains(dms[0].Content, "role-mod") {
		t.Errorf("direct messages = %+v", dms)
	}
}

func TestPromoteErrors(t *testing.T) {
	f := newFixture(t)
	f.dir.AddMember(guild, "u1")
	f.dir.Deny("admin")
	ctx := context.Background()

	tests := []struct {
		name   string
		action Action
		want   error
	}{
		{"unknown role", Action{GuildID: guild, UserID: "u1", RoleID: "nope"}, models.ErrNotFound},
		{"absent member", Action{GuildID: guild, UserID: "u2", RoleID: "mod"}, models.ErrNotFound},
		{"denied", Action{GuildID: guild, UserID: "u1", RoleID: "admin"}, directorytest.ErrDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.service.Promote(ctx, tt.action); !errors.Is(err, tt.want) {
				t.Errorf("Promote = %v, want %v", err, tt.want)
			}
		})
	}

	if records, _ := f.service.History("", 0); len(records) != 0 {
		t.Errorf("failed promotions recorded %d entries", len(records))
	}
	if msgs := f.notify.Messages(); len(msgs) != 0 {
		t.Errorf("failed promotions sent %d messages", len(msgs))
	}
}

func TestDemote(t *testing.T) {
	f := newFixture(t)
	f.dir.AddMember(guild, "u1", "mod", "helper")
	ctx := context.Background()

	if _, err := f.service.Demote(ctx, Action{GuildID: guild, UserID: "u1", RoleID: "admin"}); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Demote of unheld role = %v, want ErrNotFound", err)
	}

	record, err := f.service.Demote(ctx, Action{
		GuildID:    guild,
		UserID:     "u1",
		RoleID:     "mod",
		Reason:     "inactivity",
		ExecutorID: manager,
	})
	if err != nil {
		t.Fatalf("Demote: %v", err)
	}
	if record.Reason != "inactivity" || len(record.RoleIDs) != 1 || record.RoleIDs[0] != "mod" {
		t.Errorf("record = %+v", record)
	}
	if roles := f.dir.Roles(guild, "u1"); len(roles) != 1 || roles[0] != "helper" {
		t.Errorf("roles = %v, want [helper]", roles)
	}
}

func TestFireStripsStaffRolesOnly(t *testing.T) {
	f := newFixture(t)
	f.dir.AddMember(guild, "u1", "mod", "admin", "helper")
	if err := f.store.UpsertChannel(guild, models.ChannelFire, "fire-log"); err != nil {
		t.Fatalf("UpsertChannel: %v", err)
	}

	record, err := f.service.Fire(context.Background(), Action{GuildID: guild, UserID: "u1", ExecutorID: manager})
	if err != nil {
		t.Fatalf("Fire: %v", err)
	}

	if roles := f.dir.Roles(guild, "u1"); len(roles) != 1 || roles[0] != "helper" {
		t.Errorf("roles = %v, want [helper]", roles)
	}
	if len(record.RoleIDs) != 2 {
		t.Errorf("record roles = %v, want both staff roles", record.RoleIDs)
	}
	if msgs := f.notify.ToChannel("fire-log"); len(msgs) != 1 {
		t.Errorf("sent %d fire log messages, want 1", len(msgs))
	}
}

func TestFireSkipsFailedRoles(t *testing.T) {
	f := newFixture(t)
	f.dir.AddMember(guild, "u1", "mod", "admin")
	f.dir.Deny("mod")

	record, err := f.service.Fire(context.Background(), Action{GuildID: guild, UserID: "u1", ExecutorID: manager})
	if err != nil {
		t.Fatalf("Fire: %v", err)
	}
	if len(record.RoleIDs) != 1 || record.RoleIDs[0] != "admin" {
		t.Errorf("record roles = %v, want [admin]", record.RoleIDs)
	}
}

func TestFireRequiresStaff(t *testing.T) {
	f := newFixture(t)
	f.dir.AddMember(guild, "u1", "helper")
	ctx := context.Background()

	if _, err := f.service.Fire(ctx, Action{GuildID: guild, UserID: "u1"}); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("Fire of non-staff = %v, want ErrInvalidInput", err)
	}
	if _, err := f.service.Fire(ctx, Action{GuildID: guild, UserID: "u2"}); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Fire of absent member = %v, want ErrNotFound", err)
	}
}

func TestResign(t *testing.T) {
	f := newFixture(t)
	f.dir.AddMember(guild, "u1", "admin")

	record, err := f.service.Resign(context.Background(), guild, "u1", "  moving on ")
	if err != nil {
		t.Fatalf("Resign: %v", err)
	}
	if record.Action != models.ActionResign || record.ExecutorID != "u1" || record.Reason != "moving on" {
		t.Errorf("record = %+v", record)
	}
	if roles := f.dir.Roles(guild, "u1"); len(roles) != 0 {
		t.Errorf("roles = %v, want none", roles)
	}
}

func TestHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.dir.AddMember(guild, "u1")
	f.dir.AddMember(guild, "u2")

	steps := []struct {
		userID string
		roleID string
	}{
		{"u1", "mod"},
		{"u2", "mod"},
		{"u1", "admin"},
	}
	for _, step := range steps {
		f.now = f.now.Add(time.Minute)
		if _, err := f.service.Promote(ctx, Action{GuildID: guild, UserID: step.userID, RoleID: step.roleID}); err != nil {
			t.Fatalf("Promote: %v", err)
		}
	}

	records, err := f.service.History("u1", 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(records) != 2 || records[0].RoleIDs[0] != "admin" || records[1].RoleIDs[0] != "mod" {
		t.Errorf("u1 history = %+v", records)
	}

	all, err := f.service.History("", 2)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(all) != 2 || all[0].UserID != "u1" || all[1].UserID != "u2" {
		t.Errorf("recent history = %+v", all)
	}
}

func TestRoster(t *testing.T) {
	f := newFixture(t)
	f.dir.AddMember(guild, "u1", "mod")
	f.dir.AddMember(guild, "u2", "mod", "admin")
	f.dir.AddMember(guild, "u3", "helper")

	roster, err := f.service.Roster(context.Background(), guild)
	if err != nil {
		t.Fatalf("Roster: %v", err)
	}
	if len(roster) != 2 {
		t.Fatalf("Roster has %d roles, want 2", len(roster))
	}

	want := map[string]int{"mod": 2, "admin": 1}
	for _, entry := range roster {
		if got := len(entry.Members); got != want[entry.RoleID] {
			t.Errorf("%s has %d holders, want %d", entry.RoleID, got, want[entry.RoleID])
		}
	}
}
