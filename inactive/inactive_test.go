package inactive

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ASHU16DEV/StaffManager/dal"
	"github.com/ASHU16DEV/StaffManager/dal/daltest"
	"github.com/ASHU16DEV/StaffManager/directory/directorytest"
	"github.com/ASHU16DEV/StaffManager/models"
)

const (
	guild        = "g1"
	inactiveRole = "inactive"
	manager      = "mgr"
)

type fixture struct {
	store  *dal.Store
	dir    *directorytest.Directory
	notify *directorytest.Notifier
	engine *Engine

	mu  sync.Mutex
	now time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:  daltest.New(t),
		dir:    directorytest.NewDirectory(),
		notify: &directorytest.Notifier{},
		now:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.engine = New(f.store, f.dir, f.notify, nil, WithClock(f.clock))

	f.dir.AddGuild(guild, inactiveRole, "staff")
	if err := f.store.UpsertInactiveRole(guild, inactiveRole); err != nil {
		t.Fatalf("UpsertInactiveRole: %v", err)
	}
	return f
}

func (f *fixture) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fixture) advance(d time.Duration) time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
	return f.now
}

func (f *fixture) request(t *testing.T, key, userID string, d time.Duration) {
	t.Helper()
	_, err := f.engine.RequestLeave(LeaveRequest{
		Key:      key,
		GuildID:  guild,
		UserID:   userID,
		Reason:   "holiday",
		Duration: d,
	})
	if err != nil {
		t.Fatalf("RequestLeave(%s): %v", key, err)
	}
}

func hasRole(roles []string, roleID string) bool {
	for _, id := range roles {
		if id == roleID {
			return true
		}
	}
	return false
}

func TestApproveGrantsRoleAndRecordsGrant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.dir.AddMember(guild, "u1", "staff")
	f.request(t, "msg-1", "u1", 5*24*time.Hour)

	grant, err := f.engine.Approve(ctx, "msg-1", manager)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}

	if want := f.clock().Add(5 * 24 * time.Hour); !grant.Ends().Equal(want) {
		t.Errorf("grant ends %v, want %v", grant.Ends(), want)
	}
	if grant.ApprovedBy != manager || grant.Reason != "holiday" {
		t.Errorf("grant = %+v", grant)
	}
	if !hasRole(f.dir.Roles(guild, "u1"), inactiveRole) {
		t.Errorf("roles = %v, want inactive role", f.dir.Roles(guild, "u1"))
	}
	if _, err := f.store.InactiveRequest("msg-1"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("pending request still stored: %v", err)
	}
	if msgs := f.notify.ToUser("u1"); len(msgs) != 1 || !strings.Contains(msgs[0].Content, "approved") {
		t.Errorf("direct messages = %v", msgs)
	}
}

// flakyGrants fails grant writes until failing is cleared.
type flakyGrants struct {
	*dal.Store
	failing bool
}

func (s *flakyGrants) UpsertInactiveGrant(grant *models.InactiveGrant) error {
	if s.failing {
		return errors.New("disk I/O error")
	}
	return s.Store.UpsertInactiveGrant(grant)
}

func TestApproveCanBeRetriedAfterSaveFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store := &flakyGrants{Store: f.store, failing: true}
	engine := New(store, f.dir, f.notify, nil, WithClock(f.clock))
	f.dir.AddMember(guild, "u1", "staff")
	f.request(t, "msg-1", "u1", 24*time.Hour)

	_, err := engine.Approve(ctx, "msg-1", manager)
	if err == nil || errors.Is(err, models.ErrNotFound) {
		t.Fatalf("Approve = %v, want a save error", err)
	}
	if _, err := f.store.InactiveRequest("msg-1"); err != nil {
		t.Fatalf("request lost after failed approval: %v", err)
	}
	if _, err := f.store.InactiveGrant(guild, "u1"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("grant stored after failed approval: %v", err)
	}
	if msgs := f.notify.ToUser("u1"); len(msgs) != 0 {
		t.Errorf("direct messages after failed approval = %v", msgs)
	}

	store.failing = false
	grant, err := engine.Approve(ctx, "msg-1", manager)
	if err != nil {
		t.Fatalf("retried Approve: %v", err)
	}
	if grant.ApprovedBy != manager {
		t.Errorf("grant = %+v", grant)
	}
	if _, err := f.store.InactiveRequest("msg-1"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("pending request still stored: %v", err)
	}

	adds := 0
	for _, call := range f.dir.Calls() {
		if call.Op == "add" {
			adds++
		}
	}
	if adds != 1 {
		t.Errorf("inactive role added %d times, want 1", adds)
	}
}

func TestApproveUnknownRequest(t *testing.T) {
	f := newFixture(t)

	if _, err := f.engine.Approve(context.Background(), "nope", manager); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Approve = %v, want ErrNotFound", err)
	}
}

func TestRequestIsDecidedOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.dir.AddMember(guild, "u1")
	f.request(t, "msg-1", "u1", time.Hour)

	if _, err := f.engine.Approve(ctx, "msg-1", manager); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if _, err := f.engine.Approve(ctx, "msg-1", manager); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("second Approve = %v, want ErrNotFound", err)
	}
	if _, err := f.engine.Deny(ctx, "msg-1", manager, "late"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Deny after Approve = %v, want ErrNotFound", err)
	}
}

func TestApproveWithoutInactiveRoleStillGrants(t *testing.T) {
	f := newFixture(t)
	f.dir.AddGuild("g2")
	f.dir.AddMember("g2", "u1")
	_, err := f.engine.RequestLeave(LeaveRequest{
		Key: "msg-1", GuildID: "g2", UserID: "u1", Duration: time.Hour,
	})
	if err != nil {
		t.Fatalf("RequestLeave: %v", err)
	}

	if _, err := f.engine.Approve(context.Background(), "msg-1", manager); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if _, err := f.engine.Grant("g2", "u1"); err != nil {
		t.Errorf("Grant: %v", err)
	}
	if calls := f.dir.Calls(); len(calls) != 0 {
		t.Errorf("directory calls = %v, want none", calls)
	}
}

func TestApproveForDepartedMember(t *testing.T) {
	f := newFixture(t)
	f.request(t, "msg-1", "ghost", time.Hour)

	if _, err := f.engine.Approve(context.Background(), "msg-1", manager); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Approve = %v, want ErrNotFound", err)
	}
	if _, err := f.engine.Grant(guild, "ghost"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("grant created for departed member: %v", err)
	}
}

func TestSecondApprovalReplacesGrant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.dir.AddMember(guild, "u1")
	f.request(t, "msg-1", "u1", time.Hour)
	f.request(t, "msg-2", "u1", 3*time.Hour)

	if _, err := f.engine.Approve(ctx, "msg-1", manager); err != nil {
		t.Fatalf("Approve(msg-1): %v", err)
	}
	second, err := f.engine.Approve(ctx, "msg-2", "other-mgr")
	if err != nil {
		t.Fatalf("Approve(msg-2): %v", err)
	}

	grant, err := f.engine.Grant(guild, "u1")
	if err != nil {
		t.Fatalf("Grant: %v", err)
	}
	if grant.EndTime != second.EndTime || grant.ApprovedBy != "other-mgr" {
		t.Errorf("grant = %+v, want the second approval", grant)
	}
}

func TestDenyLeavesNoState(t *testing.T) {
	f := newFixture(t)
	f.dir.AddMember(guild, "u1")
	f.request(t, "msg-1", "u1", time.Hour)

	if _, err := f.engine.Deny(context.Background(), "msg-1", manager, "short staffed"); err != nil {
		t.Fatalf("Deny: %v", err)
	}
	if _, err := f.engine.Grant(guild, "u1"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Grant after Deny = %v, want ErrNotFound", err)
	}
	if hasRole(f.dir.Roles(guild, "u1"), inactiveRole) {
		t.Error("inactive role granted on deny")
	}
	msgs := f.notify.ToUser("u1")
	if len(msgs) != 1 || !strings.Contains(msgs[0].Content, "short staffed") {
		t.Errorf("direct messages = %v", msgs)
	}
}

func TestRequestLeaveValidates(t *testing.T) {
	f := newFixture(t)

	bad := []LeaveRequest{
		{GuildID: guild, UserID: "u1", Duration: time.Hour},
		{Key: "k", GuildID: guild, UserID: "u1"},
		{Key: "k", GuildID: guild, UserID: "u1", Duration: 400 * 24 * time.Hour},
	}
	for _, req := range bad {
		if _, err := f.engine.RequestLeave(req); !errors.Is(err, models.ErrInvalidInput) {
			t.Errorf("RequestLeave(%+v) = %v, want ErrInvalidInput", req, err)
		}
	}
}

func TestSweepFinalizesExpiredGrantOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.dir.AddMember(guild, "u1")
	f.request(t, "msg-1", "u1", time.Hour)
	if _, err := f.engine.Approve(ctx, "msg-1", manager); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	if n, err := f.engine.Sweep(ctx, f.advance(30*time.Minute)); err != nil || n != 0 {
		t.Fatalf("early Sweep = %d, %v; want 0", n, err)
	}
	if !hasRole(f.dir.Roles(guild, "u1"), inactiveRole) {
		t.Fatal("inactive role removed early")
	}

	now := f.advance(time.Hour)
	if n, err := f.engine.Sweep(ctx, now); err != nil || n != 1 {
		t.Fatalf("Sweep = %d, %v; want 1", n, err)
	}
	if n, err := f.engine.Sweep(ctx, now); err != nil || n != 0 {
		t.Errorf("second Sweep = %d, %v; want 0", n, err)
	}

	if hasRole(f.dir.Roles(guild, "u1"), inactiveRole) {
		t.Error("inactive role still held after expiry")
	}
	if _, err := f.engine.Grant(guild, "u1"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Grant after expiry = %v, want ErrNotFound", err)
	}

	ended := 0
	for _, m := range f.notify.ToUser("u1") {
		if strings.Contains(m.Content, "has ended") {
			ended++
		}
	}
	if ended != 1 {
		t.Errorf("sent %d expiry messages, want 1", ended)
	}
}

func TestSweepDropsGrantOfDepartedMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.dir.AddMember(guild, "u1")
	f.request(t, "msg-1", "u1", time.Hour)
	if _, err := f.engine.Approve(ctx, "msg-1", manager); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if err := f.dir.Kick(ctx, guild, "u1", "left"); err != nil {
		t.Fatalf("Kick: %v", err)
	}

	if n, err := f.engine.Sweep(ctx, f.advance(2*time.Hour)); err != nil || n != 1 {
		t.Fatalf("Sweep = %d, %v; want 1", n, err)
	}
	if _, err := f.engine.Grant(guild, "u1"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("grant of departed member kept: %v", err)
	}
	if msgs := f.notify.ToUser("u1"); len(msgs) != 1 {
		t.Errorf("direct messages = %v, want only the approval", msgs)
	}
}

func TestOverlappingSweepsFinalizeEachGrantOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	users := []string{"u1", "u2", "u3", "u4"}
	for i, u := range users {
		f.dir.AddMember(guild, u)
		key := "msg-" + u
		f.request(t, key, u, time.Duration(i+1)*time.Minute)
		if _, err := f.engine.Approve(ctx, key, manager); err != nil {
			t.Fatalf("Approve(%s): %v", key, err)
		}
	}
	now := f.advance(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.engine.Sweep(ctx, now); err != nil {
				t.Errorf("Sweep: %v", err)
			}
		}()
	}
	wg.Wait()

	for _, u := range users {
		ended := 0
		for _, m := range f.notify.ToUser(u) {
			if strings.Contains(m.Content, "has ended") {
				ended++
			}
		}
		if ended != 1 {
			t.Errorf("%s got %d expiry messages, want 1", u, ended)
		}
		if hasRole(f.dir.Roles(guild, u), inactiveRole) {
			t.Errorf("%s still holds the inactive role", u)
		}
	}
}

func TestClear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.dir.AddMember(guild, "u1")
	f.request(t, "msg-1", "u1", 24*time.Hour)
	if _, err := f.engine.Approve(ctx, "msg-1", manager); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	if err := f.engine.Clear(ctx, guild, "u1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if hasRole(f.dir.Roles(guild, "u1"), inactiveRole) {
		t.Error("inactive role still held after Clear")
	}
	if err := f.engine.Clear(ctx, guild, "u1"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("second Clear = %v, want ErrNotFound", err)
	}
}
