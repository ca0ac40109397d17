// Package daltest provides an in-memory Store for tests.
package daltest

import (
	"testing"

	"github.com/ASHU16DEV/StaffManager/dal"
	"go.uber.org/zap"
)

// New returns a migrated Store backed by an in-memory sqlite database that
// is closed when the test ends.
func New(t testing.TB) *dal.Store {
	t.Helper()

	db, err := dal.InitDB(":memory:", zap.NewNop())
	if err != nil {
		t.Fatalf("init db: %v", err)
	}

	store := dal.New(db)
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
