package rolesync

import (
	"fmt"
	"sync"

	"github.com/ASHU16DEV/StaffManager/models"
)

// TableStore persists role mappings.
type TableStore interface {
	RoleMappings() ([]models.RoleMapping, error)
	CreateRoleMapping(mapping *models.RoleMapping) error
	DeleteRoleMapping(primaryRoleID, secondaryRoleID string) (bool, error)
}

// Table is the set of role mappings between the main and staff servers.
// A role ID is the main side of at most one mapping and the staff side of
// at most one mapping; lookups resolve exactly one hop.
type Table struct {
	store TableStore
	mu    sync.Mutex
}

// NewTable returns a table over the given store.
func NewTable(store TableStore) *Table {
	return &Table{store: store}
}

// Add maps primaryRoleID to secondaryRoleID. It returns
// models.ErrAlreadyExists without changing anything if either role is
// already mapped.
func (t *Table) Add(primaryRoleID, secondaryRoleID string) error {
	if primaryRoleID == "" || secondaryRoleID == "" {
		return fmt.Errorf("map %q to %q: %w", primaryRoleID, secondaryRoleID, models.ErrInvalidInput)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	mappings, err := t.store.RoleMappings()
	if err != nil {
		return fmt.Errorf("load role mappings: %w", err)
	}
	for _, m := range mappings {
		if m.PrimaryRoleID == primaryRoleID || m.SecondaryRoleID == secondaryRoleID {
			return fmt.Errorf("map %s to %s: %w", primaryRoleID, secondaryRoleID, models.ErrAlreadyExists)
		}
	}

	err = t.store.CreateRoleMapping(&models.RoleMapping{
		PrimaryRoleID:   primaryRoleID,
		SecondaryRoleID: secondaryRoleID,
	})
	if err != nil {
		return fmt.Errorf("save role mapping: %w", err)
	}
	return nil
}

// Remove deletes the exact mapping, or returns models.ErrNotFound.
func (t *Table) Remove(primaryRoleID, secondaryRoleID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	ok, err := t.store.DeleteRoleMapping(primaryRoleID, secondaryRoleID)
	if err != nil {
		return fmt.Errorf("delete role mapping: %w", err)
	}
	if !ok {
		return fmt.Errorf("unmap %s from %s: %w", primaryRoleID, secondaryRoleID, models.ErrNotFound)
	}
	return nil
}

// List returns every mapping in insertion order.
func (t *Table) List() (Mappings, error) {
	mappings, err := t.store.RoleMappings()
	if err != nil {
		return nil, fmt.Errorf("load role mappings: %w", err)
	}
	return Mappings(mappings), nil
}

// LookupSecondary returns the staff role mapped to a main role.
func (t *Table) LookupSecondary(primaryRoleID string) (string, bool, error) {
	mappings, err := t.List()
	if err != nil {
		return "", false, err
	}
	id, ok := mappings.Secondary(primaryRoleID)
	return id, ok, nil
}

// LookupPrimary returns the main role mapped to a staff role.
func (t *Table) LookupPrimary(secondaryRoleID string) (string, bool, error) {
	mappings, err := t.List()
	if err != nil {
		return "", false, err
	}
	id, ok := mappings.Primary(secondaryRoleID)
	return id, ok, nil
}

// Mappings is a loaded snapshot of the table.
type Mappings []models.RoleMapping

// Secondary returns the staff role mapped to a main role.
func (ms Mappings) Secondary(primaryRoleID string) (string, bool) {
	for _, m := range ms {
		if m.PrimaryRoleID == primaryRoleID {
			return m.SecondaryRoleID, true
		}
	}
	return "", false
}

// Primary returns the main role mapped to a staff role.
func (ms Mappings) Primary(secondaryRoleID string) (string, bool) {
	for _, m := range ms {
		if m.SecondaryRoleID == secondaryRoleID {
			return m.PrimaryRoleID, true
		}
	}
	return "", false
}

// counterpart resolves roleID from the given side to the other side.
func (ms Mappings) counterpart(roleID string, fromPrimary bool) (string, bool) {
	if fromPrimary {
		return ms.Secondary(roleID)
	}
	return ms.Primary(roleID)
}

// side returns the role of m on the given side.
func side(m models.RoleMapping, primary bool) string {
	if primary {
		return m.PrimaryRoleID
	}
	return m.SecondaryRoleID
}
