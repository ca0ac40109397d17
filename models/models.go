// Package models defines the entities persisted by the staff manager.
package models

// All lists every persisted model, in migration order.
func All() []interface{} {
	return []interface{}{
		&ServerLink{},
		&RoleMapping{},
		&GuildSettings{},
		&GuildChannel{},
		&StaffRole{},
		&ManagerRole{},
		&InactiveRequest{},
		&InactiveGrant{},
		&Strike{},
		&StaffRecord{},
	}
}
