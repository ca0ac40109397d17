package dal

import (
	"fmt"
	"os"

	"github.com/ASHU16DEV/StaffManager/models"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// legacyDocument is the single YAML document earlier releases kept all
// state in.
type legacyDocument struct {
	Servers          map[string]legacyServer `yaml:"servers"`
	InactiveRequests []legacyRequest         `yaml:"inactiveRequests"`
	InactiveMembers  []legacyInactive        `yaml:"inactiveMembers"`
	StaffRecords     []legacyRecord          `yaml:"staffRecords"`
	ServerLinks      *legacyLink             `yaml:"serverLinks"`
	RoleMaps         []legacyRoleMap         `yaml:"roleMaps"`
}

type legacyServer struct {
	StaffRoles      []string          `yaml:"staffRoles"`
	ManagerRoles    []string          `yaml:"managerRoles"`
	InactiveRole    string            `yaml:"inactiveRole"`
	Strikes         []legacyStrike    `yaml:"strikes"`
	StrikeLimit     int               `yaml:"strikeLimit"`
	StrikeChannelID string            `yaml:"strikeChannelId"`
	Channels        map[string]string `yaml:"channels"`
}

type legacyStrike struct {
	ID       string `yaml:"id"`
	UserID   string `yaml:"userId"`
	Reason   string `yaml:"reason"`
	AddedAt  int64  `yaml:"addedAt"`
	Duration int64  `yaml:"duration"`
	EndTime  int64  `yaml:"endTime"`
	AddedBy  string `yaml:"addedBy"`
}

type legacyRequest struct {
	MessageID string `yaml:"messageId"`
	UserID    string `yaml:"userId"`
	GuildID   string `yaml:"guildId"`
	Reason    string `yaml:"reason"`
	Duration  int64  `yaml:"duration"`
	Timestamp int64  `yaml:"timestamp"`
}

type legacyInactive struct {
	UserID     string `yaml:"userId"`
	GuildID    string `yaml:"guildId"`
	EndTime    int64  `yaml:"endTime"`
	Reason     string `yaml:"reason"`
	ApprovedBy string `yaml:"approvedBy"`
	Timestamp  int64  `yaml:"timestamp"`
}

type legacyRecord struct {
	UserID    string   `yaml:"userId"`
	Action    string   `yaml:"action"`
	Role      string   `yaml:"role"`
	Roles     []string `yaml:"roles"`
	Reason    string   `yaml:"reason"`
	Executor  string   `yaml:"executor"`
	Timestamp int64    `yaml:"timestamp"`
}

type legacyLink struct {
	MainServerID  string `yaml:"mainServerId"`
	StaffServerID string `yaml:"staffServerId"`
}

type legacyRoleMap struct {
	MainRoleID  string `yaml:"mainRoleId"`
	StaffRoleID string `yaml:"staffRoleId"`
}

// ImportLegacy loads a YAML document written by earlier releases and
// merges it into the store. Rows that already exist are kept.
func (s *Store) ImportLegacy(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read legacy database: %w", err)
	}

	var doc legacyDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse legacy database %s: %w", path, err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		return importLegacy(
			tx.Clauses(clause.OnConflict{DoNothing: true}).Session(&gorm.Session{}),
			&doc,
		)
	})
}

func importLegacy(tx *gorm.DB, doc *legacyDocument) error {
	if doc.ServerLinks != nil && doc.ServerLinks.MainServerID != "" {
		var count int64
		if err := tx.Model(&models.ServerLink{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			err := tx.Create(&models.ServerLink{
				PrimaryGuildID:   doc.ServerLinks.MainServerID,
				SecondaryGuildID: doc.ServerLinks.StaffServerID,
			}).Error
			if err != nil {
				return fmt.Errorf("import server link: %w", err)
			}
		}
	}

	for _, m := range doc.RoleMaps {
		err := tx.Create(&models.RoleMapping{
			PrimaryRoleID:   m.MainRoleID,
			SecondaryRoleID: m.StaffRoleID,
		}).Error
		if err != nil {
			return fmt.Errorf("import role map %s: %w", m.MainRoleID, err)
		}
	}

	for guildID, server := range doc.Servers {
		if err := importLegacyServer(tx, guildID, &server); err != nil {
			return fmt.Errorf("import server %s: %w", guildID, err)
		}
	}

	for _, r := range doc.InactiveRequests {
		err := tx.Create(&models.InactiveRequest{
			MessageID:   r.MessageID,
			GuildID:     r.GuildID,
			UserID:      r.UserID,
			Reason:      r.Reason,
			Duration:    r.Duration,
			RequestedAt: r.Timestamp,
		}).Error
		if err != nil {
			return fmt.Errorf("import inactive request %s: %w", r.MessageID, err)
		}
	}

	for _, m := range doc.InactiveMembers {
		err := tx.Create(&models.InactiveGrant{
			UserID:     m.UserID,
			GuildID:    m.GuildID,
			StartedAt:  m.Timestamp,
			EndTime:    m.EndTime,
			Reason:     m.Reason,
			ApprovedBy: m.ApprovedBy,
		}).Error
		if err != nil {
			return fmt.Errorf("import inactive member %s: %w", m.UserID, err)
		}
	}

	// audit records carry no natural key, so they are only imported into
	// an empty log
	var records int64
	if err := tx.Model(&models.StaffRecord{}).Count(&records).Error; err != nil {
		return err
	}
	if records > 0 {
		return nil
	}

	for _, r := range doc.StaffRecords {
		roles := r.Roles
		if r.Role != "" {
			roles = append([]string{r.Role}, roles...)
		}
		err := tx.Create(&models.StaffRecord{
			UserID:     r.UserID,
			Action:     models.StaffAction(r.Action),
			RoleIDs:    roles,
			Reason:     r.Reason,
			ExecutorID: r.Executor,
			Timestamp:  r.Timestamp,
		}).Error
		if err != nil {
			return fmt.Errorf("import staff record for %s: %w", r.UserID, err)
		}
	}

	return nil
}

func importLegacyServer(tx *gorm.DB, guildID string, server *legacyServer) error {
	limit := server.StrikeLimit
	if limit < 1 {
		limit = models.DefaultStrikeLimit
	}
	err := tx.Create(&models.GuildSettings{
		GuildID:         guildID,
		InactiveRoleID:  server.InactiveRole,
		StrikeLimit:     limit,
		StrikeChannelID: server.StrikeChannelID,
	}).Error
	if err != nil {
		return err
	}

	for _, roleID := range server.StaffRoles {
		if err := tx.Create(&models.StaffRole{GuildID: guildID, RoleID: roleID}).Error; err != nil {
			return err
		}
	}

	for _, roleID := range server.ManagerRoles {
		if err := tx.Create(&models.ManagerRole{GuildID: guildID, RoleID: roleID}).Error; err != nil {
			return err
		}
	}

	for kind, channelID := range server.Channels {
		if channelID == "" || !models.ChannelKind(kind).Valid() {
			continue
		}
		err := tx.Create(&models.GuildChannel{
			GuildID:   guildID,
			Kind:      models.ChannelKind(kind),
			ChannelID: channelID,
		}).Error
		if err != nil {
			return err
		}
	}

	for _, st := range server.Strikes {
		err := tx.Create(&models.Strike{
			ID:       st.ID,
			GuildID:  guildID,
			UserID:   st.UserID,
			Reason:   st.Reason,
			AddedAt:  st.AddedAt,
			Duration: st.Duration,
			EndTime:  st.EndTime,
			AddedBy:  st.AddedBy,
		}).Error
		if err != nil {
			return err
		}
	}

	return nil
}
