package db

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"complianceadvisor/internal/model"
)

// Migrate creates or updates the users and documents tables. When reset is
// true the tables are dropped first (documents before users, for the foreign key).
func Migrate(db *gorm.DB, reset bool, log *zap.Logger) error {
	if reset {
		log.Warn("RESET_DB=true detected, dropping all tables")
		for _, table := range []interface{}{&model.Document{}, &model.User{}} {
			if err := db.Migrator().DropTable(table); err != nil {
				log.Warn("drop table failed (may not exist)", zap.Error(err))
			}
		}
	}

	if err := db.AutoMigrate(&model.User{}, &model.Document{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
