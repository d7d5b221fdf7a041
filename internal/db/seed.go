package db

import (
	"fmt"

	"gorm.io/gorm"
)

// seedTables lists tables in delete order (children first).
var seedTables = []string{"messages", "matches", "swipes", "social_connections", "users"}

// ResetTables empties every table and rewinds the id sequences so a fresh
// seed starts from id 1.
//
// Works on MySQL, Postgres and SQLite.
func ResetTables(db *gorm.DB) error {
	for _, table := range seedTables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	// Reset auto-increment sequences; failures only mean ids keep growing.
	for _, table := range seedTables {
		switch db.Dialector.Name() {
		case "mysql":
			db.Exec("ALTER TABLE " + table + " AUTO_INCREMENT = 1")
		case "postgres":
			db.Exec("ALTER SEQUENCE " + table + "_id_seq RESTART WITH 1")
		case "sqlite":
			db.Exec("DELETE FROM sqlite_sequence WHERE name = ?", table)
		}
	}
	return nil
}
