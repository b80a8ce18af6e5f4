package db

import (
	"fmt"

	"github.com/ottercare/pebble/config"
	dbmysql "github.com/ottercare/pebble/db/mysql"
	dbsqlite "github.com/ottercare/pebble/db/sqlite"
	"gorm.io/gorm"
)

const (
	ModeMemory   = "memory"
	ModeSQLite   = "sqlite"
	ModeMySQL    = "mysql"
	ModeDisabled = "disabled"
)

// Open returns a *gorm.DB for the configured database mode.
// ModeDisabled returns (nil, nil): the caller runs without cloud sync.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	switch cfg.Mode {
	case ModeMemory:
		return dbsqlite.Open(":memory:")
	case ModeSQLite:
		return dbsqlite.Open(cfg.SQLitePath)
	case ModeMySQL:
		return dbmysql.Open(cfg.MySQLDSN, cfg.MySQLMaxOpen, cfg.MySQLMaxIdle, cfg.MySQLMaxLife)
	case ModeDisabled:
		return nil, nil
	default:
		return nil, fmt.Errorf("db: unknown mode %q", cfg.Mode)
	}
}
