package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const memoryDSN = "file::memory:?cache=shared"

func openSQLite(cfg Config) (*gorm.DB, error) {
	dsn, err := buildSQLiteDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, err
	}

	if cfg.ReadOnly {
		if err := db.Exec("PRAGMA query_only = ON").Error; err != nil {
			return nil, fmt.Errorf("sqlite: enable query_only: %w", err)
		}
	}
	return db, nil
}

func buildSQLiteDSN(cfg Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}

	path := strings.TrimSpace(cfg.Path)
	if path == "" || strings.EqualFold(path, ":memory:") {
		return memoryDSN, nil
	}

	if cfg.ReadOnly {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("sqlite: %w", err)
		}
		return fmt.Sprintf("file:%s?mode=ro", filepath.ToSlash(path)), nil
	}

	if err := ensureDir(path); err != nil {
		return "", err
	}
	return fmt.Sprintf("file:%s?_journal_mode=WAL", filepath.ToSlash(path)), nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
