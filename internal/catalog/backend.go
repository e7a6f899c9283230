package catalog

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Open selects the backend for a connection opened with the given gorm
// driver. MySQL and PostgreSQL answer from the information schema unless
// disableIS is set, in which case MySQL falls back to SHOW statements.
// SQLite always enumerates.
func Open(db *gorm.DB, driver string, disableIS bool) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "mysql", "mariadb":
		if disableIS {
			return NewShowEnumerator(db)
		}
		return NewSchemaLister(db, DialectMySQL)
	case "postgres", "postgresql":
		if disableIS {
			return nil, fmt.Errorf("catalog: %s has no enumeration backend without the information schema", driver)
		}
		return NewSchemaLister(db, DialectPostgres)
	case "", "sqlite", "sqlite3":
		return NewSQLiteEnumerator(db)
	default:
		return nil, fmt.Errorf("catalog: unsupported driver %q", driver)
	}
}
