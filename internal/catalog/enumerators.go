package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ShowEnumerator lists MySQL objects with SHOW statements, for servers where
// the information schema is disabled or too slow.
type ShowEnumerator struct {
	db *gorm.DB
}

// NewShowEnumerator constructs a MySQL SHOW based enumerator.
func NewShowEnumerator(db *gorm.DB) (*ShowEnumerator, error) {
	if db == nil {
		return nil, errors.New("show enumerator: db is required")
	}
	return &ShowEnumerator{db: db}, nil
}

// Name implements Backend.
func (e *ShowEnumerator) Name() string { return "show/mysql" }

// Enumerate implements Enumerator.
func (e *ShowEnumerator) Enumerate(ctx context.Context, kind Kind, scope Scope) ([]string, error) {
	db := backquote(scope.Database)
	tbl := backquote(scope.Table)

	var (
		query  string
		args   []any
		column string
	)
	switch kind {
	case KindDatabases:
		query, column = "SHOW DATABASES", "Database"
	case KindTables:
		query = fmt.Sprintf("SHOW FULL TABLES FROM %s WHERE `Table_type` = 'BASE TABLE'", db)
	case KindViews:
		query = fmt.Sprintf("SHOW FULL TABLES FROM %s WHERE `Table_type` = 'VIEW'", db)
	case KindFunctions:
		query, args, column = "SHOW FUNCTION STATUS WHERE `Db` = ?", []any{scope.Database}, "Name"
	case KindProcedures:
		query, args, column = "SHOW PROCEDURE STATUS WHERE `Db` = ?", []any{scope.Database}, "Name"
	case KindEvents:
		query, column = fmt.Sprintf("SHOW EVENTS FROM %s", db), "Name"
	case KindColumns:
		query, column = fmt.Sprintf("SHOW COLUMNS FROM %s FROM %s", tbl, db), "Field"
	case KindIndexes:
		query, column = fmt.Sprintf("SHOW INDEXES FROM %s FROM %s", tbl, db), "Key_name"
	case KindTriggers:
		query, args, column = fmt.Sprintf("SHOW TRIGGERS FROM %s WHERE `Table` = ?", db), []any{scope.Table}, "Trigger"
	default:
		return nil, fmt.Errorf("%w: %s on mysql", ErrUnsupportedKind, kind)
	}

	rows, err := e.db.WithContext(ctx).Raw(query, args...).Rows()
	if err != nil {
		return nil, fmt.Errorf("show enumerator: %s: %w", kind, err)
	}
	defer rows.Close()

	names, err := readColumn(rows, column)
	if err != nil {
		return nil, fmt.Errorf("show enumerator: %s: %w", kind, err)
	}
	return names, nil
}

// Ping implements Pinger.
func (e *ShowEnumerator) Ping(ctx context.Context) error {
	return pingGorm(ctx, e.db)
}

// SQLiteEnumerator lists SQLite objects from sqlite_master and table-valued
// pragmas. Attached databases appear as databases.
type SQLiteEnumerator struct {
	db *gorm.DB
}

// NewSQLiteEnumerator constructs an enumerator over a SQLite connection.
func NewSQLiteEnumerator(db *gorm.DB) (*SQLiteEnumerator, error) {
	if db == nil {
		return nil, errors.New("sqlite enumerator: db is required")
	}
	return &SQLiteEnumerator{db: db}, nil
}

// Name implements Backend.
func (e *SQLiteEnumerator) Name() string { return "sqlite" }

// Enumerate implements Enumerator.
func (e *SQLiteEnumerator) Enumerate(ctx context.Context, kind Kind, scope Scope) ([]string, error) {
	schema := doubleQuote(scope.Database)

	var (
		query  string
		args   []any
		column = "name"
	)
	switch kind {
	case KindDatabases:
		query = "PRAGMA database_list"
	case KindTables:
		query = fmt.Sprintf(`SELECT name FROM %s.sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite\_%%' ESCAPE '\' ORDER BY name`, schema)
	case KindViews:
		query = fmt.Sprintf("SELECT name FROM %s.sqlite_master WHERE type = 'view' ORDER BY name", schema)
	case KindTriggers:
		query = fmt.Sprintf("SELECT name FROM %s.sqlite_master WHERE type = 'trigger' AND tbl_name = ? ORDER BY name", schema)
		args = []any{scope.Table}
	case KindColumns:
		query, args = "SELECT name FROM pragma_table_info(?, ?) ORDER BY cid", []any{scope.Table, scope.Database}
	case KindIndexes:
		query, args = "SELECT name FROM pragma_index_list(?, ?) ORDER BY name", []any{scope.Table, scope.Database}
	default:
		return nil, fmt.Errorf("%w: %s on sqlite", ErrUnsupportedKind, kind)
	}

	rows, err := e.db.WithContext(ctx).Raw(query, args...).Rows()
	if err != nil {
		return nil, fmt.Errorf("sqlite enumerator: %s: %w", kind, err)
	}
	defer rows.Close()

	names, err := readColumn(rows, column)
	if err != nil {
		return nil, fmt.Errorf("sqlite enumerator: %s: %w", kind, err)
	}
	return names, nil
}

// Ping implements Pinger.
func (e *SQLiteEnumerator) Ping(ctx context.Context) error {
	return pingGorm(ctx, e.db)
}

// readColumn collects one column of every row, keeping first occurrences
// only. An empty column name selects the first column.
func readColumn(rows *sql.Rows, column string) ([]string, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	index := 0
	if column != "" {
		index = -1
		for i, name := range columns {
			if strings.EqualFold(name, column) {
				index = i
				break
			}
		}
		if index < 0 {
			return nil, fmt.Errorf("column %q not in result", column)
		}
	}

	values := make([]sql.RawBytes, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}

	seen := make(map[string]struct{})
	names := []string{}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		name := string(values[index])
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names, rows.Err()
}

func pingGorm(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func backquote(identifier string) string {
	return "`" + strings.ReplaceAll(identifier, "`", "``") + "`"
}

func doubleQuote(identifier string) string {
	if identifier == "" {
		identifier = "main"
	}
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}
