package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/dbnav/internal/database"
)

// TestDBOption customises the behaviour of MustOpenTestDB.
type TestDBOption func(*testDBConfig)

type testDBConfig struct {
	statements []string
	attach     []string
}

// WithStatements runs the given DDL after opening the test database.
func WithStatements(statements ...string) TestDBOption {
	return func(cfg *testDBConfig) {
		cfg.statements = append(cfg.statements, statements...)
	}
}

// WithAttached attaches an empty in-memory database under each name, so
// listings see more than one database. Statements may target them as
// "name".table.
func WithAttached(names ...string) TestDBOption {
	return func(cfg *testDBConfig) {
		cfg.attach = append(cfg.attach, names...)
	}
}

// MustOpenTestDB opens a private in-memory SQLite database for tests and
// applies the optional schema. The connection is closed via t.Cleanup.
func MustOpenTestDB(t *testing.T, opts ...TestDBOption) *gorm.DB {
	t.Helper()

	cfg := testDBConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := database.Open(database.Config{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Attached databases live on a single connection.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	for _, name := range cfg.attach {
		require.NoError(t, db.Exec("ATTACH DATABASE ':memory:' AS "+quote(name)).Error)
	}
	for _, stmt := range cfg.statements {
		require.NoError(t, db.Exec(stmt).Error, stmt)
	}

	return db
}

func quote(identifier string) string {
	return `"` + identifier + `"`
}
