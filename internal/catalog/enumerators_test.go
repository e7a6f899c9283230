package catalog

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/charlesng35/dbnav/internal/database/testutil"
)

func newMockShowEnumerator(t *testing.T) (*ShowEnumerator, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	enumerator, err := NewShowEnumerator(db)
	require.NoError(t, err)
	return enumerator, mock
}

func TestShowEnumerator(t *testing.T) {
	ctx := context.Background()

	t.Run("databases", func(t *testing.T) {
		e, mock := newMockShowEnumerator(t)
		mock.ExpectQuery("^SHOW DATABASES$").
			WillReturnRows(sqlmock.NewRows([]string{"Database"}).AddRow("information_schema").AddRow("shop"))

		names, err := e.Enumerate(ctx, KindDatabases, Scope{})
		require.NoError(t, err)
		require.Equal(t, []string{"information_schema", "shop"}, names)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("tables read the first column and quote the database", func(t *testing.T) {
		e, mock := newMockShowEnumerator(t)
		mock.ExpectQuery(regexp.QuoteMeta("SHOW FULL TABLES FROM `we``ird` WHERE `Table_type` = 'BASE TABLE'")).
			WillReturnRows(sqlmock.NewRows([]string{"Tables_in_we`ird", "Table_type"}).
				AddRow("orders", "BASE TABLE").
				AddRow("users", "BASE TABLE"))

		names, err := e.Enumerate(ctx, KindTables, Scope{Database: "we`ird"})
		require.NoError(t, err)
		require.Equal(t, []string{"orders", "users"}, names)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("routines bind the database", func(t *testing.T) {
		e, mock := newMockShowEnumerator(t)
		mock.ExpectQuery(regexp.QuoteMeta("SHOW PROCEDURE STATUS WHERE `Db` = ?")).
			WithArgs("shop").
			WillReturnRows(sqlmock.NewRows([]string{"Db", "Name", "Type"}).AddRow("shop", "refresh", "PROCEDURE"))

		names, err := e.Enumerate(ctx, KindProcedures, Scope{Database: "shop"})
		require.NoError(t, err)
		require.Equal(t, []string{"refresh"}, names)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("indexes are deduplicated", func(t *testing.T) {
		e, mock := newMockShowEnumerator(t)
		mock.ExpectQuery(regexp.QuoteMeta("SHOW INDEXES FROM `orders` FROM `shop`")).
			WillReturnRows(sqlmock.NewRows([]string{"Table", "Key_name", "Column_name"}).
				AddRow("orders", "PRIMARY", "id").
				AddRow("orders", "idx_customer", "customer_id").
				AddRow("orders", "idx_customer", "created_at"))

		names, err := e.Enumerate(ctx, KindIndexes, Scope{Database: "shop", Table: "orders"})
		require.NoError(t, err)
		require.Equal(t, []string{"PRIMARY", "idx_customer"}, names)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("triggers filter by table", func(t *testing.T) {
		e, mock := newMockShowEnumerator(t)
		mock.ExpectQuery(regexp.QuoteMeta("SHOW TRIGGERS FROM `shop` WHERE `Table` = ?")).
			WithArgs("orders").
			WillReturnRows(sqlmock.NewRows([]string{"Trigger", "Event", "Table"}).AddRow("orders_bi", "INSERT", "orders"))

		names, err := e.Enumerate(ctx, KindTriggers, Scope{Database: "shop", Table: "orders"})
		require.NoError(t, err)
		require.Equal(t, []string{"orders_bi"}, names)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing column", func(t *testing.T) {
		e, mock := newMockShowEnumerator(t)
		mock.ExpectQuery(regexp.QuoteMeta("SHOW COLUMNS FROM `orders` FROM `shop`")).
			WillReturnRows(sqlmock.NewRows([]string{"Name"}).AddRow("id"))

		_, err := e.Enumerate(ctx, KindColumns, Scope{Database: "shop", Table: "orders"})
		require.ErrorContains(t, err, `column "Field" not in result`)
	})

	t.Run("unknown kind", func(t *testing.T) {
		e, _ := newMockShowEnumerator(t)
		_, err := e.Enumerate(ctx, Kind("sequences"), Scope{})
		require.ErrorIs(t, err, ErrUnsupportedKind)
	})
}

func TestNewEnumeratorsRequireDB(t *testing.T) {
	_, err := NewShowEnumerator(nil)
	require.Error(t, err)
	_, err = NewSQLiteEnumerator(nil)
	require.Error(t, err)
}

func TestSQLiteEnumerator(t *testing.T) {
	db := testutil.MustOpenTestDB(t,
		testutil.WithAttached("archive"),
		testutil.WithStatements(
			`CREATE TABLE orders (id INTEGER PRIMARY KEY, customer_id INTEGER, total REAL)`,
			`CREATE TABLE customers (id INTEGER PRIMARY KEY, name TEXT)`,
			`CREATE INDEX idx_orders_customer ON orders (customer_id)`,
			`CREATE VIEW big_orders AS SELECT * FROM orders WHERE total > 100`,
			`CREATE TRIGGER orders_ai AFTER INSERT ON orders BEGIN SELECT 1; END`,
			`CREATE TABLE "archive".old_orders (id INTEGER)`,
		),
	)

	e, err := NewSQLiteEnumerator(db)
	require.NoError(t, err)
	require.Equal(t, "sqlite", e.Name())
	require.NoError(t, e.Ping(context.Background()))

	ctx := context.Background()
	main := Scope{Database: "main"}

	databases, err := e.Enumerate(ctx, KindDatabases, Scope{})
	require.NoError(t, err)
	require.Contains(t, databases, "main")
	require.Contains(t, databases, "archive")

	tables, err := e.Enumerate(ctx, KindTables, main)
	require.NoError(t, err)
	require.Equal(t, []string{"customers", "orders"}, tables)

	archived, err := e.Enumerate(ctx, KindTables, Scope{Database: "archive"})
	require.NoError(t, err)
	require.Equal(t, []string{"old_orders"}, archived)

	views, err := e.Enumerate(ctx, KindViews, main)
	require.NoError(t, err)
	require.Equal(t, []string{"big_orders"}, views)

	orders := Scope{Database: "main", Table: "orders"}
	columns, err := e.Enumerate(ctx, KindColumns, orders)
	require.NoError(t, err)
	require.Equal(t, []string{"id", "customer_id", "total"}, columns)

	indexes, err := e.Enumerate(ctx, KindIndexes, orders)
	require.NoError(t, err)
	require.Equal(t, []string{"idx_orders_customer"}, indexes)

	triggers, err := e.Enumerate(ctx, KindTriggers, orders)
	require.NoError(t, err)
	require.Equal(t, []string{"orders_ai"}, triggers)

	none, err := e.Enumerate(ctx, KindTriggers, Scope{Database: "main", Table: "customers"})
	require.NoError(t, err)
	require.Empty(t, none)

	_, err = e.Enumerate(ctx, KindFunctions, main)
	require.ErrorIs(t, err, ErrUnsupportedKind)
}

func TestSQLiteThroughClient(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithStatements(
		`CREATE TABLE user_log (id INTEGER)`,
		`CREATE TABLE user_session (id INTEGER)`,
		`CREATE TABLE orders (id INTEGER)`,
	))

	backend, err := Open(db, "sqlite", false)
	require.NoError(t, err)
	client, err := NewClient(backend)
	require.NoError(t, err)

	q := Query{Kind: KindTables, Scope: Scope{Database: "main"}, Separators: []string{"_"}}
	count, err := client.CountChildren(context.Background(), q)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	q.Limit = 1
	q.Offset = 1
	names, err := client.ListChildren(context.Background(), q)
	require.NoError(t, err)
	require.Equal(t, []string{"user_log", "user_session"}, names)
}
