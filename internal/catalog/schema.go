package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"gorm.io/gorm"
)

// Dialect names understood by NewSchemaLister.
const (
	DialectMySQL    = "mysql"
	DialectPostgres = "postgres"
)

// source describes where a kind lives in the metadata catalog.
type source struct {
	table    string
	column   string
	scope    []string // columns bound to Scope.Database then Scope.Table
	extra    string   // constant predicate
	orderBy  string
	distinct bool
}

type dialect struct {
	name       string
	like       string
	notRegexp  string
	firstLevel func(column string) string
	// startsWith renders a predicate true when a||sep is a prefix of b||sep.
	startsWith func(a, b string) string
	sources    map[Kind]source
}

var mysqlDialect = dialect{
	name:      DialectMySQL,
	like:      "LIKE",
	notRegexp: "NOT REGEXP",
	firstLevel: func(column string) string {
		return fmt.Sprintf("SUBSTRING_INDEX(%s, ?, 1)", column)
	},
	startsWith: func(a, b string) string {
		return fmt.Sprintf("LOCATE(CONCAT(%s, ?), CONCAT(%s, ?)) = 1", a, b)
	},
	sources: map[Kind]source{
		KindDatabases:  {table: "information_schema.SCHEMATA", column: "SCHEMA_NAME", orderBy: "SCHEMA_NAME"},
		KindTables:     {table: "information_schema.TABLES", column: "TABLE_NAME", scope: []string{"TABLE_SCHEMA"}, extra: "TABLE_TYPE = 'BASE TABLE'", orderBy: "TABLE_NAME"},
		KindViews:      {table: "information_schema.TABLES", column: "TABLE_NAME", scope: []string{"TABLE_SCHEMA"}, extra: "TABLE_TYPE = 'VIEW'", orderBy: "TABLE_NAME"},
		KindFunctions:  {table: "information_schema.ROUTINES", column: "ROUTINE_NAME", scope: []string{"ROUTINE_SCHEMA"}, extra: "ROUTINE_TYPE = 'FUNCTION'", orderBy: "ROUTINE_NAME"},
		KindProcedures: {table: "information_schema.ROUTINES", column: "ROUTINE_NAME", scope: []string{"ROUTINE_SCHEMA"}, extra: "ROUTINE_TYPE = 'PROCEDURE'", orderBy: "ROUTINE_NAME"},
		KindEvents:     {table: "information_schema.EVENTS", column: "EVENT_NAME", scope: []string{"EVENT_SCHEMA"}, orderBy: "EVENT_NAME"},
		KindColumns:    {table: "information_schema.COLUMNS", column: "COLUMN_NAME", scope: []string{"TABLE_SCHEMA", "TABLE_NAME"}, orderBy: "ORDINAL_POSITION"},
		KindIndexes:    {table: "information_schema.STATISTICS", column: "INDEX_NAME", scope: []string{"TABLE_SCHEMA", "TABLE_NAME"}, orderBy: "INDEX_NAME", distinct: true},
		KindTriggers:   {table: "information_schema.TRIGGERS", column: "TRIGGER_NAME", scope: []string{"EVENT_OBJECT_SCHEMA", "EVENT_OBJECT_TABLE"}, orderBy: "TRIGGER_NAME"},
	},
}

// PostgreSQL schemas play the role of databases: the information schema
// only describes the connected database.
var postgresDialect = dialect{
	name:      DialectPostgres,
	like:      "ILIKE",
	notRegexp: "!~",
	firstLevel: func(column string) string {
		return fmt.Sprintf("split_part(%s, ?, 1)", column)
	},
	startsWith: func(a, b string) string {
		return fmt.Sprintf("strpos(%s || ?, %s || ?) = 1", b, a)
	},
	sources: map[Kind]source{
		KindDatabases:  {table: "information_schema.schemata", column: "schema_name", orderBy: "schema_name"},
		KindTables:     {table: "information_schema.tables", column: "table_name", scope: []string{"table_schema"}, extra: "table_type = 'BASE TABLE'", orderBy: "table_name"},
		KindViews:      {table: "information_schema.tables", column: "table_name", scope: []string{"table_schema"}, extra: "table_type = 'VIEW'", orderBy: "table_name"},
		KindFunctions:  {table: "information_schema.routines", column: "routine_name", scope: []string{"routine_schema"}, extra: "routine_type = 'FUNCTION'", orderBy: "routine_name", distinct: true},
		KindProcedures: {table: "information_schema.routines", column: "routine_name", scope: []string{"routine_schema"}, extra: "routine_type = 'PROCEDURE'", orderBy: "routine_name", distinct: true},
		KindColumns:    {table: "information_schema.columns", column: "column_name", scope: []string{"table_schema", "table_name"}, orderBy: "ordinal_position"},
		KindIndexes:    {table: "pg_indexes", column: "indexname", scope: []string{"schemaname", "tablename"}, orderBy: "indexname"},
		KindTriggers:   {table: "information_schema.triggers", column: "trigger_name", scope: []string{"event_object_schema", "event_object_table"}, orderBy: "trigger_name", distinct: true},
	},
}

// SchemaLister answers queries from the server's information schema, so
// filtering and pagination run inside the database.
type SchemaLister struct {
	db      *gorm.DB
	dialect dialect
}

// NewSchemaLister builds a lister for the given dialect (mysql or postgres).
func NewSchemaLister(db *gorm.DB, dialectName string) (*SchemaLister, error) {
	if db == nil {
		return nil, errors.New("schema lister: db is required")
	}
	var d dialect
	switch strings.ToLower(strings.TrimSpace(dialectName)) {
	case DialectMySQL, "mariadb":
		d = mysqlDialect
	case DialectPostgres, "postgresql":
		d = postgresDialect
	default:
		return nil, fmt.Errorf("schema lister: unsupported dialect %q", dialectName)
	}
	return &SchemaLister{db: db, dialect: d}, nil
}

// Name implements Backend.
func (s *SchemaLister) Name() string { return "information_schema/" + s.dialect.name }

// List implements Lister.
func (s *SchemaLister) List(ctx context.Context, q Query) ([]string, error) {
	src, err := s.source(q.Kind)
	if err != nil {
		return nil, err
	}

	var (
		sql  string
		args []any
	)
	if sep, ok := s.separator(q); ok {
		sql, args = s.groupedListSQL(src, q, sep)
	} else {
		sql, args = s.listSQL(src, q)
	}

	names := []string{}
	if err := s.db.WithContext(ctx).Raw(sql, args...).Scan(&names).Error; err != nil {
		return nil, fmt.Errorf("schema lister: list %s: %w", q.Kind, err)
	}
	return names, nil
}

// Count implements Lister.
func (s *SchemaLister) Count(ctx context.Context, q Query) (int, error) {
	src, err := s.source(q.Kind)
	if err != nil {
		return 0, err
	}

	where, whereArgs := s.where(src, q)
	var (
		sql  string
		args []any
	)
	if sep, ok := s.separator(q); ok {
		sql = fmt.Sprintf("SELECT COUNT(*) FROM (SELECT DISTINCT %s AS first_level FROM %s WHERE %s) t",
			s.dialect.firstLevel(src.column), src.table, where)
		args = append([]any{sep}, whereArgs...)
	} else {
		selectExpr := src.column
		if src.distinct {
			selectExpr = "DISTINCT " + src.column
		}
		sql = fmt.Sprintf("SELECT COUNT(%s) FROM %s WHERE %s", selectExpr, src.table, where)
		args = whereArgs
	}

	var count int64
	if err := s.db.WithContext(ctx).Raw(sql, args...).Scan(&count).Error; err != nil {
		return 0, fmt.Errorf("schema lister: count %s: %w", q.Kind, err)
	}
	return int(count), nil
}

// Enumerate implements Enumerator; the Client uses it when a query needs
// grouping on more than one separator.
func (s *SchemaLister) Enumerate(ctx context.Context, kind Kind, scope Scope) ([]string, error) {
	return s.List(ctx, Query{Kind: kind, Scope: scope})
}

// Ping implements Pinger.
func (s *SchemaLister) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *SchemaLister) source(kind Kind) (source, error) {
	src, ok := s.dialect.sources[kind]
	if !ok {
		return source{}, fmt.Errorf("%w: %s on %s", ErrUnsupportedKind, kind, s.dialect.name)
	}
	return src, nil
}

func (s *SchemaLister) separator(q Query) (string, bool) {
	for _, sep := range q.Separators {
		if sep != "" {
			return sep, true
		}
	}
	return "", false
}

func (s *SchemaLister) listSQL(src source, q Query) (string, []any) {
	where, args := s.where(src, q)
	selectExpr := src.column
	if src.distinct {
		selectExpr = "DISTINCT " + src.column
	}
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY %s ASC LIMIT ? OFFSET ?",
		selectExpr, src.table, where, src.orderBy)
	return sql, append(args, limitOf(q), offsetOf(q))
}

// groupedListSQL pages over distinct first-level prefixes in a derived
// table, then expands each selected prefix to every matching identifier.
func (s *SchemaLister) groupedListSQL(src source, q Query, sep string) (string, []any) {
	where, whereArgs := s.where(src, q)
	inner := fmt.Sprintf("SELECT DISTINCT %s AS first_level FROM %s WHERE %s ORDER BY first_level ASC LIMIT ? OFFSET ?",
		s.dialect.firstLevel(src.column), src.table, where)
	sql := fmt.Sprintf("SELECT DISTINCT %s FROM %s, (%s) t2 WHERE %s AND %s ORDER BY %s ASC",
		src.column, src.table, inner, where, s.dialect.startsWith("first_level", src.column), src.column)

	args := make([]any, 0, 2*len(whereArgs)+5)
	args = append(args, sep)
	args = append(args, whereArgs...)
	args = append(args, limitOf(q), offsetOf(q))
	args = append(args, whereArgs...)
	args = append(args, sep, sep)
	return sql, args
}

func (s *SchemaLister) where(src source, q Query) (string, []any) {
	clauses := []string{"1 = 1"}
	var args []any

	scopeValues := []string{q.Scope.Database, q.Scope.Table}
	for i, column := range src.scope {
		clauses = append(clauses, column+" = ?")
		args = append(args, scopeValues[i])
	}
	if src.extra != "" {
		clauses = append(clauses, src.extra)
	}
	if q.Filter.Search != "" {
		clauses = append(clauses, fmt.Sprintf("%s %s ?", src.column, s.dialect.like))
		args = append(args, "%"+EscapeLike(q.Filter.Search)+"%")
	}
	if q.Filter.Hide != "" {
		clauses = append(clauses, fmt.Sprintf("%s %s ?", src.column, s.dialect.notRegexp))
		args = append(args, q.Filter.Hide)
	}
	if only := q.Filter.onlyPatterns(); len(only) > 0 {
		sub := make([]string, 0, len(only))
		for _, pattern := range only {
			sub = append(sub, fmt.Sprintf("%s %s ?", src.column, s.dialect.like))
			args = append(args, pattern)
		}
		clauses = append(clauses, "("+strings.Join(sub, " OR ")+")")
	}
	return strings.Join(clauses, " AND "), args
}

func limitOf(q Query) int {
	if q.Limit <= 0 {
		return math.MaxInt32
	}
	return q.Limit
}

func offsetOf(q Query) int {
	if q.Offset < 0 {
		return 0
	}
	return q.Offset
}
