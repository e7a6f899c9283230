package catalog

import (
	"context"
	"errors"
	"strings"
)

// Kind identifies a category of catalog items listed under a tree node.
type Kind string

const (
	KindDatabases  Kind = "databases"
	KindTables     Kind = "tables"
	KindViews      Kind = "views"
	KindFunctions  Kind = "functions"
	KindProcedures Kind = "procedures"
	KindEvents     Kind = "events"
	KindColumns    Kind = "columns"
	KindIndexes    Kind = "indexes"
	KindTriggers   Kind = "triggers"
)

var knownKinds = map[Kind]struct{}{
	KindDatabases:  {},
	KindTables:     {},
	KindViews:      {},
	KindFunctions:  {},
	KindProcedures: {},
	KindEvents:     {},
	KindColumns:    {},
	KindIndexes:    {},
	KindTriggers:   {},
}

// ParseKind normalises user input into a known Kind.
func ParseKind(value string) (Kind, bool) {
	kind := Kind(strings.ToLower(strings.TrimSpace(value)))
	_, ok := knownKinds[kind]
	return kind, ok
}

var (
	// ErrDataUnavailable marks any failure of the backend that answers a listing.
	ErrDataUnavailable = errors.New("catalog: data unavailable")
	// ErrUnsupportedKind is returned when a backend has no notion of the requested kind.
	ErrUnsupportedKind = errors.New("catalog: unsupported kind")
)

// Scope locates the parent objects a listing is evaluated under.
// Database is empty for server level listings, Table is set only for
// column, index and trigger listings.
type Scope struct {
	Database string
	Table    string
}

// Query describes a bounded, filtered listing.
type Query struct {
	Kind   Kind
	Scope  Scope
	Filter Filter
	Offset int
	// Limit <= 0 means no upper bound.
	Limit int
	// Separators enables prefix pagination when non-empty: prefixes, not
	// identifiers, become the paginated unit.
	Separators []string
}

// Grouped reports whether the query paginates over name prefixes.
func (q Query) Grouped() bool {
	for _, sep := range q.Separators {
		if sep != "" {
			return true
		}
	}
	return false
}

// Lister is implemented by backends exposing a metadata catalog that can
// filter and paginate on the server side.
type Lister interface {
	List(ctx context.Context, q Query) ([]string, error)
	Count(ctx context.Context, q Query) (int, error)
}

// Enumerator is implemented by backends that can only return every
// identifier of a kind; filtering and pagination happen in the Client.
type Enumerator interface {
	Enumerate(ctx context.Context, kind Kind, scope Scope) ([]string, error)
}

// Pinger is optionally implemented by backends to support health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}
