package navigation

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/charlesng35/dbnav/internal/catalog"
	"github.com/charlesng35/dbnav/pkg/logger"
)

// Catalog is the query collaborator loaders delegate to.
type Catalog interface {
	ListChildren(ctx context.Context, q catalog.Query) ([]string, error)
	CountChildren(ctx context.Context, q catalog.Query) (int, error)
}

// Loader fetches the identifiers of a node's children. Each concrete object
// kind (server, database, table) has its own loader, chosen at construction.
type Loader interface {
	Data(ctx context.Context, n *Node, kind catalog.Kind, offset int, search string) ([]string, error)
	Presence(ctx context.Context, n *Node, kind catalog.Kind, search string) (int, error)
}

// GetData returns the identifiers of kind below n, starting at offset and
// matching search. Failures degrade to an empty list: no children to expand.
func (n *Node) GetData(ctx context.Context, kind catalog.Kind, offset int, search string) []string {
	if n.loader == nil {
		return []string{}
	}
	names, err := n.loader.Data(ctx, n, kind, offset, search)
	if err != nil {
		n.logFailure("data", kind, err, zap.Int("offset", offset))
		return []string{}
	}
	if names == nil {
		return []string{}
	}
	return names
}

// GetPresence returns how many items of kind below n match search. Under
// grouping it counts distinct prefixes. Failures degrade to zero.
func (n *Node) GetPresence(ctx context.Context, kind catalog.Kind, search string) int {
	if n.loader == nil {
		return 0
	}
	count, err := n.loader.Presence(ctx, n, kind, search)
	if err != nil {
		n.logFailure("presence", kind, err)
		return 0
	}
	return count
}

func (n *Node) logFailure(operation string, kind catalog.Kind, err error, fields ...zap.Field) {
	log := logger.WithModule("navigation")
	fields = append(fields,
		zap.String("operation", operation),
		zap.String("node", n.realName),
		zap.String("kind", string(kind)),
		zap.String("reason", catalog.Reason(err)),
		zap.Error(err),
	)
	if errors.Is(err, catalog.ErrUnsupportedKind) {
		log.Debug("kind not listed by backend", fields...)
		return
	}
	log.Warn("catalog unavailable; treating node as empty", fields...)
}

// ServerLoader lists the databases of a server. With grouping enabled the
// page unit is the database name prefix.
type ServerLoader struct {
	Catalog  Catalog
	Settings Settings
}

// Data implements Loader.
func (l ServerLoader) Data(ctx context.Context, _ *Node, kind catalog.Kind, offset int, search string) ([]string, error) {
	q, err := l.query(kind, search)
	if err != nil {
		return nil, err
	}
	q.Offset = offset
	q.Limit = l.Settings.FirstLevelItems
	return l.Catalog.ListChildren(ctx, q)
}

// Presence implements Loader.
func (l ServerLoader) Presence(ctx context.Context, _ *Node, kind catalog.Kind, search string) (int, error) {
	q, err := l.query(kind, search)
	if err != nil {
		return 0, err
	}
	return l.Catalog.CountChildren(ctx, q)
}

func (l ServerLoader) query(kind catalog.Kind, search string) (catalog.Query, error) {
	if kind != catalog.KindDatabases {
		return catalog.Query{}, fmt.Errorf("%w: server lists databases, not %s", catalog.ErrUnsupportedKind, kind)
	}
	if l.Catalog == nil {
		return catalog.Query{}, errors.New("navigation: server loader has no catalog")
	}
	return catalog.Query{
		Kind: kind,
		Filter: catalog.Filter{
			Search: search,
			Hide:   l.Settings.HideDB,
			Only:   l.Settings.OnlyDB,
		},
		Separators: l.Settings.DatabaseGroupSeparators(),
	}, nil
}

// DatabaseLoader lists tables, views and routines of the database node it
// is attached to. Tables and views page by name prefix when table grouping
// is on, so a group is never split across pages.
type DatabaseLoader struct {
	Catalog  Catalog
	Settings Settings
}

var databaseKinds = map[catalog.Kind]struct{}{
	catalog.KindTables:     {},
	catalog.KindViews:      {},
	catalog.KindFunctions:  {},
	catalog.KindProcedures: {},
	catalog.KindEvents:     {},
}

// Data implements Loader.
func (l DatabaseLoader) Data(ctx context.Context, n *Node, kind catalog.Kind, offset int, search string) ([]string, error) {
	q, err := l.query(n, kind, search)
	if err != nil {
		return nil, err
	}
	q.Offset = offset
	q.Limit = l.Settings.MaxItems
	return l.Catalog.ListChildren(ctx, q)
}

// Presence implements Loader.
func (l DatabaseLoader) Presence(ctx context.Context, n *Node, kind catalog.Kind, search string) (int, error) {
	q, err := l.query(n, kind, search)
	if err != nil {
		return 0, err
	}
	return l.Catalog.CountChildren(ctx, q)
}

func (l DatabaseLoader) query(n *Node, kind catalog.Kind, search string) (catalog.Query, error) {
	if _, ok := databaseKinds[kind]; !ok {
		return catalog.Query{}, fmt.Errorf("%w: database does not list %s", catalog.ErrUnsupportedKind, kind)
	}
	if l.Catalog == nil {
		return catalog.Query{}, errors.New("navigation: database loader has no catalog")
	}
	q := catalog.Query{
		Kind:   kind,
		Scope:  catalog.Scope{Database: n.realName},
		Filter: catalog.Filter{Search: search},
	}
	if (kind == catalog.KindTables || kind == catalog.KindViews) && l.Settings.TableLevel > 0 {
		q.Separators = l.Settings.TableGroupSeparators()
	}
	return q, nil
}

// TableLoader lists columns, indexes and triggers of the table or view node
// it is attached to. The database is the table's real parent.
type TableLoader struct {
	Catalog  Catalog
	Settings Settings
}

var tableKinds = map[catalog.Kind]struct{}{
	catalog.KindColumns:  {},
	catalog.KindIndexes:  {},
	catalog.KindTriggers: {},
}

// Data implements Loader.
func (l TableLoader) Data(ctx context.Context, n *Node, kind catalog.Kind, offset int, search string) ([]string, error) {
	q, err := l.query(n, kind, search)
	if err != nil {
		return nil, err
	}
	q.Offset = offset
	q.Limit = l.Settings.MaxItems
	return l.Catalog.ListChildren(ctx, q)
}

// Presence implements Loader.
func (l TableLoader) Presence(ctx context.Context, n *Node, kind catalog.Kind, search string) (int, error) {
	q, err := l.query(n, kind, search)
	if err != nil {
		return 0, err
	}
	return l.Catalog.CountChildren(ctx, q)
}

func (l TableLoader) query(n *Node, kind catalog.Kind, search string) (catalog.Query, error) {
	if _, ok := tableKinds[kind]; !ok {
		return catalog.Query{}, fmt.Errorf("%w: table does not list %s", catalog.ErrUnsupportedKind, kind)
	}
	if l.Catalog == nil {
		return catalog.Query{}, errors.New("navigation: table loader has no catalog")
	}
	database, ok := n.RealParent()
	if !ok {
		return catalog.Query{}, fmt.Errorf("navigation: table %q has no database ancestor", n.realName)
	}
	return catalog.Query{
		Kind:   kind,
		Scope:  catalog.Scope{Database: database.realName, Table: n.realName},
		Filter: catalog.Filter{Search: search},
	}, nil
}
