package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/dbnav/internal/catalog"
	"github.com/charlesng35/dbnav/internal/catalog/testutil"
	"github.com/charlesng35/dbnav/internal/navigation"
	apperrors "github.com/charlesng35/dbnav/pkg/errors"
)

func shopSnapshot() *testutil.Snapshot {
	shop := catalog.Scope{Database: "shop"}
	orders := catalog.Scope{Database: "shop", Table: "orders"}
	return testutil.NewSnapshot("mem").
		Add(catalog.KindDatabases, catalog.Scope{}, "user_log", "user_session", "order", "shop").
		Add(catalog.KindTables, shop, "orders", "order__items", "order__lines", "customers").
		Add(catalog.KindViews, shop, "v_sales").
		Add(catalog.KindFunctions, shop, "calc").
		Add(catalog.KindColumns, orders, "id", "total").
		Add(catalog.KindIndexes, orders, "PRIMARY")
}

func newTestNavigationService(t *testing.T, settings navigation.Settings) *NavigationService {
	t.Helper()
	client, err := catalog.NewClient(shopSnapshot())
	require.NoError(t, err)
	svc, err := NewNavigationService(client, settings, "localhost")
	require.NoError(t, err)
	return svc
}

func childNames(n NavigationNode) []string {
	out := make([]string, 0, len(n.Children))
	for _, child := range n.Children {
		out = append(out, child.Name)
	}
	return out
}

func childNamed(t *testing.T, n NavigationNode, name string) NavigationNode {
	t.Helper()
	for _, child := range n.Children {
		if child.Name == name {
			return child
		}
	}
	t.Fatalf("%s has no child %q; children: %v", n.Name, name, childNames(n))
	return NavigationNode{}
}

func apath(segments ...string) string {
	return navigation.EncodePath(segments)
}

func requireBadRequest(t *testing.T, err error) {
	t.Helper()
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, http.StatusBadRequest, appErr.StatusCode)
}

func TestNewNavigationServiceValidation(t *testing.T) {
	_, err := NewNavigationService(nil, navigation.DefaultSettings(), "x")
	require.Error(t, err)

	client, err := catalog.NewClient(shopSnapshot())
	require.NoError(t, err)

	bad := navigation.DefaultSettings()
	bad.MaxItems = 0
	_, err = NewNavigationService(client, bad, "x")
	require.Error(t, err)

	svc, err := NewNavigationService(client, navigation.DefaultSettings(), "  ")
	require.NoError(t, err)
	tree, err := svc.Tree(context.Background(), TreeRequest{})
	require.NoError(t, err)
	require.Equal(t, "server", tree.Name)
	require.Equal(t, navigation.DefaultSettings(), svc.Settings())
}

func TestTreeFirstLevelGroupsDatabases(t *testing.T) {
	svc := newTestNavigationService(t, navigation.DefaultSettings())

	tree, err := svc.Tree(context.Background(), TreeRequest{})
	require.NoError(t, err)

	require.Equal(t, "localhost", tree.Name)
	require.Equal(t, "container", tree.Type)
	require.True(t, tree.Visible)
	require.NotNil(t, tree.Total)
	require.Equal(t, 3, *tree.Total)
	require.Equal(t, []string{"order", "shop", "user"}, childNames(*tree))
	require.Equal(t, 4, tree.NumChildren)

	user := childNamed(t, *tree, "user")
	require.True(t, user.IsGroup)
	require.Equal(t, navigation.GroupIcon, user.Icon)
	require.Contains(t, user.Classes, navigation.GroupClass)
	require.Equal(t, []string{"log", "session"}, childNames(user))

	log := childNamed(t, user, "log")
	require.Equal(t, "user_log", log.RealName)
	require.Equal(t, []string{"localhost", "user_log"}, log.APathClean)
	require.Equal(t, []string{"localhost", "user", "log"}, log.VPathClean)
	require.Equal(t, apath("localhost", "user_log"), log.APath)
	require.Equal(t, navigation.IconExpand, log.Expander)
	require.False(t, log.Visible)

	shop := childNamed(t, *tree, "shop")
	require.Empty(t, shop.Children)
	require.Equal(t, "databases", shop.Kind)
}

func TestTreeWithoutGrouping(t *testing.T) {
	settings := navigation.DefaultSettings()
	settings.GroupingEnabled = false
	svc := newTestNavigationService(t, settings)

	tree, err := svc.Tree(context.Background(), TreeRequest{})
	require.NoError(t, err)
	require.Equal(t, 4, *tree.Total)
	require.Equal(t, []string{"user_log", "user_session", "order", "shop"}, childNames(*tree))
	for _, child := range tree.Children {
		require.Equal(t, child.APathClean, child.VPathClean)
	}
}

func TestTreeExpandsDatabase(t *testing.T) {
	svc := newTestNavigationService(t, navigation.DefaultSettings())

	tree, err := svc.Tree(context.Background(), TreeRequest{
		APath: apath("localhost", "shop"),
		VPath: apath("localhost", "shop"),
	})
	require.NoError(t, err)

	shop := childNamed(t, *tree, "shop")
	require.True(t, shop.Visible)
	require.Equal(t, navigation.IconCollapse, shop.Expander)
	require.Contains(t, shop.Classes, "loaded")
	require.Equal(t, []string{"tables", "views", "functions"}, childNames(shop))

	tables := childNamed(t, shop, "tables")
	require.Equal(t, 3, *tables.Total)
	require.Equal(t, []string{"customers", "order", "orders"}, childNames(tables))
	group := childNamed(t, tables, "order")
	require.True(t, group.IsGroup)
	require.Equal(t, []string{"items", "lines"}, childNames(group))
	items := childNamed(t, group, "items")
	require.Equal(t, []string{"localhost", "shop", "tables", "order__items"}, items.APathClean)
	require.Equal(t, []string{"localhost", "shop", "tables", "order", "items"}, items.VPathClean)

	functions := childNamed(t, shop, "functions")
	require.Equal(t, []string{"calc"}, childNames(functions))
	require.Equal(t, 1, *functions.Total)
}

func TestTreeExpandsTable(t *testing.T) {
	svc := newTestNavigationService(t, navigation.DefaultSettings())

	tree, err := svc.Tree(context.Background(), TreeRequest{
		APath: apath("localhost", "shop", "tables", "orders"),
		VPath: apath("localhost", "shop", "tables", "orders"),
	})
	require.NoError(t, err)

	orders := childNamed(t, childNamed(t, childNamed(t, *tree, "shop"), "tables"), "orders")
	require.True(t, orders.Visible)
	require.Equal(t, []string{"columns", "indexes"}, childNames(orders))

	columns := childNamed(t, orders, "columns")
	require.Equal(t, []string{"id", "total"}, childNames(columns))
	require.True(t, columns.HasSiblings)
	require.True(t, childNamed(t, columns, "id").HasSiblings)
}

func TestTreePaginatesEachLevel(t *testing.T) {
	svc := newTestNavigationService(t, navigation.DefaultSettings())

	tree, err := svc.Tree(context.Background(), TreeRequest{
		APath:     apath("localhost", "shop"),
		Pos:       1,
		Pos2Name:  "Tables",
		Pos2Value: 2,
	})
	require.NoError(t, err)

	require.Equal(t, []string{"shop", "user"}, childNames(*tree))
	shop := childNamed(t, *tree, "shop")
	tables := childNamed(t, shop, "tables")
	require.Equal(t, 2, tables.Pos2)
	require.Equal(t, 3, *tables.Total)
	require.Equal(t, []string{"orders"}, childNames(tables))
	require.Equal(t, 0, childNamed(t, shop, "views").Pos2)
}

func TestTreeSearch(t *testing.T) {
	svc := newTestNavigationService(t, navigation.DefaultSettings())

	tree, err := svc.Tree(context.Background(), TreeRequest{
		APath:   apath("localhost", "shop"),
		Search:  "sho",
		Search2: "cust",
	})
	require.NoError(t, err)
	require.Equal(t, 1, *tree.Total)
	require.Equal(t, []string{"shop"}, childNames(*tree))

	shop := childNamed(t, *tree, "shop")
	require.Equal(t, []string{"tables"}, childNames(shop))
	require.Equal(t, []string{"customers"}, childNames(childNamed(t, shop, "tables")))
}

func TestTreeIgnoresUnknownPaths(t *testing.T) {
	svc := newTestNavigationService(t, navigation.DefaultSettings())

	tree, err := svc.Tree(context.Background(), TreeRequest{
		APath: apath("otherhost", "shop"),
		VPath: apath("localhost", "missing", "x"),
	})
	require.NoError(t, err)
	require.Empty(t, childNamed(t, *tree, "shop").Children)
}

func TestTreeRejectsMalformedRequests(t *testing.T) {
	svc := newTestNavigationService(t, navigation.DefaultSettings())
	ctx := context.Background()

	_, err := svc.Tree(ctx, TreeRequest{APath: "%%%"})
	requireBadRequest(t, err)

	_, err = svc.Tree(ctx, TreeRequest{VPath: "a.%"})
	requireBadRequest(t, err)

	_, err = svc.Tree(ctx, TreeRequest{Pos: -1})
	requireBadRequest(t, err)
}

func TestTreeDegradesWhenCatalogFails(t *testing.T) {
	svc, err := NewNavigationService(failingCatalog{}, navigation.DefaultSettings(), "localhost")
	require.NoError(t, err)

	tree, err := svc.Tree(context.Background(), TreeRequest{APath: apath("localhost", "shop")})
	require.NoError(t, err)
	require.Empty(t, tree.Children)
	require.Equal(t, 0, *tree.Total)

	count, err := svc.Presence(context.Background(), PresenceRequest{Kind: catalog.KindDatabases})
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestPresence(t *testing.T) {
	svc := newTestNavigationService(t, navigation.DefaultSettings())
	ctx := context.Background()

	tests := []struct {
		name string
		req  PresenceRequest
		want int
	}{
		{"server prefixes", PresenceRequest{Kind: catalog.KindDatabases}, 3},
		{"server by path", PresenceRequest{APath: apath("localhost"), Kind: catalog.KindDatabases}, 3},
		{"table prefixes", PresenceRequest{APath: apath("localhost", "shop"), Kind: catalog.KindTables, Search: "order"}, 2},
		{"procedures", PresenceRequest{APath: apath("localhost", "shop"), Kind: catalog.KindProcedures}, 0},
		{"columns", PresenceRequest{APath: apath("localhost", "shop", "tables", "orders"), Kind: catalog.KindColumns}, 2},
		{"kind not below server", PresenceRequest{APath: apath("localhost"), Kind: catalog.KindColumns}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, err := svc.Presence(ctx, tt.req)
			require.NoError(t, err)
			require.Equal(t, tt.want, count)
		})
	}

	_, err := svc.Presence(ctx, PresenceRequest{APath: apath("localhost", "shop", "tables"), Kind: catalog.KindColumns})
	requireBadRequest(t, err)

	_, err = svc.Presence(ctx, PresenceRequest{APath: "!", Kind: catalog.KindColumns})
	requireBadRequest(t, err)

	_, err = svc.Presence(ctx, PresenceRequest{APath: apath("otherhost"), Kind: catalog.KindDatabases})
	requireBadRequest(t, err)

	_, err = svc.Presence(ctx, PresenceRequest{APath: apath("otherhost", "shop"), Kind: catalog.KindTables})
	requireBadRequest(t, err)
}

func TestGroupedTablesPageAndCountByPrefix(t *testing.T) {
	snap := testutil.NewSnapshot("mem").
		Add(catalog.KindDatabases, catalog.Scope{}, "shop").
		Add(catalog.KindTables, catalog.Scope{Database: "shop"}, "user_log", "user_session", "order")
	client, err := catalog.NewClient(snap)
	require.NoError(t, err)

	settings := navigation.DefaultSettings()
	settings.TableSeparators = []string{"_"}
	settings.MaxItems = 1
	svc, err := NewNavigationService(client, settings, "localhost")
	require.NoError(t, err)
	ctx := context.Background()

	count, err := svc.Presence(ctx, PresenceRequest{APath: apath("localhost", "shop"), Kind: catalog.KindTables})
	require.NoError(t, err)
	require.Equal(t, 2, count)

	tree, err := svc.Tree(ctx, TreeRequest{APath: apath("localhost", "shop")})
	require.NoError(t, err)
	tables := childNamed(t, childNamed(t, *tree, "shop"), "tables")
	require.Equal(t, 2, *tables.Total)
	require.Equal(t, []string{"order"}, childNames(tables))

	tree, err = svc.Tree(ctx, TreeRequest{APath: apath("localhost", "shop"), Pos2Name: "tables", Pos2Value: 1})
	require.NoError(t, err)
	tables = childNamed(t, childNamed(t, *tree, "shop"), "tables")
	require.Equal(t, 2, *tables.Total)
	require.Equal(t, []string{"user"}, childNames(tables))
	user := childNamed(t, tables, "user")
	require.True(t, user.IsGroup)
	require.Equal(t, []string{"log", "session"}, childNames(user))
	require.Equal(t, 2, user.NumChildren)
}

type failingCatalog struct{}

func (failingCatalog) ListChildren(context.Context, catalog.Query) ([]string, error) {
	return nil, errors.New("connection refused")
}

func (failingCatalog) CountChildren(context.Context, catalog.Query) (int, error) {
	return 0, errors.New("connection refused")
}
