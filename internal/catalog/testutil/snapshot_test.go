package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/dbnav/internal/catalog"
)

func TestSnapshotReturnsCopies(t *testing.T) {
	snap := NewSnapshot("")
	require.Equal(t, "snapshot", snap.Name())
	snap.Add(catalog.KindViews, catalog.Scope{Database: "db"}, "v1")

	names, err := snap.Enumerate(context.Background(), catalog.KindViews, catalog.Scope{Database: "db"})
	require.NoError(t, err)
	names[0] = "changed"

	again, err := snap.Enumerate(context.Background(), catalog.KindViews, catalog.Scope{Database: "db"})
	require.NoError(t, err)
	require.Equal(t, []string{"v1"}, again)

	empty, err := snap.Enumerate(context.Background(), catalog.KindViews, catalog.Scope{Database: "other"})
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestSnapshotServesClient(t *testing.T) {
	snap := NewSnapshot("mem").Add(catalog.KindDatabases, catalog.Scope{}, "b_1", "a", "b_2")
	client, err := catalog.NewClient(snap)
	require.NoError(t, err)
	require.Equal(t, "mem", client.Backend())

	names, err := client.ListChildren(context.Background(), catalog.Query{Kind: catalog.KindDatabases, Separators: []string{"_"}, Offset: 1})
	require.NoError(t, err)
	require.Equal(t, []string{"b_1", "b_2"}, names)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = snap.Enumerate(ctx, catalog.KindDatabases, catalog.Scope{})
	require.ErrorIs(t, err, context.Canceled)
}
