package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPaginate(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e"}

	require.Equal(t, []string{"a", "b"}, Paginate(names, 0, 2))
	require.Equal(t, []string{"e"}, Paginate(names, 4, 2))
	require.Equal(t, []string{"c", "d", "e"}, Paginate(names, 2, 0))
	require.Equal(t, []string{"a", "b", "c", "d", "e"}, Paginate(names, -1, 10))
	require.Empty(t, Paginate(names, 5, 2))
	require.NotNil(t, Paginate(nil, 0, 2))
}

func TestPaginateCopies(t *testing.T) {
	names := []string{"a", "b"}
	page := Paginate(names, 0, 1)
	page[0] = "z"
	require.Equal(t, "a", names[0])
}

func TestPrefix(t *testing.T) {
	seps := []string{"_", "__"}

	require.Equal(t, "user", Prefix("user_log", seps))
	require.Equal(t, "user", Prefix("user__log_x", seps))
	require.Equal(t, "order", Prefix("order", seps))
	require.Equal(t, "", Prefix("_hidden", seps))
	require.Equal(t, "a", Prefix("a-b_c", []string{"_", "-"}))
	require.Equal(t, "plain", Prefix("plain", nil))
	require.Equal(t, "a_b", Prefix("a_b", []string{""}))
}

func TestDistinctPrefixesSorted(t *testing.T) {
	names := []string{"user_session", "app", "user_log", "billing_inv", "app_cfg"}
	require.Equal(t, []string{"app", "billing", "user"}, DistinctPrefixes(names, []string{"_"}))
	require.Equal(t, 3, CountPrefixes(names, []string{"_"}))
}

func TestPagePrefixes(t *testing.T) {
	names := []string{"user_log", "app_cfg", "user_session", "app", "billing_inv", "crm"}
	seps := []string{"_"}

	prefixes, expansion := PagePrefixes(names, seps, 0, 2)
	require.Equal(t, []string{"app", "billing"}, prefixes)
	require.Equal(t, map[string][]string{
		"app":     {"app", "app_cfg"},
		"billing": {"billing_inv"},
	}, expansion)

	prefixes, expansion = PagePrefixes(names, seps, 2, 2)
	require.Equal(t, []string{"crm", "user"}, prefixes)
	require.Equal(t, []string{"user_log", "user_session"}, expansion["user"])

	prefixes, expansion = PagePrefixes(names, seps, 10, 2)
	require.Empty(t, prefixes)
	require.Empty(t, expansion)
}

func TestPagePrefixesCoversEveryNameExactlyOnce(t *testing.T) {
	names := []string{"a_1", "a_2", "b", "b_1", "c_x_y", "d", "e_1", "e_2", "e_3"}
	seps := []string{"_"}
	total := CountPrefixes(names, seps)

	seen := map[string]int{}
	for offset := 0; offset < total; offset += 2 {
		prefixes, expansion := PagePrefixes(names, seps, offset, 2)
		require.LessOrEqual(t, len(prefixes), 2)
		for _, name := range Expand(prefixes, expansion) {
			seen[name]++
		}
	}

	require.Len(t, seen, len(names))
	for name, count := range seen {
		require.Equal(t, 1, count, name)
	}
}

func TestExpand(t *testing.T) {
	expansion := map[string][]string{
		"b": {"b_1", "b_2"},
		"a": {"a"},
	}
	require.Equal(t, []string{"a", "b_1", "b_2"}, Expand([]string{"b", "a"}, expansion))
	require.Equal(t, []string{}, Expand(nil, nil))
}
