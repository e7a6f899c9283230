package catalog

import (
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Paginate returns the window [offset, offset+limit) of names. A non-positive
// limit returns everything from offset on.
func Paginate(names []string, offset, limit int) []string {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(names) {
		return []string{}
	}
	end := len(names)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	out := make([]string, end-offset)
	copy(out, names[offset:end])
	return out
}

// Prefix returns the text before the earliest occurrence of any separator,
// or the whole name when none occurs.
func Prefix(name string, separators []string) string {
	cut := -1
	for _, sep := range separators {
		if sep == "" {
			continue
		}
		if idx := strings.Index(name, sep); idx >= 0 && (cut < 0 || idx < cut) {
			cut = idx
		}
	}
	if cut < 0 {
		return name
	}
	return name[:cut]
}

// DistinctPrefixes returns the sorted set of first-level prefixes of names.
func DistinctPrefixes(names []string, separators []string) []string {
	prefixes := lo.Uniq(lo.Map(names, func(name string, _ int) string {
		return Prefix(name, separators)
	}))
	sort.Strings(prefixes)
	return prefixes
}

// CountPrefixes returns the number of distinct first-level prefixes.
func CountPrefixes(names []string, separators []string) int {
	return len(DistinctPrefixes(names, separators))
}

// PagePrefixes is the two-phase grouping pagination: it windows the
// distinct prefixes of a catalog snapshot and maps every selected prefix to
// the sorted identifiers sharing it.
func PagePrefixes(names []string, separators []string, offset, limit int) ([]string, map[string][]string) {
	prefixes := Paginate(DistinctPrefixes(names, separators), offset, limit)
	members := lo.GroupBy(names, func(name string) string {
		return Prefix(name, separators)
	})
	expansion := make(map[string][]string, len(prefixes))
	for _, p := range prefixes {
		sorted := append([]string{}, members[p]...)
		sort.Strings(sorted)
		expansion[p] = sorted
	}
	return prefixes, expansion
}

// Expand flattens an expansion map into one ascending list of identifiers.
func Expand(prefixes []string, expansion map[string][]string) []string {
	out := lo.Flatten(lo.Map(prefixes, func(p string, _ int) []string {
		return expansion[p]
	}))
	sort.Strings(out)
	return out
}
