package navigation

import (
	"sort"
	"strings"

	"github.com/samber/lo"
)

// GroupIcon and GroupClass decorate synthetic group containers.
const (
	GroupIcon  = "b_group.png"
	GroupClass = "navGroup"
)

// Group inserts synthetic group containers under container n for object
// children sharing a name prefix, then regroups each group with one less
// level of depth. It is a no-op for objects, for nodes without separators
// and once the depth is exhausted.
func Group(n *Node) {
	if n.typ != Container || n.SeparatorDepth <= 0 {
		return
	}
	separators := lo.Compact(n.Separators)
	if len(separators) == 0 {
		return
	}

	prefixes := groupPrefixes(n, separators)
	if len(prefixes) == 0 {
		return
	}

	groups := make([]*Node, 0, len(prefixes))
	for _, prefix := range prefixes {
		group := New(prefix, Container, true)
		group.Kind = n.Kind
		group.Separators = append([]string(nil), n.Separators...)
		group.SeparatorDepth = n.SeparatorDepth - 1
		group.Pos2 = n.Pos2
		group.Pos3 = n.Pos3
		group.Icon = GroupIcon

		position := -1
		for i := 0; i < len(n.children); {
			child := n.children[i]
			remainder, ok := memberName(child, prefix, separators)
			if !ok {
				i++
				continue
			}
			if position < 0 {
				position = i
			}
			n.detachAt(i)
			child.name = remainder
			group.AddChild(child)
		}
		if position < 0 {
			continue
		}
		n.insertAt(position, group)
		groups = append(groups, group)
	}

	for _, group := range groups {
		Group(group)
		group.Classes = GroupClass
	}
}

// Ungroup flattens every group below n back into its parent, restoring
// member display names to their real names.
func Ungroup(n *Node) {
	for i := 0; i < len(n.children); {
		child := n.children[i]
		if !child.isGroup {
			Ungroup(child)
			i++
			continue
		}
		Ungroup(child)
		n.detachAt(i)
		members := append([]*Node(nil), child.children...)
		for _, member := range members {
			member.name = member.realName
			n.insertAt(i, member)
			i++
		}
		child.children = nil
	}
}

// groupPrefixes returns, sorted, the prefixes that at least two object
// children share, or that equal another object child's full name.
func groupPrefixes(n *Node, separators []string) []string {
	objects := lo.Filter(n.children, func(child *Node, _ int) bool {
		return child.typ == Object && !child.IsNew
	})
	counts := lo.CountValues(lo.FilterMap(objects, func(child *Node, _ int) (string, bool) {
		return splitPrefix(child.name, separators)
	}))
	for _, child := range objects {
		if _, ok := counts[child.name]; ok {
			counts[child.name]++
		}
	}

	prefixes := lo.Keys(lo.PickBy(counts, func(_ string, count int) bool {
		return count > 1
	}))
	sort.Strings(prefixes)
	return prefixes
}

// splitPrefix returns the text before the earliest separator, ignoring
// separators at the very start or end of the name.
func splitPrefix(name string, separators []string) (string, bool) {
	cut := -1
	for _, sep := range separators {
		idx := strings.Index(name, sep)
		if idx <= 0 || idx+len(sep) >= len(name) {
			continue
		}
		if cut < 0 || idx < cut {
			cut = idx
		}
	}
	if cut < 0 {
		return "", false
	}
	return name[:cut], true
}

// memberName reports whether child belongs to the group labelled prefix and
// the display name it takes inside the group.
func memberName(child *Node, prefix string, separators []string) (string, bool) {
	if child.typ != Object || child.isGroup || child.IsNew {
		return "", false
	}
	if child.name == prefix {
		return child.name, true
	}
	for _, sep := range separators {
		if strings.HasPrefix(child.name, prefix+sep) {
			if remainder := child.name[len(prefix)+len(sep):]; remainder != "" {
				return remainder, true
			}
			return child.name, true
		}
	}
	return "", false
}
