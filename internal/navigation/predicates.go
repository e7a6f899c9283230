package navigation

// containerDepth is the actual path length past which nodes (columns,
// indexes and their containers) always report siblings.
const containerDepth = 3

// HasChildren reports whether n has child nodes. With countEmptyContainers
// unset, containers count only if they hold an object somewhere below.
func (n *Node) HasChildren(countEmptyContainers bool) bool {
	if countEmptyContainers {
		return len(n.children) > 0
	}
	for _, child := range n.children {
		if child.typ == Object || child.HasChildren(false) {
			return true
		}
	}
	return false
}

// NumChildren counts the object nodes below n. Containers contribute the
// objects they hold, never themselves.
func (n *Node) NumChildren() int {
	total := 0
	for _, child := range n.children {
		if child.typ == Object {
			total++
			continue
		}
		total += child.NumChildren()
	}
	return total
}

// HasSiblings reports whether n shares its branch with another rendered
// node. Nodes deeper than the table level always do, so that column and
// index containers are rendered even when alone.
func (n *Node) HasSiblings() bool {
	return n.AlwaysRendered() || n.HasStructuralSiblings()
}

// AlwaysRendered reports whether n sits below the table level.
func (n *Node) AlwaysRendered() bool {
	return len(n.Parents(true, true, false)) > containerDepth
}

// HasStructuralSiblings reports whether another child of n's parent is an
// object or a container holding objects. The root has no siblings.
func (n *Node) HasStructuralSiblings() bool {
	if n.parent == nil {
		return false
	}
	for _, sibling := range n.parent.children {
		if sibling == n {
			continue
		}
		if sibling.typ == Object || sibling.HasChildren(false) {
			return true
		}
	}
	return false
}
