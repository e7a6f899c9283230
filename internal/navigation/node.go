// Package navigation models the lazily expanded tree used to browse a
// database server: servers, databases, tables and views, then columns and
// indexes. Every node knows its storage accurate path and the virtual path
// rendered after grouping siblings by name prefix.
//
// A tree is built and used by a single request. Nodes are not safe for
// concurrent mutation. Traversals assume an acyclic tree whose parent links
// agree with the child lists; violating that is a caller bug.
package navigation

import "github.com/charlesng35/dbnav/internal/catalog"

// Type is the structural variant of a node.
type Type int

const (
	// Container nodes are structural: a "Tables" folder or a synthetic group.
	Container Type = iota
	// Object nodes represent real database entities.
	Object
)

func (t Type) String() string {
	if t == Container {
		return "container"
	}
	return "object"
}

// Node is the building block of the navigation tree.
type Node struct {
	name     string
	realName string
	typ      Type
	isGroup  bool

	parent   *Node
	children []*Node

	// Kind is the catalog kind the node belongs to (databases for a
	// database, tables for a table container or a table, ...). It is
	// opaque to the tree algorithms.
	Kind catalog.Kind

	// Visible is set when the node lies on the expansion path.
	Visible bool

	// Separators split child names into prefix groups; SeparatorDepth is
	// how many times grouping is applied recursively.
	Separators     []string
	SeparatorDepth int

	// Pos2 and Pos3 are pagination offsets of the tree's second and third
	// level branches.
	Pos2 int
	Pos3 int

	Icon    string
	Classes string
	IsNew   bool

	loader Loader
}

// Option customises a node at construction time.
type Option func(*Node)

// WithLoader selects the data/presence strategy of the node.
func WithLoader(loader Loader) Option {
	return func(n *Node) {
		n.loader = loader
	}
}

// WithKind sets the catalog kind of the node.
func WithKind(kind catalog.Kind) Option {
	return func(n *Node) {
		n.Kind = kind
	}
}

// WithSeparators configures grouping of the node's children.
func WithSeparators(depth int, separators ...string) Option {
	return func(n *Node) {
		n.Separators = append([]string(nil), separators...)
		n.SeparatorDepth = depth
	}
}

// New creates a detached node. Name, type and group flag are fixed for the
// node's lifetime; only grouping may change the display name afterwards.
func New(name string, typ Type, isGroup bool, opts ...Option) *Node {
	n := &Node{
		name:           name,
		realName:       name,
		typ:            typ,
		isGroup:        isGroup,
		SeparatorDepth: 1,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NewObject is shorthand for New(name, Object, false, opts...).
func NewObject(name string, opts ...Option) *Node {
	return New(name, Object, false, opts...)
}

// NewContainer is shorthand for New(name, Container, false, opts...).
func NewContainer(name string, opts ...Option) *Node {
	return New(name, Container, false, opts...)
}

// Name returns the display identifier, possibly trimmed by grouping.
func (n *Node) Name() string { return n.name }

// RealName returns the canonical identifier.
func (n *Node) RealName() string { return n.realName }

// Type returns the structural variant.
func (n *Node) Type() Type { return n.typ }

// IsGroup reports whether grouping synthesised the node.
func (n *Node) IsGroup() bool { return n.isGroup }

// Parent returns the owning node, nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the owned children in render order. The slice must not
// be modified.
func (n *Node) Children() []*Node { return n.children }

// AddChild appends child and makes n its parent. Uniqueness of real names
// within n is the caller's responsibility.
func (n *Node) AddChild(child *Node) {
	n.children = append(n.children, child)
	child.parent = n
}

// Child returns the first child whose name (or real name when byRealName)
// equals key.
func (n *Node) Child(key string, byRealName bool) (*Node, bool) {
	for _, child := range n.children {
		candidate := child.name
		if byRealName {
			candidate = child.realName
		}
		if candidate == key {
			return child, true
		}
	}
	return nil, false
}

// RemoveChild detaches the first child whose name equals name. Absent names
// are ignored. The removed child keeps its own subtree.
func (n *Node) RemoveChild(name string) {
	for i, child := range n.children {
		if child.name == name {
			n.detachAt(i)
			return
		}
	}
}

func (n *Node) detachAt(i int) *Node {
	child := n.children[i]
	n.children = append(n.children[:i], n.children[i+1:]...)
	child.parent = nil
	return child
}

func (n *Node) insertAt(i int, child *Node) {
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = child
	child.parent = n
}

// Parents lists ancestors nearest first, ending at the root. Containers and
// groups are skipped unless requested; self is prepended, subject to the
// same filters, when includeSelf is set.
func (n *Node) Parents(includeSelf, includeContainers, includeGroups bool) []*Node {
	var parents []*Node
	keep := func(node *Node) bool {
		return (node.typ != Container || includeContainers) && (!node.isGroup || includeGroups)
	}
	if includeSelf && keep(n) {
		parents = append(parents, n)
	}
	for p := n.parent; p != nil; p = p.parent {
		if keep(p) {
			parents = append(parents, p)
		}
	}
	return parents
}

// RealParent returns the nearest ancestor that is neither a container nor a
// group. Applied to a column it yields the table; applied again, the database.
func (n *Node) RealParent() (*Node, bool) {
	parents := n.Parents(false, false, false)
	if len(parents) == 0 {
		return nil, false
	}
	return parents[0], true
}
