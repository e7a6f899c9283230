package navigation

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// PathSeparator joins encoded path segments. It never occurs in a segment
// because segments use the standard base64 alphabet.
const PathSeparator = "."

// Paths holds the actual and virtual paths of a node, root first.
type Paths struct {
	// Actual uses real names and skips groups; it is stable whatever the
	// grouping settings and is safe to build queries from.
	Actual      string
	ActualClean []string
	// Virtual uses display names and includes groups; it addresses what is
	// currently rendered.
	Virtual      string
	VirtualClean []string
}

// Paths computes both path systems for n.
func (n *Node) Paths() Paths {
	actual := reversed(n.Parents(true, true, false))
	virtual := reversed(n.Parents(true, true, true))

	p := Paths{
		ActualClean:  make([]string, len(actual)),
		VirtualClean: make([]string, len(virtual)),
	}
	for i, node := range actual {
		p.ActualClean[i] = node.realName
	}
	for i, node := range virtual {
		p.VirtualClean[i] = node.name
	}
	p.Actual = EncodePath(p.ActualClean)
	p.Virtual = EncodePath(p.VirtualClean)
	return p
}

// EncodeSegment encodes one path segment.
func EncodeSegment(segment string) string {
	return base64.StdEncoding.EncodeToString([]byte(segment))
}

// DecodeSegment reverses EncodeSegment.
func DecodeSegment(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("navigation: decode path segment %q: %w", encoded, err)
	}
	return string(raw), nil
}

// EncodePath encodes and joins clean segments.
func EncodePath(clean []string) string {
	encoded := make([]string, len(clean))
	for i, segment := range clean {
		encoded[i] = EncodeSegment(segment)
	}
	return strings.Join(encoded, PathSeparator)
}

// DecodePath splits and decodes an encoded path. The empty string decodes
// to an empty path.
func DecodePath(encoded string) ([]string, error) {
	if encoded == "" {
		return []string{}, nil
	}
	parts := strings.Split(encoded, PathSeparator)
	clean := make([]string, len(parts))
	for i, part := range parts {
		segment, err := DecodeSegment(part)
		if err != nil {
			return nil, err
		}
		clean[i] = segment
	}
	return clean, nil
}

func reversed(nodes []*Node) []*Node {
	out := make([]*Node, len(nodes))
	for i, node := range nodes {
		out[len(nodes)-1-i] = node
	}
	return out
}
