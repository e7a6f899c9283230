package navigation

import "strings"

// Icons returned by ExpanderIcon.
const (
	IconCollapse = "b_minus.png"
	IconExpand   = "b_plus.png"
)

// CSSClasses returns the classes of the node's expander. matched tells
// whether the node lies on the loaded tree path.
func (n *Node) CSSClasses(s Settings, matched bool) string {
	if s.DisableDatabaseExpansion {
		return ""
	}
	classes := []string{"expander"}
	if n.isGroup || matched {
		classes = append(classes, "loaded")
	}
	if n.typ == Container {
		classes = append(classes, "container")
	}
	return strings.Join(classes, " ")
}

// ExpanderIcon returns the expander icon. A matched node that is not a group is
// marked visible.
func (n *Node) ExpanderIcon(s Settings, matched bool) string {
	switch {
	case s.DisableDatabaseExpansion:
		return ""
	case matched && !n.isGroup:
		n.Visible = true
		return IconCollapse
	default:
		return IconExpand
	}
}
