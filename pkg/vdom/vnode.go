package vdom

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement  VKind = iota // <div>, <li>, <circle>, etc.
	KindText                  // Plain text node
	KindFragment              // Grouping without wrapper
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	default:
		return "Unknown"
	}
}

// VNode is a described node.
type VNode struct {
	Kind     VKind    // Node type
	Tag      string   // Element tag name (e.g., "div")
	Key      string   // Reconciliation key
	Props    Props    // Attributes diffed on every render
	Statics  Props    // Attributes applied once, at creation
	Children []*VNode // Child nodes
	Text     string   // For KindText
	Skip     bool     // Leave existing children untouched
}

// Props holds attributes by name.
type Props map[string]any

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// StaticAttr is an attribute applied only when the element is created.
type StaticAttr struct {
	Key   string
	Value any
}

// SkipMarker marks an element whose children are managed elsewhere.
type SkipMarker struct{}

// Count returns the number of element and text nodes in the tree.
// Fragments are not counted.
func (v *VNode) Count() int {
	if v == nil {
		return 0
	}
	n := 0
	if v.Kind != KindFragment {
		n = 1
	}
	for _, c := range v.Children {
		n += c.Count()
	}
	return n
}
