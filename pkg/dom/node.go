package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Namespaces as stored in html.Node.Namespace.
const (
	NamespaceHTML   = ""
	NamespaceSVG    = "svg"
	NamespaceMathML = "math"
)

// Node names reported for non-element nodes.
const (
	TextNodeName     = "#text"
	CommentNodeName  = "#comment"
	DocumentNodeName = "#document"
	DoctypeNodeName  = "#doctype"
)

// NewDocument returns an empty document node.
func NewDocument() *html.Node {
	return &html.Node{Type: html.DocumentNode}
}

// NewElement returns a detached element in the given namespace.
func NewElement(tag, namespace string) *html.Node {
	n := &html.Node{
		Type:      html.ElementNode,
		Data:      tag,
		Namespace: namespace,
	}
	if namespace == NamespaceHTML {
		n.DataAtom = atom.Lookup([]byte(tag))
	}
	return n
}

// NewText returns a detached text node.
func NewText(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

// NewContainer returns a detached HTML element usable as a patch root.
func NewContainer(tag string) *html.Node {
	if tag == "" {
		tag = "div"
	}
	return NewElement(tag, NamespaceHTML)
}

// NodeName returns the DOM nodeName-style name of n: the tag for elements,
// "#text" for text nodes and so on.
func NodeName(n *html.Node) string {
	if n == nil {
		return ""
	}
	switch n.Type {
	case html.ElementNode:
		return n.Data
	case html.TextNode:
		return TextNodeName
	case html.CommentNode:
		return CommentNodeName
	case html.DocumentNode:
		return DocumentNodeName
	case html.DoctypeNode:
		return DoctypeNodeName
	default:
		return ""
	}
}

// IsElement reports whether n is an element node.
func IsElement(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode
}

// Children returns all child nodes of n in order.
func Children(n *html.Node) []*html.Node {
	if n == nil {
		return nil
	}
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// ElementChildren returns the element children of n in order.
func ElementChildren(n *html.Node) []*html.Node {
	if n == nil {
		return nil
	}
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// Detach removes n from its parent, if any.
func Detach(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// InsertBefore moves child under parent, before ref (append when ref is nil).
// child is detached from its current parent first.
func InsertBefore(parent, child, ref *html.Node) {
	if child == ref {
		return
	}
	Detach(child)
	parent.InsertBefore(child, ref)
}

// splitName splits "xlink:href" into ("xlink", "href"). Only the xlink, xml
// and xmlns prefixes are treated as namespaces.
func splitName(name string) (string, string) {
	if i := strings.IndexByte(name, ':'); i > 0 {
		switch prefix := name[:i]; prefix {
		case "xlink", "xml", "xmlns":
			return prefix, name[i+1:]
		}
	}
	return "", name
}

// QualifiedName returns the attribute name as written in markup.
func QualifiedName(a html.Attribute) string {
	if a.Namespace == "" {
		return a.Key
	}
	return a.Namespace + ":" + a.Key
}

// GetAttr returns the value of the named attribute. Names may carry an
// xlink:, xml: or xmlns: prefix.
func GetAttr(n *html.Node, name string) (string, bool) {
	if n == nil {
		return "", false
	}
	ns, key := splitName(name)
	for _, a := range n.Attr {
		if a.Namespace == ns && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets the named attribute, keeping its position if it already exists.
func SetAttr(n *html.Node, name, value string) {
	ns, key := splitName(name)
	for i := range n.Attr {
		if n.Attr[i].Namespace == ns && n.Attr[i].Key == key {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Namespace: ns, Key: key, Val: value})
}

// RemoveAttr removes the named attribute. It reports whether it was present.
func RemoveAttr(n *html.Node, name string) bool {
	ns, key := splitName(name)
	for i := range n.Attr {
		if n.Attr[i].Namespace == ns && n.Attr[i].Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return true
		}
	}
	return false
}

// Path returns the child indexes leading from root to n, or nil if n is not
// a descendant of root.
func Path(root, n *html.Node) []int {
	var rev []int
	for cur := n; cur != root; cur = cur.Parent {
		if cur == nil || cur.Parent == nil {
			return nil
		}
		i := 0
		for s := cur.PrevSibling; s != nil; s = s.PrevSibling {
			i++
		}
		rev = append(rev, i)
	}
	path := make([]int, len(rev))
	for i := range rev {
		path[i] = rev[len(rev)-1-i]
	}
	return path
}
