package incdom

import (
	"golang.org/x/net/html"

	"github.com/redscorpix/npf-sub003/pkg/dom"
)

// KeyAttr is the attribute read as the key of adopted elements.
const KeyAttr = "key"

// NodeData is the diffing state the walker keeps for one DOM node.
type NodeData struct {
	// NodeName is the tag name for elements and "#text" for text nodes.
	NodeName string

	// Key identifies the node among its siblings across patches.
	Key string

	// Attrs holds the attribute values last applied to the node.
	Attrs map[string]any

	// NewAttrs is scratch space used while reconciling attributes.
	NewAttrs map[string]any

	// AttrsArr holds the name/value pairs of the last described attributes,
	// in call order, for the positional fast path.
	AttrsArr []any

	// Statics holds the names of attributes applied once at creation.
	Statics map[string]struct{}

	// StaticsApplied is set once static attributes were applied.
	StaticsApplied bool

	// KeyMap maps child keys to child nodes. It is built on first lookup.
	KeyMap map[string]*html.Node

	// KeyMapValid is false while KeyMap may hold children that were displaced
	// from the live child list during the current walk.
	KeyMapValid bool

	// Text is the last value described for a text node.
	Text string

	// adopted is set for nodes found in the DOM rather than created; their
	// first attribute diff is a full one.
	adopted bool
}

func newNodeData(nodeName, key string) *NodeData {
	return &NodeData{
		NodeName:    nodeName,
		Key:         key,
		Attrs:       make(map[string]any),
		NewAttrs:    make(map[string]any),
		KeyMapValid: true,
	}
}

// Store associates NodeData records with nodes by identity.
type Store struct {
	data map[*html.Node]*NodeData
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{data: make(map[*html.Node]*NodeData)}
}

// InitData creates a record for node, replacing any previous one.
func (s *Store) InitData(node *html.Node, nodeName, key string) *NodeData {
	d := newNodeData(nodeName, key)
	s.data[node] = d
	return d
}

// GetData returns the record for node, adopting the node when it has none:
// the node name and key attribute are read from the node and its current
// attributes are imported so the next patch only applies real differences.
func (s *Store) GetData(node *html.Node) *NodeData {
	if d, ok := s.data[node]; ok {
		return d
	}

	key := ""
	if node.Type == html.ElementNode {
		key, _ = dom.GetAttr(node, KeyAttr)
	}
	d := s.InitData(node, dom.NodeName(node), key)
	d.adopted = true

	switch node.Type {
	case html.ElementNode:
		for _, a := range node.Attr {
			name := dom.QualifiedName(a)
			if name == KeyAttr {
				continue
			}
			d.Attrs[name] = a.Val
		}
	case html.TextNode:
		d.Text = node.Data
	}
	return d
}

// Lookup returns the record for node without adopting it.
func (s *Store) Lookup(node *html.Node) (*NodeData, bool) {
	d, ok := s.data[node]
	return d, ok
}

// Forget drops the records of node and all of its descendants.
func (s *Store) Forget(node *html.Node) {
	if d, ok := s.data[node]; ok {
		// displaced keyed children live only in the key map
		for _, c := range d.KeyMap {
			if c.Parent != node {
				s.Forget(c)
			}
		}
	}
	delete(s.data, node)
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		s.Forget(c)
	}
}

// Len returns the number of nodes with a record.
func (s *Store) Len() int {
	return len(s.data)
}
