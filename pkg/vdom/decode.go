package vdom

import (
	"bytes"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/redscorpix/npf-sub003/internal/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MaxDepth bounds the nesting of decoded descriptions.
const MaxDepth = 256

// wireNode is the JSON form of a VNode. A child may also be a bare string,
// which stands for a text node.
type wireNode struct {
	Tag      string                `json:"tag,omitempty"`
	Key      string                `json:"key,omitempty"`
	Text     *string               `json:"text,omitempty"`
	Props    map[string]any        `json:"props,omitempty"`
	Statics  map[string]any        `json:"statics,omitempty"`
	Children []jsoniter.RawMessage `json:"children,omitempty"`
	Skip     bool                  `json:"skip,omitempty"`
}

// Decode parses a JSON tree description. A top-level array decodes to a
// fragment.
func Decode(data []byte) (*VNode, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var children []jsoniter.RawMessage
		if err := json.Unmarshal(data, &children); err != nil {
			return nil, invalidTree(err)
		}
		node := &VNode{Kind: KindFragment}
		for i, raw := range children {
			c, err := decodeNode(raw, 1)
			if err != nil {
				return nil, invalidTree(fmt.Errorf("[%d]: %w", i, err))
			}
			node.Children = append(node.Children, c)
		}
		return node, nil
	}

	node, err := decodeNode(data, 0)
	if err != nil {
		return nil, invalidTree(err)
	}
	return node, nil
}

func decodeNode(raw []byte, depth int) (*VNode, error) {
	if depth > MaxDepth {
		return nil, fmt.Errorf("nesting deeper than %d", MaxDepth)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return Text(s), nil
	}

	var w wireNode
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}

	var node *VNode
	switch {
	case w.Tag != "":
		if w.Text != nil {
			return nil, fmt.Errorf("<%s>: an element cannot carry text", w.Tag)
		}
		node = &VNode{
			Kind:    KindElement,
			Tag:     w.Tag,
			Key:     w.Key,
			Skip:    w.Skip,
			Props:   w.Props,
			Statics: w.Statics,
		}
	case w.Text != nil:
		if len(w.Children) > 0 {
			return nil, fmt.Errorf("a text node cannot have children")
		}
		return Text(*w.Text), nil
	case w.Children != nil:
		node = &VNode{Kind: KindFragment}
	default:
		return nil, fmt.Errorf("node needs a tag, text or children")
	}

	for i, c := range w.Children {
		child, err := decodeNode(c, depth+1)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", label(node), i, err)
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

// Encode writes the JSON form of n.
func Encode(n *VNode) ([]byte, error) {
	if n == nil {
		return []byte("null"), nil
	}
	if n.Kind == KindFragment {
		w, err := toWire(n)
		if err != nil {
			return nil, err
		}
		return json.Marshal(w.Children)
	}
	w, err := toWire(n)
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

func toWire(n *VNode) (*wireNode, error) {
	w := &wireNode{}
	switch n.Kind {
	case KindText:
		text := n.Text
		w.Text = &text
		return w, nil
	case KindElement:
		w.Tag = n.Tag
		w.Key = n.Key
		w.Skip = n.Skip
		w.Props = n.Props
		w.Statics = n.Statics
	case KindFragment:
		w.Children = []jsoniter.RawMessage{}
	}
	for _, c := range n.Children {
		if c.Kind == KindFragment && len(c.Children) == 0 {
			continue
		}
		cw, err := toWire(c)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(cw)
		if err != nil {
			return nil, err
		}
		w.Children = append(w.Children, raw)
	}
	return w, nil
}

func invalidTree(err error) error {
	return errors.New("E063").Wrap(err)
}

func label(n *VNode) string {
	if n.Kind == KindElement {
		return n.Tag
	}
	return "fragment"
}
