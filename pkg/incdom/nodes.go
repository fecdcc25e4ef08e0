package incdom

import (
	"golang.org/x/net/html"

	"github.com/redscorpix/npf-sub003/pkg/dom"
)

// namespaceFor picks the namespace of a new element from its tag and parent.
func namespaceFor(tag string, parent *html.Node) string {
	switch tag {
	case "svg":
		return dom.NamespaceSVG
	case "math":
		return dom.NamespaceMathML
	}
	if parent == nil || parent.Type != html.ElementNode {
		return dom.NamespaceHTML
	}
	if parent.Data == "foreignObject" {
		return dom.NamespaceHTML
	}
	return parent.Namespace
}

// CreateElement creates a detached element for tag in the namespace implied by
// parent, applies the static name/value pairs and records its NodeData.
func (p *Patcher) CreateElement(parent *html.Node, tag, key string, statics []any) *html.Node {
	el := dom.NewElement(tag, namespaceFor(tag, parent))
	data := p.store.InitData(el, tag, key)
	p.notify(Mutation{Kind: MutationCreate, Node: el})
	p.applyStatics(el, data, statics)
	return el
}

// CreateText creates a detached, empty text node and records its NodeData.
func (p *Patcher) CreateText() *html.Node {
	n := dom.NewText("")
	p.store.InitData(n, dom.TextNodeName, "")
	p.notify(Mutation{Kind: MutationCreate, Node: n})
	return n
}

func (p *Patcher) applyStatics(el *html.Node, data *NodeData, statics []any) {
	if data.StaticsApplied {
		return
	}
	data.StaticsApplied = true
	if len(statics) == 0 {
		return
	}
	if len(statics)%2 != 0 {
		statics = append(statics, nil)
	}
	if data.Statics == nil {
		data.Statics = make(map[string]struct{}, len(statics)/2)
	}
	for i := 0; i < len(statics); i += 2 {
		name := attrName(statics[i])
		data.Statics[name] = struct{}{}
		p.updateAttribute(el, data, name, statics[i+1])
	}
}

// GetChild returns the child of parent with the given key, or nil.
func (p *Patcher) GetChild(parent *html.Node, key string) *html.Node {
	if key == "" || parent == nil {
		return nil
	}
	return p.keyMap(parent)[key]
}

// RegisterChild records child under key in parent's key map.
func (p *Patcher) RegisterChild(parent *html.Node, key string, child *html.Node) {
	p.keyMap(parent)[key] = child
}

func (p *Patcher) keyMap(parent *html.Node) map[string]*html.Node {
	data := p.store.GetData(parent)
	if data.KeyMap == nil {
		data.KeyMap = p.createKeyMap(parent)
	}
	return data.KeyMap
}

// createKeyMap indexes the keyed element children of el.
func (p *Patcher) createKeyMap(el *html.Node) map[string]*html.Node {
	m := make(map[string]*html.Node)
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if key := p.store.GetData(c).Key; key != "" {
			m[key] = c
		}
	}
	p.logger.Debug("key map built", "parent", dom.NodeName(el), "keys", len(m))
	return m
}
