package vdom

import (
	"sort"

	"github.com/redscorpix/npf-sub003/pkg/incdom"
)

// Render describes n to p in document order. Nil nodes render nothing.
func Render(p *incdom.Patcher, n *VNode) {
	if n == nil {
		return
	}
	switch n.Kind {
	case KindText:
		p.Text(n.Text)
	case KindFragment:
		for _, c := range n.Children {
			Render(p, c)
		}
	case KindElement:
		p.ElementOpen(n.Tag, n.Key, n.Statics.pairs(), n.Props.pairs()...)
		if n.Skip {
			p.Skip()
		} else {
			for _, c := range n.Children {
				Render(p, c)
			}
		}
		p.ElementClose(n.Tag)
	}
}

// Patch returns a patch function rendering nodes in order, for use with
// Patcher.PatchInner and Patcher.PatchOuter.
func Patch(nodes ...*VNode) func(p *incdom.Patcher) {
	return func(p *incdom.Patcher) {
		for _, n := range nodes {
			Render(p, n)
		}
	}
}

// pairs flattens props into name/value pairs sorted by name.
func (props Props) pairs() []any {
	if len(props) == 0 {
		return nil
	}
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]any, 0, 2*len(names))
	for _, name := range names {
		out = append(out, name, props[name])
	}
	return out
}
