package protocol

import (
	"golang.org/x/net/html"

	"github.com/redscorpix/npf-sub003/pkg/dom"
	"github.com/redscorpix/npf-sub003/pkg/incdom"
)

// Recorder is an incdom.Observer that translates mutations into ID-addressed
// wire mutations and buffers them until Flush.
// A Recorder is not safe for concurrent use.
type Recorder struct {
	root    *html.Node
	ids     map[*html.Node]uint64
	next    uint64
	pending []Mutation
}

// NewRecorder creates a recorder for the tree under root. root has RootID.
func NewRecorder(root *html.Node) *Recorder {
	return &Recorder{
		root: root,
		ids:  map[*html.Node]uint64{root: RootID},
		next: RootID,
	}
}

// ID returns the ID assigned to n.
func (r *Recorder) ID(n *html.Node) (uint64, bool) {
	id, ok := r.ids[n]
	return id, ok
}

// Len returns the number of buffered mutations.
func (r *Recorder) Len() int {
	return len(r.pending)
}

// Flush returns the buffered mutations as a frame with the given sequence
// number and clears the buffer.
func (r *Recorder) Flush(seq uint64) *MutationsFrame {
	f := &MutationsFrame{Seq: seq, Mutations: r.pending}
	r.pending = nil
	return f
}

// Discard drops the buffered mutations.
func (r *Recorder) Discard() {
	r.pending = nil
}

// Observe implements incdom.Observer.
func (r *Recorder) Observe(m incdom.Mutation) {
	switch m.Kind {
	case incdom.MutationCreate:
		r.pending = append(r.pending, createMutation(r.assign(m.Node), m.Node))
	case incdom.MutationInsert:
		r.pending = append(r.pending, Mutation{
			Op:     OpInsert,
			ID:     r.id(m.Node),
			Parent: r.id(m.Parent),
			Before: r.id(m.Before),
		})
	case incdom.MutationDetach:
		r.pending = append(r.pending, Mutation{Op: OpDetach, ID: r.id(m.Node)})
	case incdom.MutationRemove:
		r.pending = append(r.pending, Mutation{Op: OpRemove, ID: r.id(m.Node)})
		r.forget(m.Node)
	case incdom.MutationSetAttr:
		r.pending = append(r.pending, Mutation{Op: OpSetAttr, ID: r.id(m.Node), Name: m.Name, Value: m.Value})
	case incdom.MutationRemoveAttr:
		r.pending = append(r.pending, Mutation{Op: OpRemoveAttr, ID: r.id(m.Node), Name: m.Name})
	case incdom.MutationSetText:
		r.pending = append(r.pending, Mutation{Op: OpSetText, ID: r.id(m.Node), Value: m.Value})
	}
}

// Snapshot returns the mutations that rebuild the current children of the
// root on an empty mirror. Nodes without an ID are assigned one.
func (r *Recorder) Snapshot() []Mutation {
	var out []Mutation
	var walk func(parent *html.Node)
	walk = func(parent *html.Node) {
		pid := r.id(parent)
		for c := parent.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.ElementNode, html.TextNode, html.CommentNode:
			default:
				continue
			}
			id := r.id(c)
			out = append(out, createMutation(id, c))
			switch c.Type {
			case html.ElementNode:
				for _, a := range c.Attr {
					out = append(out, Mutation{Op: OpSetAttr, ID: id, Name: dom.QualifiedName(a), Value: a.Val})
				}
			default:
				if c.Data != "" {
					out = append(out, Mutation{Op: OpSetText, ID: id, Value: c.Data})
				}
			}
			out = append(out, Mutation{Op: OpInsert, ID: id, Parent: pid})
			if c.Type == html.ElementNode {
				walk(c)
			}
		}
	}
	walk(r.root)
	return out
}

func createMutation(id uint64, n *html.Node) Mutation {
	m := Mutation{Op: OpCreate, ID: id}
	switch n.Type {
	case html.ElementNode:
		m.NodeType = NodeElement
		m.Tag = n.Data
		m.Namespace = n.Namespace
	case html.CommentNode:
		m.NodeType = NodeComment
	default:
		m.NodeType = NodeText
	}
	return m
}

func (r *Recorder) assign(n *html.Node) uint64 {
	r.next++
	r.ids[n] = r.next
	return r.next
}

// id returns the ID of n, assigning one to nodes never seen before.
func (r *Recorder) id(n *html.Node) uint64 {
	if n == nil {
		return 0
	}
	if id, ok := r.ids[n]; ok {
		return id
	}
	return r.assign(n)
}

func (r *Recorder) forget(n *html.Node) {
	if n == r.root {
		return
	}
	delete(r.ids, n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.forget(c)
	}
}
