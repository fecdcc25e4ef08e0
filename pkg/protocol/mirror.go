package protocol

import (
	"fmt"

	"golang.org/x/net/html"

	"github.com/redscorpix/npf-sub003/internal/errors"
	"github.com/redscorpix/npf-sub003/pkg/dom"
)

// Mirror replays mutation frames onto its own tree.
// A Mirror is not safe for concurrent use.
type Mirror struct {
	root  *html.Node
	nodes map[uint64]*html.Node
	ids   map[*html.Node]uint64
	seq   uint64
}

// NewMirror creates a mirror whose root, with RootID, is root.
func NewMirror(root *html.Node) *Mirror {
	m := &Mirror{root: root}
	m.reset()
	return m
}

func (m *Mirror) reset() {
	for c := m.root.FirstChild; c != nil; c = m.root.FirstChild {
		m.root.RemoveChild(c)
	}
	m.nodes = map[uint64]*html.Node{RootID: m.root}
	m.ids = map[*html.Node]uint64{m.root: RootID}
	m.seq = 0
}

// Root returns the mirrored root.
func (m *Mirror) Root() *html.Node {
	return m.root
}

// Seq returns the sequence number of the last applied frame.
func (m *Mirror) Seq() uint64 {
	return m.seq
}

// Node returns the node with the given ID, or nil.
func (m *Mirror) Node(id uint64) *html.Node {
	return m.nodes[id]
}

// Len returns the number of nodes the mirror knows, root included.
func (m *Mirror) Len() int {
	return len(m.nodes)
}

// Load clears the mirror and applies a snapshot frame.
func (m *Mirror) Load(f *MutationsFrame) error {
	m.reset()
	if err := m.apply(f.Mutations); err != nil {
		return err
	}
	m.seq = f.Seq
	return nil
}

// Apply applies the next frame. Frames must arrive in sequence.
func (m *Mirror) Apply(f *MutationsFrame) error {
	if f.Seq != m.seq+1 {
		return errors.New("E060").
			WithDetailf("frame %d out of order, expected %d", f.Seq, m.seq+1)
	}
	if err := m.apply(f.Mutations); err != nil {
		return err
	}
	m.seq = f.Seq
	return nil
}

// ApplyFrame decodes a FrameMutations frame and applies it, loading it when
// it carries FlagSnapshot.
func (m *Mirror) ApplyFrame(fr *Frame) error {
	if fr.Type != FrameMutations {
		return errors.New("E060").
			WithDetailf("%s frame", fr.Type).
			Wrap(ErrInvalidFrameType)
	}
	f, err := DecodeMutations(fr.Payload)
	if err != nil {
		return err
	}
	if fr.Flags.Has(FlagSnapshot) {
		return m.Load(f)
	}
	return m.Apply(f)
}

func (m *Mirror) apply(muts []Mutation) error {
	for i := range muts {
		if err := m.applyOne(&muts[i]); err != nil {
			return fmt.Errorf("mutation %d (%s): %w", i, muts[i].Op, err)
		}
	}
	return nil
}

func (m *Mirror) applyOne(mut *Mutation) error {
	if mut.Op == OpCreate {
		if _, exists := m.nodes[mut.ID]; exists || mut.ID == 0 {
			return errors.New("E060").WithDetailf("node id %d cannot be created", mut.ID)
		}
		var n *html.Node
		switch mut.NodeType {
		case NodeElement:
			n = dom.NewElement(mut.Tag, mut.Namespace)
		case NodeComment:
			n = &html.Node{Type: html.CommentNode}
		default:
			n = dom.NewText("")
		}
		m.nodes[mut.ID] = n
		m.ids[n] = mut.ID
		return nil
	}

	n, err := m.lookup(mut.ID)
	if err != nil {
		return err
	}

	switch mut.Op {
	case OpInsert:
		parent, err := m.lookup(mut.Parent)
		if err != nil {
			return err
		}
		var before *html.Node
		if mut.Before != 0 {
			if before, err = m.lookup(mut.Before); err != nil {
				return err
			}
			if before.Parent != parent {
				return errors.New("E060").
					WithDetailf("node %d is not a child of %d", mut.Before, mut.Parent)
			}
		}
		dom.InsertBefore(parent, n, before)
	case OpDetach:
		dom.Detach(n)
	case OpRemove:
		dom.Detach(n)
		m.forget(n)
	case OpSetAttr:
		if n.Type != html.ElementNode {
			return errors.New("E060").WithDetailf("node %d is not an element", mut.ID)
		}
		dom.SetAttr(n, mut.Name, mut.Value)
	case OpRemoveAttr:
		if n.Type != html.ElementNode {
			return errors.New("E060").WithDetailf("node %d is not an element", mut.ID)
		}
		dom.RemoveAttr(n, mut.Name)
	case OpSetText:
		if n.Type == html.ElementNode {
			return errors.New("E060").WithDetailf("node %d is an element", mut.ID)
		}
		n.Data = mut.Value
	default:
		return errors.New("E061").WithDetailf("op 0x%02x", uint8(mut.Op)).Wrap(ErrUnknownOp)
	}
	return nil
}

func (m *Mirror) lookup(id uint64) (*html.Node, error) {
	n, ok := m.nodes[id]
	if !ok {
		return nil, errors.New("E062").WithDetailf("node id %d", id)
	}
	return n, nil
}

func (m *Mirror) forget(n *html.Node) {
	if n == m.root {
		return
	}
	if id, ok := m.ids[n]; ok {
		delete(m.nodes, id)
		delete(m.ids, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		m.forget(c)
	}
}
