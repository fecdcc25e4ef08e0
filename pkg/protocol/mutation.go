package protocol

import (
	"errors"
	"fmt"

	ierrors "github.com/redscorpix/npf-sub003/internal/errors"
)

// MutationOp is the type of a mutation on the wire.
type MutationOp uint8

const (
	OpCreate     MutationOp = 0x01 // Create a detached node
	OpInsert     MutationOp = 0x02 // Insert or move a node under Parent, before Before
	OpDetach     MutationOp = 0x03 // Take a node out of its parent, keeping its ID
	OpRemove     MutationOp = 0x04 // Drop a node and the IDs of its subtree
	OpSetAttr    MutationOp = 0x05 // Set attribute Name to Value
	OpRemoveAttr MutationOp = 0x06 // Remove attribute Name
	OpSetText    MutationOp = 0x07 // Set text or comment content to Value
)

// String returns the string representation of the mutation op.
func (op MutationOp) String() string {
	switch op {
	case OpCreate:
		return "Create"
	case OpInsert:
		return "Insert"
	case OpDetach:
		return "Detach"
	case OpRemove:
		return "Remove"
	case OpSetAttr:
		return "SetAttr"
	case OpRemoveAttr:
		return "RemoveAttr"
	case OpSetText:
		return "SetText"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(op))
	}
}

// NodeType is the type of node created by OpCreate.
type NodeType uint8

const (
	NodeElement NodeType = 0x01
	NodeText    NodeType = 0x02
	NodeComment NodeType = 0x03
)

// RootID is the ID of the patch root on both sides.
const RootID uint64 = 1

// Mutation is a single DOM change addressed by node IDs. An ID of 0 means
// "none" (Before 0 appends).
type Mutation struct {
	Op        MutationOp
	ID        uint64
	Parent    uint64   // OpInsert
	Before    uint64   // OpInsert
	NodeType  NodeType // OpCreate
	Tag       string   // OpCreate, elements only
	Namespace string   // OpCreate, elements only
	Name      string   // OpSetAttr, OpRemoveAttr
	Value     string   // OpSetAttr, OpSetText
}

// String returns a compact, human-readable form of the mutation.
func (m Mutation) String() string {
	switch m.Op {
	case OpCreate:
		if m.NodeType == NodeElement {
			return fmt.Sprintf("Create #%d <%s>", m.ID, m.Tag)
		}
		return fmt.Sprintf("Create #%d type=%d", m.ID, m.NodeType)
	case OpInsert:
		return fmt.Sprintf("Insert #%d into #%d before #%d", m.ID, m.Parent, m.Before)
	case OpSetAttr:
		return fmt.Sprintf("SetAttr #%d %s=%q", m.ID, m.Name, m.Value)
	case OpRemoveAttr:
		return fmt.Sprintf("RemoveAttr #%d %s", m.ID, m.Name)
	case OpSetText:
		return fmt.Sprintf("SetText #%d %q", m.ID, m.Value)
	default:
		return fmt.Sprintf("%s #%d", m.Op, m.ID)
	}
}

// MutationsFrame is the payload of a FrameMutations frame.
type MutationsFrame struct {
	Seq       uint64
	Mutations []Mutation
}

// ErrUnknownOp is returned for an op byte this decoder does not understand.
var ErrUnknownOp = errors.New("protocol: unknown mutation op")

// EncodeMutations encodes a MutationsFrame to bytes.
func EncodeMutations(f *MutationsFrame) []byte {
	e := &Encoder{buf: make([]byte, 0, EncodedSize(f))}
	EncodeMutationsTo(e, f)
	return e.Bytes()
}

// EncodeMutationsTo encodes a MutationsFrame using the provided encoder.
func EncodeMutationsTo(e *Encoder, f *MutationsFrame) {
	e.WriteUvarint(f.Seq)
	e.WriteUvarint(uint64(len(f.Mutations)))
	for i := range f.Mutations {
		e.WriteMutation(&f.Mutations[i])
	}
}

// EncodedSize returns the length of EncodeMutations(f).
func EncodedSize(f *MutationsFrame) int {
	n := UvarintLen(f.Seq) + UvarintLen(uint64(len(f.Mutations)))
	for i := range f.Mutations {
		n += mutationSize(&f.Mutations[i])
	}
	return n
}

// DecodeMutations decodes a MutationsFrame from bytes. Errors carry code
// E060 for malformed input and E061 for unknown ops.
func DecodeMutations(data []byte) (*MutationsFrame, error) {
	d := NewDecoder(data)
	f, err := DecodeMutationsFrom(d)
	if err != nil {
		return nil, err
	}
	if !d.EOF() {
		return nil, malformed(fmt.Errorf("%d trailing bytes", d.Remaining()))
	}
	return f, nil
}

// DecodeMutationsFrom decodes a MutationsFrame from a decoder.
func DecodeMutationsFrom(d *Decoder) (*MutationsFrame, error) {
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, malformed(err)
	}
	count, err := d.ReadCount()
	if err != nil {
		return nil, malformed(err)
	}
	// Every mutation takes at least two bytes.
	if count > d.Remaining()/2 {
		return nil, malformed(ErrBufferTooShort)
	}

	f := &MutationsFrame{Seq: seq, Mutations: make([]Mutation, 0, count)}
	for i := 0; i < count; i++ {
		m, err := d.ReadMutation()
		if err != nil {
			return nil, err
		}
		f.Mutations = append(f.Mutations, m)
	}
	return f, nil
}

func malformed(err error) error {
	return ierrors.New("E060").Wrap(err)
}
