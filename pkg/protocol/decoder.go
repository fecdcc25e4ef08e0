package protocol

import (
	"errors"
	"fmt"

	ierrors "github.com/redscorpix/npf-sub003/internal/errors"
)

// Allocation limits to prevent DoS attacks via malicious length prefixes.
const (
	// DefaultMaxAllocation is the maximum length of a single string (4MB).
	DefaultMaxAllocation = 4 * 1024 * 1024

	// MaxCollectionCount is the maximum number of mutations in a frame.
	MaxCollectionCount = 1_000_000
)

// Common decoding errors.
var (
	ErrBufferTooShort     = errors.New("protocol: buffer too short")
	ErrVarintOverflow     = errors.New("protocol: varint overflow")
	ErrAllocationTooLarge = errors.New("protocol: allocation size exceeds limit")
	ErrCollectionTooLarge = errors.New("protocol: collection count exceeds limit")
)

// Decoder reads binary data from a byte buffer.
type Decoder struct {
	buf []byte
	pos int
}

// NewDecoder creates a new decoder from the given byte slice.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.pos
}

// EOF returns true if all bytes have been read.
func (d *Decoder) EOF() bool {
	return d.pos >= len(d.buf)
}

// ReadByte reads a single byte.
func (d *Decoder) ReadByte() (byte, error) {
	if d.pos >= len(d.buf) {
		return 0, ErrBufferTooShort
	}
	b := d.buf[d.pos]
	d.pos++
	return b, nil
}

// ReadUvarint reads an unsigned varint.
func (d *Decoder) ReadUvarint() (uint64, error) {
	v, n := DecodeUvarint(d.buf[d.pos:])
	switch n {
	case -1:
		return 0, ErrBufferTooShort
	case -2:
		return 0, ErrVarintOverflow
	}
	d.pos += n
	return v, nil
}

// ReadString reads a length-prefixed UTF-8 string.
func (d *Decoder) ReadString() (string, error) {
	length, err := d.ReadUvarint()
	if err != nil {
		return "", err
	}
	if length > uint64(d.Remaining()) {
		return "", ErrBufferTooShort
	}
	if length > DefaultMaxAllocation {
		return "", ErrAllocationTooLarge
	}
	n := int(length)
	s := string(d.buf[d.pos : d.pos+n])
	d.pos += n
	return s, nil
}

// ReadCount reads a collection length and checks it against
// MaxCollectionCount.
func (d *Decoder) ReadCount() (int, error) {
	n, err := d.ReadUvarint()
	if err != nil {
		return 0, err
	}
	if n > MaxCollectionCount {
		return 0, ErrCollectionTooLarge
	}
	return int(n), nil
}

// ReadUint32 reads a uint32 in big-endian byte order.
func (d *Decoder) ReadUint32() (uint32, error) {
	if d.pos+4 > len(d.buf) {
		return 0, ErrBufferTooShort
	}
	b := d.buf[d.pos:]
	v := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	d.pos += 4
	return v, nil
}

// ReadMutation reads one mutation written by Encoder.WriteMutation. Errors
// carry code E060, or E061 for an op it does not know.
func (d *Decoder) ReadMutation() (Mutation, error) {
	var m Mutation
	op, err := d.ReadByte()
	if err != nil {
		return m, malformed(err)
	}
	m.Op = MutationOp(op)
	if m.ID, err = d.ReadUvarint(); err != nil {
		return m, malformed(err)
	}

	switch m.Op {
	case OpCreate:
		var t byte
		if t, err = d.ReadByte(); err != nil {
			break
		}
		m.NodeType = NodeType(t)
		switch m.NodeType {
		case NodeElement:
			if m.Tag, err = d.ReadString(); err != nil {
				break
			}
			m.Namespace, err = d.ReadString()
		case NodeText, NodeComment:
		default:
			err = fmt.Errorf("unknown node type %d", t)
		}
	case OpInsert:
		if m.Parent, err = d.ReadUvarint(); err != nil {
			break
		}
		m.Before, err = d.ReadUvarint()
	case OpDetach, OpRemove:
	case OpSetAttr:
		if m.Name, err = d.ReadString(); err != nil {
			break
		}
		m.Value, err = d.ReadString()
	case OpRemoveAttr:
		m.Name, err = d.ReadString()
	case OpSetText:
		m.Value, err = d.ReadString()
	default:
		return m, ierrors.New("E061").
			WithDetailf("op 0x%02x", op).
			Wrap(ErrUnknownOp)
	}
	if err != nil {
		return m, malformed(err)
	}
	return m, nil
}
