package protocol

// Encoder writes frames and mutations into a growing buffer.
type Encoder struct {
	buf []byte
}

// NewEncoder creates an encoder with room for a small frame.
func NewEncoder() *Encoder {
	return &Encoder{buf: make([]byte, 0, 256)}
}

// Bytes returns the encoded bytes. The slice aliases the encoder's buffer.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// WriteUvarint appends an unsigned varint.
func (e *Encoder) WriteUvarint(v uint64) {
	var tmp [MaxVarintLen]byte
	n := EncodeUvarint(tmp[:], v)
	e.buf = append(e.buf, tmp[:n]...)
}

// WriteString appends a length-prefixed UTF-8 string.
func (e *Encoder) WriteString(s string) {
	e.WriteUvarint(uint64(len(s)))
	e.buf = append(e.buf, s...)
}

// WriteMutation appends one mutation: the op byte, the node ID, then the
// fields the op carries.
func (e *Encoder) WriteMutation(m *Mutation) {
	e.buf = append(e.buf, byte(m.Op))
	e.WriteUvarint(m.ID)
	switch m.Op {
	case OpCreate:
		e.buf = append(e.buf, byte(m.NodeType))
		if m.NodeType == NodeElement {
			e.WriteString(m.Tag)
			e.WriteString(m.Namespace)
		}
	case OpInsert:
		e.WriteUvarint(m.Parent)
		e.WriteUvarint(m.Before)
	case OpSetAttr:
		e.WriteString(m.Name)
		e.WriteString(m.Value)
	case OpRemoveAttr:
		e.WriteString(m.Name)
	case OpSetText:
		e.WriteString(m.Value)
	}
}

func (e *Encoder) writeHeader(ft FrameType, flags FrameFlags, length int) {
	n := uint32(length)
	e.buf = append(e.buf, byte(ft), byte(flags),
		byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
}

// mutationSize is the number of bytes WriteMutation appends for m.
func mutationSize(m *Mutation) int {
	n := 1 + UvarintLen(m.ID)
	switch m.Op {
	case OpCreate:
		n++
		if m.NodeType == NodeElement {
			n += stringSize(m.Tag) + stringSize(m.Namespace)
		}
	case OpInsert:
		n += UvarintLen(m.Parent) + UvarintLen(m.Before)
	case OpSetAttr:
		n += stringSize(m.Name) + stringSize(m.Value)
	case OpRemoveAttr:
		n += stringSize(m.Name)
	case OpSetText:
		n += stringSize(m.Value)
	}
	return n
}

func stringSize(s string) int {
	return UvarintLen(uint64(len(s))) + len(s)
}
