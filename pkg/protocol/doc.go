// Package protocol implements the binary wire format used to stream DOM
// mutations to a remote mirror.
//
// # Encoding
//
// Integers are varints (protobuf style, ZigZag for signed values). Strings
// are a varint length followed by UTF-8 bytes.
//
// # Frames
//
// Every message is wrapped in a Frame:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (4 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// A FrameMutations payload is a MutationsFrame: a sequence number followed
// by a count and the mutations themselves.
//
// # Node Identity
//
// A Recorder observes an incdom.Patcher and assigns every node an ID; the
// patch root is always RootID. A Mirror applies frames to its own tree and
// keeps the same ID table, so both trees stay structurally identical.
package protocol
