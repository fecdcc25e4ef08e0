package incdom

import "golang.org/x/net/html"

// MutationKind is the type of DOM change reported to observers.
type MutationKind uint8

const (
	MutationCreate     MutationKind = iota + 1 // Node created, not yet attached
	MutationInsert                             // Node inserted or moved under Parent, before Before
	MutationDetach                             // Keyed node taken out of the child list; may be reinserted
	MutationRemove                             // Node deleted along with its subtree
	MutationSetAttr                            // Attribute Name set to Value
	MutationRemoveAttr                         // Attribute Name removed
	MutationSetText                            // Text node content set to Value
)

// MutationKinds returns every MutationKind in declaration order.
func MutationKinds() []MutationKind {
	return []MutationKind{
		MutationCreate, MutationInsert, MutationDetach, MutationRemove,
		MutationSetAttr, MutationRemoveAttr, MutationSetText,
	}
}

// String returns the string representation of the MutationKind.
func (k MutationKind) String() string {
	switch k {
	case MutationCreate:
		return "Create"
	case MutationInsert:
		return "Insert"
	case MutationDetach:
		return "Detach"
	case MutationRemove:
		return "Remove"
	case MutationSetAttr:
		return "SetAttr"
	case MutationRemoveAttr:
		return "RemoveAttr"
	case MutationSetText:
		return "SetText"
	default:
		return "Unknown"
	}
}

// Mutation describes a single DOM change made by the walker.
type Mutation struct {
	Kind   MutationKind
	Node   *html.Node // Target node
	Parent *html.Node // For Insert
	Before *html.Node // For Insert; nil appends
	Name   string     // Attribute name
	Value  string     // Attribute value or text
}

// Observer receives every mutation made by a Patcher, in order.
type Observer interface {
	Observe(m Mutation)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(m Mutation)

// Observe implements Observer.
func (f ObserverFunc) Observe(m Mutation) {
	f(m)
}

// MutationCounter counts mutations by kind.
type MutationCounter struct {
	counts map[MutationKind]int
}

// NewMutationCounter creates an empty counter.
func NewMutationCounter() *MutationCounter {
	return &MutationCounter{counts: make(map[MutationKind]int)}
}

// Observe implements Observer.
func (c *MutationCounter) Observe(m Mutation) {
	c.counts[m.Kind]++
}

// Count returns the number of mutations of the given kind.
func (c *MutationCounter) Count(kind MutationKind) int {
	return c.counts[kind]
}

// Total returns the number of mutations observed.
func (c *MutationCounter) Total() int {
	n := 0
	for _, v := range c.counts {
		n += v
	}
	return n
}

// Reset clears all counts.
func (c *MutationCounter) Reset() {
	c.counts = make(map[MutationKind]int)
}
