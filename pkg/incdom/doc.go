// Package incdom patches a live *html.Node tree in place from a sequence of
// open/attr/text/close calls, reusing existing nodes instead of rebuilding them.
//
// # Walking
//
// A Patcher walks the children of a root node while the caller describes the
// desired tree:
//
//	p := incdom.New()
//	err := p.PatchInner(container, func(p *incdom.Patcher) {
//	    p.ElementOpen("ul", "", nil)
//	    p.ElementOpen("li", "a", nil, "class", "fruit")
//	    p.Text("Apple")
//	    p.ElementClose("li")
//	    p.ElementClose("ul")
//	})
//
// Existing nodes are matched by position first. A described node that carries a
// key is looked up in its parent's key map, so keyed children keep their
// identity when they are reordered.
//
// # Node data
//
// Every node the walker visits has a NodeData record in the Patcher's Store.
// Nodes that were not created by the walker (parsed markup, for instance) are
// adopted on first visit: their tag, key attribute and attributes are imported.
//
// # Protocol errors
//
// Misuse of the call sequence (unclosed tags, attributes outside ElementOpenStart
// and ElementOpenEnd, mismatched close tags, reusing a key for another tag) is
// reported as an error carrying a registered code. The first error aborts the
// walk: later calls become no-ops and PatchInner returns the error.
//
// # Mutations
//
// Every DOM change is reported to the registered Observers as a Mutation.
// Patching twice with the same description produces no mutations the second time.
package incdom
