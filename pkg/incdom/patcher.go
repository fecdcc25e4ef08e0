package incdom

import (
	"log/slog"
	"sort"
	"strconv"

	"golang.org/x/net/html"

	"github.com/redscorpix/npf-sub003/pkg/dom"
)

// walkState is the cursor of one running patch.
type walkState struct {
	root          *html.Node
	currentNode   *html.Node // Last visited child of currentParent; nil before the first
	currentParent *html.Node // Element whose children are being walked
	phase         phase
	depth         int
	err           error

	// Arguments collected between ElementOpenStart and ElementOpenEnd.
	pendingTag     string
	pendingKey     string
	pendingStatics []any
	pendingAttrs   []any

	// PatchOuter walks the patched node's position, not its children.
	outer      bool
	outerStart *html.Node
	topLevel   int
}

// Patcher reconciles a live DOM tree with a described one.
// A Patcher is not safe for concurrent use.
type Patcher struct {
	store     *Store
	logger    *slog.Logger
	observers []Observer
	mutators  map[string]AttrMutator
	assert    assertions

	walk    *walkState
	lastErr error
}

// New creates a Patcher with its own NodeData store.
func New(opts ...Option) *Patcher {
	p := &Patcher{
		store:    NewStore(),
		logger:   slog.Default().With("component", "incdom"),
		mutators: defaultMutators(),
		assert:   assertions{enabled: true},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Store returns the NodeData store.
func (p *Patcher) Store() *Store {
	return p.store
}

// Err returns the error recorded by the running patch, or the error of the
// last call made outside any patch.
func (p *Patcher) Err() error {
	if p.walk != nil {
		return p.walk.err
	}
	return p.lastErr
}

func (p *Patcher) notify(m Mutation) {
	for _, o := range p.observers {
		o.Observe(m)
	}
}

type check func(a assertions, ph phase, call string) error

// guard runs the protocol checks for call and reports whether the walk may
// proceed with it.
func (p *Patcher) guard(call string, checks ...check) bool {
	w := p.walk
	if w == nil {
		if err := p.assert.inPatch(phaseIdle, call); err != nil {
			p.lastErr = err
		}
		return false
	}
	if w.err != nil {
		return false
	}
	for _, c := range checks {
		if err := c(p.assert, w.phase, call); err != nil {
			p.fail(err)
			return false
		}
	}
	return true
}

func (p *Patcher) fail(err error) {
	if p.walk.err == nil {
		p.walk.err = err
		p.logger.Debug("patch aborted", "code", ErrorCode(err), "error", err)
	}
}

// PatchInner walks the children of root while fn describes them.
func (p *Patcher) PatchInner(root *html.Node, fn func(p *Patcher)) error {
	if root == nil || (root.Type != html.ElementNode && root.Type != html.DocumentNode) {
		return invalidRoot("PatchInner needs an element or document root")
	}

	w := &walkState{root: root, currentParent: root, phase: phaseWalking}
	prev := p.walk
	p.walk = w
	defer func() { p.walk = prev }()

	fn(p)

	if w.err != nil {
		return w.err
	}
	if err := p.finish(root); err != nil {
		return err
	}
	p.clearUnvisitedDOM()
	return nil
}

// PatchOuter patches node itself: fn must describe exactly one top-level
// node. When the described node does not match, node is replaced. The node
// now occupying node's position is returned; nil if fn described nothing, in
// which case node is removed.
func (p *Patcher) PatchOuter(node *html.Node, fn func(p *Patcher)) (*html.Node, error) {
	if node == nil || node.Type != html.ElementNode {
		return nil, invalidRoot("PatchOuter needs an element")
	}

	parent := node.Parent
	w := &walkState{
		root:          parent,
		currentParent: parent,
		phase:         phaseWalking,
		outer:         true,
		outerStart:    node,
	}
	prev := p.walk
	p.walk = w
	defer func() { p.walk = prev }()

	fn(p)

	if w.err != nil {
		return nil, w.err
	}
	if err := p.finish(parent); err != nil {
		return nil, err
	}

	result := w.currentNode
	if parent != nil {
		data := p.store.GetData(parent)
		if result != node && node.Parent == parent {
			p.removeChild(parent, data, node)
		}
		p.pruneKeyMap(parent, data)
	}
	return result, nil
}

// finish checks that the walk is back at root, closing what is left open
// when assertions are off.
func (p *Patcher) finish(root *html.Node) error {
	w := p.walk
	if err := p.assert.attributesClosed(w.phase, w.pendingTag); err != nil {
		return err
	}
	if err := p.assert.noUnclosedTags(w.currentParent, root); err != nil {
		p.logger.Debug("patch aborted", "code", ErrorCode(err), "error", err)
		return err
	}
	for w.depth > 0 {
		p.exitNode()
	}
	return nil
}

// ElementOpen declares an element with optional key, static attributes
// (applied once, at creation) and dynamic name/value attribute pairs.
// It returns the element, or nil once the walk has failed.
func (p *Patcher) ElementOpen(tag, key string, statics []any, attrs ...any) *html.Node {
	if !p.guard("ElementOpen", assertions.notInAttributes, assertions.notInSkip) {
		return nil
	}
	return p.elementOpen(tag, key, statics, attrs)
}

func (p *Patcher) elementOpen(tag, key string, statics []any, attrs []any) *html.Node {
	node := p.coreElementOpen(tag, key, statics)
	if node == nil {
		return nil
	}
	data := p.store.GetData(node)
	p.applyStatics(node, data, statics)
	p.diffAttrs(node, data, attrs)
	return node
}

// ElementOpenStart begins an element whose attributes follow as Attr calls.
func (p *Patcher) ElementOpenStart(tag, key string, statics []any) {
	if !p.guard("ElementOpenStart", assertions.notInAttributes, assertions.notInSkip) {
		return
	}
	w := p.walk
	w.pendingTag = tag
	w.pendingKey = key
	w.pendingStatics = statics
	w.pendingAttrs = w.pendingAttrs[:0]
	w.phase = phaseAttributes
}

// Attr declares one attribute of the element started by ElementOpenStart.
func (p *Patcher) Attr(name string, value any) {
	if !p.guard("Attr", assertions.inAttributes) {
		return
	}
	p.walk.pendingAttrs = append(p.walk.pendingAttrs, name, value)
}

// ElementOpenEnd completes the element started by ElementOpenStart.
func (p *Patcher) ElementOpenEnd() *html.Node {
	if !p.guard("ElementOpenEnd", assertions.inAttributes) {
		return nil
	}
	w := p.walk
	if w.phase != phaseAttributes {
		return nil
	}
	w.phase = phaseWalking
	attrs := append([]any(nil), w.pendingAttrs...)
	return p.elementOpen(w.pendingTag, w.pendingKey, w.pendingStatics, attrs)
}

// ElementClose closes the open element, removing children that were not
// described. It returns the closed element.
func (p *Patcher) ElementClose(tag string) *html.Node {
	if !p.guard("ElementClose", assertions.notInAttributes) {
		return nil
	}
	w := p.walk
	if w.depth == 0 {
		if err := p.assert.closeWithoutOpen(tag); err != nil {
			p.fail(err)
		}
		return nil
	}
	if err := p.assert.closeMatchesOpen(p.store.GetData(w.currentParent).NodeName, tag); err != nil {
		p.fail(err)
		return nil
	}
	w.phase = phaseWalking
	p.exitNode()
	return w.currentNode
}

// ElementVoid declares an element with no children.
func (p *Patcher) ElementVoid(tag, key string, statics []any, attrs ...any) *html.Node {
	if p.ElementOpen(tag, key, statics, attrs...) == nil {
		return nil
	}
	return p.ElementClose(tag)
}

// Text declares a text node. Formatters are applied in order to the string
// form of value when it changed since the last patch.
func (p *Patcher) Text(value any, formatters ...func(string) string) *html.Node {
	if !p.guard("Text", assertions.notInAttributes, assertions.notInSkip) {
		return nil
	}
	node := p.coreText()
	if node == nil {
		return nil
	}

	data := p.store.GetData(node)
	s := textString(value)
	if data.Text != s {
		data.Text = s
		formatted := s
		for _, f := range formatters {
			formatted = f(formatted)
		}
		if node.Data != formatted {
			node.Data = formatted
			p.notify(Mutation{Kind: MutationSetText, Node: node, Value: formatted})
		}
	}
	return node
}

// Skip leaves the remaining children of the open element untouched. It must
// come before any child is declared, and only ElementClose may follow it.
func (p *Patcher) Skip() {
	if !p.guard("Skip", assertions.notInAttributes, assertions.notInSkip) {
		return
	}
	w := p.walk
	if w.outer && w.depth == 0 {
		p.fail(invalidRoot("Skip needs an open element in PatchOuter"))
		return
	}
	if err := p.assert.noChildrenDeclared(w.currentNode); err != nil {
		p.fail(err)
		return
	}
	w.currentNode = w.currentParent.LastChild
	w.phase = phaseSkip
}

// SkipNode moves past the next existing node, keeping it as it is.
func (p *Patcher) SkipNode() {
	if !p.guard("SkipNode", assertions.notInAttributes, assertions.notInSkip) {
		return
	}
	p.nextNode()
	p.countTopLevel()
}

// CurrentElement returns the element whose children are being walked.
func (p *Patcher) CurrentElement() *html.Node {
	if !p.guard("CurrentElement", assertions.notInAttributes) {
		return nil
	}
	return p.walk.currentParent
}

// CurrentPointer returns the node the next declaration will be matched
// against, or nil.
func (p *Patcher) CurrentPointer() *html.Node {
	if !p.guard("CurrentPointer", assertions.notInAttributes) {
		return nil
	}
	w := p.walk
	switch {
	case w.outerStart != nil:
		return w.outerStart
	case w.currentNode != nil:
		return w.currentNode.NextSibling
	case w.currentParent != nil:
		return w.currentParent.FirstChild
	}
	return nil
}

func (p *Patcher) coreElementOpen(tag, key string, statics []any) *html.Node {
	p.nextNode()
	if !p.countTopLevel() || !p.alignWithDOM(tag, key, statics) {
		return nil
	}
	p.enterNode()
	return p.walk.currentParent
}

func (p *Patcher) coreText() *html.Node {
	p.nextNode()
	if !p.countTopLevel() || !p.alignWithDOM(dom.TextNodeName, "", nil) {
		return nil
	}
	return p.walk.currentNode
}

// countTopLevel enforces the single top-level node of PatchOuter.
func (p *Patcher) countTopLevel() bool {
	w := p.walk
	if !w.outer || w.depth != 0 {
		return true
	}
	w.topLevel++
	if w.topLevel > 1 {
		p.fail(outerExtraNodes(w.topLevel))
		return false
	}
	return true
}

func (p *Patcher) nextNode() {
	w := p.walk
	switch {
	case w.outerStart != nil:
		w.currentNode = w.outerStart
		w.outerStart = nil
	case w.currentNode != nil:
		w.currentNode = w.currentNode.NextSibling
	case w.currentParent != nil:
		w.currentNode = w.currentParent.FirstChild
	}
}

func (p *Patcher) enterNode() {
	w := p.walk
	w.currentParent = w.currentNode
	w.currentNode = nil
	w.depth++
}

func (p *Patcher) exitNode() {
	p.clearUnvisitedDOM()
	w := p.walk
	w.currentNode = w.currentParent
	w.currentParent = w.currentParent.Parent
	w.depth--
}

func (p *Patcher) matches(node *html.Node, nodeName, key string) bool {
	data := p.store.GetData(node)
	return data.NodeName == nodeName && data.Key == key
}

// alignWithDOM makes the cursor point at a node matching nodeName and key:
// the current node if it matches, else the keyed child found in the parent's
// key map, else a new node. A keyed node in the way is taken out of the child
// list but stays in the key map for a later match in the same walk.
func (p *Patcher) alignWithDOM(nodeName, key string, statics []any) bool {
	w := p.walk
	cur := w.currentNode
	if cur != nil && p.matches(cur, nodeName, key) {
		return true
	}

	parent := w.currentParent
	if parent == nil {
		p.fail(invalidRoot("PatchOuter cannot replace a node without a parent"))
		return false
	}

	node := p.GetChild(parent, key)
	if node != nil {
		if err := keyedTagMatches(p.store.GetData(node).NodeName, nodeName, key); err != nil {
			p.fail(err)
			return false
		}
	} else {
		if nodeName == dom.TextNodeName {
			node = p.CreateText()
		} else {
			node = p.CreateElement(parent, nodeName, key, statics)
		}
		if key != "" {
			p.RegisterChild(parent, key, node)
		}
	}

	dom.InsertBefore(parent, node, cur)
	p.notify(Mutation{Kind: MutationInsert, Node: node, Parent: parent, Before: cur})

	if cur != nil && p.store.GetData(cur).Key != "" {
		p.RegisterChild(parent, p.store.GetData(cur).Key, cur)
		parent.RemoveChild(cur)
		p.notify(Mutation{Kind: MutationDetach, Node: cur})
		p.store.GetData(parent).KeyMapValid = false
	}

	w.currentNode = node
	return true
}

// clearUnvisitedDOM removes the children of the current parent that follow
// the cursor, then drops displaced keyed children that were never reinserted.
func (p *Patcher) clearUnvisitedDOM() {
	w := p.walk
	node := w.currentParent
	data := p.store.GetData(node)
	for child := node.LastChild; child != nil && child != w.currentNode; child = node.LastChild {
		p.removeChild(node, data, child)
	}
	p.pruneKeyMap(node, data)
}

func (p *Patcher) removeChild(parent *html.Node, data *NodeData, child *html.Node) {
	parent.RemoveChild(child)
	p.notify(Mutation{Kind: MutationRemove, Node: child, Parent: parent})
	if cd, ok := p.store.Lookup(child); ok && cd.Key != "" && data.KeyMap[cd.Key] == child {
		delete(data.KeyMap, cd.Key)
	}
	p.store.Forget(child)
}

// pruneKeyMap brings an invalidated key map back in line with the live
// child list.
func (p *Patcher) pruneKeyMap(node *html.Node, data *NodeData) {
	if data.KeyMapValid {
		return
	}
	var stale []string
	for key, c := range data.KeyMap {
		if c.Parent != node {
			stale = append(stale, key)
		}
	}
	sort.Strings(stale)
	for _, key := range stale {
		c := data.KeyMap[key]
		delete(data.KeyMap, key)
		p.notify(Mutation{Kind: MutationRemove, Node: c})
		p.store.Forget(c)
	}
	data.KeyMapValid = true
}

// textString converts a text value to its string form.
func textString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(val)
	default:
		return attrString(v)
	}
}
