package incdom

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/redscorpix/npf-sub003/internal/errors"
)

// Error codes reported by the walker.
const (
	CodeUnclosedTags     = "E001"
	CodeCloseMismatch    = "E002"
	CodeNotInAttributes  = "E003"
	CodeInAttributes     = "E004"
	CodeKeyedTagMismatch = "E005"
	CodeInSkip           = "E006"
	CodeNotInPatch       = "E007"
	CodeSkipAfterChild   = "E008"
	CodeOuterExtraNodes  = "E009"
	CodeInvalidRoot      = "E010"
)

// ErrorCode returns the registered code carried by err, or "" for other errors.
func ErrorCode(err error) string {
	return errors.CodeOf(err)
}

// phase is the walker's position in the call protocol.
type phase uint8

const (
	phaseIdle       phase = iota // No patch running
	phaseWalking                 // Between elements
	phaseAttributes              // Between ElementOpenStart and ElementOpenEnd
	phaseSkip                    // After Skip, until the matching ElementClose
)

// String returns the string representation of the phase.
func (ph phase) String() string {
	switch ph {
	case phaseIdle:
		return "idle"
	case phaseWalking:
		return "walking"
	case phaseAttributes:
		return "attributes"
	case phaseSkip:
		return "skip"
	default:
		return "unknown"
	}
}

// assertions checks calls against the open/attr/close protocol. Every check is
// a no-op when disabled.
type assertions struct {
	enabled bool
}

func (a assertions) inPatch(ph phase, call string) error {
	if !a.enabled || ph != phaseIdle {
		return nil
	}
	return errors.New(CodeNotInPatch).
		WithDetailf("%s called outside of a patch", call).
		WithSuggestion("Call walker operations from the function passed to PatchInner or PatchOuter")
}

func (a assertions) notInAttributes(ph phase, call string) error {
	if !a.enabled || ph != phaseAttributes {
		return nil
	}
	return errors.New(CodeInAttributes).
		WithDetailf("%s called between ElementOpenStart and ElementOpenEnd", call).
		WithSuggestion("Finish the element with ElementOpenEnd first")
}

func (a assertions) inAttributes(ph phase, call string) error {
	if !a.enabled || ph == phaseAttributes {
		return nil
	}
	return errors.New(CodeNotInAttributes).
		WithDetailf("%s called outside ElementOpenStart/ElementOpenEnd", call).
		WithSuggestion("Start the element with ElementOpenStart, or pass attributes to ElementOpen")
}

func (a assertions) notInSkip(ph phase, call string) error {
	if !a.enabled || ph != phaseSkip {
		return nil
	}
	return errors.New(CodeInSkip).
		WithDetailf("%s called after Skip", call).
		WithSuggestion("Only ElementClose may follow Skip")
}

func (a assertions) noChildrenDeclared(current *html.Node) error {
	if !a.enabled || current == nil {
		return nil
	}
	return errors.New(CodeSkipAfterChild).
		WithDetailf("a <%s> child was already declared", nodeLabel(current))
}

func (a assertions) closeMatchesOpen(openName, closeName string) error {
	if !a.enabled || openName == closeName {
		return nil
	}
	return errors.New(CodeCloseMismatch).
		WithDetailf("received </%s> but <%s> is open", closeName, openName)
}

// keyedTagMatches is enforced even with assertions disabled: reusing the
// node would silently change the element type behind a stable key.
func keyedTagMatches(nodeName, tag, key string) error {
	if nodeName == tag {
		return nil
	}
	return errors.New(CodeKeyedTagMismatch).
		WithDetailf("key %q was used for <%s> and is now described as <%s>", key, nodeName, tag).
		WithSuggestion("Give elements of different types different keys")
}

// noUnclosedTags reports the tags still open between openElement and root,
// innermost first.
func (a assertions) noUnclosedTags(openElement, root *html.Node) error {
	if !a.enabled || openElement == root {
		return nil
	}
	var open []string
	for n := openElement; n != nil && n != root; n = n.Parent {
		open = append(open, strings.ToLower(nodeLabel(n)))
	}
	return errors.New(CodeUnclosedTags).
		WithDetailf("one or more tags were not closed: %s", strings.Join(open, ", ")).
		WithSuggestion("Close every element you open before the patch function returns")
}

func (a assertions) attributesClosed(ph phase, tag string) error {
	if !a.enabled || ph != phaseAttributes {
		return nil
	}
	return errors.New(CodeUnclosedTags).
		WithDetailf("ElementOpenStart(%q) was never followed by ElementOpenEnd", tag)
}

func outerExtraNodes(count int) error {
	return errors.New(CodeOuterExtraNodes).
		WithDetailf("%d top-level nodes were described", count)
}

func invalidRoot(reason string) error {
	return errors.New(CodeInvalidRoot).WithDetail(reason)
}

func nodeLabel(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return "#text"
	}
	return n.Data
}

func (a assertions) closeWithoutOpen(tag string) error {
	if !a.enabled {
		return nil
	}
	return errors.New(CodeCloseMismatch).
		WithDetailf("received </%s> but no element is open", tag)
}
