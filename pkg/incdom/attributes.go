package incdom

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/redscorpix/npf-sub003/pkg/dom"
)

// AttrMutator writes one attribute value to an element. A nil or false value
// means the attribute must be removed.
type AttrMutator func(el *html.Node, name string, value any)

// ApplyAttr is the default mutator: nil and false remove the attribute, true
// sets it empty, anything else is formatted as a string.
func ApplyAttr(el *html.Node, name string, value any) {
	if isAbsent(value) {
		dom.RemoveAttr(el, name)
		return
	}
	dom.SetAttr(el, name, attrString(value))
}

// ApplyStyle accepts a style string or a map of properties, which is written
// in sorted property order.
func ApplyStyle(el *html.Node, name string, value any) {
	var pairs []string
	switch v := value.(type) {
	case map[string]string:
		for k, val := range v {
			pairs = append(pairs, k+": "+val+";")
		}
	case map[string]any:
		for k, val := range v {
			pairs = append(pairs, k+": "+attrString(val)+";")
		}
	default:
		ApplyAttr(el, name, value)
		return
	}
	if len(pairs) == 0 {
		dom.RemoveAttr(el, name)
		return
	}
	sort.Strings(pairs)
	dom.SetAttr(el, name, strings.Join(pairs, " "))
}

// defaultMutators are installed on every Patcher.
func defaultMutators() map[string]AttrMutator {
	return map[string]AttrMutator{
		"style": ApplyStyle,
	}
}

func (p *Patcher) mutatorFor(name string) AttrMutator {
	if m, ok := p.mutators[name]; ok {
		return m
	}
	return ApplyAttr
}

// updateAttribute applies value when it differs from the last applied value
// and reports the resulting DOM change.
func (p *Patcher) updateAttribute(el *html.Node, data *NodeData, name string, value any) {
	old, had := data.Attrs[name]
	if had && valuesEqual(old, value) {
		return
	}
	if !had && isAbsent(value) {
		return
	}
	if isAbsent(value) {
		delete(data.Attrs, name)
	} else {
		data.Attrs[name] = value
	}

	before, wasSet := dom.GetAttr(el, name)
	p.mutatorFor(name)(el, name, value)
	after, isSet := dom.GetAttr(el, name)

	switch {
	case isSet && (!wasSet || before != after):
		p.notify(Mutation{Kind: MutationSetAttr, Node: el, Name: name, Value: after})
	case !isSet && wasSet:
		p.notify(Mutation{Kind: MutationRemoveAttr, Node: el, Name: name})
	}
}

// diffAttrs reconciles the described name/value pairs with the element.
// Pairs described in the same order as last time are compared in place; any
// change in names or count falls back to a full comparison that also removes
// attributes which are no longer described.
func (p *Patcher) diffAttrs(el *html.Node, data *NodeData, attrs []any) {
	if len(attrs)%2 != 0 {
		attrs = append(attrs, nil)
	}

	arr := data.AttrsArr
	if len(arr) == len(attrs) && !data.fullDiff() {
		i := 0
		for ; i < len(attrs); i += 2 {
			name := attrName(attrs[i])
			if arr[i] != name {
				break
			}
			value := attrs[i+1]
			if !valuesEqual(arr[i+1], value) {
				arr[i+1] = value
				p.updateAttribute(el, data, name, value)
			}
		}
		if i == len(attrs) {
			return
		}
	}

	data.AttrsArr = data.AttrsArr[:0]
	for k := range data.NewAttrs {
		delete(data.NewAttrs, k)
	}
	for i := 0; i < len(attrs); i += 2 {
		name := attrName(attrs[i])
		data.AttrsArr = append(data.AttrsArr, name, attrs[i+1])
		data.NewAttrs[name] = attrs[i+1]
	}

	for i := 0; i < len(data.AttrsArr); i += 2 {
		name := data.AttrsArr[i].(string)
		p.updateAttribute(el, data, name, data.NewAttrs[name])
	}

	var removed []string
	for name := range data.Attrs {
		if _, ok := data.NewAttrs[name]; ok {
			continue
		}
		if _, static := data.Statics[name]; static {
			continue
		}
		removed = append(removed, name)
	}
	sort.Strings(removed)
	for _, name := range removed {
		p.updateAttribute(el, data, name, nil)
	}
	data.adopted = false
}

func (d *NodeData) fullDiff() bool {
	return d.adopted
}

func attrName(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func isAbsent(v any) bool {
	if v == nil {
		return true
	}
	if b, ok := v.(bool); ok {
		return !b
	}
	return false
}

// valuesEqual compares two attribute values for equality.
func valuesEqual(a, b any) bool {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	}
	return reflect.DeepEqual(a, b)
}

// attrString converts a value to its attribute string form.
func attrString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return ""
		}
		return "false"
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
