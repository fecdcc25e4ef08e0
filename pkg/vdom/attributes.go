package vdom

import "strings"

// attr creates an Attr with the given key and value.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// Static creates an attribute that is applied only when the element is created.
func Static(key string, value any) StaticAttr {
	return StaticAttr{Key: key, Value: value}
}

// Skip leaves the children of the element as they are in the DOM.
func Skip() SkipMarker {
	return SkipMarker{}
}

// Prop creates an attribute with an arbitrary name.
func Prop(key string, value any) Attr { return attr(key, value) }

// Identity attributes

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return attr("class", strings.Join(classes, " ")) }

// Style sets the style attribute from a property map. Properties are written
// in sorted order.
func Style(props map[string]string) Attr { return attr("style", props) }

// StyleAttr sets the style attribute from a literal string.
func StyleAttr(style string) Attr { return attr("style", style) }

// Data creates a data-* attribute.
// Example: Data("id", "123") → data-id="123"
func Data(key, value string) Attr { return attr("data-"+key, value) }

// Accessibility attributes

// Role sets the role attribute.
func Role(role string) Attr { return attr("role", role) }

// AriaLabel sets the aria-label attribute.
func AriaLabel(label string) Attr { return attr("aria-label", label) }

// AriaHidden sets the aria-hidden attribute.
func AriaHidden(hidden bool) Attr { return attr("aria-hidden", boolString(hidden)) }

// TabIndex sets the tabindex attribute.
func TabIndex(index int) Attr { return attr("tabindex", index) }

// Visibility and behavior attributes

// Hidden sets the hidden attribute.
func Hidden() Attr { return attr("hidden", true) }

// TitleAttr sets the title attribute (named to avoid conflict with Title element).
func TitleAttr(title string) Attr { return attr("title", title) }

// Link and media attributes

// Href sets the href attribute.
func Href(url string) Attr { return attr("href", url) }

// Src sets the src attribute.
func Src(url string) Attr { return attr("src", url) }

// Alt sets the alt attribute.
func Alt(text string) Attr { return attr("alt", text) }

// Form attributes

// Type sets the type attribute.
func Type(t string) Attr { return attr("type", t) }

// Name sets the name attribute.
func Name(name string) Attr { return attr("name", name) }

// Value sets the value attribute.
func Value(value string) Attr { return attr("value", value) }

// Placeholder sets the placeholder attribute.
func Placeholder(text string) Attr { return attr("placeholder", text) }

// Disabled sets the disabled attribute when true and removes it when false.
func Disabled(disabled bool) Attr { return attr("disabled", disabled) }

// Checked sets the checked attribute when true and removes it when false.
func Checked(checked bool) Attr { return attr("checked", checked) }

// SVG attributes

// ViewBox sets the viewBox attribute.
func ViewBox(box string) Attr { return attr("viewBox", box) }

// Fill sets the fill attribute.
func Fill(color string) Attr { return attr("fill", color) }

// D sets the path data attribute.
func D(path string) Attr { return attr("d", path) }

// XlinkHref sets the xlink:href attribute.
func XlinkHref(url string) Attr { return attr("xlink:href", url) }

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
