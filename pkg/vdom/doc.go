// Package vdom describes trees declaratively and renders them through an
// incdom.Patcher.
//
// # Core Types
//
// VNode is an element, a text node or a fragment. Props holds the dynamic
// attributes of an element and Statics the attributes applied only when the
// element is created.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Ul(Class("fruits"),
//	    Li(Key("a"), Text("Apple")),
//	    Li(Key("b"), Text("Banana")),
//	)
//
// # Rendering
//
// Render emits the open/attribute/text/close calls for a tree in document
// order. Props are passed in sorted name order so that two renders of the
// same tree take the positional attribute fast path.
//
// # Decoding
//
// Decode reads the JSON form used by the CLI and the live server:
//
//	{"tag": "ul", "children": [{"tag": "li", "key": "a", "children": ["Apple"]}]}
package vdom
