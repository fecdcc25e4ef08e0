package vdom

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCreateElementArguments(t *testing.T) {
	child := Span("inner")
	node := Div(
		nil,
		ID("main"),
		[]Attr{Class("a", "b"), {}},
		Static("role", "list"),
		Key(7),
		child,
		[]*VNode{P(), nil},
		"tail",
	)

	if node.Kind != KindElement || node.Tag != "div" {
		t.Fatalf("Kind = %v, Tag = %v", node.Kind, node.Tag)
	}
	if node.Key != "7" {
		t.Errorf("Key = %q, want 7", node.Key)
	}
	if diff := cmp.Diff(Props{"id": "main", "class": "a b"}, node.Props); diff != "" {
		t.Errorf("Props mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Props{"role": "list"}, node.Statics); diff != "" {
		t.Errorf("Statics mismatch (-want +got):\n%s", diff)
	}
	if len(node.Children) != 3 {
		t.Fatalf("Children len = %v, want 3", len(node.Children))
	}
	if node.Children[0] != child {
		t.Error("first child should be the span")
	}
	if node.Children[2].Kind != KindText || node.Children[2].Text != "tail" {
		t.Errorf("string argument should become a text child, got %+v", node.Children[2])
	}
}

func TestSkipArgument(t *testing.T) {
	node := Div(Skip())
	if !node.Skip {
		t.Error("Skip() should mark the element")
	}
	if Div().Skip {
		t.Error("elements are not skipped by default")
	}
}

func TestElementTags(t *testing.T) {
	tests := []struct {
		node *VNode
		want string
	}{
		{Ul(), "ul"},
		{Li(), "li"},
		{Svg(), "svg"},
		{ForeignObject(), "foreignObject"},
		{Math(), "math"},
		{Element("custom-tag"), "custom-tag"},
	}
	for _, tt := range tests {
		if tt.node.Tag != tt.want {
			t.Errorf("Tag = %v, want %v", tt.node.Tag, tt.want)
		}
	}
}

func TestIsVoidElement(t *testing.T) {
	for _, tag := range []string{"br", "img", "input", "hr"} {
		if !IsVoidElement(tag) {
			t.Errorf("IsVoidElement(%q) = false, want true", tag)
		}
	}
	for _, tag := range []string{"div", "li", "svg"} {
		if IsVoidElement(tag) {
			t.Errorf("IsVoidElement(%q) = true, want false", tag)
		}
	}
}

func TestRange(t *testing.T) {
	items := Range([]string{"a", "b", "c"}, func(s string, i int) *VNode {
		if i == 1 {
			return nil
		}
		return Li(Key(s), s)
	})
	if len(items) != 2 || items[1].Key != "c" {
		t.Errorf("Range = %+v", items)
	}
}

func TestFragment(t *testing.T) {
	node := Fragment(Div(), nil, "text", []*VNode{Span(), P()})
	if node.Kind != KindFragment {
		t.Errorf("Kind = %v, want KindFragment", node.Kind)
	}
	if len(node.Children) != 4 {
		t.Errorf("Children len = %v, want 4", len(node.Children))
	}
}
