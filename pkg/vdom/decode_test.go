package vdom

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/redscorpix/npf-sub003/internal/errors"
)

func TestDecode(t *testing.T) {
	input := `{
		"tag": "ul",
		"props": {"class": "fruits"},
		"children": [
			{"tag": "li", "key": "a", "children": ["Apple"]},
			{"tag": "li", "key": "b", "statics": {"role": "option"}, "children": [{"text": "Banana"}]},
			{"tag": "div", "skip": true}
		]
	}`

	got, err := Decode([]byte(input))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	want := &VNode{
		Kind:  KindElement,
		Tag:   "ul",
		Props: Props{"class": "fruits"},
		Children: []*VNode{
			{Kind: KindElement, Tag: "li", Key: "a", Children: []*VNode{Text("Apple")}},
			{Kind: KindElement, Tag: "li", Key: "b", Statics: Props{"role": "option"}, Children: []*VNode{Text("Banana")}},
			{Kind: KindElement, Tag: "div", Skip: true},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Decode mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeTopLevelArray(t *testing.T) {
	got, err := Decode([]byte(` ["a", {"tag": "br"}] `))
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != KindFragment || len(got.Children) != 2 {
		t.Fatalf("got %+v, want a fragment with 2 children", got)
	}
	if got.Children[1].Tag != "br" {
		t.Errorf("second child = %+v", got.Children[1])
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", `{`},
		{"empty object", `{}`},
		{"element with text", `{"tag": "p", "text": "x"}`},
		{"text with children", `{"text": "x", "children": ["y"]}`},
		{"bad child", `{"tag": "ul", "children": [42]}`},
		{"bad array item", `[{}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.input))
			if err == nil {
				t.Fatal("Decode should fail")
			}
			if code := errors.CodeOf(err); code != "E063" {
				t.Errorf("code = %q, want E063", code)
			}
		})
	}
}

func TestDecodeDepthLimit(t *testing.T) {
	input := `{"tag":"div"}`
	for i := 0; i <= MaxDepth; i++ {
		input = `{"tag":"div","children":[` + input + `]}`
	}
	if _, err := Decode([]byte(input)); err == nil {
		t.Error("Decode should reject descriptions nested deeper than MaxDepth")
	}
}

func TestEncodeDecode(t *testing.T) {
	tree := Fragment(
		Ul(Class("x"), Static("role", "list"),
			Li(Key("a"), "Apple"),
			Li(Key("b"), Skip()),
		),
		"tail",
	)

	data, err := Encode(tree)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode(%s): %v", data, err)
	}
	if diff := cmp.Diff(tree, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
