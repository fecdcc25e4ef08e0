package incdom

import (
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/redscorpix/npf-sub003/pkg/dom"
)

func innerHTML(t *testing.T, n *html.Node) string {
	t.Helper()
	s, err := dom.InnerHTML(n)
	if err != nil {
		t.Fatalf("InnerHTML: %v", err)
	}
	return s
}

// renderList describes <ul> with one <li> per key, each containing its key
// upper-cased as text.
func renderList(keys ...string) func(p *Patcher) {
	return func(p *Patcher) {
		p.ElementOpen("ul", "", nil)
		for _, k := range keys {
			p.ElementOpen("li", k, nil, "class", "item")
			p.Text(strings.ToUpper(k))
			p.ElementClose("li")
		}
		p.ElementClose("ul")
	}
}

func TestPatchInnerBuildsTree(t *testing.T) {
	container := dom.NewContainer("div")
	p := New()

	err := p.PatchInner(container, func(p *Patcher) {
		p.ElementOpen("ul", "", nil)
		p.ElementOpen("li", "a", nil)
		p.Text("Apple")
		p.ElementClose("li")
		p.ElementOpen("li", "b", nil)
		p.Text("Banana")
		p.ElementClose("li")
		p.ElementClose("ul")
	})
	if err != nil {
		t.Fatalf("PatchInner: %v", err)
	}

	if got := innerHTML(t, container); got != "<ul><li>Apple</li><li>Banana</li></ul>" {
		t.Errorf("InnerHTML = %s", got)
	}

	items := dom.ElementChildren(container.FirstChild)
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	for i, want := range []string{"a", "b"} {
		data, ok := p.Store().Lookup(items[i])
		if !ok {
			t.Fatalf("item %d has no NodeData", i)
		}
		if data.Key != want || data.NodeName != "li" {
			t.Errorf("item %d: Key = %q, NodeName = %q", i, data.Key, data.NodeName)
		}
	}
}

func TestPatchIsIdempotent(t *testing.T) {
	container := dom.NewContainer("div")
	counter := NewMutationCounter()
	p := New(WithObserver(counter))

	if err := p.PatchInner(container, renderList("a", "b", "c")); err != nil {
		t.Fatal(err)
	}
	if counter.Count(MutationCreate) != 7 {
		t.Errorf("first pass Create = %d, want 7", counter.Count(MutationCreate))
	}

	first := innerHTML(t, container)
	counter.Reset()

	if err := p.PatchInner(container, renderList("a", "b", "c")); err != nil {
		t.Fatal(err)
	}
	if counter.Total() != 0 {
		t.Errorf("second pass made %d mutations, want 0", counter.Total())
	}
	if got := innerHTML(t, container); got != first {
		t.Errorf("markup changed: %s != %s", got, first)
	}
}

func TestKeyedReorderKeepsNodes(t *testing.T) {
	container := dom.NewContainer("div")
	counter := NewMutationCounter()
	p := New(WithObserver(counter))

	if err := p.PatchInner(container, renderList("a", "b", "c")); err != nil {
		t.Fatal(err)
	}
	before := dom.ElementChildren(container.FirstChild)
	byKey := map[string]*html.Node{"a": before[0], "b": before[1], "c": before[2]}
	counter.Reset()

	if err := p.PatchInner(container, renderList("c", "a", "b")); err != nil {
		t.Fatal(err)
	}

	after := dom.ElementChildren(container.FirstChild)
	if len(after) != 3 {
		t.Fatalf("got %d children, want 3", len(after))
	}
	for i, k := range []string{"c", "a", "b"} {
		if after[i] != byKey[k] {
			t.Errorf("position %d: node for key %q was not reused", i, k)
		}
	}
	if got := innerHTML(t, container); got != `<ul><li class="item">C</li><li class="item">A</li><li class="item">B</li></ul>` {
		t.Errorf("InnerHTML = %s", got)
	}
	if counter.Count(MutationCreate) != 0 || counter.Count(MutationRemove) != 0 {
		t.Errorf("Create = %d, Remove = %d, want 0 and 0",
			counter.Count(MutationCreate), counter.Count(MutationRemove))
	}
}

func TestKeyedChildRemoval(t *testing.T) {
	container := dom.NewContainer("div")
	p := New()

	if err := p.PatchInner(container, renderList("a", "b", "c")); err != nil {
		t.Fatal(err)
	}
	ul := container.FirstChild
	removed := dom.ElementChildren(ul)[1]

	if err := p.PatchInner(container, renderList("c", "a")); err != nil {
		t.Fatal(err)
	}
	if got := innerHTML(t, container); got != `<ul><li class="item">C</li><li class="item">A</li></ul>` {
		t.Errorf("InnerHTML = %s", got)
	}

	data, _ := p.Store().Lookup(ul)
	if _, ok := data.KeyMap["b"]; ok {
		t.Error("removed key still in key map")
	}
	if !data.KeyMapValid {
		t.Error("key map should be valid after the walk")
	}
	if _, ok := p.Store().Lookup(removed); ok {
		t.Error("NodeData of removed node should be dropped")
	}
	if p.GetChild(ul, "b") != nil {
		t.Error("GetChild should not find a removed key")
	}
	if p.GetChild(ul, "a") == nil {
		t.Error("GetChild should find a live key")
	}
}

func TestKeyedTagMismatch(t *testing.T) {
	container := dom.NewContainer("div")
	p := New()

	err := p.PatchInner(container, func(p *Patcher) {
		p.ElementVoid("div", "x", nil)
	})
	if err != nil {
		t.Fatal(err)
	}

	err = p.PatchInner(container, func(p *Patcher) {
		p.ElementVoid("span", "x", nil)
	})
	if ErrorCode(err) != CodeKeyedTagMismatch {
		t.Fatalf("err = %v, want %s", err, CodeKeyedTagMismatch)
	}
	for _, want := range []string{"div", "span", `"x"`} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %s", err, want)
		}
	}
	if container.FirstChild.Data != "div" {
		t.Error("element type must not be coerced")
	}
}

func TestKeyedTagMismatchWithoutAssertions(t *testing.T) {
	container := dom.NewContainer("div")
	p := New(WithAssertions(false))

	_ = p.PatchInner(container, func(p *Patcher) { p.ElementVoid("div", "x", nil) })
	err := p.PatchInner(container, func(p *Patcher) { p.ElementVoid("span", "x", nil) })
	if ErrorCode(err) != CodeKeyedTagMismatch {
		t.Errorf("err = %v, want %s", err, CodeKeyedTagMismatch)
	}
}

func TestUnclosedTags(t *testing.T) {
	tests := []struct {
		name     string
		fn       func(p *Patcher)
		wantTags string
	}{
		{
			name: "two opened none closed",
			fn: func(p *Patcher) {
				p.ElementOpen("div", "", nil)
				p.ElementOpen("span", "", nil)
			},
			wantTags: "span, div",
		},
		{
			name: "inner closed outer left open",
			fn: func(p *Patcher) {
				p.ElementOpen("ul", "", nil)
				p.ElementOpen("li", "", nil)
				p.ElementClose("li")
			},
			wantTags: "ul",
		},
		{
			name: "two left open after closing one",
			fn: func(p *Patcher) {
				p.ElementOpen("section", "", nil)
				p.ElementOpen("ul", "", nil)
				p.ElementOpen("li", "", nil)
				p.ElementClose("li")
			},
			wantTags: "ul, section",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New().PatchInner(dom.NewContainer("div"), tt.fn)
			if ErrorCode(err) != CodeUnclosedTags {
				t.Fatalf("err = %v, want %s", err, CodeUnclosedTags)
			}
			if !strings.Contains(err.Error(), tt.wantTags) {
				t.Errorf("error %q should list %q", err, tt.wantTags)
			}
		})
	}
}

func TestProtocolViolations(t *testing.T) {
	tests := []struct {
		name string
		fn   func(p *Patcher)
		want string
	}{
		{
			name: "close mismatch",
			fn: func(p *Patcher) {
				p.ElementOpen("div", "", nil)
				p.ElementClose("span")
			},
			want: CodeCloseMismatch,
		},
		{
			name: "close without open",
			fn: func(p *Patcher) {
				p.ElementClose("div")
			},
			want: CodeCloseMismatch,
		},
		{
			name: "attr outside attributes phase",
			fn: func(p *Patcher) {
				p.Attr("class", "x")
			},
			want: CodeNotInAttributes,
		},
		{
			name: "open end without start",
			fn: func(p *Patcher) {
				p.ElementOpenEnd()
			},
			want: CodeNotInAttributes,
		},
		{
			name: "element inside attributes phase",
			fn: func(p *Patcher) {
				p.ElementOpenStart("div", "", nil)
				p.ElementOpen("span", "", nil)
			},
			want: CodeInAttributes,
		},
		{
			name: "text inside attributes phase",
			fn: func(p *Patcher) {
				p.ElementOpenStart("div", "", nil)
				p.Text("x")
			},
			want: CodeInAttributes,
		},
		{
			name: "attributes never ended",
			fn: func(p *Patcher) {
				p.ElementOpenStart("div", "", nil)
				p.Attr("id", "x")
			},
			want: CodeUnclosedTags,
		},
		{
			name: "text after skip",
			fn: func(p *Patcher) {
				p.ElementOpen("div", "", nil)
				p.Skip()
				p.Text("x")
			},
			want: CodeInSkip,
		},
		{
			name: "skip after child",
			fn: func(p *Patcher) {
				p.ElementOpen("div", "", nil)
				p.ElementVoid("br", "", nil)
				p.Skip()
			},
			want: CodeSkipAfterChild,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New().PatchInner(dom.NewContainer("div"), tt.fn)
			if ErrorCode(err) != tt.want {
				t.Errorf("err = %v, want code %s", err, tt.want)
			}
		})
	}
}

func TestFirstErrorWins(t *testing.T) {
	container := dom.NewContainer("div")
	err := New().PatchInner(container, func(p *Patcher) {
		p.Attr("id", "x")
		if p.ElementOpen("div", "", nil) != nil {
			t.Error("calls after a failure should return nil")
		}
		p.ElementClose("span")
	})
	if ErrorCode(err) != CodeNotInAttributes {
		t.Errorf("err = %v, want the first violation", err)
	}
	if container.FirstChild != nil {
		t.Error("no node should be created after a failure")
	}
}

func TestCallOutsidePatch(t *testing.T) {
	p := New()
	if p.ElementOpen("div", "", nil) != nil {
		t.Error("ElementOpen outside a patch should return nil")
	}
	if ErrorCode(p.Err()) != CodeNotInPatch {
		t.Errorf("Err() = %v, want %s", p.Err(), CodeNotInPatch)
	}
}

func TestInvalidRoot(t *testing.T) {
	p := New()
	if err := p.PatchInner(nil, func(*Patcher) {}); ErrorCode(err) != CodeInvalidRoot {
		t.Errorf("nil root: err = %v", err)
	}
	if err := p.PatchInner(dom.NewText("x"), func(*Patcher) {}); ErrorCode(err) != CodeInvalidRoot {
		t.Errorf("text root: err = %v", err)
	}
}

func TestAssertionsDisabled(t *testing.T) {
	container := dom.NewContainer("div")
	p := New(WithAssertions(false))

	err := p.PatchInner(container, func(p *Patcher) {
		p.Attr("ignored", "x")
		p.ElementOpen("div", "", nil)
		p.ElementOpen("span", "", nil)
		p.ElementClose("em")
	})
	if err != nil {
		t.Fatalf("err = %v, want nil with assertions disabled", err)
	}
	if got := innerHTML(t, container); got != "<div><span></span></div>" {
		t.Errorf("InnerHTML = %s", got)
	}
}

func TestNamespaces(t *testing.T) {
	container := dom.NewContainer("div")
	p := New()

	var svg, circle, fo, inner, nested, math *html.Node
	err := p.PatchInner(container, func(p *Patcher) {
		svg = p.ElementOpen("svg", "", nil)
		circle = p.ElementVoid("circle", "", nil, "r", 4)
		fo = p.ElementOpen("foreignObject", "", nil)
		inner = p.ElementOpen("div", "", nil)
		nested = p.ElementVoid("svg", "", nil)
		p.ElementClose("div")
		p.ElementClose("foreignObject")
		p.ElementClose("svg")
		math = p.ElementVoid("math", "", nil)
	})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		node *html.Node
		want string
	}{
		{"svg in html", svg, dom.NamespaceSVG},
		{"svg child", circle, dom.NamespaceSVG},
		{"foreignObject", fo, dom.NamespaceSVG},
		{"inside foreignObject", inner, dom.NamespaceHTML},
		{"svg inside html inside svg", nested, dom.NamespaceSVG},
		{"math", math, dom.NamespaceMathML},
	}
	for _, tt := range tests {
		if tt.node == nil {
			t.Errorf("%s: node is nil", tt.name)
			continue
		}
		if tt.node.Namespace != tt.want {
			t.Errorf("%s: Namespace = %q, want %q", tt.name, tt.node.Namespace, tt.want)
		}
	}
	if v, _ := dom.GetAttr(circle, "r"); v != "4" {
		t.Errorf("r = %q, want 4", v)
	}
}

func TestAttributeDiffing(t *testing.T) {
	container := dom.NewContainer("div")
	counter := NewMutationCounter()
	p := New(WithObserver(counter))

	patch := func(attrs ...any) {
		t.Helper()
		err := p.PatchInner(container, func(p *Patcher) {
			p.ElementVoid("input", "", []any{"type", "text"}, attrs...)
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	patch("class", "a", "id", "x")
	patch("class", "b", "id", "x")
	if got := innerHTML(t, container); got != `<input type="text" class="b" id="x"/>` {
		t.Errorf("after update: %s", got)
	}

	counter.Reset()
	patch("class", "b")
	if got := innerHTML(t, container); got != `<input type="text" class="b"/>` {
		t.Errorf("after removal: %s", got)
	}
	if counter.Count(MutationRemoveAttr) != 1 || counter.Count(MutationSetAttr) != 0 {
		t.Errorf("RemoveAttr = %d, SetAttr = %d", counter.Count(MutationRemoveAttr), counter.Count(MutationSetAttr))
	}

	patch()
	if got := innerHTML(t, container); got != `<input type="text"/>` {
		t.Errorf("statics must survive: %s", got)
	}
}

func TestAttributeValues(t *testing.T) {
	container := dom.NewContainer("div")
	p := New()

	var el *html.Node
	render := func(disabled bool, style map[string]string) {
		t.Helper()
		err := p.PatchInner(container, func(p *Patcher) {
			el = p.ElementVoid("button", "", nil,
				"disabled", disabled,
				"tabindex", 2,
				"style", style,
			)
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	render(true, map[string]string{"width": "1px", "color": "red"})
	if v, ok := dom.GetAttr(el, "disabled"); !ok || v != "" {
		t.Errorf("disabled = %q, %v", v, ok)
	}
	if v, _ := dom.GetAttr(el, "tabindex"); v != "2" {
		t.Errorf("tabindex = %q", v)
	}
	if v, _ := dom.GetAttr(el, "style"); v != "color: red; width: 1px;" {
		t.Errorf("style = %q", v)
	}

	render(false, nil)
	if _, ok := dom.GetAttr(el, "disabled"); ok {
		t.Error("disabled should be removed when false")
	}
	if _, ok := dom.GetAttr(el, "style"); ok {
		t.Error("style should be removed when nil")
	}
}

func TestElementOpenStartEnd(t *testing.T) {
	container := dom.NewContainer("div")
	p := New()

	var a *html.Node
	err := p.PatchInner(container, func(p *Patcher) {
		p.ElementOpenStart("a", "link", []any{"rel", "nofollow"})
		p.Attr("href", "/x")
		p.Attr("xlink:title", "t")
		a = p.ElementOpenEnd()
		p.Text("go")
		p.ElementClose("a")
	})
	if err != nil {
		t.Fatal(err)
	}
	if a == nil || a.Data != "a" {
		t.Fatalf("ElementOpenEnd returned %v", a)
	}
	if got := innerHTML(t, container); got != `<a rel="nofollow" href="/x" xlink:title="t">go</a>` {
		t.Errorf("InnerHTML = %s", got)
	}
}

func TestCustomAttributeMutator(t *testing.T) {
	container := dom.NewContainer("div")
	var calls int
	p := New(WithAttributeMutator("data-upper", func(el *html.Node, name string, value any) {
		calls++
		dom.SetAttr(el, name, strings.ToUpper(value.(string)))
	}))

	for i := 0; i < 2; i++ {
		err := p.PatchInner(container, func(p *Patcher) {
			p.ElementVoid("div", "", nil, "data-upper", "abc")
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	if got := innerHTML(t, container); got != `<div data-upper="ABC"></div>` {
		t.Errorf("InnerHTML = %s", got)
	}
	if calls != 1 {
		t.Errorf("mutator called %d times, want 1", calls)
	}
}

func TestTextFormatters(t *testing.T) {
	container := dom.NewContainer("p")
	counter := NewMutationCounter()
	p := New(WithObserver(counter))

	render := func(v any) {
		t.Helper()
		if err := p.PatchInner(container, func(p *Patcher) { p.Text(v, strings.ToUpper) }); err != nil {
			t.Fatal(err)
		}
	}

	render("hello")
	if container.FirstChild.Data != "HELLO" {
		t.Errorf("text = %q", container.FirstChild.Data)
	}
	counter.Reset()
	render("hello")
	if counter.Total() != 0 {
		t.Errorf("unchanged text made %d mutations", counter.Total())
	}
	render(42)
	if container.FirstChild.Data != "42" {
		t.Errorf("text = %q", container.FirstChild.Data)
	}
}

func TestAdoptExistingMarkup(t *testing.T) {
	container := dom.NewContainer("div")
	if err := dom.ParseInto(container, `<ul><li key="a" class="x">Apple</li><li key="b">Banana</li></ul>`); err != nil {
		t.Fatal(err)
	}
	li := dom.ElementChildren(container.FirstChild)
	counter := NewMutationCounter()
	p := New(WithObserver(counter))

	err := p.PatchInner(container, func(p *Patcher) {
		p.ElementOpen("ul", "", nil)
		p.ElementOpen("li", "b", nil)
		p.Text("Banana")
		p.ElementClose("li")
		p.ElementOpen("li", "a", nil, "class", "x")
		p.Text("Apple")
		p.ElementClose("li")
		p.ElementClose("ul")
	})
	if err != nil {
		t.Fatal(err)
	}

	after := dom.ElementChildren(container.FirstChild)
	if after[0] != li[1] || after[1] != li[0] {
		t.Error("adopted keyed nodes should be reused")
	}
	if counter.Count(MutationCreate) != 0 {
		t.Errorf("Create = %d, want 0", counter.Count(MutationCreate))
	}
	if counter.Count(MutationSetAttr)+counter.Count(MutationSetText) != 0 {
		t.Error("matching adopted attributes and text should not be rewritten")
	}
}

func TestAdoptedAttributesAreRemoved(t *testing.T) {
	container := dom.NewContainer("div")
	if err := dom.ParseInto(container, `<p class="old" title="t">x</p>`); err != nil {
		t.Fatal(err)
	}
	p := New()
	err := p.PatchInner(container, func(p *Patcher) {
		p.ElementOpen("p", "", nil, "title", "t")
		p.Text("x")
		p.ElementClose("p")
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := innerHTML(t, container); got != `<p title="t">x</p>` {
		t.Errorf("InnerHTML = %s", got)
	}
}

func TestSkip(t *testing.T) {
	container := dom.NewContainer("div")
	p := New()

	err := p.PatchInner(container, func(p *Patcher) {
		p.ElementOpen("div", "", nil)
		p.ElementVoid("p", "", nil)
		p.Text("kept")
		p.ElementClose("div")
		p.ElementVoid("hr", "", nil)
	})
	if err != nil {
		t.Fatal(err)
	}
	want := innerHTML(t, container)

	counter := NewMutationCounter()
	p2 := New(WithObserver(counter), WithStore(p.Store()))
	err = p2.PatchInner(container, func(p *Patcher) {
		p.ElementOpen("div", "", nil)
		p.Skip()
		p.ElementClose("div")
		p.SkipNode()
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := innerHTML(t, container); got != want {
		t.Errorf("skipped content changed: %s != %s", got, want)
	}
	if counter.Total() != 0 {
		t.Errorf("skip made %d mutations", counter.Total())
	}
}

func TestCurrentElementAndPointer(t *testing.T) {
	container := dom.NewContainer("div")
	if err := dom.ParseInto(container, `<span></span><em></em>`); err != nil {
		t.Fatal(err)
	}
	span := container.FirstChild

	err := New().PatchInner(container, func(p *Patcher) {
		if p.CurrentElement() != container {
			t.Error("CurrentElement should be the root")
		}
		if p.CurrentPointer() != span {
			t.Error("CurrentPointer should be the first child")
		}
		p.SkipNode()
		if p.CurrentPointer() != span.NextSibling {
			t.Error("CurrentPointer should advance past the skipped node")
		}
		p.SkipNode()
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestPatchOuter(t *testing.T) {
	t.Run("same tag keeps node", func(t *testing.T) {
		container := dom.NewContainer("div")
		_ = dom.ParseInto(container, `<section id="s">old</section>`)
		node := container.FirstChild

		got, err := New().PatchOuter(node, func(p *Patcher) {
			p.ElementOpen("section", "", nil, "id", "s")
			p.Text("new")
			p.ElementClose("section")
		})
		if err != nil {
			t.Fatal(err)
		}
		if got != node {
			t.Error("PatchOuter should reuse a matching node")
		}
		if out := innerHTML(t, container); out != `<section id="s">new</section>` {
			t.Errorf("InnerHTML = %s", out)
		}
	})

	t.Run("different tag replaces node", func(t *testing.T) {
		container := dom.NewContainer("div")
		_ = dom.ParseInto(container, `<b>1</b><section>old</section><i>2</i>`)
		node := container.FirstChild.NextSibling

		got, err := New().PatchOuter(node, func(p *Patcher) {
			p.ElementOpen("article", "", nil)
			p.Text("new")
			p.ElementClose("article")
		})
		if err != nil {
			t.Fatal(err)
		}
		if got == nil || got.Data != "article" {
			t.Fatalf("PatchOuter returned %v", got)
		}
		if out := innerHTML(t, container); out != `<b>1</b><article>new</article><i>2</i>` {
			t.Errorf("InnerHTML = %s", out)
		}
	})

	t.Run("nothing described removes node", func(t *testing.T) {
		container := dom.NewContainer("div")
		_ = dom.ParseInto(container, `<section></section><i></i>`)

		got, err := New().PatchOuter(container.FirstChild, func(*Patcher) {})
		if err != nil {
			t.Fatal(err)
		}
		if got != nil {
			t.Errorf("PatchOuter returned %v, want nil", got)
		}
		if out := innerHTML(t, container); out != `<i></i>` {
			t.Errorf("InnerHTML = %s", out)
		}
	})

	t.Run("extra top-level nodes", func(t *testing.T) {
		container := dom.NewContainer("div")
		_ = dom.ParseInto(container, `<section></section>`)

		_, err := New().PatchOuter(container.FirstChild, func(p *Patcher) {
			p.ElementVoid("section", "", nil)
			p.ElementVoid("section", "", nil)
		})
		if ErrorCode(err) != CodeOuterExtraNodes {
			t.Errorf("err = %v, want %s", err, CodeOuterExtraNodes)
		}
	})

	t.Run("detached node cannot be replaced", func(t *testing.T) {
		_, err := New().PatchOuter(dom.NewContainer("div"), func(p *Patcher) {
			p.ElementVoid("span", "", nil)
		})
		if ErrorCode(err) != CodeInvalidRoot {
			t.Errorf("err = %v, want %s", err, CodeInvalidRoot)
		}
	})
}

func TestNestedPatch(t *testing.T) {
	container := dom.NewContainer("div")
	other := dom.NewContainer("aside")
	p := New()

	err := p.PatchInner(container, func(p *Patcher) {
		p.ElementOpen("main", "", nil)
		if err := p.PatchInner(other, func(p *Patcher) { p.Text("inner") }); err != nil {
			t.Errorf("nested PatchInner: %v", err)
		}
		p.Text("outer")
		p.ElementClose("main")
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := innerHTML(t, container); got != "<main>outer</main>" {
		t.Errorf("outer = %s", got)
	}
	if got := innerHTML(t, other); got != "inner" {
		t.Errorf("inner = %s", got)
	}
}

func TestStoreTracksLiveNodes(t *testing.T) {
	container := dom.NewContainer("div")
	p := New()

	if err := p.PatchInner(container, renderList("a", "b", "c")); err != nil {
		t.Fatal(err)
	}
	full := p.Store().Len()

	if err := p.PatchInner(container, renderList("a")); err != nil {
		t.Fatal(err)
	}
	if p.Store().Len() != full-4 {
		t.Errorf("Store.Len() = %d, want %d", p.Store().Len(), full-4)
	}
}

func TestUnkeyedNodeDisplacesKeyed(t *testing.T) {
	container := dom.NewContainer("div")
	counter := NewMutationCounter()
	p := New(WithObserver(counter))

	err := p.PatchInner(container, func(p *Patcher) {
		p.ElementVoid("div", "k", nil)
	})
	if err != nil {
		t.Fatal(err)
	}
	keyed := container.FirstChild
	counter.Reset()

	err = p.PatchInner(container, func(p *Patcher) {
		p.ElementVoid("p", "", nil)
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := innerHTML(t, container); got != "<p></p>" {
		t.Errorf("InnerHTML = %s", got)
	}
	if counter.Count(MutationRemove) != 1 {
		t.Errorf("Remove = %d, want 1", counter.Count(MutationRemove))
	}
	if _, ok := p.Store().Lookup(keyed); ok {
		t.Error("displaced keyed node should be forgotten")
	}
}
