package dom

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"
)

func TestNodeName(t *testing.T) {
	tests := []struct {
		node *html.Node
		want string
	}{
		{NewElement("div", NamespaceHTML), "div"},
		{NewElement("circle", NamespaceSVG), "circle"},
		{NewText("hi"), "#text"},
		{&html.Node{Type: html.CommentNode}, "#comment"},
		{NewDocument(), "#document"},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := NodeName(tt.node); got != tt.want {
			t.Errorf("NodeName() = %q, want %q", got, tt.want)
		}
	}
}

func TestAttrs(t *testing.T) {
	n := NewElement("a", NamespaceHTML)
	SetAttr(n, "href", "/one")
	SetAttr(n, "xlink:href", "#icon")
	SetAttr(n, "href", "/two")

	if v, ok := GetAttr(n, "href"); !ok || v != "/two" {
		t.Errorf("GetAttr(href) = %q, %v", v, ok)
	}
	if v, ok := GetAttr(n, "xlink:href"); !ok || v != "#icon" {
		t.Errorf("GetAttr(xlink:href) = %q, %v", v, ok)
	}
	if len(n.Attr) != 2 {
		t.Fatalf("len(Attr) = %d, want 2", len(n.Attr))
	}
	if n.Attr[1].Namespace != "xlink" || QualifiedName(n.Attr[1]) != "xlink:href" {
		t.Errorf("Attr[1] = %+v", n.Attr[1])
	}
	if !RemoveAttr(n, "href") || RemoveAttr(n, "href") {
		t.Error("RemoveAttr should report presence exactly once")
	}
	if _, ok := GetAttr(n, "href"); ok {
		t.Error("href should be gone")
	}
}

func TestInsertBeforeMoves(t *testing.T) {
	parent := NewContainer("ul")
	a, b, c := NewElement("li", ""), NewElement("li", ""), NewElement("li", "")
	parent.AppendChild(a)
	parent.AppendChild(b)
	parent.AppendChild(c)

	InsertBefore(parent, c, a)
	got := Children(parent)
	want := []*html.Node{c, a, b}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("child %d moved incorrectly", i)
		}
	}

	InsertBefore(parent, c, nil)
	if parent.LastChild != c {
		t.Error("InsertBefore(nil) should append")
	}
}

func TestParseAndSerialize(t *testing.T) {
	container := NewContainer("div")
	if err := ParseInto(container, `<ul><li key="a">Apple</li><li>Banana</li></ul>`); err != nil {
		t.Fatalf("ParseInto: %v", err)
	}

	got, err := InnerHTML(container)
	if err != nil {
		t.Fatal(err)
	}
	if got != `<ul><li key="a">Apple</li><li>Banana</li></ul>` {
		t.Errorf("InnerHTML = %s", got)
	}

	outer, err := OuterHTML(container)
	if err != nil {
		t.Fatal(err)
	}
	if outer != "<div>"+got+"</div>" {
		t.Errorf("OuterHTML = %s", outer)
	}
}

func TestParseSVGNamespace(t *testing.T) {
	container := NewContainer("div")
	if err := ParseInto(container, `<svg><circle r="1"></circle></svg>`); err != nil {
		t.Fatal(err)
	}
	svg := container.FirstChild
	if svg.Namespace != NamespaceSVG || svg.FirstChild.Namespace != NamespaceSVG {
		t.Errorf("namespaces = %q, %q", svg.Namespace, svg.FirstChild.Namespace)
	}
}

func TestQuery(t *testing.T) {
	container := NewContainer("div")
	if err := ParseInto(container, `<ul><li key="a">Apple</li><li key="b">Banana</li></ul>`); err != nil {
		t.Fatal(err)
	}

	li, err := Query(container, `//li[@key="b"]`)
	if err != nil {
		t.Fatal(err)
	}
	if li == nil || li.FirstChild.Data != "Banana" {
		t.Fatalf("Query returned %v", li)
	}

	all, err := QueryAll(container, "//li")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("QueryAll = %d nodes, want 2", len(all))
	}

	if _, err := Query(container, "//li["); err == nil {
		t.Error("invalid xpath should fail")
	}
}

func TestPath(t *testing.T) {
	root := NewContainer("div")
	if err := ParseInto(root, `<p>x</p><ul><li>a</li><li>b</li></ul>`); err != nil {
		t.Fatal(err)
	}
	second := root.LastChild.LastChild

	if diff := cmp.Diff([]int{1, 1}, Path(root, second)); diff != "" {
		t.Errorf("Path mismatch (-want +got):\n%s", diff)
	}
	if Path(root, NewText("detached")) != nil {
		t.Error("Path for detached node should be nil")
	}
	if diff := cmp.Diff([]int{}, Path(root, root)); diff != "" {
		t.Errorf("Path(root, root) mismatch:\n%s", diff)
	}
}
