package vtest

import (
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/redscorpix/npf-sub003/pkg/dom"
	"github.com/redscorpix/npf-sub003/pkg/incdom"
	"github.com/redscorpix/npf-sub003/pkg/vdom"
)

// Render patches node into a new div container and returns the container.
func Render(t testing.TB, node *vdom.VNode) *html.Node {
	t.Helper()
	container := dom.NewContainer("div")
	if err := incdom.New().PatchInner(container, vdom.Patch(node)); err != nil {
		t.Fatalf("patch: %v", err)
	}
	return container
}

// RenderToString renders node and returns the container's inner HTML.
// Patch errors are returned as the error text.
func RenderToString(node *vdom.VNode) string {
	container := dom.NewContainer("div")
	if err := incdom.New().PatchInner(container, vdom.Patch(node)); err != nil {
		return err.Error()
	}
	out, err := dom.InnerHTML(container)
	if err != nil {
		return err.Error()
	}
	return out
}

// ExpectContains asserts that rendered output contains substring.
//
// Example:
//
//	vtest.ExpectContains(t, view(), "Welcome")
func ExpectContains(t testing.TB, node *vdom.VNode, expected string) {
	t.Helper()
	out := RenderToString(node)
	if !strings.Contains(out, expected) {
		t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(out, 500))
	}
}

// ExpectNotContains asserts that rendered output does not contain substring.
func ExpectNotContains(t testing.TB, node *vdom.VNode, unexpected string) {
	t.Helper()
	out := RenderToString(node)
	if strings.Contains(out, unexpected) {
		t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(out, 500))
	}
}

// ExpectElement asserts that the XPath expression matches a rendered node.
//
// Example:
//
//	vtest.ExpectElement(t, view(), "//button[@type='submit']")
func ExpectElement(t testing.TB, node *vdom.VNode, xpath string) *html.Node {
	t.Helper()
	n, err := dom.Query(Render(t, node), xpath)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if n == nil {
		t.Errorf("expected an element matching %s in:\n%s", xpath, truncate(RenderToString(node), 500))
	}
	return n
}

// ExpectAttribute asserts that the first node matching xpath carries the
// attribute with the given value.
func ExpectAttribute(t testing.TB, node *vdom.VNode, xpath, attr, value string) {
	t.Helper()
	n := ExpectElement(t, node, xpath)
	if n == nil {
		return
	}
	got, ok := dom.GetAttr(n, attr)
	if !ok {
		t.Errorf("%s has no %s attribute", xpath, attr)
		return
	}
	if got != value {
		t.Errorf("%s %s = %q, want %q", xpath, attr, got, value)
	}
}

// ExpectHTML asserts the inner HTML of root.
func ExpectHTML(t testing.TB, root *html.Node, want string) {
	t.Helper()
	got, err := dom.InnerHTML(root)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != want {
		t.Errorf("html = %s\nwant %s", got, want)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
