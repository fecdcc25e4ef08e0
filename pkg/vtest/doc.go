// Package vtest provides testing helpers for code that builds vdom trees
// and drives the patcher.
//
// # Render Assertions
//
// Render a tree into a fresh container and assert on the markup:
//
//	vtest.ExpectContains(t, view(), "Welcome")
//	vtest.ExpectElement(t, view(), "//ul/li[@class='active']")
//	vtest.ExpectAttribute(t, view(), "//input", "type", "email")
//
// # Mirror Pairs
//
// A Pair patches a source container, ships every frame through the wire
// codec into a Mirror and fails the test when the two trees diverge:
//
//	p := vtest.NewPair(t)
//	p.Patch(list("a", "b"))
//	p.Patch(list("b", "a"))
//	if p.Counter.Count(incdom.MutationCreate) != 0 { ... }
package vtest
