// Package dom holds the small set of helpers the patcher needs on top of
// golang.org/x/net/html: node construction, namespace-aware attribute access,
// markup parsing for adopting existing trees, serialization and XPath lookup.
//
// The live DOM is a plain *html.Node tree. Node identity is pointer identity.
package dom
