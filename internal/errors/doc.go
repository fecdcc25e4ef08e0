// Package errors provides structured, actionable error messages for the
// incremental DOM patcher and its tooling.
//
// Every error produced by the walker carries a registered code that maps to:
//   - A short message describing the violation
//   - A detailed explanation
//   - A documentation anchor
//
// # Error Categories
//
//   - patch: open/close protocol violations detected during a patch walk
//   - protocol: malformed mutation frames
//   - config: invalid or unreadable incdom.json
//   - cli: command line misuse
//   - runtime: everything else
//
// # Usage
//
//	err := errors.New("E001").
//	    WithDetail("unclosed: li, ul").
//	    WithSuggestion("Close every element you open before the patch returns")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E001: Unclosed tags at end of patch
//	//
//	//   unclosed: li, ul
//	//
//	//   Hint: Close every element you open before the patch returns
package errors
