// Package server exposes the patcher over HTTP.
//
// Routes:
//
//	POST /api/patch  patch base markup with a JSON tree, return the result
//	GET  /live       WebSocket: JSON trees in, binary mutation frames out
//	GET  /metrics    Prometheus metrics
//	GET  /healthz    liveness
//
// A /live connection owns one session. The first message the server sends
// is a snapshot frame (FlagSnapshot set) for the empty container; each text
// message the client sends afterwards is decoded as a tree and answered with
// a mutations frame, or with a JSON error message when the tree is invalid
// or the patch fails.
package server
