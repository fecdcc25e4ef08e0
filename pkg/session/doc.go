// Package session binds a live container, its Patcher and a mutation
// Recorder together so that each applied description yields one sequenced
// mutations frame.
//
// # Tracing
//
// Apply starts an OpenTelemetry span named "incdom.patch" using the global
// tracer provider unless WithTracer is given. Configure the provider in
// main() before creating sessions.
package session
