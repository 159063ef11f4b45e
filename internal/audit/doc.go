// Package audit carries the security event trail of the engine.
//
// Flows emit exactly one event per invocation, success or failure. The
// uniform error surface the engine presents to clients does not apply
// here: audit metadata records the true rejection reason, so operators
// can distinguish an unknown email from a wrong password even though
// callers cannot.
//
// Delivery is asynchronous. The Dispatcher buffers events and forwards
// them to the host's Sink on a single goroutine; when the buffer is
// full events are dropped and counted rather than blocking a login.
package audit
