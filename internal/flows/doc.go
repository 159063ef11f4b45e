// Package flows holds the orchestration logic of every engine
// operation as free functions over injected dependency structs.
//
// Each flow takes a Deps value whose function fields are bound by the
// engine at call time. Sentinel errors, audit event names, and metric
// IDs are injected too, so the flows never import the root package and
// stay testable with plain function literals.
//
// Two rules hold across every flow: exactly one audit emit per
// invocation on every path, and failures that must be uniform share a
// single return site so their payloads cannot drift apart.
package flows
