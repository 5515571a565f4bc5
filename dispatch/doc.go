// Package dispatch implements the engine at the heart of slackmachine: it
// receives normalized events, matches them against the sealed handler
// registry, constructs a per-invocation context for every match, and
// invokes matched handlers concurrently with failure isolation.
//
// Handle never returns an error and never panics outward. Handler faults
// are recovered at the invocation boundary, logged with the owning plugin
// and handler identity, and optionally answered with a best-effort
// in-channel notice; sibling handlers for the same event are unaffected.
package dispatch
