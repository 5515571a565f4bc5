// Package registry owns the table of registered plugins and their handler
// specs. Registration validates and compiles every declared pattern, runs
// each plugin's one-shot Init, and preserves registration order so help
// output and first-match tie-breaks stay deterministic.
//
// Once Seal is called the registry is read-only; the dispatch engine only
// ever reads it, which is why steady-state matching needs no locks.
package registry
