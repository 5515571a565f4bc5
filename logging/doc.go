// Package logging provides a minimal logging interface and adapters for
// slackmachine.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the dispatch engine and plugins use for observability.
// This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//   - MachineLogger with cheap contextual binding (handler, user) so the
//     engine can hand every invocation its own logger without mutating a
//     shared one
//
// The design intentionally keeps the interface minimal to avoid vendor
// lock-in while supporting structured logging where available.
package logging
