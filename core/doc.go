// Package core contains the shared value types and interfaces of the
// slackmachine dispatch core: the normalized Event union, handler
// registration specs, the per-invocation Context handed to plugin handlers,
// and the contracts for the platform connector and the key-value storage
// backends.
//
// The package is dependency-light on purpose. Concrete implementations live
// in their own packages (dispatch, registry, storage, scheduler, connector)
// and depend on core, never the other way around.
package core
