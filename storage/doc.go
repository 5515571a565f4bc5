// Package storage provides the interchangeable key-value backends behind
// the core.Storage capability contract: a process-local in-memory map
// (reference implementation, no persistence), a Redis backend (persistence
// tied to the cache service, native TTL), and a DynamoDB backend (durable,
// TTL via item expiry).
//
// All backends treat values as opaque bytes; absence of a key is reported
// through the found result, never as an error, while transport failures of
// the networked backends wrap core.ErrStorageUnavailable. The Named wrapper
// prefixes keys with the owning plugin id so plugins cannot step on each
// other's entries.
package storage
