// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing events and inspecting connector traffic.
// Not intended for production usage.
package testutil
