// Package connector holds the pieces of the platform boundary that belong
// to the dispatch core: normalization of raw Events API frames into
// core.Event values, and a loopback connector for examples and local
// development.
//
// The live socket connection, authentication and reconnect/backoff are
// external collaborators; implementations of core.Connector own them and
// feed normalized events into the dispatch engine.
package connector
