// Package plugins contains the built-in plugins shipped with slackmachine:
// the help catalog, a ping responder, and an optional AI responder backed
// by the Anthropic API. They double as reference implementations of the
// core.Plugin contract.
package plugins
