// Package config defines the settings the machine is assembled from: bot
// identity and addressing, dispatch behavior, and storage backend
// selection. Settings load from YAML with unknown fields rejected, so a
// typo fails fast instead of silently using a default.
package config
