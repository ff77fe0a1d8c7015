// Package notifications delivers pipeline events to ntfy.
//
// The ntfy topic URL comes from config.toml; without one the package returns
// a no-op service. Import completions and placement failures can be muted
// individually through the imports and errors switches.
package notifications
