// Package daemonctl launches, stops, and inspects the background daemon
// process on behalf of the CLI.
package daemonctl
