// Package preflight provides readiness checks for the filesystem paths and
// external services mediasort depends on.
//
// The daemon runs RunAll when monitoring starts and logs each failed check as
// a warning; the CLI status command renders the same results. Checks for
// optional services are only run when the service is configured.
package preflight
