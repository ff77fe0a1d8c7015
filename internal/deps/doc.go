// Package deps reports whether the external binaries mediasort shells out to
// can be resolved. Status output and the resolver use it to decide whether
// acoustic fingerprinting is possible.
package deps
