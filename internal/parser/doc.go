// Package parser reads titles, years, and episode numbers out of release file
// names. It performs no I/O; network correction happens later in the metadata
// resolver.
package parser
