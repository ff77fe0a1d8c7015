// Package stability decides when a file dropped into the monitored tree has
// finished being written.
//
// The detector polls the file size and requires it to stay unchanged and
// non-zero for a number of consecutive polls. It then confirms with a
// best-effort write-open probe, which fails on platforms that hold an
// exclusive lock on files still being copied. Size polling stays the primary
// signal; the probe only vetoes.
package stability
