// Package watcher turns filesystem notifications under the monitor root into
// queue admissions.
//
// The whole tree is watched: existing directories are registered at start and
// new ones as they appear, with the files they already contain admitted on the
// spot. Temporary download names and anything under a category root are
// skipped. The watcher is an accelerator; the periodic sweep remains the
// source of truth when events are missed.
package watcher
