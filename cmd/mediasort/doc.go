// Package main hosts the mediasort CLI entrypoint and command graph.
//
// Commands either talk to a running daemon over the IPC socket or, where that
// makes sense (import, parse, history), fall back to doing the work in
// process. `mediasort daemon` runs the daemon itself in the foreground.
package main
