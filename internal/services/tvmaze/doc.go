// Package tvmaze wraps the free TVMaze single-search endpoint used to correct
// series names and recover premiere years.
package tvmaze
