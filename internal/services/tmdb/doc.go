// Package tmdb wraps The Movie Database API searches used to enrich movie and
// TV classifications, including per-episode titles.
package tmdb
