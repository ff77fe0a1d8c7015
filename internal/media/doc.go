// Package media defines the classification result shared across the pipeline
// and the extension tables that decide what is music, video, junk, or still
// downloading.
package media
