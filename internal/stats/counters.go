package stats

import (
	"sync/atomic"

	"mediasort/internal/media"
)

// Snapshot is a point-in-time copy of the placement counters.
type Snapshot struct {
	TV     uint64 `json:"tv"`
	Movies uint64 `json:"movies"`
	Music  uint64 `json:"music"`
	Other  uint64 `json:"other"`
}

// Total sums every category.
func (s Snapshot) Total() uint64 {
	return s.TV + s.Movies + s.Music + s.Other
}

// Get returns the count for one category.
func (s Snapshot) Get(category media.Category) uint64 {
	switch category {
	case media.CategoryTV:
		return s.TV
	case media.CategoryMovies:
		return s.Movies
	case media.CategoryMusic:
		return s.Music
	default:
		return s.Other
	}
}

// Counters counts successful placements per category. It is safe for
// concurrent use.
type Counters struct {
	tv     atomic.Uint64
	movies atomic.Uint64
	music  atomic.Uint64
	other  atomic.Uint64
}

// NewCounters returns zeroed counters.
func NewCounters() *Counters {
	return &Counters{}
}

// Increment records one placement in category. Unknown categories count as other.
func (c *Counters) Increment(category media.Category) {
	if c == nil {
		return
	}
	switch category {
	case media.CategoryTV:
		c.tv.Add(1)
	case media.CategoryMovies:
		c.movies.Add(1)
	case media.CategoryMusic:
		c.music.Add(1)
	default:
		c.other.Add(1)
	}
}

// Snapshot copies the current values.
func (c *Counters) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	return Snapshot{
		TV:     c.tv.Load(),
		Movies: c.movies.Load(),
		Music:  c.music.Load(),
		Other:  c.other.Load(),
	}
}
