package models

import "time"

// Comment is a positional note anchored to normalized coordinates on a
// reviewed asset. X and Y are fractions of the rendered bounding box, not
// pixels, so pins survive viewport resizes and different viewers' screens.
type Comment struct {
	ID       string
	ReviewID string
	// X and Y are clamped into [0,1] before persistence.
	X         float64
	Y         float64
	Text      string
	CreatedAt time.Time
}
