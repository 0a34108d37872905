package source

import "time"

// Window bounds a fetch to recent items. Since is the lower bound; adapters
// pass it to their backend where the API supports it and filter locally where
// it does not.
type Window struct {
	Since time.Time
}

// LastHours builds a window reaching back the given number of hours from now.
func LastHours(hours int) Window {
	if hours <= 0 {
		hours = 24
	}
	return Window{Since: time.Now().UTC().Add(-time.Duration(hours) * time.Hour)}
}

// Cutoff returns the lower bound as unix seconds, the unit canonical messages
// carry.
func (w Window) Cutoff() float64 {
	return float64(w.Since.UnixNano()) / float64(time.Second)
}

// Contains reports whether a unix-seconds timestamp falls inside the window.
func (w Window) Contains(ts float64) bool {
	return ts >= w.Cutoff()
}
