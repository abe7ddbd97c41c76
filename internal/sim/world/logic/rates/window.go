package rates

import "time"

// Window allows at most Max events per fixed window of Size. A zero Size or
// Max disables the limit. Not safe for concurrent use.
type Window struct {
	Size time.Duration
	Max  int

	start time.Time
	count int
}

// Allow counts one event at now. When the window is full it reports false
// and the time left until the window resets.
func (w *Window) Allow(now time.Time) (bool, time.Duration) {
	if w.Size <= 0 || w.Max <= 0 {
		return true, 0
	}
	if w.start.IsZero() || now.Sub(w.start) >= w.Size {
		w.start = now
		w.count = 0
	}
	w.count++
	if w.count <= w.Max {
		return true, 0
	}
	return false, w.start.Add(w.Size).Sub(now)
}
