package monitor

import "time"

// Flash keys of the fields that highlight on change.
const (
	FlashChannel    = "ch"
	FlashController = "cc"
	FlashValue      = "val"
	FlashChord      = "chord"
)

// FlashTracker keeps an expiry per field key. A field is highlighted while
// now is before its expiry; windows are never cleared early. Not safe for
// concurrent use on its own; State serializes access.
type FlashTracker struct {
	until map[string]time.Time
}

func NewFlashTracker() *FlashTracker {
	return &FlashTracker{until: make(map[string]time.Time)}
}

// Arm highlights key for d starting at now.
func (f *FlashTracker) Arm(key string, now time.Time, d time.Duration) {
	f.until[key] = now.Add(d)
}

// IsActive reports whether key is highlighted at now.
func (f *FlashTracker) IsActive(key string, now time.Time) bool {
	exp, ok := f.until[key]
	return ok && now.Before(exp)
}
