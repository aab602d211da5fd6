package monitor

import "time"

// ScrollState describes the visible window of the device list for one tick.
// It is derived from the list and the elapsed overlay time, never stored.
type ScrollState struct {
	Lines      int
	LineHeight int
	ViewHeight int
	Offset     int
}

// DeviceScroll lays out n device lines of lineHeight pixels in a window of
// at most maxLines lines (and never taller than displayHeight), scrolled for
// elapsed time since the overlay opened.
func DeviceScroll(cfg Config, n, lineHeight, displayHeight int, elapsed time.Duration) ScrollState {
	view := min(cfg.MaxDeviceLines*lineHeight, displayHeight)
	s := ScrollState{Lines: n, LineHeight: lineHeight, ViewHeight: view}
	s.Offset = ScrollOffset(cfg, elapsed, n*lineHeight, view)
	return s
}

// ScrollOffset returns the pixel offset of a list of listHeight pixels in a
// view of viewHeight pixels. The top holds still for the start delay, the
// bottom for the end hold, and the list moves proportionally to time in
// between.
func ScrollOffset(cfg Config, elapsed time.Duration, listHeight, viewHeight int) int {
	maxOffset := listHeight - viewHeight
	if maxOffset <= 0 {
		return 0
	}
	period := cfg.DeviceDisplayTime - cfg.ScrollStartDelay - cfg.ScrollEndHold
	switch {
	case elapsed < cfg.ScrollStartDelay:
		return 0
	case period <= 0 || elapsed >= cfg.ScrollStartDelay+period:
		return maxOffset
	}
	off := int(int64(maxOffset) * int64(elapsed-cfg.ScrollStartDelay) / int64(period))
	return max(0, min(off, maxOffset))
}

// Visible reports whether line i intersects the view.
func (s ScrollState) Visible(i int) bool {
	y := s.Y(i)
	return y > -s.LineHeight && y < s.ViewHeight
}

// Y is the top of line i relative to the view.
func (s ScrollState) Y(i int) int { return i*s.LineHeight - s.Offset }
