package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFlashWindow(t *testing.T) {
	f := NewFlashTracker()
	d := 300 * time.Millisecond

	require.False(t, f.IsActive(FlashValue, at(0)))

	f.Arm(FlashValue, at(100), d)
	require.True(t, f.IsActive(FlashValue, at(100)))
	require.True(t, f.IsActive(FlashValue, at(399)))
	require.False(t, f.IsActive(FlashValue, at(400)))
	require.False(t, f.IsActive(FlashController, at(200)))

	// Re-arming extends from the new change.
	f.Arm(FlashValue, at(350), d)
	require.True(t, f.IsActive(FlashValue, at(600)))
	require.False(t, f.IsActive(FlashValue, at(650)))
}
