package monitor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestLoadConfigFileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "midioled.yaml")
	doc := `
latch_duration: 1500ms
flash_duration: 250ms
max_bubbles: 4
clear_chord_on_short: true
excluded_ports: [Through, Dummy]
bubble:
  radius: 3
fonts:
  bubble:
    source: builtin:7x13
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg := DefaultConfig()
	require.NoError(t, LoadConfigFile(path, &cfg))

	require.Equal(t, 1500*time.Millisecond, cfg.LatchDuration)
	require.Equal(t, 250*time.Millisecond, cfg.FlashDuration)
	require.Equal(t, 4, cfg.MaxBubbles)
	require.True(t, cfg.ClearChordOnShort)
	require.Equal(t, []string{"Through", "Dummy"}, cfg.ExcludedPorts)
	require.Equal(t, 3, cfg.Bubble.Radius)
	require.Equal(t, 2, cfg.Bubble.PadX)
	require.Equal(t, "builtin:7x13", cfg.Fonts[FontBubble].Source)
	require.Equal(t, "builtin:gomono", cfg.Fonts[FontLabel].Source)
	require.Equal(t, 25*time.Millisecond, cfg.Debounce)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFileErrors(t *testing.T) {
	cfg := DefaultConfig()
	require.Error(t, LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"), &cfg))

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_bubbles: [1"), 0o644))
	require.Error(t, LoadConfigFile(path, &cfg))
	require.Len(t, cfg.Fonts, len(RequiredFontRoles))
}

func TestValidateRejects(t *testing.T) {
	tests := map[string]func(*Config){
		"no bubbles":     func(c *Config) { c.MaxBubbles = 0 },
		"no latch":       func(c *Config) { c.LatchDuration = 0 },
		"tiny latch":     func(c *Config) { c.LatchDuration = 3 * time.Nanosecond },
		"short overlay":  func(c *Config) { c.DeviceDisplayTime = time.Second },
		"zero render":    func(c *Config) { c.RenderInterval = 0 },
		"missing font":   func(c *Config) { delete(c.Fonts, FontDevice) },
		"empty display":  func(c *Config) { c.Width = 0 },
		"negative delay": func(c *Config) { c.Debounce = -time.Millisecond },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
