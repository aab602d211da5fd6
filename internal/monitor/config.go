package monitor

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FontRole names one of the fixed font slots the renderer draws with.
type FontRole string

const (
	FontLabel  FontRole = "label"
	FontValue  FontRole = "value"
	FontBubble FontRole = "bubble"
	FontDevice FontRole = "device"
)

// RequiredFontRoles lists every role that must resolve at start-up.
var RequiredFontRoles = []FontRole{FontLabel, FontValue, FontBubble, FontDevice}

// FontSpec points a role at a glyph source. Source is either a path to a
// TrueType/OpenType file or one of the builtin names understood by the font
// loader.
type FontSpec struct {
	Source string  `yaml:"source"`
	Size   float64 `yaml:"size"`
}

// BubbleLayout holds the pixel constants of the note-bubble row.
type BubbleLayout struct {
	PadX    int `yaml:"pad_x"`
	PadY    int `yaml:"pad_y"`
	Spacing int `yaml:"spacing"`
	Radius  int `yaml:"radius"`
}

// Config is the single tunable record for the engine, watcher and renderer.
// Variants of the display only differ in these values.
type Config struct {
	Debounce      time.Duration `yaml:"debounce"`
	ReleaseWindow time.Duration `yaml:"release_window"`
	LatchDuration time.Duration `yaml:"latch_duration"`
	FlashDuration time.Duration `yaml:"flash_duration"`
	MaxBubbles    int           `yaml:"max_bubbles"`

	// ClearChordOnShort drops the last good chord label as soon as fewer
	// than three notes are held instead of persisting it.
	ClearChordOnShort bool `yaml:"clear_chord_on_short"`

	DeviceDisplayTime time.Duration `yaml:"device_display_time"`
	ScrollStartDelay  time.Duration `yaml:"scroll_start_delay"`
	ScrollEndHold     time.Duration `yaml:"scroll_end_hold"`
	MaxDeviceLines    int           `yaml:"max_device_lines"`
	DevicePoll        time.Duration `yaml:"device_poll"`
	TriggerPath       string        `yaml:"trigger_path"`
	ExcludedPorts     []string      `yaml:"excluded_ports"`

	RenderInterval time.Duration `yaml:"render_interval"`
	InputPoll      time.Duration `yaml:"input_poll"`

	Width        int                   `yaml:"width"`
	Height       int                   `yaml:"height"`
	OctaveOffset int                   `yaml:"octave_offset"`
	Bubble       BubbleLayout          `yaml:"bubble"`
	Fonts        map[FontRole]FontSpec `yaml:"fonts"`

	SerialDevice string `yaml:"serial_device"`
	SerialBaud   int    `yaml:"serial_baud"`
	PreviewScale int    `yaml:"preview_scale"`
}

// DefaultConfig returns the values used on the 128x64 panel.
func DefaultConfig() Config {
	return Config{
		Debounce:          25 * time.Millisecond,
		ReleaseWindow:     100 * time.Millisecond,
		LatchDuration:     2 * time.Second,
		FlashDuration:     300 * time.Millisecond,
		MaxBubbles:        5,
		DeviceDisplayTime: 6 * time.Second,
		ScrollStartDelay:  time.Second,
		ScrollEndHold:     time.Second,
		MaxDeviceLines:    5,
		DevicePoll:        time.Second,
		TriggerPath:       "/tmp/midihub_devices.trigger",
		ExcludedPorts:     []string{"Through"},
		RenderInterval:    40 * time.Millisecond,
		InputPoll:         5 * time.Millisecond,
		Width:             128,
		Height:            64,
		OctaveOffset:      -1,
		Bubble:            BubbleLayout{PadX: 2, PadY: 2, Spacing: 3, Radius: 5},
		Fonts: map[FontRole]FontSpec{
			FontLabel:  {Source: "builtin:gomono", Size: 11},
			FontValue:  {Source: "builtin:gomonobold", Size: 11},
			FontBubble: {Source: "builtin:gobold", Size: 14},
			FontDevice: {Source: "builtin:gomono", Size: 10},
		},
		SerialBaud:   500000,
		PreviewScale: 4,
	}
}

// LoadConfigFile overlays the YAML document at path onto cfg. Fields absent
// from the file keep their current values.
func LoadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %q: %w", path, err)
	}
	fonts := cfg.Fonts
	cfg.Fonts = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg.Fonts = fonts
		return fmt.Errorf("parse config %q: %w", path, err)
	}
	// Merge per role so a file overriding one font keeps the others.
	merged := make(map[FontRole]FontSpec, len(fonts))
	for role, spec := range fonts {
		merged[role] = spec
	}
	for role, spec := range cfg.Fonts {
		merged[role] = spec
	}
	cfg.Fonts = merged
	return nil
}

// Validate reports the first field that would break the engine or layout.
func (c Config) Validate() error {
	switch {
	case c.Debounce < 0:
		return fmt.Errorf("debounce must not be negative, got %s", c.Debounce)
	case c.ReleaseWindow <= 0:
		return fmt.Errorf("release window must be positive, got %s", c.ReleaseWindow)
	case c.LatchDuration < time.Millisecond:
		return fmt.Errorf("latch duration must be at least 1ms, got %s", c.LatchDuration)
	case c.FlashDuration <= 0:
		return fmt.Errorf("flash duration must be positive, got %s", c.FlashDuration)
	case c.MaxBubbles < 1:
		return fmt.Errorf("max bubbles must be at least 1, got %d", c.MaxBubbles)
	case c.MaxDeviceLines < 1:
		return fmt.Errorf("max device lines must be at least 1, got %d", c.MaxDeviceLines)
	case c.DeviceDisplayTime < c.ScrollStartDelay+c.ScrollEndHold:
		return fmt.Errorf("device display time %s shorter than scroll delay+hold", c.DeviceDisplayTime)
	case c.DevicePoll <= 0 || c.RenderInterval <= 0 || c.InputPoll <= 0:
		return fmt.Errorf("poll and render intervals must be positive")
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("display size must be positive, got %dx%d", c.Width, c.Height)
	}
	for _, role := range RequiredFontRoles {
		if _, ok := c.Fonts[role]; !ok {
			return fmt.Errorf("font role %q not configured", role)
		}
	}
	return nil
}
