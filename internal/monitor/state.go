package monitor

import (
	"sort"
	"sync"
	"time"
)

// LatchedChord is the note set captured when the last key of a release group
// went up, with its classification at that moment.
type LatchedChord struct {
	Notes  []int
	Result ChordResult
	At     time.Time
}

// DeviceList is the filtered set of connected controllers. It is only ever
// replaced wholesale.
type DeviceList struct {
	Names    []string
	Revision time.Time
}

type latchedNote struct {
	note int
	at   time.Time
}

// displayData is the compound value behind State. It is only touched with
// State.mu held.
type displayData struct {
	held     map[int]time.Time
	releases map[int]time.Time
	// Notes pressed since the held set was last empty.
	session map[int]struct{}
	latched []latchedNote

	chord    *LatchedChord
	current  ChordResult
	lastGood string

	channel    int
	controller int
	value      int

	flash *FlashTracker

	devices        DeviceList
	showDevices    bool
	devicesShownAt time.Time
}

// State is the process-wide display state shared by the input worker, the
// device watcher and the renderer. Writers go through update so a compound
// change is applied as one transaction; the renderer only sees copies.
type State struct {
	cfg Config

	mu   sync.Mutex
	data displayData
}

func NewState(cfg Config) *State {
	return &State{
		cfg: cfg,
		data: displayData{
			held:       make(map[int]time.Time),
			releases:   make(map[int]time.Time),
			session:    make(map[int]struct{}),
			channel:    -1,
			controller: -1,
			value:      -1,
			flash:      NewFlashTracker(),
		},
	}
}

func (s *State) update(fn func(d *displayData)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.data)
}

// Bubble is one note shown in the bubble row.
type Bubble struct {
	Note int
	Held bool
}

// Snapshot is a self-contained copy of everything the renderer draws.
type Snapshot struct {
	At time.Time

	// -1 when never observed. Channel is zero-based.
	Channel    int
	Controller int
	Value      int

	FlashChannel    bool
	FlashController bool
	FlashValue      bool
	FlashChord      bool

	Held       []int
	Bubbles    []Bubble
	Chord      *LatchedChord
	ChordLabel string

	ShowDevices    bool
	Devices        []string
	DevicesElapsed time.Duration
}

// Snapshot copies the state as it should appear at now.
func (s *State) Snapshot(now time.Time) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := &s.data

	snap := Snapshot{
		At:              now,
		Channel:         d.channel,
		Controller:      d.controller,
		Value:           d.value,
		FlashChannel:    d.flash.IsActive(FlashChannel, now),
		FlashController: d.flash.IsActive(FlashController, now),
		FlashValue:      d.flash.IsActive(FlashValue, now),
		FlashChord:      d.flash.IsActive(FlashChord, now),
		Held:            sortedKeys(d.held),
	}

	var shown []Bubble
	for _, n := range snap.Held {
		shown = append(shown, Bubble{Note: n, Held: true})
	}
	for _, ln := range d.latched {
		if _, held := d.held[ln.note]; held || !s.latchLive(ln.at, now) {
			continue
		}
		shown = append(shown, Bubble{Note: ln.note})
	}
	sort.Slice(shown, func(i, j int) bool { return shown[i].Note < shown[j].Note })
	if len(shown) > s.cfg.MaxBubbles {
		shown = shown[:s.cfg.MaxBubbles]
	}
	snap.Bubbles = shown

	if d.chord != nil && s.latchLive(d.chord.At, now) {
		c := *d.chord
		c.Notes = append([]int(nil), d.chord.Notes...)
		snap.Chord = &c
	}

	switch {
	case d.current.Recognized:
		snap.ChordLabel = d.current.Label
	case snap.Chord != nil && snap.Chord.Result.Recognized:
		snap.ChordLabel = snap.Chord.Result.Label
	default:
		snap.ChordLabel = d.lastGood
	}

	if d.showDevices && now.Before(d.devicesShownAt.Add(s.cfg.DeviceDisplayTime)) {
		snap.ShowDevices = true
		snap.Devices = append([]string(nil), d.devices.Names...)
		snap.DevicesElapsed = now.Sub(d.devicesShownAt)
	}
	return snap
}

// Devices returns a copy of the current device list.
func (s *State) Devices() DeviceList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return DeviceList{
		Names:    append([]string(nil), s.data.devices.Names...),
		Revision: s.data.devices.Revision,
	}
}

// ShowDevices replaces the device list and enters device-overlay mode.
func (s *State) ShowDevices(list DeviceList, now time.Time) {
	s.update(func(d *displayData) {
		d.devices = DeviceList{
			Names:    append([]string(nil), list.Names...),
			Revision: list.Revision,
		}
		d.showDevices = true
		d.devicesShownAt = now
	})
}

func (s *State) isHeld(note int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data.held[note]
	return ok
}

func (s *State) latchLive(at, now time.Time) bool {
	return now.Before(at.Add(s.cfg.LatchDuration))
}

func sortedKeys[V any](m map[int]V) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
