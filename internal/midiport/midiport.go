// Package midiport adapts gomidi drivers to the monitor's port boundary:
// enumerating input ports, listening on them and translating messages into
// monitor events.
package midiport

import (
	"fmt"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/midihub/midioled/internal/monitor"
)

// Driver enumerates and opens input ports through a gomidi driver.
type Driver struct {
	drv drivers.Driver
}

func New(drv drivers.Driver) *Driver {
	return &Driver{drv: drv}
}

// ListInputs returns the names of every input port, unfiltered.
func (d *Driver) ListInputs() ([]string, error) {
	ins, err := d.drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("midiport: list inputs: %w", err)
	}
	names := make([]string, 0, len(ins))
	for _, in := range ins {
		names = append(names, in.String())
	}
	logger.Debug("midiport: inputs found", "count", len(names), "devices", strings.Join(names, ", "))
	return names, nil
}

// OpenInput opens the port called name and calls deliver for every message
// that translates into an event. deliver runs on the driver's goroutine.
func (d *Driver) OpenInput(name string, deliver func(monitor.Event)) (monitor.Subscription, error) {
	ins, err := d.drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("midiport: list inputs: %w", err)
	}
	var found drivers.In
	for _, in := range ins {
		if in.String() == name {
			found = in
			break
		}
	}
	if found == nil {
		return nil, fmt.Errorf("midiport: input %q not found", name)
	}
	if err := found.Open(); err != nil {
		return nil, fmt.Errorf("midiport: open %q: %w", name, err)
	}

	stop, err := midi.ListenTo(found, func(msg midi.Message, _ int32) {
		if ev, ok := Translate(msg); ok {
			deliver(ev)
			return
		}
		logger.Debug("midiport: unhandled message", "device", name, "msg", msg.String())
	}, midi.HandleError(func(listenErr error) {
		// The watcher closes this subscription once the port disappears
		// from the enumeration.
		logger.Warn("midiport: listener error", "device", name, "err", listenErr)
	}))
	if err != nil {
		_ = found.Close()
		return nil, fmt.Errorf("midiport: listen %q: %w", name, err)
	}
	return &subscription{in: found, stop: stop}, nil
}

// Close shuts down the underlying driver.
func (d *Driver) Close() error {
	return d.drv.Close()
}

type subscription struct {
	in   drivers.In
	stop func()
}

func (s *subscription) Close() error {
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
	return s.in.Close()
}

// Translate converts a raw message into a monitor event. Note-on with zero
// velocity arrives as a note-off. Messages the monitor does not track
// report false.
func Translate(msg midi.Message) (monitor.Event, bool) {
	var ch, key, vel, cc, val uint8
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		return monitor.NoteOn(int(ch), int(key), int(vel)), true
	case msg.GetNoteEnd(&ch, &key):
		return monitor.NoteOff(int(ch), int(key)), true
	case msg.GetControlChange(&ch, &cc, &val):
		return monitor.ControlChange(int(ch), int(cc), int(val)), true
	case msg.Is(midi.TimingClockMsg):
		return monitor.Clock(), true
	}
	return monitor.Event{}, false
}
