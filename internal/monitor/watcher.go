package monitor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/xid"
)

// RevisionSource reports a marker that moves forward whenever the controller
// topology changes.
type RevisionSource interface {
	Revision() (time.Time, error)
}

// FileRevision uses the modification time of the hot-plug trigger file as
// the revision marker. A missing file reads as the zero time.
type FileRevision struct {
	Path string
}

func (f FileRevision) Revision() (time.Time, error) {
	fi, err := os.Stat(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("stat %q: %w", f.Path, err)
	}
	return fi.ModTime(), nil
}

// Subscription is an open input port delivering events.
type Subscription interface {
	Close() error
}

// PortDriver enumerates input ports and opens subscriptions on them.
// deliver may be called from any goroutine.
type PortDriver interface {
	ListInputs() ([]string, error)
	OpenInput(name string, deliver func(Event)) (Subscription, error)
}

type portSub struct {
	id  xid.ID
	sub Subscription
}

// Watcher detects controller hot-plug. On a revision change it
// re-enumerates ports, keeps one subscription per usable port and, when the
// visible device list differs, replaces it and opens the device overlay.
//
// Poll and Close must not be called concurrently.
type Watcher struct {
	cfg     Config
	state   *State
	driver  PortDriver
	source  RevisionSource
	deliver func(Event)

	Clock func() time.Time

	polled  bool
	lastRev time.Time
	names   []string
	subs    map[string]portSub
}

func NewWatcher(cfg Config, state *State, driver PortDriver, source RevisionSource, deliver func(Event)) *Watcher {
	return &Watcher{
		cfg:     cfg,
		state:   state,
		driver:  driver,
		source:  source,
		deliver: deliver,
		Clock:   time.Now,
		subs:    make(map[string]portSub),
	}
}

// Poll checks the revision marker once and reacts to a change.
func (w *Watcher) Poll(now time.Time) {
	rev, err := w.source.Revision()
	if err != nil {
		logger.Warn("watcher: revision check failed", "err", err)
		rev = w.lastRev
	}
	changed := !w.polled || !rev.Equal(w.lastRev)
	// With nothing subscribed keep enumerating so a controller present
	// before the trigger file existed is still picked up.
	if !changed && len(w.subs) > 0 {
		return
	}

	raw, err := w.driver.ListInputs()
	if err != nil {
		// The revision is not recorded, so the next poll enumerates again.
		logger.Error("watcher: list inputs failed", "err", err)
		return
	}
	w.polled = true
	w.lastRev = rev
	ports := FilterPorts(raw, w.cfg.ExcludedPorts)
	w.resubscribe(ports)

	names := DisplayNames(ports)
	if slices.Equal(names, w.names) {
		if changed {
			logger.Debug("watcher: revision changed, device list unchanged", "devices", len(names))
		}
		return
	}
	attrs := []any{"devices", strings.Join(names, ", "), "count", len(names)}
	if !rev.IsZero() {
		attrs = append(attrs, "revision", humanize.Time(rev))
	}
	logger.Info("watcher: device list changed", attrs...)

	w.names = names
	w.state.ShowDevices(DeviceList{Names: names, Revision: rev}, now)
}

// resubscribe closes subscriptions for ports that went away and opens the
// ones that are missing. A port that fails to open is skipped.
func (w *Watcher) resubscribe(ports []string) {
	for name, s := range w.subs {
		if slices.Contains(ports, name) {
			continue
		}
		if err := s.sub.Close(); err != nil {
			logger.Warn("watcher: close input failed", "device", name, "sub", s.id, "err", err)
		}
		delete(w.subs, name)
		logger.Info("watcher: unsubscribed", "device", name, "sub", s.id)
	}
	for _, name := range ports {
		if _, ok := w.subs[name]; ok {
			continue
		}
		sub, err := w.driver.OpenInput(name, w.deliver)
		if err != nil {
			logger.Error("watcher: open input failed, skipping", "device", name, "err", err)
			continue
		}
		s := portSub{id: xid.New(), sub: sub}
		w.subs[name] = s
		logger.Info("watcher: subscribed", "device", name, "sub", s.id)
	}
}

// Subscribed returns the names of the ports currently open.
func (w *Watcher) Subscribed() []string {
	names := make([]string, 0, len(w.subs))
	for name := range w.subs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Close releases every open subscription.
func (w *Watcher) Close() {
	for name, s := range w.subs {
		if err := s.sub.Close(); err != nil {
			logger.Warn("watcher: close input failed", "device", name, "err", err)
		}
		delete(w.subs, name)
	}
}

// Run polls at the configured cadence until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	w.Poll(w.Clock())
	t := time.NewTicker(w.cfg.DevicePoll)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			w.Poll(w.Clock())
		}
	}
}

// FilterPorts drops ports whose name contains any excluded pattern,
// ignoring case.
func FilterPorts(ports, excluded []string) []string {
	var out []string
	for _, name := range ports {
		skip := false
		for _, pat := range excluded {
			if containsCI(name, pat) {
				skip = true
				break
			}
		}
		if skip {
			logger.Debug("watcher: input excluded", "device", name)
			continue
		}
		out = append(out, name)
	}
	return out
}

// DisplayName shortens a raw port name: "Launchkey MK3:Launchkey MK3 MIDI 1 [24:0]"
// becomes "Launchkey MK3".
func DisplayName(port string) string {
	base, _, _ := strings.Cut(port, ":")
	base, _, _ = strings.Cut(base, "[")
	return strings.TrimSpace(base)
}

func DisplayNames(ports []string) []string {
	out := make([]string, 0, len(ports))
	for _, p := range ports {
		out = append(out, DisplayName(p))
	}
	return out
}

func containsCI(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
