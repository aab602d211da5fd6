package monitor

import (
	"context"
	"sort"
	"time"

	"golang.org/x/time/rate"
)

// Engine turns accepted controller events into display state: it debounces
// each logical input, tracks the held/released/latched note lifecycle and
// keeps the chord and top-row fields current.
//
// Ingest and Tick must be called from a single goroutine (the input worker);
// the State they write to is safe for concurrent readers.
type Engine struct {
	cfg        Config
	state      *State
	classifier Classifier

	// Clock is used by Run; tests call Ingest with explicit times instead.
	Clock func() time.Time

	limiters map[string]*rate.Limiter
}

func NewEngine(cfg Config, state *State, classifier Classifier) *Engine {
	if classifier == nil {
		classifier = TemplateClassifier{}
	}
	return &Engine{
		cfg:        cfg,
		state:      state,
		classifier: classifier,
		Clock:      time.Now,
		limiters:   make(map[string]*rate.Limiter),
	}
}

// Ingest applies ev as observed at now and reports whether it was accepted.
func (e *Engine) Ingest(ev Event, now time.Time) bool {
	if ev.Kind == KindNoteOn && ev.Velocity == 0 {
		ev = NoteOff(ev.Channel, ev.Note)
	}
	if ev.Kind == KindClock {
		return false
	}
	if !ev.valid() {
		logger.Debug("engine: dropping malformed event", "event", ev.String())
		return false
	}
	if ev.Kind == KindNoteOff && !e.state.isHeld(ev.Note) {
		logger.Debug("engine: note off for a note not held, ignoring", "note", ev.Note)
		return false
	}
	if !e.allow(ev.debounceKey(), now) {
		logger.Debug("engine: debounced", "event", ev.String())
		return false
	}

	e.state.update(func(d *displayData) {
		switch ev.Kind {
		case KindNoteOn:
			e.noteOn(d, ev, now)
		case KindNoteOff:
			e.noteOff(d, ev, now)
		case KindControlChange:
			e.controlChange(d, ev, now)
		}
	})
	return true
}

// allow implements the per-identity minimum interval: a limiter with a
// burst of one refills exactly one debounce interval after the last
// accepted event.
func (e *Engine) allow(key string, now time.Time) bool {
	if e.cfg.Debounce <= 0 {
		return true
	}
	lim, ok := e.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(e.cfg.Debounce), 1)
		e.limiters[key] = lim
	}
	return lim.AllowN(now, 1)
}

func (e *Engine) noteOn(d *displayData, ev Event, now time.Time) {
	e.setChannel(d, ev.Channel, now)

	// A new press supersedes whatever was latched.
	d.latched = nil
	d.chord = nil

	delete(d.releases, ev.Note)
	if _, ok := d.held[ev.Note]; !ok {
		d.held[ev.Note] = now
	}
	d.session[ev.Note] = struct{}{}
	logger.Debug("engine: note held", "note", NoteName(ev.Note, e.cfg.OctaveOffset), "held", len(d.held))

	e.evaluate(d, now)
	e.evict(d, now)
}

func (e *Engine) noteOff(d *displayData, ev Event, now time.Time) {
	if _, ok := d.held[ev.Note]; !ok {
		return
	}
	e.setChannel(d, ev.Channel, now)
	delete(d.held, ev.Note)
	d.releases[ev.Note] = now

	kept := d.latched[:0]
	for _, ln := range d.latched {
		if ln.note != ev.Note {
			kept = append(kept, ln)
		}
	}
	d.latched = append(kept, latchedNote{note: ev.Note, at: now})

	e.evaluate(d, now)
	if len(d.held) == 0 {
		e.latchReleaseGroup(d, now)
	}
	e.evict(d, now)
}

func (e *Engine) controlChange(d *displayData, ev Event, now time.Time) {
	e.setChannel(d, ev.Channel, now)
	if d.controller != ev.Controller {
		d.flash.Arm(FlashController, now, e.cfg.FlashDuration)
	}
	if d.value != ev.Value {
		d.flash.Arm(FlashValue, now, e.cfg.FlashDuration)
	}
	d.controller = ev.Controller
	d.value = ev.Value
}

func (e *Engine) setChannel(d *displayData, ch int, now time.Time) {
	if d.channel != ch {
		d.flash.Arm(FlashChannel, now, e.cfg.FlashDuration)
		d.channel = ch
	}
}

// evaluate re-runs classification over the held notes. Sizes outside 3..6
// clear the current evaluation; the last good label stays unless the
// strict variant is configured.
func (e *Engine) evaluate(d *displayData, now time.Time) {
	n := len(d.held)
	if n < 3 || n > 6 {
		d.current = Unrecognized
		if n < 3 && e.cfg.ClearChordOnShort {
			d.lastGood = ""
		}
		return
	}
	d.current = safeClassify(e.classifier, sortedKeys(d.held))
	if d.current.Recognized {
		e.recordLabel(d, d.current.Label, now)
	}
}

func (e *Engine) recordLabel(d *displayData, label string, now time.Time) {
	if label == d.lastGood {
		return
	}
	d.lastGood = label
	d.flash.Arm(FlashChord, now, e.cfg.FlashDuration)
}

// latchReleaseGroup runs when the held set has just become empty. The notes
// of this press session whose release falls inside the coincidence window
// of the final release form the release group.
func (e *Engine) latchReleaseGroup(d *displayData, now time.Time) {
	var group []int
	for n := range d.session {
		if at, ok := d.releases[n]; ok && now.Sub(at) <= e.cfg.ReleaseWindow {
			group = append(group, n)
		}
	}
	d.session = make(map[int]struct{})
	if len(group) == 0 {
		return
	}
	sort.Ints(group)

	res := Unrecognized
	if len(group) >= 3 && len(group) <= 6 {
		res = safeClassify(e.classifier, group)
	}
	d.chord = &LatchedChord{Notes: group, Result: res, At: now}
	if res.Recognized {
		e.recordLabel(d, res.Label, now)
	}
	logger.Info("engine: release group latched", "notes", group, "chord", res.Label)
}

// evict drops the oldest latched notes until held plus latched fits the
// bubble row. Held notes are never evicted.
func (e *Engine) evict(d *displayData, now time.Time) {
	e.pruneLatched(d, now)
	for len(d.latched) > 0 && len(d.held)+len(d.latched) > e.cfg.MaxBubbles {
		logger.Debug("engine: evicting latched note", "note", d.latched[0].note)
		d.latched = d.latched[1:]
	}
}

func (e *Engine) pruneLatched(d *displayData, now time.Time) {
	kept := d.latched[:0]
	for _, ln := range d.latched {
		if now.Sub(ln.at) < e.cfg.LatchDuration {
			kept = append(kept, ln)
		}
	}
	d.latched = kept
}

// Tick drops release records, latched notes and the latched chord once
// they are past the latch lifetime.
func (e *Engine) Tick(now time.Time) {
	e.state.update(func(d *displayData) {
		for n, at := range d.releases {
			if now.Sub(at) >= e.cfg.LatchDuration {
				delete(d.releases, n)
			}
		}
		e.pruneLatched(d, now)
		if d.chord != nil && now.Sub(d.chord.At) >= e.cfg.LatchDuration {
			d.chord = nil
		}
	})
}

const minPruneInterval = time.Millisecond

// Run is the input worker. It blocks until events arrive, drains everything
// pending, then sleeps one input poll interval before waiting again.
func (e *Engine) Run(ctx context.Context, inbox *Inbox) {
	prune := time.NewTicker(max(e.cfg.LatchDuration/4, minPruneInterval))
	defer prune.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-prune.C:
			e.Tick(e.Clock())
			continue
		case ev := <-inbox.events:
			e.Ingest(ev, e.Clock())
		}

		n := inbox.drain(func(ev Event) { e.Ingest(ev, e.Clock()) })
		if n > 0 {
			logger.Debug("engine: drained pending events", "count", n)
		}

		t := time.NewTimer(e.cfg.InputPoll)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
}

// Inbox buffers events from port callbacks until the input worker drains
// them. Push never blocks; when the buffer is full the event is dropped.
type Inbox struct {
	events chan Event
}

func NewInbox(size int) *Inbox {
	return &Inbox{events: make(chan Event, size)}
}

// Push queues ev and reports false if the buffer was full.
func (b *Inbox) Push(ev Event) bool {
	select {
	case b.events <- ev:
		return true
	default:
		logger.Warn("engine: inbox full, dropping event", "event", ev.String())
		return false
	}
}

func (b *Inbox) drain(fn func(Event)) int {
	n := 0
	for {
		select {
		case ev := <-b.events:
			fn(ev)
			n++
		default:
			return n
		}
	}
}
