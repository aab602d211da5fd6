package monitor

import (
	"context"
	"image"
	"strconv"
	"time"
)

// Color is a pixel intensity on the 1-bit panel.
type Color uint8

const (
	Black Color = 0
	White Color = 255
)

// Canvas is the draw surface the renderer emits primitives to. Text is
// positioned by the top-left corner of its measured box.
type Canvas interface {
	Clear()
	Text(x, y int, text string, role FontRole, c Color)
	Rect(r image.Rectangle, fill bool, c Color)
	RoundedRect(r image.Rectangle, radius int, fill bool, c Color)
	Measure(text string, role FontRole) (w, h int)
}

// Display is a Canvas whose content can be pushed to the panel.
type Display interface {
	Canvas
	Flush() error
}

const (
	placeholder   = "--"
	noDevicesText = "No MIDI devices"

	topRowPad = 2
	topRowSep = 4
	rowGap    = 2
	lineGap   = 2
)

var topRowLabels = [3]string{"CH", "CC", "VAL"}

// Renderer lays out one frame from a Snapshot. Widths come from the canvas
// measurements on every call since glyph widths vary.
type Renderer struct {
	cfg Config
}

func NewRenderer(cfg Config) *Renderer {
	return &Renderer{cfg: cfg}
}

// Render draws snap onto c. The canvas is expected to be cleared.
func (r *Renderer) Render(c Canvas, snap Snapshot) {
	if snap.ShowDevices {
		r.drawDevices(c, snap)
		return
	}
	topH := r.drawTopRow(c, snap)

	_, chordH := c.Measure("A", FontLabel)
	chordY := r.cfg.Height - chordH

	regionY := topH + rowGap
	regionH := max(0, chordY-rowGap-regionY)
	r.drawBubbles(c, snap.Bubbles, regionY, regionH)

	r.drawChord(c, snap.ChordLabel, chordY, snap.FlashChord)
}

func fieldText(v, base int) string {
	if v < 0 {
		return "-"
	}
	return strconv.Itoa(v + base)
}

// drawTopRow draws the CH/CC/VAL pairs centred as a group and returns the
// row height.
func (r *Renderer) drawTopRow(c Canvas, snap Snapshot) int {
	values := [3]string{
		fieldText(snap.Channel, 1),
		fieldText(snap.Controller, 0),
		fieldText(snap.Value, 0),
	}
	flashes := [3]bool{snap.FlashChannel, snap.FlashController, snap.FlashValue}

	var lw, lh, vw, vh [3]int
	rowH, total := 0, topRowSep*(len(values)-1)
	for i := range values {
		lw[i], lh[i] = c.Measure(topRowLabels[i], FontLabel)
		vw[i], vh[i] = c.Measure(values[i], FontValue)
		rowH = max(rowH, lh[i], vh[i])
		total += lw[i] + topRowPad + vw[i]
	}

	x := max(0, (r.cfg.Width-total)/2)
	for i := range values {
		c.Text(x, (rowH-lh[i])/2, topRowLabels[i], FontLabel, White)
		x += lw[i] + topRowPad
		vy := (rowH - vh[i]) / 2
		if flashes[i] {
			c.Rect(image.Rect(max(0, x-1), 0, x+vw[i]+1, rowH), true, White)
			c.Text(x, vy, values[i], FontValue, Black)
		} else {
			c.Text(x, vy, values[i], FontValue, White)
		}
		x += vw[i] + topRowSep
	}
	return rowH
}

func (r *Renderer) drawBubbles(c Canvas, bubbles []Bubble, regionY, regionH int) {
	if len(bubbles) == 0 {
		w, h := c.Measure(placeholder, FontBubble)
		c.Text(max(0, (r.cfg.Width-w)/2), regionY+(regionH-h)/2, placeholder, FontBubble, White)
		return
	}

	l := r.cfg.Bubble
	names := make([]string, len(bubbles))
	widths := make([]int, len(bubbles))
	textH, total := 0, l.Spacing*(len(bubbles)-1)
	for i, b := range bubbles {
		names[i] = NoteName(b.Note, r.cfg.OctaveOffset)
		w, h := c.Measure(names[i], FontBubble)
		widths[i] = w + 2*l.PadX
		textH = max(textH, h)
		total += widths[i]
	}
	bubbleH := textH + 2*l.PadY

	x := max(0, (r.cfg.Width-total)/2)
	y := regionY + (regionH-bubbleH)/2
	for i, b := range bubbles {
		box := image.Rect(x, y, x+widths[i], y+bubbleH)
		tw, th := c.Measure(names[i], FontBubble)
		tx := x + (widths[i]-tw)/2
		ty := y + (bubbleH-th)/2
		if b.Held {
			c.RoundedRect(box, l.Radius, true, White)
			c.Text(tx, ty, names[i], FontBubble, Black)
		} else {
			c.RoundedRect(box, l.Radius, false, White)
			c.Text(tx, ty, names[i], FontBubble, White)
		}
		x += widths[i] + l.Spacing
	}
}

func (r *Renderer) drawChord(c Canvas, label string, y int, flash bool) {
	if label == "" {
		return
	}
	w, h := c.Measure(label, FontLabel)
	x := max(0, (r.cfg.Width-w)/2)
	if flash {
		c.Rect(image.Rect(max(0, x-1), y, x+w+1, y+h), true, White)
		c.Text(x, y, label, FontLabel, Black)
		return
	}
	c.Text(x, y, label, FontLabel, White)
}

func (r *Renderer) drawDevices(c Canvas, snap Snapshot) {
	_, th := c.Measure("A", FontDevice)
	if len(snap.Devices) == 0 {
		c.Text(0, 0, noDevicesText, FontDevice, White)
		return
	}
	s := DeviceScroll(r.cfg, len(snap.Devices), th+lineGap, r.cfg.Height, snap.DevicesElapsed)
	for i, name := range snap.Devices {
		if s.Visible(i) {
			c.Text(0, s.Y(i), name, FontDevice, White)
		}
	}
}

// Run redraws the display from state every render interval until ctx is
// done. A failed flush is logged and retried on the next tick.
func (r *Renderer) Run(ctx context.Context, state *State, d Display, clock func() time.Time) {
	if clock == nil {
		clock = time.Now
	}
	t := time.NewTicker(r.cfg.RenderInterval)
	defer t.Stop()
	failing := false
	for {
		d.Clear()
		r.Render(d, state.Snapshot(clock()))
		if err := d.Flush(); err != nil {
			if !failing {
				logger.Error("render: flush failed", "err", err)
			}
			failing = true
		} else if failing {
			logger.Info("render: flush recovered")
			failing = false
		}

		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
