package monitor

import (
	"image"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type drawOp struct {
	kind  string
	x, y  int
	text  string
	role  FontRole
	color Color
	rect  image.Rectangle
	fill  bool
}

// recordingCanvas measures glyphs with fixed per-role sizes and records
// every primitive.
type recordingCanvas struct {
	ops []drawOp
}

var glyphSize = map[FontRole][2]int{
	FontLabel:  {6, 10},
	FontValue:  {6, 10},
	FontBubble: {8, 12},
	FontDevice: {6, 10},
}

func (c *recordingCanvas) Clear() { c.ops = nil }

func (c *recordingCanvas) Text(x, y int, text string, role FontRole, col Color) {
	c.ops = append(c.ops, drawOp{kind: "text", x: x, y: y, text: text, role: role, color: col})
}

func (c *recordingCanvas) Rect(r image.Rectangle, fill bool, col Color) {
	c.ops = append(c.ops, drawOp{kind: "rect", rect: r, fill: fill, color: col})
}

func (c *recordingCanvas) RoundedRect(r image.Rectangle, _ int, fill bool, col Color) {
	c.ops = append(c.ops, drawOp{kind: "rrect", rect: r, fill: fill, color: col})
}

func (c *recordingCanvas) Measure(text string, role FontRole) (int, int) {
	g := glyphSize[role]
	return g[0] * len([]rune(text)), g[1]
}

func (c *recordingCanvas) texts() []drawOp {
	var out []drawOp
	for _, op := range c.ops {
		if op.kind == "text" {
			out = append(out, op)
		}
	}
	return out
}

func (c *recordingCanvas) find(text string) (drawOp, int, bool) {
	for i, op := range c.ops {
		if op.kind == "text" && op.text == text {
			return op, i, true
		}
	}
	return drawOp{}, -1, false
}

func render(cfg Config, snap Snapshot) *recordingCanvas {
	c := &recordingCanvas{}
	NewRenderer(cfg).Render(c, snap)
	return c
}

func TestRenderIdle(t *testing.T) {
	cfg := DefaultConfig()
	c := render(cfg, NewState(cfg).Snapshot(t0))

	texts := c.texts()
	require.Equal(t, "CH", texts[0].text)
	// CH(12)+2+"-"(6), CC(12)+2+6, VAL(18)+2+6 and two separators of 4.
	require.Equal(t, (128-74)/2, texts[0].x)
	require.Equal(t, "-", texts[1].text)

	dash, _, ok := c.find(placeholder)
	require.True(t, ok)
	require.Equal(t, (128-16)/2, dash.x)
	require.Equal(t, FontBubble, dash.role)

	for _, op := range c.ops {
		require.NotEqual(t, "rrect", op.kind)
	}
}

func TestRenderTopRowFlashInverts(t *testing.T) {
	cfg := DefaultConfig()
	c := render(cfg, Snapshot{Channel: 0, Controller: 74, Value: 127, FlashValue: true})

	ch, _, ok := c.find("1")
	require.True(t, ok)
	require.Equal(t, White, ch.color)

	cc, _, ok := c.find("74")
	require.True(t, ok)
	require.Equal(t, White, cc.color)

	val, i, ok := c.find("127")
	require.True(t, ok)
	require.Equal(t, Black, val.color)
	bg := c.ops[i-1]
	require.Equal(t, "rect", bg.kind)
	require.True(t, bg.fill)
	require.True(t, image.Pt(val.x, val.y).In(bg.rect))
}

func TestRenderBubblesInvertHeld(t *testing.T) {
	cfg := DefaultConfig()
	c := render(cfg, Snapshot{
		Channel: -1, Controller: -1, Value: -1,
		Bubbles: []Bubble{{Note: 60, Held: true}, {Note: 64}},
	})

	var boxes []drawOp
	for _, op := range c.ops {
		if op.kind == "rrect" {
			boxes = append(boxes, op)
		}
	}
	require.Len(t, boxes, 2)
	require.True(t, boxes[0].fill)
	require.False(t, boxes[1].fill)

	c3, _, _ := c.find("C3")
	require.Equal(t, Black, c3.color)
	e3, _, _ := c.find("E3")
	require.Equal(t, White, e3.color)

	// Two bubbles of 16+4 wide with one gap of 3, centred.
	require.Equal(t, (128-43)/2, boxes[0].rect.Min.X)
	require.Equal(t, boxes[0].rect.Max.X+cfg.Bubble.Spacing, boxes[1].rect.Min.X)
	_, _, ok := c.find(placeholder)
	require.False(t, ok)
}

func TestRenderBubblesNeverNegativeX(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width = 40
	var bubbles []Bubble
	for n := 60; n < 66; n++ {
		bubbles = append(bubbles, Bubble{Note: n, Held: n%2 == 0})
	}
	c := render(cfg, Snapshot{Channel: -1, Controller: -1, Value: -1, Bubbles: bubbles})
	for _, op := range c.ops {
		require.GreaterOrEqual(t, op.x, 0)
		require.GreaterOrEqual(t, op.rect.Min.X, 0)
	}
}

func TestRenderChordRow(t *testing.T) {
	cfg := DefaultConfig()
	c := render(cfg, Snapshot{Channel: -1, Controller: -1, Value: -1, ChordLabel: "CMajor"})

	chord, _, ok := c.find("CMajor")
	require.True(t, ok)
	require.Equal(t, cfg.Height-10, chord.y)
	require.Equal(t, (128-36)/2, chord.x)
	require.Equal(t, White, chord.color)

	c = render(cfg, Snapshot{Channel: -1, Controller: -1, Value: -1, ChordLabel: "CMajor", FlashChord: true})
	chord, i, _ := c.find("CMajor")
	require.Equal(t, Black, chord.color)
	require.Equal(t, "rect", c.ops[i-1].kind)
}

func TestRenderEmptyDeviceList(t *testing.T) {
	cfg := DefaultConfig()
	c := render(cfg, Snapshot{ShowDevices: true})
	_, _, ok := c.find(noDevicesText)
	require.True(t, ok)
}

// The list grows from 2 to 7 entries while the overlay is up. Over the
// display time every name must be fully visible at some tick, in
// enumeration order, with the first and last pages held still.
func TestRenderDeviceOverlayScrollsThroughList(t *testing.T) {
	cfg := DefaultConfig()
	st := NewState(cfg)
	st.ShowDevices(DeviceList{Names: []string{"Launchkey MK3", "nanoKONTROL2"}}, t0)

	names := []string{"Launchkey MK3", "nanoKONTROL2", "MPK mini 3", "Digitone", "TR-8S", "Minilogue xd", "Arturia BeatStep"}
	start := t0.Add(time.Second)
	st.ShowDevices(DeviceList{Names: names}, start)

	const lineH = 12 // device glyph height + gap
	view := cfg.MaxDeviceLines * lineH

	var seen []string
	topAt := map[time.Duration]int{}
	for e := time.Duration(0); e < cfg.DeviceDisplayTime; e += cfg.RenderInterval {
		snap := st.Snapshot(start.Add(e))
		require.True(t, snap.ShowDevices)
		c := render(cfg, snap)
		texts := c.texts()
		require.NotEmpty(t, texts)
		topAt[e] = texts[0].y - slices.Index(names, texts[0].text)*lineH
		for _, op := range texts {
			if op.y >= 0 && op.y+lineH <= view && !slices.Contains(seen, op.text) {
				seen = append(seen, op.text)
			}
		}
	}
	require.Equal(t, names, seen)

	// topAt holds minus the scroll offset.
	require.Equal(t, 0, topAt[0])
	require.Equal(t, 0, topAt[960*time.Millisecond])
	require.Equal(t, -(7*lineH - view), topAt[5040*time.Millisecond])
	require.Equal(t, -(7*lineH - view), topAt[5960*time.Millisecond])

	require.False(t, st.Snapshot(start.Add(cfg.DeviceDisplayTime)).ShowDevices)
}
