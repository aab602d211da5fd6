package oled

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/basicfont"

	"github.com/midihub/midioled/internal/monitor"
)

func basicFonts() Fonts {
	fonts := Fonts{}
	for _, role := range monitor.RequiredFontRoles {
		fonts[role] = basicfont.Face7x13
	}
	return fonts
}

func newTestCanvas(t *testing.T) *FrameCanvas {
	c, err := NewFrameCanvas(128, 64, basicFonts())
	require.NoError(t, err)
	return c
}

func lit(c *FrameCanvas, x, y int) bool {
	return c.Image().GrayAt(x, y).Y >= litThreshold
}

func litIn(c *FrameCanvas, r image.Rectangle) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if lit(c, x, y) {
				n++
			}
		}
	}
	return n
}

func TestNewFrameCanvasNeedsEveryRole(t *testing.T) {
	fonts := basicFonts()
	delete(fonts, monitor.FontDevice)
	_, err := NewFrameCanvas(128, 64, fonts)
	require.ErrorContains(t, err, "device")
}

func TestMeasure(t *testing.T) {
	c := newTestCanvas(t)
	w, h := c.Measure("AB", monitor.FontLabel)
	require.Equal(t, 14, w)
	require.Equal(t, 13, h)
}

func TestTextDrawsInsideItsBox(t *testing.T) {
	c := newTestCanvas(t)
	c.Text(10, 20, "C3", monitor.FontBubble, monitor.White)

	require.Positive(t, litIn(c, image.Rect(10, 20, 24, 33)))
	require.Equal(t, litIn(c, c.Image().Bounds()), litIn(c, image.Rect(10, 20, 24, 33)))

	c.Clear()
	require.Zero(t, litIn(c, c.Image().Bounds()))
}

func TestRectOutline(t *testing.T) {
	c := newTestCanvas(t)
	c.Rect(image.Rect(0, 0, 10, 10), false, monitor.White)
	require.True(t, lit(c, 0, 0))
	require.True(t, lit(c, 9, 9))
	require.False(t, lit(c, 5, 5))

	c.Rect(image.Rect(120, 60, 140, 80), true, monitor.White)
	require.True(t, lit(c, 127, 63))
}

func TestRoundedRect(t *testing.T) {
	c := newTestCanvas(t)
	box := image.Rect(10, 10, 30, 24)

	c.RoundedRect(box, 3, true, monitor.White)
	require.True(t, lit(c, 20, 17))
	require.True(t, lit(c, 20, 10))
	require.False(t, lit(c, 10, 10))
	require.False(t, lit(c, 9, 17))

	c.Clear()
	c.RoundedRect(box, 3, false, monitor.White)
	require.True(t, lit(c, 20, 10))
	require.True(t, lit(c, 10, 17))
	require.False(t, lit(c, 20, 17))
}

type fakeSink struct {
	frames int
	err    error
}

func (s *fakeSink) Show(*image.Gray) error {
	s.frames++
	return s.err
}

func TestPanelFlushReachesEverySink(t *testing.T) {
	broken := &fakeSink{err: errors.New("write: broken pipe")}
	ok := &fakeSink{}
	p := NewPanel(newTestCanvas(t), broken, ok)

	require.ErrorContains(t, p.Flush(), "broken pipe")
	require.Equal(t, 1, broken.frames)
	require.Equal(t, 1, ok.frames)

	require.NoError(t, NewPanel(newTestCanvas(t)).Flush())
}
