package oled

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/midihub/midioled/internal/monitor"
)

// FrameCanvas draws into an in-memory grayscale framebuffer the size of the
// panel. Anything at or above mid-gray is lit once the frame is packed.
type FrameCanvas struct {
	img   *image.Gray
	fonts Fonts
}

// NewFrameCanvas checks that every required role has a face.
func NewFrameCanvas(width, height int, fonts Fonts) (*FrameCanvas, error) {
	for _, role := range monitor.RequiredFontRoles {
		if fonts[role] == nil {
			return nil, fmt.Errorf("canvas: no face for font role %q", role)
		}
	}
	return &FrameCanvas{
		img:   image.NewGray(image.Rect(0, 0, width, height)),
		fonts: fonts,
	}, nil
}

// Image exposes the framebuffer. It is overwritten by the next frame.
func (c *FrameCanvas) Image() *image.Gray { return c.img }

func uniform(col monitor.Color) *image.Uniform {
	return image.NewUniform(color.Gray{Y: uint8(col)})
}

func (c *FrameCanvas) Clear() {
	draw.Draw(c.img, c.img.Bounds(), uniform(monitor.Black), image.Point{}, draw.Src)
}

func (c *FrameCanvas) Measure(text string, role monitor.FontRole) (int, int) {
	face := c.fonts[role]
	m := face.Metrics()
	return font.MeasureString(face, text).Ceil(), (m.Ascent + m.Descent).Ceil()
}

func (c *FrameCanvas) Text(x, y int, text string, role monitor.FontRole, col monitor.Color) {
	face := c.fonts[role]
	d := font.Drawer{
		Dst:  c.img,
		Src:  uniform(col),
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}

func (c *FrameCanvas) Rect(r image.Rectangle, fill bool, col monitor.Color) {
	r = r.Canon().Intersect(c.img.Bounds())
	if r.Empty() {
		return
	}
	src := uniform(col)
	if fill {
		draw.Draw(c.img, r, src, image.Point{}, draw.Src)
		return
	}
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1),
		image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y),
		image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(c.img, e, src, image.Point{}, draw.Src)
	}
}

// RoundedRect fills the rounded box with col; an outlined box is the filled
// box with its one-pixel inset cleared back to black.
func (c *FrameCanvas) RoundedRect(r image.Rectangle, radius int, fill bool, col monitor.Color) {
	r = r.Canon().Intersect(c.img.Bounds())
	if r.Empty() {
		return
	}
	c.fillRounded(r, radius, uniform(col))
	if !fill {
		if inner := r.Inset(1); !inner.Empty() {
			c.fillRounded(inner, radius-1, uniform(monitor.Black))
		}
	}
}

func (c *FrameCanvas) fillRounded(r image.Rectangle, radius int, src image.Image) {
	b := c.img.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())

	rad := float32(max(0, min(radius, r.Dx()/2, r.Dy()/2)))
	x0, y0 := float32(r.Min.X-b.Min.X), float32(r.Min.Y-b.Min.Y)
	x1, y1 := float32(r.Max.X-b.Min.X), float32(r.Max.Y-b.Min.Y)

	z.MoveTo(x0+rad, y0)
	z.LineTo(x1-rad, y0)
	z.QuadTo(x1, y0, x1, y0+rad)
	z.LineTo(x1, y1-rad)
	z.QuadTo(x1, y1, x1-rad, y1)
	z.LineTo(x0+rad, y1)
	z.QuadTo(x0, y1, x0, y1-rad)
	z.LineTo(x0, y0+rad)
	z.QuadTo(x0, y0, x0+rad, y0)
	z.ClosePath()
	z.Draw(c.img, b, src, image.Point{})
}
