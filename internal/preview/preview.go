// Package preview mirrors the panel framebuffer into a desktop window so the
// layout can be checked without the hardware attached.
package preview

import (
	"context"
	"image"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

// Window is an ebiten game that shows the latest frame, scaled up. It is
// also an oled.Sink.
type Window struct {
	ctx    context.Context
	width  int
	height int

	mu  sync.Mutex
	pix []byte

	img *ebiten.Image
}

func New(ctx context.Context, width, height int) *Window {
	return &Window{
		ctx:    ctx,
		width:  width,
		height: height,
		pix:    make([]byte, width*height*4),
	}
}

// Show copies img into the pending RGBA buffer. Called from the render
// worker; Draw picks it up on the ebiten goroutine.
func (w *Window) Show(img *image.Gray) error {
	b := img.Bounds()
	w.mu.Lock()
	defer w.mu.Unlock()
	for y := 0; y < w.height && y < b.Dy(); y++ {
		for x := 0; x < w.width && x < b.Dx(); x++ {
			v := img.GrayAt(b.Min.X+x, b.Min.Y+y).Y
			i := (y*w.width + x) * 4
			w.pix[i], w.pix[i+1], w.pix[i+2], w.pix[i+3] = v, v, v, 0xff
		}
	}
	return nil
}

func (w *Window) Update() error {
	if w.ctx.Err() != nil {
		return ebiten.Termination
	}
	return nil
}

func (w *Window) Draw(screen *ebiten.Image) {
	if w.img == nil {
		w.img = ebiten.NewImage(w.width, w.height)
	}
	w.mu.Lock()
	w.img.WritePixels(w.pix)
	w.mu.Unlock()
	screen.DrawImage(w.img, nil)
}

func (w *Window) Layout(_, _ int) (int, int) {
	return w.width, w.height
}

// Run opens the window and blocks until it is closed or ctx is done. It
// must be called from the main goroutine.
func (w *Window) Run(scale int) error {
	ebiten.SetWindowSize(w.width*max(1, scale), w.height*max(1, scale))
	ebiten.SetWindowTitle("midioled")
	return ebiten.RunGame(w)
}
