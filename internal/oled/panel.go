package oled

import (
	"errors"
	"image"
)

// Sink receives every finished frame.
type Sink interface {
	Show(img *image.Gray) error
}

// Panel is the renderer's Display: a FrameCanvas whose frames are fanned
// out to the configured sinks on Flush. With no sinks it renders headless.
type Panel struct {
	*FrameCanvas
	sinks []Sink
}

func NewPanel(c *FrameCanvas, sinks ...Sink) *Panel {
	return &Panel{FrameCanvas: c, sinks: sinks}
}

// Flush hands the framebuffer to every sink. One failing sink does not
// stop the others.
func (p *Panel) Flush() error {
	var errs []error
	for _, s := range p.sinks {
		if err := s.Show(p.img); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
