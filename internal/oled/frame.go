package oled

import (
	"encoding/binary"
	"image"
)

const (
	SOF0    = 0xAA
	SOF1    = 0x55
	CmdBlit = 0x20

	// Pixels at or above this gray level are lit.
	litThreshold = 128
)

// Frame is a full 1bpp snapshot of the panel sent to the display controller
// in one bulk transfer. Pages follow the SSD1306 layout: each byte is a
// vertical strip of 8 pixels, least significant bit on top, one page per 8
// rows.
type Frame struct {
	Width  int
	Height int
	Pages  []byte
	Seq    byte
}

// PageCount is the number of 8-row pages needed for height rows.
func PageCount(height int) int { return (height + 7) / 8 }

// FrameFromImage packs img into page order.
func FrameFromImage(img *image.Gray, seq byte) Frame {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	f := Frame{Width: w, Height: h, Pages: make([]byte, w*PageCount(h)), Seq: seq}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if img.GrayAt(b.Min.X+x, b.Min.Y+y).Y >= litThreshold {
				f.Pages[(y/8)*w+x] |= 1 << (y % 8)
			}
		}
	}
	return f
}

// Lit reports whether pixel (x, y) is on.
func (f *Frame) Lit(x, y int) bool {
	return f.Pages[(y/8)*f.Width+x]&(1<<(y%8)) != 0
}

// Encode builds the on-wire representation:
//
//	[SOF0][SOF1][LEN hi][LEN lo][CMD][pages...][Seq][CKS]
//
// LEN counts CMD plus payload; CKS is the XOR of LEN, CMD and payload.
func (f *Frame) Encode() []byte {
	payload := make([]byte, 0, len(f.Pages)+1)
	payload = append(payload, f.Pages...)
	payload = append(payload, f.Seq)

	var length [2]byte
	binary.BigEndian.PutUint16(length[:], uint16(len(payload)+1))
	cks := length[0] ^ length[1] ^ CmdBlit
	for _, b := range payload {
		cks ^= b
	}

	out := make([]byte, 0, len(payload)+6)
	out = append(out, SOF0, SOF1, length[0], length[1], CmdBlit)
	out = append(out, payload...)
	out = append(out, cks)
	return out
}
