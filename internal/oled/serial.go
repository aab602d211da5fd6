package oled

import (
	"fmt"
	"image"

	"go.bug.st/serial"
)

// SerialSink streams frames to a display controller on a serial port.
type SerialSink struct {
	name string
	port serial.Port
	seq  byte
}

// OpenSerial opens the named serial device at the given baud rate.
func OpenSerial(name string, baud int) (*SerialSink, error) {
	p, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("serial: open %q at %d baud: %w", name, baud, err)
	}
	logger.Info("serial: port opened", "device", name, "baud", baud)
	return &SerialSink{name: name, port: p}, nil
}

// Show encodes img and writes it as one frame.
func (s *SerialSink) Show(img *image.Gray) error {
	f := FrameFromImage(img, s.seq)
	s.seq++
	data := f.Encode()
	n, err := s.port.Write(data)
	if err != nil {
		return fmt.Errorf("serial: write %q: %w", s.name, err)
	}
	logger.Debug("serial: frame sent", "bytes", n, "seq", f.Seq)
	return nil
}

// Close closes the underlying serial port.
func (s *SerialSink) Close() error {
	logger.Info("serial: closing port", "device", s.name)
	return s.port.Close()
}
