package oled

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/midihub/midioled/internal/monitor"
)

const builtinPrefix = "builtin:"

var builtinTTF = map[string][]byte{
	"gomono":     gomono.TTF,
	"gomonobold": gomonobold.TTF,
	"goregular":  goregular.TTF,
	"gobold":     gobold.TTF,
}

// Fonts maps each font role to a concrete face.
type Fonts map[monitor.FontRole]font.Face

// LoadFonts resolves every required role. Any role that is missing or
// cannot be loaded is an error; the caller is expected not to start.
func LoadFonts(specs map[monitor.FontRole]monitor.FontSpec) (Fonts, error) {
	fonts := make(Fonts, len(monitor.RequiredFontRoles))
	for _, role := range monitor.RequiredFontRoles {
		spec, ok := specs[role]
		if !ok {
			return nil, fmt.Errorf("font role %q: not configured", role)
		}
		face, err := loadFace(spec)
		if err != nil {
			return nil, fmt.Errorf("font role %q: %w", role, err)
		}
		logger.Debug("oled: font loaded", "role", role, "source", spec.Source, "size", spec.Size)
		fonts[role] = face
	}
	return fonts, nil
}

func loadFace(spec monitor.FontSpec) (font.Face, error) {
	var data []byte
	if name, ok := strings.CutPrefix(spec.Source, builtinPrefix); ok {
		if name == "7x13" {
			return basicfont.Face7x13, nil
		}
		ttf, ok := builtinTTF[name]
		if !ok {
			return nil, fmt.Errorf("unknown builtin font %q", name)
		}
		data = ttf
	} else {
		b, err := os.ReadFile(spec.Source)
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", spec.Source, err)
		}
		data = b
	}
	if spec.Size <= 0 {
		return nil, fmt.Errorf("size must be positive, got %v", spec.Size)
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", spec.Source, err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    spec.Size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("face %q: %w", spec.Source, err)
	}
	return face, nil
}
