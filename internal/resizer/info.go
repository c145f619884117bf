package resizer

import (
	"fmt"
	"image/color"
	"strings"
)

// Size is a width/height pair in pixels.
type Size struct {
	Width  int
	Height int
}

// DefaultSize is Full HD.
var DefaultSize = Size{Width: 1920, Height: 1080}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Info describes a decoded image.
type Info struct {
	Size
	Format string // decoder name, upper-cased: JPEG, PNG, ...
	Mode   string // color mode: RGB, L, RGBA, CMYK, P, ...
}

func newInfo(width, height int, format string, model color.Model) Info {
	return Info{
		Size:   Size{Width: width, Height: height},
		Format: strings.ToUpper(format),
		Mode:   modeName(model),
	}
}

// modeName maps a color model onto the conventional short mode names.
func modeName(m color.Model) string {
	// color.Palette is a slice and must not reach the comparisons below.
	if _, ok := m.(color.Palette); ok {
		return "P"
	}

	switch m {
	case color.YCbCrModel:
		return "RGB"
	case color.GrayModel:
		return "L"
	case color.Gray16Model:
		return "I;16"
	case color.RGBAModel, color.NRGBAModel, color.NYCbCrAModel:
		return "RGBA"
	case color.RGBA64Model, color.NRGBA64Model:
		return "RGBA;16"
	case color.CMYKModel:
		return "CMYK"
	case color.AlphaModel, color.Alpha16Model:
		return "A"
	default:
		return "unknown"
	}
}
