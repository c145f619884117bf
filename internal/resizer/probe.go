package resizer

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"

	"github.com/disintegration/imaging"
)

// InstallHint tells the user how to get the imaging codecs back.
const InstallHint = "Install it with: go get github.com/disintegration/imaging"

// Probe round-trips a 1x1 JPEG through the imaging library so a broken codec
// setup is reported before any file is touched.
func Probe() (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = newError(KindMissingDependency, "", fmt.Errorf("panic: %v", rec))
		}
	}()

	var buf bytes.Buffer
	px := imaging.New(1, 1, color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff})

	if err := imaging.Encode(&buf, px, imaging.JPEG, imaging.JPEGQuality(DefaultQuality)); err != nil {
		return newError(KindMissingDependency, "", fmt.Errorf("jpeg encoder: %w", err))
	}

	img, err := imaging.Decode(&buf)
	if err != nil {
		return newError(KindMissingDependency, "", fmt.Errorf("jpeg decoder: %w", err))
	}

	if b := img.Bounds(); b.Dx() != 1 || b.Dy() != 1 {
		return newError(KindMissingDependency, "", errors.New("jpeg round trip changed image size"))
	}

	return nil
}
