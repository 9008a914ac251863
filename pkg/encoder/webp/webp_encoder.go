package webp

import (
	"fmt"
	"image"
	"io"
	"sync"

	"github.com/belphemur/TileSlicer/pkg/encoder/constant"
)

// webpMaxDimension is the largest width or height libwebp accepts.
const webpMaxDimension = 16383

type Encoder struct {
	mu         sync.Mutex
	isPrepared bool
}

func New() *Encoder {
	return &Encoder{}
}

func (encoder *Encoder) Format() (format constant.ImageFormat) {
	return constant.WebP
}

// PrepareEncoder downloads the cwebp binary on first use.
func (encoder *Encoder) PrepareEncoder() error {
	encoder.mu.Lock()
	defer encoder.mu.Unlock()
	if encoder.isPrepared {
		return nil
	}
	if err := PrepareEncoder(); err != nil {
		return err
	}
	encoder.isPrepared = true
	return nil
}

func (encoder *Encoder) Encode(w io.Writer, img image.Image, quality uint8) error {
	bounds := img.Bounds()
	if bounds.Dx() > webpMaxDimension || bounds.Dy() > webpMaxDimension {
		return fmt.Errorf("image of %dx%d exceeds the webp limit of %dpx", bounds.Dx(), bounds.Dy(), webpMaxDimension)
	}
	if err := encoder.PrepareEncoder(); err != nil {
		return err
	}
	if quality == 0 || quality > 100 {
		quality = 85
	}
	return Encode(w, img, uint(quality))
}
