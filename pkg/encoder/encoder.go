package encoder

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/belphemur/TileSlicer/pkg/encoder/constant"
	"github.com/belphemur/TileSlicer/pkg/encoder/webp"
	tileerrors "github.com/belphemur/TileSlicer/pkg/errors"
	"github.com/disintegration/imaging"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"
	_ "golang.org/x/image/webp"
)

type Encoder interface {
	// Format of the encoder
	Format() (format constant.ImageFormat)
	// Encode writes img to w. Quality (1-100) is ignored by lossless formats.
	Encode(w io.Writer, img image.Image, quality uint8) error
	PrepareEncoder() error
}

var encoders = map[constant.ImageFormat]Encoder{
	constant.PNG:  &imagingEncoder{format: constant.PNG, target: imaging.PNG},
	constant.JPEG: &imagingEncoder{format: constant.JPEG, target: imaging.JPEG},
	constant.GIF:  &imagingEncoder{format: constant.GIF, target: imaging.GIF},
	constant.TIFF: &imagingEncoder{format: constant.TIFF, target: imaging.TIFF},
	constant.BMP:  &imagingEncoder{format: constant.BMP, target: imaging.BMP},
	constant.WebP: webp.New(),
}

// Available returns a list of available encoders.
func Available() []constant.ImageFormat {
	formats := lo.Keys(encoders)
	slices.Sort(formats)
	return formats
}

// Get returns an encoder by format.
// If the encoder is not available, an EncodeError is returned.
var Get = getEncoder

func getEncoder(format constant.ImageFormat) (Encoder, error) {
	if encoder, ok := encoders[format]; ok {
		return encoder, nil
	}

	return nil, tileerrors.New(tileerrors.EncodeError, "get encoder", "unknown format \"%d\", available options are %s", format,
		strings.Join(lo.Map(Available(), func(item constant.ImageFormat, index int) string {
			return item.String()
		}), ", "))
}

// EncodeToBuffer runs enc and tags failures as EncodeError.
func EncodeToBuffer(enc Encoder, img image.Image, quality uint8) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	if err := enc.Encode(buf, img, quality); err != nil {
		return nil, tileerrors.Wrap(tileerrors.EncodeError, fmt.Sprintf("encode %s", enc.Format()), err)
	}
	return buf, nil
}

// Decode reads any registered image format, WebP included.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(false))
	if err != nil {
		return nil, tileerrors.Wrap(tileerrors.DecodeError, "decode image", err)
	}
	return img, nil
}

type imagingEncoder struct {
	format constant.ImageFormat
	target imaging.Format
}

func (e *imagingEncoder) Format() constant.ImageFormat {
	return e.format
}

func (e *imagingEncoder) PrepareEncoder() error {
	return nil
}

func (e *imagingEncoder) Encode(w io.Writer, img image.Image, quality uint8) error {
	if quality == 0 || quality > 100 {
		quality = 85
	}
	return imaging.Encode(w, img, e.target, imaging.JPEGQuality(int(quality)))
}
