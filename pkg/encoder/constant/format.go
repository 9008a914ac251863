package constant

import (
	"strings"

	"github.com/samber/lo"
	"github.com/thediveo/enumflag/v2"
	"golang.org/x/exp/slices"
)

type ImageFormat enumflag.Flag

const (
	PNG ImageFormat = iota
	JPEG
	GIF
	TIFF
	BMP
	WebP
)

var CommandValue = map[ImageFormat][]string{
	PNG:  {"png"},
	JPEG: {"jpeg", "jpg"},
	GIF:  {"gif"},
	TIFF: {"tiff", "tif"},
	BMP:  {"bmp"},
	WebP: {"webp"},
}

var HelpText = enumflag.Help[ImageFormat]{
	PNG:  "Portable Network Graphics",
	JPEG: "JPEG, lossy, honours --quality",
	GIF:  "Graphics Interchange Format",
	TIFF: "Tagged Image File Format",
	BMP:  "Windows Bitmap",
	WebP: "WebP Image Format through cwebp, honours --quality",
}

var DefaultFormat = PNG

func (c ImageFormat) String() string {
	return CommandValue[c][0]
}

// ListAll returns the primary token of every format, in declaration order.
func ListAll() []string {
	formats := lo.Keys(CommandValue)
	slices.Sort(formats)
	return lo.Map(formats, func(format ImageFormat, _ int) string {
		return format.String()
	})
}

// FindImageFormat matches a format token or alias ignoring case; unknown tokens fall back to DefaultFormat.
func FindImageFormat(format string) ImageFormat {
	for imageFormat, names := range CommandValue {
		for _, name := range names {
			if strings.EqualFold(name, format) {
				return imageFormat
			}
		}
	}
	return DefaultFormat
}
