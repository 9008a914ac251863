package utils

import (
	"context"
	"fmt"
	"image"
	"os"

	"github.com/belphemur/TileSlicer/internal/grid"
	"github.com/belphemur/TileSlicer/internal/slicer"
	"github.com/belphemur/TileSlicer/internal/store"
	"github.com/belphemur/TileSlicer/internal/tile"
	"github.com/belphemur/TileSlicer/internal/utils/errs"
	"github.com/belphemur/TileSlicer/pkg/encoder"
	"github.com/belphemur/TileSlicer/pkg/encoder/constant"
	tileerrors "github.com/belphemur/TileSlicer/pkg/errors"
	"github.com/rs/zerolog/log"
)

type SliceOptions struct {
	Path    string
	Request grid.Request
	Format  constant.ImageFormat
	Quality uint8
	// Prefix replaces the basename of Path in the tile names when set.
	Prefix string
	Sink   store.Sink
}

// SliceFile decodes the image at options.Path, slices it and stores every tile
// through options.Sink. It stops at the first tile that cannot be encoded or written.
func SliceFile(ctx context.Context, options *SliceOptions) (tiles []*tile.Tile, err error) {
	log.Info().Str("file", options.Path).Msg("Slicing image")

	spec, err := options.Request.Grid()
	if err != nil {
		return nil, err
	}

	enc, err := encoder.Get(options.Format)
	if err != nil {
		return nil, err
	}
	if err = enc.PrepareEncoder(); err != nil {
		return nil, tileerrors.Wrap(tileerrors.EncodeError, "prepare "+options.Format.String()+" encoder", err)
	}

	img, err := decodeFile(options.Path)
	if err != nil {
		return nil, err
	}

	tiles, err = slicer.SliceGrid(img, spec)
	if err != nil {
		return nil, err
	}

	basename := options.Prefix
	if basename == "" {
		basename = Basename(options.Path)
	}

	for _, t := range tiles {
		if err = ctx.Err(); err != nil {
			return nil, err
		}

		name := t.FileName(basename, options.Format.String())
		buf, err := encoder.EncodeToBuffer(enc, t.Image, options.Quality)
		if err != nil {
			return nil, fmt.Errorf("tile %s: %w", name, err)
		}
		if err = options.Sink.Put(ctx, name, buf.Bytes()); err != nil {
			return nil, err
		}
		t.Name = name

		log.Debug().
			Str("tile", t.String()).
			Str("location", options.Sink.Location(name)).
			Msg("Tile saved")
	}

	log.Info().
		Str("file", options.Path).
		Int("rows", spec.Rows).
		Int("columns", spec.Columns).
		Int("tiles", len(tiles)).
		Msg("Image sliced")
	return tiles, nil
}

// decodeFile reads and decodes the image at path.
func decodeFile(path string) (img image.Image, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, tileerrors.Wrap(tileerrors.IOError, "open "+path, err)
	}
	defer errs.Capture(&err, file.Close, "close "+path)

	img, err = encoder.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	b := img.Bounds()
	log.Debug().Str("file", path).Int("width", b.Dx()).Int("height", b.Dy()).Msg("Image decoded")
	return img, nil
}
