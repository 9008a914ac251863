package slicer

import (
	"fmt"
	"image"

	"github.com/belphemur/TileSlicer/internal/grid"
	"github.com/belphemur/TileSlicer/internal/tile"
	tileerrors "github.com/belphemur/TileSlicer/pkg/errors"
	"github.com/oliamb/cutter"
	"github.com/rs/zerolog/log"
)

// Slice partitions img into tiles following req, in row-major order.
func Slice(img image.Image, req grid.Request) ([]*tile.Tile, error) {
	spec, err := req.Grid()
	if err != nil {
		return nil, err
	}
	return SliceGrid(img, spec)
}

// SliceGrid partitions img along an already resolved grid.
func SliceGrid(img image.Image, spec grid.Spec) ([]*tile.Tile, error) {
	if img == nil {
		return nil, tileerrors.New(tileerrors.DecodeError, "slice", "no source image")
	}

	b := img.Bounds()
	bounds, err := grid.ComputeBounds(spec, b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}

	log.Debug().
		Int("width", b.Dx()).
		Int("height", b.Dy()).
		Int("rows", spec.Rows).
		Int("columns", spec.Columns).
		Msg("Slicing image")

	tiles := make([]*tile.Tile, 0, len(bounds))
	for _, tb := range bounds {
		part, err := cropTile(img, tb)
		if err != nil {
			return nil, err
		}
		tiles = append(tiles, &tile.Tile{Bounds: tb, Image: part})
	}

	return tiles, nil
}

// cropTile copies the tile area out of img so tiles never share the source buffer.
// The cutter anchor is relative to img.Bounds().Min.
func cropTile(img image.Image, tb grid.Bounds) (image.Image, error) {
	part, err := cutter.Crop(img, cutter.Config{
		Width:   tb.Width,
		Height:  tb.Height,
		Anchor:  image.Point{X: tb.X, Y: tb.Y},
		Mode:    cutter.TopLeft,
		Options: cutter.Copy,
	})
	if err != nil {
		return nil, fmt.Errorf("error cropping tile (%d,%d): %w", tb.Row, tb.Column, err)
	}

	if got := part.Bounds(); got.Dx() != tb.Width || got.Dy() != tb.Height {
		return nil, fmt.Errorf("error cropping tile (%d,%d): got %dx%d, want %dx%d", tb.Row, tb.Column, got.Dx(), got.Dy(), tb.Width, tb.Height)
	}
	return part, nil
}
