package joiner

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/belphemur/TileSlicer/internal/grid"
	"github.com/belphemur/TileSlicer/internal/slicer"
	"github.com/belphemur/TileSlicer/internal/tile"
	tileerrors "github.com/belphemur/TileSlicer/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8((x * 7) % 256),
				G: uint8((y * 13) % 256),
				B: uint8((x * y) % 256),
				A: 255,
			})
		}
	}
	return img
}

func solidTile(row, column, width, height int) *tile.Tile {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	c := color.NRGBA{R: uint8(row * 40), G: uint8(column * 40), B: 200, A: 255}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return tile.New(img, tile.Position{Row: row, Column: column}, "")
}

func assertSameImage(t *testing.T, want *image.NRGBA, got *image.NRGBA) {
	t.Helper()
	require.Equal(t, want.Bounds().Size(), got.Bounds().Size())
	for y := 0; y < want.Bounds().Dy(); y++ {
		for x := 0; x < want.Bounds().Dx(); x++ {
			if w, g := want.NRGBAAt(x, y), got.NRGBAAt(x, y); w != g {
				t.Fatalf("pixel (%d,%d): got %v, want %v", x, y, g, w)
			}
		}
	}
}

func TestJoin_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		width   int
		height  int
		request grid.Request
	}{
		{name: "Scenario 100x100 in 4", width: 100, height: 100, request: grid.Request{Tiles: 4}},
		{name: "Evenly divisible 3x4", width: 120, height: 90, request: grid.Request{Rows: 3, Columns: 4}},
		{name: "Remainder columns", width: 101, height: 100, request: grid.Request{Rows: 1, Columns: 2}},
		{name: "Remainder both", width: 97, height: 61, request: grid.Request{Rows: 5, Columns: 7}},
		{name: "Single row strip", width: 30, height: 2, request: grid.Request{Tiles: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := createTestImage(tt.width, tt.height)
			tiles, err := slicer.Slice(src, tt.request)
			require.NoError(t, err)

			joined, err := Join(tiles, 0, 0)
			require.NoError(t, err)
			assertSameImage(t, src, joined)
		})
	}
}

func TestJoin_OrderIndependent(t *testing.T) {
	src := createTestImage(40, 30)
	tiles, err := slicer.Slice(src, grid.Request{Rows: 3, Columns: 2})
	require.NoError(t, err)

	reversed := make([]*tile.Tile, len(tiles))
	for i, tl := range tiles {
		reversed[len(tiles)-1-i] = tl
	}

	joined, err := Join(reversed, 0, 0)
	require.NoError(t, err)
	assertSameImage(t, src, joined)
}

func TestJoin_Override(t *testing.T) {
	tiles := []*tile.Tile{
		solidTile(0, 0, 10, 10),
		solidTile(0, 1, 10, 10),
	}

	joined, err := Join(tiles, 15, 0)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(15, 10), joined.Bounds().Size())
	assert.Equal(t, uint8(40), joined.NRGBAAt(14, 9).G)

	joined, err = Join(tiles, 30, 12)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(30, 12), joined.Bounds().Size())
	assert.Equal(t, uint8(0), joined.NRGBAAt(25, 11).A, "area outside the tiles stays transparent")
}

func TestJoin_InconsistentSizesUseLargest(t *testing.T) {
	tiles := []*tile.Tile{
		solidTile(0, 0, 10, 8),
		solidTile(0, 1, 12, 10),
		solidTile(1, 0, 9, 5),
		solidTile(1, 1, 12, 5),
	}

	width, height, err := Combined(tiles)
	require.NoError(t, err)
	assert.Equal(t, 22, width)
	assert.Equal(t, 15, height)

	joined, err := Join(tiles, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(22, 15), joined.Bounds().Size())
	// (1,1) starts after the widest column 0 tile and the tallest row 0 tile.
	assert.Equal(t, color.NRGBA{R: 40, G: 40, B: 200, A: 255}, joined.NRGBAAt(10, 10))
}

func TestJoin_Errors(t *testing.T) {
	full3x3 := func(skip tile.Position) []*tile.Tile {
		var tiles []*tile.Tile
		for row := 0; row < 3; row++ {
			for column := 0; column < 3; column++ {
				if (tile.Position{Row: row, Column: column}) == skip {
					continue
				}
				tiles = append(tiles, solidTile(row, column, 4, 4))
			}
		}
		return tiles
	}

	tests := []struct {
		name  string
		tiles []*tile.Tile
		err   error
	}{
		{name: "Empty", tiles: nil, err: tileerrors.ErrEmptyTileSet},
		{name: "Missing (2,2) of 3x3", tiles: full3x3(tile.Position{Row: 2, Column: 2}), err: tileerrors.ErrInconsistentGrid},
		{name: "Missing (0,0)", tiles: full3x3(tile.Position{Row: 0, Column: 0}), err: tileerrors.ErrInconsistentGrid},
		{name: "Duplicate position", tiles: append(full3x3(tile.Position{Row: -1}), solidTile(1, 1, 4, 4)), err: tileerrors.ErrOverlappingTiles},
		{name: "Negative position", tiles: []*tile.Tile{solidTile(-1, 0, 4, 4)}, err: tileerrors.ErrInconsistentGrid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			joined, err := Join(tt.tiles, 0, 0)
			require.Error(t, err)
			assert.Nil(t, joined)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestJoin_MissingTileMessage(t *testing.T) {
	tiles := []*tile.Tile{solidTile(0, 0, 2, 2), solidTile(1, 1, 2, 2)}
	_, err := Join(tiles, 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing (0,1) (1,0)")
}

func TestJoin_PositionOutsideGrid(t *testing.T) {
	tests := []struct {
		name string
		pos  tile.Position
	}{
		{name: "Camera file name position", pos: tile.Position{Row: 20240101, Column: 123456}},
		{name: "Row at the limit", pos: tile.Position{Row: grid.MaxSplit, Column: 0}},
		{name: "Column at the limit", pos: tile.Position{Row: 0, Column: grid.MaxSplit}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tiles := []*tile.Tile{solidTile(0, 0, 2, 2), solidTile(tt.pos.Row, tt.pos.Column, 2, 2)}

			done := make(chan error, 1)
			go func() {
				_, err := Join(tiles, 0, 0)
				done <- err
			}()

			select {
			case err := <-done:
				assert.ErrorIs(t, err, tileerrors.ErrInconsistentGrid)
				assert.Contains(t, err.Error(), "outside a 99x99 grid")
			case <-time.After(5 * time.Second):
				t.Fatal("Join did not return for a tile outside the grid")
			}
		})
	}
}

func TestJoin_MissingTileMessageIsBounded(t *testing.T) {
	tiles := []*tile.Tile{solidTile(0, 0, 1, 1), solidTile(grid.MaxSplit-1, grid.MaxSplit-1, 1, 1)}

	_, err := Join(tiles, 0, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, tileerrors.ErrInconsistentGrid)
	assert.Contains(t, err.Error(), "2 tiles do not fill a 99x99 grid, missing (0,1) (0,2)")
	assert.Contains(t, err.Error(), "(0,10) and 9789 more")
	assert.NotContains(t, err.Error(), "(0,11)")
}
