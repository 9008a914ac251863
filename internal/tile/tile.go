package tile

import (
	"fmt"
	"image"

	"github.com/belphemur/TileSlicer/internal/grid"
)

// Position is the 0-based grid cell of a tile.
type Position struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

type Tile struct {
	// Bounds of the tile in the source image, including its grid position.
	Bounds grid.Bounds `json:"bounds"`
	// Image is the cropped pixel buffer owned by this tile.
	Image image.Image `json:"-"`
	// Name is the file name the tile was saved under or loaded from, empty otherwise.
	Name string `json:"name,omitempty"`
}

// New builds a tile at the given position. X and Y are left at zero: tiles loaded
// from files carry no offsets, the joiner derives them.
func New(img image.Image, pos Position, name string) *Tile {
	b := img.Bounds()
	return &Tile{
		Bounds: grid.Bounds{
			Row:    pos.Row,
			Column: pos.Column,
			Width:  b.Dx(),
			Height: b.Dy(),
		},
		Image: img,
		Name:  name,
	}
}

func (t *Tile) Position() Position {
	return Position{Row: t.Bounds.Row, Column: t.Bounds.Column}
}

func (t *Tile) Row() int {
	return t.Bounds.Row
}

func (t *Tile) Column() int {
	return t.Bounds.Column
}

// Width and Height report the pixel buffer size, which may differ from Bounds
// when a saved tile was scaled by another tool.
func (t *Tile) Width() int {
	return t.Image.Bounds().Dx()
}

func (t *Tile) Height() int {
	return t.Image.Bounds().Dy()
}

func (t *Tile) String() string {
	if t.Name != "" {
		return fmt.Sprintf("<Tile (%d,%d) - %s>", t.Bounds.Row, t.Bounds.Column, t.Name)
	}
	return fmt.Sprintf("<Tile (%d,%d)>", t.Bounds.Row, t.Bounds.Column)
}
