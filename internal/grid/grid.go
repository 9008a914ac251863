package grid

import (
	"math"

	tileerrors "github.com/belphemur/TileSlicer/pkg/errors"
)

const (
	// MaxSplit is the largest number of rows or columns a grid can have.
	MaxSplit = 99
	// MaxTiles is the largest tile count accepted for automatic grids.
	MaxTiles = MaxSplit * MaxSplit
)

// Spec is the rows x columns partition chosen for slicing.
type Spec struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

// Len returns the number of tiles of the grid.
func (s Spec) Len() int {
	return s.Rows * s.Columns
}

// Bounds locates one tile of a grid in the source image.
type Bounds struct {
	Row    int `json:"row"`
	Column int `json:"column"`
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Request describes how the caller wants the image split. Zero means "not given".
type Request struct {
	Tiles   int
	Rows    int
	Columns int
}

// Grid resolves the request into a Spec. Tiles wins over rows/columns.
func (r Request) Grid() (Spec, error) {
	return ComputeGrid(r.Tiles, r.Rows, r.Columns)
}

// ComputeGrid derives a grid from a tile count, or from explicit rows and columns
// when numTiles is zero.
func ComputeGrid(numTiles, rows, columns int) (Spec, error) {
	switch {
	case numTiles != 0:
		return factorTiles(numTiles)
	case rows != 0 && columns != 0:
		return validateRowsColumns(rows, columns)
	default:
		return Spec{}, tileerrors.New(tileerrors.MissingGridSpecification, "compute grid",
			"either the number of tiles or both rows and columns must be given (rows: %d, columns: %d)", rows, columns)
	}
}

// factorTiles picks rows*columns == n with the smallest |columns-rows|, columns >= rows.
func factorTiles(n int) (Spec, error) {
	if n < 2 || n > MaxTiles {
		return Spec{}, tileerrors.New(tileerrors.InvalidTileCount, "compute grid",
			"number of tiles must be between 2 and %d (you asked for %d)", MaxTiles, n)
	}

	rows := int(math.Sqrt(float64(n)))
	for n%rows != 0 {
		rows--
	}
	spec := Spec{Rows: rows, Columns: n / rows}

	if spec.Columns > MaxSplit {
		return Spec{}, tileerrors.New(tileerrors.InvalidTileCount, "compute grid",
			"%d tiles would need %d columns, at most %d are supported", n, spec.Columns, MaxSplit)
	}
	return spec, nil
}

func validateRowsColumns(rows, columns int) (Spec, error) {
	if rows < 1 || columns < 1 || rows > MaxSplit || columns > MaxSplit {
		return Spec{}, tileerrors.New(tileerrors.InvalidGrid, "compute grid",
			"number of columns and rows must be between 1 and %d (you asked for rows: %d and columns: %d)", MaxSplit, rows, columns)
	}
	if rows*columns < 2 {
		return Spec{}, tileerrors.New(tileerrors.InvalidGrid, "compute grid",
			"there is nothing to divide, you asked for the entire image")
	}
	return Spec{Rows: rows, Columns: columns}, nil
}

// ComputeBounds lays the grid over a width x height image in row-major order.
// The last column and the last row absorb the division remainder.
func ComputeBounds(spec Spec, width, height int) ([]Bounds, error) {
	if spec.Rows < 1 || spec.Columns < 1 {
		return nil, tileerrors.New(tileerrors.InvalidGrid, "compute bounds",
			"grid %dx%d has no cells", spec.Rows, spec.Columns)
	}
	if width < spec.Columns || height < spec.Rows {
		return nil, tileerrors.New(tileerrors.ImageTooSmall, "compute bounds",
			"a %dx%d image cannot be split into %d rows and %d columns", width, height, spec.Rows, spec.Columns)
	}

	tileWidth := width / spec.Columns
	tileHeight := height / spec.Rows

	bounds := make([]Bounds, 0, spec.Len())
	for row := 0; row < spec.Rows; row++ {
		h := tileHeight
		if row == spec.Rows-1 {
			h = height - tileHeight*(spec.Rows-1)
		}
		for column := 0; column < spec.Columns; column++ {
			w := tileWidth
			if column == spec.Columns-1 {
				w = width - tileWidth*(spec.Columns-1)
			}
			bounds = append(bounds, Bounds{
				Row:    row,
				Column: column,
				X:      column * tileWidth,
				Y:      row * tileHeight,
				Width:  w,
				Height: h,
			})
		}
	}
	return bounds, nil
}
