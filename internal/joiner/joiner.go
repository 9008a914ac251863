package joiner

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/belphemur/TileSlicer/internal/grid"
	"github.com/belphemur/TileSlicer/internal/tile"
	tileerrors "github.com/belphemur/TileSlicer/pkg/errors"
	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// maxReportedMissing bounds the list of missing cells in InconsistentGrid errors.
const maxReportedMissing = 10

// layout is the canvas geometry derived from the tile positions.
type layout struct {
	columnWidths []int
	rowHeights   []int
	tiles        []*tile.Tile
}

func (l *layout) size() (int, int) {
	return lo.Sum(l.columnWidths), lo.Sum(l.rowHeights)
}

func (l *layout) offset(pos tile.Position) image.Point {
	return image.Point{
		X: lo.Sum(l.columnWidths[:pos.Column]),
		Y: lo.Sum(l.rowHeights[:pos.Row]),
	}
}

func newLayout(tiles []*tile.Tile) (*layout, error) {
	if len(tiles) == 0 {
		return nil, tileerrors.New(tileerrors.EmptyTileSet, "join", "no tiles to join")
	}

	seen := make(map[tile.Position]*tile.Tile, len(tiles))
	for _, t := range tiles {
		pos := t.Position()
		if pos.Row < 0 || pos.Column < 0 {
			return nil, tileerrors.New(tileerrors.InconsistentGrid, "join", "tile %s has a negative position", t)
		}
		if pos.Row >= grid.MaxSplit || pos.Column >= grid.MaxSplit {
			return nil, tileerrors.New(tileerrors.InconsistentGrid, "join",
				"tile %s is outside a %dx%d grid", t, grid.MaxSplit, grid.MaxSplit)
		}
		if other, ok := seen[pos]; ok {
			return nil, tileerrors.New(tileerrors.OverlappingTiles, "join",
				"tiles %s and %s both claim row %d column %d", other, t, pos.Row, pos.Column)
		}
		seen[pos] = t
	}

	rows := lo.Max(lo.Map(tiles, func(t *tile.Tile, _ int) int { return t.Row() })) + 1
	columns := lo.Max(lo.Map(tiles, func(t *tile.Tile, _ int) int { return t.Column() })) + 1

	if len(seen) != rows*columns {
		var missing []string
		for row := 0; row < rows && len(missing) < maxReportedMissing; row++ {
			for column := 0; column < columns && len(missing) < maxReportedMissing; column++ {
				if _, ok := seen[tile.Position{Row: row, Column: column}]; !ok {
					missing = append(missing, fmt.Sprintf("(%d,%d)", row, column))
				}
			}
		}
		if absent := rows*columns - len(seen); absent > len(missing) {
			missing = append(missing, fmt.Sprintf("and %d more", absent-len(missing)))
		}
		return nil, tileerrors.New(tileerrors.InconsistentGrid, "join",
			"%d tiles do not fill a %dx%d grid, missing %s", len(tiles), rows, columns, strings.Join(missing, " "))
	}

	l := &layout{
		columnWidths: make([]int, columns),
		rowHeights:   make([]int, rows),
		tiles:        slices.Clone(tiles),
	}
	for _, t := range tiles {
		l.columnWidths[t.Column()] = max(l.columnWidths[t.Column()], t.Width())
		l.rowHeights[t.Row()] = max(l.rowHeights[t.Row()], t.Height())
	}

	slices.SortFunc(l.tiles, func(a, b *tile.Tile) int {
		if a.Row() == b.Row() {
			return a.Column() - b.Column()
		}
		return a.Row() - b.Row()
	})

	return l, nil
}

// Combined returns the canvas size Join would produce without overrides.
func Combined(tiles []*tile.Tile) (int, int, error) {
	l, err := newLayout(tiles)
	if err != nil {
		return 0, 0, err
	}
	width, height := l.size()
	return width, height, nil
}

// Join composites tiles into one image. Each column is as wide as its widest tile
// and each row as tall as its tallest one. A positive width or height overrides
// the computed canvas dimension; pixels falling outside are clipped.
func Join(tiles []*tile.Tile, width, height int) (*image.NRGBA, error) {
	l, err := newLayout(tiles)
	if err != nil {
		return nil, err
	}

	combinedWidth, combinedHeight := l.size()
	if width <= 0 {
		width = combinedWidth
	}
	if height <= 0 {
		height = combinedHeight
	}

	log.Debug().
		Int("tiles", len(l.tiles)).
		Int("rows", len(l.rowHeights)).
		Int("columns", len(l.columnWidths)).
		Int("width", width).
		Int("height", height).
		Msg("Joining tiles")

	canvas := imaging.New(width, height, color.Transparent)
	for _, t := range l.tiles {
		at := l.offset(t.Position())
		src := t.Image.Bounds()
		dst := image.Rectangle{Min: at, Max: at.Add(src.Size())}
		draw.Draw(canvas, dst, t.Image, src.Min, draw.Src)
	}

	return canvas, nil
}
