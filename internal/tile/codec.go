package tile

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/belphemur/TileSlicer/internal/grid"
	tileerrors "github.com/belphemur/TileSlicer/pkg/errors"
)

// tileNamePattern matches {basename}_{row}_{column}[.{ext}] with at least two digits per field.
// The extension may hold dots ("tar.gz"), the position is the last _RR_CC before it.
var tileNamePattern = regexp.MustCompile(`^(.+)_(\d{2,})_(\d{2,})(?:\.(.+))?$`)

// EncodeName builds the file name of a tile: {basename}_{row:02}_{column:02}.{ext}.
// Rows and columns are 0-based. An empty ext gives a name without extension.
func EncodeName(basename string, pos Position, ext string) string {
	name := fmt.Sprintf("%s_%02d_%02d", basename, pos.Row, pos.Column)
	if ext = strings.TrimPrefix(ext, "."); ext != "" {
		name += "." + ext
	}
	return name
}

// DecodeName is the inverse of EncodeName. Any directory part of filename is ignored.
func DecodeName(filename string) (string, Position, error) {
	name := filepath.Base(filename)
	match := tileNamePattern.FindStringSubmatch(name)
	if match == nil {
		return "", Position{}, tileerrors.New(tileerrors.ParseError, "decode tile name",
			"%q does not match {basename}_{row}_{column}.{ext}", name)
	}

	row, err := strconv.Atoi(match[2])
	if err != nil {
		return "", Position{}, &tileerrors.Error{Kind: tileerrors.ParseError, Op: "decode tile name", Msg: name, Err: err}
	}
	column, err := strconv.Atoi(match[3])
	if err != nil {
		return "", Position{}, &tileerrors.Error{Kind: tileerrors.ParseError, Op: "decode tile name", Msg: name, Err: err}
	}

	if row >= grid.MaxSplit || column >= grid.MaxSplit {
		return "", Position{}, tileerrors.New(tileerrors.ParseError, "decode tile name",
			"%q is at row %d column %d, a grid has at most %d rows and columns", name, row, column, grid.MaxSplit)
	}

	return match[1], Position{Row: row, Column: column}, nil
}

// Extension normalises an output format token into a file extension.
func Extension(format string) string {
	ext := strings.ToLower(strings.TrimPrefix(format, "."))
	switch ext {
	case "jpeg":
		return "jpg"
	case "tiff":
		return "tif"
	}
	return ext
}

// FileName names t from basename and its position.
func (t *Tile) FileName(basename, format string) string {
	return EncodeName(basename, t.Position(), Extension(format))
}
