package utils

import (
	"context"
	"fmt"
	"image"
	"path"
	"path/filepath"
	"strings"

	"github.com/belphemur/TileSlicer/internal/joiner"
	"github.com/belphemur/TileSlicer/internal/store"
	"github.com/belphemur/TileSlicer/internal/tile"
	"github.com/belphemur/TileSlicer/internal/utils/errs"
	"github.com/belphemur/TileSlicer/pkg/encoder"
	"github.com/belphemur/TileSlicer/pkg/encoder/constant"
	tileerrors "github.com/belphemur/TileSlicer/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// joinedPrefix marks the output of a previous join, never read back as a tile.
const joinedPrefix = "joined"

type JoinOptions struct {
	Source store.Source
	// Basename selects one tile set when the source holds several.
	Basename string
	// Width and Height override the computed canvas size when > 0.
	Width  int
	Height int
	// Output is the path of the joined image, "joined.<ext>" when empty.
	Output  string
	Format  constant.ImageFormat
	Quality uint8
}

type tileEntry struct {
	name string
	pos  tile.Position
}

// JoinTiles loads the tiles of options.Source, joins them and writes the result
// to options.Output.
func JoinTiles(ctx context.Context, options *JoinOptions) (*image.NRGBA, error) {
	names, err := options.Source.List(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := selectTileSet(names, options.Basename)
	if err != nil {
		return nil, err
	}

	tiles := make([]*tile.Tile, 0, len(entries))
	for _, entry := range entries {
		t, err := loadTile(ctx, options.Source, entry)
		if err != nil {
			return nil, err
		}
		tiles = append(tiles, t)
	}

	joined, err := joiner.Join(tiles, options.Width, options.Height)
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
	buf, err := encoder.EncodeToBuffer(enc, joined, options.Quality)
	if err != nil {
		return nil, err
	}

	output := options.Output
	if output == "" {
		output = joinedPrefix + "." + tile.Extension(options.Format.String())
	}
	sink, err := store.NewDirSink(filepath.Dir(output))
	if err != nil {
		return nil, err
	}
	if err = sink.Put(ctx, filepath.Base(output), buf.Bytes()); err != nil {
		return nil, err
	}

	log.Info().
		Int("tiles", len(tiles)).
		Int("width", joined.Bounds().Dx()).
		Int("height", joined.Bounds().Dy()).
		Str("output", output).
		Msg("Tiles joined")
	return joined, nil
}

// selectTileSet keeps the names that decode as tile names and belong to the
// requested tile set. Without a basename the source must hold a single set.
func selectTileSet(names []string, basename string) ([]tileEntry, error) {
	sets := map[string][]tileEntry{}
	for _, name := range names {
		if strings.HasPrefix(path.Base(name), joinedPrefix) {
			continue
		}
		base, pos, err := tile.DecodeName(name)
		if err != nil {
			log.Debug().Str("file", name).Err(err).Msg("Skipping file")
			continue
		}
		sets[base] = append(sets[base], tileEntry{name: name, pos: pos})
	}

	if basename != "" {
		entries, ok := sets[basename]
		if !ok {
			return nil, tileerrors.New(tileerrors.EmptyTileSet, "select tiles", "no tile named %s_RR_CC found", basename)
		}
		return entries, nil
	}

	switch len(sets) {
	case 0:
		return nil, tileerrors.New(tileerrors.EmptyTileSet, "select tiles", "no tile found")
	case 1:
		return lo.Values(sets)[0], nil
	}

	found := lo.Keys(sets)
	slices.Sort(found)
	return nil, tileerrors.New(tileerrors.InconsistentGrid, "select tiles",
		"several tile sets found (%s), choose one by basename", strings.Join(found, ", "))
}

func loadTile(ctx context.Context, source store.Source, entry tileEntry) (t *tile.Tile, err error) {
	reader, err := source.Open(ctx, entry.name)
	if err != nil {
		return nil, err
	}
	defer errs.Capture(&err, reader.Close, "close "+entry.name)

	img, err := encoder.Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("tile %s: %w", entry.name, err)
	}

	t = tile.New(img, entry.pos, path.Base(entry.name))
	log.Debug().Str("tile", t.String()).Msg("Tile loaded")
	return t, nil
}
