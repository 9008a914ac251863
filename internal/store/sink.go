package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/belphemur/TileSlicer/internal/utils/errs"
	tileerrors "github.com/belphemur/TileSlicer/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Sink persists encoded tiles under a name.
type Sink interface {
	Put(ctx context.Context, name string, data []byte) error
	// Location is where Put stores name, for logging and reporting.
	Location(name string) string
}

// DirSink writes tiles into a local directory.
type DirSink struct {
	dir string
}

// NewDirSink creates dir, and its parents, when it does not exist yet.
func NewDirSink(dir string) (*DirSink, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, tileerrors.Wrap(tileerrors.IOError, "create output directory "+dir, err)
	}
	return &DirSink{dir: dir}, nil
}

func (s *DirSink) Location(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *DirSink) Put(ctx context.Context, name string, data []byte) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	outputPath := s.Location(name)
	file, err := os.Create(outputPath)
	if err != nil {
		log.Error().Str("output_path", outputPath).Err(err).Msg("Failed to create tile file")
		return tileerrors.Wrap(tileerrors.IOError, "write tile "+name, err)
	}
	defer errs.Capture(&err, file.Close, "close tile "+name)

	written, err := file.Write(data)
	if err != nil {
		log.Error().Str("output_path", outputPath).Err(err).Msg("Failed to write tile contents")
		return tileerrors.Wrap(tileerrors.IOError, "write tile "+name, err)
	}

	log.Debug().Str("output_path", outputPath).Int("bytes_written", written).Msg("Tile written successfully")
	return nil
}
