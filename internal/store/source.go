package store

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	tileerrors "github.com/belphemur/TileSlicer/pkg/errors"
	"github.com/mholt/archives"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"
)

// Source lists and opens the files a set of tiles is read from.
type Source interface {
	List(ctx context.Context) ([]string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// FSSource reads tiles from a directory or from any archive mholt/archives
// understands (zip, cbz, tar, 7z, rar...).
type FSSource struct {
	path  string
	isDir bool
	fsys  fs.FS
}

func OpenSource(ctx context.Context, sourcePath string) (*FSSource, error) {
	info, err := os.Stat(sourcePath)
	if err != nil {
		return nil, tileerrors.Wrap(tileerrors.IOError, "open tile source", err)
	}

	log.Debug().Str("source", sourcePath).Bool("is_dir", info.IsDir()).Msg("Opening tile source")
	fsys, err := archives.FileSystem(ctx, sourcePath, nil)
	if err != nil {
		log.Error().Str("source", sourcePath).Err(err).Msg("Failed to open tile source file system")
		return nil, tileerrors.Wrap(tileerrors.IOError, "open tile source", fmt.Errorf("failed to open %s: %w", sourcePath, err))
	}

	return &FSSource{path: sourcePath, isDir: info.IsDir(), fsys: fsys}, nil
}

// List returns the sorted file names of the source. Directories are read one
// level deep, archives are walked entirely.
func (s *FSSource) List(ctx context.Context) ([]string, error) {
	var names []string
	err := fs.WalkDir(s.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if p != "." && s.isDir {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(path.Base(p), ".") {
			return nil
		}
		names = append(names, p)
		return nil
	})
	if err != nil {
		log.Error().Str("source", s.path).Err(err).Msg("Failed to list tile source")
		return nil, tileerrors.Wrap(tileerrors.IOError, "list "+s.path, err)
	}

	slices.Sort(names)
	log.Debug().Str("source", s.path).Int("files", len(names)).Msg("Tile source listed")
	return names, nil
}

func (s *FSSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := s.fsys.Open(name)
	if err != nil {
		return nil, tileerrors.Wrap(tileerrors.IOError, "open "+name, err)
	}
	return file, nil
}

func (s *FSSource) String() string {
	return s.path
}
