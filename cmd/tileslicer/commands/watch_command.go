package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/belphemur/TileSlicer/internal/grid"
	"github.com/belphemur/TileSlicer/internal/store"
	"github.com/belphemur/TileSlicer/internal/tile"
	utils2 "github.com/belphemur/TileSlicer/internal/utils"
	"github.com/belphemur/TileSlicer/pkg/encoder/constant"
	"github.com/pablodz/inotifywaitgo/inotifywaitgo"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/thediveo/enumflag/v2"
)

var watchFormat constant.ImageFormat

// imageExtensions are the files the watcher slices.
var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".tif", ".tiff", ".bmp", ".webp"}

func init() {
	if runtime.GOOS != "linux" {
		return
	}
	command := &cobra.Command{
		Use:   "watch [folder]",
		Short: "Watch a folder for new images and slice them",
		Long:  "Watch a folder for new images.\nEvery image written or moved into the folder is sliced into --dir with the configured grid.",
		RunE:  WatchCommand,
		Args:  cobra.ExactArgs(1),
	}
	formatFlag := enumflag.New(&watchFormat, "format", constant.CommandValue, enumflag.EnumCaseInsensitive)
	_ = formatFlag.RegisterCompletion(command, "format", constant.HelpText)

	command.Flags().IntP("tiles", "n", 0, "Number of tiles, takes precedence over rows and columns")
	_ = viper.BindPFlag("tiles", command.Flags().Lookup("tiles"))

	command.Flags().IntP("rows", "r", 0, "Number of rows")
	_ = viper.BindPFlag("rows", command.Flags().Lookup("rows"))

	command.Flags().IntP("columns", "c", 0, "Number of columns")
	_ = viper.BindPFlag("columns", command.Flags().Lookup("columns"))

	command.Flags().StringP("dir", "d", ".", "Directory the tiles are written to")
	_ = viper.BindPFlag("dir", command.Flags().Lookup("dir"))

	command.Flags().Uint8P("quality", "q", 85, "Quality for lossy formats (1-100)")
	_ = viper.BindPFlag("quality", command.Flags().Lookup("quality"))

	command.PersistentFlags().VarP(
		formatFlag,
		"format", "f",
		fmt.Sprintf("Format of the tiles: %s", constant.ListAll()))
	command.PersistentFlags().Lookup("format").NoOptDefVal = constant.DefaultFormat.String()
	_ = viper.BindPFlag("format", command.PersistentFlags().Lookup("format"))

	AddCommand(command)
}

func WatchCommand(cmd *cobra.Command, args []string) error {
	path := args[0]
	if path == "" {
		return fmt.Errorf("path is required")
	}

	if !utils2.IsValidFolder(path) {
		return fmt.Errorf("the path needs to be a folder")
	}

	quality := uint8(viper.GetUint16("quality"))
	if quality <= 0 || quality > 100 {
		return fmt.Errorf("invalid quality value")
	}

	request := grid.Request{
		Tiles:   viper.GetInt("tiles"),
		Rows:    viper.GetInt("rows"),
		Columns: viper.GetInt("columns"),
	}
	// Fail on a bad grid now rather than on the first event.
	if _, err := request.Grid(); err != nil {
		return err
	}

	format := constant.FindImageFormat(viper.GetString("format"))
	sink, err := store.NewDirSink(viper.GetString("dir"))
	if err != nil {
		return err
	}
	log.Info().Str("path", path).Uint8("quality", quality).Str("format", format.String()).Interface("grid", request).Msg("Watching directory")

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	events := make(chan inotifywaitgo.FileEvent)
	errors := make(chan error)

	// WatchPath never closes its channels, the loops below stop on ctx instead.
	go func() {
		defer cancel()
		inotifywaitgo.WatchPath(&inotifywaitgo.Settings{
			Dir:        path,
			FileEvents: events,
			ErrorChan:  errors,
			Options: &inotifywaitgo.Options{
				Recursive: false,
				Events: []inotifywaitgo.EVENT{
					inotifywaitgo.MOVE,
					inotifywaitgo.CLOSE_WRITE,
				},
				Monitor: true,
			},
			Verbose: true,
		})
	}()

	watchEvents(ctx, events, errors, func(file string) error {
		_, err := utils2.SliceFile(ctx, &utils2.SliceOptions{
			Path:    file,
			Request: request,
			Format:  format,
			Quality: quality,
			Sink:    sink,
		})
		return err
	})

	log.Info().Str("path", path).Msg("Stopped watching directory")
	return nil
}

// watchEvents slices the files of events with handle and logs errors until ctx is done.
func watchEvents(ctx context.Context, events <-chan inotifywaitgo.FileEvent, errors chan error, handle func(file string) error) {
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			var event inotifywaitgo.FileEvent
			select {
			case <-ctx.Done():
				return
			case event = <-events:
			}
			log.Debug().Str("file", event.Filename).Interface("events", event.Events).Msg("File event")

			if !shouldSlice(event.Filename) {
				continue
			}

			for _, e := range event.Events {
				switch e {
				case inotifywaitgo.CLOSE_WRITE, inotifywaitgo.MOVE:
					if err := handle(event.Filename); err != nil {
						select {
						case errors <- fmt.Errorf("error processing file %s: %w", event.Filename, err):
						case <-ctx.Done():
							return
						}
					}
				default:
					// ignored
				}
			}
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case err := <-errors:
				log.Error().Err(err).Msg("Watch error")
			}
		}
	}()

	wg.Wait()
}

// shouldSlice accepts images that are not tiles themselves, so tiles written
// back into the watched folder are not sliced again.
func shouldSlice(filename string) bool {
	if !lo.Contains(imageExtensions, strings.ToLower(filepath.Ext(filename))) {
		return false
	}
	_, _, err := tile.DecodeName(filename)
	return err != nil
}
