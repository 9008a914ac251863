package commands

import (
	"context"
	"fmt"

	"github.com/belphemur/TileSlicer/internal/grid"
	"github.com/belphemur/TileSlicer/internal/store"
	utils2 "github.com/belphemur/TileSlicer/internal/utils"
	"github.com/belphemur/TileSlicer/pkg/encoder/constant"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/thediveo/enumflag/v2"
)

var sliceFormat constant.ImageFormat

func init() {
	AddCommand(newSliceCommand())
}

func newSliceCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "slice [image]",
		Short: "Slice an image into a grid of tiles",
		Long:  "Slice an image into a grid of tiles.\nThe grid is given either as a number of tiles, factored into rows and columns, or as explicit rows and columns.\nTiles are named {basename}_{row}_{column}.{ext}, rows and columns starting at 0.",
		RunE:  SliceCommand,
		Args:  cobra.ExactArgs(1),
	}
	formatFlag := enumflag.New(&sliceFormat, "format", constant.CommandValue, enumflag.EnumCaseInsensitive)
	_ = formatFlag.RegisterCompletion(command, "format", constant.HelpText)

	command.Flags().IntP("tiles", "n", 0, "Number of tiles, takes precedence over rows and columns")
	command.Flags().IntP("rows", "r", 0, "Number of rows")
	command.Flags().IntP("columns", "c", 0, "Number of columns")
	command.Flags().StringP("dir", "d", ".", "Directory the tiles are written to")
	command.Flags().Uint8P("quality", "q", 85, "Quality for lossy formats (1-100)")
	command.Flags().String("prefix", "", "Basename of the tiles, defaults to the image name")
	command.Flags().String("s3-bucket", "", "Upload the tiles to this S3 bucket instead of --dir")
	command.Flags().String("s3-endpoint", "", "S3 endpoint, e.g. http://localhost:9000 for MinIO")
	command.Flags().String("s3-region", "us-east-1", "S3 region")
	command.Flags().String("s3-prefix", "", "Key prefix of the uploaded tiles")
	command.PersistentFlags().VarP(
		formatFlag,
		"format", "f",
		fmt.Sprintf("Format of the tiles: %s", constant.ListAll()))
	command.PersistentFlags().Lookup("format").NoOptDefVal = constant.DefaultFormat.String()

	return command
}

func SliceCommand(cmd *cobra.Command, args []string) error {
	path := args[0]
	if path == "" {
		return fmt.Errorf("path is required")
	}

	request, err := gridRequest(cmd)
	if err != nil {
		return err
	}

	quality, err := cmd.Flags().GetUint8("quality")
	if err != nil || quality <= 0 || quality > 100 {
		return fmt.Errorf("invalid quality value")
	}

	prefix, err := cmd.Flags().GetString("prefix")
	if err != nil {
		return fmt.Errorf("invalid prefix value")
	}

	ctx := commandContext(cmd)
	sink, err := newSink(ctx, cmd)
	if err != nil {
		return fmt.Errorf("failed to prepare output: %w", err)
	}

	log.Debug().Str("path", path).Interface("grid", request).Str("format", sliceFormat.String()).Msg("Slice requested")
	_, err = utils2.SliceFile(ctx, &utils2.SliceOptions{
		Path:    path,
		Request: request,
		Format:  sliceFormat,
		Quality: quality,
		Prefix:  prefix,
		Sink:    sink,
	})
	return err
}

func gridRequest(cmd *cobra.Command) (grid.Request, error) {
	tiles, err := cmd.Flags().GetInt("tiles")
	if err != nil {
		return grid.Request{}, fmt.Errorf("invalid tiles value")
	}
	rows, err := cmd.Flags().GetInt("rows")
	if err != nil {
		return grid.Request{}, fmt.Errorf("invalid rows value")
	}
	columns, err := cmd.Flags().GetInt("columns")
	if err != nil {
		return grid.Request{}, fmt.Errorf("invalid columns value")
	}
	return grid.Request{Tiles: tiles, Rows: rows, Columns: columns}, nil
}

// newSink writes into --dir unless an S3 bucket is configured.
func newSink(ctx context.Context, cmd *cobra.Command) (store.Sink, error) {
	bucket, _ := cmd.Flags().GetString("s3-bucket")
	if bucket == "" {
		dir, err := cmd.Flags().GetString("dir")
		if err != nil {
			return nil, fmt.Errorf("invalid dir value")
		}
		return store.NewDirSink(dir)
	}

	endpoint, _ := cmd.Flags().GetString("s3-endpoint")
	region, _ := cmd.Flags().GetString("s3-region")
	prefix, _ := cmd.Flags().GetString("s3-prefix")
	return store.NewS3Sink(ctx, store.S3Config{
		Endpoint:  endpoint,
		Region:    region,
		AccessKey: viper.GetString("s3_access_key"),
		SecretKey: viper.GetString("s3_secret_key"),
		Bucket:    bucket,
		Prefix:    prefix,
	})
}
