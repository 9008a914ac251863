package commands

import (
	"fmt"

	"github.com/belphemur/TileSlicer/internal/store"
	utils2 "github.com/belphemur/TileSlicer/internal/utils"
	"github.com/belphemur/TileSlicer/pkg/encoder/constant"
	"github.com/spf13/cobra"
	"github.com/thediveo/enumflag/v2"
)

var joinFormat constant.ImageFormat

func init() {
	AddCommand(newJoinCommand())
}

func newJoinCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "join [folder or archive]",
		Short: "Join tiles back into one image",
		Long:  "Join tiles back into one image.\nTiles are read from a folder or from an archive (zip, cbz, tar, 7z, rar) and placed by the row and column of their name.",
		RunE:  JoinCommand,
		Args:  cobra.ExactArgs(1),
	}
	formatFlag := enumflag.New(&joinFormat, "format", constant.CommandValue, enumflag.EnumCaseInsensitive)
	_ = formatFlag.RegisterCompletion(command, "format", constant.HelpText)

	command.Flags().StringP("output", "o", "", "Path of the joined image (default joined.<format> in the current directory)")
	command.Flags().StringP("basename", "b", "", "Basename of the tiles to join when the source holds several tile sets")
	command.Flags().Int("width", 0, "Width of the joined image, computed from the tiles when 0")
	command.Flags().Int("height", 0, "Height of the joined image, computed from the tiles when 0")
	command.Flags().Uint8P("quality", "q", 85, "Quality for lossy formats (1-100)")
	command.PersistentFlags().VarP(
		formatFlag,
		"format", "f",
		fmt.Sprintf("Format of the joined image: %s", constant.ListAll()))
	command.PersistentFlags().Lookup("format").NoOptDefVal = constant.DefaultFormat.String()

	return command
}

func JoinCommand(cmd *cobra.Command, args []string) error {
	path := args[0]
	if path == "" {
		return fmt.Errorf("path is required")
	}

	quality, err := cmd.Flags().GetUint8("quality")
	if err != nil || quality <= 0 || quality > 100 {
		return fmt.Errorf("invalid quality value")
	}

	width, err := cmd.Flags().GetInt("width")
	if err != nil || width < 0 {
		return fmt.Errorf("invalid width value")
	}
	height, err := cmd.Flags().GetInt("height")
	if err != nil || height < 0 {
		return fmt.Errorf("invalid height value")
	}

	output, _ := cmd.Flags().GetString("output")
	basename, _ := cmd.Flags().GetString("basename")

	ctx := commandContext(cmd)
	source, err := store.OpenSource(ctx, path)
	if err != nil {
		return err
	}

	_, err = utils2.JoinTiles(ctx, &utils2.JoinOptions{
		Source:   source,
		Basename: basename,
		Width:    width,
		Height:   height,
		Output:   output,
		Format:   joinFormat,
		Quality:  quality,
	})
	return err
}
