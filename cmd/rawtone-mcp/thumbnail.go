package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/rawtone-mcp/internal/imaging"
	"github.com/ironsheep/rawtone-mcp/internal/rawdecode"
)

var thumbnailCmd = &cobra.Command{
	Use:   "thumbnail",
	Short: "Write a downscaled JPEG of an image",
	Args:  cobra.NoArgs,
	RunE:  runThumbnail,
}

func init() {
	thumbnailCmd.Flags().StringP("input", "i", "", "Input RAW, TIFF, PNG or JPEG file")
	thumbnailCmd.Flags().StringP("output", "o", "", "Output file, usually .jpg")
	thumbnailCmd.Flags().Int("size", imaging.ThumbnailEdge, "Long edge in pixels")
	thumbnailCmd.MarkFlagRequired("input")
	thumbnailCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(thumbnailCmd)
}

func runThumbnail(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")
	size, _ := cmd.Flags().GetInt("size")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	src, err := rawdecode.NewAuto(cfg.DcrawPath).Decode(ctx, inputPath)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	if err := imaging.SaveThumbnail(src, outputPath, size); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outputPath)
	return nil
}
