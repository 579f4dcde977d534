package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/rawtone-mcp/internal/imaging"
	"github.com/ironsheep/rawtone-mcp/internal/logging"
	"github.com/ironsheep/rawtone-mcp/internal/rawdecode"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Develop a single image with the given adjustments and save it",
	Args:  cobra.NoArgs,
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().StringP("input", "i", "", "Input RAW, TIFF, PNG or JPEG file")
	renderCmd.Flags().StringP("output", "o", "", "Output file; format follows the extension")
	renderCmd.Flags().Float32("exposure", 0, "Exposure in stops (-5 to 5)")
	renderCmd.Flags().Float32("contrast", 0, "Contrast (-100 to 100)")
	renderCmd.Flags().Float32("highlights", 0, "Highlight recovery (0 to 100)")
	renderCmd.Flags().Float32("shadows", 0, "Shadow lift (0 to 100)")
	renderCmd.Flags().Float32("black-levels", 0, "Black level offset (-100 to 100)")
	renderCmd.Flags().Float32("saturation", 0, "Saturation (-100 to 100)")
	renderCmd.Flags().Int("bit-depth", imaging.BitDepth8, "Output bit depth, 8 or 16 (16 only for PNG and TIFF)")
	renderCmd.MarkFlagRequired("input")
	renderCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(renderCmd)
}

// paramsFromFlags reads the adjustment flags and clamps them to range.
func paramsFromFlags(cmd *cobra.Command) imaging.Parameter {
	get := func(name string) float32 {
		v, _ := cmd.Flags().GetFloat32(name)
		return v
	}
	return imaging.Parameter{
		Exposure:    get("exposure"),
		Contrast:    get("contrast"),
		Highlights:  get("highlights"),
		Shadows:     get("shadows"),
		BlackLevels: get("black-levels"),
		Saturation:  get("saturation"),
	}.Clamp()
}

func runRender(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")
	bitDepth, _ := cmd.Flags().GetInt("bit-depth")

	if bitDepth != imaging.BitDepth8 && bitDepth != imaging.BitDepth16 {
		return fmt.Errorf("bit depth must be 8 or 16, got %d", bitDepth)
	}
	if _, err := imaging.FormatFromPath(outputPath); err != nil {
		return err
	}

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

	params := paramsFromFlags(cmd)
	out, err := imaging.Render(src, params)
	if err != nil {
		return fmt.Errorf("rendering: %w", err)
	}
	if err := imaging.Save(out, outputPath, bitDepth); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	logging.Logger().Info("rendered", "input", inputPath, "output", outputPath,
		"bit_depth", imaging.EffectiveBitDepth(outputPath, bitDepth))
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%dx%d, %d-bit)\n", outputPath, out.Width, out.Height,
		imaging.EffectiveBitDepth(outputPath, bitDepth))
	return nil
}
