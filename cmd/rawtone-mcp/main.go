package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/rawtone-mcp/internal/config"
	"github.com/ironsheep/rawtone-mcp/internal/logging"
	"github.com/ironsheep/rawtone-mcp/internal/rawdecode"
	"github.com/ironsheep/rawtone-mcp/internal/render"
	"github.com/ironsheep/rawtone-mcp/internal/server"
	"github.com/ironsheep/rawtone-mcp/internal/store"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "rawtone-mcp",
	Short: "RAW photo developer served over MCP",
	Long: `rawtone-mcp decodes camera RAW files and applies exposure, contrast,
highlight, shadow and black level adjustments.

Without a subcommand it serves the Model Context Protocol on stdin/stdout.
Configure it in your MCP client (e.g., Claude Desktop).`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
	RunE:              runServe,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("log-level", "", "Log level: debug, info, warn, error (env "+config.EnvLogLevel+")")
	flags.String("temp-dir", "", "Directory for preview artifacts (env "+config.EnvTempDir+")")
	flags.String("data-dir", "", "Directory for the library and thumbnails (env "+config.EnvDataDir+")")
	flags.String("dcraw", "", "dcraw executable (env "+config.EnvDcraw+")")
	flags.String("preview-format", "", "Preview artifact format, jpg or png (env "+config.EnvPreviewFormat+")")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies any flags given on the
// command line.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.FromEnv()

	override := func(name string, dst *string) {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			*dst = f.Value.String()
		}
	}
	override("log-level", &cfg.LogLevel)
	override("temp-dir", &cfg.TempDir)
	override("data-dir", &cfg.DataDir)
	override("dcraw", &cfg.DcrawPath)
	override("preview-format", &cfg.PreviewFormat)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// setupLogging sends logs to stderr; stdout is for MCP protocol.
func setupLogging(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logging.SetLogger(logging.New(os.Stderr, level))
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirs(); err != nil {
		return err
	}

	log := logging.Logger()
	log.Info("starting", "version", Version, "built", BuildTime, "commit", GitCommit)

	decoder := rawdecode.NewAuto(cfg.DcrawPath)
	if err := (rawdecode.Dcraw{Binary: cfg.DcrawPath}).Available(); err != nil {
		log.Warn("RAW files cannot be opened until dcraw is installed", "error", err)
	}

	publisher, err := render.NewArtifactPublisher(cfg.TempDir, cfg.PreviewFormat)
	if err != nil {
		return err
	}

	library, err := store.Open(cfg.DatabasePath())
	if err != nil {
		return err
	}
	defer library.Close()

	srv := server.New(server.Options{
		Decoder:      decoder,
		Publisher:    publisher,
		MimeType:     publisher.MimeType(),
		Library:      library,
		ThumbnailDir: cfg.ThumbnailDir(),
	})
	defer srv.Close()

	if err := srv.Run(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
