package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/odexlab/deodexer/internal/cli"
	"github.com/odexlab/deodexer/internal/cli/config"
	"github.com/odexlab/deodexer/pkg/deodex"
)

var (
	// These are set during build time using -ldflags.
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// Flags persistent across commands.
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "deodexer -i <inputDir> -o <outputDir> -d <frameworkDir> -t <baksmali.jar>",
	Short: "Batch deodexes Android .odex files using baksmali.",
	Long: `deodexer scans a directory tree for .odex files and converts each one
through the baksmali deodex command, mirroring the input layout under the
output directory.

It features:
  - Parallel conversion with a bounded worker pool.
  - Per-file parameter tuning based on file size and host load.
  - Environment pre-checks for the Java runtime and tool JAR.
  - JSON/CSV batch reports and a local run history.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Interrupt or SIGTERM cancels the batch; in-flight subprocesses
		// are killed and remaining files are reported as not invoked.
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		settings, logger, err := config.LoadAndValidate(cfgFile, verbose, cmd.Flags())
		if err != nil {
			return err
		}

		return cli.Run(ctx, settings, logger)
	},
}

// Execute runs the root Cobra command and returns its error for exit-code
// selection in main.
func Execute() error {
	rootCmd.SetVersionTemplate(`{{.Use}} version {{.Version}}` + "\n")
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Configuration file path (default is search ., $HOME/.config/deodexer/)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose (debug) logging output")

	// Path flags. Also settable via the config file or DEODEXER_* environment
	// variables, so presence is validated after the config merge rather than
	// by cobra.
	rootCmd.Flags().StringP("input", "i", "", "Required. Directory scanned recursively for odex files.")
	rootCmd.Flags().StringP("output", "o", "", "Required. Output directory for deodexed smali trees.")
	rootCmd.Flags().StringP("framework", "d", "", "Required. Platform framework directory passed to baksmali.")
	rootCmd.Flags().StringP("tool", "t", "", "Required. Path to the baksmali JAR.")

	// Invocation flags
	rootCmd.Flags().String("java", deodex.DefaultJavaBinary, "Java binary used to launch the tool")
	rootCmd.Flags().IntP("api-level", "a", deodex.DefaultAPILevel, "Target Android API level")
	rootCmd.Flags().IntP("workers", "w", deodex.DefaultMaxWorkers, fmt.Sprintf("Number of parallel workers (max %d)", deodex.MaxWorkersLimit))
	rootCmd.Flags().Int("timeout", int(deodex.DefaultBaseTimeout.Seconds()), "Base per-file timeout in seconds, before load-based scaling")
	rootCmd.Flags().String("extension", deodex.DefaultExtension, "File extension to discover")
	rootCmd.Flags().StringArray("exclude", []string{}, "Glob patterns for paths to skip during discovery (can be specified multiple times)")

	// Behavior flags
	rootCmd.Flags().Bool("dry-run", false, "Discover and report files without invoking the tool")
	rootCmd.Flags().Bool("validate", false, "Reject files failing odex validation before invoking the tool")

	// Report & history flags
	rootCmd.Flags().String("report-format", string(deodex.ExportJSON), `Batch report format ("json", "csv")`)
	rootCmd.Flags().String("report-dir", ".", "Directory the batch report is written to")
	rootCmd.Flags().String("history-path", "", "Path to the history database (default is under the user config dir)")
	rootCmd.Flags().Bool("no-history", false, "Skip recording this batch in history")
	rootCmd.Flags().Bool("no-progress", false, "Disable the progress bar even in a TTY")
}
