package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/odexlab/deodexer/pkg/deodex"
)

// checkCmd verifies the external prerequisites without running a batch.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verifies the Java runtime, tool JAR, and framework directory.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		javaPath, _ := cmd.Flags().GetString("java")
		toolPath, _ := cmd.Flags().GetString("tool")
		frameworkDir, _ := cmd.Flags().GetString("framework")

		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		green := color.New(color.FgGreen)
		red := color.New(color.FgRed)
		ok := true

		checker := deodex.NewHostEnvChecker(javaPath, toolPath, handler)
		if err := checker.Check(ctx); err != nil {
			red.Printf("✗ environment: %v\n", err)
			ok = false
		} else {
			green.Printf("✓ java runtime found (%s)\n", javaPath)
			green.Printf("✓ tool JAR is a readable archive (%s)\n", toolPath)
		}

		if frameworkDir != "" {
			if err := deodex.ValidateFrameworkDir(frameworkDir); err != nil {
				red.Printf("✗ framework directory: %v\n", err)
				ok = false
			} else {
				green.Printf("✓ framework directory looks usable (%s)\n", frameworkDir)
			}
		}

		if !ok {
			return fmt.Errorf("environment check failed")
		}
		fmt.Println("Environment is ready.")
		return nil
	},
}

func init() {
	checkCmd.Flags().String("java", deodex.DefaultJavaBinary, "Java binary used to launch the tool")
	checkCmd.Flags().StringP("tool", "t", "", "Path to the baksmali JAR")
	checkCmd.Flags().StringP("framework", "d", "", "Platform framework directory to validate")
	_ = checkCmd.MarkFlagRequired("tool")
	rootCmd.AddCommand(checkCmd)
}
