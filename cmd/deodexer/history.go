package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/odexlab/deodexer/internal/cli/config"
	"github.com/odexlab/deodexer/internal/history"
)

// historyCmd lists past batches, or the per-file jobs of one batch when a
// batch ID argument is given.
var historyCmd = &cobra.Command{
	Use:   "history [batchID]",
	Short: "Shows recent batch runs recorded in the local history database.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("history-path")
		limit, _ := cmd.Flags().GetInt("limit")

		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})
		store, err := history.Open(path, handler)
		if err != nil {
			return fmt.Errorf("open history database: %w", err)
		}
		defer store.Close()

		if len(args) == 1 {
			return printJobs(cmd, store, args[0])
		}
		return printBatches(cmd, store, limit)
	},
}

func printBatches(cmd *cobra.Command, store *history.Store, limit int) error {
	batches, err := store.RecentBatches(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(batches) == 0 {
		fmt.Println("No batches recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BATCH ID\tSTARTED\tFILES\tOK\tFAILED\tRATE\tDURATION")
	for _, b := range batches {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%.1f%%\t%.1fs\n",
			b.ID, b.StartedAt.Local().Format("2006-01-02 15:04:05"),
			b.TotalFiles, b.Succeeded, b.Failed, b.SuccessRate, b.DurationSeconds)
	}
	return w.Flush()
}

func printJobs(cmd *cobra.Command, store *history.Store, batchID string) error {
	jobs, err := store.JobsForBatch(cmd.Context(), batchID)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return fmt.Errorf("no jobs found for batch %q", batchID)
	}

	red := color.New(color.FgRed)
	for _, j := range jobs {
		if j.Error != "" {
			red.Printf("✗ %s (%.1fs): %s\n", j.File, j.DurationSeconds, j.Error)
		} else {
			fmt.Printf("✓ %s (%.1fs) -> %s\n", j.File, j.DurationSeconds, j.OutputPath)
		}
	}
	return nil
}

func init() {
	historyCmd.Flags().String("history-path", config.DefaultHistoryPath(), "Path to the history database")
	historyCmd.Flags().Int("limit", 20, "Maximum number of batches to list")
	rootCmd.AddCommand(historyCmd)
}
