package deodex

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// GenerateReport aggregates a completed result sequence into a BatchReport.
// Pure computation: no I/O, no division faults on empty input. A result
// carrying nonsense values (negative duration or size) contributes zero
// rather than corrupting the summary.
func GenerateReport(results []ConversionResult) BatchReport {
	report := BatchReport{
		Results:     make([]ResultRecord, 0, len(results)),
		Errors:      make([]FailureRecord, 0),
		GeneratedAt: time.Now().UTC(),
	}

	summary := ReportSummary{TotalFiles: len(results)}
	for _, r := range results {
		duration := r.DurationSeconds
		if duration < 0 {
			duration = 0
		}
		summary.TotalDuration += duration
		if r.SizeBytes > 0 {
			summary.TotalSizeBytes += r.SizeBytes
		}

		switch r.Status {
		case StatusSucceeded:
			summary.Succeeded++
		case StatusFailed:
			summary.Failed++
			report.Errors = append(report.Errors, FailureRecord{File: r.SourcePath, Error: r.ErrorDetail})
		}

		report.Results = append(report.Results, ResultRecord{
			File:            r.SourcePath,
			Status:          r.Status,
			OutputPath:      r.OutputPath,
			DurationSeconds: duration,
			Error:           r.ErrorDetail,
		})
	}

	if summary.TotalFiles > 0 {
		summary.SuccessRate = float64(summary.Succeeded) / float64(summary.TotalFiles) * 100
		summary.AverageDuration = summary.TotalDuration / float64(summary.TotalFiles)
	}
	report.Summary = summary
	return report
}

// ExportReport serializes report into dir using the requested format and
// returns the written file path. Filenames embed the generation timestamp.
// Unsupported formats fail with ErrUnsupportedFormat instead of silently
// defaulting.
func ExportReport(report BatchReport, format ExportFormat, dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	stamp := report.GeneratedAt
	if stamp.IsZero() {
		stamp = time.Now().UTC()
	}
	name := ReportFilePrefix + stamp.Format(reportTimestampLayout)

	switch format {
	case ExportJSON:
		path := filepath.Join(dir, name+".json")
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal report: %w", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return "", fmt.Errorf("write report %q: %w", path, err)
		}
		return path, nil

	case ExportCSV:
		path := filepath.Join(dir, name+".csv")
		f, err := os.Create(path)
		if err != nil {
			return "", fmt.Errorf("create report %q: %w", path, err)
		}
		defer f.Close()

		w := csv.NewWriter(f)
		if err := w.Write([]string{"file", "status", "duration_seconds", "error"}); err != nil {
			return "", fmt.Errorf("write report header: %w", err)
		}
		for _, rec := range report.Results {
			row := []string{
				rec.File,
				string(rec.Status),
				strconv.FormatFloat(rec.DurationSeconds, 'f', 3, 64),
				rec.Error,
			}
			if err := w.Write(row); err != nil {
				return "", fmt.Errorf("write report row: %w", err)
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return "", fmt.Errorf("flush report %q: %w", path, err)
		}
		return path, nil

	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
