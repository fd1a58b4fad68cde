package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/logistics_backend/models"
)

// sheet-inspect runs the ingestion pipeline over a local export and
// prints the aggregates. Handy for checking a sheet before uploading
// it, and for reproducing a dashboard snapshot at a past date.
func main() {
	file := flag.String("file", "", "Path to the exception sheet (.xlsx or .csv)")
	asOf := flag.String("as-of", "", "Optional: reference date for pendency (YYYY-MM-DD). Defaults to today.")
	flag.Parse()

	if strings.TrimSpace(*file) == "" {
		fmt.Fprintln(os.Stderr, "usage: sheet-inspect -file cases.xlsx [-as-of 2024-01-15]")
		os.Exit(1)
	}

	now := time.Now()
	if strings.TrimSpace(*asOf) != "" {
		t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(*asOf), time.Local)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -as-of date: %v\n", err)
			os.Exit(1)
		}
		now = t
	}

	f, err := os.Open(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open sheet: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	var rows [][]models.Cell
	switch ext := strings.ToLower(filepath.Ext(*file)); ext {
	case ".xlsx":
		rows, err = models.DecodeWorkbook(f)
	case ".csv":
		rows, err = models.DecodeCSV(f)
	default:
		fmt.Fprintf(os.Stderr, "unsupported file type %q (want .xlsx or .csv)\n", ext)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to decode sheet: %v\n", err)
		os.Exit(1)
	}

	records, skipped := models.ProcessRows(rows, models.BuildOptions{Now: now})

	out := struct {
		Summary     models.Summary           `json:"summary"`
		SkippedRows int                      `json:"skipped_rows"`
		Histogram   []models.HistogramBucket `json:"histogram"`
		TopIssues   []models.IssueStat       `json:"top_issues"`
	}{
		Summary:     models.Summarize(records),
		SkippedRows: skipped,
		Histogram:   models.PendencyHistogram(records),
		TopIssues:   models.TopIssues(records, models.TopIssueLimit),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode output: %v\n", err)
		os.Exit(1)
	}
}
