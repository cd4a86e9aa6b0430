// Command analyze runs one supply-interruption analysis from CSV files and
// prints a summary, optionally writing the full report to CSV or HTML.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/lmr105/supply-interruption-service/internal/analysis"
	"github.com/lmr105/supply-interruption-service/internal/domain"
	"github.com/lmr105/supply-interruption-service/internal/ingest"
	"github.com/lmr105/supply-interruption-service/internal/observability"
	"github.com/lmr105/supply-interruption-service/internal/report"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	pressurePath := flag.String("pressure-csv", "", "pressure data CSV (timestamp, pressure in m head)")
	heightsPath := flag.String("heights-csv", "", "property heights CSV (one elevation per line)")
	loggerHeight := flag.Float64("logger-height", 0, "logger elevation in metres AOD")
	headloss := flag.Float64("headloss", 0, "static headloss allowance in metres")
	unitCost := flag.Float64("unit-cost", 0, "cost per impact unit; zero disables cost figures")
	csvOut := flag.String("csv-out", "", "write the full report as CSV to this path")
	htmlOut := flag.String("html-out", "", "write the full report as HTML to this path")
	workers := flag.Int("workers", 0, "per-group worker count; zero means GOMAXPROCS")
	flag.Parse()

	if *pressurePath == "" || *heightsPath == "" {
		flag.Usage()
		return fmt.Errorf("-pressure-csv and -heights-csv are required")
	}

	readings, err := readPressure(*pressurePath)
	if err != nil {
		return err
	}
	heights, err := readHeights(*heightsPath)
	if err != nil {
		return err
	}

	logger := observability.NewLogger("warn", "text")
	analyzer := analysis.New(logger, observability.NewMetrics(), *workers)

	params := analysis.DefaultParameters(*loggerHeight)
	params.Headloss = *headloss
	params.UnitCost = *unitCost

	result, err := analyzer.Analyze(context.Background(), readings, heights, params)
	if err != nil {
		return err
	}

	rep := report.Build(result)

	if *csvOut != "" {
		if err := writeReport(*csvOut, rep, report.WriteCSV); err != nil {
			return err
		}
	}
	if *htmlOut != "" {
		if err := writeReport(*htmlOut, rep, report.WriteHTML); err != nil {
			return err
		}
	}

	printSummary(os.Stdout, result, rep)
	return nil
}

func readPressure(path string) ([]domain.Reading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ingest.ReadPressureCSV(f)
}

func readHeights(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ingest.ReadHeightsCSV(f)
}

func writeReport(path string, rep *report.Report, write func(w io.Writer, rep *report.Report) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := write(f, rep); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func printSummary(w io.Writer, result *analysis.Result, rep *report.Report) {
	fmt.Fprintf(w, "Run %s\n", result.RunID)
	fmt.Fprintf(w, "Window: %s to %s\n",
		result.WindowStart.Format("2006-01-02 15:04:05"),
		result.WindowEnd.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Property groups: %d\n", len(result.Groups))
	fmt.Fprintf(w, "True outages: %d\n", len(result.Outages))

	for _, o := range result.Outages {
		fmt.Fprintf(w, "  %gm (%d properties): %s to %s, cumulative %s, impact %.5f\n",
			o.Height, o.Count,
			o.LostAt.Format("2006-01-02 15:04:05"),
			o.RegainedAt.Format("2006-01-02 15:04:05"),
			report.FormatDuration(o.Cumulative), o.Impact)
	}

	fmt.Fprintf(w, "Total impact: %s (per hour: %s)\n", rep.TotalImpact, rep.ImpactPerHour)
	if rep.HasCost {
		fmt.Fprintf(w, "Total cost: %s\n", rep.TotalCost)
	}
}
