// Package stats records filter run timings and writes them to a results file.
package stats

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// PerformanceData holds timing and metadata for one batch run.
type PerformanceData struct {
	FilterName      string
	Mode            string
	ImagesProcessed int
	Failures        int
	TotalTime       float64
	AverageTime     float64
	InputPaths      []string
	OutputPaths     []string
	Timestamp       time.Time

	TotalFilterTime *float64 // time spent inside the filter only
	Workers         *int
}

// NewPerformanceData fills the derived averages from the measured totals.
func NewPerformanceData(filterName, mode string, start time.Time, inputs, outputs []string) PerformanceData {
	total := time.Since(start).Seconds()
	avg := 0.0
	if len(inputs) > 0 {
		avg = total / float64(len(inputs))
	}
	return PerformanceData{
		FilterName:      filterName,
		Mode:            mode,
		ImagesProcessed: len(inputs),
		TotalTime:       total,
		AverageTime:     avg,
		InputPaths:      inputs,
		OutputPaths:     outputs,
		Timestamp:       start,
	}
}

// WritePerformanceResults writes one results file into dir and returns its
// path. Nothing is written for an empty slice.
func WritePerformanceResults(dir string, results []PerformanceData) (string, error) {
	if len(results) == 0 {
		return "", nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create results directory: %w", err)
	}

	timestamp := results[0].Timestamp.Format("2006-01-02_15-04-05")
	resultsFile := filepath.Join(dir, fmt.Sprintf("photobooth_%s.txt", timestamp))

	file, err := os.Create(resultsFile)
	if err != nil {
		return "", fmt.Errorf("create results file: %w", err)
	}

	if err := Format(file, results); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", err
	}
	return resultsFile, nil
}

// Format renders results in the plain-text results layout.
func Format(w io.Writer, results []PerformanceData) error {
	if len(results) == 0 {
		return nil
	}

	p := &printer{w: w}
	p.printf("=== Photobooth Filter Results ===\n")
	p.printf("Timestamp: %s\n\n", results[0].Timestamp.Format("2006-01-02 15:04:05"))

	for _, result := range results {
		p.printf("=== %s (%s) Results ===\n", result.FilterName, result.Mode)
		p.printf("Images processed: %d\n", result.ImagesProcessed)
		if result.Failures > 0 {
			p.printf("Failures: %d\n", result.Failures)
		}

		if result.TotalFilterTime != nil {
			p.printf("Total filter time: %.2fs\n", *result.TotalFilterTime)
		}

		p.printf("Total execution time: %.2fs\n", result.TotalTime)
		p.printf("Average time per image: %.2fs\n", result.AverageTime)

		if result.Workers != nil {
			p.printf("Workers: %d\n", *result.Workers)
		}

		p.printf("\nInput files:\n")
		for i, path := range result.InputPaths {
			p.printf("  %d. %s\n", i+1, path)
		}

		p.printf("\nOutput files:\n")
		for i, path := range result.OutputPaths {
			p.printf("  %d. %s\n", i+1, path)
		}

		p.printf("\n")
	}
	return p.err
}

// printer keeps the first write error so Format can check once.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
