package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"go-photobooth/pkg/codec"
	"go-photobooth/pkg/filter"
	"go-photobooth/pkg/processor"
	"go-photobooth/pkg/stats"
)

func newBatchCmd(g *globalFlags) *cobra.Command {
	var (
		inputDir   string
		outputDir  string
		filterName string
		statsDir   string
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Filter every image in a directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := filter.Lookup(filterName)
			if err != nil {
				return err
			}
			if outputDir == "" {
				outputDir = inputDir
			}
			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}

			inputs, err := codec.FindImages(inputDir, filter.Names())
			if err != nil {
				return fmt.Errorf("find input files: %w", err)
			}
			if len(inputs) == 0 {
				return fmt.Errorf("no images found in %s", inputDir)
			}

			result := runBatch(inputs, outputDir, f, filter.Options{Workers: g.workers})

			if statsDir != "" {
				path, err := stats.WritePerformanceResults(statsDir, []stats.PerformanceData{result})
				if err != nil {
					return err
				}
				slog.Info("results written", slog.String("path", path))
			}
			if result.Failures > 0 {
				return fmt.Errorf("%d of %d images failed", result.Failures, len(inputs))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputDir, "input", "i", ".", "input directory")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (default: input directory)")
	cmd.Flags().StringVarP(&filterName, "filter", "f", "", "filter to apply")
	cmd.Flags().StringVar(&statsDir, "stats", "", "write a performance results file into this directory")
	_ = cmd.MarkFlagRequired("filter")
	return cmd
}

// runBatch filters inputs one after another. Failures are logged and counted;
// they do not stop the batch.
func runBatch(inputs []string, outputDir string, f filter.Filter, opts filter.Options) stats.PerformanceData {
	start := time.Now()
	slog.Info("starting batch", slog.String("filter", f.Name), slog.Int("images", len(inputs)))

	var (
		outputs    []string
		failures   int
		filterTime float64
	)
	for i, input := range inputs {
		output := codec.OutputPathIn(outputDir, input, f.Name)
		imageStart := time.Now()

		if err := processor.Run(input, output, f.Name, opts); err != nil {
			failures++
			slog.Error("image failed", slog.Int("index", i+1), slog.String("input", input), slog.Any("error", err))
			continue
		}

		elapsed := time.Since(imageStart).Seconds()
		filterTime += elapsed
		outputs = append(outputs, output)
		slog.Info("image done", slog.String("input", input), slog.Float64("seconds", elapsed))
	}

	result := stats.NewPerformanceData(f.Name, "batch", start, inputs, outputs)
	result.Failures = failures
	result.TotalFilterTime = &filterTime
	result.Workers = &opts.Workers

	slog.Info("batch complete",
		slog.Int("processed", len(outputs)),
		slog.Int("failed", failures),
		slog.Float64("seconds", result.TotalTime))
	return result
}
