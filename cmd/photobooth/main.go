// Command photobooth applies blur, edge, grayscale and sketch filters to
// image files, locally or through a Redis-backed worker pool.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"go-photobooth/pkg/codec"
	"go-photobooth/pkg/filter"
	"go-photobooth/pkg/processor"
)

// Exit codes.
const (
	exitOK = iota
	exitUsage
	exitUnknownFilter
	exitRead
	exitWrite
	exitFailure
)

type globalFlags struct {
	workers int
	verbose bool
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)

	err := root.Execute()
	if err == nil {
		return exitOK
	}

	fmt.Fprintln(os.Stderr, "Error:", err)
	return exitCode(err)
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, filter.ErrUnknownFilter):
		return exitUnknownFilter
	case errors.Is(err, codec.ErrDecode):
		return exitRead
	case errors.Is(err, codec.ErrEncode):
		return exitWrite
	case errors.Is(err, errUsage):
		return exitUsage
	}
	return exitFailure
}

var errUsage = errors.New("incorrect usage")

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	var output string

	cmd := &cobra.Command{
		Use:   "photobooth <image> <filter>",
		Short: "Apply an image filter",
		Long: "Apply an image filter to a picture and write it next to the input as\n" +
			"<name>_<filter>.<ext>.\n\nFilters: " + strings.Join(filter.Names(), ", "),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("%w: expected <image> <filter>, got %d arguments", errUsage, len(args))
			}
			return nil
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(g.verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return applyOne(cmd, args[0], args[1], output, g)
		},
	}

	cmd.PersistentFlags().IntVarP(&g.workers, "workers", "w", filter.DefaultOptions().Workers, "row bands processed in parallel per image")
	cmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "enable debug logging")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default <name>_<filter>.<ext>)")

	cmd.AddCommand(newFiltersCmd(), newBatchCmd(g), newServiceCmd(g))
	return cmd
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	filter.SetLogger(logger)
}

func applyOne(cmd *cobra.Command, input, filterName, output string, g *globalFlags) error {
	f, err := filter.Lookup(filterName)
	if err != nil {
		return fmt.Errorf("%w (run \"photobooth filters\" for the list)", err)
	}
	if output == "" {
		output = codec.OutputPath(input, f.Name)
	}

	start := time.Now()
	fmt.Fprintf(cmd.OutOrStdout(), "Applying %s filter...", f.Name)
	if err := processor.Run(input, output, f.Name, filter.Options{Workers: g.workers}); err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), " failed")
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), " complete (%.2fs)\n", time.Since(start).Seconds())
	fmt.Fprintln(cmd.OutOrStdout(), "Wrote", output)
	return nil
}

func newFiltersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "filters",
		Short: "List the available filters",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, f := range filter.All() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", f.Name, f.Description)
			}
		},
	}
}
