package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"go-photobooth/pkg/codec"
	"go-photobooth/pkg/coordinator"
	"go-photobooth/pkg/filter"
	"go-photobooth/pkg/processor"
	"go-photobooth/pkg/queue"
)

type serviceFlags struct {
	mode       string
	redisAddr  string
	inputDir   string
	outputDir  string
	filterName string
	numWorkers int
	timeout    time.Duration
}

func newServiceCmd(g *globalFlags) *cobra.Command {
	sf := &serviceFlags{}

	cmd := &cobra.Command{
		Use:   "service",
		Short: "Run the distributed coordinator and/or worker pool over Redis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runService(ctx, sf, g)
		},
	}

	redisDefault := os.Getenv("PHOTOBOOTH_REDIS")
	if redisDefault == "" {
		redisDefault = "localhost:6379"
	}

	cmd.Flags().StringVar(&sf.mode, "mode", "all", "coordinator, worker, or all")
	cmd.Flags().StringVar(&sf.redisAddr, "redis", redisDefault, "Redis address (env PHOTOBOOTH_REDIS)")
	cmd.Flags().StringVarP(&sf.inputDir, "input", "i", ".", "input directory (coordinator)")
	cmd.Flags().StringVarP(&sf.outputDir, "output", "o", "output", "output directory (coordinator)")
	cmd.Flags().StringVarP(&sf.filterName, "filter", "f", "blur", "filter to apply (coordinator)")
	cmd.Flags().IntVar(&sf.numWorkers, "pool", 4, "concurrent jobs per worker process")
	cmd.Flags().DurationVar(&sf.timeout, "timeout", 10*time.Minute, "how long the coordinator waits for results")
	return cmd
}

func runService(ctx context.Context, sf *serviceFlags, g *globalFlags) error {
	hostname, _ := os.Hostname()
	serviceID := fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
	log := slog.Default().With(slog.String("service_id", serviceID))

	log.Info("starting photobooth service",
		slog.String("mode", sf.mode),
		slog.String("redis", sf.redisAddr))

	client, err := queue.NewRedisClient(ctx, sf.redisAddr)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.EnsureGroups(ctx); err != nil {
		return err
	}

	poolCfg := processor.Config{
		NumWorkers: sf.numWorkers,
		WorkerID:   serviceID,
		Filter:     filter.Options{Workers: g.workers},
	}

	switch sf.mode {
	case "coordinator":
		return runCoordinator(ctx, client, sf, serviceID, log)

	case "worker":
		processor.NewWorkerPool(client, poolCfg, log).Run(ctx)
		return nil

	case "all":
		poolCtx, cancelPool := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			processor.NewWorkerPool(client, poolCfg, log).Run(poolCtx)
		}()

		err := runCoordinator(ctx, client, sf, serviceID, log)
		cancelPool()
		<-done
		return err
	}

	return fmt.Errorf("%w: invalid mode %q, use coordinator, worker, or all", errUsage, sf.mode)
}

func runCoordinator(ctx context.Context, client *queue.RedisClient, sf *serviceFlags, serviceID string, log *slog.Logger) error {
	coord, err := coordinator.New(client, sf.filterName, sf.outputDir, serviceID+"-coordinator", log)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(sf.outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	inputs, err := codec.FindImages(sf.inputDir, filter.Names())
	if err != nil {
		return fmt.Errorf("find input files: %w", err)
	}
	if len(inputs) == 0 {
		log.Warn("no images found", slog.String("dir", sf.inputDir))
		return nil
	}

	start := time.Now()
	jobs, err := coord.Submit(ctx, inputs)
	if err != nil {
		return err
	}

	waitCtx, cancel := context.WithTimeout(ctx, sf.timeout)
	defer cancel()

	results, err := coord.Collect(waitCtx, jobs, 5*time.Second)
	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}
	log.Info("coordinator finished",
		slog.Int("results", len(results)),
		slog.Int("failed", failed),
		slog.Float64("seconds", time.Since(start).Seconds()))

	if err != nil {
		return fmt.Errorf("waiting for results: %w", err)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, len(inputs))
	}
	return nil
}
