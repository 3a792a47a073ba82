// Package processor runs filter jobs pulled from the job queue.
package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go-photobooth/pkg/codec"
	"go-photobooth/pkg/common"
	"go-photobooth/pkg/filter"
)

// JobQueue is the part of the queue a worker pool needs.
type JobQueue interface {
	ReadJob(ctx context.Context, consumer string, block time.Duration) (string, *common.JobMessage, error)
	AckJob(ctx context.Context, id string) error
	AddResult(ctx context.Context, res *common.ResultMessage) (string, error)
	ClaimStaleJobs(ctx context.Context, consumer string, minIdle time.Duration, count int) (map[string]*common.JobMessage, error)
}

// Config tunes a WorkerPool.
type Config struct {
	NumWorkers    int
	WorkerID      string
	Filter        filter.Options
	ReadBlock     time.Duration
	RetryInterval time.Duration
	StaleAfter    time.Duration
}

func (c Config) withDefaults() Config {
	if c.NumWorkers <= 0 {
		c.NumWorkers = 1
	}
	if c.ReadBlock <= 0 {
		c.ReadBlock = 5 * time.Second
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = 30 * time.Second
	}
	if c.StaleAfter <= 0 {
		c.StaleAfter = 30 * time.Second
	}
	return c
}

// WorkerPool consumes filter jobs with a fixed number of goroutines.
type WorkerPool struct {
	queue         JobQueue
	cfg           Config
	log           *slog.Logger
	jobsProcessed atomic.Int64
}

// NewWorkerPool creates a pool reading from queue. A nil logger discards
// output.
func NewWorkerPool(queue JobQueue, cfg Config, log *slog.Logger) *WorkerPool {
	if log == nil {
		log = filter.Logger()
	}
	cfg = cfg.withDefaults()
	return &WorkerPool{
		queue: queue,
		cfg:   cfg,
		log:   log.With(slog.String("worker_id", cfg.WorkerID)),
	}
}

// Processed returns the number of jobs handled so far.
func (wp *WorkerPool) Processed() int64 {
	return wp.jobsProcessed.Load()
}

// Run starts the workers and the retry monitor and blocks until ctx is
// cancelled and all of them have returned.
func (wp *WorkerPool) Run(ctx context.Context) {
	var wg sync.WaitGroup

	for i := 0; i < wp.cfg.NumWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			wp.worker(ctx, id)
		}(i)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		wp.retryMonitor(ctx)
	}()

	wp.log.Info("worker pool started", slog.Int("workers", wp.cfg.NumWorkers))
	wg.Wait()
	wp.log.Info("worker pool stopped", slog.Int64("processed", wp.Processed()))
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	consumer := fmt.Sprintf("%s-worker-%d", wp.cfg.WorkerID, id)
	wp.log.Debug("worker started", slog.String("consumer", consumer))

	for ctx.Err() == nil {
		msgID, job, err := wp.queue.ReadJob(ctx, consumer, wp.cfg.ReadBlock)
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, context.Canceled) {
				wp.log.Warn("read job failed", slog.String("consumer", consumer), slog.Any("error", err))
				if msgID != "" {
					_ = wp.queue.AckJob(ctx, msgID)
				} else {
					wp.backoff(ctx)
				}
			}
			continue
		}
		if job == nil {
			continue
		}

		wp.handle(ctx, msgID, job)
	}
}

func (wp *WorkerPool) backoff(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
	}
}

// handle processes one delivered message and acknowledges it once the result
// has been published. A result that cannot be published leaves the message
// pending for the retry monitor.
func (wp *WorkerPool) handle(ctx context.Context, msgID string, job *common.JobMessage) {
	if job.Type != common.JobTypeFilter || job.Job == nil {
		wp.log.Warn("dropping invalid job", slog.String("id", msgID), slog.String("type", job.Type))
		_ = wp.queue.AckJob(ctx, msgID)
		return
	}

	result := wp.Process(job.Job)
	if _, err := wp.queue.AddResult(ctx, result); err != nil {
		wp.log.Warn("publish result failed", slog.String("id", msgID), slog.Any("error", err))
		return
	}
	if err := wp.queue.AckJob(ctx, msgID); err != nil {
		wp.log.Warn("ack failed", slog.String("id", msgID), slog.Any("error", err))
	}

	if count := wp.jobsProcessed.Add(1); count%100 == 0 {
		wp.log.Info("progress", slog.Int64("processed", count))
	}
}

// Process decodes the job's input, applies its filter and writes the output.
// Failures are reported in the result rather than returned.
func (wp *WorkerPool) Process(job *common.FilterJob) *common.ResultMessage {
	start := time.Now()
	result := &common.ResultMessage{
		RunID:      job.RunID,
		ImageID:    job.ImageID,
		InputPath:  job.InputPath,
		OutputPath: job.OutputPath,
		Filter:     job.Filter,
		WorkerID:   wp.cfg.WorkerID,
	}

	if err := Run(job.InputPath, job.OutputPath, job.Filter, wp.cfg.Filter); err != nil {
		result.Error = err.Error()
		wp.log.Warn("job failed",
			slog.Int("image_id", job.ImageID),
			slog.String("input", job.InputPath),
			slog.Any("error", err))
	} else {
		wp.log.Debug("job done",
			slog.Int("image_id", job.ImageID),
			slog.String("output", job.OutputPath))
	}

	result.ProcessTime = time.Since(start).Seconds()
	return result
}

// Run applies the named filter to the image at input and writes it to output
// in the format implied by output's extension, or as png when output has no
// extension and the input format cannot be written. Errors wrap
// filter.ErrUnknownFilter, codec.ErrDecode or codec.ErrEncode.
func Run(input, output, filterName string, opts filter.Options) error {
	f, err := filter.Lookup(filterName)
	if err != nil {
		return err
	}

	img, format, err := codec.Decode(input)
	if err != nil {
		return err
	}

	f.Apply(img, opts)

	if ext := codec.FormatFromPath(output); ext != "" {
		format = ext
	} else if !codec.CanEncode(format) {
		format = "png"
	}
	return codec.Encode(output, img, format)
}

func (wp *WorkerPool) retryMonitor(ctx context.Context) {
	ticker := time.NewTicker(wp.cfg.RetryInterval)
	defer ticker.Stop()

	consumer := fmt.Sprintf("%s-retry-monitor", wp.cfg.WorkerID)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			claimed, err := wp.queue.ClaimStaleJobs(ctx, consumer, wp.cfg.StaleAfter, 50)
			if err != nil {
				if ctx.Err() == nil {
					wp.log.Warn("claim stale jobs failed", slog.Any("error", err))
				}
				continue
			}

			if len(claimed) > 0 {
				wp.log.Info("retrying stale jobs", slog.Int("count", len(claimed)))
			}
			for id, job := range claimed {
				wp.handle(ctx, id, job)
			}
		}
	}
}
