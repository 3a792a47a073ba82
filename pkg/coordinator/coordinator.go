// Package coordinator enqueues filter jobs for a set of images and gathers
// the workers' results.
package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"go-photobooth/pkg/codec"
	"go-photobooth/pkg/common"
	"go-photobooth/pkg/filter"
)

// Queue is the part of the queue a coordinator needs.
type Queue interface {
	AddJob(ctx context.Context, job *common.JobMessage) (string, error)
	ReadResult(ctx context.Context, consumer string, block time.Duration) (string, *common.ResultMessage, error)
	AckResult(ctx context.Context, id string) error
}

// Coordinator submits one job per image and collects the results.
type Coordinator struct {
	queue     Queue
	filter    string
	outputDir string
	consumer  string
	log       *slog.Logger
}

// New returns a coordinator for the named filter. Outputs land in outputDir.
// The filter name is validated up front.
func New(queue Queue, filterName, outputDir, consumer string, log *slog.Logger) (*Coordinator, error) {
	f, err := filter.Lookup(filterName)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = filter.Logger()
	}
	return &Coordinator{
		queue:     queue,
		filter:    f.Name,
		outputDir: outputDir,
		consumer:  consumer,
		log:       log,
	}, nil
}

// Submit enqueues a job for every input and returns the jobs in input order.
// All jobs of one call share a run ID that Collect matches results against.
func (c *Coordinator) Submit(ctx context.Context, inputs []string) ([]common.FilterJob, error) {
	jobs := make([]common.FilterJob, len(inputs))
	now := time.Now()
	runID := fmt.Sprintf("%s-%d", c.consumer, now.UnixNano())
	for i, input := range inputs {
		jobs[i] = common.FilterJob{
			RunID:      runID,
			ImageID:    i,
			InputPath:  input,
			OutputPath: codec.OutputPathIn(c.outputDir, input, c.filter),
			Filter:     c.filter,
			QueuedAt:   now,
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i := range jobs {
		job := &jobs[i]
		g.Go(func() error {
			if _, err := c.queue.AddJob(ctx, &common.JobMessage{Type: common.JobTypeFilter, Job: job}); err != nil {
				return fmt.Errorf("image %d: %w", job.ImageID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.log.Info("jobs queued", slog.Int("count", len(jobs)), slog.String("filter", c.filter))
	return jobs, nil
}

// Collect reads results until every job in jobs has one or ctx is done.
// Results from other runs and repeated results for the same image are
// acknowledged and dropped. Results that arrived before ctx ended are
// returned alongside ctx's error.
func (c *Coordinator) Collect(ctx context.Context, jobs []common.FilterJob, block time.Duration) ([]*common.ResultMessage, error) {
	pending := make(map[string]map[int]bool)
	for _, job := range jobs {
		if pending[job.RunID] == nil {
			pending[job.RunID] = make(map[int]bool)
		}
		pending[job.RunID][job.ImageID] = true
	}

	results := make([]*common.ResultMessage, 0, len(jobs))
	for len(results) < len(jobs) {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		id, res, err := c.queue.ReadResult(ctx, c.consumer, block)
		if err != nil {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			c.log.Warn("read result failed", slog.Any("error", err))
			if id != "" {
				_ = c.queue.AckResult(ctx, id)
			} else {
				c.backoff(ctx)
			}
			continue
		}
		if res == nil {
			continue
		}

		if err := c.queue.AckResult(ctx, id); err != nil {
			c.log.Warn("ack result failed", slog.String("id", id), slog.Any("error", err))
		}
		if !pending[res.RunID][res.ImageID] {
			c.log.Debug("ignoring result",
				slog.String("id", id),
				slog.String("run_id", res.RunID),
				slog.Int("image_id", res.ImageID))
			continue
		}
		delete(pending[res.RunID], res.ImageID)

		if res.Failed() {
			c.log.Warn("image failed",
				slog.Int("image_id", res.ImageID),
				slog.String("input", res.InputPath),
				slog.String("error", res.Error))
		} else {
			c.log.Info("image done",
				slog.Int("image_id", res.ImageID),
				slog.String("output", res.OutputPath),
				slog.String("worker", res.WorkerID),
				slog.Float64("seconds", res.ProcessTime))
		}
		results = append(results, res)
	}

	return results, nil
}

func (c *Coordinator) backoff(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
	}
}
