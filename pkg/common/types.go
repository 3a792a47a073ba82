// Package common holds the messages exchanged over the job queue.
package common

import (
	"time"
)

// JobTypeFilter is the only job type workers act on.
const JobTypeFilter = "filter"

// FilterJob asks a worker to apply one filter to one image file. RunID ties
// the job to the Submit call that queued it.
type FilterJob struct {
	RunID      string    `json:"run_id"`
	ImageID    int       `json:"image_id"`
	InputPath  string    `json:"input_path"`
	OutputPath string    `json:"output_path"`
	Filter     string    `json:"filter"`
	QueuedAt   time.Time `json:"queued_at"`
}

// JobMessage is the envelope stored on the jobs stream.
type JobMessage struct {
	Type string     `json:"type"`
	Job  *FilterJob `json:"job,omitempty"`
}

// ResultMessage reports the outcome of a FilterJob. Error is empty on success.
type ResultMessage struct {
	RunID       string  `json:"run_id"`
	ImageID     int     `json:"image_id"`
	InputPath   string  `json:"input_path"`
	OutputPath  string  `json:"output_path"`
	Filter      string  `json:"filter"`
	WorkerID    string  `json:"worker_id"`
	ProcessTime float64 `json:"process_time"`
	Error       string  `json:"error,omitempty"`
}

// Failed reports whether the job behind r did not produce an output.
func (r *ResultMessage) Failed() bool {
	return r.Error != ""
}
