package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
)

// Stage statuses reported in results and progress events.
const (
	StatusSkipped   = "skipped"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	RunID   string `json:"run_id,omitempty"`
	Stage   string `json:"stage"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// StageResult is the outcome of one stage in a run.
type StageResult struct {
	Stage    string
	Status   string
	Output   string
	Duration time.Duration
	Error    error
}

// Runner executes stages in order, skipping those already complete.
type Runner struct {
	Stages     []Stage
	Force      map[string]bool // stages to run even when their output exists
	OnProgress ProgressCallback
	Out        io.Writer

	runID uuid.UUID
}

// NewRunner returns a runner printing progress to stdout.
func NewRunner(stages ...Stage) *Runner {
	return &Runner{Stages: stages, Out: os.Stdout, runID: uuid.New()}
}

// RunID identifies this runner's executions in progress events and exports.
func (r *Runner) RunID() uuid.UUID {
	if r.runID == uuid.Nil {
		r.runID = uuid.New()
	}
	return r.runID
}

func (r *Runner) emit(stage, status, message string) {
	if r.OnProgress != nil {
		r.OnProgress(ProgressEvent{
			RunID:   r.RunID().String(),
			Stage:   stage,
			Status:  status,
			Message: message,
		})
	}
}

func (r *Runner) printf(format string, args ...any) {
	if r.Out != nil {
		_, _ = fmt.Fprintf(r.Out, format, args...)
	}
}

// Run executes every stage in order and stops at the first failure.
// Every stage after one that ran is run again, even if its output exists.
// Results cover every stage that was visited, including the failing one.
func (r *Runner) Run(ctx context.Context) ([]StageResult, error) {
	results := make([]StageResult, 0, len(r.Stages))
	total := len(r.Stages)

	// once a stage rewrites its output, later snapshots are stale
	stale := false
	for i, stage := range r.Stages {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res := StageResult{Stage: stage.Name(), Output: stage.Output()}
		if stage.IsComplete() && !r.Force[stage.Name()] && !stale {
			res.Status = StatusSkipped
			results = append(results, res)
			r.printf("Stage %d/%d: %s already complete (%s), skipping\n", i+1, total, stage.Name(), stage.Output())
			r.emit(stage.Name(), StatusSkipped, "output already exists")
			continue
		}

		r.printf("Stage %d/%d: running %s -> %s...\n", i+1, total, stage.Name(), stage.Output())
		start := time.Now()
		err := stage.Run(ctx)
		res.Duration = time.Since(start)

		if err != nil {
			res.Status = StatusFailed
			res.Error = err
			results = append(results, res)
			r.emit(stage.Name(), StatusFailed, err.Error())
			return results, err
		}

		res.Status = StatusCompleted
		stale = true
		results = append(results, res)
		r.emit(stage.Name(), StatusCompleted, fmt.Sprintf("wrote %s in %s", stage.Output(), res.Duration.Round(time.Millisecond)))
	}

	return results, nil
}
