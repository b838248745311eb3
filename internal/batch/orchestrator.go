package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/trustscan-dev/trustscan/internal/model"
)

// Orchestrator errors.
var (
	// ErrEmptyJob is returned by CreateJob when no files are given.
	// Invalid input shape is rejected before a job id exists.
	ErrEmptyJob = errors.New("batch job requires at least one file")

	// ErrJobNotFound is returned when a job id is unknown.
	ErrJobNotFound = errors.New("batch job not found")

	// ErrJobAlreadySubmitted is returned by Submit when a job was already
	// started.
	ErrJobAlreadySubmitted = errors.New("batch job already submitted")

	// ErrJobCancelled is recorded as the per-file error for indices that
	// were still queued when the job was cancelled.
	ErrJobCancelled = errors.New("job cancelled")

	// ErrFileTimeout is recorded as the per-file error when one analysis
	// exceeds the configured timeout.
	ErrFileTimeout = errors.New("per-file analysis timed out")
)

// AnalyzeFunc analyzes one input file and returns its trust report.
type AnalyzeFunc func(ctx context.Context, file model.FileRef) (*model.TrustReport, error)

// Orchestrator runs batch jobs: bounded concurrent fan-out of a per-file
// analyzer over a job's files, with per-file success/failure tracking
// and consistent progress snapshots.
//
// Design decision: the orchestrator is an explicit value the caller
// constructs and owns, never a package-level singleton. Each job carries
// its own work queue and its own lock, so concurrent jobs never contend
// on shared dispatch structures or serialize each other's progress
// updates.
type Orchestrator struct {
	// maxWorkers caps per-job concurrency. The effective pool size for a
	// job is min(maxWorkers, len(files)).
	maxWorkers int

	// fileTimeout bounds each per-file analysis. Zero disables it.
	fileTimeout time.Duration

	// logger is used for job-level logging.
	logger *slog.Logger

	// mu guards the jobs map only; per-job state has its own lock.
	mu   sync.RWMutex
	jobs map[uuid.UUID]*jobState
}

// jobState is the orchestrator-private state of one job.
type jobState struct {
	// mu is the per-job lock guarding job and done below.
	mu  sync.Mutex
	job *model.BatchJob

	// queue is the job-scoped work queue of file indices. It is filled
	// and closed at submit time; workers range over it.
	queue chan int

	// recorded marks indices that already produced a result or error,
	// so completion stays idempotent by index.
	recorded []bool

	// cancel flips the cooperative cancellation flag. Checked by workers
	// between files.
	cancelMu  sync.Mutex
	cancelled bool

	// done is closed when the job reaches JobCompleted.
	done chan struct{}

	submitted bool
}

func (s *jobState) isCancelled() bool {
	s.cancelMu.Lock()
	defer s.cancelMu.Unlock()
	return s.cancelled
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMaxWorkers sets the per-job concurrency cap.
func WithMaxWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxWorkers = n
		}
	}
}

// WithFileTimeout bounds each per-file analysis; a file that exceeds it
// is recorded as a per-file error rather than stalling the job.
func WithFileTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.fileTimeout = d }
}

// WithLogger sets the logger for job-level events.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// NewOrchestrator creates a batch orchestrator with the given options.
// The default concurrency cap is 3 workers per job.
func NewOrchestrator(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		maxWorkers: 3,
		jobs:       make(map[uuid.UUID]*jobState),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// CreateJob allocates a pending job over the given files and returns its
// id. An empty file list is rejected before any job state is created.
func (o *Orchestrator) CreateJob(files []model.FileRef) (uuid.UUID, error) {
	if len(files) == 0 {
		return uuid.Nil, ErrEmptyJob
	}

	id := uuid.New()
	state := &jobState{
		job: &model.BatchJob{
			ID:        id,
			Files:     append([]model.FileRef(nil), files...),
			Total:     len(files),
			Status:    model.JobPending,
			Results:   make([]model.FileResult, 0, len(files)),
			Errors:    make([]model.FileError, 0),
			StartTime: time.Now().UTC(),
		},
		recorded: make([]bool, len(files)),
		done:     make(chan struct{}),
	}

	o.mu.Lock()
	o.jobs[id] = state
	o.mu.Unlock()

	o.logger.Info("batch job created",
		slog.String("job_id", id.String()),
		slog.Int("files", len(files)))
	return id, nil
}

// Submit starts processing the job with a worker pool of
// min(maxWorkers, total) goroutines pulling indices from the job's own
// queue. It returns immediately; use Status to poll or Wait to block.
//
// Design decision: errgroup with a filled-then-closed channel replaces a
// shared polled queue. A worker can only ever see indices of the job it
// was spawned for, and an idle worker exits when the channel drains
// instead of spinning on a timeout.
func (o *Orchestrator) Submit(ctx context.Context, jobID uuid.UUID, analyze AnalyzeFunc) error {
	state, err := o.state(jobID)
	if err != nil {
		return err
	}

	state.mu.Lock()
	if state.submitted {
		state.mu.Unlock()
		return ErrJobAlreadySubmitted
	}
	state.submitted = true
	total := state.job.Total
	state.mu.Unlock()

	state.queue = make(chan int, total)
	for i := 0; i < total; i++ {
		state.queue <- i
	}
	close(state.queue)

	workers := min(o.maxWorkers, total)
	o.logger.Info("batch job submitted",
		slog.String("job_id", jobID.String()),
		slog.Int("workers", workers))

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for index := range state.queue {
				if state.isCancelled() || ctx.Err() != nil {
					o.recordError(state, index, ErrJobCancelled.Error())
					continue
				}
				o.processFile(ctx, state, index, analyze)
			}
			return nil
		})
	}

	go func() {
		// Workers never return errors; failures are per-file entries.
		_ = g.Wait()
	}()
	return nil
}

// processFile runs the analyzer for one index under the configured
// timeout and records the outcome.
func (o *Orchestrator) processFile(ctx context.Context, state *jobState, index int, analyze AnalyzeFunc) {
	file := state.job.Files[index]

	fileCtx := ctx
	cancel := context.CancelFunc(func() {})
	if o.fileTimeout > 0 {
		fileCtx, cancel = context.WithTimeout(ctx, o.fileTimeout)
	}
	defer cancel()

	type outcome struct {
		report *model.TrustReport
		err    error
	}
	ch := make(chan outcome, 1)
	go func() {
		report, err := analyze(fileCtx, file)
		ch <- outcome{report: report, err: err}
	}()

	select {
	case out := <-ch:
		if out.err != nil {
			o.recordError(state, index, out.err.Error())
			return
		}
		o.recordResult(state, index, out.report)
	case <-fileCtx.Done():
		if errors.Is(fileCtx.Err(), context.DeadlineExceeded) {
			o.recordError(state, index, fmt.Sprintf("%s: %s", file.DisplayName(), ErrFileTimeout))
			return
		}
		o.recordError(state, index, ErrJobCancelled.Error())
	}
}

// recordResult appends a success entry for index under the job lock.
// Repeated completions for the same index are ignored.
func (o *Orchestrator) recordResult(state *jobState, index int, report *model.TrustReport) {
	state.mu.Lock()
	defer state.mu.Unlock()
	if state.recorded[index] {
		return
	}
	state.recorded[index] = true

	job := state.job
	job.Results = append(job.Results, model.FileResult{
		Index:  index,
		File:   job.Files[index].DisplayName(),
		Report: report,
	})
	o.advanceLocked(state)
}

// recordError appends a failure entry for index under the job lock.
func (o *Orchestrator) recordError(state *jobState, index int, msg string) {
	state.mu.Lock()
	defer state.mu.Unlock()
	if state.recorded[index] {
		return
	}
	state.recorded[index] = true

	job := state.job
	job.Errors = append(job.Errors, model.FileError{
		Index: index,
		File:  job.Files[index].DisplayName(),
		Error: msg,
	})
	o.advanceLocked(state)
}

// advanceLocked bumps the completion counter and transitions the status
// machine. Caller holds the job lock.
func (o *Orchestrator) advanceLocked(state *jobState) {
	job := state.job
	job.Completed++

	switch {
	case job.Completed == job.Total:
		job.Status = model.JobCompleted
		now := time.Now().UTC()
		job.EndTime = &now
		close(state.done)
		o.logger.Info("batch job completed",
			slog.String("job_id", job.ID.String()),
			slog.Int("results", len(job.Results)),
			slog.Int("errors", len(job.Errors)))
	case job.Status == model.JobPending:
		job.Status = model.JobProcessing
	}
}

// Status returns a deep-copied snapshot of the job, safe to read while
// processing continues.
func (o *Orchestrator) Status(jobID uuid.UUID) (*model.BatchJob, error) {
	state, err := o.state(jobID)
	if err != nil {
		return nil, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.job.Clone(), nil
}

// Cancel flips the job's cooperative cancellation flag. Workers finish
// the file they are on; indices still queued are drained and recorded as
// cancellation errors, so the job still reaches completed and the
// progress invariant holds. Other jobs are unaffected.
func (o *Orchestrator) Cancel(jobID uuid.UUID) error {
	state, err := o.state(jobID)
	if err != nil {
		return err
	}
	state.cancelMu.Lock()
	state.cancelled = true
	state.cancelMu.Unlock()

	o.logger.Info("batch job cancelled", slog.String("job_id", jobID.String()))
	return nil
}

// Wait blocks until the job completes or ctx is done, then returns the
// final snapshot.
func (o *Orchestrator) Wait(ctx context.Context, jobID uuid.UUID) (*model.BatchJob, error) {
	state, err := o.state(jobID)
	if err != nil {
		return nil, err
	}
	select {
	case <-state.done:
		return o.Status(jobID)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Jobs returns snapshots of all known jobs, newest first by start time.
func (o *Orchestrator) Jobs() []*model.BatchJob {
	o.mu.RLock()
	states := make([]*jobState, 0, len(o.jobs))
	for _, s := range o.jobs {
		states = append(states, s)
	}
	o.mu.RUnlock()

	out := make([]*model.BatchJob, 0, len(states))
	for _, s := range states {
		s.mu.Lock()
		out = append(out, s.job.Clone())
		s.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.After(out[j].StartTime)
	})
	return out
}

func (o *Orchestrator) state(jobID uuid.UUID) (*jobState, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	state, ok := o.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	return state, nil
}
