package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trustscan-dev/trustscan/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func refs(names ...string) []model.FileRef {
	out := make([]model.FileRef, len(names))
	for i, n := range names {
		out[i] = model.FileRef{Path: n}
	}
	return out
}

func okAnalyze(context.Context, model.FileRef) (*model.TrustReport, error) {
	return &model.TrustReport{Score: 0.5, Decision: model.DecisionAmbiguous}, nil
}

func TestOrchestratorCreateJob(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(WithLogger(testLogger()))

	id, err := o.CreateJob(refs("a.mp4", "b.mp4"))
	if err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}
	if id == uuid.Nil {
		t.Fatal("CreateJob() returned nil id")
	}

	job, err := o.Status(id)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if job.Status != model.JobPending {
		t.Errorf("Status = %v, want %v", job.Status, model.JobPending)
	}
	if job.Total != 2 || job.Completed != 0 {
		t.Errorf("Total/Completed = %d/%d, want 2/0", job.Total, job.Completed)
	}
}

func TestOrchestratorCreateJobRejectsEmpty(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(WithLogger(testLogger()))
	if _, err := o.CreateJob(nil); !errors.Is(err, ErrEmptyJob) {
		t.Fatalf("CreateJob(nil) error = %v, want %v", err, ErrEmptyJob)
	}
}

func TestOrchestratorStatusUnknownJob(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(WithLogger(testLogger()))
	if _, err := o.Status(uuid.New()); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("Status() error = %v, want %v", err, ErrJobNotFound)
	}
}

func TestOrchestratorSubmitProcessesAllFiles(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(WithLogger(testLogger()), WithMaxWorkers(2))
	id, err := o.CreateJob(refs("a.mp4", "b.mp4", "c.mp4", "d.mp4"))
	if err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}
	if err := o.Submit(context.Background(), id, okAnalyze); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	job, err := o.Wait(context.Background(), id)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if job.Status != model.JobCompleted {
		t.Errorf("Status = %v, want %v", job.Status, model.JobCompleted)
	}
	if len(job.Results) != 4 || len(job.Errors) != 0 {
		t.Errorf("Results/Errors = %d/%d, want 4/0", len(job.Results), len(job.Errors))
	}
	if !job.ConsistencyOK() {
		t.Error("progress invariant violated on final snapshot")
	}
	if job.EndTime == nil {
		t.Error("EndTime not set on completed job")
	}
}

func TestOrchestratorSubmitIsolatesFileFailures(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(WithLogger(testLogger()), WithMaxWorkers(3))
	id, err := o.CreateJob(refs("good1.mp4", "corrupt.mp4", "good2.mp4"))
	if err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}

	analyze := func(_ context.Context, file model.FileRef) (*model.TrustReport, error) {
		if strings.HasPrefix(file.Path, "corrupt") {
			return nil, errors.New("decode failed")
		}
		return okAnalyze(context.Background(), file)
	}
	if err := o.Submit(context.Background(), id, analyze); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	job, err := o.Wait(context.Background(), id)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if job.Status != model.JobCompleted {
		t.Errorf("Status = %v, want %v", job.Status, model.JobCompleted)
	}
	if job.Completed != 3 || len(job.Results) != 2 || len(job.Errors) != 1 {
		t.Errorf("Completed/Results/Errors = %d/%d/%d, want 3/2/1",
			job.Completed, len(job.Results), len(job.Errors))
	}
	if job.Errors[0].File != "corrupt.mp4" {
		t.Errorf("failed file = %q, want corrupt.mp4", job.Errors[0].File)
	}
}

func TestOrchestratorSubmitTwice(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(WithLogger(testLogger()))
	id, err := o.CreateJob(refs("a.mp4"))
	if err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}
	if err := o.Submit(context.Background(), id, okAnalyze); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := o.Submit(context.Background(), id, okAnalyze); !errors.Is(err, ErrJobAlreadySubmitted) {
		t.Fatalf("second Submit() error = %v, want %v", err, ErrJobAlreadySubmitted)
	}
}

func TestOrchestratorConcurrentJobsStayIsolated(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(WithLogger(testLogger()), WithMaxWorkers(2))

	const files = 8
	var aNames, bNames []string
	for i := 0; i < files; i++ {
		aNames = append(aNames, fmt.Sprintf("a%d.mp4", i))
		bNames = append(bNames, fmt.Sprintf("b%d.mp4", i))
	}

	jobA, err := o.CreateJob(refs(aNames...))
	if err != nil {
		t.Fatalf("CreateJob(a) error = %v", err)
	}
	jobB, err := o.CreateJob(refs(bNames...))
	if err != nil {
		t.Fatalf("CreateJob(b) error = %v", err)
	}

	// Each analyzer records which files it saw; a worker of one job must
	// never process the other job's indices.
	var crossed atomic.Bool
	analyzeFor := func(prefix string) AnalyzeFunc {
		return func(_ context.Context, file model.FileRef) (*model.TrustReport, error) {
			if !strings.HasPrefix(file.Path, prefix) {
				crossed.Store(true)
			}
			time.Sleep(time.Millisecond)
			return okAnalyze(context.Background(), file)
		}
	}

	if err := o.Submit(context.Background(), jobA, analyzeFor("a")); err != nil {
		t.Fatalf("Submit(a) error = %v", err)
	}
	if err := o.Submit(context.Background(), jobB, analyzeFor("b")); err != nil {
		t.Fatalf("Submit(b) error = %v", err)
	}

	for _, id := range []uuid.UUID{jobA, jobB} {
		job, err := o.Wait(context.Background(), id)
		if err != nil {
			t.Fatalf("Wait(%s) error = %v", id, err)
		}
		if job.Completed != files || len(job.Results) != files {
			t.Errorf("job %s: Completed/Results = %d/%d, want %d/%d",
				id, job.Completed, len(job.Results), files, files)
		}
		if !job.ConsistencyOK() {
			t.Errorf("job %s: progress invariant violated", id)
		}
	}
	if crossed.Load() {
		t.Error("a worker processed a file belonging to another job")
	}
}

func TestOrchestratorStatusDuringProcessing(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(WithLogger(testLogger()), WithMaxWorkers(1))
	id, err := o.CreateJob(refs("a.mp4", "b.mp4", "c.mp4"))
	if err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}

	release := make(chan struct{})
	analyze := func(_ context.Context, file model.FileRef) (*model.TrustReport, error) {
		if file.Path != "a.mp4" {
			<-release
		}
		return okAnalyze(context.Background(), file)
	}
	if err := o.Submit(context.Background(), id, analyze); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	// Poll until the first file lands, then verify the snapshot is
	// consistent mid-flight.
	deadline := time.After(5 * time.Second)
	for {
		job, err := o.Status(id)
		if err != nil {
			t.Fatalf("Status() error = %v", err)
		}
		if !job.ConsistencyOK() {
			t.Fatalf("torn snapshot: completed=%d results=%d errors=%d status=%s",
				job.Completed, len(job.Results), len(job.Errors), job.Status)
		}
		if job.Completed >= 1 {
			if job.Status != model.JobProcessing {
				t.Errorf("Status = %v, want %v", job.Status, model.JobProcessing)
			}
			break
		}
		select {
		case <-deadline:
			t.Fatal("first file never completed")
		case <-time.After(time.Millisecond):
		}
	}

	close(release)
	if _, err := o.Wait(context.Background(), id); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
}

func TestOrchestratorPerFileTimeout(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(
		WithLogger(testLogger()),
		WithMaxWorkers(2),
		WithFileTimeout(20*time.Millisecond),
	)
	id, err := o.CreateJob(refs("fast.mp4", "slow.mp4"))
	if err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}

	analyze := func(ctx context.Context, file model.FileRef) (*model.TrustReport, error) {
		if file.Path == "slow.mp4" {
			select {
			case <-time.After(5 * time.Second):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		return okAnalyze(ctx, file)
	}
	if err := o.Submit(context.Background(), id, analyze); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	job, err := o.Wait(context.Background(), id)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if job.Status != model.JobCompleted {
		t.Errorf("Status = %v, want %v", job.Status, model.JobCompleted)
	}
	if len(job.Results) != 1 || len(job.Errors) != 1 {
		t.Fatalf("Results/Errors = %d/%d, want 1/1", len(job.Results), len(job.Errors))
	}
	if !strings.Contains(job.Errors[0].Error, "timed out") {
		t.Errorf("error = %q, want timeout message", job.Errors[0].Error)
	}
}

func TestOrchestratorCancelDrainsRemainingFiles(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(WithLogger(testLogger()), WithMaxWorkers(1))
	id, err := o.CreateJob(refs("a.mp4", "b.mp4", "c.mp4", "d.mp4"))
	if err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}

	started := make(chan struct{})
	release := make(chan struct{})
	var once atomic.Bool
	analyze := func(_ context.Context, file model.FileRef) (*model.TrustReport, error) {
		if once.CompareAndSwap(false, true) {
			close(started)
			<-release
		}
		return okAnalyze(context.Background(), file)
	}
	if err := o.Submit(context.Background(), id, analyze); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	<-started
	if err := o.Cancel(id); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	close(release)

	job, err := o.Wait(context.Background(), id)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if job.Status != model.JobCompleted {
		t.Errorf("Status = %v, want %v", job.Status, model.JobCompleted)
	}
	// The in-flight file finishes; queued files are drained as
	// cancellation errors.
	if len(job.Results) != 1 || len(job.Errors) != 3 {
		t.Fatalf("Results/Errors = %d/%d, want 1/3", len(job.Results), len(job.Errors))
	}
	for _, e := range job.Errors {
		if !strings.Contains(e.Error, "cancelled") {
			t.Errorf("error = %q, want cancellation message", e.Error)
		}
	}
	if !job.ConsistencyOK() {
		t.Error("progress invariant violated after cancel")
	}
}

func TestOrchestratorCancelDoesNotAffectOtherJobs(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(WithLogger(testLogger()), WithMaxWorkers(2))
	cancelled, err := o.CreateJob(refs("x1.mp4", "x2.mp4"))
	if err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}
	healthy, err := o.CreateJob(refs("y1.mp4", "y2.mp4"))
	if err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}

	if err := o.Cancel(cancelled); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if err := o.Submit(context.Background(), cancelled, okAnalyze); err != nil {
		t.Fatalf("Submit(cancelled) error = %v", err)
	}
	if err := o.Submit(context.Background(), healthy, okAnalyze); err != nil {
		t.Fatalf("Submit(healthy) error = %v", err)
	}

	job, err := o.Wait(context.Background(), healthy)
	if err != nil {
		t.Fatalf("Wait(healthy) error = %v", err)
	}
	if len(job.Results) != 2 || len(job.Errors) != 0 {
		t.Errorf("healthy job Results/Errors = %d/%d, want 2/0", len(job.Results), len(job.Errors))
	}

	job, err = o.Wait(context.Background(), cancelled)
	if err != nil {
		t.Fatalf("Wait(cancelled) error = %v", err)
	}
	if len(job.Errors) != 2 {
		t.Errorf("cancelled job Errors = %d, want 2", len(job.Errors))
	}
}

func TestOrchestratorJobsSnapshot(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(WithLogger(testLogger()))
	if got := o.Jobs(); len(got) != 0 {
		t.Fatalf("Jobs() on empty orchestrator = %d entries, want 0", len(got))
	}

	if _, err := o.CreateJob(refs("a.mp4")); err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}
	if _, err := o.CreateJob(refs("b.mp4")); err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}
	if got := o.Jobs(); len(got) != 2 {
		t.Fatalf("Jobs() = %d entries, want 2", len(got))
	}
}
