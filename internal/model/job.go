package model

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of a batch job.
// The machine is strictly pending → processing → completed. There is no
// failed terminal state: a job is completed once every file has produced
// either a result or an error, and job-level failure is visible only as a
// non-empty Errors collection.
type JobStatus string

// Job lifecycle states.
const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
)

// String returns the status label.
func (s JobStatus) String() string { return string(s) }

// FileRef identifies one input file inside a batch job.
type FileRef struct {
	// Path is the filesystem path handed to the per-file analyzer.
	Path string `json:"path"`

	// Name is the display name; defaults to the path when empty.
	Name string `json:"name,omitempty"`
}

// DisplayName returns Name, falling back to Path.
func (f FileRef) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	return f.Path
}

// FileResult records a successful per-file analysis within a batch job.
// Entries are appended exactly once per file index and never overwritten.
type FileResult struct {
	// Index is the file's position in the job's Files sequence.
	Index int `json:"file_index"`

	// File is the display name of the analyzed file.
	File string `json:"filename"`

	// Report is the analysis result.
	Report *TrustReport `json:"result"`
}

// FileError records a failed per-file analysis within a batch job.
type FileError struct {
	// Index is the file's position in the job's Files sequence.
	Index int `json:"file_index"`

	// File is the display name of the failed file.
	File string `json:"filename"`

	// Error is the failure message (analysis error, timeout,
	// or cancellation).
	Error string `json:"error"`
}

// BatchJob is the aggregate state of one multi-file job.
//
// Ownership: a BatchJob is exclusively owned by its orchestrator for its
// lifetime and mutated only through the orchestrator's progress updates
// under the job's lock. Snapshots handed to callers are deep copies.
//
// Invariant: Completed == len(Results)+len(Errors) after every update,
// and Status == JobCompleted exactly when Completed == Total.
type BatchJob struct {
	// ID identifies the job.
	ID uuid.UUID `json:"id"`

	// Files is the ordered input sequence. Never mutated after creation.
	Files []FileRef `json:"files"`

	// Total is len(Files), kept explicit for serialized snapshots.
	Total int `json:"total"`

	// Completed counts files that produced a result or an error.
	Completed int `json:"completed"`

	// Status is the lifecycle state.
	Status JobStatus `json:"status"`

	// Results holds per-file successes, in completion order.
	Results []FileResult `json:"results"`

	// Errors holds per-file failures, in completion order.
	Errors []FileError `json:"errors"`

	// StartTime is when the job was created.
	StartTime time.Time `json:"start_time"`

	// EndTime is set when the job reaches JobCompleted.
	EndTime *time.Time `json:"end_time,omitempty"`
}

// Progress returns completion as a percentage in [0, 100].
func (j *BatchJob) Progress() float64 {
	if j.Total == 0 {
		return 0
	}
	return float64(j.Completed) / float64(j.Total) * 100
}

// Clone returns a deep copy safe to hand outside the orchestrator's lock.
func (j *BatchJob) Clone() *BatchJob {
	cp := *j
	cp.Files = append([]FileRef(nil), j.Files...)
	cp.Results = append([]FileResult(nil), j.Results...)
	cp.Errors = append([]FileError(nil), j.Errors...)
	if j.EndTime != nil {
		t := *j.EndTime
		cp.EndTime = &t
	}
	return &cp
}

// ConsistencyOK reports whether the progress invariant currently holds.
// Exposed for tests and defensive checks in the orchestrator.
func (j *BatchJob) ConsistencyOK() bool {
	if j.Completed != len(j.Results)+len(j.Errors) {
		return false
	}
	if (j.Status == JobCompleted) != (j.Completed == j.Total) {
		return false
	}
	return true
}
