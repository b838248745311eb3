// Package batch fans a per-file analyzer out over many input files under
// one job identifier.
//
// Each job owns its work queue and its lock. Progress updates keep the
// invariant completed == len(results)+len(errors) after every change, a
// per-file failure never aborts the job, and a job always terminates in
// the completed state once every index has produced a result or an
// error.
package batch
