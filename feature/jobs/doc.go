// Package jobs persists reconciliation jobs and runs them.
//
// A Job names a source and a target record set (refs into object storage), the ordered
// matching rules and, optionally, the record field used as identifier. Running a job
// produces an Execution holding the summary plus one row per match and per exception,
// so results can be browsed and explained after the fact.
//
// # Run Guard
//
// RunJob never lets two runs of the same job overlap:
//   - a per-job lock (core/lock, memory or Redis) rejects a concurrent run with ErrRunInProgress;
//   - the job row carries a version, and the idle -> running flip is a guarded UPDATE
//     (WHERE version = ?), so a run that lost the race gets ErrVersionConflict.
//
// Once flipped, every failure path records a failed execution and returns the job to idle.
//
// # HTTP Endpoints
//
//   - POST /jobs, GET /jobs, GET /jobs/:id
//   - POST /jobs/:id/run (409 when already running)
//   - GET /jobs/:id/executions, GET /executions/:id
//   - GET /executions/:id/matches/:matchId/explain
//   - GET /records, PUT /records/*, DELETE /records/*
package jobs
