// Package work provides the background work processor that drives experiment
// execution. Work types are registered once (one per experiment kind plus
// maintenance work), and the processor drains pending runs one at a time.
//
// The processor is event-driven: HTTP handlers enqueue a pending run row and
// call Trigger(), the cron scheduler calls Trigger() on its ticks, and each
// finished work item re-triggers the loop so queued runs drain back to back.
// Simulations are CPU-bound, so single-item execution is deliberate: two
// statevector sweeps racing each other just thrash the cache.
//
// Subjects are run UUIDs. A work type's FindSubjects asks the runs repository
// for pending rows of its kind; Execute loads the row, runs the experiment
// service, and persists the report. Failures are retried a small number of
// times, then the run is marked failed.
package work
