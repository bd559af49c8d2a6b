package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/quantalab/qbenchd/internal/modules/runs"
	"github.com/quantalab/qbenchd/internal/modules/volume"
	"github.com/quantalab/qbenchd/internal/work"
)

// SweepJob enqueues the nightly quantum-volume re-certification sweep with
// default parameters. Repeating the default sweep every night gives a drift
// baseline: the certified volume should not move on an unchanged simulator.
type SweepJob struct {
	runs      *runs.Repository
	processor *work.Processor
	log       zerolog.Logger
}

// NewSweepJob creates a new sweep job.
func NewSweepJob(runsRepo *runs.Repository, processor *work.Processor, log zerolog.Logger) *SweepJob {
	return &SweepJob{
		runs:      runsRepo,
		processor: processor,
		log:       log.With().Str("job", "sweep").Logger(),
	}
}

// Name returns the job name.
func (j *SweepJob) Name() string { return "nightly_sweep" }

// Run enqueues a default volume run and wakes the processor.
func (j *SweepJob) Run() error {
	runUUID, err := j.runs.Create(runs.KindVolume, volume.Params{})
	if err != nil {
		return err
	}
	j.log.Info().Str("run", runUUID).Msg("Nightly sweep enqueued")
	j.processor.Trigger()
	return nil
}

// ProcessorJob executes one work type directly. Used for the checkpoint and
// cleanup schedules, which have no run row to enqueue.
type ProcessorJob struct {
	name       string
	workTypeID string
	processor  *work.Processor
}

// NewProcessorJob creates a job that executes the given work type on schedule.
func NewProcessorJob(name, workTypeID string, processor *work.Processor) *ProcessorJob {
	return &ProcessorJob{
		name:       name,
		workTypeID: workTypeID,
		processor:  processor,
	}
}

// Name returns the job name.
func (j *ProcessorJob) Name() string { return j.name }

// Run executes the work type immediately.
func (j *ProcessorJob) Run() error {
	return j.processor.ExecuteNow(j.workTypeID, "")
}
