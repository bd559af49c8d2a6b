package work

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantalab/qbenchd/internal/events"
	"github.com/quantalab/qbenchd/internal/modules/maxcut"
	"github.com/quantalab/qbenchd/internal/modules/runs"
	"github.com/quantalab/qbenchd/internal/modules/volume"
	"github.com/quantalab/qbenchd/internal/modules/vqe"
)

// Experiment work type IDs.
const (
	TypeVolumeRun = "volume:run"
	TypeVQERun    = "vqe:run"
	TypeMaxCutRun = "maxcut:run"
)

// ExperimentDeps bundles what the experiment work types need.
type ExperimentDeps struct {
	Runs       *runs.Repository
	VolumeRepo *volume.Repository
	Volume     *volume.Service
	VQE        *vqe.Service
	MaxCut     *maxcut.Service
	Bus        *events.Bus
	Log        zerolog.Logger
}

// RegisterExperimentWork registers one work type per experiment kind. Each
// feeds on pending run rows; executing a subject walks the run through
// running to completed or failed and persists the report.
func RegisterExperimentWork(registry *Registry, deps ExperimentDeps) {
	registry.Register(&WorkType{
		ID:       TypeVolumeRun,
		Priority: PriorityHigh,
		FindSubjects: func() []string {
			return pendingSubjects(deps, runs.KindVolume)
		},
		Execute: func(ctx context.Context, subject string) error {
			return runExperiment(ctx, deps, subject, runs.KindVolume, func(ctx context.Context, raw string) (interface{}, float64, error) {
				var p volume.Params
				if err := json.Unmarshal([]byte(raw), &p); err != nil {
					return nil, 0, fmt.Errorf("bad volume params: %w", err)
				}
				result, err := deps.Volume.Run(ctx, subject, p)
				if err != nil {
					return nil, 0, err
				}
				if err := deps.VolumeRepo.SaveWidths(subject, result.Widths); err != nil {
					return nil, 0, err
				}
				return result, float64(result.QuantumVolume), nil
			})
		},
	})

	registry.Register(&WorkType{
		ID:       TypeVQERun,
		Priority: PriorityHigh,
		FindSubjects: func() []string {
			return pendingSubjects(deps, runs.KindVQE)
		},
		Execute: func(ctx context.Context, subject string) error {
			return runExperiment(ctx, deps, subject, runs.KindVQE, func(ctx context.Context, raw string) (interface{}, float64, error) {
				var p vqe.Params
				if err := json.Unmarshal([]byte(raw), &p); err != nil {
					return nil, 0, fmt.Errorf("bad vqe params: %w", err)
				}
				result, err := deps.VQE.Run(ctx, subject, p)
				if err != nil {
					return nil, 0, err
				}
				return result, result.Energy, nil
			})
		},
	})

	registry.Register(&WorkType{
		ID:       TypeMaxCutRun,
		Priority: PriorityHigh,
		FindSubjects: func() []string {
			return pendingSubjects(deps, runs.KindMaxCut)
		},
		Execute: func(ctx context.Context, subject string) error {
			return runExperiment(ctx, deps, subject, runs.KindMaxCut, func(ctx context.Context, raw string) (interface{}, float64, error) {
				var p maxcut.Params
				if err := json.Unmarshal([]byte(raw), &p); err != nil {
					return nil, 0, fmt.Errorf("bad maxcut params: %w", err)
				}
				result, err := deps.MaxCut.Run(ctx, subject, p)
				if err != nil {
					return nil, 0, err
				}
				return result, result.ApproxRatio, nil
			})
		},
	})
}

func pendingSubjects(deps ExperimentDeps, kind runs.Kind) []string {
	uuids, err := deps.Runs.PendingUUIDs(kind)
	if err != nil {
		deps.Log.Error().Err(err).Str("kind", string(kind)).Msg("Failed to list pending runs")
		return nil
	}
	if len(uuids) == 0 {
		return nil
	}
	return uuids
}

// executeFn runs one experiment from its raw JSON params and returns the
// report plus a headline number for the completion event.
type executeFn func(ctx context.Context, rawParams string) (interface{}, float64, error)

func runExperiment(ctx context.Context, deps ExperimentDeps, subject string, kind runs.Kind, fn executeFn) error {
	run, err := deps.Runs.Get(subject)
	if err != nil {
		return err
	}
	if run.Status != runs.StatusPending {
		// Another trigger already picked this row up
		return nil
	}
	if err := deps.Runs.MarkRunning(subject); err != nil {
		return err
	}

	deps.Bus.Emit(&events.RunStartedData{RunID: subject, Kind: string(kind)})

	start := time.Now()
	report, headline, err := fn(ctx, run.Params)
	if err != nil {
		// A fixed seed reproduces the same failure on retry, so the run
		// is marked failed immediately rather than left pending.
		if failErr := deps.Runs.Fail(subject, err); failErr != nil {
			deps.Log.Error().Err(failErr).Str("run", subject).Msg("Failed to mark run failed")
		}
		deps.Bus.Emit(&events.RunFailedData{RunID: subject, Kind: string(kind), Error: err.Error()})
		return err
	}

	if err := deps.Runs.Complete(subject, report); err != nil {
		return err
	}
	deps.Bus.Emit(&events.RunCompletedData{
		RunID:     subject,
		Kind:      string(kind),
		ElapsedMS: time.Since(start).Milliseconds(),
		Headline:  headline,
	})
	return nil
}
