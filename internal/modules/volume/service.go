package volume

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantalab/qbenchd/internal/events"
	"github.com/quantalab/qbenchd/internal/quantum"
)

// Service runs quantum-volume experiments.
type Service struct {
	bus *events.Bus
	log zerolog.Logger
}

// NewService creates a new quantum-volume service.
func NewService(bus *events.Bus, log zerolog.Logger) *Service {
	return &Service{
		bus: bus,
		log: log.With().Str("service", "volume").Logger(),
	}
}

// Run executes a full quantum-volume sweep. For every width it draws
// p.Trials independent model circuits, computes each circuit's exact output
// distribution, samples noisy counts, and scores the heavy-output frequency
// of each trial against its own ideal distribution. Widths are then certified
// (or not) by the aggregate test; the headline quantum volume is 2^w for the
// largest certified width.
//
// The context is checked between trials so long sweeps can be cancelled.
func (s *Service) Run(ctx context.Context, runID string, p Params) (*Result, error) {
	if err := p.normalize(); err != nil {
		return nil, err
	}

	start := time.Now()
	rng := rand.New(rand.NewSource(p.Seed))

	s.log.Info().
		Ints("widths", p.Widths).
		Int("trials", p.Trials).
		Int("shots", p.Shots).
		Int64("seed", p.Seed).
		Msg("Starting quantum volume run")

	result := &Result{Params: p}
	for _, width := range p.Widths {
		wr, err := s.runWidth(ctx, rng, width, p)
		if err != nil {
			return nil, fmt.Errorf("width %d: %w", width, err)
		}
		result.Widths = append(result.Widths, *wr)

		if wr.Certification.Certified {
			result.QuantumVolume = wr.QuantumVolume
			if s.bus != nil {
				s.bus.Emit(&events.WidthCertifiedData{
					RunID:         runID,
					Width:         width,
					Confidence:    wr.Certification.Confidence,
					QuantumVolume: wr.QuantumVolume,
				})
			}
		}

		if s.bus != nil {
			s.bus.Emit(&events.RunProgressData{
				RunID:     runID,
				Kind:      "volume",
				Stage:     fmt.Sprintf("width %d", width),
				Completed: len(result.Widths),
				Total:     len(p.Widths),
			})
		}
	}

	result.Elapsed = time.Since(start)
	s.log.Info().
		Int("quantum_volume", result.QuantumVolume).
		Dur("elapsed", result.Elapsed).
		Msg("Quantum volume run finished")
	return result, nil
}

// runWidth executes all trials of one width and aggregates them.
func (s *Service) runWidth(ctx context.Context, rng *rand.Rand, width int, p Params) (*WidthResult, error) {
	wr := &WidthResult{Width: width}

	for trial := 0; trial < p.Trials; trial++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		circuit, err := quantum.ModelCircuit(rng, width)
		if err != nil {
			return nil, fmt.Errorf("trial %d: %w", trial, err)
		}

		ideal, err := circuit.IdealProbabilities()
		if err != nil {
			return nil, fmt.Errorf("trial %d ideal simulation: %w", trial, err)
		}

		counts, err := quantum.SampleCounts(rng, circuit, p.Noise, p.Shots)
		if err != nil {
			return nil, fmt.Errorf("trial %d noisy execution: %w", trial, err)
		}

		freq, err := TrialHeavyFrequency(ideal, counts)
		if err != nil {
			return nil, fmt.Errorf("trial %d heavy-output test: %w", trial, err)
		}

		wr.HeavyFrequencies = append(wr.HeavyFrequencies, freq)
		wr.Trials = append(wr.Trials, TrialOutcome{
			Trial:          trial,
			HeavyFrequency: freq,
			Counts:         counts,
		})
	}

	cert, err := Certify(wr.HeavyFrequencies)
	if err != nil {
		return nil, err
	}
	wr.Certification = cert
	if cert.Certified {
		wr.QuantumVolume = QuantumVolume(width)
	}

	s.log.Debug().
		Int("width", width).
		Float64("mean_heavy_prob", cert.MeanHeavyProb).
		Float64("confidence", cert.Confidence).
		Bool("certified", cert.Certified).
		Msg("Width aggregated")
	return wr, nil
}
