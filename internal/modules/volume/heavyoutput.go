// Package volume implements the quantum-volume benchmark: random model
// circuits per width, ideal and noisy execution, and the heavy-output
// generation test that decides whether a width is certified.
package volume

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/quantalab/qbenchd/internal/quantum"
)

const (
	// HeavyOutputThreshold is the asymptotic heavy-output probability a
	// device must exceed: 2/3 per the quantum-volume protocol.
	HeavyOutputThreshold = 2.0 / 3.0

	// CertificationConfidence is the one-sided confidence a width must
	// exceed (strictly) to be certified. 0.975 is the protocol's contract,
	// not a tunable.
	CertificationConfidence = 0.975
)

var (
	// ErrEmptyDistribution reports an ideal distribution with no entries.
	ErrEmptyDistribution = errors.New("ideal distribution is empty")
	// ErrNoTrials reports an aggregation over zero trials.
	ErrNoTrials = errors.New("no trials to aggregate")
	// ErrDistributionNotNormalized reports an ideal distribution whose mass
	// is not 1 within tolerance.
	ErrDistributionNotNormalized = errors.New("ideal distribution does not sum to 1")
)

// normalizationTolerance bounds the accepted drift of sum(P) from 1.
// Statevector round-off stays orders of magnitude below this.
const normalizationTolerance = 1e-6

// medianProbability returns the median of the distribution values. The
// distribution always has an even number of entries (2^w), so this is the
// mean of the two middle order statistics.
func medianProbability(ideal []float64) float64 {
	sorted := make([]float64, len(ideal))
	copy(sorted, ideal)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// HeavySet returns the basis states whose ideal probability STRICTLY exceeds
// the median of the distribution values. Ties at the median are excluded;
// for a uniform distribution the heavy set is therefore empty.
func HeavySet(ideal []float64) ([]int, error) {
	if err := validateDistribution(ideal); err != nil {
		return nil, err
	}
	m := medianProbability(ideal)
	var heavy []int
	for i, p := range ideal {
		if p > m {
			heavy = append(heavy, i)
		}
	}
	return heavy, nil
}

func validateDistribution(ideal []float64) error {
	if len(ideal) == 0 {
		return ErrEmptyDistribution
	}
	sum := 0.0
	for i, p := range ideal {
		if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
			return fmt.Errorf("ideal probability %v at basis state %d is not a probability", p, i)
		}
		sum += p
	}
	if math.Abs(sum-1) > normalizationTolerance {
		return fmt.Errorf("distribution mass %v: %w", sum, ErrDistributionNotNormalized)
	}
	return nil
}

// TrialHeavyFrequency computes the fraction of observed shots that landed in
// the heavy-output set of one trial's ideal distribution. The ideal
// distribution enumerates all 2^w basis states; counts are keyed by bitstring
// (qubit 0 rightmost) and must carry at least one shot.
func TrialHeavyFrequency(ideal []float64, counts map[string]int) (float64, error) {
	heavy, err := HeavySet(ideal)
	if err != nil {
		return 0, err
	}

	shots := 0
	for bits, n := range counts {
		if n < 0 {
			return 0, fmt.Errorf("negative count %d for outcome %q", n, bits)
		}
		shots += n
	}
	if shots == 0 {
		return 0, fmt.Errorf("trial has no observed shots: %w", quantum.ErrZeroShots)
	}

	isHeavy := make(map[int]bool, len(heavy))
	for _, b := range heavy {
		isHeavy[b] = true
	}

	heavyShots := 0
	for bits, n := range counts {
		idx, err := quantum.ParseBasisState(bits)
		if err != nil {
			return 0, err
		}
		if idx >= len(ideal) {
			return 0, fmt.Errorf("outcome %q outside the %d-state ideal distribution", bits, len(ideal))
		}
		if isHeavy[idx] {
			heavyShots += n
		}
	}
	return float64(heavyShots) / float64(shots), nil
}

// Certification is the aggregate verdict for one circuit width.
type Certification struct {
	Trials        int     `json:"trials"`
	MeanHeavyProb float64 `json:"mean_heavy_prob"`
	Confidence    float64 `json:"confidence"`
	Certified     bool    `json:"certified"`
}

// Certify aggregates the per-trial heavy-output frequencies of one width and
// decides certification. The confidence is the one-sided normal-approximation
// probability that the true heavy-output rate exceeds 2/3:
//
//	z = (mean - 2/3) / sqrt(mean*(1-mean)/trials)
//	confidence = Phi(z)
//
// Holding the mean fixed above 2/3, confidence increases monotonically with
// the trial count. Certification requires confidence STRICTLY above 0.975;
// exactly 0.975 fails. There is no retry or fallback: a failed width is a
// reported result, not an error.
func Certify(freqs []float64) (Certification, error) {
	if len(freqs) == 0 {
		return Certification{}, ErrNoTrials
	}
	for i, f := range freqs {
		if math.IsNaN(f) || f < 0 || f > 1 {
			return Certification{}, fmt.Errorf("trial %d heavy frequency %v outside [0, 1]", i, f)
		}
	}

	mean := stat.Mean(freqs, nil)
	sigma := math.Sqrt(mean * (1 - mean) / float64(len(freqs)))

	var confidence float64
	switch {
	case sigma == 0 && mean > HeavyOutputThreshold:
		confidence = 1
	case sigma == 0:
		confidence = 0
	default:
		z := (mean - HeavyOutputThreshold) / sigma
		confidence = distuv.UnitNormal.CDF(z)
	}

	return Certification{
		Trials:        len(freqs),
		MeanHeavyProb: mean,
		Confidence:    confidence,
		Certified:     certified(confidence),
	}, nil
}

// certified decides whether a confidence passes. The boundary is exclusive:
// exactly 0.975 fails.
func certified(confidence float64) bool {
	return confidence > CertificationConfidence
}

// QuantumVolume converts a certified width into the benchmark's headline
// number, 2^w. It is only meaningful for widths whose certification passed.
func QuantumVolume(width int) int {
	return 1 << width
}
