// Package variational wraps gonum's gradient-free optimization for the
// variational experiments. The circuits' energy landscapes expose no analytic
// gradient, so Nelder-Mead is used as the derivative-free workhorse.
package variational

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/optimize"
)

// ErrNoParameters reports an optimization over an empty parameter vector.
var ErrNoParameters = errors.New("no parameters to optimize")

// Options tunes the classical optimization loop.
type Options struct {
	// MaxIterations caps the optimizer's major iterations.
	MaxIterations int
	// Tolerance is the absolute function-value convergence threshold.
	Tolerance float64
}

// DefaultOptions match the experiment defaults: enough iterations for the
// small ansaetze in scope to converge.
func DefaultOptions() Options {
	return Options{MaxIterations: 400, Tolerance: 1e-8}
}

// Result is the outcome of one classical minimization.
type Result struct {
	X           []float64 `json:"x"`
	F           float64   `json:"f"`
	Iterations  int       `json:"iterations"`
	Evaluations int       `json:"evaluations"`
}

// Minimize runs derivative-free minimization of objective from the given
// starting point.
func Minimize(objective func([]float64) float64, initial []float64, opts Options) (*Result, error) {
	if len(initial) == 0 {
		return nil, ErrNoParameters
	}
	if opts.MaxIterations <= 0 {
		opts = DefaultOptions()
	}

	problem := optimize.Problem{Func: objective}
	settings := &optimize.Settings{
		MajorIterations: opts.MaxIterations,
		Converger: &optimize.FunctionConverge{
			Absolute:   opts.Tolerance,
			Iterations: 25,
		},
	}

	result, err := optimize.Minimize(problem, initial, settings, &optimize.NelderMead{})
	if err != nil {
		return nil, fmt.Errorf("optimization failed: %w", err)
	}

	return &Result{
		X:           result.X,
		F:           result.F,
		Iterations:  result.Stats.MajorIterations,
		Evaluations: result.Stats.FuncEvaluations,
	}, nil
}
