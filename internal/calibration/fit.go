// Package calibration fits interaction-rule coefficients to observed NAD
// traces by wrapping the forward simulation in a bounded optimization loop.
package calibration

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/optimize"

	"NutraKinetics/internal/dataset"
	"NutraKinetics/internal/model"
	"NutraKinetics/internal/simulation"
)

// priorPenaltyWeight scales the Gaussian-prior regularization term.
const priorPenaltyWeight = 0.01

// defaultMaxIterations caps the optimizer when the caller passes <= 0.
const defaultMaxIterations = 200

// Fit selects the fittable interaction rules applicable to the scenario and
// minimizes interpolated MSE against the observed trace plus a Gaussian
// prior penalty, each rule's coefficient constrained to its bounds.
//
// A malformed dataset is a fatal error. Zero fittable rules is a
// not-applicable result, not an error. Optimizer non-convergence is reported
// through the result's Success flag.
func Fit(engine *simulation.Engine, scenario model.Scenario, observed dataset.Observed, maxIterations int) (*model.FitResult, error) {
	if err := observed.Validate(); err != nil {
		return nil, fmt.Errorf("observed dataset: %w", err)
	}
	if maxIterations <= 0 {
		maxIterations = defaultMaxIterations
	}

	rules := model.FittableRules(engine.Rules(), scenario.SelectedSet())
	if len(rules) == 0 {
		return &model.FitResult{
			Success:       false,
			NotApplicable: true,
			Message:       "no fittable interaction rules for selected supplements",
			Coefficients:  map[string]float64{},
		}, nil
	}

	// Rules whose bounds collapse to a point are fixed, not optimized.
	var free []model.InteractionRule
	fixed := make(map[string]float64)
	for _, r := range rules {
		if r.UpperBound <= r.LowerBound {
			fixed[r.ID] = r.LowerBound
			continue
		}
		free = append(free, r)
	}

	obj := newObjective(engine, scenario, observed, free, fixed)

	if len(free) == 0 {
		value, err := obj.evaluate(nil)
		if err != nil {
			return nil, err
		}
		return &model.FitResult{
			Success:      true,
			Message:      "all applicable coefficients fixed by bounds",
			Objective:    value,
			Coefficients: obj.coefficients(nil),
		}, nil
	}

	z0 := make([]float64, len(free))
	for i, r := range free {
		z0[i] = boundInverse(r.ClampCoefficient(r.Coefficient), r.LowerBound, r.UpperBound)
	}

	problem := optimize.Problem{
		Func: obj.value,
		Grad: func(grad, z []float64) {
			fd.Gradient(grad, obj.value, z, nil)
		},
	}
	settings := &optimize.Settings{MajorIterations: maxIterations}

	result, err := optimize.Minimize(problem, z0, settings, &optimize.LBFGS{})

	fit := &model.FitResult{Coefficients: map[string]float64{}}
	if result != nil {
		fit.Objective = result.F
		fit.Iterations = result.Stats.MajorIterations
		fit.Coefficients = obj.coefficients(result.X)
		fit.Message = result.Status.String()
	}
	if err != nil {
		fit.Success = false
		fit.Message = err.Error()
		return fit, nil
	}
	fit.Success = converged(result.Status)
	return fit, nil
}

func converged(status optimize.Status) bool {
	switch status {
	case optimize.Success,
		optimize.FunctionConvergence,
		optimize.GradientThreshold,
		optimize.StepConvergence,
		optimize.MethodConverge:
		return true
	}
	return false
}

// objective evaluates one candidate coefficient vector by running the full
// forward simulation and scoring it against the observed trace.
type objective struct {
	engine   *simulation.Engine
	scenario model.Scenario
	observed dataset.Observed
	free     []model.InteractionRule
	fixed    map[string]float64
}

func newObjective(engine *simulation.Engine, scenario model.Scenario, observed dataset.Observed, free []model.InteractionRule, fixed map[string]float64) *objective {
	return &objective{engine: engine, scenario: scenario, observed: observed, free: free, fixed: fixed}
}

// coefficients maps the optimization vector back to rule-id coefficient
// space, including the bound-fixed rules.
func (o *objective) coefficients(z []float64) map[string]float64 {
	out := make(map[string]float64, len(o.free)+len(o.fixed))
	for id, c := range o.fixed {
		out[id] = c
	}
	for i, r := range o.free {
		out[r.ID] = boundTransform(z[i], r.LowerBound, r.UpperBound)
	}
	return out
}

// value is the optimize.Problem function; simulation failures surface as a
// large finite objective so the line search backs off.
func (o *objective) value(z []float64) float64 {
	v, err := o.evaluate(z)
	if err != nil {
		return math.MaxFloat64
	}
	return v
}

func (o *objective) evaluate(z []float64) (float64, error) {
	overrides := o.coefficients(z)
	candidate := o.scenario.WithCoefficientOverrides(overrides)

	result, err := o.engine.Run(candidate)
	if err != nil {
		return 0, fmt.Errorf("objective simulation: %w", err)
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(result.TimesH, result.NadCytUM); err != nil {
		return 0, fmt.Errorf("fit prediction interpolator: %w", err)
	}
	t0 := result.TimesH[0]
	t1 := result.TimesH[len(result.TimesH)-1]

	var sse float64
	for i, t := range o.observed.TimesH {
		tc := math.Min(math.Max(t, t0), t1)
		diff := pl.Predict(tc) - o.observed.NadCytUM[i]
		sse += diff * diff
	}
	mse := sse / float64(len(o.observed.TimesH))

	var penalty float64
	for i, r := range o.free {
		sd := math.Max(r.PriorSD, 1e-6)
		dev := (boundTransform(z[i], r.LowerBound, r.UpperBound) - r.PriorMean) / sd
		penalty += dev * dev
	}
	return mse + priorPenaltyWeight*penalty, nil
}

// boundTransform maps an unconstrained optimizer variable into [lo, hi]
// through a logistic reparameterization, keeping the quasi-Newton search
// unconstrained while the coefficient stays in bounds.
func boundTransform(z, lo, hi float64) float64 {
	return lo + (hi-lo)/(1.0+math.Exp(-z))
}

// boundInverse is the logit initialization, nudged off the bounds so the
// starting gradient is finite.
func boundInverse(x, lo, hi float64) float64 {
	p := (x - lo) / (hi - lo)
	const eps = 1e-6
	if p < eps {
		p = eps
	}
	if p > 1-eps {
		p = 1 - eps
	}
	return math.Log(p / (1 - p))
}
