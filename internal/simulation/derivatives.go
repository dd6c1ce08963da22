package simulation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"

	"NutraKinetics/internal/model"
)

// forcing exposes the three multiplier series as continuous functions of
// time, for solvers that sample off the precomputed grid.
type forcing struct {
	synthesis  *gridSeries
	cd38       *gridSeries
	absorption *gridSeries
}

// gridSeries interpolates a sampled series piecewise-linearly, clamping
// queries to the fitted range.
type gridSeries struct {
	pl     interp.PiecewiseLinear
	t0, t1 float64
}

func newGridSeries(timesH, values []float64) (*gridSeries, error) {
	gs := &gridSeries{t0: timesH[0], t1: timesH[len(timesH)-1]}
	if err := gs.pl.Fit(timesH, values); err != nil {
		return nil, fmt.Errorf("fit series interpolator: %w", err)
	}
	return gs, nil
}

func (g *gridSeries) at(t float64) float64 {
	if t < g.t0 {
		t = g.t0
	}
	if t > g.t1 {
		t = g.t1
	}
	return g.pl.Predict(t)
}

// derivatives evaluates the three-pool model at time t. Route inputs, uptake
// and clearance act on the plasma precursor; synthesis, inter-pool transfer
// and the CD38/PARP/SIRT sinks act on the NAD pools.
func derivatives(t float64, y state, route model.Route, cd38Scale float64, f forcing, p model.CoreModelParameters) state {
	plasma, nadCyt, nadMito := y[0], y[1], y[2]

	var oralInput, ivInput float64
	switch route {
	case model.RouteOral:
		oralInput = p.RouteInputs.OralInputBaseUMPerH * f.absorption.at(t)
		if decay := p.RouteInputs.OralInputDecayPerH; decay > 0 {
			oralInput *= math.Exp(-decay * t)
		}
	case model.RouteIV:
		ivInput = p.RouteInputs.IVInputBaseUMPerH
	}

	uptake := p.PrecursorKinetics.UptakeRatePerH * plasma
	clearance := p.PrecursorKinetics.ClearanceRatePerH * plasma

	synth := f.synthesis.at(t) * (p.NadFlux.PrecursorToNadGainPerH*plasma +
		p.NadFlux.OralInputToNadGainPerH*oralInput +
		p.NadFlux.IVInputToNadGainPerH*ivInput)

	toMito := p.NadFlux.CytToMitoRatePerH * nadCyt
	toCyt := p.NadFlux.MitoToCytRatePerH * nadMito

	cd38Sink := p.NadFlux.CD38BaseRatePerH * cd38Scale * f.cd38.at(t) * nadCyt
	parpSink := p.NadFlux.ParpBaseRatePerH * nadCyt
	sirtSink := p.NadFlux.SirtBaseRatePerH * nadCyt

	return state{
		-uptake - clearance + oralInput + ivInput,
		synth - toMito + toCyt - cd38Sink - parpSink - sirtSink,
		toMito - toCyt - p.NadFlux.MitoLossRatePerH*nadMito,
	}
}
