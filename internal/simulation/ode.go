package simulation

import (
	"math"
	"strings"
)

// state is the physiological state vector:
// [plasma precursor, cytosolic NAD, mitochondrial NAD], all in uM.
type state [3]float64

// derivFunc returns the state derivative at time t.
type derivFunc func(t float64, y state) state

// Integration methods accepted by SolverConfig.ODEMethod.
const (
	MethodRK45 = "rk45"
	MethodRK4  = "rk4"
)

// Adaptive step tolerances for RK45.
const (
	rk45RelTol = 1e-6
	rk45AbsTol = 1e-9
)

// solve integrates f from times[0] to times[len-1], returning the state at
// every sample time. Unknown method labels fall back to adaptive RK45.
func solve(method string, f derivFunc, y0 state, timesH []float64) []state {
	if strings.EqualFold(method, MethodRK4) {
		return solveRK4(f, y0, timesH)
	}
	return solveRK45(f, y0, timesH)
}

// Dormand-Prince tableau (5th order solution, embedded 4th order error).
var (
	dpA = [7][6]float64{
		{},
		{1.0 / 5.0},
		{3.0 / 40.0, 9.0 / 40.0},
		{44.0 / 45.0, -56.0 / 15.0, 32.0 / 9.0},
		{19372.0 / 6561.0, -25360.0 / 2187.0, 64448.0 / 6561.0, -212.0 / 729.0},
		{9017.0 / 3168.0, -355.0 / 33.0, 46732.0 / 5247.0, 49.0 / 176.0, -5103.0 / 18656.0},
		{35.0 / 384.0, 0.0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0},
	}
	dpC  = [7]float64{0, 1.0 / 5.0, 3.0 / 10.0, 4.0 / 5.0, 8.0 / 9.0, 1.0, 1.0}
	dpB5 = [7]float64{35.0 / 384.0, 0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0, 0}
	dpB4 = [7]float64{5179.0 / 57600.0, 0, 7571.0 / 16695.0, 393.0 / 640.0, -92097.0 / 339200.0, 187.0 / 2100.0, 1.0 / 40.0}
)

// solveRK45 integrates with adaptive Dormand-Prince steps between each pair
// of consecutive sample times.
func solveRK45(f derivFunc, y0 state, timesH []float64) []state {
	out := make([]state, len(timesH))
	if len(timesH) == 0 {
		return out
	}
	out[0] = y0

	span := timesH[len(timesH)-1] - timesH[0]
	if span <= 0 {
		for i := range out {
			out[i] = y0
		}
		return out
	}

	y := y0
	t := timesH[0]
	h := span / 100.0
	minStep := span * 1e-12

	for i := 1; i < len(timesH); i++ {
		target := timesH[i]
		for t < target {
			hTry := math.Min(h, target-t)

			yNext, errNorm := rk45Step(f, t, y, hTry)

			if errNorm <= 1.0 || hTry <= minStep {
				t += hTry
				y = yNext
			}
			h = hTry * stepFactor(errNorm)
			if h > span {
				h = span
			}
			if h < minStep {
				h = minStep
			}
		}
		out[i] = y
	}
	return out
}

// rk45Step takes one trial step of size h and returns the 5th-order solution
// together with the scaled error norm (accept when <= 1).
func rk45Step(f derivFunc, t float64, y state, h float64) (state, float64) {
	var k [7]state
	k[0] = f(t, y)
	for s := 1; s < 7; s++ {
		var ys state
		for d := 0; d < 3; d++ {
			v := y[d]
			for j := 0; j < s; j++ {
				v += h * dpA[s][j] * k[j][d]
			}
			ys[d] = v
		}
		k[s] = f(t+dpC[s]*h, ys)
	}

	var y5, y4 state
	for d := 0; d < 3; d++ {
		s5, s4 := y[d], y[d]
		for s := 0; s < 7; s++ {
			s5 += h * dpB5[s] * k[s][d]
			s4 += h * dpB4[s] * k[s][d]
		}
		y5[d] = s5
		y4[d] = s4
	}

	var sumSq float64
	for d := 0; d < 3; d++ {
		scale := rk45AbsTol + rk45RelTol*math.Max(math.Abs(y[d]), math.Abs(y5[d]))
		diff := (y5[d] - y4[d]) / scale
		sumSq += diff * diff
	}
	return y5, math.Sqrt(sumSq / 3.0)
}

// stepFactor proposes the next step scaling from the error norm, with the
// usual safety factor and growth clamps.
func stepFactor(errNorm float64) float64 {
	if errNorm == 0 {
		return 5.0
	}
	factor := 0.9 * math.Pow(1.0/errNorm, 0.2)
	if factor < 0.2 {
		return 0.2
	}
	if factor > 5.0 {
		return 5.0
	}
	return factor
}

// rk4Substeps is the fixed refinement between sample points for MethodRK4.
const rk4Substeps = 10

// solveRK4 integrates with classical fixed-step RK4.
func solveRK4(f derivFunc, y0 state, timesH []float64) []state {
	out := make([]state, len(timesH))
	if len(timesH) == 0 {
		return out
	}
	out[0] = y0

	y := y0
	for i := 1; i < len(timesH); i++ {
		t := timesH[i-1]
		h := (timesH[i] - timesH[i-1]) / rk4Substeps
		for s := 0; s < rk4Substeps; s++ {
			y = rk4Step(f, t, y, h)
			t += h
		}
		out[i] = y
	}
	return out
}

func rk4Step(f derivFunc, t float64, y state, h float64) state {
	k1 := f(t, y)
	k2 := f(t+h/2, axpy(y, k1, h/2))
	k3 := f(t+h/2, axpy(y, k2, h/2))
	k4 := f(t+h, axpy(y, k3, h))

	var out state
	for d := 0; d < 3; d++ {
		out[d] = y[d] + h/6*(k1[d]+2*k2[d]+2*k3[d]+k4[d])
	}
	return out
}

func axpy(y, k state, h float64) state {
	var out state
	for d := 0; d < 3; d++ {
		out[d] = y[d] + h*k[d]
	}
	return out
}
