package dynamics

import (
	"math"
	"reflect"
	"testing"

	"NutraKinetics/internal/model"
	"NutraKinetics/internal/supplement"
)

var testBounds = model.ModifierBounds{
	SynthesisMin: 0.25, SynthesisMax: 3.0,
	CD38Min: 0.25, CD38Max: 2.0,
	AbsorptionMin: 0.5, AbsorptionMax: 2.0,
}

func testSafeguards() model.NumericalSafeguards {
	return model.NumericalSafeguards{
		EC50MinUM: 1e-6, HillMin: 0.1,
		KaMinPerH: 1e-4, KelMinPerH: 1e-4,
		KaKelEqualTolerance: 1e-6, KaKelAdjustmentFactor: 0.999,
	}
}

func precursorDef(id string, gain float64) model.SupplementDefinition {
	return model.SupplementDefinition{
		ID: id, MechanismClass: "nad_precursor", Enabled: true,
		DefaultDoseMg: 300,
		KaPerH:        1.2, KelPerH: 0.35, ExposureScale: 0.004,
		EC50UM: 1.5, HillN: 1.6,
		SynthesisGainPerSignal: gain,
	}
}

func testGrid() []float64 {
	out := make([]float64, 100)
	for i := range out {
		out[i] = float64(i) * 24.0 / 99.0
	}
	return out
}

func TestCompute_SumsChannelEffects(t *testing.T) {
	times := testGrid()
	modules := supplement.Build([]model.SupplementDefinition{
		precursorDef("nr", 0.35),
		precursorDef("nmn", 0.30),
	}, testSafeguards())

	res := Compute(times, modules, nil, map[string]float64{"nad_precursor": 1.0}, nil, testBounds)

	for i := range times {
		want := 0.35*res.SatSignals["nr"][i] + 0.30*res.SatSignals["nmn"][i]
		if math.Abs(res.SynthesisEffect[i]-want) > 1e-12 {
			t.Fatalf("synthesis sum mismatch at index %d: got %g want %g", i, res.SynthesisEffect[i], want)
		}
		wantStack := res.ConcentrationsUM["nr"][i] + res.ConcentrationsUM["nmn"][i]
		if math.Abs(res.StackSignalUM[i]-wantStack) > 1e-12 {
			t.Fatalf("stack signal mismatch at index %d", i)
		}
	}
}

func TestCompute_RuleGeometricMean(t *testing.T) {
	times := testGrid()
	modules := supplement.Build([]model.SupplementDefinition{
		precursorDef("nr", 0),
		precursorDef("nmn", 0),
	}, testSafeguards())

	rule := model.InteractionRule{
		ID: "pair", Supplements: []string{"nr", "nmn"},
		Target: model.ChannelSynthesis, Direction: model.DirectionIncrease,
		Coefficient: 0.2, UpperBound: 1.0,
	}

	res := Compute(times, modules, nil, nil, []model.InteractionRule{rule}, testBounds)

	effect, ok := res.RuleEffects["pair"]
	if !ok {
		t.Fatal("expected rule effect series")
	}
	for i := range times {
		want := 0.2 * math.Sqrt(res.SatSignals["nr"][i]*res.SatSignals["nmn"][i])
		if math.Abs(effect[i]-want) > 1e-12 {
			t.Fatalf("geometric mean mismatch at index %d: got %g want %g", i, effect[i], want)
		}
		if math.Abs(res.SynthesisEffect[i]-effect[i]) > 1e-12 {
			t.Fatalf("rule effect not added to channel at index %d", i)
		}
	}
}

func TestCompute_DecreaseRuleIsNegative(t *testing.T) {
	times := testGrid()
	modules := supplement.Build([]model.SupplementDefinition{
		precursorDef("apigenin", 0),
		precursorDef("quercetin", 0),
	}, testSafeguards())

	rule := model.InteractionRule{
		ID: "pair", Supplements: []string{"apigenin", "quercetin"},
		Target: model.ChannelCD38, Direction: model.DirectionDecrease,
		Coefficient: 0.15, UpperBound: 0.4,
	}

	res := Compute(times, modules, nil, nil, []model.InteractionRule{rule}, testBounds)
	for i := 1; i < len(times); i++ {
		if res.CD38Effect[i] > 0 {
			t.Fatalf("decrease rule must not raise the channel, index %d: %g", i, res.CD38Effect[i])
		}
	}
}

func TestCompute_PartialRuleSkipped(t *testing.T) {
	times := testGrid()
	modules := supplement.Build([]model.SupplementDefinition{precursorDef("nr", 0)}, testSafeguards())

	rule := model.InteractionRule{
		ID: "pair", Supplements: []string{"nr", "nmn"},
		Target: model.ChannelSynthesis, Direction: model.DirectionIncrease,
		Coefficient: 0.2, UpperBound: 1.0,
	}

	res := Compute(times, modules, nil, nil, []model.InteractionRule{rule}, testBounds)
	if _, ok := res.RuleEffects["pair"]; ok {
		t.Error("rule requiring an absent supplement must contribute nothing")
	}
	for i := range times {
		if res.SynthesisEffect[i] != 0 {
			t.Fatalf("expected zero synthesis effect at index %d", i)
		}
	}
}

func TestCompute_MultipliersBounded(t *testing.T) {
	times := testGrid()
	// Absurd gain to force clipping at the upper bound.
	def := precursorDef("nr", 100)
	modules := supplement.Build([]model.SupplementDefinition{def}, testSafeguards())

	res := Compute(times, modules, nil, nil, nil, testBounds)
	for i, m := range res.SynthesisMultiplier {
		if m < testBounds.SynthesisMin || m > testBounds.SynthesisMax {
			t.Fatalf("multiplier out of bounds at index %d: %g", i, m)
		}
	}
	clipped := false
	for _, m := range res.SynthesisMultiplier {
		if m == testBounds.SynthesisMax {
			clipped = true
			break
		}
	}
	if !clipped {
		t.Error("expected clipping at the synthesis upper bound")
	}
}

func TestCompute_Deterministic(t *testing.T) {
	times := testGrid()
	defs := []model.SupplementDefinition{
		precursorDef("nr", 0.35),
		precursorDef("nmn", 0.30),
		precursorDef("apigenin", 0.10),
	}
	modules := supplement.Build(defs, testSafeguards())

	a := Compute(times, modules, nil, nil, nil, testBounds)
	b := Compute(times, modules, nil, nil, nil, testBounds)
	if !reflect.DeepEqual(a, b) {
		t.Error("identical inputs must produce identical output")
	}
}
