package stabl

import (
	"math"
	"testing"

	"github.com/YuminosukeSato/stabl/pkg/errors"
)

func TestComputeFDPHandComputed(t *testing.T) {
	realMax := []float64{0.9, 0.8, 0.2}
	artificialMax := []float64{0.4, 0.1}
	thresholds := []float64{0.3, 0.5, 0.85}

	fdps, err := ComputeFDP(realMax, artificialMax, thresholds, 1.0)
	if err != nil {
		t.Fatalf("ComputeFDP failed: %v", err)
	}

	// t=0.30: 1 decoy and 2 real above -> (1+1)/2 = 1.0
	// t=0.50: 0 decoys and 2 real above -> (0+1)/2 = 0.5
	// t=0.85: 0 decoys and 1 real above -> (0+1)/1 = 1.0
	want := []float64{1.0, 0.5, 1.0}
	for i := range want {
		if math.Abs(fdps[i]-want[i]) > 1e-12 {
			t.Errorf("FDP[%d] = %v, want %v", i, fdps[i], want[i])
		}
	}

	threshold, minFDP := selectFDRThreshold(thresholds, fdps)
	if minFDP != 0.5 {
		t.Errorf("minFDP = %v, want 0.5", minFDP)
	}
	// 0.5 sits exactly on the usability ceiling and is still accepted.
	if threshold != 0.5 {
		t.Errorf("threshold = %v, want 0.5", threshold)
	}
}

func TestComputeFDPScalesWithProportion(t *testing.T) {
	realMax := []float64{0.9, 0.9, 0.9, 0.9}
	artificialMax := []float64{0.8, 0.8}
	thresholds := []float64{0.5}

	// With half as many decoys as real features, each decoy exceedance
	// counts double.
	fdps, err := ComputeFDP(realMax, artificialMax, thresholds, 0.5)
	if err != nil {
		t.Fatalf("ComputeFDP failed: %v", err)
	}
	want := (2/0.5 + 1) / 4
	if math.Abs(fdps[0]-want) > 1e-12 {
		t.Errorf("FDP = %v, want %v", fdps[0], want)
	}
}

func TestComputeFDPAlwaysFinite(t *testing.T) {
	// No real feature above any threshold: the denominator floor keeps the
	// estimate finite.
	fdps, err := ComputeFDP([]float64{0.1}, []float64{0.9, 0.9}, []float64{0.5, 0.8}, 1.0)
	if err != nil {
		t.Fatalf("ComputeFDP failed: %v", err)
	}
	for i, f := range fdps {
		if math.IsInf(f, 0) || math.IsNaN(f) {
			t.Errorf("FDP[%d] = %v is not finite", i, f)
		}
	}
	// 2 decoys above, 0 real above -> (2+1)/1 = 3.
	if fdps[0] != 3 {
		t.Errorf("FDP[0] = %v, want 3", fdps[0])
	}
}

func TestSelectFDRThresholdDegenerateFallsBackToOne(t *testing.T) {
	// Decoys dominate everywhere: no threshold is usable.
	thresholds := []float64{0.3, 0.5, 0.7}
	fdps := []float64{3, 2.5, 3}

	threshold, minFDP := selectFDRThreshold(thresholds, fdps)
	if threshold != 1.0 {
		t.Errorf("threshold = %v, want 1.0 when no candidate is usable", threshold)
	}
	if minFDP != 2.5 {
		t.Errorf("minFDP = %v, want 2.5", minFDP)
	}
}

func TestSelectFDRThresholdPicksArgmin(t *testing.T) {
	thresholds := []float64{0.3, 0.4, 0.5, 0.6}
	fdps := []float64{0.4, 0.2, 0.3, 0.2}

	threshold, minFDP := selectFDRThreshold(thresholds, fdps)
	if minFDP != 0.2 {
		t.Errorf("minFDP = %v, want 0.2", minFDP)
	}
	// Ties resolve to the first (smallest) threshold.
	if threshold != 0.4 {
		t.Errorf("threshold = %v, want 0.4", threshold)
	}
}

func TestComputeFDPValidation(t *testing.T) {
	realMax := []float64{0.5}
	artificialMax := []float64{0.5}

	if _, err := ComputeFDP(realMax, artificialMax, nil, 1.0); err == nil {
		t.Error("empty threshold grid should fail")
	}
	if _, err := ComputeFDP(realMax, artificialMax, []float64{0.5}, 0); err == nil {
		t.Error("zero artificial proportion should fail")
	}
	if _, err := ComputeFDP(realMax, artificialMax, []float64{0.5}, 1.5); err == nil {
		t.Error("artificial proportion above one should fail")
	}

	_, err := ComputeFDP(realMax, artificialMax, nil, 1.0)
	var valErr *errors.ValidationError
	if !errors.As(err, &valErr) {
		t.Errorf("error is not a ValidationError: %v", err)
	}
}
