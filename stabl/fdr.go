package stabl

import (
	"math"

	"github.com/YuminosukeSato/stabl/pkg/errors"
)

// maxUsableFDP is the ceiling above which no threshold is considered usable.
// When even the best candidate threshold exceeds it, the effective threshold
// becomes 1.0 and nothing is selected.
const maxUsableFDP = 0.5

// ComputeFDP estimates the false discovery proportion at every candidate
// threshold t:
//
//	FDP(t) = ((1/artificialProportion) * #{artificial max > t} + 1) / max(1, #{real max > t})
//
// The +1 in the numerator and the floor of 1 in the denominator make the
// estimator conservative and finite everywhere.
func ComputeFDP(realMax, artificialMax, thresholds []float64, artificialProportion float64) ([]float64, error) {
	if len(thresholds) == 0 {
		return nil, errors.NewValidationError("fdr_threshold_range", "must contain at least one threshold", thresholds)
	}
	if artificialProportion <= 0 || artificialProportion > 1 {
		return nil, errors.NewValidationError("artificial_proportion", "must be in (0, 1]", artificialProportion)
	}

	fdps := make([]float64, len(thresholds))
	for i, t := range thresholds {
		var nArtificial, nReal int
		for _, v := range artificialMax {
			if v > t {
				nArtificial++
			}
		}
		for _, v := range realMax {
			if v > t {
				nReal++
			}
		}

		num := float64(nArtificial)/artificialProportion + 1
		den := math.Max(1, float64(nReal))
		fdps[i] = num / den
	}
	return fdps, nil
}

// selectFDRThreshold picks the threshold minimizing the estimated FDP,
// clipped to at most 1.0. When the minimum achievable FDP exceeds
// maxUsableFDP no threshold is usable: the effective threshold is 1.0, which
// selects nothing.
func selectFDRThreshold(thresholds, fdps []float64) (threshold, minFDP float64) {
	minFDP = math.Inf(1)
	argmin := 0
	for i, f := range fdps {
		if f < minFDP {
			minFDP = f
			argmin = i
		}
	}

	if minFDP > maxUsableFDP {
		return 1.0, minFDP
	}
	return math.Min(thresholds[argmin], 1.0), minFDP
}
