package stabl

import (
	"math/rand"

	"github.com/YuminosukeSato/stabl/pkg/errors"
)

// maxResampleRetries bounds the redraw loop used to satisfy the class-balance
// constraint. Exhausting it signals degenerate input data, not a transient
// fault.
const maxResampleRetries = 1000

// Bootstrap draws nSubsamples sample indices from y's population using the
// given seeded source. When replace is false the draw is without replacement.
//
// The drawn subset must contain at least two distinct outcome values;
// otherwise the draw is retried with the same source, up to
// maxResampleRetries. For binary classification this guarantees both classes
// are present in every resample. Exhausting the retry budget returns a
// DegenerateDataError.
func Bootstrap(rng *rand.Rand, y []float64, nSubsamples int, replace bool) ([]int, error) {
	nSamples := len(y)

	if nSamples == 0 {
		return nil, errors.NewValueError("Bootstrap", "empty outcome vector")
	}
	if nSubsamples <= 0 {
		return nil, errors.NewValidationError("n_subsamples", "must be a positive integer", nSubsamples)
	}
	if nSubsamples > nSamples && !replace {
		return nil, errors.NewValidationError(
			"n_subsamples",
			"cannot be greater than the number of samples when replace is false",
			nSubsamples,
		)
	}

	for retry := 0; retry < maxResampleRetries; retry++ {
		indices := drawIndices(rng, nSamples, nSubsamples, replace)
		if distinctValues(y, indices) >= 2 {
			return indices, nil
		}
	}

	return nil, errors.NewDegenerateDataError(
		"Bootstrap",
		maxResampleRetries,
		"resampled subsets never contained two distinct outcome values",
	)
}

// drawIndices draws nSubsamples indices from [0, nSamples).
func drawIndices(rng *rand.Rand, nSamples, nSubsamples int, replace bool) []int {
	if replace {
		indices := make([]int, nSubsamples)
		for i := range indices {
			indices[i] = rng.Intn(nSamples)
		}
		return indices
	}
	return rng.Perm(nSamples)[:nSubsamples]
}

// distinctValues counts the distinct outcome values among the given indices,
// stopping early at two.
func distinctValues(y []float64, indices []int) int {
	if len(indices) == 0 {
		return 0
	}
	first := y[indices[0]]
	for _, idx := range indices[1:] {
		if y[idx] != first {
			return 2
		}
	}
	return 1
}
