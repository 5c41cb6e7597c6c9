package stabl

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/stabl/pkg/errors"
)

// ArtificialType selects how synthetic decoy features are generated.
type ArtificialType string

const (
	// ArtificialNone disables synthetic features. The caller must then supply
	// a hard selection threshold, falling back to classic stability selection.
	ArtificialNone ArtificialType = ""

	// RandomPermutation picks real columns at random and independently
	// shuffles each one across samples, destroying any association with the
	// outcome while preserving the marginal distribution.
	RandomPermutation ArtificialType = "random_permutation"

	// Knockoff builds second-moment-matched Gaussian knockoff columns,
	// preserving the covariance structure of the real features so the decoys
	// capture correlation-induced spurious selection.
	Knockoff ArtificialType = "knockoff"
)

// makeArtificialFeatures generates nbNoise synthetic columns with the same
// row count as X. The draw order from rng is fixed so a seeded fit is
// reproducible.
func makeArtificialFeatures(X *mat.Dense, artificialType ArtificialType, nbNoise int, rng *rand.Rand) (*mat.Dense, error) {
	nSamples, nFeatures := X.Dims()

	if nbNoise <= 0 {
		return nil, errors.NewValidationError("nb_noise", "must be a positive integer", nbNoise)
	}

	switch artificialType {
	case RandomPermutation:
		if nbNoise > nFeatures {
			return nil, errors.NewValidationError(
				"nb_noise", "cannot exceed the number of real features in random_permutation mode", nbNoise)
		}
		chosen := rng.Perm(nFeatures)[:nbNoise]
		artificial := mat.NewDense(nSamples, nbNoise, nil)
		col := make([]float64, nSamples)
		for k, j := range chosen {
			mat.Col(col, j, X)
			rng.Shuffle(nSamples, func(a, b int) {
				col[a], col[b] = col[b], col[a]
			})
			artificial.SetCol(k, col)
		}
		return artificial, nil

	case Knockoff:
		if nbNoise > nFeatures {
			return nil, errors.NewValidationError(
				"nb_noise", "cannot exceed the number of real features in knockoff mode", nbNoise)
		}
		knockoffs, err := gaussianKnockoffs(X, rng)
		if err != nil {
			return nil, err
		}
		chosen := rng.Perm(nFeatures)[:nbNoise]
		artificial := mat.NewDense(nSamples, nbNoise, nil)
		col := make([]float64, nSamples)
		for k, j := range chosen {
			mat.Col(col, j, knockoffs)
			artificial.SetCol(k, col)
		}
		return artificial, nil

	default:
		return nil, errors.NewValidationError(
			"artificial_type",
			`must be "random_permutation" or "knockoff"`,
			string(artificialType),
		)
	}
}

// concatColumns returns [X | artificial] as a new matrix.
func concatColumns(X, artificial *mat.Dense) *mat.Dense {
	nSamples, nFeatures := X.Dims()
	_, nArtificial := artificial.Dims()

	out := mat.NewDense(nSamples, nFeatures+nArtificial, nil)
	out.Slice(0, nSamples, 0, nFeatures).(*mat.Dense).Copy(X)
	out.Slice(0, nSamples, nFeatures, nFeatures+nArtificial).(*mat.Dense).Copy(artificial)
	return out
}
