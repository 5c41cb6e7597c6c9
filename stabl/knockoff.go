package stabl

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/stabl/pkg/errors"
)

// covarianceJitter is added to the diagonal when a covariance estimate is not
// positive definite, which is common when features outnumber samples.
const covarianceJitter = 1e-6

// gaussianKnockoffs constructs equicorrelated second-moment-matched Gaussian
// knockoffs for every column of X.
//
// With Sigma the sample covariance of X and s = min(2*lambda_min(Sigma),
// min_j Sigma_jj), the knockoff matrix is drawn as
//
//	Xk = mu + (Xc - Xc Sigma^-1 s) + N L^T
//
// where Xc is the centered design, N is iid standard normal noise from rng and
// L L^T = 2 s I - s^2 Sigma^-1. The construction preserves the covariance
// structure of the real features while carrying no association with the
// outcome.
func gaussianKnockoffs(X *mat.Dense, rng *rand.Rand) (*mat.Dense, error) {
	nSamples, nFeatures := X.Dims()
	if nSamples < 2 {
		return nil, errors.NewValueError("gaussianKnockoffs", "need at least two samples to estimate covariance")
	}

	// Column means and centered design.
	mu := make([]float64, nFeatures)
	col := make([]float64, nSamples)
	for j := 0; j < nFeatures; j++ {
		mat.Col(col, j, X)
		mu[j] = stat.Mean(col, nil)
	}
	centered := mat.NewDense(nSamples, nFeatures, nil)
	for i := 0; i < nSamples; i++ {
		for j := 0; j < nFeatures; j++ {
			centered.Set(i, j, X.At(i, j)-mu[j])
		}
	}

	// Sample covariance, regularized until positive definite.
	var sigma mat.SymDense
	stat.CovarianceMatrix(&sigma, X, nil)

	var chol mat.Cholesky
	if err := factorizeWithJitter(&chol, &sigma); err != nil {
		return nil, err
	}

	// s for the equicorrelated construction.
	var eig mat.EigenSym
	if !eig.Factorize(&sigma, false) {
		return nil, errors.NewModelError("gaussianKnockoffs", "eigendecomposition failed", errors.ErrSingularMatrix)
	}
	lambdaMin := math.Inf(1)
	for _, v := range eig.Values(nil) {
		if v < lambdaMin {
			lambdaMin = v
		}
	}
	minDiag := math.Inf(1)
	for j := 0; j < nFeatures; j++ {
		if d := sigma.At(j, j); d < minDiag {
			minDiag = d
		}
	}
	s := math.Min(2*lambdaMin, minDiag)
	if s <= 0 {
		s = covarianceJitter
	}

	// A = Xc Sigma^-1: solve Sigma B = Xc^T, then A = B^T.
	var b mat.Dense
	if err := chol.SolveTo(&b, centered.T()); err != nil {
		return nil, errors.NewModelError("gaussianKnockoffs", "covariance solve failed", err)
	}

	// Conditional mean: mu + Xc - s * A.
	knockoffs := mat.NewDense(nSamples, nFeatures, nil)
	for i := 0; i < nSamples; i++ {
		for j := 0; j < nFeatures; j++ {
			knockoffs.Set(i, j, mu[j]+centered.At(i, j)-s*b.At(j, i))
		}
	}

	// Conditional covariance: V = 2 s I - s^2 Sigma^-1.
	var sigmaInv mat.SymDense
	if err := chol.InverseTo(&sigmaInv); err != nil {
		return nil, errors.NewModelError("gaussianKnockoffs", "covariance inversion failed", err)
	}
	v := mat.NewSymDense(nFeatures, nil)
	for i := 0; i < nFeatures; i++ {
		for j := i; j < nFeatures; j++ {
			val := -s * s * sigmaInv.At(i, j)
			if i == j {
				val += 2 * s
			}
			v.SetSym(i, j, val)
		}
	}

	var cholV mat.Cholesky
	if err := factorizeWithJitter(&cholV, v); err != nil {
		return nil, err
	}
	var l mat.TriDense
	cholV.LTo(&l)

	// Add correlated noise: N L^T, with N drawn serially for reproducibility.
	noise := mat.NewDense(nSamples, nFeatures, nil)
	for i := 0; i < nSamples; i++ {
		for j := 0; j < nFeatures; j++ {
			noise.Set(i, j, rng.NormFloat64())
		}
	}
	var correlated mat.Dense
	correlated.Mul(noise, l.T())
	knockoffs.Add(knockoffs, &correlated)

	return knockoffs, nil
}

// factorizeWithJitter attempts a Cholesky factorization, growing a diagonal
// jitter until the matrix is positive definite or the attempts run out.
func factorizeWithJitter(chol *mat.Cholesky, sym *mat.SymDense) error {
	n := sym.SymmetricDim()
	jitter := covarianceJitter
	for attempt := 0; attempt < 8; attempt++ {
		if chol.Factorize(sym) {
			return nil
		}
		for j := 0; j < n; j++ {
			sym.SetSym(j, j, sym.At(j, j)+jitter)
		}
		jitter *= 10
	}
	return errors.NewModelError("gaussianKnockoffs", "covariance matrix is not positive definite", errors.ErrSingularMatrix)
}
