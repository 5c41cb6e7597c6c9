package stabl

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/stabl/core/model"
	"github.com/YuminosukeSato/stabl/pkg/errors"
)

// fitBootstrapSample configures est with one regularization value, fits it on
// one resampled subset and returns the boolean mask of columns the fitted
// model selects under the importance threshold policy.
//
// The estimator must be a private clone: this function has no shared mutable
// state with any concurrent invocation and does not mutate the passed-in
// matrices. A fit failure is returned as-is; the caller aborts the whole
// stability path, because silently skipping a resample would bias the
// selection frequencies.
func fitBootstrapSample(
	est model.BaseEstimator,
	X mat.Matrix,
	y mat.Matrix,
	lambdaName string,
	lambdaValue float64,
	threshold ImportanceThreshold,
) ([]bool, error) {
	if err := est.SetParams(map[string]interface{}{lambdaName: lambdaValue}); err != nil {
		return nil, errors.Wrapf(err, "setting %s=%g on base estimator", lambdaName, lambdaValue)
	}

	if err := est.Fit(X, y); err != nil {
		return nil, errors.Wrapf(err, "base estimator fit at %s=%g", lambdaName, lambdaValue)
	}

	importances, err := est.FeatureImportances()
	if err != nil {
		return nil, errors.Wrap(err, "reading base estimator importances")
	}

	return threshold.Mask(importances), nil
}

// takeRows copies the given rows of X and y into fresh matrices, giving each
// resample fit its own data slice.
func takeRows(X *mat.Dense, y []float64, indices []int) (*mat.Dense, *mat.VecDense) {
	_, nCols := X.Dims()

	subX := mat.NewDense(len(indices), nCols, nil)
	subY := mat.NewVecDense(len(indices), nil)
	for i, idx := range indices {
		subX.SetRow(i, X.RawRowView(idx))
		subY.SetVec(i, y[idx])
	}
	return subX, subY
}
