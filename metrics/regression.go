// Package metrics provides evaluation metrics for the base estimators.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/stabl/pkg/errors"
)

// MSE computes the mean squared error between two vectors.
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("MSE", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("MSE", n, yPred.Len(), 0)
	}

	var sum float64
	for i := 0; i < n; i++ {
		diff := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += diff * diff
	}
	return sum / float64(n), nil
}

// R2Score computes the coefficient of determination.
// Returns 1 for a perfect prediction; can be negative for predictions worse
// than the mean.
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("R2Score", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("R2Score", n, yPred.Len(), 0)
	}

	var mean float64
	for i := 0; i < n; i++ {
		mean += yTrue.AtVec(i)
	}
	mean /= float64(n)

	var rss, tss float64
	for i := 0; i < n; i++ {
		diff := yTrue.AtVec(i) - yPred.AtVec(i)
		rss += diff * diff
		dev := yTrue.AtVec(i) - mean
		tss += dev * dev
	}

	if tss < 1e-15 {
		if rss < 1e-15 {
			return 1, nil
		}
		return 0, errors.NewValueError("R2Score", "target variance is zero")
	}
	return 1 - rss/tss, nil
}

// Accuracy computes the fraction of matching entries between two label
// vectors.
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("Accuracy", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("Accuracy", n, yPred.Len(), 0)
	}

	correct := 0
	for i := 0; i < n; i++ {
		if math.Abs(yTrue.AtVec(i)-yPred.AtVec(i)) < 1e-12 {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}
