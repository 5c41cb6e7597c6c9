// Package linear provides sparse linear base estimators satisfying the
// model.BaseEstimator capability used by stability selection.
package linear

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/stabl/core/model"
	"github.com/YuminosukeSato/stabl/metrics"
	"github.com/YuminosukeSato/stabl/pkg/errors"
)

// Lasso is an L1-penalized linear regression fitted by cyclic coordinate
// descent with soft-thresholding and an active-set shortcut. The objective is
//
//	(1/(2n)) * ||y - Xw - b||^2 + alpha * ||w||_1
//
// matching scikit-learn's parameterization, so "alpha" is the regularization
// hyperparameter name for stability selection.
type Lasso struct {
	state *model.StateManager

	// Hyperparameters
	alpha        float64
	maxIter      int
	tol          float64
	fitIntercept bool

	// Fitted parameters
	coef      []float64
	intercept float64
	nIter     int
}

// LassoOption is a functional option for Lasso.
type LassoOption func(*Lasso)

// NewLasso creates a Lasso estimator with scikit-learn-like defaults.
func NewLasso(opts ...LassoOption) *Lasso {
	l := &Lasso{
		state:        model.NewStateManager(),
		alpha:        1.0,
		maxIter:      1000,
		tol:          1e-4,
		fitIntercept: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// WithLassoAlpha sets the L1 penalty strength.
func WithLassoAlpha(alpha float64) LassoOption {
	return func(l *Lasso) { l.alpha = alpha }
}

// WithLassoMaxIter sets the maximum number of coordinate descent sweeps.
func WithLassoMaxIter(maxIter int) LassoOption {
	return func(l *Lasso) { l.maxIter = maxIter }
}

// WithLassoTol sets the convergence tolerance on the maximum weight change.
func WithLassoTol(tol float64) LassoOption {
	return func(l *Lasso) { l.tol = tol }
}

// WithLassoFitIntercept sets whether an unpenalized intercept is fitted.
func WithLassoFitIntercept(fit bool) LassoOption {
	return func(l *Lasso) { l.fitIntercept = fit }
}

// Clone returns a fresh unfitted Lasso with the same hyperparameters.
func (l *Lasso) Clone() model.BaseEstimator {
	return &Lasso{
		state:        model.NewStateManager(),
		alpha:        l.alpha,
		maxIter:      l.maxIter,
		tol:          l.tol,
		fitIntercept: l.fitIntercept,
	}
}

// GetParams returns the hyperparameters by name.
func (l *Lasso) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"alpha":         l.alpha,
		"max_iter":      l.maxIter,
		"tol":           l.tol,
		"fit_intercept": l.fitIntercept,
	}
}

// SetParams sets hyperparameters by name.
func (l *Lasso) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "alpha":
			v, err := toFloat(value)
			if err != nil {
				return errors.NewValidationError(key, "must be numeric", value)
			}
			l.alpha = v
		case "max_iter":
			v, err := toInt(value)
			if err != nil {
				return errors.NewValidationError(key, "must be an integer", value)
			}
			l.maxIter = v
		case "tol":
			v, err := toFloat(value)
			if err != nil {
				return errors.NewValidationError(key, "must be numeric", value)
			}
			l.tol = v
		case "fit_intercept":
			v, ok := value.(bool)
			if !ok {
				return errors.NewValidationError(key, "must be a bool", value)
			}
			l.fitIntercept = v
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
	}
	return nil
}

// Fit trains the model with cyclic coordinate descent. It does not mutate X
// or y.
func (l *Lasso) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()

	if nSamples == 0 || nFeatures == 0 {
		return errors.NewModelError("Lasso.Fit", "empty data", errors.ErrEmptyData)
	}
	if yCols != 1 {
		return errors.NewDimensionError("Lasso.Fit", 1, yCols, 1)
	}
	if yRows != nSamples {
		return errors.NewDimensionError("Lasso.Fit", nSamples, yRows, 0)
	}

	// Working copies; centering keeps the intercept out of the penalty.
	Xd := mat.DenseCopyOf(X)
	yData := make([]float64, nSamples)
	for i := 0; i < nSamples; i++ {
		yData[i] = y.At(i, 0)
	}

	var xMeans []float64
	yMean := 0.0
	if l.fitIntercept {
		xMeans = make([]float64, nFeatures)
		for j := 0; j < nFeatures; j++ {
			var sum float64
			for i := 0; i < nSamples; i++ {
				sum += Xd.At(i, j)
			}
			xMeans[j] = sum / float64(nSamples)
			for i := 0; i < nSamples; i++ {
				Xd.Set(i, j, Xd.At(i, j)-xMeans[j])
			}
		}
		for _, v := range yData {
			yMean += v
		}
		yMean /= float64(nSamples)
		for i := range yData {
			yData[i] -= yMean
		}
	}

	// Per-column squared norms for the coordinate updates.
	xtx := make([]float64, nFeatures)
	for j := 0; j < nFeatures; j++ {
		var sum float64
		for i := 0; i < nSamples; i++ {
			v := Xd.At(i, j)
			sum += v * v
		}
		xtx[j] = sum
	}

	weights := make([]float64, nFeatures)
	active := make([]bool, nFeatures)
	residuals := make([]float64, nSamples)
	copy(residuals, yData)

	penalty := l.alpha * float64(nSamples)
	converged := false

	for iter := 0; iter < l.maxIter; iter++ {
		maxDelta := 0.0

		for j := 0; j < nFeatures; j++ {
			// After the first full sweep only revisit active coordinates.
			if iter > 0 && !active[j] && weights[j] == 0 {
				continue
			}

			oldWeight := weights[j]
			if oldWeight != 0 {
				for i := 0; i < nSamples; i++ {
					residuals[i] += oldWeight * Xd.At(i, j)
				}
			}

			var rho float64
			for i := 0; i < nSamples; i++ {
				rho += Xd.At(i, j) * residuals[i]
			}

			newWeight := softThreshold(rho, penalty) / (xtx[j] + 1e-12)
			if newWeight != 0 {
				for i := 0; i < nSamples; i++ {
					residuals[i] -= newWeight * Xd.At(i, j)
				}
				active[j] = true
			} else {
				active[j] = false
			}
			weights[j] = newWeight

			if delta := math.Abs(newWeight - oldWeight); delta > maxDelta {
				maxDelta = delta
			}
		}

		l.nIter = iter + 1
		if maxDelta < l.tol {
			converged = true
			break
		}

		// Periodically reopen the full coordinate set so the active-set
		// shortcut cannot miss a coordinate that became relevant.
		if (iter+1)%10 == 0 {
			for j := range active {
				active[j] = true
			}
		}
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning("Lasso", l.maxIter, ""))
	}

	l.coef = weights
	l.intercept = 0
	if l.fitIntercept {
		dot := 0.0
		for j := range weights {
			dot += xMeans[j] * weights[j]
		}
		l.intercept = yMean - dot
	}

	l.state.SetDimensions(nFeatures, nSamples)
	l.state.SetFitted()
	return nil
}

// Predict returns the fitted linear response for each row of X.
func (l *Lasso) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if err := l.state.RequireFitted("Lasso", "Predict"); err != nil {
		return nil, err
	}
	nSamples, nFeatures := X.Dims()
	if nFeatures != len(l.coef) {
		return nil, errors.NewDimensionError("Lasso.Predict", len(l.coef), nFeatures, 1)
	}

	out := mat.NewVecDense(nSamples, nil)
	for i := 0; i < nSamples; i++ {
		sum := l.intercept
		for j := 0; j < nFeatures; j++ {
			sum += X.At(i, j) * l.coef[j]
		}
		out.SetVec(i, sum)
	}
	return out, nil
}

// Score returns the R^2 of the prediction on the given data.
func (l *Lasso) Score(X, y mat.Matrix) (float64, error) {
	pred, err := l.Predict(X)
	if err != nil {
		return 0, err
	}
	yRows, _ := y.Dims()
	yVec := mat.NewVecDense(yRows, nil)
	for i := 0; i < yRows; i++ {
		yVec.SetVec(i, y.At(i, 0))
	}
	return metrics.R2Score(yVec, pred)
}

// Coef returns the fitted coefficients.
func (l *Lasso) Coef() ([]float64, error) {
	if err := l.state.RequireFitted("Lasso", "Coef"); err != nil {
		return nil, err
	}
	return l.coef, nil
}

// Intercept returns the fitted intercept.
func (l *Lasso) Intercept() (float64, error) {
	if err := l.state.RequireFitted("Lasso", "Intercept"); err != nil {
		return 0, err
	}
	return l.intercept, nil
}

// NIter returns the number of coordinate descent sweeps performed.
func (l *Lasso) NIter() int {
	return l.nIter
}

// FeatureImportances returns the absolute coefficient magnitudes.
func (l *Lasso) FeatureImportances() ([]float64, error) {
	if err := l.state.RequireFitted("Lasso", "FeatureImportances"); err != nil {
		return nil, err
	}
	out := make([]float64, len(l.coef))
	for j, w := range l.coef {
		out[j] = math.Abs(w)
	}
	return out, nil
}

// softThreshold applies the soft-thresholding operator.
func softThreshold(z, lambda float64) float64 {
	switch {
	case z > lambda:
		return z - lambda
	case z < -lambda:
		return z + lambda
	default:
		return 0
	}
}

// toFloat coerces numeric parameter values.
func toFloat(v interface{}) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	default:
		return 0, errors.Newf("not a numeric value: %v", v)
	}
}

// toInt coerces integer parameter values.
func toInt(v interface{}) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case float64:
		return int(x), nil
	default:
		return 0, errors.Newf("not an integer value: %v", v)
	}
}
