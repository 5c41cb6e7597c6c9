package linear

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/stabl/core/model"
	"github.com/YuminosukeSato/stabl/metrics"
	"github.com/YuminosukeSato/stabl/pkg/errors"
)

// LogisticLasso is an L1-penalized binary logistic regression fitted by
// proximal gradient descent (ISTA). The regularization hyperparameter is "C",
// the inverse penalty strength as in scikit-learn: small C means strong
// sparsity. This is the default base estimator for stability selection on
// classification outcomes.
type LogisticLasso struct {
	state *model.StateManager

	// Hyperparameters
	c            float64
	maxIter      int
	tol          float64
	fitIntercept bool
	classWeight  string // "balanced" or "none"

	// Fitted parameters
	coef      []float64
	intercept float64
	classes   []float64
	nIter     int
}

// LogisticLassoOption is a functional option for LogisticLasso.
type LogisticLassoOption func(*LogisticLasso)

// NewLogisticLasso creates a LogisticLasso with defaults matching the
// reference procedure: balanced class weights and a generous iteration
// budget.
func NewLogisticLasso(opts ...LogisticLassoOption) *LogisticLasso {
	l := &LogisticLasso{
		state:        model.NewStateManager(),
		c:            1.0,
		maxIter:      2000,
		tol:          1e-5,
		fitIntercept: true,
		classWeight:  "balanced",
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// WithLogisticC sets the inverse regularization strength.
func WithLogisticC(c float64) LogisticLassoOption {
	return func(l *LogisticLasso) { l.c = c }
}

// WithLogisticMaxIter sets the maximum number of proximal gradient steps.
func WithLogisticMaxIter(maxIter int) LogisticLassoOption {
	return func(l *LogisticLasso) { l.maxIter = maxIter }
}

// WithLogisticTol sets the convergence tolerance on the maximum weight change.
func WithLogisticTol(tol float64) LogisticLassoOption {
	return func(l *LogisticLasso) { l.tol = tol }
}

// WithLogisticFitIntercept sets whether an unpenalized intercept is fitted.
func WithLogisticFitIntercept(fit bool) LogisticLassoOption {
	return func(l *LogisticLasso) { l.fitIntercept = fit }
}

// WithLogisticClassWeight sets the class weighting mode, "balanced" or "none".
func WithLogisticClassWeight(mode string) LogisticLassoOption {
	return func(l *LogisticLasso) { l.classWeight = mode }
}

// Clone returns a fresh unfitted LogisticLasso with the same hyperparameters.
func (l *LogisticLasso) Clone() model.BaseEstimator {
	return &LogisticLasso{
		state:        model.NewStateManager(),
		c:            l.c,
		maxIter:      l.maxIter,
		tol:          l.tol,
		fitIntercept: l.fitIntercept,
		classWeight:  l.classWeight,
	}
}

// GetParams returns the hyperparameters by name.
func (l *LogisticLasso) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"C":             l.c,
		"max_iter":      l.maxIter,
		"tol":           l.tol,
		"fit_intercept": l.fitIntercept,
		"class_weight":  l.classWeight,
	}
}

// SetParams sets hyperparameters by name.
func (l *LogisticLasso) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "C":
			v, err := toFloat(value)
			if err != nil {
				return errors.NewValidationError(key, "must be numeric", value)
			}
			if v <= 0 {
				return errors.NewValidationError(key, "must be positive", value)
			}
			l.c = v
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
		case "class_weight":
			v, ok := value.(string)
			if !ok || (v != "balanced" && v != "none") {
				return errors.NewValidationError(key, `must be "balanced" or "none"`, value)
			}
			l.classWeight = v
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
	}
	return nil
}

// Fit trains the model by proximal gradient descent. y must be a column
// vector holding exactly two distinct class labels. Weights start at zero so
// fitting is deterministic.
func (l *LogisticLasso) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()

	if nSamples == 0 || nFeatures == 0 {
		return errors.NewModelError("LogisticLasso.Fit", "empty data", errors.ErrEmptyData)
	}
	if yCols != 1 {
		return errors.NewDimensionError("LogisticLasso.Fit", 1, yCols, 1)
	}
	if yRows != nSamples {
		return errors.NewDimensionError("LogisticLasso.Fit", nSamples, yRows, 0)
	}

	classes, y01 := binarizeLabels(y, nSamples)
	if len(classes) != 2 {
		return errors.NewValueError("LogisticLasso.Fit",
			"binary classification requires exactly two distinct classes")
	}
	l.classes = classes

	// Per-sample weights; "balanced" reweights inversely to class frequency.
	sampleWeight := make([]float64, nSamples)
	for i := range sampleWeight {
		sampleWeight[i] = 1
	}
	if l.classWeight == "balanced" {
		var nPos float64
		for _, v := range y01 {
			nPos += v
		}
		nNeg := float64(nSamples) - nPos
		wPos := float64(nSamples) / (2 * nPos)
		wNeg := float64(nSamples) / (2 * nNeg)
		for i, v := range y01 {
			if v == 1 {
				sampleWeight[i] = wPos
			} else {
				sampleWeight[i] = wNeg
			}
		}
	}

	// Lipschitz bound for the weighted logistic loss gradient:
	// L <= max_w/4n * ||X||_F^2, used for a fixed step size.
	var frobSq, maxW float64
	for i := 0; i < nSamples; i++ {
		if sampleWeight[i] > maxW {
			maxW = sampleWeight[i]
		}
		for j := 0; j < nFeatures; j++ {
			v := X.At(i, j)
			frobSq += v * v
		}
	}
	lip := maxW * frobSq / (4 * float64(nSamples))
	if lip < 1e-12 {
		lip = 1e-12
	}
	step := 1.0 / lip

	// Penalty scaled so the objective matches
	// C * sum(weighted logloss) + ||w||_1 up to a constant factor.
	penalty := step / (l.c * float64(nSamples))

	weights := make([]float64, nFeatures)
	intercept := 0.0
	grad := make([]float64, nFeatures)
	converged := false

	for iter := 0; iter < l.maxIter; iter++ {
		for j := range grad {
			grad[j] = 0
		}
		gradIntercept := 0.0

		for i := 0; i < nSamples; i++ {
			z := intercept
			for j := 0; j < nFeatures; j++ {
				z += X.At(i, j) * weights[j]
			}
			residual := sampleWeight[i] * (sigmoid(z) - y01[i])
			gradIntercept += residual
			for j := 0; j < nFeatures; j++ {
				grad[j] += residual * X.At(i, j)
			}
		}

		invN := 1.0 / float64(nSamples)
		maxDelta := 0.0
		for j := 0; j < nFeatures; j++ {
			proposed := weights[j] - step*grad[j]*invN
			newWeight := softThreshold(proposed, penalty)
			if delta := math.Abs(newWeight - weights[j]); delta > maxDelta {
				maxDelta = delta
			}
			weights[j] = newWeight
		}
		if l.fitIntercept {
			newIntercept := intercept - step*gradIntercept*invN
			if delta := math.Abs(newIntercept - intercept); delta > maxDelta {
				maxDelta = delta
			}
			intercept = newIntercept
		}

		l.nIter = iter + 1
		if maxDelta < l.tol {
			converged = true
			break
		}
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning("LogisticLasso", l.maxIter, ""))
	}

	l.coef = weights
	l.intercept = intercept
	l.state.SetDimensions(nFeatures, nSamples)
	l.state.SetFitted()
	return nil
}

// Predict returns the predicted class label for each row of X.
func (l *LogisticLasso) Predict(X mat.Matrix) (*mat.VecDense, error) {
	proba, err := l.PredictProba(X)
	if err != nil {
		return nil, err
	}
	n := proba.Len()
	out := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		if proba.AtVec(i) >= 0.5 {
			out.SetVec(i, l.classes[1])
		} else {
			out.SetVec(i, l.classes[0])
		}
	}
	return out, nil
}

// PredictProba returns the probability of the positive (second) class for
// each row of X.
func (l *LogisticLasso) PredictProba(X mat.Matrix) (*mat.VecDense, error) {
	if err := l.state.RequireFitted("LogisticLasso", "PredictProba"); err != nil {
		return nil, err
	}
	nSamples, nFeatures := X.Dims()
	if nFeatures != len(l.coef) {
		return nil, errors.NewDimensionError("LogisticLasso.PredictProba", len(l.coef), nFeatures, 1)
	}

	out := mat.NewVecDense(nSamples, nil)
	for i := 0; i < nSamples; i++ {
		z := l.intercept
		for j := 0; j < nFeatures; j++ {
			z += X.At(i, j) * l.coef[j]
		}
		out.SetVec(i, sigmoid(z))
	}
	return out, nil
}

// Score returns the mean accuracy on the given data and labels.
func (l *LogisticLasso) Score(X, y mat.Matrix) (float64, error) {
	pred, err := l.Predict(X)
	if err != nil {
		return 0, err
	}
	yRows, _ := y.Dims()
	yVec := mat.NewVecDense(yRows, nil)
	for i := 0; i < yRows; i++ {
		yVec.SetVec(i, y.At(i, 0))
	}
	return metrics.Accuracy(yVec, pred)
}

// Coef returns the fitted coefficients.
func (l *LogisticLasso) Coef() ([]float64, error) {
	if err := l.state.RequireFitted("LogisticLasso", "Coef"); err != nil {
		return nil, err
	}
	return l.coef, nil
}

// Intercept returns the fitted intercept.
func (l *LogisticLasso) Intercept() (float64, error) {
	if err := l.state.RequireFitted("LogisticLasso", "Intercept"); err != nil {
		return 0, err
	}
	return l.intercept, nil
}

// Classes returns the two class labels in ascending order.
func (l *LogisticLasso) Classes() ([]float64, error) {
	if err := l.state.RequireFitted("LogisticLasso", "Classes"); err != nil {
		return nil, err
	}
	return l.classes, nil
}

// NIter returns the number of proximal gradient steps performed.
func (l *LogisticLasso) NIter() int {
	return l.nIter
}

// FeatureImportances returns the absolute coefficient magnitudes.
func (l *LogisticLasso) FeatureImportances() ([]float64, error) {
	if err := l.state.RequireFitted("LogisticLasso", "FeatureImportances"); err != nil {
		return nil, err
	}
	out := make([]float64, len(l.coef))
	for j, w := range l.coef {
		out[j] = math.Abs(w)
	}
	return out, nil
}

// binarizeLabels extracts the sorted distinct labels and maps y onto {0, 1}
// with the larger label as the positive class.
func binarizeLabels(y mat.Matrix, nSamples int) (classes []float64, y01 []float64) {
	seen := make(map[float64]bool)
	for i := 0; i < nSamples; i++ {
		seen[y.At(i, 0)] = true
	}
	classes = make([]float64, 0, len(seen))
	for v := range seen {
		classes = append(classes, v)
	}
	sort.Float64s(classes)

	y01 = make([]float64, nSamples)
	if len(classes) == 2 {
		for i := 0; i < nSamples; i++ {
			if y.At(i, 0) == classes[1] {
				y01[i] = 1
			}
		}
	}
	return classes, y01
}

// sigmoid computes the logistic function.
func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
