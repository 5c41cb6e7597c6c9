package linear

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/stabl/pkg/errors"
)

func init() {
	// Keep convergence warnings out of the test output.
	errors.SetWarningHandler(func(error) {})
}

// makeSparseRegression builds a noiseless design where only the first two
// columns carry signal.
func makeSparseRegression(n, p int, seed int64) (*mat.Dense, *mat.VecDense) {
	rng := rand.New(rand.NewSource(seed))
	X := mat.NewDense(n, p, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			X.Set(i, j, rng.NormFloat64())
		}
		y.SetVec(i, 3*X.At(i, 0)-2*X.At(i, 1)+1.5)
	}
	return X, y
}

func TestLassoRecoverSparseSignal(t *testing.T) {
	X, y := makeSparseRegression(80, 6, 42)

	model := NewLasso(WithLassoAlpha(0.01))
	if err := model.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	coef, err := model.Coef()
	if err != nil {
		t.Fatalf("Coef failed: %v", err)
	}
	if math.Abs(coef[0]-3) > 0.2 {
		t.Errorf("coef[0] = %v, want approx 3", coef[0])
	}
	if math.Abs(coef[1]+2) > 0.2 {
		t.Errorf("coef[1] = %v, want approx -2", coef[1])
	}
	for j := 2; j < 6; j++ {
		if math.Abs(coef[j]) > 0.1 {
			t.Errorf("coef[%d] = %v, want approx 0", j, coef[j])
		}
	}

	intercept, err := model.Intercept()
	if err != nil {
		t.Fatalf("Intercept failed: %v", err)
	}
	if math.Abs(intercept-1.5) > 0.2 {
		t.Errorf("intercept = %v, want approx 1.5", intercept)
	}

	score, err := model.Score(X, y)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if score < 0.95 {
		t.Errorf("R2 = %v, want >= 0.95 on noiseless data", score)
	}
}

func TestLassoStrongPenaltyZeroesEverything(t *testing.T) {
	X, y := makeSparseRegression(50, 4, 7)

	model := NewLasso(WithLassoAlpha(1000))
	if err := model.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	coef, _ := model.Coef()
	for j, w := range coef {
		if w != 0 {
			t.Errorf("coef[%d] = %v, want exactly 0 under a dominating penalty", j, w)
		}
	}
}

func TestLassoSetParams(t *testing.T) {
	tests := []struct {
		name    string
		params  map[string]interface{}
		wantErr bool
	}{
		{"alpha float", map[string]interface{}{"alpha": 0.5}, false},
		{"alpha int", map[string]interface{}{"alpha": 2}, false},
		{"max_iter", map[string]interface{}{"max_iter": 500}, false},
		{"tol", map[string]interface{}{"tol": 1e-6}, false},
		{"fit_intercept", map[string]interface{}{"fit_intercept": false}, false},
		{"alpha wrong type", map[string]interface{}{"alpha": "high"}, true},
		{"unknown parameter", map[string]interface{}{"gamma": 1.0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := NewLasso()
			err := model.SetParams(tt.params)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SetParams error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var valErr *errors.ValidationError
				if !errors.As(err, &valErr) {
					t.Errorf("error is not a ValidationError: %v", err)
				}
			}
		})
	}
}

func TestLassoCloneIsIndependent(t *testing.T) {
	X, y := makeSparseRegression(40, 3, 11)

	original := NewLasso(WithLassoAlpha(0.05), WithLassoMaxIter(300))
	if err := original.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	clone := original.Clone().(*Lasso)
	if clone.alpha != 0.05 || clone.maxIter != 300 {
		t.Errorf("clone did not carry hyperparameters: alpha=%v max_iter=%v", clone.alpha, clone.maxIter)
	}
	if _, err := clone.Coef(); err == nil {
		t.Error("clone should be unfitted")
	}

	if err := clone.SetParams(map[string]interface{}{"alpha": 9.9}); err != nil {
		t.Fatalf("SetParams failed: %v", err)
	}
	if original.alpha != 0.05 {
		t.Errorf("mutating the clone changed the original: alpha=%v", original.alpha)
	}
}

func TestLassoNotFitted(t *testing.T) {
	model := NewLasso()
	X := mat.NewDense(2, 2, []float64{1, 2, 3, 4})

	if _, err := model.Predict(X); err == nil {
		t.Fatal("Predict before Fit should fail")
	} else {
		var nf *errors.NotFittedError
		if !errors.As(err, &nf) {
			t.Errorf("error is not a NotFittedError: %v", err)
		}
	}

	if _, err := model.FeatureImportances(); err == nil {
		t.Error("FeatureImportances before Fit should fail")
	}
}

func TestLassoDimensionChecks(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{1, 2, 3, 4, 5, 6, 7, 8})
	yShort := mat.NewVecDense(3, []float64{1, 2, 3})

	model := NewLasso()
	if err := model.Fit(X, yShort); err == nil {
		t.Fatal("Fit with mismatched rows should fail")
	} else {
		var dim *errors.DimensionError
		if !errors.As(err, &dim) {
			t.Errorf("error is not a DimensionError: %v", err)
		}
	}

	y := mat.NewVecDense(4, []float64{1, 2, 3, 4})
	if err := model.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	Xwide := mat.NewDense(2, 3, nil)
	if _, err := model.Predict(Xwide); err == nil {
		t.Error("Predict with wrong column count should fail")
	}
}

func TestLassoFeatureImportancesAreAbsolute(t *testing.T) {
	X, y := makeSparseRegression(80, 6, 42)

	model := NewLasso(WithLassoAlpha(0.01))
	if err := model.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	coef, _ := model.Coef()
	importances, err := model.FeatureImportances()
	if err != nil {
		t.Fatalf("FeatureImportances failed: %v", err)
	}
	for j := range coef {
		if importances[j] != math.Abs(coef[j]) {
			t.Errorf("importance[%d] = %v, want |coef| = %v", j, importances[j], math.Abs(coef[j]))
		}
	}
}
