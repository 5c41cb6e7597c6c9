package linear

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/stabl/pkg/errors"
)

// makeSeparatedClasses builds binary data where the first column shifts by
// +/- delta with the class and the rest is pure noise.
func makeSeparatedClasses(n, p int, delta float64, seed int64) (*mat.Dense, *mat.VecDense) {
	rng := rand.New(rand.NewSource(seed))
	X := mat.NewDense(n, p, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		label := float64(i % 2)
		shift := -delta
		if label == 1 {
			shift = delta
		}
		for j := 0; j < p; j++ {
			X.Set(i, j, rng.NormFloat64())
		}
		X.Set(i, 0, X.At(i, 0)+shift)
		y.SetVec(i, label)
	}
	return X, y
}

func TestLogisticLassoSeparableAccuracy(t *testing.T) {
	X, y := makeSeparatedClasses(100, 5, 3.0, 21)

	model := NewLogisticLasso(WithLogisticC(1.0))
	if err := model.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	acc, err := model.Score(X, y)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if acc < 0.9 {
		t.Errorf("accuracy = %v, want >= 0.9 on well separated classes", acc)
	}

	importances, err := model.FeatureImportances()
	if err != nil {
		t.Fatalf("FeatureImportances failed: %v", err)
	}
	for j := 1; j < 5; j++ {
		if importances[j] >= importances[0] {
			t.Errorf("importance[%d] = %v >= importance[0] = %v; the informative column should dominate",
				j, importances[j], importances[0])
		}
	}
}

func TestLogisticLassoStrongPenaltyZeroesWeights(t *testing.T) {
	X, y := makeSeparatedClasses(60, 4, 2.0, 3)

	// Tiny C means a dominating L1 penalty.
	model := NewLogisticLasso(WithLogisticC(1e-6))
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

func TestLogisticLassoRequiresTwoClasses(t *testing.T) {
	X := mat.NewDense(6, 2, nil)
	yOne := mat.NewVecDense(6, []float64{1, 1, 1, 1, 1, 1})

	model := NewLogisticLasso()
	err := model.Fit(X, yOne)
	if err == nil {
		t.Fatal("Fit with a single class should fail")
	}
	var valErr *errors.ValueError
	if !errors.As(err, &valErr) {
		t.Errorf("error is not a ValueError: %v", err)
	}

	yThree := mat.NewVecDense(6, []float64{0, 1, 2, 0, 1, 2})
	if err := model.Fit(X, yThree); err == nil {
		t.Error("Fit with three classes should fail")
	}
}

func TestLogisticLassoPredictUsesOriginalLabels(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	n := 40
	X := mat.NewDense(n, 2, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		label := -1.0
		shift := -2.5
		if i%2 == 0 {
			label = 7.0
			shift = 2.5
		}
		X.Set(i, 0, rng.NormFloat64()+shift)
		X.Set(i, 1, rng.NormFloat64())
		y.SetVec(i, label)
	}

	model := NewLogisticLasso()
	if err := model.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	classes, err := model.Classes()
	if err != nil {
		t.Fatalf("Classes failed: %v", err)
	}
	if classes[0] != -1 || classes[1] != 7 {
		t.Fatalf("classes = %v, want [-1 7]", classes)
	}

	pred, err := model.Predict(X)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	for i := 0; i < pred.Len(); i++ {
		v := pred.AtVec(i)
		if v != -1 && v != 7 {
			t.Fatalf("prediction %v is not one of the training labels", v)
		}
	}
}

func TestLogisticLassoPredictProbaRange(t *testing.T) {
	X, y := makeSeparatedClasses(50, 3, 2.0, 13)

	model := NewLogisticLasso()
	if err := model.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	proba, err := model.PredictProba(X)
	if err != nil {
		t.Fatalf("PredictProba failed: %v", err)
	}
	for i := 0; i < proba.Len(); i++ {
		p := proba.AtVec(i)
		if p < 0 || p > 1 || math.IsNaN(p) {
			t.Fatalf("proba[%d] = %v out of [0, 1]", i, p)
		}
	}
}

func TestLogisticLassoDeterministicFit(t *testing.T) {
	X, y := makeSeparatedClasses(60, 4, 2.0, 99)

	first := NewLogisticLasso()
	second := NewLogisticLasso()
	if err := first.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if err := second.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	coefA, _ := first.Coef()
	coefB, _ := second.Coef()
	for j := range coefA {
		if coefA[j] != coefB[j] {
			t.Fatalf("coef[%d] differs between identical fits: %v vs %v", j, coefA[j], coefB[j])
		}
	}
}

func TestLogisticLassoSetParams(t *testing.T) {
	tests := []struct {
		name    string
		params  map[string]interface{}
		wantErr bool
	}{
		{"C float", map[string]interface{}{"C": 0.3}, false},
		{"C int", map[string]interface{}{"C": 2}, false},
		{"C zero", map[string]interface{}{"C": 0.0}, true},
		{"C negative", map[string]interface{}{"C": -1.0}, true},
		{"class_weight balanced", map[string]interface{}{"class_weight": "balanced"}, false},
		{"class_weight bogus", map[string]interface{}{"class_weight": "heavy"}, true},
		{"unknown parameter", map[string]interface{}{"penalty": "l1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := NewLogisticLasso()
			err := model.SetParams(tt.params)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SetParams error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLogisticLassoGetParamsRoundTrip(t *testing.T) {
	model := NewLogisticLasso(WithLogisticC(0.7), WithLogisticMaxIter(123))
	params := model.GetParams()

	if params["C"] != 0.7 {
		t.Errorf("C = %v, want 0.7", params["C"])
	}
	if params["max_iter"] != 123 {
		t.Errorf("max_iter = %v, want 123", params["max_iter"])
	}

	clone := model.Clone()
	if clone.GetParams()["C"] != 0.7 {
		t.Errorf("clone C = %v, want 0.7", clone.GetParams()["C"])
	}
}
