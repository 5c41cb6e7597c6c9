package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestMSE(t *testing.T) {
	yTrue := mat.NewVecDense(3, []float64{1, 2, 3})
	yPred := mat.NewVecDense(3, []float64{1, 2, 5})

	got, err := MSE(yTrue, yPred)
	if err != nil {
		t.Fatalf("MSE failed: %v", err)
	}
	want := 4.0 / 3.0
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("MSE = %v, want %v", got, want)
	}

	if _, err := MSE(yTrue, mat.NewVecDense(2, nil)); err == nil {
		t.Error("MSE with mismatched lengths should fail")
	}
	if _, err := MSE(&mat.VecDense{}, &mat.VecDense{}); err == nil {
		t.Error("MSE on empty vectors should fail")
	}
}

func TestR2Score(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{1, 2, 3, 4})

	perfect, err := R2Score(yTrue, yTrue)
	if err != nil {
		t.Fatalf("R2Score failed: %v", err)
	}
	if perfect != 1 {
		t.Errorf("perfect R2 = %v, want 1", perfect)
	}

	// Predicting the mean gives exactly zero.
	mean := mat.NewVecDense(4, []float64{2.5, 2.5, 2.5, 2.5})
	zero, err := R2Score(yTrue, mean)
	if err != nil {
		t.Fatalf("R2Score failed: %v", err)
	}
	if math.Abs(zero) > 1e-12 {
		t.Errorf("mean-prediction R2 = %v, want 0", zero)
	}

	// Worse than the mean goes negative.
	bad := mat.NewVecDense(4, []float64{4, 3, 2, 1})
	negative, err := R2Score(yTrue, bad)
	if err != nil {
		t.Fatalf("R2Score failed: %v", err)
	}
	if negative >= 0 {
		t.Errorf("reversed-prediction R2 = %v, want negative", negative)
	}

	constant := mat.NewVecDense(3, []float64{5, 5, 5})
	if _, err := R2Score(constant, mat.NewVecDense(3, []float64{5, 5, 6})); err == nil {
		t.Error("R2Score with zero target variance and imperfect prediction should fail")
	}
}

func TestAccuracy(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{0, 1, 1, 0})
	yPred := mat.NewVecDense(4, []float64{0, 1, 0, 0})

	got, err := Accuracy(yTrue, yPred)
	if err != nil {
		t.Fatalf("Accuracy failed: %v", err)
	}
	if got != 0.75 {
		t.Errorf("Accuracy = %v, want 0.75", got)
	}
}
