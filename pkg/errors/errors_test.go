package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name     string
		op       string
		kind     string
		err      error
		wantMsg  string
		hasStack bool
	}{
		{
			name:     "with original error",
			op:       "Fit",
			kind:     "invalid input",
			err:      fmt.Errorf("test error"),
			wantMsg:  "stabl: Fit: invalid input: test error",
			hasStack: true,
		},
		{
			name:     "without original error",
			op:       "Transform",
			kind:     "not fitted",
			err:      nil,
			wantMsg:  "stabl: Transform: not fitted",
			hasStack: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			if tt.hasStack {
				formatted := fmt.Sprintf("%+v", err)
				if !strings.Contains(formatted, "errors_test.go") {
					t.Error("Expected stack trace to contain test file name")
				}
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}
		})
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("STABL", "GetSupport")

	want := "stabl: STABL: this estimator is not fitted yet. Call Fit() before using GetSupport()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var nfe *NotFittedError
	if !As(err, &nfe) {
		t.Fatal("Error should be castable to *NotFittedError")
	}
	if nfe.ModelName != "STABL" || nfe.Method != "GetSupport" {
		t.Errorf("unexpected fields: %+v", nfe)
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("Transform", 20, 18, 1)

	if !strings.Contains(err.Error(), "Expected 20, got 18") {
		t.Errorf("unexpected message: %v", err.Error())
	}
	if !strings.Contains(err.Error(), "features") {
		t.Errorf("axis 1 should report features: %v", err.Error())
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Fatal("Error should be castable to *DimensionError")
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("artificial_type", "must be one of [random_permutation knockoff]", "gaussian")

	if !strings.Contains(err.Error(), "artificial_type") {
		t.Errorf("message should name the parameter: %v", err.Error())
	}

	var valErr *ValidationError
	if !As(err, &valErr) {
		t.Fatal("Error should be castable to *ValidationError")
	}
	if valErr.Value != "gaussian" {
		t.Errorf("Value = %v, want gaussian", valErr.Value)
	}
}

func TestNewDegenerateDataError(t *testing.T) {
	err := NewDegenerateDataError("Bootstrap", 1000, "subsamples never contained two outcome classes")

	if !strings.Contains(err.Error(), "degenerate input data") {
		t.Errorf("unexpected message: %v", err.Error())
	}
	if !strings.Contains(err.Error(), "1000 retries") {
		t.Errorf("message should contain the retry count: %v", err.Error())
	}

	var degErr *DegenerateDataError
	if !As(err, &degErr) {
		t.Fatal("Error should be castable to *DegenerateDataError")
	}
}

func TestWarnHandler(t *testing.T) {
	var captured []error
	SetWarningHandler(func(w error) {
		captured = append(captured, w)
	})
	defer SetWarningHandler(func(w error) {})

	w := NewNoFeaturesWarning("STABL", 0.72)
	Warn(w)

	if len(captured) != 1 {
		t.Fatalf("expected 1 captured warning, got %d", len(captured))
	}
	if !strings.Contains(captured[0].Error(), "no features were selected") {
		t.Errorf("unexpected warning message: %v", captured[0])
	}
}

func TestConvergenceWarningMessage(t *testing.T) {
	w := NewConvergenceWarning("LogisticLasso", 500, "")
	if !strings.Contains(w.Error(), "failed to converge after 500 iterations") {
		t.Errorf("unexpected message: %v", w.Error())
	}
}
