package model

import (
	"gonum.org/v1/gonum/mat"
)

// Fitter is the interface for estimators that learn from data.
type Fitter interface {
	// Fit trains the estimator. y is a column vector with one value per sample.
	Fit(X, y mat.Matrix) error
}

// Transformer is the interface for data transformers.
type Transformer interface {
	// Fit learns the parameters needed for the transformation.
	Fit(X mat.Matrix) error

	// Transform applies the transformation.
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform fits and transforms in one call.
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// ParameterGetter is the interface for estimators that expose their
// hyperparameters by name.
type ParameterGetter interface {
	// GetParams returns the estimator's hyperparameters.
	GetParams() map[string]interface{}
}

// ParameterSetter is the interface for estimators whose hyperparameters can be
// set by name.
type ParameterSetter interface {
	// SetParams sets the estimator's hyperparameters.
	SetParams(params map[string]interface{}) error
}

// FeatureImportancer is the interface for fitted estimators that report a
// per-feature importance. For linear models this is the absolute coefficient
// magnitude.
type FeatureImportancer interface {
	// FeatureImportances returns one non-negative importance per feature.
	FeatureImportances() ([]float64, error)
}

// BaseEstimator is the capability a sparse model must satisfy to drive
// stability selection: it can be configured by hyperparameter name, fitted on
// a design matrix and label vector, cloned into an independent unfitted
// instance, and queried for per-feature importances after fitting.
//
// Any linear or tree-based model satisfying this set can be substituted; the
// selection core never assumes a concrete type.
type BaseEstimator interface {
	Fitter
	ParameterGetter
	ParameterSetter
	FeatureImportancer

	// Clone returns a fresh unfitted instance carrying the same
	// hyperparameters. Each concurrent resample fit owns its own clone;
	// a single instance is never shared across goroutines.
	Clone() BaseEstimator
}
