// Package preprocessing provides data transformers applied before feature
// selection. Sparse linear fits are scale-sensitive, so the usual pipeline is
// StandardScaler followed by the selector.
package preprocessing

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/stabl/core/model"
	"github.com/YuminosukeSato/stabl/pkg/errors"
)

// StandardScaler standardizes features to zero mean and unit variance.
// Constant columns keep a scale of one so they pass through unchanged rather
// than dividing by zero.
type StandardScaler struct {
	state *model.StateManager

	withMean bool
	withStd  bool

	means  []float64
	scales []float64
}

// ScalerOption is a functional option for StandardScaler.
type ScalerOption func(*StandardScaler)

// WithMean sets whether the mean is subtracted. Default true.
func WithMean(center bool) ScalerOption {
	return func(s *StandardScaler) { s.withMean = center }
}

// WithStd sets whether features are divided by their standard deviation.
// Default true.
func WithStd(scale bool) ScalerOption {
	return func(s *StandardScaler) { s.withStd = scale }
}

// NewStandardScaler creates a StandardScaler.
func NewStandardScaler(opts ...ScalerOption) *StandardScaler {
	s := &StandardScaler{
		state:    model.NewStateManager(),
		withMean: true,
		withStd:  true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fit computes the per-column mean and standard deviation.
func (s *StandardScaler) Fit(X mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	s.means = make([]float64, nFeatures)
	s.scales = make([]float64, nFeatures)

	for j := 0; j < nFeatures; j++ {
		var sum float64
		for i := 0; i < nSamples; i++ {
			sum += X.At(i, j)
		}
		mean := sum / float64(nSamples)
		s.means[j] = mean

		var ss float64
		for i := 0; i < nSamples; i++ {
			d := X.At(i, j) - mean
			ss += d * d
		}
		std := math.Sqrt(ss / float64(nSamples))
		if std == 0 {
			std = 1
		}
		s.scales[j] = std
	}

	s.state.SetDimensions(nFeatures, nSamples)
	s.state.SetFitted()
	return nil
}

// Transform standardizes X using the fitted statistics.
func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.state.RequireFitted("StandardScaler", "Transform"); err != nil {
		return nil, err
	}
	nSamples, nFeatures := X.Dims()
	if nFeatures != len(s.means) {
		return nil, errors.NewDimensionError("StandardScaler.Transform", len(s.means), nFeatures, 1)
	}

	out := mat.NewDense(nSamples, nFeatures, nil)
	for i := 0; i < nSamples; i++ {
		for j := 0; j < nFeatures; j++ {
			v := X.At(i, j)
			if s.withMean {
				v -= s.means[j]
			}
			if s.withStd {
				v /= s.scales[j]
			}
			out.Set(i, j, v)
		}
	}
	return out, nil
}

// FitTransform fits the scaler and transforms X in one call.
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform maps standardized data back to the original scale.
func (s *StandardScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.state.RequireFitted("StandardScaler", "InverseTransform"); err != nil {
		return nil, err
	}
	nSamples, nFeatures := X.Dims()
	if nFeatures != len(s.means) {
		return nil, errors.NewDimensionError("StandardScaler.InverseTransform", len(s.means), nFeatures, 1)
	}

	out := mat.NewDense(nSamples, nFeatures, nil)
	for i := 0; i < nSamples; i++ {
		for j := 0; j < nFeatures; j++ {
			v := X.At(i, j)
			if s.withStd {
				v *= s.scales[j]
			}
			if s.withMean {
				v += s.means[j]
			}
			out.Set(i, j, v)
		}
	}
	return out, nil
}

// Means returns the fitted per-column means.
func (s *StandardScaler) Means() ([]float64, error) {
	if err := s.state.RequireFitted("StandardScaler", "Means"); err != nil {
		return nil, err
	}
	return s.means, nil
}

// Scales returns the fitted per-column standard deviations.
func (s *StandardScaler) Scales() ([]float64, error) {
	if err := s.state.RequireFitted("StandardScaler", "Scales"); err != nil {
		return nil, err
	}
	return s.scales, nil
}
