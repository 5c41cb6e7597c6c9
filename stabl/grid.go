package stabl

import "gonum.org/v1/gonum/floats"

// Linspace returns num evenly spaced values from start to stop inclusive.
func Linspace(start, stop float64, num int) []float64 {
	if num <= 0 {
		return nil
	}
	if num == 1 {
		return []float64{start}
	}
	return floats.Span(make([]float64, num), start, stop)
}

// Arange returns values from start up to (but excluding) stop in increments of
// step.
func Arange(start, stop, step float64) []float64 {
	if step <= 0 || stop <= start {
		return nil
	}
	n := int((stop - start) / step)
	// Guard against accumulation error at the boundary.
	for float64(n)*step+start >= stop {
		n--
	}
	out := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		out = append(out, start+float64(i)*step)
	}
	return out
}

// DefaultLambdaGrid is the default regularization grid: 30 values spanning
// [0.01, 1].
func DefaultLambdaGrid() []float64 {
	return Linspace(0.01, 1, 30)
}

// DefaultFDRThresholdRange is the default candidate threshold grid for FDR
// control: [0.3, 1) in steps of 0.01.
func DefaultFDRThresholdRange() []float64 {
	return Arange(0.3, 1.0, 0.01)
}
