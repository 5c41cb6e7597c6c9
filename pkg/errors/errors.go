// Package errors provides the structured error and warning system used across
// the stabl library. It follows the scikit-learn exception/warning taxonomy and
// builds on cockroachdb/errors so every error carries a stack trace.
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Global warning handling
//
// ===========================================================================

var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// Default handler logs to standard error.
		log.Printf("stabl-warning: %v\n", w)
	}
	// zerolog sink, injected lazily to avoid an import cycle with pkg/log.
	zerologWarnFunc func(warning error)
)

// SetWarningHandler installs a library-wide warning handler. Warnings such as
// NoFeaturesWarning or ConvergenceWarning are routed through it.
//
// Example:
//
//	errors.SetWarningHandler(func(w error) {
//	    // silence warnings
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc installs a zerolog-backed warning sink (set by pkg/log).
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn emits a warning. When a zerolog sink is configured it takes precedence,
// otherwise the plain handler is used.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	scikit-learn compatible warning types
//
// ===========================================================================

// ConvergenceWarning is emitted when an iterative solver stops before
// reaching its tolerance.
type ConvergenceWarning struct {
	Algorithm  string
	Iterations int
	Message    string
}

func (w *ConvergenceWarning) Error() string {
	if w.Message != "" {
		return fmt.Sprintf("%s failed to converge after %d iterations: %s", w.Algorithm, w.Iterations, w.Message)
	}
	return fmt.Sprintf("%s failed to converge after %d iterations. Consider increasing max_iter or adjusting parameters.", w.Algorithm, w.Iterations)
}

// MarshalZerologObject adds structured warning fields to a zerolog event.
func (w *ConvergenceWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("algorithm", w.Algorithm).
		Int("iterations", w.Iterations).
		Str("message", w.Message).
		Str("type", "ConvergenceWarning")
}

// NewConvergenceWarning creates a new ConvergenceWarning.
func NewConvergenceWarning(algorithm string, iterations int, message string) *ConvergenceWarning {
	return &ConvergenceWarning{Algorithm: algorithm, Iterations: iterations, Message: message}
}

// NoFeaturesWarning is emitted when a fitted selector retains zero features.
// This is a valid outcome, not an error: the data may be too noisy or the
// selection threshold too strict. Downstream consumers should fall back to a
// constant predictor.
type NoFeaturesWarning struct {
	Selector  string
	Threshold float64
}

func (w *NoFeaturesWarning) Error() string {
	return fmt.Sprintf("%s: no features were selected at threshold %.3f: either the data is too noisy or the selection test too strict", w.Selector, w.Threshold)
}

// MarshalZerologObject adds structured warning fields to a zerolog event.
func (w *NoFeaturesWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("selector", w.Selector).
		Float64("threshold", w.Threshold).
		Str("type", "NoFeaturesWarning")
}

// NewNoFeaturesWarning creates a new NoFeaturesWarning.
func NewNoFeaturesWarning(selector string, threshold float64) *NoFeaturesWarning {
	return &NoFeaturesWarning{Selector: selector, Threshold: threshold}
}

// ===========================================================================
//
//	Structured error types
//
// ===========================================================================

// NotFittedError is returned when Predict, Transform or a read accessor is
// called before Fit has completed successfully.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("stabl: %s: this estimator is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a NotFittedError with a stack trace.
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError is returned when input data has a shape different from what
// the estimator expects, e.g. a transform-time matrix whose column count does
// not match the fit-time schema.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("stabl: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError with a stack trace.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValidationError is returned when a constructor or fit argument violates the
// caller contract: a threshold outside (0, 1], an unrecognized artificial
// feature mode, a missing hyperparameter name on the base estimator, and so on.
// It is always surfaced before any computation starts and never retried.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("stabl: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError creates a ValidationError with a stack trace.
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError is returned when an argument value is invalid for an operation.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("stabl: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError with a stack trace.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// DegenerateDataError is returned when resampling cannot satisfy the
// class-balance constraint within the retry budget. It signals that the data
// itself is unusable for the procedure (e.g. the outcome has near-zero
// variance in a subpopulation), not a transient fault.
type DegenerateDataError struct {
	Op      string
	Retries int
	Reason  string
}

func (e *DegenerateDataError) Error() string {
	return fmt.Sprintf("stabl: %s: degenerate input data: %s (gave up after %d retries)", e.Op, e.Reason, e.Retries)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *DegenerateDataError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("retries", e.Retries).
		Str("reason", e.Reason).
		Str("type", "DegenerateDataError")
}

// NewDegenerateDataError creates a DegenerateDataError with a stack trace.
func NewDegenerateDataError(op string, retries int, reason string) error {
	err := &DegenerateDataError{Op: op, Retries: retries, Reason: reason}
	return errors.WithStack(err)
}

// ModelError is a general estimator error wrapping a lower-level cause.
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("stabl: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("stabl: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError creates a ModelError with a stack trace.
func NewModelError(op, kind string, err error) error {
	modelErr := &ModelError{Op: op, Kind: kind, Err: err}
	return errors.WithStack(modelErr)
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap annotates err with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf annotates err with a format string.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates err with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Common error values
//
// ===========================================================================

var (
	// ErrEmptyData is returned when an empty matrix or vector is passed in.
	ErrEmptyData = New("empty data")

	// ErrSingularMatrix is returned when a factorization meets a singular matrix.
	ErrSingularMatrix = New("singular matrix")
)
