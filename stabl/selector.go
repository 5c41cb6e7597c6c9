// Package stabl implements stability-selection feature selection with false
// discovery rate control via synthetic decoy features.
//
// A sparse base estimator is fitted on many bootstrap resamples of the data
// for every value of a regularization grid. Features selected by a large
// fraction of those fits are considered stable. Injected artificial features
// (random permutations or Gaussian knockoffs of real columns) serve as a null
// reference: comparing how often decoys clear a candidate frequency threshold
// against how often real features do yields an estimated false discovery
// proportion, and the threshold minimizing it becomes the selection cutoff.
package stabl

import (
	"math"
	"math/rand"
	"strconv"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/stabl/core/model"
	"github.com/YuminosukeSato/stabl/core/parallel"
	"github.com/YuminosukeSato/stabl/linear"
	"github.com/YuminosukeSato/stabl/pkg/errors"
	"github.com/YuminosukeSato/stabl/pkg/log"
)

// STABL performs stability selection with optional FDR control.
//
// The zero value is not usable; construct instances with New. All
// configuration happens at construction time. Fit is the only mutating
// operation: it discards any prior fitted state and repopulates it, and every
// accessor is read-only afterwards.
type STABL struct {
	state  *model.StateManager
	logger log.Logger

	baseEstimator        model.BaseEstimator
	lambdaName           string
	lambdaGrid           []float64
	nBootstraps          int
	artificialType       ArtificialType
	artificialProportion float64
	sampleFraction       float64
	replace              bool
	hardThreshold        float64 // NaN when unset; bypasses FDR control when set
	fdrThresholdRange    []float64
	bootstrapThreshold   ImportanceThreshold
	nJobs                int
	randomState          int64
	featureNames         []string

	// Fitted state, immutable after Fit.
	nFeaturesIn       int
	featureNamesIn    []string
	stabilityScores   *mat.Dense // nFeatures x len(lambdaGrid), entries in [0, 1]
	artificialScores  *mat.Dense // nArtificial x len(lambdaGrid)
	artificialBlock   *mat.Dense // realized synthetic columns, kept for diagnostics
	fdrs              []float64
	minFDR            float64
	fdrMinThreshold   float64
}

// Option configures a STABL instance at construction time.
type Option func(*STABL)

// WithBaseEstimator sets the sparse base estimator capability. Each resample
// fit receives its own clone.
func WithBaseEstimator(est model.BaseEstimator) Option {
	return func(s *STABL) { s.baseEstimator = est }
}

// WithLambdaName sets the name of the base estimator's regularization
// hyperparameter, e.g. "C" for LogisticLasso or "alpha" for Lasso.
func WithLambdaName(name string) Option {
	return func(s *STABL) { s.lambdaName = name }
}

// WithLambdaGrid sets the regularization grid to iterate over.
func WithLambdaGrid(grid []float64) Option {
	return func(s *STABL) { s.lambdaGrid = grid }
}

// WithNBootstraps sets the number of resamples per grid point.
func WithNBootstraps(n int) Option {
	return func(s *STABL) { s.nBootstraps = n }
}

// WithArtificialType sets the synthetic feature generation mode.
// ArtificialNone disables FDR control; a hard threshold is then required.
func WithArtificialType(t ArtificialType) Option {
	return func(s *STABL) { s.artificialType = t }
}

// WithArtificialProportion sets the ratio of synthetic to real features.
func WithArtificialProportion(p float64) Option {
	return func(s *STABL) { s.artificialProportion = p }
}

// WithSampleFraction sets the fraction of samples drawn in each resample.
// May exceed 1 when drawing with replacement.
func WithSampleFraction(f float64) Option {
	return func(s *STABL) { s.sampleFraction = f }
}

// WithReplace sets whether resamples are drawn with replacement.
func WithReplace(replace bool) Option {
	return func(s *STABL) { s.replace = replace }
}

// WithHardThreshold sets a fixed selection threshold in (0, 1], bypassing FDR
// control entirely.
func WithHardThreshold(t float64) Option {
	return func(s *STABL) { s.hardThreshold = t }
}

// WithFDRThresholdRange sets the candidate threshold grid for FDR control.
func WithFDRThresholdRange(grid []float64) Option {
	return func(s *STABL) { s.fdrThresholdRange = grid }
}

// WithBootstrapThreshold sets the importance threshold policy applied to each
// resample fit.
func WithBootstrapThreshold(t ImportanceThreshold) Option {
	return func(s *STABL) { s.bootstrapThreshold = t }
}

// WithNJobs sets the parallelism degree for resample fits. Values <= 0 use
// one worker per CPU core; 1 runs serially.
func WithNJobs(n int) Option {
	return func(s *STABL) { s.nJobs = n }
}

// WithRandomState sets the random seed. Fits with the same seed and inputs
// produce bit-identical stability scores regardless of worker count.
func WithRandomState(seed int64) Option {
	return func(s *STABL) { s.randomState = seed }
}

// WithFeatureNames sets the feature names recorded at fit time. When unset,
// names "x0", "x1", ... are generated.
func WithFeatureNames(names []string) Option {
	return func(s *STABL) { s.featureNames = names }
}

// WithLogger sets the structured logger used during fitting.
func WithLogger(logger log.Logger) Option {
	return func(s *STABL) { s.logger = logger }
}

// New creates a STABL selector. The defaults mirror the reference procedure:
// an L1-penalized logistic base estimator swept over C in [0.01, 1], 1000
// bootstraps per grid point, half-sample draws without replacement, random
// permutation decoys in 1:1 proportion and an FDR threshold grid of
// [0.3, 1) in steps of 0.01.
func New(opts ...Option) *STABL {
	s := &STABL{
		state:                model.NewStateManager(),
		logger:               log.GetLoggerWithName("stabl"),
		baseEstimator:        linear.NewLogisticLasso(),
		lambdaName:           "C",
		lambdaGrid:           DefaultLambdaGrid(),
		nBootstraps:          1000,
		artificialType:       RandomPermutation,
		artificialProportion: 1.0,
		sampleFraction:       0.5,
		replace:              false,
		hardThreshold:        math.NaN(),
		fdrThresholdRange:    DefaultFDRThresholdRange(),
		bootstrapThreshold:   FixedImportanceThreshold(1e-5),
		nJobs:                -1,
		randomState:          -1,
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// hasHardThreshold reports whether a fixed threshold bypasses FDR control.
func (s *STABL) hasHardThreshold() bool {
	return !math.IsNaN(s.hardThreshold)
}

// validateParams checks the caller contract before any computation starts.
func (s *STABL) validateParams() error {
	if s.baseEstimator == nil {
		return errors.NewValidationError("base_estimator", "must not be nil", nil)
	}
	if s.nBootstraps <= 0 {
		return errors.NewValidationError("n_bootstraps", "must be a positive integer", s.nBootstraps)
	}
	if s.sampleFraction <= 0 {
		return errors.NewValidationError("sample_fraction", "must be a positive float", s.sampleFraction)
	}
	if len(s.lambdaGrid) == 0 {
		return errors.NewValidationError("lambda_grid", "must contain at least one value", s.lambdaGrid)
	}
	if s.hasHardThreshold() && (s.hardThreshold <= 0 || s.hardThreshold > 1) {
		return errors.NewValidationError("threshold", "must be in (0, 1]", s.hardThreshold)
	}
	if !s.hasHardThreshold() && s.artificialType == ArtificialNone {
		return errors.NewValidationError(
			"threshold",
			"a selection threshold is required when artificial features are disabled",
			nil,
		)
	}
	if s.artificialType != ArtificialNone {
		if s.artificialType != RandomPermutation && s.artificialType != Knockoff {
			return errors.NewValidationError(
				"artificial_type",
				`must be "random_permutation" or "knockoff"`,
				string(s.artificialType),
			)
		}
		if s.artificialProportion <= 0 || s.artificialProportion > 1 {
			return errors.NewValidationError(
				"artificial_proportion", "must be in (0, 1]", s.artificialProportion)
		}
		if len(s.fdrThresholdRange) == 0 && !s.hasHardThreshold() {
			return errors.NewValidationError(
				"fdr_threshold_range", "must contain at least one threshold", s.fdrThresholdRange)
		}
	}
	if _, ok := s.baseEstimator.GetParams()[s.lambdaName]; !ok {
		return errors.NewValidationError(
			"lambda_name",
			"base estimator does not have a hyperparameter with that name",
			s.lambdaName,
		)
	}
	return nil
}

// Fit runs the stability path: for every regularization value it draws
// nBootstraps resamples, fits a private clone of the base estimator on each
// and accumulates per-feature selection frequencies. With artificial features
// enabled it then derives the FDR-controlled selection threshold.
//
// y must be a column vector with one value per sample. Calling Fit again
// discards and replaces any previous fitted state.
func (s *STABL) Fit(X, y mat.Matrix) error {
	if err := s.validateParams(); err != nil {
		return err
	}

	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return errors.NewModelError("STABL.Fit", "empty data", errors.ErrEmptyData)
	}
	if yCols != 1 {
		return errors.NewDimensionError("STABL.Fit", 1, yCols, 1)
	}
	if yRows != nSamples {
		return errors.NewDimensionError("STABL.Fit", nSamples, yRows, 0)
	}
	if s.featureNames != nil && len(s.featureNames) != nFeatures {
		return errors.NewDimensionError("STABL.Fit", nFeatures, len(s.featureNames), 1)
	}

	nSubsamples := int(math.Floor(s.sampleFraction * float64(nSamples)))
	if nSubsamples < 1 {
		return errors.NewValidationError(
			"sample_fraction", "subsample size rounds down to zero", s.sampleFraction)
	}
	if nSubsamples > nSamples && !s.replace {
		return errors.NewValidationError(
			"sample_fraction",
			"subsample size cannot exceed the population when replace is false",
			s.sampleFraction,
		)
	}

	s.state.Reset()
	s.stabilityScores = nil
	s.artificialScores = nil
	s.artificialBlock = nil
	s.fdrs = nil
	s.minFDR = 0
	s.fdrMinThreshold = 0

	seed := s.randomState
	if seed < 0 {
		seed = rand.Int63()
	}
	rng := rand.New(rand.NewSource(seed))

	Xd := mat.DenseCopyOf(X)
	yData := make([]float64, nSamples)
	for i := 0; i < nSamples; i++ {
		yData[i] = y.At(i, 0)
	}

	nLambdas := len(s.lambdaGrid)
	nInjected := 0
	Xall := Xd
	if s.artificialType != ArtificialNone {
		nInjected = int(float64(nFeatures) * s.artificialProportion)
		if nInjected < 1 {
			nInjected = 1
		}
		artificial, err := makeArtificialFeatures(Xd, s.artificialType, nInjected, rng)
		if err != nil {
			return err
		}
		s.artificialBlock = artificial
		Xall = concatColumns(Xd, artificial)
	}

	scores := mat.NewDense(nFeatures, nLambdas, nil)
	var artificialScores *mat.Dense
	if nInjected > 0 {
		artificialScores = mat.NewDense(nInjected, nLambdas, nil)
	}

	started := time.Now()
	s.logger.Info("stability path started",
		log.ModelNameKey, "STABL",
		log.OperationKey, "fit",
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		log.ArtificialFeaturesKey, nInjected,
		log.SubsamplesKey, nSubsamples,
		log.LambdaGridSizeKey, nLambdas,
		log.BootstrapsKey, s.nBootstraps,
		log.WorkersKey, s.nJobs,
	)

	_, totalCols := Xall.Dims()
	for li, lambdaValue := range s.lambdaGrid {
		// Resamples are drawn serially from the single seeded source so a
		// fixed seed fixes the whole fit; each grid point gets a fresh batch.
		indexSets := make([][]int, s.nBootstraps)
		for b := range indexSets {
			indices, err := Bootstrap(rng, yData, nSubsamples, s.replace)
			if err != nil {
				return err
			}
			indexSets[b] = indices
		}

		// Results are written into index-addressed slots; the outcome does
		// not depend on worker completion order.
		masks := make([][]bool, s.nBootstraps)
		fitErrs := make([]error, s.nBootstraps)
		parallel.ParallelizeWithWorkers(s.nBootstraps, s.nJobs, func(start, end int) {
			for b := start; b < end; b++ {
				subX, subY := takeRows(Xall, yData, indexSets[b])
				est := s.baseEstimator.Clone()
				masks[b], fitErrs[b] = fitBootstrapSample(
					est, subX, subY, s.lambdaName, lambdaValue, s.bootstrapThreshold)
			}
		})

		// A single resample failure aborts the fit: every resample must
		// contribute or the selection frequencies are biased.
		for _, err := range fitErrs {
			if err != nil {
				return errors.Wrapf(err, "stability path at %s=%g", s.lambdaName, lambdaValue)
			}
		}

		for j := 0; j < totalCols; j++ {
			selected := 0
			for b := 0; b < s.nBootstraps; b++ {
				if masks[b][j] {
					selected++
				}
			}
			frequency := float64(selected) / float64(s.nBootstraps)
			if j < nFeatures {
				scores.Set(j, li, frequency)
			} else {
				artificialScores.Set(j-nFeatures, li, frequency)
			}
		}

		s.logger.Debug("grid point finished",
			log.LambdaKey, lambdaValue,
			log.BootstrapsKey, s.nBootstraps,
		)
	}

	s.stabilityScores = scores
	s.artificialScores = artificialScores
	s.nFeaturesIn = nFeatures
	if s.featureNames != nil {
		s.featureNamesIn = append([]string(nil), s.featureNames...)
	} else {
		s.featureNamesIn = generatedFeatureNames(nFeatures)
	}

	// A hard threshold bypasses FDR control entirely; decoy scores are still
	// kept for diagnostics.
	if s.artificialType != ArtificialNone && !s.hasHardThreshold() {
		fdps, err := ComputeFDP(
			rowMax(scores), rowMax(artificialScores), s.fdrThresholdRange, s.artificialProportion)
		if err != nil {
			return err
		}
		s.fdrs = fdps
		s.fdrMinThreshold, s.minFDR = selectFDRThreshold(s.fdrThresholdRange, fdps)
	}

	s.state.SetDimensions(nFeatures, nSamples)
	s.state.SetFitted()

	s.logger.Info("stability path finished",
		log.ModelNameKey, "STABL",
		log.OperationKey, "fit",
		log.DurationMsKey, time.Since(started).Milliseconds(),
		log.ThresholdKey, s.fdrMinThreshold,
		log.MinFDRKey, s.minFDR,
	)
	return nil
}

// effectiveThreshold resolves the selection cutoff: an override if supplied,
// else the configured hard threshold, else the FDR-controlled threshold.
func (s *STABL) effectiveThreshold(newThreshold []float64) (float64, error) {
	if len(newThreshold) > 0 {
		t := newThreshold[0]
		if math.IsNaN(t) || t <= 0 || t > 1 {
			return 0, errors.NewValidationError("new_threshold", "must be in (0, 1]", t)
		}
		return t, nil
	}
	if s.hasHardThreshold() {
		return s.hardThreshold, nil
	}
	return s.fdrMinThreshold, nil
}

// GetSupport returns the boolean mask of selected real features: true where
// the maximum stability score over the grid strictly exceeds the effective
// threshold. An optional override threshold in (0, 1] bypasses FDR control.
func (s *STABL) GetSupport(newThreshold ...float64) ([]bool, error) {
	if err := s.state.RequireFitted("STABL", "GetSupport"); err != nil {
		return nil, err
	}
	cutoff, err := s.effectiveThreshold(newThreshold)
	if err != nil {
		return nil, err
	}

	maxScores := rowMax(s.stabilityScores)
	mask := make([]bool, len(maxScores))
	for j, v := range maxScores {
		mask[j] = v > cutoff
	}
	return mask, nil
}

// GetSupportIndices returns the indices of selected features in ascending
// order.
func (s *STABL) GetSupportIndices(newThreshold ...float64) ([]int, error) {
	mask, err := s.GetSupport(newThreshold...)
	if err != nil {
		return nil, err
	}
	indices := make([]int, 0, len(mask))
	for j, selected := range mask {
		if selected {
			indices = append(indices, j)
		}
	}
	return indices, nil
}

// GetFeatureNamesOut returns the names of the selected features in input
// order. inputFeatures may be nil to use the names recorded at fit time.
func (s *STABL) GetFeatureNamesOut(inputFeatures []string, newThreshold ...float64) ([]string, error) {
	if err := s.state.RequireFitted("STABL", "GetFeatureNamesOut"); err != nil {
		return nil, err
	}

	names := inputFeatures
	if names == nil {
		names = s.featureNamesIn
	} else if len(names) != s.nFeaturesIn {
		return nil, errors.NewDimensionError("STABL.GetFeatureNamesOut", s.nFeaturesIn, len(names), 1)
	}

	mask, err := s.GetSupport(newThreshold...)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(names))
	for j, selected := range mask {
		if selected {
			out = append(out, names[j])
		}
	}
	return out, nil
}

// Transform reduces X to the selected features, preserving column order.
// Selecting zero features is a valid outcome: a NoFeaturesWarning is emitted
// through the warning handler and an empty matrix is returned.
func (s *STABL) Transform(X mat.Matrix, newThreshold ...float64) (mat.Matrix, error) {
	if err := s.state.RequireFitted("STABL", "Transform"); err != nil {
		return nil, err
	}

	nSamples, nCols := X.Dims()
	if nCols != s.nFeaturesIn {
		return nil, errors.NewDimensionError("STABL.Transform", s.nFeaturesIn, nCols, 1)
	}

	mask, err := s.GetSupport(newThreshold...)
	if err != nil {
		return nil, err
	}

	nSelected := 0
	for _, selected := range mask {
		if selected {
			nSelected++
		}
	}

	if nSelected == 0 {
		cutoff, _ := s.effectiveThreshold(newThreshold)
		errors.Warn(errors.NewNoFeaturesWarning("STABL", cutoff))
		return &mat.Dense{}, nil
	}

	out := mat.NewDense(nSamples, nSelected, nil)
	col := 0
	for j, selected := range mask {
		if !selected {
			continue
		}
		for i := 0; i < nSamples; i++ {
			out.Set(i, col, X.At(i, j))
		}
		col++
	}
	return out, nil
}

// NFeaturesIn returns the number of real features seen during fit.
func (s *STABL) NFeaturesIn() int {
	return s.nFeaturesIn
}

// LambdaGrid returns the configured regularization grid.
func (s *STABL) LambdaGrid() []float64 {
	return s.lambdaGrid
}

// LambdaName returns the base estimator's regularization hyperparameter name.
func (s *STABL) LambdaName() string {
	return s.lambdaName
}

// ArtificialTypeUsed returns the configured synthetic feature mode.
func (s *STABL) ArtificialTypeUsed() ArtificialType {
	return s.artificialType
}

// FDRThresholdRange returns the configured candidate threshold grid.
func (s *STABL) FDRThresholdRange() []float64 {
	return s.fdrThresholdRange
}

// FeatureNamesIn returns the feature names recorded at fit time.
func (s *STABL) FeatureNamesIn() ([]string, error) {
	if err := s.state.RequireFitted("STABL", "FeatureNamesIn"); err != nil {
		return nil, err
	}
	return s.featureNamesIn, nil
}

// StabilityScores returns the features x grid-points matrix of selection
// frequencies.
func (s *STABL) StabilityScores() (*mat.Dense, error) {
	if err := s.state.RequireFitted("STABL", "StabilityScores"); err != nil {
		return nil, err
	}
	return s.stabilityScores, nil
}

// MaxStabilityScores returns each real feature's maximum selection frequency
// across the grid.
func (s *STABL) MaxStabilityScores() ([]float64, error) {
	if err := s.state.RequireFitted("STABL", "MaxStabilityScores"); err != nil {
		return nil, err
	}
	return rowMax(s.stabilityScores), nil
}

// ArtificialStabilityScores returns the synthetic columns' score matrix.
// It errors when artificial features were disabled.
func (s *STABL) ArtificialStabilityScores() (*mat.Dense, error) {
	if err := s.state.RequireFitted("STABL", "ArtificialStabilityScores"); err != nil {
		return nil, err
	}
	if s.artificialScores == nil {
		return nil, errors.NewValueError(
			"STABL.ArtificialStabilityScores", "artificial features were not used in this fit")
	}
	return s.artificialScores, nil
}

// ArtificialFeatures returns the realized synthetic feature block generated
// during fit, kept for diagnostics and export.
func (s *STABL) ArtificialFeatures() (*mat.Dense, error) {
	if err := s.state.RequireFitted("STABL", "ArtificialFeatures"); err != nil {
		return nil, err
	}
	if s.artificialBlock == nil {
		return nil, errors.NewValueError(
			"STABL.ArtificialFeatures", "artificial features were not used in this fit")
	}
	return s.artificialBlock, nil
}

// FDRs returns the estimated false discovery proportion at each candidate
// threshold.
func (s *STABL) FDRs() ([]float64, error) {
	if err := s.state.RequireFitted("STABL", "FDRs"); err != nil {
		return nil, err
	}
	if s.fdrs == nil {
		return nil, errors.NewValueError("STABL.FDRs", "FDR control was not run in this fit")
	}
	return s.fdrs, nil
}

// MinFDR returns the smallest estimated false discovery proportion achieved.
func (s *STABL) MinFDR() (float64, error) {
	if err := s.state.RequireFitted("STABL", "MinFDR"); err != nil {
		return 0, err
	}
	if s.fdrs == nil {
		return 0, errors.NewValueError("STABL.MinFDR", "FDR control was not run in this fit")
	}
	return s.minFDR, nil
}

// FDRMinThreshold returns the FDR-controlled selection threshold; 1.0 when no
// candidate threshold achieved an acceptable FDR.
func (s *STABL) FDRMinThreshold() (float64, error) {
	if err := s.state.RequireFitted("STABL", "FDRMinThreshold"); err != nil {
		return 0, err
	}
	if s.fdrs == nil {
		return 0, errors.NewValueError("STABL.FDRMinThreshold", "FDR control was not run in this fit")
	}
	return s.fdrMinThreshold, nil
}

// rowMax returns the maximum of each row of m.
func rowMax(m *mat.Dense) []float64 {
	rows, cols := m.Dims()
	out := make([]float64, rows)
	for i := 0; i < rows; i++ {
		maxVal := math.Inf(-1)
		for j := 0; j < cols; j++ {
			if v := m.At(i, j); v > maxVal {
				maxVal = v
			}
		}
		out[i] = maxVal
	}
	return out
}

// generatedFeatureNames returns "x0", "x1", ... for n features.
func generatedFeatureNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = "x" + strconv.Itoa(i)
	}
	return names
}
