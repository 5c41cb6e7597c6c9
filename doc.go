// Package stabl is the root of a stability-selection feature selection
// library with false discovery rate control via synthetic decoy features.
//
// The core idea: fit a sparse linear model on many bootstrap resamples across
// a grid of regularization strengths and keep the features that are selected
// consistently. Injected decoy features, either reshuffled real columns or
// Gaussian knockoffs, calibrate a data-driven selection threshold so the
// expected proportion of false discoveries stays controlled.
//
// # Quick start
//
//	X := mat.NewDense(nSamples, nFeatures, data)
//	y := mat.NewVecDense(nSamples, labels)
//
//	selector := stabl.New(
//	    stabl.WithNBootstraps(500),
//	    stabl.WithArtificialType(stabl.RandomPermutation),
//	    stabl.WithRandomState(42),
//	)
//	if err := selector.Fit(X, y); err != nil {
//	    log.Fatal(err)
//	}
//
//	names, _ := selector.GetFeatureNamesOut(nil)
//	reduced, _ := selector.Transform(X)
//
// # Packages
//
//   - stabl: the selector, resampling, decoy generation and FDR control
//   - linear: sparse base estimators (Lasso, LogisticLasso)
//   - preprocessing: StandardScaler for the usual scale-then-select pipeline
//   - export: CSV reports and stability path / FDP plots
//   - metrics: evaluation metrics for the base estimators
//   - core/model: shared estimator interfaces and fitted-state management
//   - core/parallel: worker pool used for concurrent resample fits
//   - pkg/errors, pkg/log: structured errors, warnings and logging
//
// Fits with a fixed random seed are bit-identical regardless of the worker
// count.
package stabl
