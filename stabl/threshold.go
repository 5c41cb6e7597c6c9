package stabl

import (
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/stabl/pkg/errors"
)

// ImportanceThreshold decides which fitted importances count as selected in a
// single resample fit. It is either a fixed numeric cutoff or a statistical
// rule ("mean", "median", optionally scaled as in "1.25*mean") computed from
// the fitted model's own importances.
type ImportanceThreshold struct {
	rule  string  // "" for a fixed cutoff, otherwise "mean" or "median"
	scale float64 // multiplier for statistical rules
	value float64 // fixed cutoff when rule == ""
}

// FixedImportanceThreshold returns a fixed numeric cutoff. Importances
// greater than or equal to the cutoff are kept.
func FixedImportanceThreshold(value float64) ImportanceThreshold {
	return ImportanceThreshold{value: value, scale: 1}
}

// ParseImportanceThreshold parses a statistical rule of the form "mean",
// "median" or "<factor>*<rule>", e.g. "1.25*mean".
func ParseImportanceThreshold(s string) (ImportanceThreshold, error) {
	scale := 1.0
	rule := strings.TrimSpace(s)

	if idx := strings.Index(rule, "*"); idx >= 0 {
		factor, err := strconv.ParseFloat(strings.TrimSpace(rule[:idx]), 64)
		if err != nil {
			return ImportanceThreshold{}, errors.NewValidationError(
				"bootstrap_threshold", "scaling factor is not a number", s)
		}
		scale = factor
		rule = strings.TrimSpace(rule[idx+1:])
	}

	switch rule {
	case "mean", "median":
		return ImportanceThreshold{rule: rule, scale: scale}, nil
	default:
		return ImportanceThreshold{}, errors.NewValidationError(
			"bootstrap_threshold", `rule must be "mean" or "median"`, s)
	}
}

// Cutoff resolves the threshold against a concrete importance vector.
func (t ImportanceThreshold) Cutoff(importances []float64) float64 {
	switch t.rule {
	case "mean":
		return t.scale * stat.Mean(importances, nil)
	case "median":
		sorted := make([]float64, len(importances))
		copy(sorted, importances)
		sort.Float64s(sorted)
		return t.scale * stat.Quantile(0.5, stat.Empirical, sorted, nil)
	default:
		return t.value
	}
}

// Mask returns the boolean selection mask for an importance vector: true
// where the importance is greater than or equal to the resolved cutoff.
func (t ImportanceThreshold) Mask(importances []float64) []bool {
	cutoff := t.Cutoff(importances)
	mask := make([]bool, len(importances))
	for i, v := range importances {
		mask[i] = v >= cutoff
	}
	return mask
}
