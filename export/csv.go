// Package export writes fitted stability-selection results to CSV reports and
// diagnostic plots.
package export

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/YuminosukeSato/stabl/pkg/errors"
	"github.com/YuminosukeSato/stabl/stabl"
)

// WriteStabilityScores writes one row per real feature: the feature name, the
// selection frequency at every grid point, the maximum frequency and whether
// the feature clears the effective threshold.
func WriteStabilityScores(w io.Writer, s *stabl.STABL) error {
	scores, err := s.StabilityScores()
	if err != nil {
		return err
	}
	names, err := s.FeatureNamesIn()
	if err != nil {
		return err
	}
	maxScores, err := s.MaxStabilityScores()
	if err != nil {
		return err
	}
	support, err := s.GetSupport()
	if err != nil {
		return err
	}

	grid := s.LambdaGrid()
	header := make([]string, 0, len(grid)+3)
	header = append(header, "feature")
	for _, lambda := range grid {
		header = append(header, s.LambdaName()+"="+formatFloat(lambda))
	}
	header = append(header, "max_score", "selected")

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "writing stability score header")
	}

	rows, cols := scores.Dims()
	record := make([]string, 0, len(header))
	for i := 0; i < rows; i++ {
		record = record[:0]
		record = append(record, names[i])
		for j := 0; j < cols; j++ {
			record = append(record, formatFloat(scores.At(i, j)))
		}
		record = append(record, formatFloat(maxScores[i]), strconv.FormatBool(support[i]))
		if err := cw.Write(record); err != nil {
			return errors.Wrapf(err, "writing stability score row %d", i)
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing stability scores")
}

// WriteArtificialScores writes one row per decoy column: a generated name,
// the selection frequency at every grid point and the maximum frequency.
func WriteArtificialScores(w io.Writer, s *stabl.STABL) error {
	scores, err := s.ArtificialStabilityScores()
	if err != nil {
		return err
	}

	grid := s.LambdaGrid()
	header := make([]string, 0, len(grid)+2)
	header = append(header, "feature")
	for _, lambda := range grid {
		header = append(header, s.LambdaName()+"="+formatFloat(lambda))
	}
	header = append(header, "max_score")

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "writing artificial score header")
	}

	rows, cols := scores.Dims()
	record := make([]string, 0, len(header))
	for i := 0; i < rows; i++ {
		record = record[:0]
		record = append(record, "artificial_"+strconv.Itoa(i))
		maxScore := 0.0
		for j := 0; j < cols; j++ {
			v := scores.At(i, j)
			if v > maxScore {
				maxScore = v
			}
			record = append(record, formatFloat(v))
		}
		record = append(record, formatFloat(maxScore))
		if err := cw.Write(record); err != nil {
			return errors.Wrapf(err, "writing artificial score row %d", i)
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing artificial scores")
}

// WriteFDRCurve writes the estimated false discovery proportion at every
// candidate threshold.
func WriteFDRCurve(w io.Writer, s *stabl.STABL) error {
	fdps, err := s.FDRs()
	if err != nil {
		return err
	}
	thresholds := s.FDRThresholdRange()

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"threshold", "fdp"}); err != nil {
		return errors.Wrap(err, "writing FDR curve header")
	}
	for i, t := range thresholds {
		if err := cw.Write([]string{formatFloat(t), formatFloat(fdps[i])}); err != nil {
			return errors.Wrapf(err, "writing FDR curve row %d", i)
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing FDR curve")
}

// SaveStabilityScores writes the stability score report to a file.
func SaveStabilityScores(path string, s *stabl.STABL) error {
	return saveCSV(path, s, WriteStabilityScores)
}

// SaveArtificialScores writes the artificial score report to a file.
func SaveArtificialScores(path string, s *stabl.STABL) error {
	return saveCSV(path, s, WriteArtificialScores)
}

// SaveFDRCurve writes the FDR curve report to a file.
func SaveFDRCurve(path string, s *stabl.STABL) error {
	return saveCSV(path, s, WriteFDRCurve)
}

func saveCSV(path string, s *stabl.STABL, write func(io.Writer, *stabl.STABL) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	if err := write(f, s); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "closing %s", path)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
