package export

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/stabl/pkg/errors"
	"github.com/YuminosukeSato/stabl/stabl"
)

// decoyGray is the line color for artificial feature paths.
var decoyGray = color.Gray{Y: 0xb0}

// StabilityPathPlot renders each feature's selection frequency across the
// regularization grid. Real features get colored lines, artificial features
// gray ones, and the effective selection threshold is drawn as a dashed
// horizontal line.
func StabilityPathPlot(s *stabl.STABL) (*plot.Plot, error) {
	scores, err := s.StabilityScores()
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = "Stability path"
	p.X.Label.Text = s.LambdaName()
	p.Y.Label.Text = "selection frequency"
	p.Y.Min = 0
	p.Y.Max = 1.05

	grid := s.LambdaGrid()

	if artificial, err := s.ArtificialStabilityScores(); err == nil {
		rows, _ := artificial.Dims()
		for i := 0; i < rows; i++ {
			line, err := plotter.NewLine(rowXYs(grid, artificial, i))
			if err != nil {
				return nil, errors.Wrap(err, "building artificial path line")
			}
			line.Color = decoyGray
			p.Add(line)
		}
	}

	rows, _ := scores.Dims()
	for i := 0; i < rows; i++ {
		line, err := plotter.NewLine(rowXYs(grid, scores, i))
		if err != nil {
			return nil, errors.Wrap(err, "building stability path line")
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
	}

	if threshold, err := s.FDRMinThreshold(); err == nil {
		cut, err := horizontalLine(grid[0], grid[len(grid)-1], threshold)
		if err != nil {
			return nil, err
		}
		p.Add(cut)
	}

	return p, nil
}

// FDRCurvePlot renders the estimated false discovery proportion against the
// candidate thresholds, with the selected threshold marked.
func FDRCurvePlot(s *stabl.STABL) (*plot.Plot, error) {
	fdps, err := s.FDRs()
	if err != nil {
		return nil, err
	}
	thresholds := s.FDRThresholdRange()

	p := plot.New()
	p.Title.Text = "FDP estimate"
	p.X.Label.Text = "threshold"
	p.Y.Label.Text = "FDP+"

	xys := make(plotter.XYs, len(thresholds))
	for i := range thresholds {
		xys[i].X = thresholds[i]
		xys[i].Y = fdps[i]
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, errors.Wrap(err, "building FDP curve line")
	}
	line.Color = plotutil.Color(0)
	p.Add(line)

	threshold, err := s.FDRMinThreshold()
	if err != nil {
		return nil, err
	}
	minFDR, err := s.MinFDR()
	if err != nil {
		return nil, err
	}
	marker, err := plotter.NewScatter(plotter.XYs{{X: threshold, Y: minFDR}})
	if err != nil {
		return nil, errors.Wrap(err, "building threshold marker")
	}
	p.Add(marker)

	return p, nil
}

// SaveStabilityPathPlot renders the stability path to an image file. The
// format follows the file extension (png, pdf, svg).
func SaveStabilityPathPlot(path string, s *stabl.STABL) error {
	p, err := StabilityPathPlot(s)
	if err != nil {
		return err
	}
	return errors.Wrapf(p.Save(8*vg.Inch, 5*vg.Inch, path), "saving %s", path)
}

// SaveFDRCurvePlot renders the FDP curve to an image file.
func SaveFDRCurvePlot(path string, s *stabl.STABL) error {
	p, err := FDRCurvePlot(s)
	if err != nil {
		return err
	}
	return errors.Wrapf(p.Save(6*vg.Inch, 4*vg.Inch, path), "saving %s", path)
}

// rowXYs extracts one score matrix row as plot points over the grid.
func rowXYs(grid []float64, m interface{ At(i, j int) float64 }, row int) plotter.XYs {
	xys := make(plotter.XYs, len(grid))
	for j := range grid {
		xys[j].X = grid[j]
		xys[j].Y = m.At(row, j)
	}
	return xys
}

// horizontalLine builds a dashed line at height y spanning [x0, x1].
func horizontalLine(x0, x1, y float64) (*plotter.Line, error) {
	line, err := plotter.NewLine(plotter.XYs{{X: x0, Y: y}, {X: x1, Y: y}})
	if err != nil {
		return nil, errors.Wrap(err, "building threshold line")
	}
	line.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	line.Color = color.Black
	return line, nil
}
