// Package evaluation scores fitted pipelines on held-out data and renders
// actual-vs-predicted plots.
package evaluation

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/dataset"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/metrics"
	bikeErrors "github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/errors"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/log"
)

// ScoreHeader is the header row of the scores file.
var ScoreHeader = []string{"accuracy_ridge", "accuracy_tree"}

// Predictor is satisfied by a fitted *pipeline.Pipeline.
type Predictor interface {
	Predict(df dataframe.DataFrame) (*mat.VecDense, error)
}

// Score は df から target を分離し、予測の決定係数(R²)を返す
func Score(model Predictor, df dataframe.DataFrame, target string) (_ float64, err error) {
	defer bikeErrors.Recover(&err, "evaluation.Score")
	X, y, err := dataset.SplitTarget(df, target)
	if err != nil {
		return 0, err
	}
	pred, err := model.Predict(X)
	if err != nil {
		return 0, bikeErrors.Wrap(err, "predict test set")
	}
	r2, err := metrics.R2Score(y, pred)
	if err != nil {
		return 0, err
	}
	log.GetLoggerWithName("evaluation").Info("Model scored",
		log.OperationKey, log.OperationScore,
		log.PhaseKey, log.PhaseEvaluation,
		log.SamplesKey, y.Len(),
		log.R2ScoreKey, r2,
	)
	return r2, nil
}

// SaveScores writes a one-row CSV with the ridge and tree scores.
func SaveScores(path string, ridge, tree float64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return bikeErrors.Wrapf(err, "create directory for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return bikeErrors.Wrapf(err, "create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	rows := [][]string{
		ScoreHeader,
		{formatScore(ridge), formatScore(tree)},
	}
	if err := w.WriteAll(rows); err != nil {
		return bikeErrors.Wrapf(err, "write %s", path)
	}
	return f.Close()
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// PredictionErrorPlot は実測値と予測値の散布図に y=x の参照線を重ねてPNGで保存する
func PredictionErrorPlot(model Predictor, df dataframe.DataFrame, target, path string) (err error) {
	defer bikeErrors.Recover(&err, "evaluation.PredictionErrorPlot")
	X, y, err := dataset.SplitTarget(df, target)
	if err != nil {
		return err
	}
	pred, err := model.Predict(X)
	if err != nil {
		return bikeErrors.Wrap(err, "predict test set")
	}
	if pred.Len() != y.Len() {
		return bikeErrors.NewDimensionError("PredictionErrorPlot", y.Len(), pred.Len(), 0)
	}

	p := plot.New()
	p.X.Label.Text = "Predicted values"
	p.Y.Label.Text = "Actual values"

	pts := make(plotter.XYs, y.Len())
	for i := range pts {
		pts[i].X = pred.AtVec(i)
		pts[i].Y = y.AtVec(i)
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return bikeErrors.Wrap(err, "create scatter")
	}
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.GlyphStyle.Radius = vg.Points(1.5)
	p.Add(scatter)

	// 参照線は両軸の範囲をまとめてカバーする
	lo := math.Min(floats.Min(y.RawVector().Data), floats.Min(pred.RawVector().Data))
	hi := math.Max(floats.Max(y.RawVector().Data), floats.Max(pred.RawVector().Data))
	line, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
	if err != nil {
		return bikeErrors.Wrap(err, "create identity line")
	}
	line.Width = vg.Points(1)
	line.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(line)
	p.Legend.Add("Perfect predictions", line)
	p.Legend.Top = true
	p.Legend.Left = true

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return bikeErrors.Wrapf(err, "create directory for %s", path)
	}
	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return bikeErrors.Wrapf(err, "save plot %s", path)
	}
	log.GetLoggerWithName("evaluation").Debug("Prediction error plot saved",
		log.PhaseKey, log.PhaseEvaluation,
		log.PathKey, path,
	)
	return nil
}
