package eda

import (
	"math"
	"sort"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/dataset"
	bikeErrors "github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/errors"
)

// HistogramBins is the number of bins of the rental count histogram.
const HistogramBins = 10

// group holds the target values sharing one key.
type group struct {
	key    string
	values []float64
}

func (g group) mean() float64 {
	return stat.Mean(g.values, nil)
}

func requireColumns(op string, df dataframe.DataFrame, names ...string) error {
	for _, name := range names {
		if !dataset.HasColumn(df, name) {
			return bikeErrors.NewValueErrorf(op, "Column '%s' does not exist in the DataFrame.", name)
		}
	}
	return nil
}

// groupBy collects the non-missing target values per key, ordered by
// keyLess.
func groupBy(df dataframe.DataFrame, key, target string) []group {
	keys := df.Col(key).Records()
	keyCol := df.Col(key)
	y := df.Col(target).Float()

	index := make(map[string]int)
	var groups []group
	for i, k := range keys {
		if keyCol.Elem(i).IsNA() || math.IsNaN(y[i]) {
			continue
		}
		j, ok := index[k]
		if !ok {
			j = len(groups)
			index[k] = j
			groups = append(groups, group{key: k})
		}
		groups[j].values = append(groups[j].values, y[i])
	}
	sort.SliceStable(groups, func(a, b int) bool {
		return keyLess(groups[a].key, groups[b].key)
	})
	return groups
}

var seasonRank = func() map[string]int {
	m := make(map[string]int, len(dataset.SeasonOrder))
	for i, s := range dataset.SeasonOrder {
		m[s] = i
	}
	return m
}()

// keyLess orders numbers numerically, seasons in calendar order and
// anything else lexically.
func keyLess(a, b string) bool {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		return fa < fb
	}
	ra, okA := seasonRank[a]
	rb, okB := seasonRank[b]
	if okA && okB {
		return ra < rb
	}
	return a < b
}

func keyValue(key string) float64 {
	v, _ := strconv.ParseFloat(key, 64)
	return v
}

func meanLine(groups []group) plotter.XYs {
	pts := make(plotter.XYs, len(groups))
	for i, g := range groups {
		pts[i].X = keyValue(g.key)
		pts[i].Y = g.mean()
	}
	return pts
}

// RentalHistogram は貸出数の分布をヒストグラムで描く
func RentalHistogram(df dataframe.DataFrame) (*plot.Plot, error) {
	if err := requireColumns("RentalHistogram", df, dataset.Target); err != nil {
		return nil, err
	}
	values := plotter.Values(finite(df.Col(dataset.Target).Float()))
	if len(values) == 0 {
		return nil, bikeErrors.NewValueError("RentalHistogram", "no rental counts to plot")
	}

	p := plot.New()
	p.Title.Text = "Distribution of Rented Bike Count"
	p.X.Label.Text = "Rented Bike Count"
	p.Y.Label.Text = "Frequency"

	h, err := plotter.NewHist(values, HistogramBins)
	if err != nil {
		return nil, bikeErrors.Wrap(err, "create histogram")
	}
	h.FillColor = plotutil.Color(0)
	p.Add(h)
	return p, nil
}

// HourlyMean plots the average rental count per hour of day.
func HourlyMean(df dataframe.DataFrame) (*plot.Plot, error) {
	if err := requireColumns("HourlyMean", df, dataset.Hour, dataset.Target); err != nil {
		return nil, err
	}
	groups := groupBy(df, dataset.Hour, dataset.Target)
	if len(groups) == 0 {
		return nil, bikeErrors.NewValueError("HourlyMean", "no rental counts to plot")
	}

	p := plot.New()
	p.Title.Text = "Average Rented Bike Count by Hour"
	p.X.Label.Text = "Hour of Day"
	p.Y.Label.Text = "Average Rented Bike Count"

	line, points, err := plotter.NewLinePoints(meanLine(groups))
	if err != nil {
		return nil, bikeErrors.Wrap(err, "create hourly line")
	}
	line.Width = vg.Points(2)
	points.Shape = draw.CircleGlyph{}
	p.Add(line, points, plotter.NewGrid())
	return p, nil
}

// SeasonMean plots the average rental count per season as bars.
func SeasonMean(df dataframe.DataFrame) (*plot.Plot, error) {
	if err := requireColumns("SeasonMean", df, dataset.Seasons, dataset.Target); err != nil {
		return nil, err
	}
	groups := groupBy(df, dataset.Seasons, dataset.Target)
	if len(groups) == 0 {
		return nil, bikeErrors.NewValueError("SeasonMean", "no rental counts to plot")
	}

	p := plot.New()
	p.Title.Text = "Average Rented Bike Count by Season"
	p.X.Label.Text = "Season"
	p.Y.Label.Text = "Average Rented Bike Count"

	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.key
		bar, err := plotter.NewBarChart(plotter.Values{g.mean()}, vg.Points(40))
		if err != nil {
			return nil, bikeErrors.Wrapf(err, "create bar for %s", g.key)
		}
		bar.XMin = float64(i)
		bar.Color = plotutil.Color(i)
		bar.LineStyle.Width = 0
		p.Add(bar)
	}
	p.NominalX(names...)
	return p, nil
}

// SeasonTemperature は季節ごとに色分けした気温と貸出数の散布図を描く
func SeasonTemperature(df dataframe.DataFrame) (*plot.Plot, error) {
	if err := requireColumns("SeasonTemperature", df, dataset.Seasons, dataset.Temperature, dataset.Target); err != nil {
		return nil, err
	}
	seasons := df.Col(dataset.Seasons).Records()
	temps := df.Col(dataset.Temperature).Float()
	counts := df.Col(dataset.Target).Float()

	bySeason := make(map[string]plotter.XYs)
	var keys []string
	for i, s := range seasons {
		if math.IsNaN(temps[i]) || math.IsNaN(counts[i]) {
			continue
		}
		if _, ok := bySeason[s]; !ok {
			keys = append(keys, s)
		}
		bySeason[s] = append(bySeason[s], plotter.XY{X: temps[i], Y: counts[i]})
	}
	if len(keys) == 0 {
		return nil, bikeErrors.NewValueError("SeasonTemperature", "no observations to plot")
	}
	sort.SliceStable(keys, func(a, b int) bool { return keyLess(keys[a], keys[b]) })

	p := plot.New()
	p.Title.Text = "Number of bike rentals at different temperatures for different seasons"
	p.X.Label.Text = "Temperature (°C)"
	p.Y.Label.Text = "Rented Bike Count"

	for i, key := range keys {
		s, err := plotter.NewScatter(bySeason[key])
		if err != nil {
			return nil, bikeErrors.Wrapf(err, "create scatter for %s", key)
		}
		s.Color = plotutil.Color(i)
		s.Shape = draw.CircleGlyph{}
		s.Radius = vg.Points(2)
		p.Add(s)
		p.Legend.Add(key, s)
	}
	p.Legend.Top = true
	p.Legend.Left = true
	return p, nil
}

// holidayLabel names the 0/1 holiday flag, or returns the raw value.
func holidayLabel(key string) string {
	switch key {
	case "1":
		return dataset.HolidayYes
	case "0":
		return dataset.HolidayNo
	default:
		return key
	}
}

// HolidayDistribution draws one box plot of the rental counts per holiday flag.
func HolidayDistribution(df dataframe.DataFrame) (*plot.Plot, error) {
	if err := requireColumns("HolidayDistribution", df, dataset.Holiday, dataset.Target); err != nil {
		return nil, err
	}
	groups := groupBy(df, dataset.Holiday, dataset.Target)
	if len(groups) == 0 {
		return nil, bikeErrors.NewValueError("HolidayDistribution", "no rental counts to plot")
	}

	p := plot.New()
	p.Title.Text = "Summary distribution of bike rentals between holidays and non-holidays"
	p.X.Label.Text = "Holiday"
	p.Y.Label.Text = "Rented Bike Count"

	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = holidayLabel(g.key)
		box, err := plotter.NewBoxPlot(vg.Points(40), float64(i), plotter.Values(g.values))
		if err != nil {
			return nil, bikeErrors.Wrapf(err, "create box plot for %s", names[i])
		}
		box.FillColor = plotutil.Color(i)
		p.Add(box)
	}
	p.NominalX(names...)
	return p, nil
}

// SeasonHourly plots one hourly-mean line per season.
func SeasonHourly(df dataframe.DataFrame) (*plot.Plot, error) {
	if err := requireColumns("SeasonHourly", df, dataset.Seasons, dataset.Hour, dataset.Target); err != nil {
		return nil, err
	}
	seasons := groupBy(df, dataset.Seasons, dataset.Target)
	if len(seasons) == 0 {
		return nil, bikeErrors.NewValueError("SeasonHourly", "no rental counts to plot")
	}

	p := plot.New()
	p.Title.Text = "Average Rented Bike Count by Hour and Season"
	p.X.Label.Text = "Hour"
	p.Y.Label.Text = "Mean of Rented Bike Count"

	seasonCol := df.Col(dataset.Seasons).Records()
	for i, s := range seasons {
		var rows []int
		for j, v := range seasonCol {
			if v == s.key {
				rows = append(rows, j)
			}
		}
		hourly := groupBy(df.Subset(rows), dataset.Hour, dataset.Target)
		line, err := plotter.NewLine(meanLine(hourly))
		if err != nil {
			return nil, bikeErrors.Wrapf(err, "create line for %s", s.key)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(s.key, line)
	}
	p.Legend.Top = true
	p.Legend.Left = true
	return p, nil
}

// corrGrid adapts a correlation matrix to plotter.GridXYZ.
type corrGrid struct {
	values [][]float64
}

func (g corrGrid) Dims() (c, r int)   { return len(g.values), len(g.values) }
func (g corrGrid) Z(c, r int) float64 { return g.values[r][c] }
func (g corrGrid) X(c int) float64    { return float64(c) }
func (g corrGrid) Y(r int) float64    { return float64(r) }

// CorrelationMatrix returns the numeric column names and their pairwise
// Pearson correlations over rows where both values are present. Pairs
// involving a constant column are 0.
func CorrelationMatrix(df dataframe.DataFrame) ([]string, [][]float64) {
	var names []string
	var cols [][]float64
	for _, name := range df.Names() {
		col := df.Col(name)
		if dataset.IsNumeric(col) {
			names = append(names, name)
			cols = append(cols, col.Float())
		}
	}

	m := make([][]float64, len(cols))
	for i := range cols {
		m[i] = make([]float64, len(cols))
		for j := range cols {
			if i == j {
				m[i][j] = 1
				continue
			}
			var x, y []float64
			for k := range cols[i] {
				if !math.IsNaN(cols[i][k]) && !math.IsNaN(cols[j][k]) {
					x = append(x, cols[i][k])
					y = append(y, cols[j][k])
				}
			}
			r := 0.0
			if len(x) > 1 {
				r = stat.Correlation(x, y, nil)
			}
			if math.IsNaN(r) {
				r = 0
			}
			m[i][j] = r
		}
	}
	return names, m
}

// CorrelationHeatMap は数値列どうしの相関をヒートマップで描く
func CorrelationHeatMap(df dataframe.DataFrame) (*plot.Plot, error) {
	names, m := CorrelationMatrix(df)
	if len(names) < 2 {
		return nil, bikeErrors.NewValueError("CorrelationHeatMap", "need at least two numeric columns")
	}

	p := plot.New()
	p.Title.Text = "Correlation of numeric features"

	heat := plotter.NewHeatMap(corrGrid{values: m}, palette.Heat(12, 1))
	heat.Min = -1
	heat.Max = 1
	p.Add(heat)
	p.NominalX(names...)
	p.NominalY(names...)
	p.X.Tick.Label.Rotation = 1.2
	p.X.Tick.Label.XAlign = draw.XRight
	return p, nil
}
