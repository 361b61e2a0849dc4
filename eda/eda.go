package eda

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/dataset"
	bikeErrors "github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/errors"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/log"
)

// Output file names.
const (
	MissingValuesFile = "missing_values.csv"
	SummaryStatsFile  = "summary_stats.csv"

	RentalHistogramFile     = "rented_bike_count.png"
	HourlyMeanFile          = "hourly_rental_count.png"
	SeasonMeanFile          = "season_rental_count.png"
	SeasonTemperatureFile   = "season_temp_count.png"
	HolidayDistributionFile = "holiday_dist.png"
	SeasonHourlyFile        = "season_hourly.png"
	CorrelationFile         = "corr_chart.png"
)

// Options control the exploratory run.
type Options struct {
	// SampleSize rows are drawn before any table or chart is built.
	// Zero uses every row.
	SampleSize int
	Seed       int64
	Width      vg.Length
	Height     vg.Length
}

// DefaultOptions uses every row and renders 7x4 inch figures.
func DefaultOptions() Options {
	return Options{
		SampleSize: 0,
		Seed:       123,
		Width:      7 * vg.Inch,
		Height:     4 * vg.Inch,
	}
}

type figure struct {
	file  string
	build func(dataframe.DataFrame) (*plot.Plot, error)
}

var figures = []figure{
	{RentalHistogramFile, RentalHistogram},
	{HourlyMeanFile, HourlyMean},
	{SeasonMeanFile, SeasonMean},
	{SeasonTemperatureFile, SeasonTemperature},
	{HolidayDistributionFile, HolidayDistribution},
	{SeasonHourlyFile, SeasonHourly},
	{CorrelationFile, CorrelationHeatMap},
}

// Run はサンプリングした学習データから表を tableDir に、図を plotDir に書き出す
func Run(train dataframe.DataFrame, plotDir, tableDir string, opts Options) error {
	if train.Err != nil {
		return bikeErrors.NewTypeError("eda.Run", "dataframe", train.Err.Error())
	}
	if train.Nrow() == 0 {
		return bikeErrors.NewValueError("eda.Run", "Dataframe must contain observations.")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		def := DefaultOptions()
		opts.Width, opts.Height = def.Width, def.Height
	}

	start := time.Now()
	logger := log.GetLoggerWithName("eda")
	df := Sample(train, opts.SampleSize, opts.Seed)

	if err := dataset.WriteCSV(filepath.Join(tableDir, MissingValuesFile), MissingValueCounts(df)); err != nil {
		return err
	}
	summary, err := SummaryStatistics(df)
	if err != nil {
		return err
	}
	if err := dataset.WriteCSV(filepath.Join(tableDir, SummaryStatsFile), summary); err != nil {
		return err
	}

	if err := os.MkdirAll(plotDir, 0o755); err != nil {
		return bikeErrors.Wrapf(err, "create directory %s", plotDir)
	}
	for _, f := range figures {
		p, err := f.build(df)
		if err != nil {
			return bikeErrors.Wrapf(err, "build %s", f.file)
		}
		path := filepath.Join(plotDir, f.file)
		if err := p.Save(opts.Width, opts.Height, path); err != nil {
			return bikeErrors.Wrapf(err, "save plot %s", path)
		}
		logger.Debug("Figure saved", log.PhaseKey, log.PhaseExploration, log.PathKey, path)
	}

	logger.Info("Exploratory analysis written",
		log.PhaseKey, log.PhaseExploration,
		log.SamplesKey, df.Nrow(),
		log.FeaturesKey, df.Ncol(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}
