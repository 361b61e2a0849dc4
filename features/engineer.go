// Package features turns validated raw rental data into the modelling frame:
// canonical column names, calendar parts derived from the date and 0/1 flags.
package features

import (
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/dataset"
	bikeErrors "github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/errors"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/log"
)

// RenameMap maps raw column names to canonical names. Columns not listed
// keep their name.
var RenameMap = map[string]string{
	dataset.RawTemperature:    dataset.Temperature,
	dataset.RawHumidity:       dataset.Humidity,
	dataset.RawRainfall:       dataset.Rainfall,
	dataset.RawSnowfall:       dataset.Snowfall,
	dataset.RawWindSpeed:      dataset.WindSpeed,
	dataset.RawVisibility:     dataset.Visibility,
	dataset.RawSolarRadiation: dataset.Radiation,
	dataset.RawDewPoint:       dataset.DewPoint,
}

// dateLayouts are tried in order. Slash dates are read month first, then
// day first when the month-first reading is impossible.
var dateLayouts = []string{
	"2006-1-2",
	"2006/1/2",
	"1/2/2006",
	"2/1/2006",
	"2006-1-2 15:04:05",
	time.RFC3339,
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2006.1.2",
}

// ParseDate parses s with the first matching layout.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, bikeErrors.NewValueErrorf("ParseDate", "unable to parse date %q", s)
}

// ISOWeekday returns the weekday with Monday = 0 and Sunday = 6.
func ISOWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// CleanAndEngineer は列名を正規化し、日付からYear/Month/Day/Weekdayを作ってDateを削除する
//
// Holidayは"Holiday"なら1、Functioning Dayは"Yes"なら1、それ以外は0。
// 想定外の値も0になり、件数を警告ログに出す。入力は変更しない。
func CleanAndEngineer(df dataframe.DataFrame) (_ dataframe.DataFrame, err error) {
	defer bikeErrors.Recover(&err, "CleanAndEngineer")
	if df.Err != nil {
		return dataframe.DataFrame{}, bikeErrors.NewTypeError("CleanAndEngineer", "dataframe", df.Err.Error())
	}
	for _, name := range []string{dataset.RawDate, dataset.Seasons, dataset.Holiday, dataset.FunctioningDay} {
		if !dataset.HasColumn(df, name) {
			return dataframe.DataFrame{}, bikeErrors.NewValueErrorf("CleanAndEngineer", "Column '%s' does not exist in the DataFrame.", name)
		}
	}

	out := df.Copy()
	for _, name := range df.Names() {
		if canonical, ok := RenameMap[name]; ok {
			out = out.Rename(canonical, name)
		}
	}

	dates := out.Col(dataset.RawDate)
	n := dates.Len()
	years := make([]int, n)
	months := make([]int, n)
	days := make([]int, n)
	weekdays := make([]int, n)
	for i, raw := range dates.Records() {
		if dates.Elem(i).IsNA() {
			return dataframe.DataFrame{}, bikeErrors.NewValueErrorf("CleanAndEngineer", "missing date at row %d", i)
		}
		t, err := ParseDate(raw)
		if err != nil {
			return dataframe.DataFrame{}, bikeErrors.Wrapf(err, "row %d", i)
		}
		years[i] = t.Year()
		months[i] = int(t.Month())
		days[i] = t.Day()
		weekdays[i] = ISOWeekday(t)
	}

	logger := log.GetLoggerWithName("features")
	holiday := binarize(out.Col(dataset.Holiday), dataset.HolidayYes, dataset.HolidayNo, logger)
	functioning := binarize(out.Col(dataset.FunctioningDay), dataset.FunctioningYes, dataset.FunctioningNo, logger)

	out = out.Mutate(series.New(holiday, series.Int, dataset.Holiday)).
		Mutate(series.New(functioning, series.Int, dataset.FunctioningDay)).
		Mutate(asString(out.Col(dataset.Seasons))).
		Mutate(series.New(years, series.Int, dataset.Year)).
		Mutate(series.New(months, series.Int, dataset.Month)).
		Mutate(series.New(days, series.Int, dataset.Day)).
		Mutate(series.New(weekdays, series.Int, dataset.Weekday)).
		Drop(dataset.RawDate)
	if out.Err != nil {
		return dataframe.DataFrame{}, bikeErrors.Wrap(out.Err, "engineer features")
	}

	logger.Debug("Features engineered",
		log.PhaseKey, log.PhasePreprocessing,
		log.SamplesKey, out.Nrow(),
		log.FeaturesKey, out.Ncol(),
	)
	return out, nil
}

// asString returns s as a String series. Missing elements stay missing.
func asString(s series.Series) series.Series {
	if s.Type() == series.String {
		return s.Copy()
	}
	values := make([]interface{}, s.Len())
	for i := range values {
		if e := s.Elem(i); !e.IsNA() {
			values[i] = e.String()
		}
	}
	return series.New(values, series.String, s.Name)
}

// binarize maps positive to 1 and everything else to 0, warning about values
// that are neither positive nor negative.
func binarize(s series.Series, positive, negative string, logger log.Logger) []int {
	out := make([]int, s.Len())
	unexpected := 0
	for i, v := range s.Records() {
		switch {
		case v == positive:
			out[i] = 1
		case v != negative:
			unexpected++
		}
	}
	if unexpected > 0 {
		logger.Warn("Unexpected flag values mapped to 0",
			log.ColumnKey, s.Name,
			"unexpected.count", unexpected,
			log.SuggestionKey, "expected '"+positive+"' or '"+negative+"'",
		)
	}
	return out
}
