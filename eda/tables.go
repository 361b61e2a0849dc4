// Package eda produces the exploratory tables and figures of the training
// split: missing-value counts, describe-style summary statistics and seven
// charts of the rental counts.
//
// Run is the one-call entry point used by the eda command:
//
//	err := eda.Run(train, "results/figures", "results/tables", eda.DefaultOptions())
package eda

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/dataset"
	bikeErrors "github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/errors"
)

// Column names of the generated tables.
const (
	ColumnName    = "Column"
	MissingValues = "Missing Values"
	StatisticName = "statistic"
)

// Statistics lists the rows of the summary table in order.
var Statistics = []string{"mean", "std", "min", "25%", "50%", "75%", "max"}

// Sample returns n rows of df drawn without replacement with the seeded PCG
// generator. n <= 0 or n >= the row count returns a copy of the whole frame.
func Sample(df dataframe.DataFrame, n int, seed int64) dataframe.DataFrame {
	if n <= 0 || n >= df.Nrow() {
		return df.Copy()
	}
	s := uint64(seed)
	perm := rand.New(rand.NewPCG(s, s)).Perm(df.Nrow())
	return df.Subset(perm[:n])
}

// MissingValueCounts は列ごとの欠損数を (Column, Missing Values) の表で返す
func MissingValueCounts(df dataframe.DataFrame) dataframe.DataFrame {
	names := df.Names()
	counts := make([]int, len(names))
	for i, name := range names {
		col := df.Col(name)
		for j := 0; j < col.Len(); j++ {
			if col.Elem(j).IsNA() {
				counts[i]++
			}
		}
	}
	return dataframe.New(
		series.New(names, series.String, ColumnName),
		series.New(counts, series.Int, MissingValues),
	)
}

// SummaryStatistics returns mean, sample std, min, quartiles and max for
// every numeric column, one row per statistic. Missing values are skipped.
func SummaryStatistics(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	cols := []series.Series{series.New(Statistics, series.String, StatisticName)}
	for _, name := range df.Names() {
		col := df.Col(name)
		if !dataset.IsNumeric(col) {
			continue
		}
		cols = append(cols, series.New(describe(col.Float()), series.Float, name))
	}
	if len(cols) == 1 {
		return dataframe.DataFrame{}, bikeErrors.NewValueError("SummaryStatistics", "no numeric columns to summarize")
	}
	return dataframe.New(cols...), nil
}

func describe(values []float64) []float64 {
	x := finite(values)
	out := make([]float64, len(Statistics))
	if len(x) == 0 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	sort.Float64s(x)
	mean, std := stat.MeanStdDev(x, nil)
	out[0] = mean
	out[1] = std
	out[2] = floats.Min(x)
	out[3] = Quantile(x, 0.25)
	out[4] = Quantile(x, 0.5)
	out[5] = Quantile(x, 0.75)
	out[6] = floats.Max(x)
	return out
}

// Quantile returns the p-quantile of sorted data, interpolating linearly
// between the closest ranks at position p*(n-1).
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
