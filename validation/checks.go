package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/dataset"
)

// InRange checks that every present value lies in [min, max]. Use
// math.Inf(1) for an open upper bound.
func InRange(min, max float64) Check {
	return Check{
		Name:  CheckInRange,
		Error: fmt.Sprintf("values must lie in [%g, %g]", min, max),
		Fn: func(s series.Series) []FailureCase {
			var failures []FailureCase
			for i := 0; i < s.Len(); i++ {
				e := s.Elem(i)
				if e.IsNA() {
					continue
				}
				if v := e.Float(); math.IsNaN(v) || v < min || v > max {
					failures = append(failures, FailureCase{Index: i, Value: e.String()})
				}
			}
			return failures
		},
	}
}

// IsIn checks that every present value is one of allowed.
func IsIn(allowed ...string) Check {
	set := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		set[a] = true
	}
	return Check{
		Name:  CheckIsIn,
		Error: fmt.Sprintf("values must be one of [%s]", strings.Join(allowed, ", ")),
		Fn: func(s series.Series) []FailureCase {
			var failures []FailureCase
			for i := 0; i < s.Len(); i++ {
				e := s.Elem(i)
				if e.IsNA() {
					continue
				}
				if !set[e.String()] {
					failures = append(failures, FailureCase{Index: i, Value: e.String()})
				}
			}
			return failures
		},
	}
}

// MaxNullFraction checks that at most frac of the values are missing.
func MaxNullFraction(frac float64, message string) Check {
	return Check{
		Name:  CheckNullFraction,
		Error: message,
		Fn: func(s series.Series) []FailureCase {
			if s.Len() == 0 {
				return nil
			}
			nulls := 0
			for i := 0; i < s.Len(); i++ {
				if s.Elem(i).IsNA() {
					nulls++
				}
			}
			got := float64(nulls) / float64(s.Len())
			if got <= frac {
				return nil
			}
			return []FailureCase{{Index: -1, Value: fmt.Sprintf("%.4f", got)}}
		},
	}
}

// NoDuplicateRows checks that no row equals an earlier row.
func NoDuplicateRows() TableCheck {
	return TableCheck{
		Name:  CheckNoDuplicates,
		Error: "Duplicate rows found.",
		Fn: func(df dataframe.DataFrame) []FailureCase {
			var failures []FailureCase
			for _, i := range duplicateRows(df) {
				failures = append(failures, FailureCase{Index: i, Value: "duplicate"})
			}
			return failures
		},
	}
}

// NoEmptyRows checks that no row has every field missing.
func NoEmptyRows() TableCheck {
	return TableCheck{
		Name:  CheckNoEmptyRows,
		Error: "Empty rows found.",
		Fn: func(df dataframe.DataFrame) []FailureCase {
			var failures []FailureCase
			for _, i := range emptyRows(df) {
				failures = append(failures, FailureCase{Index: i, Value: "empty"})
			}
			return failures
		},
	}
}

// duplicateRows returns the rows equal to an earlier row. Floats are compared
// at full precision.
func duplicateRows(df dataframe.DataFrame) []int {
	records := dataset.FormatRecords(df)
	if len(records) <= 1 {
		return nil
	}
	seen := make(map[string]bool, len(records)-1)
	var dups []int
	for i, row := range records[1:] {
		key := strings.Join(row, "\x1f")
		if seen[key] {
			dups = append(dups, i)
			continue
		}
		seen[key] = true
	}
	return dups
}

// emptyRows returns the rows whose every field is missing.
func emptyRows(df dataframe.DataFrame) []int {
	if df.Ncol() == 0 {
		return nil
	}
	cols := make([]series.Series, df.Ncol())
	for j, name := range df.Names() {
		cols[j] = df.Col(name)
	}
	var empty []int
	for i := 0; i < df.Nrow(); i++ {
		allNA := true
		for _, col := range cols {
			if !col.Elem(i).IsNA() {
				allNA = false
				break
			}
		}
		if allNA {
			empty = append(empty, i)
		}
	}
	return empty
}

// dropRows removes duplicate and empty rows, keeping the first occurrence.
func dropRows(df dataframe.DataFrame) dataframe.DataFrame {
	drop := make(map[int]bool)
	for _, i := range duplicateRows(df) {
		drop[i] = true
	}
	for _, i := range emptyRows(df) {
		drop[i] = true
	}
	if len(drop) == 0 {
		return df
	}
	keep := make([]int, 0, df.Nrow()-len(drop))
	for i := 0; i < df.Nrow(); i++ {
		if !drop[i] {
			keep = append(keep, i)
		}
	}
	return df.Subset(keep)
}
