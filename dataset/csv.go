// Package dataset loads and stores the tabular data flowing between stages.
//
// Tables are gota DataFrames. The raw Seoul bike file is ISO-8859-1 encoded
// (its headers carry a degree sign), so it is decoded to UTF-8 on read.
package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/text/encoding/charmap"
	"gonum.org/v1/gonum/mat"

	bikeErrors "github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/errors"
)

// Encoding selects how CSV bytes are decoded.
type Encoding int

const (
	// UTF8 reads the bytes unchanged.
	UTF8 Encoding = iota
	// Latin1 decodes ISO-8859-1 into UTF-8.
	Latin1
)

// NaNValues are the cell values treated as missing.
var NaNValues = []string{"", "NA", "NaN", "<nil>"}

// ReadCSV reads a CSV with a header row into a DataFrame, detecting column
// types.
func ReadCSV(r io.Reader, enc Encoding) (dataframe.DataFrame, error) {
	if enc == Latin1 {
		r = charmap.ISO8859_1.NewDecoder().Reader(r)
	}
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(NaNValues),
	)
	if df.Err != nil {
		return df, bikeErrors.Wrap(df.Err, "read csv")
	}
	return df, nil
}

// LoadCSV reads a UTF-8 CSV written by a previous stage.
func LoadCSV(path string) (dataframe.DataFrame, error) {
	return loadFile(path, UTF8)
}

// LoadRawCSV reads the raw latin-1 dataset file.
func LoadRawCSV(path string) (dataframe.DataFrame, error) {
	return loadFile(path, Latin1)
}

func loadFile(path string, enc Encoding) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, bikeErrors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return ReadCSV(f, enc)
}

// WriteCSV writes df with a header row to path, creating parent directories.
// Floats are written losslessly, see FormatRecords.
func WriteCSV(path string, df dataframe.DataFrame) error {
	if df.Err != nil {
		return bikeErrors.Wrap(df.Err, "write csv")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return bikeErrors.Wrapf(err, "create directory for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return bikeErrors.Wrapf(err, "create %s", path)
	}
	defer f.Close()
	if err := csv.NewWriter(f).WriteAll(FormatRecords(df)); err != nil {
		return bikeErrors.Wrapf(err, "write %s", path)
	}
	return f.Close()
}

// FormatRecords returns df as string records with a header row, like
// df.Records, except that Float cells keep every significant digit.
func FormatRecords(df dataframe.DataFrame) [][]string {
	records := df.Records()
	for j, name := range df.Names() {
		col := df.Col(name)
		if col.Type() != series.Float {
			continue
		}
		for i := 0; i < col.Len(); i++ {
			records[i+1][j] = FormatFloat(col.Elem(i))
		}
	}
	return records
}

// FormatFloat renders e with the shortest representation that parses back
// to the same float64. Whole numbers keep a ".0" so the column is read back
// as Float.
func FormatFloat(e series.Element) string {
	if e.IsNA() {
		return "NaN"
	}
	s := strconv.FormatFloat(e.Float(), 'g', -1, 64)
	if !strings.ContainsAny(s, ".eIN") {
		s += ".0"
	}
	return s
}

// HasColumn reports whether df has a column called name.
func HasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// IsNumeric reports whether a series holds numbers.
func IsNumeric(s series.Series) bool {
	switch s.Type() {
	case series.Int, series.Float, series.Bool:
		return true
	default:
		return false
	}
}

// SplitTarget separates the target column from the features.
//
// Errors:
//   - ValueError: if the target is missing or not numeric, or df has no rows
func SplitTarget(df dataframe.DataFrame, target string) (dataframe.DataFrame, *mat.VecDense, error) {
	if !HasColumn(df, target) {
		return dataframe.DataFrame{}, nil, bikeErrors.NewValueErrorf("SplitTarget", "Column '%s' does not exist in the DataFrame.", target)
	}
	col := df.Col(target)
	if !IsNumeric(col) {
		return dataframe.DataFrame{}, nil, bikeErrors.NewValueErrorf("SplitTarget", "Column '%s' is not numerical.", target)
	}
	if col.Len() == 0 {
		return dataframe.DataFrame{}, nil, bikeErrors.NewValueError("SplitTarget", "no observations")
	}
	y := mat.NewVecDense(col.Len(), col.Float())
	X := df.Drop(target)
	if X.Err != nil {
		return dataframe.DataFrame{}, nil, bikeErrors.Wrap(X.Err, "drop target")
	}
	return X, y, nil
}
