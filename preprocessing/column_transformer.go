package preprocessing

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/mat"

	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/core/model"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/dataset"
	bikeErrors "github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/errors"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/log"
)

// ColumnTransformer describes how a feature frame becomes a design matrix:
// OneHot columns are one-hot encoded, Drop columns are discarded and every
// remaining column is standardized. The output holds the one-hot blocks
// first, then the scaled remainder in frame order.
//
// An unfitted ColumnTransformer is a plain specification that can be
// persisted and replayed. Fit learns the categories and scaling statistics;
// Transform applies them without refitting.
type ColumnTransformer struct {
	State *model.StateManager

	OneHot []string
	Drop   []string

	// Learned during Fit
	Remainder []string
	Encoder   *OneHotEncoder
	Scaler    *StandardScaler
}

// NewColumnTransformer creates an unfitted specification.
func NewColumnTransformer(oneHot, drop []string) *ColumnTransformer {
	return &ColumnTransformer{
		State:  model.NewStateManager(),
		OneHot: append([]string(nil), oneHot...),
		Drop:   append([]string(nil), drop...),
	}
}

// NewBikePreprocessor returns the preprocessing specification of the bike
// rental models: one-hot encode hour, season and the date parts, drop the dew
// point (redundant with temperature) and standardize the rest.
func NewBikePreprocessor() *ColumnTransformer {
	return NewColumnTransformer(
		[]string{dataset.Hour, dataset.Seasons, dataset.Year, dataset.Month, dataset.Day},
		[]string{dataset.DewPoint},
	)
}

// Clone returns an unfitted copy of the specification.
func (ct *ColumnTransformer) Clone() *ColumnTransformer {
	return NewColumnTransformer(ct.OneHot, ct.Drop)
}

// IsFitted reports whether Fit has completed.
func (ct *ColumnTransformer) IsFitted() bool {
	return ct.State != nil && ct.State.IsFitted()
}

// Fit learns one-hot categories and scaling statistics from df.
//
// Errors:
//   - ValueError: if a one-hot or drop column is missing or a remainder column is not numeric
func (ct *ColumnTransformer) Fit(df dataframe.DataFrame) (err error) {
	defer bikeErrors.Recover(&err, "ColumnTransformer.Fit")
	if df.Err != nil {
		return bikeErrors.NewTypeError("ColumnTransformer.Fit", "dataframe", df.Err.Error())
	}
	if df.Nrow() == 0 {
		return bikeErrors.NewModelError("ColumnTransformer.Fit", "empty data", bikeErrors.ErrEmptyData)
	}

	for _, name := range ct.OneHot {
		if !dataset.HasColumn(df, name) {
			return bikeErrors.NewValueErrorf("ColumnTransformer.Fit", "one-hot column '%s' not found", name)
		}
	}
	for _, name := range ct.Drop {
		if !dataset.HasColumn(df, name) {
			return bikeErrors.NewValueErrorf("ColumnTransformer.Fit", "drop column '%s' not found", name)
		}
	}

	skip := make(map[string]bool, len(ct.OneHot)+len(ct.Drop))
	for _, name := range ct.OneHot {
		skip[name] = true
	}
	for _, name := range ct.Drop {
		skip[name] = true
	}

	var remainder []string
	for _, name := range df.Names() {
		if skip[name] {
			continue
		}
		if !dataset.IsNumeric(df.Col(name)) {
			return bikeErrors.NewValueErrorf("ColumnTransformer.Fit", "column '%s' must be numeric to be scaled", name)
		}
		remainder = append(remainder, name)
	}

	var encoder *OneHotEncoder
	if len(ct.OneHot) > 0 {
		encoder = NewOneHotEncoder()
		if err := encoder.Fit(stringRows(df, ct.OneHot)); err != nil {
			return err
		}
	}
	var scaler *StandardScaler
	if len(remainder) > 0 {
		scaler = NewStandardScalerDefault()
		if err := scaler.Fit(floatMatrix(df, remainder)); err != nil {
			return err
		}
	}

	ct.Remainder = remainder
	ct.Encoder = encoder
	ct.Scaler = scaler
	if ct.State == nil {
		ct.State = model.NewStateManager()
	}
	ct.State.SetDimensions(len(ct.GetFeatureNamesOut()), df.Nrow())
	ct.State.SetFitted()

	log.GetLoggerWithName("preprocessing").Debug("ColumnTransformer fitted",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhasePreprocessing,
		log.SamplesKey, df.Nrow(),
		log.FeaturesKey, len(ct.GetFeatureNamesOut()),
	)
	return nil
}

// Transform applies the fitted specification to df.
func (ct *ColumnTransformer) Transform(df dataframe.DataFrame) (_ *mat.Dense, err error) {
	defer bikeErrors.Recover(&err, "ColumnTransformer.Transform")
	if !ct.IsFitted() {
		return nil, bikeErrors.NewNotFittedError("ColumnTransformer", "Transform")
	}
	if df.Err != nil {
		return nil, bikeErrors.NewTypeError("ColumnTransformer.Transform", "dataframe", df.Err.Error())
	}
	for _, name := range append(append([]string(nil), ct.OneHot...), ct.Remainder...) {
		if !dataset.HasColumn(df, name) {
			return nil, bikeErrors.NewValueErrorf("ColumnTransformer.Transform", "column '%s' seen during fit is missing", name)
		}
	}

	n := df.Nrow()
	if n == 0 {
		return &mat.Dense{}, nil
	}

	var blocks []*mat.Dense
	if ct.Encoder != nil {
		encoded, err := ct.Encoder.Transform(stringRows(df, ct.OneHot))
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, encoded)
	}
	if ct.Scaler != nil {
		scaled, err := ct.Scaler.Transform(floatMatrix(df, ct.Remainder))
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, scaled)
	}

	width := 0
	for _, b := range blocks {
		_, c := b.Dims()
		width += c
	}
	if width == 0 {
		return &mat.Dense{}, nil
	}

	out := mat.NewDense(n, width, nil)
	offset := 0
	for _, b := range blocks {
		_, c := b.Dims()
		out.Slice(0, n, offset, offset+c).(*mat.Dense).Copy(b)
		offset += c
	}
	return out, nil
}

// FitTransform fits on df and returns its transformation.
func (ct *ColumnTransformer) FitTransform(df dataframe.DataFrame) (*mat.Dense, error) {
	if err := ct.Fit(df); err != nil {
		return nil, err
	}
	return ct.Transform(df)
}

// GetFeatureNamesOut returns the output column names, e.g. "onehot__Hour_0"
// and "scaler__Temperature".
func (ct *ColumnTransformer) GetFeatureNamesOut() []string {
	if ct.Encoder == nil && ct.Scaler == nil {
		return nil
	}
	var names []string
	if ct.Encoder != nil {
		for _, name := range ct.Encoder.GetFeatureNamesOut(ct.OneHot) {
			names = append(names, "onehot__"+name)
		}
	}
	for _, name := range ct.Remainder {
		names = append(names, "scaler__"+name)
	}
	return names
}

// String summarizes the specification.
func (ct *ColumnTransformer) String() string {
	return fmt.Sprintf("ColumnTransformer(onehot=%v, drop=%v, remainder=StandardScaler)", ct.OneHot, ct.Drop)
}

func stringRows(df dataframe.DataFrame, cols []string) [][]string {
	records := make([][]string, len(cols))
	for j, name := range cols {
		records[j] = df.Col(name).Records()
	}
	rows := make([][]string, df.Nrow())
	for i := range rows {
		row := make([]string, len(cols))
		for j := range cols {
			row[j] = records[j][i]
		}
		rows[i] = row
	}
	return rows
}

func floatMatrix(df dataframe.DataFrame, cols []string) *mat.Dense {
	n := df.Nrow()
	out := mat.NewDense(n, len(cols), nil)
	for j, name := range cols {
		values := df.Col(name).Float()
		for i := 0; i < n; i++ {
			out.Set(i, j, values[i])
		}
	}
	return out
}
