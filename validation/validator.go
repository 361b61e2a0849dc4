package validation

import (
	"github.com/go-gota/gota/dataframe"

	bikeErrors "github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/errors"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/log"
)

// Validator applies a Schema to frames.
type Validator struct {
	Schema Schema
	logger log.Logger
}

// NewValidator creates a validator for schema.
func NewValidator(schema Schema) *Validator {
	return &Validator{
		Schema: schema,
		logger: log.GetLoggerWithName("validation"),
	}
}

// Validate checks df against BikeSchema.
func Validate(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	return NewValidator(BikeSchema()).Validate(df)
}

// Validate は構造チェックを全て実行し、違反があれば*SchemaErrorsで返す
//
// 成功時は重複行と全欠損行を除いたフレームを返す。
//
// Errors:
//   - TypeError: df is not a usable frame
//   - ValueError: df has no rows
//   - *SchemaErrors: one or more rules failed
func (v *Validator) Validate(df dataframe.DataFrame) (_ dataframe.DataFrame, err error) {
	defer bikeErrors.Recover(&err, "Validate")

	if df.Err != nil {
		return dataframe.DataFrame{}, bikeErrors.NewTypeError("Validate", "dataframe", df.Err.Error())
	}
	if df.Ncol() == 0 {
		return dataframe.DataFrame{}, bikeErrors.NewTypeError("Validate", "dataframe", "frame without columns")
	}
	if df.Nrow() == 0 {
		return dataframe.DataFrame{}, bikeErrors.NewValueError("Validate", "Dataframe must contain observations.")
	}

	report := v.Schema.Evaluate(df)
	if !report.OK() {
		schemaErr := report.Err()
		v.logger.Error("Schema validation failed", schemaErr,
			log.PhaseKey, log.PhaseValidation,
			log.ErrorCodeKey, log.ErrorSchema,
			log.SamplesKey, df.Nrow(),
		)
		return dataframe.DataFrame{}, schemaErr
	}

	clean := dropRows(df)
	if clean.Err != nil {
		return dataframe.DataFrame{}, bikeErrors.Wrap(clean.Err, "drop duplicate and empty rows")
	}
	v.logger.Info("Schema validation passed",
		log.OperationKey, log.OperationValidate,
		log.PhaseKey, log.PhaseValidation,
		log.SamplesKey, clean.Nrow(),
		log.FeaturesKey, clean.Ncol(),
	)
	return clean, nil
}
