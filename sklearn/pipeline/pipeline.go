// Package pipeline binds a column transformer to a regressor so that a fitted
// model carries its own preprocessing, like sklearn.pipeline.make_pipeline.
//
// A Pipeline is trained on a feature frame and a target vector:
//
//	p := pipeline.New(preprocessing.NewBikePreprocessor(), linear.NewRidge())
//	err := p.SetParams(map[string]interface{}{"ridge__alpha": 10.0})
//	err = p.Fit(X, y)
//	r2, err := p.Score(Xtest, ytest)
//
// Pipelines are gob encodable and are persisted with model.SaveModel.
package pipeline

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/mat"

	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/core/model"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/metrics"
	bikeErrors "github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/errors"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/log"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/preprocessing"

	// registers the estimators that can sit behind the Estimator field
	_ "github.com/UBC-MDS/DSCI522-2425-28-five-guys/linear"
	_ "github.com/UBC-MDS/DSCI522-2425-28-five-guys/sklearn/tree"
)

// PreprocessorStep is the step name of the column transformer.
const PreprocessorStep = "columntransformer"

// Pipeline chains a column transformer and a final regressor.
type Pipeline struct {
	ID            string // assigned on every successful Fit
	Preprocessor  *preprocessing.ColumnTransformer
	Estimator     model.Regressor
	EstimatorStep string
	State         *model.StateManager
}

// New creates an unfitted pipeline. The estimator step is named after its
// type in lower case, e.g. "ridge" or "decisiontreeregressor".
func New(preprocessor *preprocessing.ColumnTransformer, estimator model.Regressor) *Pipeline {
	return &Pipeline{
		Preprocessor:  preprocessor,
		Estimator:     estimator,
		EstimatorStep: StepName(estimator),
		State:         model.NewStateManager(),
	}
}

// StepName returns the lower-cased type name of v.
func StepName(v interface{}) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return strings.ToLower(t.Name())
}

// IsFitted reports whether Fit has completed.
func (p *Pipeline) IsFitted() bool {
	return p.State != nil && p.State.IsFitted()
}

// EstimatorID returns the identifier of the fitted pipeline.
func (p *Pipeline) EstimatorID() string {
	return p.ID
}

func (p *Pipeline) validateSteps(op string) error {
	if p.Preprocessor == nil {
		return bikeErrors.NewValidationError("pipeline step", "missing column transformer", op)
	}
	if p.Estimator == nil {
		return bikeErrors.NewValidationError("pipeline step", "missing final estimator", op)
	}
	return nil
}

// Fit fits the column transformer on df, then the estimator on the
// transformed frame.
func (p *Pipeline) Fit(df dataframe.DataFrame, y *mat.VecDense) (err error) {
	defer bikeErrors.Recover(&err, "Pipeline.Fit")
	if err := p.validateSteps("Fit"); err != nil {
		return err
	}
	if y == nil {
		return bikeErrors.NewValueError("Pipeline.Fit", "target vector is required")
	}

	Xt, err := p.Preprocessor.FitTransform(df)
	if err != nil {
		return bikeErrors.Wrapf(err, "failed to fit step '%s'", PreprocessorStep)
	}
	if err := p.Estimator.Fit(Xt, y); err != nil {
		return bikeErrors.Wrapf(err, "failed to fit final step '%s'", p.EstimatorStep)
	}

	if p.State == nil {
		p.State = model.NewStateManager()
	}
	nSamples, nFeatures := Xt.Dims()
	p.State.SetDimensions(nFeatures, nSamples)
	p.State.SetFitted()
	p.ID = model.NewEstimatorID()

	log.GetLoggerWithName("Pipeline").Debug("Pipeline fitted",
		log.OperationKey, log.OperationFit,
		log.ModelNameKey, p.EstimatorStep,
		log.EstimatorIDKey, p.ID,
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
	)
	return nil
}

// Predict transforms df with the fitted column transformer and predicts with
// the final estimator.
func (p *Pipeline) Predict(df dataframe.DataFrame) (_ *mat.VecDense, err error) {
	defer bikeErrors.Recover(&err, "Pipeline.Predict")
	if !p.IsFitted() {
		return nil, bikeErrors.NewNotFittedError("Pipeline", "Predict")
	}
	if err := p.validateSteps("Predict"); err != nil {
		return nil, err
	}

	Xt, err := p.Preprocessor.Transform(df)
	if err != nil {
		return nil, bikeErrors.Wrapf(err, "failed to transform at step '%s'", PreprocessorStep)
	}
	pred, err := p.Estimator.Predict(Xt)
	if err != nil {
		return nil, err
	}
	return metrics.ToVec(pred), nil
}

// Score returns the coefficient of determination of the predictions on df.
func (p *Pipeline) Score(df dataframe.DataFrame, y *mat.VecDense) (float64, error) {
	pred, err := p.Predict(df)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(y, pred)
}

// GetParams returns the estimator parameters prefixed with the step name.
func (p *Pipeline) GetParams() map[string]interface{} {
	params := make(map[string]interface{})
	if p.Estimator == nil {
		return params
	}
	for key, value := range p.Estimator.GetParams() {
		params[fmt.Sprintf("%s__%s", p.EstimatorStep, key)] = value
	}
	return params
}

// SetParams routes "step__param" keys to the named step. Only the final
// estimator is tunable.
func (p *Pipeline) SetParams(params map[string]interface{}) error {
	stepParams := make(map[string]interface{}, len(params))
	for key, value := range params {
		step, name, ok := strings.Cut(key, "__")
		if !ok {
			return bikeErrors.NewValidationError(key, "pipeline parameters must be named step__param", value)
		}
		switch step {
		case p.EstimatorStep:
			stepParams[name] = value
		case PreprocessorStep:
			return bikeErrors.NewValidationError(key, "column transformer has no tunable parameters", value)
		default:
			return bikeErrors.NewValidationError(key, fmt.Sprintf("unknown pipeline step '%s'", step), value)
		}
	}
	if len(stepParams) == 0 {
		return nil
	}
	if p.Estimator == nil {
		return bikeErrors.NewValidationError("pipeline step", "missing final estimator", "SetParams")
	}
	return p.Estimator.SetParams(stepParams)
}

// String describes the steps.
func (p *Pipeline) String() string {
	return fmt.Sprintf("Pipeline(steps=[(%s, %v), (%s, %v)])", PreprocessorStep, p.Preprocessor, p.EstimatorStep, p.Estimator)
}
