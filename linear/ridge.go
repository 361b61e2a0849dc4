// Package linear provides linear regression models built on gonum/mat.
//
// Ridge solves the L2 penalized least squares problem in closed form:
//
//	w = (XcᵀXc + αI)⁻¹ Xcᵀyc,  b = ȳ − x̄·w
//
// where Xc and yc are the column-centered inputs, so that the intercept is
// never penalized.
//
// Example usage:
//
//	ridge := linear.NewRidge(linear.WithAlpha(1.0))
//	if err := ridge.Fit(X, y); err != nil {
//		return err
//	}
//	predictions, err := ridge.Predict(XTest)
package linear

import (
	"encoding/gob"
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/core/model"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/metrics"
	bikeErrors "github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/errors"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/log"
)

func init() {
	gob.Register(&Ridge{})
}

// Ridge is a linear least squares model with L2 regularization.
type Ridge struct {
	State     *model.StateManager // Public for gob encoding
	Alpha     float64             // Regularization strength (>= 0)
	Coef      []float64           // Learned coefficients, one per feature
	Intercept float64             // Learned intercept
	NFeatures int                 // Number of features seen during Fit
	logger    log.Logger
}

// RidgeOption configures a Ridge model.
type RidgeOption func(*Ridge)

// WithAlpha sets the regularization strength.
func WithAlpha(alpha float64) RidgeOption {
	return func(r *Ridge) {
		r.Alpha = alpha
	}
}

// NewRidge creates an unfitted ridge regressor. The default alpha is 1.0.
func NewRidge(opts ...RidgeOption) *Ridge {
	r := &Ridge{
		State: model.NewStateManager(),
		Alpha: 1.0,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = log.GetLoggerWithName("linear").With(log.ModelNameKey, "Ridge")
	return r
}

// Fit learns the coefficients from X (n_samples, n_features) and y (n_samples, 1).
//
// Errors:
//   - ModelError wrapping ErrEmptyData: if X is empty
//   - DimensionError: if y does not match X
//   - ValidationError: if alpha is negative
func (r *Ridge) Fit(X, y mat.Matrix) (err error) {
	defer bikeErrors.Recover(&err, "Ridge.Fit")

	n, p := X.Dims()
	if n == 0 || p == 0 {
		return bikeErrors.NewModelError("Ridge.Fit", "empty data", bikeErrors.ErrEmptyData)
	}
	yRows, yCols := y.Dims()
	if yRows != n {
		return bikeErrors.NewDimensionError("Ridge.Fit", n, yRows, 0)
	}
	if yCols != 1 {
		return bikeErrors.NewDimensionError("Ridge.Fit", 1, yCols, 1)
	}
	if r.Alpha < 0 {
		return bikeErrors.NewValidationError("alpha", "must be non-negative", r.Alpha)
	}

	start := time.Now()
	if r.logger != nil {
		r.logger.Debug("Training started",
			log.OperationKey, log.OperationFit,
			log.PhaseKey, log.PhaseTraining,
			log.SamplesKey, n,
			log.FeaturesKey, p,
			log.RegularizationKey, r.Alpha,
		)
	}

	xMean := make([]float64, p)
	var yMean float64
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			xMean[j] += X.At(i, j)
		}
		yMean += y.At(i, 0)
	}
	for j := range xMean {
		xMean[j] /= float64(n)
	}
	yMean /= float64(n)

	// 中心化
	Xc := mat.NewDense(n, p, nil)
	yc := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			Xc.Set(i, j, X.At(i, j)-xMean[j])
		}
		yc.SetVec(i, y.At(i, 0)-yMean)
	}

	var gram mat.SymDense
	gram.SymOuterK(1, Xc.T())
	for j := 0; j < p; j++ {
		gram.SetSym(j, j, gram.At(j, j)+r.Alpha)
	}

	var xty mat.VecDense
	xty.MulVec(Xc.T(), yc)

	var w mat.VecDense
	var chol mat.Cholesky
	if chol.Factorize(&gram) {
		if err := chol.SolveVecTo(&w, &xty); err != nil {
			return bikeErrors.NewModelError("Ridge.Fit", "cholesky solve", err)
		}
	} else {
		// 正則化なしで特異な場合は最小二乗解にフォールバック
		if err := w.SolveVec(Xc, yc); err != nil {
			return bikeErrors.NewModelError("Ridge.Fit", "singular system", bikeErrors.ErrSingularMatrix)
		}
	}

	coef := make([]float64, p)
	intercept := yMean
	for j := 0; j < p; j++ {
		coef[j] = w.AtVec(j)
		intercept -= xMean[j] * coef[j]
	}
	if err := bikeErrors.CheckNumericalStability("Ridge.Fit", coef); err != nil {
		return err
	}

	r.Coef = coef
	r.Intercept = intercept
	r.NFeatures = p
	if r.State == nil {
		r.State = model.NewStateManager()
	}
	r.State.SetDimensions(p, n)
	r.State.SetFitted()

	if r.logger != nil {
		r.logger.Debug("Training completed",
			log.OperationKey, log.OperationFit,
			log.PhaseKey, log.PhaseTraining,
			log.DurationMsKey, time.Since(start).Milliseconds(),
			log.RegularizationKey, r.Alpha,
		)
	}
	return nil
}

// Predict returns an (n_samples, 1) matrix of predictions.
func (r *Ridge) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
	defer bikeErrors.Recover(&err, "Ridge.Predict")
	if !r.IsFitted() {
		return nil, bikeErrors.NewNotFittedError("Ridge", "Predict")
	}

	n, p := X.Dims()
	if p != r.NFeatures {
		return nil, bikeErrors.NewDimensionError("Ridge.Predict", r.NFeatures, p, 1)
	}

	out := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		v := r.Intercept
		for j := 0; j < p; j++ {
			v += X.At(i, j) * r.Coef[j]
		}
		out.Set(i, 0, v)
	}
	return out, nil
}

// Score returns the R² of the predictions on X against y.
func (r *Ridge) Score(X, y mat.Matrix) (float64, error) {
	pred, err := r.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(metrics.ToVec(y), metrics.ToVec(pred))
}

// IsFitted reports whether Fit has completed.
func (r *Ridge) IsFitted() bool {
	return r.State != nil && r.State.IsFitted()
}

// GetParams returns the hyperparameters.
func (r *Ridge) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"alpha": r.Alpha,
	}
}

// SetParams sets hyperparameters by name. Only "alpha" is recognized.
func (r *Ridge) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "alpha":
			alpha, ok := toFloat(value)
			if !ok {
				return bikeErrors.NewValidationError("alpha", "must be numeric", value)
			}
			r.Alpha = alpha
		default:
			return bikeErrors.NewValidationError(key, "unknown parameter for Ridge", value)
		}
	}
	return nil
}

// String returns a short description of the model.
func (r *Ridge) String() string {
	if !r.IsFitted() {
		return fmt.Sprintf("Ridge(alpha=%g)", r.Alpha)
	}
	return fmt.Sprintf("Ridge(alpha=%g, n_features=%d)", r.Alpha, r.NFeatures)
}

func toFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}
