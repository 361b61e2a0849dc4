package model

import "gonum.org/v1/gonum/mat"

// Fitter はデータから学習できるモデル
type Fitter interface {
	Fit(X, y mat.Matrix) error
}

// Predictor は予測ができるモデル
type Predictor interface {
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Regressor is a supervised estimator that can be tuned through string-keyed
// hyperparameters, matching the scikit-learn get_params/set_params surface.
type Regressor interface {
	Fitter
	Predictor
	Score(X, y mat.Matrix) (float64, error)
	GetParams() map[string]interface{}
	SetParams(params map[string]interface{}) error
	IsFitted() bool
}

// Identifiable は学習済みモデルがIDを持つことを表す
type Identifiable interface {
	EstimatorID() string
}
