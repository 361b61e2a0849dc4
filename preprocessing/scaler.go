// Package preprocessing turns a feature table into the numeric design
// matrix consumed by the estimators.
//
//   - StandardScaler: removes the mean and scales to unit variance
//   - OneHotEncoder: encodes categorical columns as indicator blocks
//   - ColumnTransformer: routes named DataFrame columns to the encoder, drops
//     some and standardizes the remainder
//
// Example usage:
//
//	pre := preprocessing.NewBikePreprocessor()
//	if err := pre.Fit(trainFrame); err != nil {
//		return err
//	}
//	X, err := pre.Transform(testFrame)
package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/core/model"
	bikeErrors "github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/errors"
)

// StandardScaler はscikit-learn互換の標準化スケーラー
// データを平均0、標準偏差1に変換する
type StandardScaler struct {
	State *model.StateManager

	// Mean は各特徴量の平均値（NaNを除いて計算）
	Mean []float64

	// Scale は各特徴量の母標準偏差。0の場合は1に置き換える
	Scale []float64

	// NFeatures は特徴量の数
	NFeatures int

	// WithMean は平均を引くかどうか
	WithMean bool

	// WithStd は標準偏差で割るかどうか
	WithStd bool
}

// NewStandardScaler creates a new StandardScaler.
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{
		State:    model.NewStateManager(),
		WithMean: withMean,
		WithStd:  withStd,
	}
}

// NewStandardScalerDefault はデフォルト設定でStandardScalerを作成する
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// IsFitted reports whether Fit has completed.
func (s *StandardScaler) IsFitted() bool {
	return s.State != nil && s.State.IsFitted()
}

// Fit computes the feature-wise mean and population standard deviation.
// Missing values (NaN) are ignored.
func (s *StandardScaler) Fit(X mat.Matrix) (err error) {
	defer bikeErrors.Recover(&err, "StandardScaler.Fit")
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return bikeErrors.NewModelError("StandardScaler.Fit", "empty data", bikeErrors.ErrEmptyData)
	}

	s.NFeatures = c
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)

	for j := 0; j < c; j++ {
		var sum float64
		count := 0
		for i := 0; i < r; i++ {
			if v := X.At(i, j); !math.IsNaN(v) {
				sum += v
				count++
			}
		}
		mean := 0.0
		if count > 0 {
			mean = sum / float64(count)
		}

		var sq float64
		for i := 0; i < r; i++ {
			if v := X.At(i, j); !math.IsNaN(v) {
				sq += (v - mean) * (v - mean)
			}
		}
		std := 0.0
		if count > 0 {
			std = math.Sqrt(sq / float64(count))
		}

		if s.WithMean {
			s.Mean[j] = mean
		}
		// 定数列はスケールを1にする
		if !s.WithStd || std < 1e-10 {
			s.Scale[j] = 1.0
		} else {
			s.Scale[j] = std
		}
	}

	if s.State == nil {
		s.State = model.NewStateManager()
	}
	s.State.SetDimensions(c, r)
	s.State.SetFitted()
	return nil
}

// Transform standardizes X with the fitted statistics. Missing values are
// imputed with the training mean, which maps them to zero.
func (s *StandardScaler) Transform(X mat.Matrix) (_ *mat.Dense, err error) {
	defer bikeErrors.Recover(&err, "StandardScaler.Transform")
	if !s.IsFitted() {
		return nil, bikeErrors.NewNotFittedError("StandardScaler", "Transform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, bikeErrors.NewDimensionError("StandardScaler.Transform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			value := X.At(i, j)
			if math.IsNaN(value) {
				continue
			}
			result.Set(i, j, (value-s.Mean[j])/s.Scale[j])
		}
	}
	return result, nil
}

// FitTransform fits the scaler and transforms the training data in one step.
func (s *StandardScaler) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform maps standardized data back to the original scale.
func (s *StandardScaler) InverseTransform(X mat.Matrix) (_ *mat.Dense, err error) {
	defer bikeErrors.Recover(&err, "StandardScaler.InverseTransform")
	if !s.IsFitted() {
		return nil, bikeErrors.NewNotFittedError("StandardScaler", "InverseTransform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, bikeErrors.NewDimensionError("StandardScaler.InverseTransform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, X.At(i, j)*s.Scale[j]+s.Mean[j])
		}
	}
	return result, nil
}

// String はスケーラーの文字列表現を返す
func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.WithMean, s.WithStd)
	}
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)",
		s.WithMean, s.WithStd, s.NFeatures)
}
