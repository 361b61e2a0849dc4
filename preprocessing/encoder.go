package preprocessing

import (
	"fmt"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/core/model"
	bikeErrors "github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/errors"
)

// OneHotEncoder はscikit-learn互換のOne-Hotエンコーダー
// カテゴリカルな文字列データを0/1のバイナリベクトルに変換する
type OneHotEncoder struct {
	State *model.StateManager

	// Categories は各特徴量のカテゴリ一覧（ソート済み）
	Categories [][]string

	// CategoryToIdx は各特徴量のカテゴリ→インデックスマップ
	CategoryToIdx []map[string]int

	// NFeatures は入力特徴量数
	NFeatures int

	// NOutputs は出力特徴量数（全カテゴリの合計数）
	NOutputs int
}

// NewOneHotEncoder は新しいOneHotEncoderを作成する
//
// 使用例:
//
//	encoder := preprocessing.NewOneHotEncoder()
//	err := encoder.Fit(data)
//	encoded, err := encoder.Transform(data)
func NewOneHotEncoder() *OneHotEncoder {
	return &OneHotEncoder{State: model.NewStateManager()}
}

// IsFitted reports whether Fit has completed.
func (e *OneHotEncoder) IsFitted() bool {
	return e.State != nil && e.State.IsFitted()
}

// Fit は訓練データからカテゴリ情報を学習する
//
// dataは n_samples × n_features の文字列スライス。
// 全カテゴリが数値として解釈できる列は数値順、それ以外は辞書順に並べる。
func (e *OneHotEncoder) Fit(data [][]string) (err error) {
	defer bikeErrors.Recover(&err, "OneHotEncoder.Fit")
	if len(data) == 0 {
		return bikeErrors.NewModelError("OneHotEncoder.Fit", "empty data", bikeErrors.ErrEmptyData)
	}
	if len(data[0]) == 0 {
		return bikeErrors.NewModelError("OneHotEncoder.Fit", "empty features", bikeErrors.ErrEmptyData)
	}

	nFeatures := len(data[0])
	for _, row := range data {
		if len(row) != nFeatures {
			return bikeErrors.NewDimensionError("OneHotEncoder.Fit", nFeatures, len(row), 1)
		}
	}

	e.NFeatures = nFeatures
	e.Categories = make([][]string, nFeatures)
	e.CategoryToIdx = make([]map[string]int, nFeatures)
	e.NOutputs = 0

	for j := 0; j < nFeatures; j++ {
		categorySet := make(map[string]bool)
		for _, row := range data {
			categorySet[row[j]] = true
		}

		categories := make([]string, 0, len(categorySet))
		for category := range categorySet {
			categories = append(categories, category)
		}
		sortCategories(categories)

		categoryToIdx := make(map[string]int, len(categories))
		for idx, category := range categories {
			categoryToIdx[category] = idx
		}
		e.Categories[j] = categories
		e.CategoryToIdx[j] = categoryToIdx
		e.NOutputs += len(categories)
	}

	if e.State == nil {
		e.State = model.NewStateManager()
	}
	e.State.SetDimensions(nFeatures, len(data))
	e.State.SetFitted()
	return nil
}

// sortCategories sorts numerically when every category parses as a number,
// so that hours order as 0, 1, 2, ... 23 rather than 0, 1, 10, ...
func sortCategories(categories []string) {
	values := make(map[string]float64, len(categories))
	for _, c := range categories {
		v, err := strconv.ParseFloat(c, 64)
		if err != nil {
			sort.Strings(categories)
			return
		}
		values[c] = v
	}
	sort.Slice(categories, func(i, j int) bool {
		return values[categories[i]] < values[categories[j]]
	})
}

// Transform は学習済みのカテゴリ情報を使ってデータをone-hot encodingする
//
// 未知カテゴリはその特徴量のブロックが全て0になる。
func (e *OneHotEncoder) Transform(data [][]string) (_ *mat.Dense, err error) {
	defer bikeErrors.Recover(&err, "OneHotEncoder.Transform")
	if !e.IsFitted() {
		return nil, bikeErrors.NewNotFittedError("OneHotEncoder", "Transform")
	}
	if len(data) == 0 {
		return &mat.Dense{}, nil
	}

	nFeatures := len(data[0])
	if nFeatures != e.NFeatures {
		return nil, bikeErrors.NewDimensionError("OneHotEncoder.Transform", e.NFeatures, nFeatures, 1)
	}

	result := mat.NewDense(len(data), e.NOutputs, nil)
	for i, row := range data {
		outputIdx := 0
		for j := 0; j < nFeatures; j++ {
			if idx, exists := e.CategoryToIdx[j][row[j]]; exists {
				result.Set(i, outputIdx+idx, 1.0)
			}
			outputIdx += len(e.Categories[j])
		}
	}
	return result, nil
}

// FitTransform は訓練データで学習し、同じデータを変換する
func (e *OneHotEncoder) FitTransform(data [][]string) (*mat.Dense, error) {
	if err := e.Fit(data); err != nil {
		return nil, err
	}
	return e.Transform(data)
}

// GetFeatureNamesOut は変換後の特徴量の名前を返す
//
// 入力特徴量名が["Seasons"]の場合、["Seasons_Autumn", "Seasons_Spring", ...]。
// inputFeaturesがnilなら"x0", "x1", ...を使う。
func (e *OneHotEncoder) GetFeatureNamesOut(inputFeatures []string) []string {
	if !e.IsFitted() {
		return nil
	}

	outputFeatures := make([]string, 0, e.NOutputs)
	for i, categories := range e.Categories {
		name := fmt.Sprintf("x%d", i)
		if i < len(inputFeatures) {
			name = inputFeatures[i]
		}
		for _, category := range categories {
			outputFeatures = append(outputFeatures, name+"_"+category)
		}
	}
	return outputFeatures
}
