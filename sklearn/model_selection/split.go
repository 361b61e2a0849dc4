// Package model_selection partitions rental data and tunes estimators with
// cross-validated randomized search.
//
// Every random choice is driven by an explicit seed:
//
//	train, test, err := model_selection.SplitFrame(df, 0.3, 123)
//
//	search := model_selection.NewRandomizedSearchCV(newPipeline, dists,
//		model_selection.WithNIter(10),
//		model_selection.WithCV(10),
//		model_selection.WithRandomSeed(123),
//	)
//	err = search.Fit(X, y)
package model_selection

import (
	"math"
	"math/rand/v2"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/mat"

	bikeErrors "github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/errors"
)

// newRand returns the PCG generator used for every seeded choice in this package.
func newRand(seed int64) *rand.Rand {
	s := uint64(seed)
	return rand.New(rand.NewPCG(s, s))
}

// TrainTestSplit はn行をシャッフルして学習用とテスト用のインデックスに分割する
//
// テスト側の行数は ceil(testSize * n)。同じseedなら同じ分割になる。
func TrainTestSplit(nSamples int, testSize float64, seed int64) (train, test []int, err error) {
	if nSamples < 2 {
		return nil, nil, bikeErrors.NewValueErrorf("TrainTestSplit", "need at least 2 samples to split, got %d", nSamples)
	}
	if !(testSize > 0 && testSize < 1) {
		return nil, nil, bikeErrors.NewValidationError("test_size", "must be in the open interval (0, 1)", testSize)
	}

	nTest := int(math.Ceil(testSize * float64(nSamples)))
	if nTest >= nSamples {
		return nil, nil, bikeErrors.NewValueErrorf("TrainTestSplit",
			"test_size=%g with %d samples leaves the training set empty", testSize, nSamples)
	}

	perm := newRand(seed).Perm(nSamples)
	test = append([]int(nil), perm[:nTest]...)
	train = append([]int(nil), perm[nTest:]...)
	return train, test, nil
}

// SplitFrame partitions the rows of df into a training and a test frame.
func SplitFrame(df dataframe.DataFrame, testSize float64, seed int64) (train, test dataframe.DataFrame, err error) {
	if df.Err != nil {
		return dataframe.DataFrame{}, dataframe.DataFrame{}, bikeErrors.NewTypeError("SplitFrame", "dataframe", df.Err.Error())
	}
	trainIdx, testIdx, err := TrainTestSplit(df.Nrow(), testSize, seed)
	if err != nil {
		return dataframe.DataFrame{}, dataframe.DataFrame{}, err
	}

	train = df.Subset(trainIdx)
	if train.Err != nil {
		return dataframe.DataFrame{}, dataframe.DataFrame{}, bikeErrors.Wrap(train.Err, "subset training rows")
	}
	test = df.Subset(testIdx)
	if test.Err != nil {
		return dataframe.DataFrame{}, dataframe.DataFrame{}, bikeErrors.Wrap(test.Err, "subset test rows")
	}
	return train, test, nil
}

// subsetVec picks the entries of y at idx.
func subsetVec(y *mat.VecDense, idx []int) *mat.VecDense {
	out := mat.NewVecDense(len(idx), nil)
	for i, j := range idx {
		out.SetVec(i, y.AtVec(j))
	}
	return out
}
