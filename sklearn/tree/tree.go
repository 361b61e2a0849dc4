package tree

import (
	"encoding/gob"
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/core/model"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/metrics"
	bikeErrors "github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/errors"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/log"
)

// Unbounded disables the depth limit when passed as max_depth.
const Unbounded = 0

func init() {
	gob.Register(&DecisionTreeRegressor{})
}

// TreeNode represents a node in the decision tree
type TreeNode struct {
	IsLeaf    bool      // Whether this is a leaf node
	Feature   int       // Feature index for split (internal nodes)
	Threshold float64   // Threshold value for split (internal nodes)
	Left      *TreeNode // Left child (values <= threshold)
	Right     *TreeNode // Right child (values > threshold)
	Value     float64   // Mean target of the samples at this node
	Impurity  float64   // Mean squared error at this node
	NSamples  int       // Number of samples at this node
	Depth     int       // Depth of this node in the tree
}

// DecisionTreeRegressor implements CART regression with the squared error
// criterion. Fields are exported for gob encoding.
type DecisionTreeRegressor struct {
	State *model.StateManager

	// Hyperparameters
	MaxDepth        int   // Maximum depth of tree (0 = unlimited)
	MinSamplesSplit int   // Minimum samples to split a node
	MinSamplesLeaf  int   // Minimum samples in a leaf
	RandomState     int64 // Seed for the order features are visited in (-1 = random)

	// Tree structure
	Root               *TreeNode
	NFeatures          int
	FeatureImportances []float64

	logger log.Logger
}

// DecisionTreeRegressorOption is a functional option
type DecisionTreeRegressorOption func(*DecisionTreeRegressor)

// NewDecisionTreeRegressor creates a new decision tree regressor
func NewDecisionTreeRegressor(opts ...DecisionTreeRegressorOption) *DecisionTreeRegressor {
	dt := &DecisionTreeRegressor{
		State:           model.NewStateManager(),
		MaxDepth:        Unbounded,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		RandomState:     -1,
	}

	for _, opt := range opts {
		opt(dt)
	}

	dt.logger = log.GetLoggerWithName("tree").With(log.ModelNameKey, "DecisionTreeRegressor")
	return dt
}

// WithMaxDepth sets the maximum tree depth
func WithMaxDepth(depth int) DecisionTreeRegressorOption {
	return func(dt *DecisionTreeRegressor) {
		dt.MaxDepth = depth
	}
}

// WithMinSamplesSplit sets minimum samples to split
func WithMinSamplesSplit(n int) DecisionTreeRegressorOption {
	return func(dt *DecisionTreeRegressor) {
		dt.MinSamplesSplit = n
	}
}

// WithMinSamplesLeaf sets minimum samples in leaf
func WithMinSamplesLeaf(n int) DecisionTreeRegressorOption {
	return func(dt *DecisionTreeRegressor) {
		dt.MinSamplesLeaf = n
	}
}

// WithRandomState sets the random seed
func WithRandomState(seed int64) DecisionTreeRegressorOption {
	return func(dt *DecisionTreeRegressor) {
		dt.RandomState = seed
	}
}

// builder holds the column-major copy of the training data during Fit.
type builder struct {
	dt    *DecisionTreeRegressor
	cols  [][]float64
	y     []float64
	rng   *rand.Rand
	order []int
	perm  []int
}

// Fit trains the decision tree
func (dt *DecisionTreeRegressor) Fit(X, y mat.Matrix) (err error) {
	defer bikeErrors.Recover(&err, "DecisionTreeRegressor.Fit")

	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return bikeErrors.NewModelError("DecisionTreeRegressor.Fit", "empty data", bikeErrors.ErrEmptyData)
	}
	yRows, yCols := y.Dims()
	if yRows != nSamples {
		return bikeErrors.NewDimensionError("DecisionTreeRegressor.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return bikeErrors.NewDimensionError("DecisionTreeRegressor.Fit", 1, yCols, 1)
	}
	if dt.MinSamplesSplit < 2 {
		return bikeErrors.NewValidationError("min_samples_split", "must be at least 2", dt.MinSamplesSplit)
	}
	if dt.MinSamplesLeaf < 1 {
		return bikeErrors.NewValidationError("min_samples_leaf", "must be at least 1", dt.MinSamplesLeaf)
	}
	if dt.MaxDepth < 0 {
		return bikeErrors.NewValidationError("max_depth", "must be non-negative", dt.MaxDepth)
	}

	start := time.Now()

	b := &builder{
		dt:    dt,
		cols:  make([][]float64, nFeatures),
		y:     make([]float64, nSamples),
		order: make([]int, nSamples),
		perm:  make([]int, nFeatures),
	}
	for j := 0; j < nFeatures; j++ {
		col := make([]float64, nSamples)
		for i := 0; i < nSamples; i++ {
			col[i] = X.At(i, j)
		}
		b.cols[j] = col
		b.perm[j] = j
	}
	for i := 0; i < nSamples; i++ {
		b.y[i] = y.At(i, 0)
	}
	if dt.RandomState >= 0 {
		seed := uint64(dt.RandomState)
		b.rng = rand.New(rand.NewPCG(seed, seed))
	} else {
		b.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	dt.NFeatures = nFeatures
	dt.FeatureImportances = make([]float64, nFeatures)

	idx := make([]int, nSamples)
	for i := range idx {
		idx[i] = i
	}
	dt.Root = b.build(idx, 0)
	dt.normalizeFeatureImportances()

	if dt.State == nil {
		dt.State = model.NewStateManager()
	}
	dt.State.SetDimensions(nFeatures, nSamples)
	dt.State.SetFitted()

	if dt.logger != nil {
		dt.logger.Debug("Training completed",
			log.OperationKey, log.OperationFit,
			log.PhaseKey, log.PhaseTraining,
			log.SamplesKey, nSamples,
			log.FeaturesKey, nFeatures,
			"tree.depth", dt.GetDepth(),
			"tree.leaves", dt.GetNLeaves(),
			log.DurationMsKey, time.Since(start).Milliseconds(),
		)
	}
	return nil
}

// build recursively grows the subtree over the samples in idx.
func (b *builder) build(idx []int, depth int) *TreeNode {
	n := len(idx)
	var sum, sumSq float64
	minY, maxY := b.y[idx[0]], b.y[idx[0]]
	for _, i := range idx {
		v := b.y[i]
		sum += v
		sumSq += v * v
		if v < minY {
			minY = v
		}
		if v > maxY {
			maxY = v
		}
	}
	mean := sum / float64(n)
	impurity := sumSq/float64(n) - mean*mean
	if impurity < 0 {
		impurity = 0
	}

	node := &TreeNode{
		Value:    mean,
		Impurity: impurity,
		NSamples: n,
		Depth:    depth,
	}

	if b.shouldStop(n, depth) || minY == maxY {
		node.IsLeaf = true
		return node
	}

	feature, threshold, gain := b.findBestSplit(idx, sum)
	if feature == -1 {
		node.IsLeaf = true
		return node
	}

	col := b.cols[feature]
	left := make([]int, 0, n)
	right := make([]int, 0, n)
	for _, i := range idx {
		if col[i] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	node.Feature = feature
	node.Threshold = threshold
	b.dt.FeatureImportances[feature] += gain

	node.Left = b.build(left, depth+1)
	node.Right = b.build(right, depth+1)
	return node
}

// shouldStop checks stopping criteria
func (b *builder) shouldStop(nSamples, depth int) bool {
	dt := b.dt
	if dt.MaxDepth > 0 && depth >= dt.MaxDepth {
		return true
	}
	if nSamples < dt.MinSamplesSplit {
		return true
	}
	return nSamples < 2*dt.MinSamplesLeaf
}

// findBestSplit scans every feature, in an order shuffled per node, for the
// threshold maximizing sumL²/nL + sumR²/nR, which is equivalent to the
// largest decrease in squared error. gain is that decrease times n.
func (b *builder) findBestSplit(idx []int, sum float64) (int, float64, float64) {
	n := len(idx)
	minLeaf := b.dt.MinSamplesLeaf
	parentProxy := sum * sum / float64(n)

	bestFeature := -1
	bestThreshold := 0.0
	bestProxy := parentProxy

	b.rng.Shuffle(len(b.perm), func(i, j int) { b.perm[i], b.perm[j] = b.perm[j], b.perm[i] })

	order := b.order[:n]
	for _, feature := range b.perm {
		col := b.cols[feature]
		copy(order, idx)
		sort.Slice(order, func(i, j int) bool { return col[order[i]] < col[order[j]] })

		if col[order[0]] == col[order[n-1]] {
			continue
		}

		var leftSum float64
		for i := 0; i < n-1; i++ {
			leftSum += b.y[order[i]]
			nLeft := i + 1
			nRight := n - nLeft
			if nRight < minLeaf {
				break
			}
			if nLeft < minLeaf {
				continue
			}
			lo, hi := col[order[i]], col[order[i+1]]
			if lo == hi {
				continue
			}

			rightSum := sum - leftSum
			proxy := leftSum*leftSum/float64(nLeft) + rightSum*rightSum/float64(nRight)
			if proxy > bestProxy {
				bestProxy = proxy
				bestFeature = feature
				bestThreshold = lo + (hi-lo)/2
				if bestThreshold == hi {
					bestThreshold = lo
				}
			}
		}
	}

	return bestFeature, bestThreshold, bestProxy - parentProxy
}

// normalizeFeatureImportances scales the importances to sum to one
func (dt *DecisionTreeRegressor) normalizeFeatureImportances() {
	var total float64
	for _, v := range dt.FeatureImportances {
		total += v
	}
	if total == 0 {
		return
	}
	for i := range dt.FeatureImportances {
		dt.FeatureImportances[i] /= total
	}
}

// Predict returns an (n_samples, 1) matrix of leaf means.
func (dt *DecisionTreeRegressor) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
	defer bikeErrors.Recover(&err, "DecisionTreeRegressor.Predict")
	if !dt.IsFitted() {
		return nil, bikeErrors.NewNotFittedError("DecisionTreeRegressor", "Predict")
	}

	nSamples, nFeatures := X.Dims()
	if nFeatures != dt.NFeatures {
		return nil, bikeErrors.NewDimensionError("DecisionTreeRegressor.Predict", dt.NFeatures, nFeatures, 1)
	}

	out := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		node := dt.Root
		for !node.IsLeaf {
			if X.At(i, node.Feature) <= node.Threshold {
				node = node.Left
			} else {
				node = node.Right
			}
		}
		out.Set(i, 0, node.Value)
	}
	return out, nil
}

// Score returns the R² of the predictions on X against y.
func (dt *DecisionTreeRegressor) Score(X, y mat.Matrix) (float64, error) {
	pred, err := dt.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(metrics.ToVec(y), metrics.ToVec(pred))
}

// IsFitted reports whether Fit has completed.
func (dt *DecisionTreeRegressor) IsFitted() bool {
	return dt.State != nil && dt.State.IsFitted()
}

// GetParams returns the hyperparameters in scikit-learn naming.
func (dt *DecisionTreeRegressor) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"max_depth":         dt.MaxDepth,
		"min_samples_split": dt.MinSamplesSplit,
		"min_samples_leaf":  dt.MinSamplesLeaf,
		"random_state":      dt.RandomState,
	}
}

// SetParams sets hyperparameters by name. A nil max_depth means Unbounded.
func (dt *DecisionTreeRegressor) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		if key == "max_depth" && value == nil {
			dt.MaxDepth = Unbounded
			continue
		}
		v, ok := toInt(value)
		if !ok {
			return bikeErrors.NewValidationError(key, "must be an integer", value)
		}
		switch key {
		case "max_depth":
			dt.MaxDepth = v
		case "min_samples_split":
			dt.MinSamplesSplit = v
		case "min_samples_leaf":
			dt.MinSamplesLeaf = v
		case "random_state":
			dt.RandomState = int64(v)
		default:
			return bikeErrors.NewValidationError(key, "unknown parameter for DecisionTreeRegressor", value)
		}
	}
	return nil
}

// GetDepth returns the depth of the fitted tree
func (dt *DecisionTreeRegressor) GetDepth() int {
	return depthOf(dt.Root)
}

// GetNLeaves returns the number of leaves of the fitted tree
func (dt *DecisionTreeRegressor) GetNLeaves() int {
	return leavesOf(dt.Root)
}

func depthOf(node *TreeNode) int {
	if node == nil || node.IsLeaf {
		return 0
	}
	return 1 + max(depthOf(node.Left), depthOf(node.Right))
}

func leavesOf(node *TreeNode) int {
	if node == nil {
		return 0
	}
	if node.IsLeaf {
		return 1
	}
	return leavesOf(node.Left) + leavesOf(node.Right)
}

// String returns a short description of the model.
func (dt *DecisionTreeRegressor) String() string {
	depth := "None"
	if dt.MaxDepth != Unbounded {
		depth = fmt.Sprint(dt.MaxDepth)
	}
	return fmt.Sprintf("DecisionTreeRegressor(max_depth=%s, min_samples_split=%d, min_samples_leaf=%d)",
		depth, dt.MinSamplesSplit, dt.MinSamplesLeaf)
}

func toInt(v interface{}) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case float64:
		if x != float64(int(x)) {
			return 0, false
		}
		return int(x), true
	default:
		return 0, false
	}
}
