package classifier

import (
	"math"
	"math/rand/v2"
	"sort"

	"smell-bot/src/config"
)

// TreeNode is one node of a flattened CART tree. Leaves carry P(label=1).
type TreeNode struct {
	Leaf      bool    `json:"leaf,omitempty"`
	Prob      float64 `json:"prob,omitempty"`
	Feature   int     `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`
}

// Tree is a binary decision tree stored as a node slice rooted at index 0
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

func (t *Tree) predict(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Leaf {
			return n.Prob
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// RandomForest is a bagged ensemble of gini-split CART trees with
// sqrt(d) candidate features per split. It works on unscaled features.
type RandomForest struct {
	NEstimators     int     `json:"n_estimators"`
	MaxDepth        int     `json:"max_depth"`
	MinSamplesSplit int     `json:"min_samples_split"`
	Seed            uint64  `json:"seed"`
	Trees           []*Tree `json:"trees"`
}

// NewRandomForest creates an untrained forest
func NewRandomForest(cfg config.ForestConfig, seed uint64) *RandomForest {
	return &RandomForest{
		NEstimators:     max(cfg.NEstimators, 1),
		MaxDepth:        cfg.MaxDepth,
		MinSamplesSplit: max(cfg.MinSamplesSplit, 2),
		Seed:            seed,
	}
}

// Name returns the classifier name
func (f *RandomForest) Name() string { return NameForest }

// Params returns the forest hyperparameters
func (f *RandomForest) Params() map[string]any {
	return map[string]any{
		"n_estimators":      f.NEstimators,
		"max_depth":         f.MaxDepth,
		"min_samples_split": f.MinSamplesSplit,
	}
}

// Fit grows NEstimators trees on bootstrap resamples
func (f *RandomForest) Fit(X [][]float64, y []int) error {
	d, err := checkTrainingSet(X, y)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(f.Seed, f.Seed^0x9e3779b97f4a7c15))
	mtry := max(1, int(math.Sqrt(float64(d))))
	n := len(X)

	trees := make([]*Tree, f.NEstimators)
	for t := range trees {
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.IntN(n)
		}
		b := &treeBuilder{
			X: X, y: y, d: d, mtry: mtry, rng: rng,
			maxDepth: f.MaxDepth, minSplit: f.MinSamplesSplit,
			tree: &Tree{},
		}
		b.grow(sample, 0)
		trees[t] = b.tree
	}
	f.Trees = trees
	return nil
}

// PredictProba averages the leaf probabilities of all trees
func (f *RandomForest) PredictProba(x []float64) [2]float64 {
	if len(f.Trees) == 0 {
		return [2]float64{0.5, 0.5}
	}
	var sum float64
	for _, t := range f.Trees {
		sum += t.predict(x)
	}
	p := sum / float64(len(f.Trees))
	return [2]float64{1 - p, p}
}

type treeBuilder struct {
	X        [][]float64
	y        []int
	d        int
	mtry     int
	rng      *rand.Rand
	maxDepth int
	minSplit int
	tree     *Tree
}

func (b *treeBuilder) leaf(idx []int) int {
	pos := 0
	for _, i := range idx {
		pos += b.y[i]
	}
	b.tree.Nodes = append(b.tree.Nodes, TreeNode{Leaf: true, Prob: float64(pos) / float64(len(idx))})
	return len(b.tree.Nodes) - 1
}

func (b *treeBuilder) grow(idx []int, depth int) int {
	pos := 0
	for _, i := range idx {
		pos += b.y[i]
	}
	if pos == 0 || pos == len(idx) || len(idx) < b.minSplit || (b.maxDepth > 0 && depth >= b.maxDepth) {
		return b.leaf(idx)
	}

	feature, threshold, ok := b.bestSplit(idx, pos)
	if !ok {
		return b.leaf(idx)
	}

	var left, right []int
	for _, i := range idx {
		if b.X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	self := len(b.tree.Nodes)
	b.tree.Nodes = append(b.tree.Nodes, TreeNode{Feature: feature, Threshold: threshold})
	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.tree.Nodes[self].Left = l
	b.tree.Nodes[self].Right = r
	return self
}

// bestSplit searches mtry random features for the split with the lowest weighted gini impurity
func (b *treeBuilder) bestSplit(idx []int, pos int) (int, float64, bool) {
	n := float64(len(idx))
	bestScore := gini(float64(pos), n)
	bestFeature, bestThreshold, found := -1, 0.0, false

	sorted := make([]int, len(idx))
	for _, feature := range b.rng.Perm(b.d)[:b.mtry] {
		copy(sorted, idx)
		sort.Slice(sorted, func(a, c int) bool { return b.X[sorted[a]][feature] < b.X[sorted[c]][feature] })

		leftPos := 0.0
		for k := 0; k < len(sorted)-1; k++ {
			leftPos += float64(b.y[sorted[k]])
			cur, next := b.X[sorted[k]][feature], b.X[sorted[k+1]][feature]
			if cur == next {
				continue
			}
			ln := float64(k + 1)
			rn := n - ln
			score := (ln*gini(leftPos, ln) + rn*gini(float64(pos)-leftPos, rn)) / n
			if score < bestScore-1e-12 {
				bestScore = score
				bestFeature = feature
				bestThreshold = (cur + next) / 2
				found = true
			}
		}
	}
	return bestFeature, bestThreshold, found
}

func gini(pos, n float64) float64 {
	if n == 0 {
		return 0
	}
	p := pos / n
	return 1 - p*p - (1-p)*(1-p)
}
