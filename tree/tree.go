// Package tree implements the tree-ensemble variants: bagged CART forests
// for regression and classification.
package tree

import (
	"math"
	"sort"
)

// Node is one node of a CART tree. Leaf nodes carry the prediction value:
// the mean target for regression trees, the majority class for
// classification trees. Samples and Impurity record the training rows
// that reached the node and their impurity, which feature importance
// aggregation reads back after fitting.
type Node struct {
	Leaf      bool
	Value     float64
	Feature   int
	Threshold float64
	Samples   int
	Impurity  float64
	Left      *Node
	Right     *Node
}

// predict walks the tree for a single sample.
func (n *Node) predict(sample []float64) float64 {
	node := n
	for !node.Leaf {
		if sample[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}

// impurity scores a candidate partition. Regression uses weighted
// variance, classification uses weighted Gini.
type impurityFunc func(y []float64) float64

func variance(y []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	var mean float64
	for _, v := range y {
		mean += v
	}
	mean /= float64(len(y))

	var sum float64
	for _, v := range y {
		diff := v - mean
		sum += diff * diff
	}
	return sum / float64(len(y))
}

func gini(y []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	counts := make(map[float64]int)
	for _, v := range y {
		counts[v]++
	}
	g := 1.0
	for _, count := range counts {
		p := float64(count) / float64(len(y))
		g -= p * p
	}
	return g
}

func leafValueMean(y []float64) float64 {
	var sum float64
	for _, v := range y {
		sum += v
	}
	return sum / float64(len(y))
}

func leafValueMajority(y []float64) float64 {
	counts := make(map[float64]int)
	for _, v := range y {
		counts[v]++
	}
	best, bestCount := 0.0, -1
	// Deterministic tie-break on the smaller class value.
	keys := make([]float64, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Float64s(keys)
	for _, k := range keys {
		if counts[k] > bestCount {
			best, bestCount = k, counts[k]
		}
	}
	return best
}

func allEqual(y []float64) bool {
	for _, v := range y[1:] {
		if v != y[0] {
			return false
		}
	}
	return true
}

// growTree builds a CART tree over the given samples. X is row-major.
func growTree(X [][]float64, y []float64, depth, maxDepth, minSamplesSplit int, impurity impurityFunc, leafValue func([]float64) float64) *Node {
	node := &Node{Samples: len(y), Impurity: impurity(y)}

	if depth >= maxDepth || len(y) < minSamplesSplit || allEqual(y) {
		node.Leaf = true
		node.Value = leafValue(y)
		return node
	}

	feature, threshold, ok := bestSplit(X, y, impurity)
	if !ok {
		node.Leaf = true
		node.Value = leafValue(y)
		return node
	}

	var leftX, rightX [][]float64
	var leftY, rightY []float64
	for i, row := range X {
		if row[feature] <= threshold {
			leftX = append(leftX, row)
			leftY = append(leftY, y[i])
		} else {
			rightX = append(rightX, row)
			rightY = append(rightY, y[i])
		}
	}
	if len(leftY) == 0 || len(rightY) == 0 {
		node.Leaf = true
		node.Value = leafValue(y)
		return node
	}

	node.Feature = feature
	node.Threshold = threshold
	node.Left = growTree(leftX, leftY, depth+1, maxDepth, minSamplesSplit, impurity, leafValue)
	node.Right = growTree(rightX, rightY, depth+1, maxDepth, minSamplesSplit, impurity, leafValue)
	return node
}

// featureImportances sums the sample-weighted impurity decrease each
// feature's splits achieve across the given trees, normalized so the
// importances sum to one. Forests with no effective splits report all
// zeros.
func featureImportances(trees []*Node, nFeatures int) []float64 {
	imp := make([]float64, nFeatures)
	for _, t := range trees {
		accumulateImportances(t, imp)
	}
	var total float64
	for _, v := range imp {
		total += v
	}
	if total > 0 {
		for i := range imp {
			imp[i] /= total
		}
	}
	return imp
}

func accumulateImportances(n *Node, imp []float64) {
	if n == nil || n.Leaf {
		return
	}
	decrease := float64(n.Samples)*n.Impurity -
		float64(n.Left.Samples)*n.Left.Impurity -
		float64(n.Right.Samples)*n.Right.Impurity
	if decrease > 0 {
		imp[n.Feature] += decrease
	}
	accumulateImportances(n.Left, imp)
	accumulateImportances(n.Right, imp)
}

// bestSplit scans every feature and every midpoint between consecutive
// distinct values, keeping the split with the lowest weighted impurity.
func bestSplit(X [][]float64, y []float64, impurity impurityFunc) (int, float64, bool) {
	n := len(y)
	if n < 2 {
		return 0, 0, false
	}
	nFeatures := len(X[0])

	bestScore := math.Inf(1)
	bestFeature, bestThreshold := -1, 0.0

	for f := 0; f < nFeatures; f++ {
		values := make([]float64, n)
		for i, row := range X {
			values[i] = row[f]
		}
		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)

		for i := 1; i < n; i++ {
			if sorted[i] == sorted[i-1] {
				continue
			}
			threshold := (sorted[i] + sorted[i-1]) / 2

			var leftY, rightY []float64
			for k, v := range values {
				if v <= threshold {
					leftY = append(leftY, y[k])
				} else {
					rightY = append(rightY, y[k])
				}
			}

			score := (float64(len(leftY))*impurity(leftY) + float64(len(rightY))*impurity(rightY)) / float64(n)
			if score < bestScore {
				bestScore = score
				bestFeature = f
				bestThreshold = threshold
			}
		}
	}

	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}
