// Package neural implements the small feed-forward network variants:
// an MLP regressor with a linear output unit and an MLP binary classifier
// with a sigmoid output unit. Hidden layers use tanh activations and
// training is plain per-sample SGD with a seeded initialization, so the
// same data and hyperparameters always produce the same network.
package neural

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/core/model"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/pkg/errors"
)

// Layer holds the weights and biases of one fully connected layer.
// W is indexed [output unit][input unit].
type Layer struct {
	W [][]float64
	B []float64
}

// MLPOption configures an MLP estimator.
type MLPOption func(*mlpParams)

type mlpParams struct {
	hiddenLayers []int
	maxIter      int
	learningRate float64
	randomState  int64
}

func defaultMLPParams() mlpParams {
	return mlpParams{
		hiddenLayers: []int{10, 5},
		maxIter:      1000,
		learningRate: 0.001,
		randomState:  42,
	}
}

// WithHiddenLayers sets the hidden layer sizes.
func WithHiddenLayers(sizes []int) MLPOption {
	return func(p *mlpParams) {
		if len(sizes) > 0 {
			p.hiddenLayers = append([]int(nil), sizes...)
		}
	}
}

// WithMaxIter sets the number of training epochs.
func WithMaxIter(n int) MLPOption {
	return func(p *mlpParams) { p.maxIter = n }
}

// WithLearningRate sets the SGD step size.
func WithLearningRate(eta float64) MLPOption {
	return func(p *mlpParams) { p.learningRate = eta }
}

// WithRandomState sets the weight initialization seed.
func WithRandomState(seed int64) MLPOption {
	return func(p *mlpParams) { p.randomState = seed }
}

// MLPRegressor is a feed-forward network with a linear output unit,
// trained on squared error.
type MLPRegressor struct {
	model.BaseEstimator

	Layers       []Layer
	HiddenSizes  []int
	NFeatures    int
	MaxIter      int
	LearningRate float64
	RandomState  int64
}

// MLPClassifier is a feed-forward network with a sigmoid output unit over
// {0,1} labels, trained on log loss.
type MLPClassifier struct {
	model.BaseEstimator

	Layers       []Layer
	HiddenSizes  []int
	NFeatures    int
	MaxIter      int
	LearningRate float64
	RandomState  int64
}

// NewMLPRegressor creates an unfitted MLP regressor.
func NewMLPRegressor(opts ...MLPOption) *MLPRegressor {
	p := defaultMLPParams()
	for _, opt := range opts {
		opt(&p)
	}
	return &MLPRegressor{
		HiddenSizes:  p.hiddenLayers,
		MaxIter:      p.maxIter,
		LearningRate: p.learningRate,
		RandomState:  p.randomState,
	}
}

// NewMLPClassifier creates an unfitted MLP classifier.
func NewMLPClassifier(opts ...MLPOption) *MLPClassifier {
	p := defaultMLPParams()
	for _, opt := range opts {
		opt(&p)
	}
	return &MLPClassifier{
		HiddenSizes:  p.hiddenLayers,
		MaxIter:      p.maxIter,
		LearningRate: p.learningRate,
		RandomState:  p.randomState,
	}
}

func initLayers(nFeatures int, hidden []int, seed int64) []Layer {
	rng := rand.New(rand.NewSource(seed))
	sizes := append(append([]int{nFeatures}, hidden...), 1)

	layers := make([]Layer, len(sizes)-1)
	for l := range layers {
		in, out := sizes[l], sizes[l+1]
		w := make([][]float64, out)
		for o := range w {
			w[o] = make([]float64, in)
			for i := range w[o] {
				w[o][i] = rng.NormFloat64() * 0.1
			}
		}
		layers[l] = Layer{W: w, B: make([]float64, out)}
	}
	return layers
}

// forward runs one sample through the network, returning the activations
// of every layer. activations[0] is the input itself; hidden layers use
// tanh and the output layer stays linear (the classifier applies sigmoid
// on top).
func forward(layers []Layer, x []float64) [][]float64 {
	activations := make([][]float64, len(layers)+1)
	activations[0] = x

	for l, layer := range layers {
		out := make([]float64, len(layer.B))
		for o := range layer.B {
			z := layer.B[o]
			for i, w := range layer.W[o] {
				z += w * activations[l][i]
			}
			if l < len(layers)-1 {
				z = math.Tanh(z)
			}
			out[o] = z
		}
		activations[l+1] = out
	}
	return activations
}

// backward applies one SGD step given the output-unit error delta
// (prediction minus target for both squared error and log loss).
func backward(layers []Layer, activations [][]float64, outputDelta, eta float64) {
	deltas := []float64{outputDelta}

	for l := len(layers) - 1; l >= 0; l-- {
		layer := layers[l]
		prev := activations[l]

		var nextDeltas []float64
		if l > 0 {
			nextDeltas = make([]float64, len(prev))
			for i := range prev {
				var sum float64
				for o, d := range deltas {
					sum += layer.W[o][i] * d
				}
				// Derivative of tanh at the activation value.
				nextDeltas[i] = sum * (1 - prev[i]*prev[i])
			}
		}

		for o, d := range deltas {
			for i := range layer.W[o] {
				layer.W[o][i] -= eta * d * prev[i]
			}
			layer.B[o] -= eta * d
		}
		deltas = nextDeltas
	}
}

func validateMLPInput(op string, X, y mat.Matrix) (int, int, error) {
	r, c := X.Dims()
	ry, cy := y.Dims()
	if r == 0 || c == 0 {
		return 0, 0, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return 0, 0, errors.NewDimensionError(op, r, ry, 0)
	}
	if cy != 1 {
		return 0, 0, errors.NewValueError(op, "y must be a column vector")
	}
	return r, c, nil
}

func sampleAt(X mat.Matrix, i, c int) []float64 {
	row := make([]float64, c)
	for j := 0; j < c; j++ {
		row[j] = X.At(i, j)
	}
	return row
}

// Fit trains the regressor with per-sample SGD on squared error.
func (m *MLPRegressor) Fit(X, y mat.Matrix) error {
	r, c, err := validateMLPInput("MLPRegressor.Fit", X, y)
	if err != nil {
		return err
	}

	m.NFeatures = c
	m.Layers = initLayers(c, m.HiddenSizes, m.RandomState)

	for epoch := 0; epoch < m.MaxIter; epoch++ {
		for i := 0; i < r; i++ {
			x := sampleAt(X, i, c)
			activations := forward(m.Layers, x)
			pred := activations[len(activations)-1][0]
			backward(m.Layers, activations, pred-y.At(i, 0), m.LearningRate)
		}
	}

	m.SetFitted()
	return nil
}

// Predict returns one prediction per input row.
func (m *MLPRegressor) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("MLPRegressor", "Predict")
	}

	r, c := X.Dims()
	if c != m.NFeatures {
		return nil, errors.NewDimensionError("MLPRegressor.Predict", m.NFeatures, c, 1)
	}

	out := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		activations := forward(m.Layers, sampleAt(X, i, c))
		out.SetVec(i, activations[len(activations)-1][0])
	}
	return out, nil
}

func sigmoid(z float64) float64 {
	if z < -35 {
		return 0
	}
	if z > 35 {
		return 1
	}
	return 1 / (1 + math.Exp(-z))
}

// Fit trains the classifier with per-sample SGD on log loss. y must hold
// 0/1 labels.
func (m *MLPClassifier) Fit(X, y mat.Matrix) error {
	r, c, err := validateMLPInput("MLPClassifier.Fit", X, y)
	if err != nil {
		return err
	}
	for i := 0; i < r; i++ {
		if v := y.At(i, 0); v != 0 && v != 1 {
			return errors.NewValueError("MLPClassifier.Fit", "labels must be 0 or 1")
		}
	}

	m.NFeatures = c
	m.Layers = initLayers(c, m.HiddenSizes, m.RandomState)

	for epoch := 0; epoch < m.MaxIter; epoch++ {
		for i := 0; i < r; i++ {
			x := sampleAt(X, i, c)
			activations := forward(m.Layers, x)
			pred := sigmoid(activations[len(activations)-1][0])
			// With a sigmoid output and log loss, the output-unit error
			// reduces to prediction minus target.
			backward(m.Layers, activations, pred-y.At(i, 0), m.LearningRate)
		}
	}

	m.SetFitted()
	return nil
}

// Predict returns the hard 0/1 label per input row.
func (m *MLPClassifier) Predict(X mat.Matrix) (*mat.VecDense, error) {
	proba, err := m.PredictProba(X)
	if err != nil {
		return nil, err
	}
	out := mat.NewVecDense(proba.Len(), nil)
	for i := 0; i < proba.Len(); i++ {
		if proba.AtVec(i) >= 0.5 {
			out.SetVec(i, 1)
		}
	}
	return out, nil
}

// PredictProba returns P(class=1) per input row.
func (m *MLPClassifier) PredictProba(X mat.Matrix) (*mat.VecDense, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("MLPClassifier", "PredictProba")
	}

	r, c := X.Dims()
	if c != m.NFeatures {
		return nil, errors.NewDimensionError("MLPClassifier.PredictProba", m.NFeatures, c, 1)
	}

	out := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		activations := forward(m.Layers, sampleAt(X, i, c))
		out.SetVec(i, sigmoid(activations[len(activations)-1][0]))
	}
	return out, nil
}
