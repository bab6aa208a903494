// Package factory maps abstract model type selections onto concrete
// trainable estimators and computes the type-appropriate metrics bundle.
// The variant set is closed: an unknown model type is an error, never a
// silently substituted default.
package factory

import (
	"strconv"
	"strings"

	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/pkg/errors"
)

// ModelType names one concrete trainable estimator family.
type ModelType string

const (
	LinearRegression        ModelType = "linear_regression"
	LogisticRegression      ModelType = "logistic_regression"
	Perceptron              ModelType = "perceptron"
	RandomForestRegressor   ModelType = "random_forest_regressor"
	RandomForestClassifier  ModelType = "random_forest_classifier"
	NeuralNetworkRegressor  ModelType = "neural_network_regressor"
	NeuralNetworkClassifier ModelType = "neural_network_classifier"
)

// ModelTypes lists every supported variant.
func ModelTypes() []ModelType {
	return []ModelType{
		LinearRegression,
		LogisticRegression,
		Perceptron,
		RandomForestRegressor,
		RandomForestClassifier,
		NeuralNetworkRegressor,
		NeuralNetworkClassifier,
	}
}

// ParseModelType validates a model type string. Unknown values fail
// closed with ErrUnknownModelType.
func ParseModelType(s string) (ModelType, error) {
	t := ModelType(s)
	for _, known := range ModelTypes() {
		if t == known {
			return t, nil
		}
	}
	return "", errors.Wrapf(errors.ErrUnknownModelType, "%q", s)
}

// IsClassifier reports whether the variant predicts class labels.
func (t ModelType) IsClassifier() bool {
	switch t {
	case LogisticRegression, Perceptron, RandomForestClassifier, NeuralNetworkClassifier:
		return true
	}
	return false
}

// BinaryOnly reports whether the variant supports exactly two classes.
// The forest classifier is the only multiclass-capable variant.
func (t ModelType) BinaryOnly() bool {
	switch t {
	case LogisticRegression, Perceptron, NeuralNetworkClassifier:
		return true
	}
	return false
}

// Hyperparameters is the string-keyed scalar mapping supplied by the form
// layer. Values arrive shape-validated but not semantically validated, so
// every accessor falls back to a default on a missing or mistyped value.
type Hyperparameters map[string]interface{}

// Float returns the value under key as a float64, or def.
func (h Hyperparameters) Float(key string, def float64) float64 {
	switch v := h[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}

// Int returns the value under key as an int, or def.
func (h Hyperparameters) Int(key string, def int) int {
	switch v := h[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	case string:
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

// String returns the value under key as a string, or def.
func (h Hyperparameters) String(key, def string) string {
	if v, ok := h[key].(string); ok && v != "" {
		return v
	}
	return def
}

// HiddenLayers parses the "10,5"-style hidden layer size list used by the
// neural network variants. Malformed entries are skipped; an empty result
// falls back to def.
func (h Hyperparameters) HiddenLayers(key string, def []int) []int {
	raw, ok := h[key].(string)
	if !ok {
		return def
	}
	var sizes []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if n, err := strconv.Atoi(part); err == nil && n > 0 {
			sizes = append(sizes, n)
		}
	}
	if len(sizes) == 0 {
		return def
	}
	return sizes
}
