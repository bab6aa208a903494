// Package aiexperiments is a model training and inference engine for
// tabular datasets: upload CSV data, train one of a closed set of model
// variants against chosen feature and target columns, and serve
// predictions and linear explanations from persisted artifacts.
//
// The engine is organized as a small set of packages:
//
//   - frame parses CSV uploads into string-celled tables.
//   - preprocessing expands categorical columns into indicators and
//     standardizes everything, capturing the fitted encoding state.
//   - linear, tree and neural implement the trainable estimators.
//   - factory maps model type names onto estimators, encodes targets
//     and assembles the per-type metrics bundle.
//   - artifact persists a fitted estimator together with its encoding
//     state as a single self-contained file.
//   - ledger catalogs datasets and models in flat CSV files with
//     atomic whole-file rewrites.
//   - lifecycle ties the above into the train and delete flows.
//   - predict serves predictions, probabilities and explanations.
//
// Training and inference are deterministic for a fixed dataset, model
// configuration and random state.
package aiexperiments
