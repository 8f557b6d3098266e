package validation

import (
	"github.com/algotrendy/strategy-validator/pkg/types"
)

// FeatureCalculator turns raw price bars into an opaque numeric feature
// table, one row per bar.
type FeatureCalculator interface {
	Calculate(bars []types.PriceBar) ([][]float64, error)
}

// LabelGenerator produces one training label per bar, aligned by index.
type LabelGenerator interface {
	Generate(bars []types.PriceBar) []types.Signal
}

// Model is the opaque predictive capability. Fit mutates internal state;
// Predict maps feature rows to signals one-to-one.
type Model interface {
	Fit(features [][]float64, labels []types.Signal) error
	Predict(features [][]float64) ([]types.Signal, error)
}

// ModelFactory constructs a fresh model instance. Each fold trains its own
// instance so folds stay statistically independent without requiring Fit
// to reset hidden state.
type ModelFactory func() Model

func gatherBars(bars []types.PriceBar, idx []int) []types.PriceBar {
	out := make([]types.PriceBar, len(idx))
	for i, j := range idx {
		out[i] = bars[j]
	}
	return out
}

func gatherRows(rows [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for i, j := range idx {
		out[i] = rows[j]
	}
	return out
}

func gatherSignals(labels []types.Signal, idx []int) []types.Signal {
	out := make([]types.Signal, len(idx))
	for i, j := range idx {
		out[i] = labels[j]
	}
	return out
}
