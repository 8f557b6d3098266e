// Package strategy holds the reference capability implementations used by
// the CLI and the test suite: a feature calculator, a forward-return label
// generator and a moving-average crossover model. Production deployments
// plug in their own implementations of the validation interfaces.
package strategy

import (
	"fmt"
	"math"

	"github.com/algotrendy/strategy-validator/pkg/types"
)

// Feature column layout produced by ReturnFeatures. Column 0 carries the
// raw close so price-based models can run on the same table.
const (
	FeatClose = iota
	FeatReturn
	FeatVolatility
	FeatVolumeRatio
	featureCount
)

// ReturnFeatures computes per-bar returns, rolling volatility and a volume
// ratio over a fixed lookback. Rows inside the warm-up window are
// zero-filled rather than dropped so the table stays aligned with the bars.
type ReturnFeatures struct {
	Lookback int
}

// NewReturnFeatures uses the standard 20-bar lookback.
func NewReturnFeatures() *ReturnFeatures {
	return &ReturnFeatures{Lookback: 20}
}

// Calculate returns one feature row per bar.
func (f *ReturnFeatures) Calculate(bars []types.PriceBar) ([][]float64, error) {
	if f.Lookback < 2 {
		return nil, fmt.Errorf("lookback must be at least 2, got %d", f.Lookback)
	}

	n := len(bars)
	closes := types.Closes(bars)
	rows := make([][]float64, n)
	returns := make([]float64, n)

	for i := 0; i < n; i++ {
		rows[i] = make([]float64, featureCount)
		rows[i][FeatClose] = closes[i]
		if i > 0 && closes[i-1] > 0 {
			returns[i] = closes[i]/closes[i-1] - 1
		}
		rows[i][FeatReturn] = returns[i]
	}

	for i := f.Lookback; i < n; i++ {
		window := returns[i-f.Lookback+1 : i+1]
		rows[i][FeatVolatility] = rollingStd(window)

		var volSum float64
		for j := i - f.Lookback + 1; j <= i; j++ {
			volSum += bars[j].Volume
		}
		if avg := volSum / float64(f.Lookback); avg > 0 {
			rows[i][FeatVolumeRatio] = bars[i].Volume / avg
		}
	}

	return rows, nil
}

func rollingStd(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}
