package validation

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/algotrendy/strategy-validator/pkg/types"
)

// Shared test doubles for the backtest and walk-forward stages.

func testBars(n int, spacing time.Duration) []types.PriceBar {
	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.PriceBar, n)
	price := 100.0
	for i := range bars {
		// Deterministic gentle oscillation around a drift.
		price *= 1.0003
		if i%7 == 3 {
			price *= 0.999
		}
		bars[i] = types.PriceBar{
			Timestamp: start.Add(time.Duration(i) * spacing),
			Open:      price,
			High:      price * 1.01,
			Low:       price * 0.99,
			Close:     price,
			Volume:    1000,
		}
	}
	return bars
}

type stubFeatures struct{}

func (stubFeatures) Calculate(bars []types.PriceBar) ([][]float64, error) {
	rows := make([][]float64, len(bars))
	for i, b := range bars {
		rows[i] = []float64{b.Close}
	}
	return rows, nil
}

type stubLabels struct {
	signal types.Signal
}

func (l stubLabels) Generate(bars []types.PriceBar) []types.Signal {
	labels := make([]types.Signal, len(bars))
	for i := range labels {
		labels[i] = l.signal
	}
	return labels
}

// stubModel predicts a constant signal, optionally failing or returning a
// truncated prediction slice.
type stubModel struct {
	signal   types.Signal
	fitErr   error
	truncate bool
}

func (m *stubModel) Fit(features [][]float64, labels []types.Signal) error {
	return m.fitErr
}

func (m *stubModel) Predict(features [][]float64) ([]types.Signal, error) {
	n := len(features)
	if m.truncate {
		n = n / 2
	}
	out := make([]types.Signal, n)
	for i := range out {
		out[i] = m.signal
	}
	return out, nil
}

// countingFactory tracks how many fresh model instances the stage requested.
func countingFactory(template stubModel, count *atomic.Int32) ModelFactory {
	return func() Model {
		count.Add(1)
		clone := template
		return &clone
	}
}

func failingFactory() ModelFactory {
	return func() Model {
		return &stubModel{fitErr: fmt.Errorf("synthetic fit failure")}
	}
}
