package strategy

import (
	"fmt"

	"github.com/algotrendy/strategy-validator/internal/validation"
	"github.com/algotrendy/strategy-validator/pkg/types"
)

// CrossoverModel is a deterministic moving-average crossover classifier:
// LONG while the fast SMA of the close column is above the slow SMA, flat
// otherwise, HOLD during the slow window warm-up. It implements the model
// capability so the pipeline can be exercised end to end without a trained
// classifier; Fit is idempotent by construction.
type CrossoverModel struct {
	Fast int
	Slow int

	fitted bool
}

// NewCrossoverFactory returns a ModelFactory producing fresh crossover
// models with the given windows.
func NewCrossoverFactory(fast, slow int) validation.ModelFactory {
	return func() validation.Model {
		return &CrossoverModel{Fast: fast, Slow: slow}
	}
}

// Fit validates the windows. The rule itself has no trainable state.
func (m *CrossoverModel) Fit(features [][]float64, labels []types.Signal) error {
	if m.Fast <= 0 || m.Slow <= m.Fast {
		return fmt.Errorf("invalid crossover windows fast=%d slow=%d", m.Fast, m.Slow)
	}
	if len(features) == 0 {
		return fmt.Errorf("no training rows")
	}
	m.fitted = true
	return nil
}

// Predict maps each feature row to a signal from the fast/slow SMA state.
func (m *CrossoverModel) Predict(features [][]float64) ([]types.Signal, error) {
	if !m.fitted {
		return nil, fmt.Errorf("model not fitted")
	}

	closes := make([]float64, len(features))
	for i, row := range features {
		if len(row) == 0 {
			return nil, fmt.Errorf("feature row %d is empty", i)
		}
		closes[i] = row[FeatClose]
	}

	signals := make([]types.Signal, len(closes))
	var fastSum, slowSum float64
	for i, c := range closes {
		fastSum += c
		slowSum += c
		if i >= m.Fast {
			fastSum -= closes[i-m.Fast]
		}
		if i >= m.Slow {
			slowSum -= closes[i-m.Slow]
		}

		if i < m.Slow-1 {
			signals[i] = types.SignalHold
			continue
		}
		fast := fastSum / float64(m.Fast)
		slow := slowSum / float64(m.Slow)
		if fast > slow {
			signals[i] = types.SignalLong
		} else {
			signals[i] = types.SignalFlat
		}
	}
	return signals, nil
}
