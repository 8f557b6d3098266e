package strategy

import (
	"github.com/algotrendy/strategy-validator/pkg/types"
)

// ForwardReturnLabeler marks a bar LONG when the close moves up by more
// than Threshold within the next Horizon bars. The final Horizon bars have
// no forward window and label flat.
type ForwardReturnLabeler struct {
	Horizon   int
	Threshold float64
}

// NewForwardReturnLabeler uses the standard 2% move over 5 bars.
func NewForwardReturnLabeler() *ForwardReturnLabeler {
	return &ForwardReturnLabeler{Horizon: 5, Threshold: 0.02}
}

// Generate returns one label per bar, aligned by index.
func (l *ForwardReturnLabeler) Generate(bars []types.PriceBar) []types.Signal {
	labels := make([]types.Signal, len(bars))
	for i := range bars {
		j := i + l.Horizon
		if j >= len(bars) || bars[i].Close <= 0 {
			labels[i] = types.SignalFlat
			continue
		}
		if bars[j].Close/bars[i].Close-1 > l.Threshold {
			labels[i] = types.SignalLong
		} else {
			labels[i] = types.SignalFlat
		}
	}
	return labels
}
