package types

import "time"

// PriceBar is a single OHLCV candle. Bars are immutable and ordered by
// timestamp, strictly increasing, no duplicates.
type PriceBar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Signal is a directional label aligned one-to-one with a PriceBar.
type Signal int8

const (
	// SignalFlat means no long exposure: close an open long (or open a
	// short when shorting is enabled).
	SignalFlat Signal = 0
	// SignalLong means enter or keep a long position.
	SignalLong Signal = 1
	// SignalHold means do nothing, used for indicator warm-up bars.
	SignalHold Signal = 2
)

func (s Signal) String() string {
	switch s {
	case SignalFlat:
		return "FLAT"
	case SignalLong:
		return "LONG"
	case SignalHold:
		return "HOLD"
	default:
		return "UNKNOWN"
	}
}

// Closes extracts the close price series from a bar slice.
func Closes(bars []PriceBar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// Timestamps extracts the timestamp series from a bar slice.
func Timestamps(bars []PriceBar) []time.Time {
	ts := make([]time.Time, len(bars))
	for i, b := range bars {
		ts[i] = b.Timestamp
	}
	return ts
}

// Span returns the time covered by the bar slice, zero if fewer than two bars.
func Span(bars []PriceBar) time.Duration {
	if len(bars) < 2 {
		return 0
	}
	return bars[len(bars)-1].Timestamp.Sub(bars[0].Timestamp)
}

// MedianSpacing estimates the sampling interval from consecutive
// timestamps. Used to annualize per-bar return statistics; the median keeps
// a few gaps in the history from skewing the estimate.
func MedianSpacing(ts []time.Time) time.Duration {
	if len(ts) < 2 {
		return 0
	}
	gaps := make([]time.Duration, 0, len(ts)-1)
	for i := 1; i < len(ts); i++ {
		gaps = append(gaps, ts[i].Sub(ts[i-1]))
	}
	for i := 1; i < len(gaps); i++ {
		for j := i; j > 0 && gaps[j] < gaps[j-1]; j-- {
			gaps[j], gaps[j-1] = gaps[j-1], gaps[j]
		}
	}
	return gaps[len(gaps)/2]
}
