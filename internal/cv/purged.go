// Package cv provides the purged cross-validation splitter used by the
// backtest stage. Purging removes bars adjacent to each train/test boundary
// so labels computed from forward-looking windows cannot leak across it.
package cv

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Fold is one train/test index partition over a time-ordered sample range.
type Fold struct {
	ID         int
	TrainIdx   []int
	TestIdx    []int
	TrainStart time.Time
	TrainEnd   time.Time
	TestStart  time.Time
	TestEnd    time.Time
}

// Splitter produces ordered train/test partitions honoring an embargo
// fraction. Implementations must keep samples in timestamp order.
type Splitter interface {
	Split(n int, timestamps []time.Time) ([]Fold, error)
}

// PurgedKFold is a forward-chaining purged splitter: each fold trains on
// everything before its test window, minus an embargo buffer of
// EmbargoPct*n samples trimmed from the train side of the boundary.
type PurgedKFold struct {
	NSplits    int
	EmbargoPct float64
	// TestSize and MinTrainSize are fractions of the full sample count.
	TestSize     float64
	MinTrainSize float64
}

// NewPurgedKFold returns a splitter with the standard defaults:
// 5 splits, 1% embargo, 20% test windows, 50% minimum train size.
func NewPurgedKFold(nSplits int, embargoPct float64) *PurgedKFold {
	if nSplits <= 0 {
		nSplits = 5
	}
	return &PurgedKFold{
		NSplits:      nSplits,
		EmbargoPct:   embargoPct,
		TestSize:     0.2,
		MinTrainSize: 0.5,
	}
}

// Split generates the folds. Folds whose test window lands too early to
// leave the minimum training history are dropped, so fewer than NSplits
// folds may come back; zero folds is reported as an error by the caller's
// failure policy, not here.
func (s *PurgedKFold) Split(n int, timestamps []time.Time) ([]Fold, error) {
	if n <= 0 {
		return nil, fmt.Errorf("cannot split %d samples", n)
	}
	if len(timestamps) != n {
		return nil, fmt.Errorf("timestamp length %d does not match sample count %d", len(timestamps), n)
	}

	embargo := int(float64(n) * s.EmbargoPct)
	testSize := int(float64(n) * s.TestSize)
	minTrain := int(float64(n) * s.MinTrainSize)

	var folds []Fold
	for i := 0; i < s.NSplits; i++ {
		testStart := n * i / s.NSplits
		testEnd := testStart + testSize
		if testEnd > n {
			testEnd = n
		}
		// Drop empty and truncated test windows (under 80% of the target).
		if testEnd <= testStart || float64(testEnd-testStart) < float64(testSize)*0.8 {
			continue
		}

		trainEnd := testStart - embargo
		if trainEnd < minTrain || trainEnd < 1 {
			continue
		}

		fold := Fold{
			ID:         len(folds),
			TrainIdx:   indexRange(0, trainEnd),
			TestIdx:    indexRange(testStart, testEnd),
			TrainStart: timestamps[0],
			TrainEnd:   timestamps[trainEnd-1],
			TestStart:  timestamps[testStart],
			TestEnd:    timestamps[testEnd-1],
		}
		folds = append(folds, fold)

		log.Debug().
			Int("fold", fold.ID).
			Int("train_samples", len(fold.TrainIdx)).
			Int("test_samples", len(fold.TestIdx)).
			Int("embargo_samples", embargo).
			Time("test_start", fold.TestStart).
			Msg("purged fold generated")
	}

	return folds, nil
}

func indexRange(start, end int) []int {
	idx := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		idx = append(idx, i)
	}
	return idx
}
