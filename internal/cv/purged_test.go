package cv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hourlyTimestamps(n int) []time.Time {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ts := make([]time.Time, n)
	for i := range ts {
		ts[i] = start.Add(time.Duration(i) * time.Hour)
	}
	return ts
}

func TestSplitTrainAlwaysPrecedesTest(t *testing.T) {
	s := NewPurgedKFold(5, 0.01)
	folds, err := s.Split(1000, hourlyTimestamps(1000))
	require.NoError(t, err)
	require.NotEmpty(t, folds)

	for _, f := range folds {
		require.NotEmpty(t, f.TrainIdx)
		require.NotEmpty(t, f.TestIdx)
		lastTrain := f.TrainIdx[len(f.TrainIdx)-1]
		firstTest := f.TestIdx[0]
		assert.Less(t, lastTrain, firstTest, "fold %d", f.ID)
	}
}

func TestSplitEmbargoSeparatesTrainFromTest(t *testing.T) {
	n := 1000
	embargoPct := 0.02
	s := NewPurgedKFold(5, embargoPct)
	folds, err := s.Split(n, hourlyTimestamps(n))
	require.NoError(t, err)
	require.NotEmpty(t, folds)

	embargo := int(float64(n) * embargoPct)
	for _, f := range folds {
		lastTrain := f.TrainIdx[len(f.TrainIdx)-1]
		firstTest := f.TestIdx[0]
		assert.GreaterOrEqual(t, firstTest-lastTrain, embargo, "fold %d", f.ID)
	}
}

func TestSplitDropsEarlyFoldsBelowMinimumTrain(t *testing.T) {
	s := NewPurgedKFold(5, 0.01)
	folds, err := s.Split(1000, hourlyTimestamps(1000))
	require.NoError(t, err)

	// Test windows starting before the 50% mark cannot leave the minimum
	// training history, so forward chaining yields fewer than NSplits folds.
	assert.Less(t, len(folds), 5)
	for _, f := range folds {
		assert.GreaterOrEqual(t, len(f.TrainIdx), 500)
	}
}

func TestSplitFoldIDsAreSequential(t *testing.T) {
	s := NewPurgedKFold(5, 0.01)
	folds, err := s.Split(1000, hourlyTimestamps(1000))
	require.NoError(t, err)

	for i, f := range folds {
		assert.Equal(t, i, f.ID)
		assert.True(t, f.TestEnd.After(f.TestStart))
		assert.True(t, f.TrainEnd.Before(f.TestStart))
	}
}

func TestSplitTinySampleYieldsNoFolds(t *testing.T) {
	s := NewPurgedKFold(5, 0.01)
	folds, err := s.Split(4, hourlyTimestamps(4))
	require.NoError(t, err)
	assert.Empty(t, folds)
}

func TestSplitRejectsInvalidInput(t *testing.T) {
	s := NewPurgedKFold(5, 0.01)

	_, err := s.Split(0, nil)
	assert.Error(t, err)

	_, err = s.Split(10, hourlyTimestamps(5))
	assert.Error(t, err)
}

func TestNewPurgedKFoldDefaultsSplits(t *testing.T) {
	s := NewPurgedKFold(0, 0.01)
	assert.Equal(t, 5, s.NSplits)
	assert.InDelta(t, 0.2, s.TestSize, 1e-9)
	assert.InDelta(t, 0.5, s.MinTrainSize, 1e-9)
}
