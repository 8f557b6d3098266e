package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/algotrendy/strategy-validator/internal/simulator"
)

func btMetrics(accuracy, sharpe, drawdown float64) simulator.PerformanceMetrics {
	return simulator.PerformanceMetrics{Accuracy: accuracy, SharpeRatio: sharpe, MaxDrawdown: drawdown}
}

// wfSeries builds walk-forward periods whose accuracy gaps against the
// given backtest accuracy equal the gap series.
func wfSeries(backtestAccuracy, backtestSharpe float64, accuracyGaps ...float64) []simulator.PerformanceMetrics {
	out := make([]simulator.PerformanceMetrics, len(accuracyGaps))
	for i, gap := range accuracyGaps {
		out[i] = simulator.PerformanceMetrics{
			Accuracy:    backtestAccuracy - gap,
			SharpeRatio: backtestSharpe,
		}
	}
	return out
}

func TestAnalyzeEmptyWalkForwardDefaults(t *testing.T) {
	a := NewGapAnalyzer(GapConfig{})
	result := a.Analyze(btMetrics(0.6, 1.5, -0.1), nil)

	assert.Equal(t, TrendStable, result.Trend)
	assert.Equal(t, RecommendMonitor, result.Recommendation)
	assert.Zero(t, result.OverfittingScore)
	assert.Zero(t, result.Periods)
}

func TestAnalyzeSteadilyWideningGapIsIncreasing(t *testing.T) {
	bt := btMetrics(0.6, 1.5, -0.1)
	wf := wfSeries(0.6, 1.5, 0.01, 0.02, 0.03, 0.04, 0.05)

	result := NewGapAnalyzer(GapConfig{}).Analyze(bt, wf)

	assert.Equal(t, TrendIncreasing, result.Trend)
	assert.InDelta(t, 0.03, result.AccuracyGap, 1e-9)
	assert.Zero(t, result.SharpeGap)
	assert.Equal(t, 5, result.Periods)
	// Recent periods dominate the degradation forecast.
	assert.Greater(t, result.DegradationPrediction, 0.03)
}

func TestAnalyzeFewerThanThreePeriodsIsStable(t *testing.T) {
	bt := btMetrics(0.6, 1.5, -0.1)
	wf := wfSeries(0.6, 1.5, 0.01, 0.20)

	result := NewGapAnalyzer(GapConfig{}).Analyze(bt, wf)
	assert.Equal(t, TrendStable, result.Trend)
	assert.False(t, result.Significant)
}

func TestAnalyzeConfidenceIntervalNeedsTwoPeriods(t *testing.T) {
	bt := btMetrics(0.6, 1.5, -0.1)
	wf := wfSeries(0.6, 1.5, 0.05)

	result := NewGapAnalyzer(GapConfig{}).Analyze(bt, wf)
	assert.Zero(t, result.ConfidenceLow)
	assert.Zero(t, result.ConfidenceHigh)
}

func TestAnalyzeConfidenceIntervalBracketsMean(t *testing.T) {
	bt := btMetrics(0.6, 1.5, -0.1)
	wf := wfSeries(0.6, 1.5, 0.02, 0.04, 0.03, 0.05, 0.01)

	result := NewGapAnalyzer(GapConfig{}).Analyze(bt, wf)
	assert.Less(t, result.ConfidenceLow, result.AccuracyGap)
	assert.Greater(t, result.ConfidenceHigh, result.AccuracyGap)
}

func TestAnalyzeOverfittingScoreClampedAt100(t *testing.T) {
	// Enormous gaps in both accuracy and sharpe still cap each component
	// at 40 points and the total at 100.
	bt := btMetrics(0.99, 8.0, -0.05)
	wf := wfSeries(0.99, 0.0, 0.5, 0.5, 0.5)
	for i := range wf {
		wf[i].SharpeRatio = -2
	}

	result := NewGapAnalyzer(GapConfig{}).Analyze(bt, wf)
	assert.LessOrEqual(t, result.OverfittingScore, 100.0)
	assert.Greater(t, result.OverfittingScore, 70.0)
	assert.Equal(t, RecommendDoNotDeploy, result.Recommendation)
}

func TestAnalyzeSuspiciousOutperformanceEarnsLeakagePenalty(t *testing.T) {
	bt := btMetrics(0.5, 1.0, -0.1)
	// Walk-forward beating the backtest by 10 points is suspicious.
	wf := wfSeries(0.5, 1.0, -0.10, -0.10, -0.10)

	result := NewGapAnalyzer(GapConfig{}).Analyze(bt, wf)
	assert.InDelta(t, 20, result.OverfittingScore, 1e-9)
}

func TestAnalyzeStableSmallGapIsSafe(t *testing.T) {
	bt := btMetrics(0.6, 1.5, -0.1)
	wf := wfSeries(0.6, 1.5, 0.01, 0.01, 0.01, 0.01)

	result := NewGapAnalyzer(GapConfig{}).Analyze(bt, wf)
	assert.Equal(t, TrendStable, result.Trend)
	assert.Equal(t, RecommendSafe, result.Recommendation)
}

func TestAnalyzeGrowingGapRecommendsDriftDetection(t *testing.T) {
	bt := btMetrics(0.7, 1.5, -0.1)
	wf := wfSeries(0.7, 1.5, 0.0, 0.05, 0.10, 0.15, 0.20)

	result := NewGapAnalyzer(GapConfig{}).Analyze(bt, wf)
	assert.Equal(t, TrendIncreasing, result.Trend)
	assert.Greater(t, result.DegradationPrediction, 0.10)
	assert.Equal(t, RecommendDegrading, result.Recommendation)
}

func TestAnalyzeSignificance(t *testing.T) {
	wf := wfSeries(0, 1.0, -0.50, -0.51, -0.49, -0.50, -0.52)

	// Far-off backtest accuracy: clearly significant.
	result := NewGapAnalyzer(GapConfig{}).Analyze(btMetrics(0.9, 1.0, -0.1), wf)
	assert.True(t, result.Significant)

	// Backtest accuracy at the walk-forward mean: not significant.
	result = NewGapAnalyzer(GapConfig{}).Analyze(btMetrics(0.504, 1.0, -0.1), wf)
	assert.False(t, result.Significant)
}

func TestRecommendPriorityOrder(t *testing.T) {
	a := NewGapAnalyzer(GapConfig{})

	// The score thresholds outrank the trend.
	assert.Equal(t, RecommendDoNotDeploy, a.Recommend(75, TrendDecreasing, 0))
	assert.Equal(t, RecommendCaution, a.Recommend(55, TrendStable, 0.5))
	assert.Equal(t, RecommendDegrading, a.Recommend(40, TrendIncreasing, 0.2))
	assert.Equal(t, RecommendSafe, a.Recommend(10, TrendStable, 0))
	assert.Equal(t, RecommendSafe, a.Recommend(10, TrendDecreasing, 0))
	assert.Equal(t, RecommendMonitor, a.Recommend(40, TrendStable, 0))
	assert.Equal(t, RecommendMonitor, a.Recommend(10, TrendIncreasing, 0.05))
}

func TestPredictDegradationWeightsRecentPeriods(t *testing.T) {
	bt := btMetrics(0.6, 1.5, -0.1)

	recentSpike := NewGapAnalyzer(GapConfig{}).Analyze(bt, wfSeries(0.6, 1.5, 0, 0, 0, 0, 0.2))
	earlySpike := NewGapAnalyzer(GapConfig{}).Analyze(bt, wfSeries(0.6, 1.5, 0.2, 0, 0, 0, 0))

	assert.Greater(t, recentSpike.DegradationPrediction, earlySpike.DegradationPrediction)
}

func TestPredictDegradationAppliesAmplifier(t *testing.T) {
	bt := btMetrics(0.6, 1.5, -0.1)
	// Constant gap: the weighted mean is the gap itself, amplified.
	result := NewGapAnalyzer(GapConfig{}).Analyze(bt, wfSeries(0.6, 1.5, 0.05, 0.05, 0.05, 0.05))

	assert.InDelta(t, 0.05*1.2, result.DegradationPrediction, 1e-9)
}
