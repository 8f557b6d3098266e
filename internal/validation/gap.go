package validation

import (
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/algotrendy/strategy-validator/internal/simulator"
)

// GapTrend classifies how the backtest/walk-forward gap evolves over time.
type GapTrend string

const (
	TrendIncreasing GapTrend = "increasing"
	TrendDecreasing GapTrend = "decreasing"
	TrendStable     GapTrend = "stable"
)

// Recommendation texts, in strict priority order of evaluation.
const (
	RecommendDoNotDeploy = "DO NOT DEPLOY - high overfitting detected; add regularization or collect more data"
	RecommendCaution     = "CAUTION - moderate overfitting; consider an ensemble approach or feature selection"
	RecommendDegrading   = "DEGRADING - performance declining over time; implement drift detection"
	RecommendSafe        = "SAFE TO DEPLOY - stable, robust performance"
	RecommendMonitor     = "MONITOR CLOSELY - deploy with frequent validation and drift detection"
)

// GapConfig carries the gap-analysis constants. The amplifier and leakage
// penalty are empirically chosen values preserved from production
// calibration; they are configuration, not derived quantities.
type GapConfig struct {
	// SlopeStabilityEps is the OLS slope magnitude below which the gap
	// trend is considered stable.
	SlopeStabilityEps float64
	// LeakageGapFloor is the mean accuracy gap below which walk-forward
	// outperformance is treated as suspicious (possible data leakage).
	LeakageGapFloor float64
	// LeakagePenalty is the flat score added on suspected leakage.
	LeakagePenalty float64
	// DegradationAmplifier scales the weighted gap into a live-deployment
	// degradation forecast (gaps typically widen ~20% in production).
	DegradationAmplifier float64
	// ConfidenceLevel sizes the two-sided interval on the mean gap.
	ConfidenceLevel float64
	// SignificanceAlpha is the p-value threshold for the one-sample t-test.
	SignificanceAlpha float64
}

// DefaultGapConfig returns the production constants.
func DefaultGapConfig() GapConfig {
	return GapConfig{
		SlopeStabilityEps:    0.001,
		LeakageGapFloor:      -0.05,
		LeakagePenalty:       20,
		DegradationAmplifier: 1.2,
		ConfidenceLevel:      0.95,
		SignificanceAlpha:    0.05,
	}
}

// GapAnalysis is the final verdict on the backtest/walk-forward gap.
// Created once per validation run, never mutated.
type GapAnalysis struct {
	AccuracyGap           float64  `json:"accuracy_gap"`
	SharpeGap             float64  `json:"sharpe_gap"`
	DrawdownGap           float64  `json:"drawdown_gap"`
	Trend                 GapTrend `json:"gap_trend"`
	OverfittingScore      float64  `json:"overfitting_score"`
	DegradationPrediction float64  `json:"degradation_prediction"`
	ConfidenceLow         float64  `json:"confidence_low"`
	ConfidenceHigh        float64  `json:"confidence_high"`
	Significant           bool     `json:"statistical_significance"`
	Recommendation        string   `json:"recommendation"`
	Periods               int      `json:"periods"`
}

// GapAnalyzer computes the gap statistics between one backtest summary and
// an ordered walk-forward series.
type GapAnalyzer struct {
	cfg GapConfig
}

// NewGapAnalyzer builds an analyzer; a zero-valued config is replaced with
// the defaults.
func NewGapAnalyzer(cfg GapConfig) *GapAnalyzer {
	if cfg == (GapConfig{}) {
		cfg = DefaultGapConfig()
	}
	return &GapAnalyzer{cfg: cfg}
}

// Analyze computes per-period gaps, fits the gap trend, scores overfitting,
// forecasts degradation and emits the deployment recommendation.
//
// An empty walk-forward series is valid: the result is the stable,
// low-confidence default rather than an error.
func (g *GapAnalyzer) Analyze(backtest simulator.PerformanceMetrics, walkforward []simulator.PerformanceMetrics) GapAnalysis {
	if len(walkforward) == 0 {
		log.Warn().Msg("gap analysis with no walk-forward periods; returning low-confidence default")
		return GapAnalysis{
			Trend:          TrendStable,
			Recommendation: RecommendMonitor,
		}
	}

	accuracyGaps := make([]float64, len(walkforward))
	sharpeGaps := make([]float64, len(walkforward))
	drawdownGaps := make([]float64, len(walkforward))
	wfAccuracies := make([]float64, len(walkforward))
	for i, wf := range walkforward {
		accuracyGaps[i] = backtest.Accuracy - wf.Accuracy
		sharpeGaps[i] = backtest.SharpeRatio - wf.SharpeRatio
		drawdownGaps[i] = backtest.MaxDrawdown - wf.MaxDrawdown
		wfAccuracies[i] = wf.Accuracy
	}

	meanAccGap := stat.Mean(accuracyGaps, nil)
	meanSharpeGap := stat.Mean(sharpeGaps, nil)
	meanDDGap := stat.Mean(drawdownGaps, nil)

	trend := g.classifyTrend(accuracyGaps)
	score := g.overfittingScore(meanAccGap, meanSharpeGap, trend)
	degradation := g.predictDegradation(accuracyGaps)
	ciLow, ciHigh := g.confidenceInterval(accuracyGaps)
	significant := g.testSignificance(backtest.Accuracy, wfAccuracies)
	recommendation := g.Recommend(score, trend, degradation)

	analysis := GapAnalysis{
		AccuracyGap:           meanAccGap,
		SharpeGap:             meanSharpeGap,
		DrawdownGap:           meanDDGap,
		Trend:                 trend,
		OverfittingScore:      score,
		DegradationPrediction: degradation,
		ConfidenceLow:         ciLow,
		ConfidenceHigh:        ciHigh,
		Significant:           significant,
		Recommendation:        recommendation,
		Periods:               len(walkforward),
	}

	log.Info().
		Float64("accuracy_gap", meanAccGap).
		Float64("sharpe_gap", meanSharpeGap).
		Str("trend", string(trend)).
		Float64("overfitting_score", score).
		Float64("degradation", degradation).
		Bool("significant", significant).
		Msg("gap analysis complete")

	return analysis
}

// classifyTrend fits ordinary least squares of the gap series against the
// period index. Fewer than 3 periods is stable by definition.
func (g *GapAnalyzer) classifyTrend(gaps []float64) GapTrend {
	if len(gaps) < 3 {
		return TrendStable
	}

	xs := make([]float64, len(gaps))
	for i := range xs {
		xs[i] = float64(i)
	}
	_, slope := stat.LinearRegression(xs, gaps, nil, false)

	switch {
	case math.Abs(slope) < g.cfg.SlopeStabilityEps:
		return TrendStable
	case slope > 0:
		return TrendIncreasing
	default:
		return TrendDecreasing
	}
}

// overfittingScore combines gap magnitude and gap trend into a bounded
// 0-100 risk index. Higher is worse.
func (g *GapAnalyzer) overfittingScore(accuracyGap, sharpeGap float64, trend GapTrend) float64 {
	score := 0.0

	// Accuracy gap component, capped at 40 points. A strongly negative
	// gap (walk-forward beating the backtest) earns the leakage penalty.
	if accuracyGap > 0 {
		score += math.Min(accuracyGap*100, 40)
	} else if accuracyGap < g.cfg.LeakageGapFloor {
		score += g.cfg.LeakagePenalty
	}

	// Sharpe gap component, capped at 40 points.
	if sharpeGap > 0 {
		score += math.Min(sharpeGap*10, 40)
	}

	// Trend component.
	switch trend {
	case TrendIncreasing:
		score += 20
	case TrendDecreasing:
		score -= 10
	}

	return math.Max(0, math.Min(100, score))
}

// predictDegradation forecasts live degradation by exponentially weighting
// recent gaps and applying the amplifier.
func (g *GapAnalyzer) predictDegradation(gaps []float64) float64 {
	n := len(gaps)
	if n == 0 {
		return 0
	}

	// weights = exp(linspace(-2, 0, n)), normalized to sum to 1.
	weights := make([]float64, n)
	var sum float64
	for i := range weights {
		x := -2.0
		if n > 1 {
			x = -2.0 + 2.0*float64(i)/float64(n-1)
		}
		weights[i] = math.Exp(x)
		sum += weights[i]
	}

	var weighted float64
	for i, gap := range gaps {
		weighted += gap * weights[i] / sum
	}

	return weighted * g.cfg.DegradationAmplifier
}

// confidenceInterval is the two-sided Student's t interval on the mean gap,
// (0,0) with fewer than 2 periods.
func (g *GapAnalyzer) confidenceInterval(gaps []float64) (float64, float64) {
	n := len(gaps)
	if n < 2 {
		return 0, 0
	}

	mean := stat.Mean(gaps, nil)
	sd := stat.PopStdDev(gaps, nil)

	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}
	critical := t.Quantile((1 + g.cfg.ConfidenceLevel) / 2)
	margin := critical * sd / math.Sqrt(float64(n))

	return mean - margin, mean + margin
}

// testSignificance runs a one-sample t-test of the walk-forward accuracy
// series against the fixed backtest accuracy. Fewer than 3 periods reports
// not significant without attempting the test.
func (g *GapAnalyzer) testSignificance(backtestAccuracy float64, wfAccuracies []float64) bool {
	n := len(wfAccuracies)
	if n < 3 {
		return false
	}

	mean := stat.Mean(wfAccuracies, nil)
	sd := stat.StdDev(wfAccuracies, nil) // sample std, n-1
	if sd == 0 {
		return false
	}

	tStat := (mean - backtestAccuracy) / (sd / math.Sqrt(float64(n)))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}
	p := 2 * dist.CDF(-math.Abs(tStat))

	return p < g.cfg.SignificanceAlpha
}

// Recommend maps the score, trend and degradation forecast to the
// deployment recommendation. Rules are evaluated in strict priority order;
// the score thresholds outrank the trend.
func (g *GapAnalyzer) Recommend(score float64, trend GapTrend, degradation float64) string {
	switch {
	case score > 70:
		return RecommendDoNotDeploy
	case score > 50:
		return RecommendCaution
	case trend == TrendIncreasing && degradation > 0.10:
		return RecommendDegrading
	case score < 30 && (trend == TrendStable || trend == TrendDecreasing):
		return RecommendSafe
	default:
		return RecommendMonitor
	}
}
