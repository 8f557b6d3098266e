package simulator

import (
	"math"
	"time"

	"github.com/algotrendy/strategy-validator/pkg/types"
)

// PerformanceMetrics is the fixed-shape summary of one fold or period.
// Every field has a documented zero default for its degenerate case, so a
// zero-trade run produces a zero-valued struct rather than an error.
type PerformanceMetrics struct {
	// Classification quality of the raw signals, pooled over the fold.
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`

	TotalReturn  float64 `json:"total_return"`
	SharpeRatio  float64 `json:"sharpe_ratio"`
	SortinoRatio float64 `json:"sortino_ratio"`
	MaxDrawdown  float64 `json:"max_drawdown"`
	WinRate      float64 `json:"win_rate"`
	AvgGain      float64 `json:"avg_gain"`
	AvgLoss      float64 `json:"avg_loss"`
	ProfitFactor float64 `json:"profit_factor"`

	TotalTrades   int `json:"total_trades"`
	WinningTrades int `json:"winning_trades"`
	LosingTrades  int `json:"losing_trades"`
}

// Summarize reduces a closed trade ledger and equity curve into trading
// metrics. Classification fields are filled separately via ScoreSignals by
// callers that have pooled predictions and actuals.
func Summarize(trades []Trade, curve []EquityPoint, initialCapital float64) PerformanceMetrics {
	var m PerformanceMetrics
	m.TotalTrades = len(trades)
	if len(trades) == 0 && len(curve) == 0 {
		return m
	}

	var grossProfit, grossLoss, sumGain, sumLoss float64
	for _, t := range trades {
		if t.PnL > 0 {
			m.WinningTrades++
			grossProfit += t.PnL
			sumGain += t.PnL
		} else {
			m.LosingTrades++
			grossLoss += math.Abs(t.PnL)
			sumLoss += t.PnL
		}
	}

	if m.TotalTrades > 0 {
		m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades)
	}
	if m.WinningTrades > 0 {
		m.AvgGain = sumGain / float64(m.WinningTrades)
	}
	if m.LosingTrades > 0 {
		m.AvgLoss = sumLoss / float64(m.LosingTrades)
	}
	// No losing trades leaves the denominator empty: report 0, not +Inf.
	if grossLoss > 0 {
		m.ProfitFactor = grossProfit / grossLoss
	}

	if initialCapital > 0 {
		var totalPnL float64
		for _, t := range trades {
			totalPnL += t.PnL
		}
		m.TotalReturn = totalPnL / initialCapital
	}

	returns := barReturns(curve)
	annualize := math.Sqrt(periodsPerYear(curve))
	m.SharpeRatio = sharpe(returns) * annualize
	m.SortinoRatio = sortino(returns, m.SharpeRatio, annualize)
	m.MaxDrawdown = maxDrawdown(curve)

	return m
}

// SummarizePooled aggregates several independent fold simulations into one
// summary. Trades are pooled; per-bar returns are computed inside each
// fold's curve so the equity reset between folds never shows up as a
// phantom return; max drawdown is the worst across folds.
func SummarizePooled(tradeSets [][]Trade, curves [][]EquityPoint, initialCapital float64) PerformanceMetrics {
	var allTrades []Trade
	for _, ts := range tradeSets {
		allTrades = append(allTrades, ts...)
	}

	var first []EquityPoint
	for _, c := range curves {
		if len(c) > 0 {
			first = c
			break
		}
	}
	m := Summarize(allTrades, nil, initialCapital)

	var returns []float64
	minDD := 0.0
	for _, c := range curves {
		returns = append(returns, barReturns(c)...)
		if dd := maxDrawdown(c); dd < minDD {
			minDD = dd
		}
	}
	annualize := math.Sqrt(periodsPerYear(first))
	m.SharpeRatio = sharpe(returns) * annualize
	m.SortinoRatio = sortino(returns, m.SharpeRatio, annualize)
	m.MaxDrawdown = minDD
	return m
}

// ScoreSignals computes accuracy, precision, recall and F1 of predicted
// signals against actual labels, treating LONG as the positive class.
// HOLD predictions count as flat. Empty input scores zero across the board.
func ScoreSignals(actual, predicted []types.Signal) (accuracy, precision, recall, f1 float64) {
	n := len(actual)
	if n == 0 || len(predicted) != n {
		return 0, 0, 0, 0
	}

	var tp, tn, fp, fn int
	for i := 0; i < n; i++ {
		a := actual[i] == types.SignalLong
		p := predicted[i] == types.SignalLong
		switch {
		case a && p:
			tp++
		case !a && !p:
			tn++
		case !a && p:
			fp++
		default:
			fn++
		}
	}

	accuracy = float64(tp+tn) / float64(n)
	if tp+fp > 0 {
		precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		recall = float64(tp) / float64(tp+fn)
	}
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return accuracy, precision, recall, f1
}

func barReturns(curve []EquityPoint) []float64 {
	if len(curve) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev > 0 {
			returns = append(returns, (curve[i].Equity-prev)/prev)
		}
	}
	return returns
}

// sharpe is the raw (un-annualized) ratio: 0 with fewer than 2 returns or
// zero variance.
func sharpe(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean := meanOf(returns)
	sd := stdDev(returns, mean)
	if sd == 0 {
		return 0
	}
	return mean / sd
}

// sortino divides by downside deviation only, falling back to the Sharpe
// ratio when there are no negative returns.
func sortino(returns []float64, sharpeAnnualized, annualize float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	var downside []float64
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	if len(downside) == 0 {
		return sharpeAnnualized
	}
	var sumSq float64
	for _, r := range downside {
		sumSq += r * r
	}
	downsideDev := math.Sqrt(sumSq / float64(len(downside)))
	if downsideDev == 0 {
		return sharpeAnnualized
	}
	return meanOf(returns) / downsideDev * annualize
}

func maxDrawdown(curve []EquityPoint) float64 {
	min := 0.0
	for _, p := range curve {
		if p.Drawdown < min {
			min = p.Drawdown
		}
	}
	return min
}

// periodsPerYear estimates the annualization factor from the equity curve's
// median bar spacing, defaulting to daily when spacing cannot be derived.
func periodsPerYear(curve []EquityPoint) float64 {
	const tradingDays = 252
	ts := make([]time.Time, len(curve))
	for i, p := range curve {
		ts[i] = p.Timestamp
	}
	spacing := types.MedianSpacing(ts)
	if spacing <= 0 {
		return tradingDays
	}
	year := 365.25 * 24 * time.Hour
	periods := float64(year) / float64(spacing)
	if periods <= 0 {
		return tradingDays
	}
	// Daily bars annualize with the trading-day convention.
	if spacing >= 23*time.Hour && spacing <= 25*time.Hour {
		return tradingDays
	}
	return periods
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev is the population standard deviation, matching the convention the
// rest of the gap statistics use.
func stdDev(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}
