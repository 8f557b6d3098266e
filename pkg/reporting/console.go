// Package reporting renders validation reports to the console, JSON files
// and Excel workbooks.
package reporting

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/algotrendy/strategy-validator/pkg/orchestrator"
)

// ConsoleReporter prints a human-readable report.
type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter writes to stdout.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{out: os.Stdout}
}

// Write renders the summary, per-period walk-forward table and gap verdict.
func (r *ConsoleReporter) Write(report *orchestrator.ValidationReport) {
	fmt.Fprintf(r.out, "\nStrategy validation: %s (%d bars)\n\n", report.Symbol, report.Bars)

	r.writeSummary(report)
	r.writeWalkForward(report)
	r.writeGap(report)
}

func (r *ConsoleReporter) writeSummary(report *orchestrator.ValidationReport) {
	bt := report.Backtest

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("Backtest (purged cross-validation)")
	t.AppendRows([]table.Row{
		{"Accuracy", fmt.Sprintf("%.2f%%", bt.Accuracy*100)},
		{"Precision / Recall / F1", fmt.Sprintf("%.2f / %.2f / %.2f", bt.Precision, bt.Recall, bt.F1)},
		{"Total Return", fmt.Sprintf("%.2f%%", bt.TotalReturn*100)},
		{"Sharpe Ratio", fmt.Sprintf("%.2f", bt.SharpeRatio)},
		{"Sortino Ratio", fmt.Sprintf("%.2f", bt.SortinoRatio)},
		{"Max Drawdown", fmt.Sprintf("%.2f%%", bt.MaxDrawdown*100)},
		{"Win Rate", fmt.Sprintf("%.1f%%", bt.WinRate*100)},
		{"Profit Factor", fmt.Sprintf("%.2f", bt.ProfitFactor)},
		{"Trades", fmt.Sprintf("%d (%d W / %d L)", bt.TotalTrades, bt.WinningTrades, bt.LosingTrades)},
	})
	t.SetStyle(table.StyleLight)
	t.Render()
	fmt.Fprintln(r.out)
}

func (r *ConsoleReporter) writeWalkForward(report *orchestrator.ValidationReport) {
	if len(report.WalkForward) == 0 {
		fmt.Fprintln(r.out, "No walk-forward periods completed.")
		fmt.Fprintln(r.out)
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("Walk-Forward Periods")
	t.AppendHeader(table.Row{"#", "Accuracy", "Return", "Sharpe", "Max DD", "Win Rate", "Trades"})
	for i, m := range report.WalkForward {
		t.AppendRow(table.Row{
			i + 1,
			fmt.Sprintf("%.2f%%", m.Accuracy*100),
			fmt.Sprintf("%.2f%%", m.TotalReturn*100),
			fmt.Sprintf("%.2f", m.SharpeRatio),
			fmt.Sprintf("%.2f%%", m.MaxDrawdown*100),
			fmt.Sprintf("%.1f%%", m.WinRate*100),
			m.TotalTrades,
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "Efficiency", fmt.Sprintf("%.2f", report.Efficiency)})
	t.SetStyle(table.StyleLight)
	t.Render()
	fmt.Fprintln(r.out)
}

func (r *ConsoleReporter) writeGap(report *orchestrator.ValidationReport) {
	gap := report.Gap

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("Gap Analysis")
	t.AppendRows([]table.Row{
		{"Accuracy Gap", fmt.Sprintf("%+.4f", gap.AccuracyGap)},
		{"Sharpe Gap", fmt.Sprintf("%+.4f", gap.SharpeGap)},
		{"Drawdown Gap", fmt.Sprintf("%+.4f", gap.DrawdownGap)},
		{"Gap Trend", string(gap.Trend)},
		{"Overfitting Score", fmt.Sprintf("%.1f / 100", gap.OverfittingScore)},
		{"Degradation Forecast", fmt.Sprintf("%+.4f", gap.DegradationPrediction)},
		{"95% CI on Gap", fmt.Sprintf("[%.4f, %.4f]", gap.ConfidenceLow, gap.ConfidenceHigh)},
		{"Statistically Significant", fmt.Sprintf("%t", gap.Significant)},
	})
	t.SetStyle(table.StyleLight)
	t.Render()

	color := text.FgGreen
	if gap.OverfittingScore > 50 {
		color = text.FgRed
	} else if gap.OverfittingScore > 30 {
		color = text.FgYellow
	}
	fmt.Fprintf(r.out, "\n%s\n\n", color.Sprint(gap.Recommendation))
}
