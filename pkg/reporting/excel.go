package reporting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/algotrendy/strategy-validator/internal/simulator"
	"github.com/algotrendy/strategy-validator/pkg/orchestrator"
)

// ExcelReporter writes the report as a three-sheet workbook: Summary,
// Walk-Forward and Gap Analysis.
type ExcelReporter struct{}

// NewExcelReporter creates an Excel reporter.
func NewExcelReporter() *ExcelReporter {
	return &ExcelReporter{}
}

// Write renders the workbook and saves it at path.
func (r *ExcelReporter) Write(report *orchestrator.ValidationReport, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const (
		summarySheet = "Summary"
		wfSheet      = "Walk-Forward"
		gapSheet     = "Gap Analysis"
	)
	fx.SetSheetName(fx.GetSheetName(0), summarySheet)
	if _, err := fx.NewSheet(wfSheet); err != nil {
		return err
	}
	if _, err := fx.NewSheet(gapSheet); err != nil {
		return err
	}

	headerStyle, err := fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	if err := r.writeSummary(fx, summarySheet, report, headerStyle); err != nil {
		return err
	}
	if err := r.writeWalkForward(fx, wfSheet, report, headerStyle); err != nil {
		return err
	}
	if err := r.writeGap(fx, gapSheet, report, headerStyle); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

func (r *ExcelReporter) writeSummary(fx *excelize.File, sheet string, report *orchestrator.ValidationReport, headerStyle int) error {
	rows := [][]interface{}{
		{"Metric", "Backtest"},
		{"Symbol", report.Symbol},
		{"Generated At", report.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Bars", report.Bars},
	}
	rows = append(rows, metricRows(report.Backtest)...)
	rows = append(rows, []interface{}{"Walk-Forward Efficiency", report.Efficiency})

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := fx.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return fx.SetCellStyle(sheet, "A1", "B1", headerStyle)
}

func (r *ExcelReporter) writeWalkForward(fx *excelize.File, sheet string, report *orchestrator.ValidationReport, headerStyle int) error {
	header := []interface{}{"Period", "Accuracy", "Precision", "Recall", "F1", "Total Return", "Sharpe", "Sortino", "Max Drawdown", "Win Rate", "Profit Factor", "Trades"}
	if err := fx.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, m := range report.WalkForward {
		row := []interface{}{
			i + 1, m.Accuracy, m.Precision, m.Recall, m.F1,
			m.TotalReturn, m.SharpeRatio, m.SortinoRatio,
			m.MaxDrawdown, m.WinRate, m.ProfitFactor, m.TotalTrades,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := fx.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return fx.SetCellStyle(sheet, "A1", "L1", headerStyle)
}

func (r *ExcelReporter) writeGap(fx *excelize.File, sheet string, report *orchestrator.ValidationReport, headerStyle int) error {
	gap := report.Gap
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Accuracy Gap", gap.AccuracyGap},
		{"Sharpe Gap", gap.SharpeGap},
		{"Drawdown Gap", gap.DrawdownGap},
		{"Gap Trend", string(gap.Trend)},
		{"Overfitting Score", gap.OverfittingScore},
		{"Degradation Prediction", gap.DegradationPrediction},
		{"Confidence Low", gap.ConfidenceLow},
		{"Confidence High", gap.ConfidenceHigh},
		{"Statistically Significant", gap.Significant},
		{"Periods", gap.Periods},
		{"Recommendation", gap.Recommendation},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := fx.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return fx.SetCellStyle(sheet, "A1", "B1", headerStyle)
}

func metricRows(m simulator.PerformanceMetrics) [][]interface{} {
	return [][]interface{}{
		{"Accuracy", m.Accuracy},
		{"Precision", m.Precision},
		{"Recall", m.Recall},
		{"F1", m.F1},
		{"Total Return", m.TotalReturn},
		{"Sharpe Ratio", m.SharpeRatio},
		{"Sortino Ratio", m.SortinoRatio},
		{"Max Drawdown", m.MaxDrawdown},
		{"Win Rate", m.WinRate},
		{"Avg Gain", m.AvgGain},
		{"Avg Loss", m.AvgLoss},
		{"Profit Factor", m.ProfitFactor},
		{"Total Trades", m.TotalTrades},
		{"Winning Trades", m.WinningTrades},
		{"Losing Trades", m.LosingTrades},
	}
}
