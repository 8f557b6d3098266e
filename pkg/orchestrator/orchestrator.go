// Package orchestrator runs the full validation pipeline: purged
// cross-validation backtest, walk-forward optimization and gap analysis,
// in that order, and assembles the final report.
package orchestrator

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/algotrendy/strategy-validator/internal/config"
	"github.com/algotrendy/strategy-validator/internal/cv"
	"github.com/algotrendy/strategy-validator/internal/simulator"
	"github.com/algotrendy/strategy-validator/internal/validation"
	"github.com/algotrendy/strategy-validator/internal/verrors"
	"github.com/algotrendy/strategy-validator/pkg/types"
)

// ValidationReport is the complete output of one pipeline run.
type ValidationReport struct {
	Symbol      string                           `json:"symbol"`
	GeneratedAt time.Time                        `json:"generated_at"`
	Bars        int                              `json:"bars"`
	Backtest    simulator.PerformanceMetrics     `json:"backtest"`
	WalkForward []simulator.PerformanceMetrics   `json:"walk_forward"`
	Gap         validation.GapAnalysis           `json:"gap_analysis"`
	Efficiency  float64                          `json:"walk_forward_efficiency"`
}

// Orchestrator wires the three stages from one configuration and one set
// of strategy capabilities.
type Orchestrator struct {
	cfg      *config.Config
	factory  validation.ModelFactory
	features validation.FeatureCalculator
	labels   validation.LabelGenerator
}

// New builds an orchestrator. A nil config uses the defaults.
func New(cfg *config.Config, factory validation.ModelFactory, features validation.FeatureCalculator, labels validation.LabelGenerator) *Orchestrator {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Orchestrator{
		cfg:      cfg,
		factory:  factory,
		features: features,
		labels:   labels,
	}
}

// RunValidation executes the pipeline on the given bars.
//
// The backtest stage is load-bearing: its failure aborts the run. The
// walk-forward stage degrades gracefully; with zero completed periods the
// gap stage falls back to its low-confidence default and the report is
// still produced.
func (o *Orchestrator) RunValidation(ctx context.Context, bars []types.PriceBar) (*ValidationReport, error) {
	started := time.Now()
	log.Info().
		Str("symbol", o.cfg.Symbol).
		Int("bars", len(bars)).
		Msg("starting strategy validation")

	simCfg := simulator.SimConfig{
		InitialCapital: o.cfg.InitialCapital,
		CommissionRate: o.cfg.CommissionRate,
		SlippageRate:   o.cfg.SlippageRate,
		Utilization:    o.cfg.Utilization,
	}

	btCfg := validation.BacktestConfig{
		MinTrainBars: o.cfg.MinTrainBars,
		MinTestBars:  o.cfg.MinTestBars,
		FoldTimeout:  o.cfg.FoldTimeout,
		Workers:      o.cfg.Workers,
	}
	splitter := cv.NewPurgedKFold(o.cfg.NSplits, o.cfg.EmbargoPct)
	runner := validation.NewBacktestRunner(o.factory, o.features, o.labels, splitter, simCfg, btCfg)

	backtest, err := runner.Run(ctx, bars)
	if err != nil {
		return nil, err
	}

	wfCfg := validation.WalkForwardConfig{
		TrainDays:    o.cfg.TrainWindowDays,
		TestDays:     o.cfg.TestWindowDays,
		StepDays:     o.cfg.StepDays,
		MinTrainBars: o.cfg.MinTrainBars,
		MinTestBars:  o.cfg.MinTestBars,
		FoldTimeout:  o.cfg.FoldTimeout,
		Workers:      o.cfg.Workers,
	}
	optimizer := validation.NewWalkForwardOptimizer(o.factory, o.features, o.labels, simCfg, wfCfg)

	walkforward, err := optimizer.Run(ctx, bars)
	if err != nil {
		// Walk-forward failures that are not fatal leave the report in a
		// partial but still usable state.
		if verrors.IsFatal(err) {
			return nil, err
		}
		log.Warn().Err(err).Msg("walk-forward stage failed; continuing with backtest results only")
		walkforward = nil
	}

	gapCfg := validation.DefaultGapConfig()
	gapCfg.ConfidenceLevel = o.cfg.ConfidenceLevel
	gap := validation.NewGapAnalyzer(gapCfg).Analyze(backtest, walkforward)

	report := &ValidationReport{
		Symbol:      o.cfg.Symbol,
		GeneratedAt: time.Now().UTC(),
		Bars:        len(bars),
		Backtest:    backtest,
		WalkForward: walkforward,
		Gap:         gap,
		Efficiency:  optimizer.Efficiency(walkforward),
	}

	log.Info().
		Dur("elapsed", time.Since(started)).
		Float64("overfitting_score", gap.OverfittingScore).
		Str("recommendation", gap.Recommendation).
		Msg("validation complete")

	return report, nil
}
