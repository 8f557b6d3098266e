package validation

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/algotrendy/strategy-validator/internal/cv"
	"github.com/algotrendy/strategy-validator/internal/simulator"
	"github.com/algotrendy/strategy-validator/internal/verrors"
	"github.com/algotrendy/strategy-validator/pkg/types"
)

// BacktestConfig tunes the purged cross-validation backtest stage.
type BacktestConfig struct {
	MinTrainBars int
	MinTestBars  int
	FoldTimeout  time.Duration
	Workers      int
}

// DefaultBacktestConfig matches the standard validation run.
func DefaultBacktestConfig() BacktestConfig {
	return BacktestConfig{
		MinTrainBars: 100,
		MinTestBars:  20,
		FoldTimeout:  5 * time.Minute,
	}
}

// BacktestRunner evaluates a strategy with purged train/test folds: per
// fold it trains a fresh model, predicts the test window, simulates the
// predicted signals and pools everything into a single summary.
type BacktestRunner struct {
	factory  ModelFactory
	features FeatureCalculator
	labels   LabelGenerator
	splitter cv.Splitter
	simCfg   simulator.SimConfig
	cfg      BacktestConfig
}

// NewBacktestRunner wires the stage from its capabilities.
func NewBacktestRunner(factory ModelFactory, features FeatureCalculator, labels LabelGenerator, splitter cv.Splitter, simCfg simulator.SimConfig, cfg BacktestConfig) *BacktestRunner {
	return &BacktestRunner{
		factory:  factory,
		features: features,
		labels:   labels,
		splitter: splitter,
		simCfg:   simCfg,
		cfg:      cfg,
	}
}

type foldOutcome struct {
	completed bool
	trades    []simulator.Trade
	curve     []simulator.EquityPoint
	actual    []types.Signal
	predicted []types.Signal
}

// Run executes every purged fold and aggregates one PerformanceMetrics.
// Individual thin or failing folds are skipped with a warning; the run
// fails with ErrInsufficientData only when no fold completes.
func (r *BacktestRunner) Run(ctx context.Context, bars []types.PriceBar) (simulator.PerformanceMetrics, error) {
	var zero simulator.PerformanceMetrics
	if len(bars) == 0 {
		return zero, verrors.NewInsufficientData(verrors.StageBacktest, "no bars supplied")
	}

	features, err := r.features.Calculate(bars)
	if err != nil {
		return zero, verrors.NewConfiguration(verrors.StageBacktest, "feature calculation failed: %v", err)
	}
	labels := r.labels.Generate(bars)

	folds, err := r.splitter.Split(len(bars), types.Timestamps(bars))
	if err != nil {
		return zero, verrors.NewConfiguration(verrors.StageBacktest, "splitter failed: %v", err)
	}
	if len(folds) == 0 {
		return zero, verrors.NewInsufficientData(verrors.StageBacktest, "splitter produced no folds from %d bars", len(bars))
	}

	log.Info().Int("folds", len(folds)).Int("bars", len(bars)).Msg("starting purged backtest")

	outcomes := make([]foldOutcome, len(folds))
	pool := newFoldPool(r.cfg.Workers, r.cfg.FoldTimeout)
	pool.run(ctx, len(folds), func(ctx context.Context, i int) {
		outcomes[i] = r.runFold(ctx, pool, folds[i], bars, features, labels)
	})

	var (
		tradeSets  [][]simulator.Trade
		curves     [][]simulator.EquityPoint
		actuals    []types.Signal
		predictees []types.Signal
		completed  int
	)
	for _, o := range outcomes {
		if !o.completed {
			continue
		}
		completed++
		tradeSets = append(tradeSets, o.trades)
		curves = append(curves, o.curve)
		actuals = append(actuals, o.actual...)
		predictees = append(predictees, o.predicted...)
	}

	if completed == 0 {
		return zero, verrors.NewInsufficientData(verrors.StageBacktest,
			"all %d folds below %d-bar minimum or failed", len(folds), r.cfg.MinTrainBars)
	}

	metrics := simulator.SummarizePooled(tradeSets, curves, r.simCfg.InitialCapital)
	metrics.Accuracy, metrics.Precision, metrics.Recall, metrics.F1 = simulator.ScoreSignals(actuals, predictees)

	log.Info().
		Int("completed_folds", completed).
		Float64("accuracy", metrics.Accuracy).
		Float64("sharpe", metrics.SharpeRatio).
		Float64("max_drawdown", metrics.MaxDrawdown).
		Msg("backtest complete")

	return metrics, nil
}

func (r *BacktestRunner) runFold(ctx context.Context, pool *foldPool, fold cv.Fold, bars []types.PriceBar, features [][]float64, labels []types.Signal) foldOutcome {
	if len(fold.TrainIdx) < r.cfg.MinTrainBars || len(fold.TestIdx) < r.cfg.MinTestBars {
		log.Warn().
			Int("fold", fold.ID).
			Int("train_bars", len(fold.TrainIdx)).
			Int("test_bars", len(fold.TestIdx)).
			Msg("fold skipped: below minimum bar count")
		return foldOutcome{}
	}

	model := r.factory()
	trainX := gatherRows(features, fold.TrainIdx)
	trainY := gatherSignals(labels, fold.TrainIdx)
	testX := gatherRows(features, fold.TestIdx)

	var predicted []types.Signal
	err := pool.callModel(ctx, func() error {
		if err := model.Fit(trainX, trainY); err != nil {
			return err
		}
		var err error
		predicted, err = model.Predict(testX)
		return err
	})
	if err != nil {
		log.Warn().Err(verrors.NewModelFailure(verrors.StageBacktest, err)).
			Int("fold", fold.ID).
			Msg("fold skipped: model failure")
		return foldOutcome{}
	}

	testBars := gatherBars(bars, fold.TestIdx)
	if len(predicted) != len(testBars) {
		log.Warn().Int("fold", fold.ID).Int("predicted", len(predicted)).Int("bars", len(testBars)).
			Msg("fold skipped: prediction length mismatch")
		return foldOutcome{}
	}

	trades, curve, err := simulator.Simulate(testBars, predicted, r.simCfg)
	if err != nil {
		log.Warn().Err(err).Int("fold", fold.ID).Msg("fold skipped: simulation failed")
		return foldOutcome{}
	}

	return foldOutcome{
		completed: true,
		trades:    trades,
		curve:     curve,
		actual:    gatherSignals(labels, fold.TestIdx),
		predicted: predicted,
	}
}
