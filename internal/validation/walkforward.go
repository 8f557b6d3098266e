package validation

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/algotrendy/strategy-validator/internal/simulator"
	"github.com/algotrendy/strategy-validator/pkg/types"
)

// WalkForwardConfig tunes the rolling re-optimization stage.
type WalkForwardConfig struct {
	TrainDays    int
	TestDays     int
	StepDays     int
	MinTrainBars int
	MinTestBars  int
	FoldTimeout  time.Duration
	Workers      int
}

// DefaultWalkForwardConfig is the standard 3-year train / 3-month test /
// 1-month step schedule.
func DefaultWalkForwardConfig() WalkForwardConfig {
	return WalkForwardConfig{
		TrainDays:    365 * 3,
		TestDays:     90,
		StepDays:     30,
		MinTrainBars: 100,
		MinTestBars:  20,
		FoldTimeout:  5 * time.Minute,
	}
}

// WindowSpec is one train/test window pair generated by the calendar
// cursor. Consumed once, discarded after the period completes.
type WindowSpec struct {
	Seq        int
	TrainStart time.Time
	TrainEnd   time.Time
	TestStart  time.Time
	TestEnd    time.Time
	trainLo    int
	trainHi    int
	testLo     int
	testHi     int
}

// WalkForwardOptimizer slides a fixed-width training window and testing
// window across the full range in fixed steps, retraining a fresh model at
// every step and summarizing each out-of-sample test period.
type WalkForwardOptimizer struct {
	factory  ModelFactory
	features FeatureCalculator
	labels   LabelGenerator
	simCfg   simulator.SimConfig
	cfg      WalkForwardConfig
}

// NewWalkForwardOptimizer wires the stage from its capabilities.
func NewWalkForwardOptimizer(factory ModelFactory, features FeatureCalculator, labels LabelGenerator, simCfg simulator.SimConfig, cfg WalkForwardConfig) *WalkForwardOptimizer {
	return &WalkForwardOptimizer{
		factory:  factory,
		features: features,
		labels:   labels,
		simCfg:   simCfg,
		cfg:      cfg,
	}
}

// Run produces one PerformanceMetrics per completed period, in
// chronological order. Thin windows are skipped with a warning. Zero
// completed periods is a valid result and comes back as an empty slice,
// not an error; the gap stage handles the empty series.
func (o *WalkForwardOptimizer) Run(ctx context.Context, bars []types.PriceBar) ([]simulator.PerformanceMetrics, error) {
	if len(bars) == 0 {
		return nil, nil
	}

	features, err := o.features.Calculate(bars)
	if err != nil {
		return nil, err
	}
	labels := o.labels.Generate(bars)

	specs := o.windows(bars)
	log.Info().
		Int("candidate_windows", len(specs)).
		Int("train_days", o.cfg.TrainDays).
		Int("test_days", o.cfg.TestDays).
		Int("step_days", o.cfg.StepDays).
		Msg("starting walk-forward optimization")

	results := make([]*simulator.PerformanceMetrics, len(specs))
	pool := newFoldPool(o.cfg.Workers, o.cfg.FoldTimeout)
	pool.run(ctx, len(specs), func(ctx context.Context, i int) {
		results[i] = o.runPeriod(ctx, pool, specs[i], bars, features, labels)
	})

	var completed []simulator.PerformanceMetrics
	for _, r := range results {
		if r != nil {
			completed = append(completed, *r)
		}
	}

	log.Info().Int("periods", len(completed)).Msg("walk-forward complete")
	return completed, nil
}

// windows runs the calendar cursor: cursor starts one training window past
// the first bar and advances by the step until the next test window would
// run off the end of the data.
func (o *WalkForwardOptimizer) windows(bars []types.PriceBar) []WindowSpec {
	ts := types.Timestamps(bars)
	start := ts[0]
	end := ts[len(ts)-1]

	trainDur := time.Duration(o.cfg.TrainDays) * 24 * time.Hour
	testDur := time.Duration(o.cfg.TestDays) * 24 * time.Hour
	stepDur := time.Duration(o.cfg.StepDays) * 24 * time.Hour

	var specs []WindowSpec
	seq := 0
	for cursor := start.Add(trainDur); !cursor.Add(testDur).After(end); cursor = cursor.Add(stepDur) {
		spec := WindowSpec{
			Seq:        seq,
			TrainStart: cursor.Add(-trainDur),
			TrainEnd:   cursor,
			TestStart:  cursor,
			TestEnd:    cursor.Add(testDur),
		}
		spec.trainLo = lowerBound(ts, spec.TrainStart)
		spec.trainHi = lowerBound(ts, spec.TrainEnd)
		spec.testLo = spec.trainHi
		spec.testHi = lowerBound(ts, spec.TestEnd)
		specs = append(specs, spec)
		seq++
	}
	return specs
}

func (o *WalkForwardOptimizer) runPeriod(ctx context.Context, pool *foldPool, spec WindowSpec, bars []types.PriceBar, features [][]float64, labels []types.Signal) *simulator.PerformanceMetrics {
	trainN := spec.trainHi - spec.trainLo
	testN := spec.testHi - spec.testLo
	if trainN < o.cfg.MinTrainBars || testN < o.cfg.MinTestBars {
		log.Warn().
			Int("period", spec.Seq+1).
			Int("train_bars", trainN).
			Int("test_bars", testN).
			Msg("walk-forward period skipped: insufficient data")
		return nil
	}

	model := o.factory()
	var predicted []types.Signal
	err := pool.callModel(ctx, func() error {
		if err := model.Fit(features[spec.trainLo:spec.trainHi], labels[spec.trainLo:spec.trainHi]); err != nil {
			return err
		}
		var err error
		predicted, err = model.Predict(features[spec.testLo:spec.testHi])
		return err
	})
	if err != nil {
		log.Warn().Err(err).Int("period", spec.Seq+1).Msg("walk-forward period skipped: model failure")
		return nil
	}

	testBars := bars[spec.testLo:spec.testHi]
	if len(predicted) != len(testBars) {
		log.Warn().Int("period", spec.Seq+1).Msg("walk-forward period skipped: prediction length mismatch")
		return nil
	}

	trades, curve, err := simulator.Simulate(testBars, predicted, o.simCfg)
	if err != nil {
		log.Warn().Err(err).Int("period", spec.Seq+1).Msg("walk-forward period skipped: simulation failed")
		return nil
	}

	m := simulator.Summarize(trades, curve, o.simCfg.InitialCapital)
	m.Accuracy, m.Precision, m.Recall, m.F1 = simulator.ScoreSignals(labels[spec.testLo:spec.testHi], predicted)

	log.Info().
		Int("period", spec.Seq+1).
		Str("test_start", spec.TestStart.Format("2006-01-02")).
		Str("test_end", spec.TestEnd.Format("2006-01-02")).
		Float64("accuracy", m.Accuracy).
		Float64("sharpe", m.SharpeRatio).
		Msg("walk-forward period complete")

	return &m
}

// Efficiency is the ratio of mean out-of-sample Sharpe to the estimated
// in-sample Sharpe. In-sample scores are not recorded during the run, so
// the estimate applies the conventional 1.5x in-sample multiplier. Purely
// informational.
func (o *WalkForwardOptimizer) Efficiency(results []simulator.PerformanceMetrics) float64 {
	if len(results) == 0 {
		return 0
	}
	var oos float64
	for _, r := range results {
		oos += r.SharpeRatio
	}
	oos /= float64(len(results))

	estimatedIS := oos * 1.5
	if estimatedIS <= 0 {
		return 0
	}
	return oos / estimatedIS
}

// lowerBound returns the index of the first bar at or after t.
func lowerBound(ts []time.Time, t time.Time) int {
	return sort.Search(len(ts), func(i int) bool { return !ts[i].Before(t) })
}
