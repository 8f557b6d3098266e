// Command validate runs the full strategy validation pipeline on a candle
// history and reports how much of the backtest edge survives out of sample.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/algotrendy/strategy-validator/internal/config"
	"github.com/algotrendy/strategy-validator/internal/strategy"
	"github.com/algotrendy/strategy-validator/pkg/data"
	"github.com/algotrendy/strategy-validator/pkg/orchestrator"
	"github.com/algotrendy/strategy-validator/pkg/reporting"
	"github.com/algotrendy/strategy-validator/pkg/types"
)

const (
	appName    = "strategy-validator"
	appVersion = "1.0.0"
)

func main() {
	flags := NewValidateFlags()
	flag.Parse()

	if *flags.ShowVersion {
		fmt.Printf("%s v%s\n", appName, appVersion)
		return
	}

	setupLogging(*flags.Verbose)

	if err := flags.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid flags")
	}

	// Optional .env for VALIDATOR_* overrides.
	_ = godotenv.Load()

	cfg, err := config.Load(*flags.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if *flags.Symbol != "" {
		cfg.Symbol = *flags.Symbol
	}

	bars, err := loadBars(*flags.DataFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load candle history")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch := orchestrator.New(
		cfg,
		strategy.NewCrossoverFactory(*flags.FastWindow, *flags.SlowWindow),
		strategy.NewReturnFeatures(),
		strategy.NewForwardReturnLabeler(),
	)

	report, err := orch.RunValidation(ctx, bars)
	if err != nil {
		log.Fatal().Err(err).Msg("validation failed")
	}

	reporting.NewConsoleReporter().Write(report)

	if *flags.JSONOut != "" {
		if err := reporting.WriteJSON(report, *flags.JSONOut); err != nil {
			log.Fatal().Err(err).Msg("failed to write JSON report")
		}
		log.Info().Str("path", *flags.JSONOut).Msg("JSON report written")
	}
	if *flags.ExcelOut != "" {
		if err := reporting.NewExcelReporter().Write(report, *flags.ExcelOut); err != nil {
			log.Fatal().Err(err).Msg("failed to write Excel report")
		}
		log.Info().Str("path", *flags.ExcelOut).Msg("Excel report written")
	}
}

func setupLogging(verbose bool) {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func loadBars(path string) ([]types.PriceBar, error) {
	if path != "" {
		return data.NewCSVLoader().Load(path)
	}
	log.Info().Msg("no data file supplied; using synthetic series")
	return data.GenerateSynthetic(data.DefaultSyntheticConfig()), nil
}
