// Package data loads candle history for validation runs, either from CSV
// files or from a deterministic synthetic generator used by the demos and
// the test suite.
package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/algotrendy/strategy-validator/pkg/types"
)

// CSVLoader reads OHLCV candles from a CSV file with a header row of
// timestamp,open,high,low,close,volume. Timestamps may be RFC 3339, a
// plain "2006-01-02 15:04:05" datetime or unix milliseconds.
type CSVLoader struct{}

// NewCSVLoader returns a loader for the standard column layout.
func NewCSVLoader() *CSVLoader {
	return &CSVLoader{}
}

// Load reads and validates every row, returning bars sorted by timestamp.
func (l *CSVLoader) Load(path string) ([]types.PriceBar, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = 6

	// Header row.
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	var bars []types.PriceBar
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}

		bar, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("invalid CSV line %d: %w", line, err)
		}
		bars = append(bars, bar)
	}

	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Timestamp.Before(bars[j].Timestamp)
	})

	log.Info().
		Str("file", path).
		Int("bars", len(bars)).
		Dur("span", types.Span(bars)).
		Msg("loaded candle history")
	return bars, nil
}

func parseRecord(record []string) (types.PriceBar, error) {
	ts, err := parseTimestamp(record[0])
	if err != nil {
		return types.PriceBar{}, err
	}

	vals := make([]float64, 5)
	for i := 0; i < 5; i++ {
		v, err := strconv.ParseFloat(record[i+1], 64)
		if err != nil {
			return types.PriceBar{}, fmt.Errorf("column %d: %w", i+1, err)
		}
		vals[i] = v
	}

	bar := types.PriceBar{
		Timestamp: ts,
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
	}
	if bar.Close <= 0 || bar.Open <= 0 {
		return types.PriceBar{}, fmt.Errorf("non-positive price")
	}
	if bar.High < bar.Low {
		return types.PriceBar{}, fmt.Errorf("high %.4f below low %.4f", bar.High, bar.Low)
	}
	return bar, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if ts, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return ts.UTC(), nil
	}
	if ts, err := time.Parse("2006-01-02", s); err == nil {
		return ts.UTC(), nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
