package main

import (
	"flag"
	"fmt"
)

// ValidateFlags holds all command line flags for the validate command.
type ValidateFlags struct {
	// Configuration
	ConfigFile *string
	DataFile   *string
	Symbol     *string

	// Strategy parameters
	FastWindow *int
	SlowWindow *int

	// Output
	JSONOut  *string
	ExcelOut *string
	Verbose  *bool

	ShowVersion *bool
}

// NewValidateFlags registers all flags with their defaults.
func NewValidateFlags() *ValidateFlags {
	return &ValidateFlags{
		ConfigFile: flag.String("config", "", "Path to JSON or YAML configuration file"),
		DataFile:   flag.String("data", "", "Path to OHLCV CSV file (synthetic data when omitted)"),
		Symbol:     flag.String("symbol", "", "Symbol label for the report"),

		FastWindow: flag.Int("fast", 10, "Fast SMA window for the crossover strategy"),
		SlowWindow: flag.Int("slow", 30, "Slow SMA window for the crossover strategy"),

		JSONOut:  flag.String("json", "", "Write full report to this JSON file"),
		ExcelOut: flag.String("excel", "", "Write full report to this Excel workbook"),
		Verbose:  flag.Bool("verbose", false, "Enable debug logging"),

		ShowVersion: flag.Bool("version", false, "Print version and exit"),
	}
}

// Validate rejects flag combinations the run cannot proceed with.
func (f *ValidateFlags) Validate() error {
	if *f.FastWindow <= 0 {
		return fmt.Errorf("fast window must be positive, got %d", *f.FastWindow)
	}
	if *f.SlowWindow <= *f.FastWindow {
		return fmt.Errorf("slow window (%d) must exceed fast window (%d)", *f.SlowWindow, *f.FastWindow)
	}
	return nil
}
