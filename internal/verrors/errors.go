// Package verrors carries the validation pipeline's error taxonomy.
// Fatal errors abort a stage; everything recoverable is logged and skipped
// at fold granularity instead of surfacing here.
package verrors

import (
	"errors"
	"fmt"
)

// Stage identifies which pipeline stage produced an error.
type Stage string

const (
	StageBacktest    Stage = "backtest"
	StageWalkForward Stage = "walk_forward"
	StageGapAnalysis Stage = "gap_analysis"
)

// Category classifies validation errors.
type Category string

const (
	// CategoryInsufficientData means a stage could not produce a single
	// valid fold or period. Fatal for that stage.
	CategoryInsufficientData Category = "INSUFFICIENT_DATA"
	// CategoryModelFailure means the model capability failed during
	// fit or predict. Fatal per fold, recovered at pipeline level.
	CategoryModelFailure Category = "MODEL_FAILURE"
	// CategoryConfiguration means the run was misconfigured. Fatal.
	CategoryConfiguration Category = "CONFIGURATION"
)

// ErrInsufficientData is the sentinel matched by errors.Is for fatal
// data-starvation failures.
var ErrInsufficientData = errors.New("insufficient data")

// ValidationError is a categorized pipeline error with stage context.
type ValidationError struct {
	Stage      Stage
	Category   Category
	Message    string
	Underlying error
}

func (e *ValidationError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Stage, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Stage, e.Category, e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Underlying != nil {
		return e.Underlying
	}
	if e.Category == CategoryInsufficientData {
		return ErrInsufficientData
	}
	return nil
}

// IsFatal reports whether the error should abort the stage that raised it.
func (e *ValidationError) IsFatal() bool {
	return e.Category == CategoryInsufficientData || e.Category == CategoryConfiguration
}

// IsFatal reports whether an arbitrary error carries a fatal validation
// category. Non-validation errors are treated as fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.IsFatal()
	}
	return true
}

// NewInsufficientData builds the fatal all-folds-skipped error. The message
// should identify the stage and the reason, e.g. "all 5 folds below
// 100-bar minimum".
func NewInsufficientData(stage Stage, format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Stage:    stage,
		Category: CategoryInsufficientData,
		Message:  fmt.Sprintf(format, args...),
	}
}

// NewModelFailure wraps an error thrown by the model capability.
func NewModelFailure(stage Stage, err error) *ValidationError {
	return &ValidationError{
		Stage:      stage,
		Category:   CategoryModelFailure,
		Message:    "model capability failed",
		Underlying: err,
	}
}

// NewConfiguration flags an invalid run configuration.
func NewConfiguration(stage Stage, format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Stage:    stage,
		Category: CategoryConfiguration,
		Message:  fmt.Sprintf(format, args...),
	}
}
