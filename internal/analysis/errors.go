package analysis

import (
	"errors"
	"fmt"
)

// ErrAnalysisFailed matches every error returned by AnalyzeMarket.
var ErrAnalysisFailed = errors.New("analysis failed")

// FailedError carries the symbol and the underlying cause of a failed analysis.
type FailedError struct {
	Symbol string
	Stage  string
	Err    error
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("analysis of %s failed at %s: %v", e.Symbol, e.Stage, e.Err)
}

func (e *FailedError) Unwrap() error { return e.Err }

func (e *FailedError) Is(target error) bool { return target == ErrAnalysisFailed }

func failed(symbol, stage string, err error) error {
	return &FailedError{Symbol: symbol, Stage: stage, Err: err}
}
