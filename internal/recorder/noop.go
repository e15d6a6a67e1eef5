package recorder

import "context"

// NoopRecorder is a no-op implementation used when storage is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSignal(_ context.Context, _ *SignalRecord) error { return nil }
func (n *NoopRecorder) RecentSignals(_ context.Context, _ int) ([]SignalRecord, error) {
	return []SignalRecord{}, nil
}
func (n *NoopRecorder) RecordScan(_ context.Context, _ *ScanSummary) error { return nil }
func (n *NoopRecorder) Close() error                                       { return nil }
