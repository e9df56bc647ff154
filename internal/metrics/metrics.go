// Package metrics defines the pluggable counters recorded by the
// submission pipeline.
package metrics

import "time"

// Recorder receives pipeline events. Implementations must be safe for
// concurrent use.
type Recorder interface {
	IncSubmissionCreated()
	IncSubmissionFailed()
	IncSubmissionDeleted()
	ObserveSwapDuration(d time.Duration)
}

// NoopRecorder discards all events.
type NoopRecorder struct{}

// NewNoop returns a Recorder that does nothing.
func NewNoop() *NoopRecorder {
	return &NoopRecorder{}
}

func (*NoopRecorder) IncSubmissionCreated()               {}
func (*NoopRecorder) IncSubmissionFailed()                {}
func (*NoopRecorder) IncSubmissionDeleted()               {}
func (*NoopRecorder) ObserveSwapDuration(_ time.Duration) {}
