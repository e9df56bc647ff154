package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	SubmissionsCreated  uint64
	SubmissionsFailed   uint64
	SubmissionsDeleted  uint64
	SwapDurationCount   uint64
	SwapDurationTotalNs int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	submissionsCreated  uint64
	submissionsFailed   uint64
	submissionsDeleted  uint64
	swapDurationCount   uint64
	swapDurationTotalNs int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		SubmissionsCreated:  atomic.LoadUint64(&m.submissionsCreated),
		SubmissionsFailed:   atomic.LoadUint64(&m.submissionsFailed),
		SubmissionsDeleted:  atomic.LoadUint64(&m.submissionsDeleted),
		SwapDurationCount:   atomic.LoadUint64(&m.swapDurationCount),
		SwapDurationTotalNs: atomic.LoadInt64(&m.swapDurationTotalNs),
	}
}

func (m *InMemoryRecorder) IncSubmissionCreated() {
	atomic.AddUint64(&m.submissionsCreated, 1)
}

func (m *InMemoryRecorder) IncSubmissionFailed() {
	atomic.AddUint64(&m.submissionsFailed, 1)
}

func (m *InMemoryRecorder) IncSubmissionDeleted() {
	atomic.AddUint64(&m.submissionsDeleted, 1)
}

func (m *InMemoryRecorder) ObserveSwapDuration(d time.Duration) {
	atomic.AddUint64(&m.swapDurationCount, 1)
	atomic.AddInt64(&m.swapDurationTotalNs, d.Nanoseconds())
}
