package opener

import (
	"sync/atomic"
	"time"
)

// ServiceMetrics are the agent's in-process counters, logged periodically.
type ServiceMetrics struct {
	totalOpened     int64
	totalFailed     int64
	totalSkipped    int64
	totalDurationNs int64
	startedNs       int64
}

type Stats struct {
	Opened        int64
	Failed        int64
	Skipped       int64
	AvgDuration   time.Duration
	UptimeSeconds float64
}

func NewServiceMetrics() *ServiceMetrics {
	return &ServiceMetrics{
		startedNs: time.Now().UnixNano(),
	}
}

func (m *ServiceMetrics) RecordOpened(duration time.Duration) {
	atomic.AddInt64(&m.totalOpened, 1)
	atomic.AddInt64(&m.totalDurationNs, int64(duration))
}

func (m *ServiceMetrics) RecordFailure() {
	atomic.AddInt64(&m.totalFailed, 1)
}

// RecordSkipped counts redeliveries of entries already opened.
func (m *ServiceMetrics) RecordSkipped() {
	atomic.AddInt64(&m.totalSkipped, 1)
}

func (m *ServiceMetrics) GetStats() Stats {
	opened := atomic.LoadInt64(&m.totalOpened)
	s := Stats{
		Opened:        opened,
		Failed:        atomic.LoadInt64(&m.totalFailed),
		Skipped:       atomic.LoadInt64(&m.totalSkipped),
		UptimeSeconds: time.Since(time.Unix(0, atomic.LoadInt64(&m.startedNs))).Seconds(),
	}
	if opened > 0 {
		s.AvgDuration = time.Duration(atomic.LoadInt64(&m.totalDurationNs) / opened)
	}
	return s
}
