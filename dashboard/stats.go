package dashboard

import "sync"

// Stats is a crawl-wide counter set, updated by the worker as it drains
// the queue. Counts are broken down by resource type and skip reason so
// the dashboard can report throughput per type and skips per reason.
type Stats struct {
	mu            sync.Mutex
	processed     map[string]int64
	skippedByKind map[string]int64
	failed        int64
}

// NewStats builds an empty counter set.
func NewStats() *Stats {
	return &Stats{
		processed:     make(map[string]int64),
		skippedByKind: make(map[string]int64),
	}
}

// IncProcessed records one successfully processed request of the given
// resource type.
func (s *Stats) IncProcessed(elementType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed[elementType]++
}

// IncSkipped records one policy- or handler-gated skip, by its Skip.Kind
// ("no handler" | "excluded").
func (s *Stats) IncSkipped(kind string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skippedByKind[kind]++
}

// IncFailed records one request that returned an error.
func (s *Stats) IncFailed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed++
}

// Snapshot is a point-in-time read of the counters, safe to marshal.
type Snapshot struct {
	ProcessedByType map[string]int64 `json:"processedByType"`
	SkippedByKind   map[string]int64 `json:"skippedByKind"`
	Failed          int64            `json:"failed"`
}

// Snapshot reads the current counter values.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ProcessedByType: make(map[string]int64, len(s.processed)),
		SkippedByKind:   make(map[string]int64, len(s.skippedByKind)),
		Failed:          s.failed,
	}
	for k, v := range s.processed {
		snap.ProcessedByType[k] = v
	}
	for k, v := range s.skippedByKind {
		snap.SkippedByKind[k] = v
	}
	return snap
}
