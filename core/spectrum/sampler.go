package spectrum

import (
	"sync"
	"time"
)

// Source provides the most recent n mono samples, oldest first. The audio
// handle's tap is the one real implementation.
type Source interface {
	Samples(n int) []float64
}

// Publisher receives each freshly sampled snapshot.
type Publisher func(Snapshot)

// Sampler runs a single cancellable loop at frame cadence while playback is
// active. Start while running is a no-op, Stop is idempotent, and a stale
// loop can never publish after Stop: every publish is gated on the loop's
// generation.
type Sampler struct {
	analyzer *Analyzer
	interval time.Duration
	publish  Publisher

	mu         sync.Mutex
	generation uint64
	running    bool
	last       Snapshot
}

// NewSampler creates a sampler ticking frameRate times per second.
func NewSampler(analyzer *Analyzer, frameRate int, publish Publisher) *Sampler {
	if frameRate < 1 {
		frameRate = 1
	}
	return &Sampler{
		analyzer: analyzer,
		interval: time.Second / time.Duration(frameRate),
		publish:  publish,
	}
}

// Start begins sampling from src. No-op when already running or when there
// is nothing to sample (no analyzer, no source).
func (s *Sampler) Start(src Source) {
	if src == nil || s.analyzer == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.generation++
	s.running = true
	go s.loop(s.generation, src)
}

// Stop cancels the active loop. Snapshots already published stay with their
// consumers; nothing further is published.
func (s *Sampler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	s.generation++
}

// Running reports whether a loop is active.
func (s *Sampler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Last returns the most recently published snapshot (zero before the first
// frame). Consumers render it collapsed while playback is stopped.
func (s *Sampler) Last() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Sampler) loop(gen uint64, src Source) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for range ticker.C {
		samples := src.Samples(WindowSize)
		if samples == nil {
			// Tap not wired (silent engine); keep ticking until stopped.
			if s.stale(gen) {
				return
			}
			continue
		}
		snap := s.analyzer.Analyze(samples)

		s.mu.Lock()
		if gen != s.generation || !s.running {
			s.mu.Unlock()
			return
		}
		s.last = snap
		publish := s.publish
		s.mu.Unlock()

		if publish != nil {
			publish(snap)
		}
	}
}

func (s *Sampler) stale(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen != s.generation || !s.running
}
