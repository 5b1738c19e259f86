package graph

import "sync"

// ProgressFunc is invoked twice per module during a traversal: once on
// discovery, once on finish. Both counters are cumulative across the
// whole call, not per-module.
type ProgressFunc func(finished, discovered int)

// progressTracker serializes progress bookkeeping so that, even
// though discovery and finishing happen from concurrent expansion
// goroutines, the sequence of calls observed by a ProgressFunc stays
// consistent: finished and discovered are each non-decreasing, and
// their sum grows by exactly 1 per invocation.
type progressTracker struct {
	mu         sync.Mutex
	onProgress ProgressFunc
	finished   int
	discovered int
}

func newProgressTracker(fn ProgressFunc) *progressTracker {
	return &progressTracker{onProgress: fn}
}

func (p *progressTracker) discover() {
	if p == nil || p.onProgress == nil {
		return
	}
	p.mu.Lock()
	p.discovered++
	finished, discovered := p.finished, p.discovered
	p.mu.Unlock()
	p.onProgress(finished, discovered)
}

func (p *progressTracker) finish() {
	if p == nil || p.onProgress == nil {
		return
	}
	p.mu.Lock()
	p.finished++
	finished, discovered := p.finished, p.discovered
	p.mu.Unlock()
	p.onProgress(finished, discovered)
}
