package fetch

import (
	"sync"
	"time"
)

// Pacer enforces a fixed delay between consecutive page fetches. The
// interval is a floor, not an adaptive backoff, and applies whether the
// previous fetch succeeded or failed.
type Pacer struct {
	mu            sync.Mutex
	nextAllowedAt time.Time
	interval      time.Duration
}

func NewPacer(seconds int) *Pacer {
	if seconds < 1 {
		seconds = 1
	}
	return &Pacer{interval: time.Duration(seconds) * time.Second}
}

func (p *Pacer) WaitTurn() {
	p.mu.Lock()
	now := time.Now()
	scheduled := now
	if p.nextAllowedAt.After(now) {
		scheduled = p.nextAllowedAt
	}
	p.nextAllowedAt = scheduled.Add(p.interval)
	p.mu.Unlock()

	if sleep := time.Until(scheduled); sleep > 0 {
		time.Sleep(sleep)
	}
}
