package web

import (
	"sync"
	"time"

	"github.com/genert/emotion"
)

// LastResult JSON view of the latest tick
type LastResult struct {
	Seq      uint64            `json:"seq"`
	At       time.Time         `json:"at"`
	Kind     string            `json:"kind"`
	Decision *emotion.Decision `json:"decision,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// Board is a publisher remembering the latest tick result for the status API.
type Board struct {
	mu   sync.RWMutex
	last *LastResult
}

// Publish implements emotion.Publisher.
func (b *Board) Publish(r emotion.TickResult) {
	last := &LastResult{Seq: r.Seq, At: r.At, Kind: r.Kind.String()}
	switch r.Kind {
	case emotion.ResultDecision:
		d := r.Decision
		last.Decision = &d
	case emotion.ResultError:
		last.Error = r.Err.Error()
	}
	b.mu.Lock()
	b.last = last
	b.mu.Unlock()
}

// Last returns the latest result, nil before the first tick.
func (b *Board) Last() *LastResult {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.last
}
