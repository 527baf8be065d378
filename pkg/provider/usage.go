package provider

import (
	"fmt"
	"time"
)

// Per-million-token prices in USD.
const (
	priceInput      = 3.0
	priceOutput     = 15.0
	priceCacheWrite = 3.75
	priceCacheRead  = 0.30
)

// Tracker accumulates token usage and wall time across API calls.
type Tracker struct {
	InputTokens         int64
	OutputTokens        int64
	CacheCreationTokens int64
	CacheReadTokens     int64
	APICalls            int
	APIDuration         time.Duration

	last Usage
}

// Add records one completed API call.
func (t *Tracker) Add(u Usage, elapsed time.Duration) {
	t.InputTokens += u.InputTokens
	t.OutputTokens += u.OutputTokens
	t.CacheCreationTokens += u.CacheCreationTokens
	t.CacheReadTokens += u.CacheReadTokens
	t.APICalls++
	t.APIDuration += elapsed
	t.last = u
}

// Cost returns the accumulated spend in USD.
func (t *Tracker) Cost() float64 {
	return float64(t.InputTokens)/1e6*priceInput +
		float64(t.OutputTokens)/1e6*priceOutput +
		float64(t.CacheCreationTokens)/1e6*priceCacheWrite +
		float64(t.CacheReadTokens)/1e6*priceCacheRead
}

// StepSummary describes the most recent call.
func (t *Tracker) StepSummary() string {
	return fmt.Sprintf("in=%d out=%d cache_write=%d cache_read=%d",
		t.last.InputTokens, t.last.OutputTokens, t.last.CacheCreationTokens, t.last.CacheReadTokens)
}

// Summary describes the whole run.
func (t *Tracker) Summary() string {
	return fmt.Sprintf(
		"%d API calls in %.1fs | tokens: %d in, %d out, %d cache write, %d cache read | est. cost $%.4f",
		t.APICalls, t.APIDuration.Seconds(),
		t.InputTokens, t.OutputTokens, t.CacheCreationTokens, t.CacheReadTokens,
		t.Cost())
}
