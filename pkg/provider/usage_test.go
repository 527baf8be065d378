package provider

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTracker(t *testing.T) {
	t.Run("should accumulate usage across calls", func(t *testing.T) {
		tracker := &Tracker{}

		tracker.Add(Usage{InputTokens: 100, OutputTokens: 50}, 2*time.Second)
		tracker.Add(Usage{InputTokens: 200, OutputTokens: 75, CacheReadTokens: 1000}, time.Second)

		assert.Equal(t, int64(300), tracker.InputTokens)
		assert.Equal(t, int64(125), tracker.OutputTokens)
		assert.Equal(t, int64(1000), tracker.CacheReadTokens)
		assert.Equal(t, 2, tracker.APICalls)
		assert.Equal(t, 3*time.Second, tracker.APIDuration)
	})

	t.Run("should price each token class separately", func(t *testing.T) {
		tracker := &Tracker{}
		tracker.Add(Usage{
			InputTokens:         1_000_000,
			OutputTokens:        1_000_000,
			CacheCreationTokens: 1_000_000,
			CacheReadTokens:     1_000_000,
		}, 0)

		assert.InDelta(t, 3.0+15.0+3.75+0.30, tracker.Cost(), 1e-9)
	})

	t.Run("should describe only the latest call in the step summary", func(t *testing.T) {
		tracker := &Tracker{}
		tracker.Add(Usage{InputTokens: 10, OutputTokens: 5}, 0)
		tracker.Add(Usage{InputTokens: 20, OutputTokens: 7}, 0)

		assert.Equal(t, "in=20 out=7 cache_write=0 cache_read=0", tracker.StepSummary())
	})

	t.Run("should summarize the whole run", func(t *testing.T) {
		tracker := &Tracker{}
		tracker.Add(Usage{InputTokens: 100, OutputTokens: 50}, 1500*time.Millisecond)

		summary := tracker.Summary()

		assert.Contains(t, summary, "1 API calls in 1.5s")
		assert.Contains(t, summary, "100 in, 50 out")
	})
}
