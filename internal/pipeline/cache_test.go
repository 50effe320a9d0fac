package pipeline

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgpai22/reelsubs/internal/subtitle"
)

func TestCache(t *testing.T) {
	c := NewCache()

	_, ok := c.Get("reels", "subs/a.json")
	assert.False(t, ok)

	c.Set("reels", "subs/a.json", sample)
	got, ok := c.Get("reels", "subs/a.json")
	require.True(t, ok)
	assert.Equal(t, sample, got)

	_, ok = c.Get("other", "subs/a.json")
	assert.False(t, ok)

	got[0].Text = "mutated"
	again, _ := c.Get("reels", "subs/a.json")
	assert.Equal(t, "Hello", again[0].Text, "callers must not alias cached entries")

	c.Invalidate("reels", "subs/a.json")
	assert.Zero(t, c.Len())
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := NewCache()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Go(func() {
			key := []string{"a", "b", "c"}[i%3]
			c.Set("ns", key, []subtitle.Segment{{Start: 0, End: 1, Text: key}})
			_, _ = c.Get("ns", key)
		})
	}
	wg.Wait()
	assert.Equal(t, 3, c.Len())
}
