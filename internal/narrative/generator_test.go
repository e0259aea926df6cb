package narrative

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/fulcrum/internal/config"
)

type fakeCompleter struct {
	calls atomic.Int64
	text  string
	err   error
	delay time.Duration
}

func (f *fakeCompleter) Complete(ctx context.Context, model, prompt string) (string, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func testConfig() config.NarrativeConfig {
	return config.NarrativeConfig{
		Enabled:   true,
		Model:     "claude-sonnet-4-5",
		Workers:   2,
		Timeout:   time.Second,
		CacheSize: 4,
	}
}

func TestNarrate(t *testing.T) {
	client := &fakeCompleter{text: "Steel rang out and the bandits broke."}
	g := NewGenerator(testConfig(), client, zaptest.NewLogger(t))

	text := g.Narrate(context.Background(), "enc-1", []string{"ava attacks", "bandit falls"})
	assert.Equal(t, "Steel rang out and the bandits broke.", text)
	assert.Equal(t, int64(1), client.calls.Load())
}

func TestNarrateDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	client := &fakeCompleter{text: "should not be used"}
	g := NewGenerator(cfg, client, zaptest.NewLogger(t))

	text := g.Narrate(context.Background(), "enc-1", []string{"ava attacks"})
	assert.Equal(t, FallbackText, text)
	assert.Zero(t, client.calls.Load())
}

func TestNarrateEmptyLog(t *testing.T) {
	client := &fakeCompleter{text: "should not be used"}
	g := NewGenerator(testConfig(), client, zaptest.NewLogger(t))

	assert.Equal(t, FallbackText, g.Narrate(context.Background(), "enc-1", nil))
	assert.Zero(t, client.calls.Load())
}

func TestNarrateBackendErrorFallsBack(t *testing.T) {
	client := &fakeCompleter{err: errors.New("boom")}
	g := NewGenerator(testConfig(), client, zaptest.NewLogger(t))

	text := g.Narrate(context.Background(), "enc-1", []string{"ava attacks"})
	assert.Equal(t, FallbackText, text)
}

func TestNarrateTimeoutFallsBack(t *testing.T) {
	cfg := testConfig()
	cfg.Timeout = 10 * time.Millisecond
	client := &fakeCompleter{text: "too late", delay: time.Second}
	g := NewGenerator(cfg, client, zaptest.NewLogger(t))

	start := time.Now()
	text := g.Narrate(context.Background(), "enc-1", []string{"ava attacks"})
	assert.Equal(t, FallbackText, text)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestNarrateCachesByLog(t *testing.T) {
	client := &fakeCompleter{text: "A hard-won victory."}
	g := NewGenerator(testConfig(), client, zaptest.NewLogger(t))
	log := []string{"ava attacks", "bandit falls"}

	first := g.Narrate(context.Background(), "enc-1", log)
	second := g.Narrate(context.Background(), "enc-2", log)
	require.Equal(t, first, second)
	assert.Equal(t, int64(1), client.calls.Load())

	g.Narrate(context.Background(), "enc-3", []string{"different log"})
	assert.Equal(t, int64(2), client.calls.Load())
}

func TestNarrateCacheEvictsOldest(t *testing.T) {
	cfg := testConfig()
	cfg.CacheSize = 2
	client := &fakeCompleter{text: "prose"}
	g := NewGenerator(cfg, client, zaptest.NewLogger(t))

	logA := []string{"log a"}
	logB := []string{"log b"}
	logC := []string{"log c"}

	g.Narrate(context.Background(), "a", logA)
	g.Narrate(context.Background(), "b", logB)
	g.Narrate(context.Background(), "c", logC)
	require.Equal(t, int64(3), client.calls.Load())

	// logA was evicted; logC is still cached.
	g.Narrate(context.Background(), "c2", logC)
	assert.Equal(t, int64(3), client.calls.Load())
	g.Narrate(context.Background(), "a2", logA)
	assert.Equal(t, int64(4), client.calls.Load())
}

func TestNarrateFailureNotCached(t *testing.T) {
	client := &fakeCompleter{err: errors.New("boom")}
	g := NewGenerator(testConfig(), client, zaptest.NewLogger(t))
	log := []string{"ava attacks"}

	g.Narrate(context.Background(), "enc-1", log)
	client.err = nil
	client.text = "Recovered prose."

	assert.Equal(t, "Recovered prose.", g.Narrate(context.Background(), "enc-1", log))
}

func TestNarrateConcurrentCallsBounded(t *testing.T) {
	cfg := testConfig()
	cfg.Workers = 2
	cfg.CacheSize = 0
	client := &fakeCompleter{text: "prose", delay: 20 * time.Millisecond}
	g := NewGenerator(cfg, client, zaptest.NewLogger(t))

	done := make(chan struct{})
	for i := 0; i < 6; i++ {
		go func(i int) {
			defer func() { done <- struct{}{} }()
			g.Narrate(context.Background(), "enc", []string{fmt.Sprintf("line %d", i)})
		}(i)
	}
	for i := 0; i < 6; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("narration goroutines did not finish")
		}
	}
	assert.Equal(t, int64(6), client.calls.Load())
}
