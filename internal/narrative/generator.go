package narrative

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fulcrum/internal/config"
)

// FallbackText is returned whenever narration is disabled or generation fails.
const FallbackText = "The dust settles over the battlefield."

const promptPreamble = "Summarize the following combat log as two or three " +
	"sentences of vivid past-tense prose. Do not invent events that are not " +
	"in the log.\n\n"

// Generator produces prose summaries of finished encounters. It bounds
// concurrent backend calls with a semaphore and caches results keyed by the
// log contents so replayed encounters do not cost a second API call.
type Generator struct {
	logger *zap.Logger
	client Completer
	cfg    config.NarrativeConfig

	sem chan struct{}

	mu    sync.Mutex
	cache map[uint64]string
	order []uint64
}

// NewGenerator creates a Generator using the given backend client.
//
// Precondition: logger must be non-nil. client may be nil only when
// cfg.Enabled is false.
// Postcondition: Returns a Generator whose Narrate never blocks longer than
// cfg.Timeout per backend call.
func NewGenerator(cfg config.NarrativeConfig, client Completer, logger *zap.Logger) *Generator {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Generator{
		logger: logger,
		client: client,
		cfg:    cfg,
		sem:    make(chan struct{}, workers),
		cache:  make(map[uint64]string),
	}
}

// Narrate returns a prose summary of the encounter log.
//
// Postcondition: Always returns non-empty text; failures yield FallbackText.
func (g *Generator) Narrate(ctx context.Context, encounterID string, log []string) string {
	if !g.cfg.Enabled || g.client == nil || len(log) == 0 {
		return FallbackText
	}

	key := logKey(log)
	if text, ok := g.cached(key); ok {
		return text
	}

	select {
	case g.sem <- struct{}{}:
	case <-ctx.Done():
		g.logger.Warn("narration skipped, context done",
			zap.String("encounter_id", encounterID),
			zap.Error(ctx.Err()))
		return FallbackText
	}
	defer func() { <-g.sem }()

	callCtx := ctx
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	text, err := g.client.Complete(callCtx, g.cfg.Model, promptPreamble+strings.Join(log, "\n"))
	if err != nil {
		g.logger.Warn("narration failed, using fallback",
			zap.String("encounter_id", encounterID),
			zap.Error(err))
		return FallbackText
	}

	g.store(key, text)
	return text
}

func (g *Generator) cached(key uint64) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	text, ok := g.cache[key]
	return text, ok
}

// store inserts into the cache, evicting the oldest entry at capacity.
func (g *Generator) store(key uint64, text string) {
	if g.cfg.CacheSize <= 0 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.cache[key]; ok {
		return
	}
	for len(g.cache) >= g.cfg.CacheSize && len(g.order) > 0 {
		oldest := g.order[0]
		g.order = g.order[1:]
		delete(g.cache, oldest)
	}
	g.cache[key] = text
	g.order = append(g.order, key)
}

func logKey(log []string) uint64 {
	h := fnv.New64a()
	for _, line := range log {
		h.Write([]byte(line))
		h.Write([]byte{0})
	}
	return h.Sum64()
}
