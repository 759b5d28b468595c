package upsell

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/whimsicalfrog/frogshop/internal/core/kv"
	"github.com/whimsicalfrog/frogshop/internal/core/logging"
	"github.com/whimsicalfrog/frogshop/internal/metrics"
	"github.com/whimsicalfrog/frogshop/pkg/clock"
	pkgkv "github.com/whimsicalfrog/frogshop/pkg/kv"
)

// DefaultCacheTTL is how long one search term's results are reused.
const DefaultCacheTTL = 60 * time.Second

// Config tunes the engine.
type Config struct {
	MaxResults    int           `yaml:"max_results"`
	MaxKeywords   int           `yaml:"max_keywords"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`
	AffinityLimit int           `yaml:"affinity_limit"`
	Weights       Weights       `yaml:"weights"`
	Hints         []Hint        `yaml:"hints"`
}

// DefaultConfig returns the standard tuning.
func DefaultConfig() Config {
	return Config{
		MaxResults:    DefaultMaxResults,
		MaxKeywords:   DefaultMaxKeywords,
		CacheTTL:      DefaultCacheTTL,
		AffinityLimit: DefaultAffinityLimit,
		Weights:       DefaultWeights(),
		Hints:         DefaultHints(),
	}
}

// Engine produces ranked upsell recommendations.
type Engine struct {
	searcher Searcher
	affinity *Affinity
	scorer   Scorer
	cfg      Config
	clock    clock.Clock
	logger   zerolog.Logger
	metrics  *metrics.Manager
	cache    *pkgkv.Expiring[string, []Product]
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used for cache expiry and timing.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics sets the metrics manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithConfig overrides the tuning. Zero fields keep defaults; Weights are
// taken whole unless left entirely unset.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		if cfg.MaxResults > 0 {
			e.cfg.MaxResults = cfg.MaxResults
		}
		if cfg.MaxKeywords > 0 {
			e.cfg.MaxKeywords = cfg.MaxKeywords
		}
		if cfg.CacheTTL > 0 {
			e.cfg.CacheTTL = cfg.CacheTTL
		}
		if cfg.AffinityLimit > 0 {
			e.cfg.AffinityLimit = cfg.AffinityLimit
		}
		if cfg.Hints != nil {
			e.cfg.Hints = cfg.Hints
		}
		if !cfg.Weights.isZero() {
			e.cfg.Weights = cfg.Weights
		}
	}
}

// NewEngine creates an engine searching with searcher and persisting click
// affinity in store.
func NewEngine(searcher Searcher, store kv.KV, opts ...Option) *Engine {
	e := &Engine{
		searcher: searcher,
		cfg:      DefaultConfig(),
		clock:    clock.Real{},
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.scorer = NewScorer(e.cfg.Weights)
	e.affinity = NewAffinity(store, e.cfg.AffinityLimit)
	e.cache = pkgkv.NewExpiring[string, []Product](e.cfg.CacheTTL, e.clock)
	return e
}

// Affinity exposes the click counter.
func (e *Engine) Affinity() *Affinity { return e.affinity }

// Keywords returns the search terms derived from cart.
func (e *Engine) Keywords(cart []CartItem) []string {
	return Keywords(cart, e.cfg.Hints, e.cfg.MaxKeywords)
}

// GetUpsells returns at most MaxResults recommendations for cart. Cart SKUs
// are always excluded in addition to excluded. Failures degrade to fewer or
// no results and are logged, never returned.
func (e *Engine) GetUpsells(ctx context.Context, cart []CartItem, excluded []string) []Recommendation {
	start := e.clock.Now()
	ctx = logging.WithRunID(ctx, uuid.NewString()[:8])

	skip := make(map[string]struct{}, len(excluded)+len(cart))
	for _, sku := range excluded {
		skip[sku] = struct{}{}
	}
	for _, item := range cart {
		if item.SKU != "" {
			skip[item.SKU] = struct{}{}
		}
	}

	terms := e.Keywords(cart)
	candidates := Aggregate(e.search(ctx, terms), skip)

	clicks, err := e.affinity.Load(ctx)
	if err != nil {
		e.logger.Warn().Ctx(ctx).Err(err).Msg("click affinity unavailable")
		clicks = nil
	}

	recs := Rank(candidates, e.scorer.Profile(cart), clicks, e.scorer, e.cfg.MaxResults)

	e.metrics.ObserveRank(e.clock.Now().Sub(start), len(recs))
	e.logger.Debug().Ctx(ctx).
		Strs("keywords", terms).
		Int("candidates", len(candidates)).
		Int("results", len(recs)).
		Msg("upsells ranked")
	return recs
}

// search runs one query per term in parallel. Each slot of the result holds
// the products of the matching term; failed terms leave an empty slot.
func (e *Engine) search(ctx context.Context, terms []string) [][]Product {
	batches := make([][]Product, len(terms))

	var g errgroup.Group
	for i, term := range terms {
		g.Go(func() error {
			batches[i] = e.searchTerm(ctx, term)
			return nil
		})
	}
	_ = g.Wait()

	return batches
}

func (e *Engine) searchTerm(ctx context.Context, term string) (products []Product) {
	if cached, ok := e.cache.Get(term); ok {
		e.metrics.ObserveSearch(metrics.SearchHit)
		return cached
	}

	defer func() {
		if r := recover(); r != nil {
			e.metrics.ObserveSearch(metrics.SearchError)
			e.logger.Error().Ctx(ctx).Str("term", term).Interface("panic", r).Msg("search panicked")
			products = nil
		}
	}()

	products, err := e.searcher.Search(ctx, term)
	if err != nil {
		e.metrics.ObserveSearch(metrics.SearchError)
		e.logger.Warn().Ctx(ctx).Err(err).Str("term", term).Msg("upsell search failed")
		return nil
	}

	e.metrics.ObserveSearch(metrics.SearchMiss)
	e.cache.Set(term, products)
	return products
}

// RecordClick bumps the click affinity of sku and persists it. An empty SKU
// is ignored.
func (e *Engine) RecordClick(ctx context.Context, sku string) error {
	if sku == "" {
		return nil
	}
	n, err := e.affinity.Record(ctx, sku)
	if err != nil {
		return fmt.Errorf("record upsell click: %w", err)
	}
	e.metrics.UpsellClicked()
	e.logger.Debug().Str("sku", sku).Int("count", n).Msg("upsell click recorded")
	return nil
}

// PurgeCache drops expired search results.
func (e *Engine) PurgeCache() int {
	return e.cache.Purge()
}
