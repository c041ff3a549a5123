// Package runlog provides a top-level convenience entry point for building
// the query pipeline with minimal boilerplate.
//
// Usage:
//
//	import "github.com/ZhouKai90/runlog"
//
//	o, err := runlog.New(runlog.WithRedis("localhost:6379"), runlog.WithGemini("gemini-2.0-flash"))
//	result, cached, err := o.Query(ctx, req)
//
// The full configuration surface (TLS, auth, telemetry, pool tuning) lives in
// config/ and cmd/runlog; use this package for tests, scripts, and embedding.
package runlog

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/ZhouKai90/runlog/internal/cache"
	"github.com/ZhouKai90/runlog/internal/database"
	"github.com/ZhouKai90/runlog/llm"
	"github.com/ZhouKai90/runlog/providers/gemini"
	"github.com/ZhouKai90/runlog/run"
	"github.com/ZhouKai90/runlog/tools"
)

// Option configures the orchestrator created by [New].
type Option func(*options)

type options struct {
	redisAddr  string
	dbDriver   string
	dbDSN      string
	keyPrefix  string
	cacheTTL   time.Duration
	logger     *zap.Logger
	search     tools.SearchProvider
	summarizer llm.Summarizer

	// Gemini shortcut fields — used when summarizer is nil.
	model  string
	apiKey string
}

// WithRedis sets the Redis address backing the result cache.
func WithRedis(addr string) Option {
	return func(o *options) { o.redisAddr = addr }
}

// WithDatabase sets the durable log database. Defaults to a local
// SQLite file when unset.
func WithDatabase(driver, dsn string) Option {
	return func(o *options) {
		o.dbDriver = driver
		o.dbDSN = dsn
	}
}

// WithGemini selects the Gemini model used for summarization.
// API key is read from GEMINI_API_KEY environment variable.
func WithGemini(model string) Option {
	return func(o *options) {
		o.model = model
		if o.apiKey == "" {
			o.apiKey = os.Getenv("GEMINI_API_KEY")
		}
	}
}

// WithAPIKey overrides the API key for [WithGemini].
func WithAPIKey(key string) Option {
	return func(o *options) { o.apiKey = key }
}

// WithSummarizer sets a pre-built summarizer, bypassing the Gemini shortcut.
func WithSummarizer(s llm.Summarizer) Option {
	return func(o *options) { o.summarizer = s }
}

// WithSearchProvider sets a pre-built web search provider.
// Defaults to DuckDuckGo.
func WithSearchProvider(p tools.SearchProvider) Option {
	return func(o *options) { o.search = p }
}

// WithCacheTTL sets the result cache lifetime.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *options) { o.cacheTTL = ttl }
}

// WithKeyPrefix sets the cache key namespace.
func WithKeyPrefix(prefix string) Option {
	return func(o *options) { o.keyPrefix = prefix }
}

// WithLogger sets a custom zap logger. Defaults to zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// New creates an [run.Orchestrator] with minimal configuration.
// At minimum, a Redis address and either [WithGemini] or a pre-built
// summarizer must be provided.
func New(opts ...Option) (*run.Orchestrator, error) {
	o := &options{
		dbDriver: database.DriverSQLite,
		dbDSN:    "runlog.db",
	}
	for _, opt := range opts {
		opt(o)
	}

	logger := o.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if o.redisAddr == "" {
		return nil, fmt.Errorf("runlog: a Redis address is required, use WithRedis")
	}
	manager, err := cache.NewManager(cache.Config{
		Addr:       o.redisAddr,
		DefaultTTL: o.cacheTTL,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("runlog: connect redis: %w", err)
	}

	db, err := database.Open(o.dbDriver, o.dbDSN)
	if err != nil {
		return nil, fmt.Errorf("runlog: open database: %w", err)
	}
	logStore, err := run.NewLogStore(db, logger)
	if err != nil {
		return nil, err
	}

	cacheStore := run.NewCacheStore(manager, run.NewKeyBuilder(o.keyPrefix), run.CacheStoreConfig{
		TTL: o.cacheTTL,
	}, logger)

	search := o.search
	if search == nil {
		search = tools.NewDuckDuckGo(tools.SearchConfig{}, logger)
	}

	summarizer := o.summarizer
	if summarizer == nil {
		if o.apiKey == "" {
			return nil, fmt.Errorf("runlog: a summarizer is required, use WithGemini or WithSummarizer")
		}
		summarizer = gemini.New(gemini.Config{
			APIKey: o.apiKey,
			Model:  o.model,
		}, logger)
	}

	dispatcher := run.NewDispatcher(search, tools.NewCalculator(), summarizer, logger)
	return run.NewOrchestrator(cacheStore, logStore, dispatcher, run.OrchestratorConfig{}, logger, nil), nil
}
