package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ZhouKai90/runlog/api/handlers"
	"github.com/ZhouKai90/runlog/config"
	"github.com/ZhouKai90/runlog/internal/cache"
	"github.com/ZhouKai90/runlog/internal/database"
	"github.com/ZhouKai90/runlog/internal/metrics"
	"github.com/ZhouKai90/runlog/internal/server"
	"github.com/ZhouKai90/runlog/internal/telemetry"
	"github.com/ZhouKai90/runlog/llm"
	"github.com/ZhouKai90/runlog/providers/gemini"
	"github.com/ZhouKai90/runlog/run"
	"github.com/ZhouKai90/runlog/tools"
)

// =============================================================================
// 🖥️ Server 结构
// =============================================================================

// Server 是 RunLog 的主服务器
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	// 基础设施
	cacheManager  *cache.Manager
	dbPool        *database.PoolManager
	otelProviders *telemetry.Providers

	// 服务器管理器
	httpManager    *server.Manager
	metricsManager *server.Manager

	// 核心管道
	orchestrator *run.Orchestrator

	// Handlers
	healthHandler *handlers.HealthHandler
	queryHandler  *handlers.QueryHandler

	// 指标收集器
	metricsCollector *metrics.Collector

	// 后台 goroutine 生命周期管理
	rateLimiterCancel context.CancelFunc
	dbStatsCancel     context.CancelFunc
}

// NewServer 创建新的服务器实例
func NewServer(cfg *config.Config, logger *zap.Logger, otelProviders *telemetry.Providers, dbPool *database.PoolManager) *Server {
	return &Server{
		cfg:           cfg,
		logger:        logger,
		otelProviders: otelProviders,
		dbPool:        dbPool,
	}
}

// =============================================================================
// 🚀 启动流程
// =============================================================================

// Start 启动所有服务
func (s *Server) Start() error {
	// 1. 初始化指标收集器
	s.metricsCollector = metrics.NewCollector("runlog", s.logger)

	// 2. 初始化缓存与核心管道
	if err := s.initPipeline(); err != nil {
		return fmt.Errorf("failed to init pipeline: %w", err)
	}

	// 3. 启动连接池指标采样
	s.startDBStatsSampler()

	// 4. 初始化 Handlers
	s.initHandlers()

	// 5. 启动 HTTP 服务器
	if err := s.startHTTPServer(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	// 6. 启动 Metrics 服务器
	if err := s.startMetricsServer(); err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}

	s.logger.Info("All servers started",
		zap.Int("http_port", s.cfg.Server.HTTPPort),
		zap.Int("metrics_port", s.cfg.Server.MetricsPort),
		zap.Bool("tls", s.cfg.Server.TLSEnabled()),
	)
	return nil
}

// =============================================================================
// 🔧 初始化方法
// =============================================================================

// initPipeline 初始化缓存、存储、工具、摘要器与编排器
func (s *Server) initPipeline() error {
	// Redis 缓存
	cacheManager, err := cache.NewManager(cache.Config{
		Addr:         s.cfg.Redis.Addr,
		Password:     s.cfg.Redis.Password,
		DB:           s.cfg.Redis.DB,
		DefaultTTL:   s.cfg.Cache.TTL,
		MaxRetries:   s.cfg.Redis.MaxRetries,
		PoolSize:     s.cfg.Redis.PoolSize,
		MinIdleConns: s.cfg.Redis.MinIdleConns,
	}, s.logger)
	if err != nil {
		return fmt.Errorf("failed to connect redis: %w", err)
	}
	s.cacheManager = cacheManager

	keys := run.NewKeyBuilder(s.cfg.Cache.KeyPrefix)
	cacheStore := run.NewCacheStore(cacheManager, keys, run.CacheStoreConfig{
		TTL:               s.cfg.Cache.TTL,
		MaxEntriesPerUser: s.cfg.Cache.MaxEntriesPerUser,
	}, s.logger)

	// 审计日志
	logStore, err := run.NewLogStore(s.dbPool.DB(), s.logger)
	if err != nil {
		return fmt.Errorf("failed to init log store: %w", err)
	}
	logStore = logStore.WithCollector(s.metricsCollector)

	// 工具协作方
	search := tools.NewDuckDuckGo(tools.SearchConfig{
		Endpoint:   s.cfg.Search.Endpoint,
		Timeout:    s.cfg.Search.Timeout,
		MaxResults: s.cfg.Search.MaxResults,
		UserAgent:  s.cfg.Search.UserAgent,
	}, s.logger)
	calculator := tools.NewCalculator()

	// 摘要器：Gemini + 输入 token 预算
	var summarizer llm.Summarizer = gemini.New(gemini.Config{
		APIKey:     s.cfg.LLM.APIKey,
		BaseURL:    s.cfg.LLM.BaseURL,
		Model:      s.cfg.LLM.Model,
		Timeout:    s.cfg.LLM.Timeout,
		MaxRetries: s.cfg.LLM.MaxRetries,
	}, s.logger).WithCollector(s.metricsCollector)
	if s.cfg.LLM.MaxInputTokens > 0 {
		summarizer = llm.WithTokenBudget(summarizer, llm.NewTiktokenCounter(""), s.cfg.LLM.MaxInputTokens)
	}

	dispatcher := run.NewDispatcher(search, calculator, summarizer, s.logger)

	s.orchestrator = run.NewOrchestrator(cacheStore, logStore, dispatcher, run.OrchestratorConfig{
		DispatchTimeout: s.cfg.Search.Timeout + s.cfg.LLM.Timeout,
	}, s.logger, s.metricsCollector)

	s.logger.Info("Pipeline initialized",
		zap.String("search_endpoint", s.cfg.Search.Endpoint),
		zap.String("llm_model", s.cfg.LLM.Model),
	)
	return nil
}

// startDBStatsSampler 周期性把连接池状态上报到指标收集器
func (s *Server) startDBStatsSampler() {
	ctx, cancel := context.WithCancel(context.Background())
	s.dbStatsCancel = cancel

	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := s.dbPool.GetStats()
				s.metricsCollector.RecordDBConnections(s.cfg.Database.Name, stats.OpenConnections, stats.Idle)
			}
		}
	}()
}

// initHandlers 初始化所有 handlers 并注册就绪探针
func (s *Server) initHandlers() {
	s.healthHandler = handlers.NewHealthHandler(s.logger)
	s.healthHandler.RegisterCheck(handlers.NewPingCheck("redis", s.cacheManager.Ping))
	s.healthHandler.RegisterCheck(handlers.NewPingCheck("database", s.dbPool.Ping))

	s.queryHandler = handlers.NewQueryHandler(s.orchestrator, s.logger, s.cfg.Server.MaxBodyBytes)
}

// =============================================================================
// 🌐 HTTP 服务器
// =============================================================================

// startHTTPServer 启动 HTTP 服务器
func (s *Server) startHTTPServer() error {
	mux := http.NewServeMux()

	// 健康检查端点
	mux.HandleFunc("/health", s.healthHandler.HandleHealth)
	mux.HandleFunc("/healthz", s.healthHandler.HandleHealthz)
	mux.HandleFunc("/ready", s.healthHandler.HandleReady)
	mux.HandleFunc("/readyz", s.healthHandler.HandleReady)
	mux.HandleFunc("/version", s.healthHandler.HandleVersion(Version, BuildTime, GitCommit))

	// API 路由
	mux.HandleFunc("/api/v1/query", s.queryHandler.HandleQuery)
	mux.HandleFunc("/api/v1/recent", s.queryHandler.HandleRecent)

	// 中间件链
	skipAuthPaths := []string{"/health", "/healthz", "/ready", "/readyz", "/version", "/metrics"}
	rateLimiterCtx, rateLimiterCancel := context.WithCancel(context.Background())
	s.rateLimiterCancel = rateLimiterCancel

	middlewares := []Middleware{
		Recovery(s.logger),
		RequestID(),
	}
	// tracing 在 RequestLogger 之外层，日志才能带上 trace_id
	if s.otelProviders != nil {
		middlewares = append(middlewares, OTelTracing())
	}
	middlewares = append(middlewares,
		SecurityHeaders(),
		RequestLogger(s.logger),
		MetricsMiddleware(s.metricsCollector),
		CORS(splitOrigins(s.cfg.Server.CORSOrigin)),
		RateLimiter(rateLimiterCtx, s.cfg.Server.RateLimitRPS, s.cfg.Server.RateLimitBurst, s.logger),
	)
	if len(s.cfg.Server.APIKeys) > 0 {
		middlewares = append(middlewares, APIKeyAuth(s.cfg.Server.APIKeys, skipAuthPaths, s.logger))
	}
	if s.cfg.Server.JWTSecret != "" {
		middlewares = append(middlewares, JWTAuth(s.cfg.Server.JWTSecret, skipAuthPaths, s.logger))
	}
	handler := Chain(mux, middlewares...)

	serverConfig := server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.HTTPPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		IdleTimeout:     2 * s.cfg.Server.ReadTimeout,
		MaxHeaderBytes:  1 << 20, // 1 MB
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}
	s.httpManager = server.NewManager(handler, serverConfig, s.logger)

	if s.cfg.Server.TLSEnabled() {
		if err := s.httpManager.StartTLS(s.cfg.Server.TLSCertFile, s.cfg.Server.TLSKeyFile); err != nil {
			return err
		}
	} else if err := s.httpManager.Start(); err != nil {
		return err
	}

	s.logger.Info("HTTP server started", zap.Int("port", s.cfg.Server.HTTPPort))
	return nil
}

// =============================================================================
// 📊 Metrics 服务器
// =============================================================================

// startMetricsServer 启动 Metrics 服务器
func (s *Server) startMetricsServer() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	serverConfig := server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.MetricsPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}
	s.metricsManager = server.NewManager(mux, serverConfig, s.logger)

	if err := s.metricsManager.Start(); err != nil {
		return err
	}

	s.logger.Info("Metrics server started", zap.Int("port", s.cfg.Server.MetricsPort))
	return nil
}

// splitOrigins 解析逗号分隔的允许来源列表
func splitOrigins(origins string) []string {
	if origins == "" {
		return nil
	}
	return strings.Split(origins, ",")
}

// =============================================================================
// 🛑 关闭流程
// =============================================================================

// WaitForShutdown 等待关闭信号并优雅关闭
func (s *Server) WaitForShutdown() {
	if s.httpManager != nil {
		s.httpManager.WaitForShutdown()
	}
	s.Shutdown()
}

// Shutdown 优雅关闭所有服务
func (s *Server) Shutdown() {
	s.logger.Info("Starting graceful shutdown...")

	ctx := context.Background()

	// 1. 停止后台 goroutine
	if s.rateLimiterCancel != nil {
		s.rateLimiterCancel()
	}
	if s.dbStatsCancel != nil {
		s.dbStatsCancel()
	}

	// 2. 关闭 HTTP 服务器
	if s.httpManager != nil {
		if err := s.httpManager.Shutdown(ctx); err != nil {
			s.logger.Error("HTTP server shutdown error", zap.Error(err))
		}
	}

	// 3. 关闭 Metrics 服务器
	if s.metricsManager != nil {
		if err := s.metricsManager.Shutdown(ctx); err != nil {
			s.logger.Error("Metrics server shutdown error", zap.Error(err))
		}
	}

	// 4. 关闭存储连接
	if s.cacheManager != nil {
		if err := s.cacheManager.Close(); err != nil {
			s.logger.Error("Cache shutdown error", zap.Error(err))
		}
	}
	if s.dbPool != nil {
		if err := s.dbPool.Close(); err != nil {
			s.logger.Error("Database shutdown error", zap.Error(err))
		}
	}

	// 5. 关闭遥测
	if s.otelProviders != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := s.otelProviders.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Telemetry shutdown error", zap.Error(err))
		}
	}

	s.logger.Info("Graceful shutdown completed")
}
