// Copyright 2025-2026 RunLog Authors. All rights reserved.
// Use of this source code is governed by the project license.

package run

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ZhouKai90/runlog/internal/metrics"
	"github.com/ZhouKai90/runlog/types"
)

// ===== 🧠 查询编排 =====

// ResultCache 是编排器眼中的结果缓存
type ResultCache interface {
	Lookup(ctx context.Context, userID string, tool types.ToolType, prompt string) (*types.RunResult, bool)
	Store(ctx context.Context, result *types.RunResult) error
	Recent(ctx context.Context, userID string, limit int64) ([]types.RunResult, error)
}

// LogAppender 是编排器眼中的审计日志
type LogAppender interface {
	Append(ctx context.Context, result *types.RunResult) error
}

// ToolDispatcher 是编排器眼中的工具调度器
type ToolDispatcher interface {
	Dispatch(ctx context.Context, req types.RunRequest) (*types.RunResult, error)
}

// OrchestratorConfig 编排器配置
type OrchestratorConfig struct {
	// DispatchTimeout 单次调度（工具 + 摘要）的总时限，<= 0 表示不限
	DispatchTimeout time.Duration
	// PersistTimeout 持久化阶段的时限
	PersistTimeout time.Duration
}

// DefaultOrchestratorConfig 返回默认编排配置
func DefaultOrchestratorConfig() OrchestratorConfig {
	return OrchestratorConfig{
		DispatchTimeout: 90 * time.Second,
		PersistTimeout:  10 * time.Second,
	}
}

// Orchestrator 驱动每个请求的完整生命周期：
// 校验 → 缓存查询 → 调度 → 并发持久化 → 响应。
//
// 两条硬约定：
//   - 缓存命中原样返回首次结果，不重新打时间戳，也不再写任何存储；
//   - 持久化失败只记日志与指标，已产出的结果照常返回。
type Orchestrator struct {
	cache      ResultCache
	log        LogAppender
	dispatcher ToolDispatcher
	config     OrchestratorConfig
	logger     *zap.Logger
	metrics    *metrics.Collector
}

// NewOrchestrator 创建编排器。metrics 可为 nil。
func NewOrchestrator(cache ResultCache, log LogAppender, dispatcher ToolDispatcher, config OrchestratorConfig, logger *zap.Logger, collector *metrics.Collector) *Orchestrator {
	if config.PersistTimeout <= 0 {
		config.PersistTimeout = DefaultOrchestratorConfig().PersistTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		cache:      cache,
		log:        log,
		dispatcher: dispatcher,
		config:     config,
		logger:     logger,
		metrics:    collector,
	}
}

// Query 处理一次查询。返回的 cached 标记结果是否来自缓存。
func (o *Orchestrator) Query(ctx context.Context, req types.RunRequest) (result *types.RunResult, cached bool, err error) {
	if err := ValidateRequest(req); err != nil {
		return nil, false, err
	}

	if hit, ok := o.cache.Lookup(ctx, req.UserID, req.Tool, req.Prompt); ok {
		o.recordCache(true)
		o.logger.Debug("缓存命中",
			zap.String("user_id", req.UserID),
			zap.String("tool", string(req.Tool)))
		return hit, true, nil
	}
	o.recordCache(false)

	// 调度一旦开始就不随调用方断开而取消：结果仍要进缓存和日志。
	// 时限由编排器自己的 DispatchTimeout 兜底。
	dispatchCtx := context.WithoutCancel(ctx)
	if o.config.DispatchTimeout > 0 {
		var cancel context.CancelFunc
		dispatchCtx, cancel = context.WithTimeout(dispatchCtx, o.config.DispatchTimeout)
		defer cancel()
	}

	start := time.Now()
	result, err = o.dispatcher.Dispatch(dispatchCtx, req)
	if err != nil {
		o.recordDispatch(req.Tool, "error", time.Since(start))
		return nil, false, err
	}
	o.recordDispatch(req.Tool, "success", time.Since(start))

	o.persist(result)
	return result, false, nil
}

// Recent 返回用户近期的查询结果，由缓存索引支撑。
func (o *Orchestrator) Recent(ctx context.Context, userID string, limit int64) ([]types.RunResult, error) {
	return o.cache.Recent(ctx, userID, limit)
}

// persist 并发写缓存与审计日志，两路互不影响，全部等待完成。
// 任何一路失败都只记日志与指标。
func (o *Orchestrator) persist(result *types.RunResult) {
	ctx, cancel := context.WithTimeout(context.Background(), o.config.PersistTimeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := o.cache.Store(ctx, result); err != nil {
			o.recordPersistenceFailure("cache")
			o.logger.Error("写入结果缓存失败",
				zap.String("user_id", result.UserID),
				zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		if err := o.log.Append(ctx, result); err != nil {
			o.recordPersistenceFailure("log")
			o.logger.Error("写入审计日志失败",
				zap.String("user_id", result.UserID),
				zap.Error(err))
		}
		return nil
	})
	_ = g.Wait()
}

func (o *Orchestrator) recordCache(hit bool) {
	if o.metrics == nil {
		return
	}
	if hit {
		o.metrics.RecordCacheHit("result")
	} else {
		o.metrics.RecordCacheMiss("result")
	}
}

func (o *Orchestrator) recordDispatch(tool types.ToolType, status string, duration time.Duration) {
	if o.metrics == nil {
		return
	}
	o.metrics.RecordToolDispatch(string(tool), status, duration)
}

func (o *Orchestrator) recordPersistenceFailure(sink string) {
	if o.metrics == nil {
		return
	}
	o.metrics.RecordPersistenceFailure(sink)
}
