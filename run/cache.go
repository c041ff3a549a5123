// Copyright 2025-2026 RunLog Authors. All rights reserved.
// Use of this source code is governed by the project license.

package run

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/ZhouKai90/runlog/internal/cache"
	"github.com/ZhouKai90/runlog/types"
)

// ===== 💾 结果缓存适配器 =====

// CacheStoreConfig 结果缓存配置
type CacheStoreConfig struct {
	// TTL 每条缓存结果的生存时间
	TTL time.Duration
	// MaxEntriesPerUser 每用户近期索引保留的最大条目数
	MaxEntriesPerUser int64
}

// DefaultCacheStoreConfig 返回默认缓存配置：12 小时 TTL，每用户 10 条。
func DefaultCacheStoreConfig() CacheStoreConfig {
	return CacheStoreConfig{
		TTL:               12 * time.Hour,
		MaxEntriesPerUser: 10,
	}
}

// CacheStore 将完整查询结果缓存到 Redis，并维护每用户的近期查询索引。
// 写入结果与修剪索引在同一条 pipeline 中完成，索引不会越过上限。
type CacheStore struct {
	manager *cache.Manager
	keys    KeyBuilder
	config  CacheStoreConfig
	logger  *zap.Logger
}

// NewCacheStore 创建结果缓存适配器
func NewCacheStore(manager *cache.Manager, keys KeyBuilder, config CacheStoreConfig, logger *zap.Logger) *CacheStore {
	if config.TTL <= 0 {
		config.TTL = DefaultCacheStoreConfig().TTL
	}
	if config.MaxEntriesPerUser <= 0 {
		config.MaxEntriesPerUser = DefaultCacheStoreConfig().MaxEntriesPerUser
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheStore{
		manager: manager,
		keys:    keys,
		config:  config,
		logger:  logger,
	}
}

// Lookup 查询缓存。未命中、条目损坏或后端不可达都按未命中处理，
// 损坏的条目会被顺手删除，查询路径绝不因缓存故障报错。
func (s *CacheStore) Lookup(ctx context.Context, userID string, tool types.ToolType, prompt string) (*types.RunResult, bool) {
	key := s.keys.RunKey(userID, tool, prompt)

	raw, err := s.manager.Get(ctx, key)
	if err != nil {
		if !cache.IsCacheMiss(err) {
			s.logger.Warn("缓存查询失败，按未命中处理",
				zap.String("key", key),
				zap.Error(err))
		}
		return nil, false
	}

	var result types.RunResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		s.logger.Warn("缓存条目损坏，删除并按未命中处理",
			zap.String("key", key),
			zap.Error(err))
		_ = s.manager.Delete(ctx, key)
		return nil, false
	}
	return &result, true
}

// Store 写入一条查询结果并更新该用户的近期索引。
// 失败只返回错误供调用方记录，结果本身已经产出，不受影响。
func (s *CacheStore) Store(ctx context.Context, result *types.RunResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return types.NewError(types.ErrPersistence, "序列化缓存条目失败").WithCause(err)
	}

	key := s.keys.RunKey(result.UserID, result.Tool(), result.Prompt)
	indexKey := s.keys.RecentKey(result.UserID)
	score := float64(result.Timestamp.UnixNano())

	if err := s.manager.SetIndexed(ctx, key, string(data), s.config.TTL, indexKey, score, s.config.MaxEntriesPerUser); err != nil {
		return types.NewError(types.ErrPersistence, "写入缓存失败").WithCause(err)
	}

	// 索引键的寿命跟随最新一条写入，闲置用户的索引随条目一起过期
	if err := s.manager.Expire(ctx, indexKey, s.config.TTL); err != nil {
		s.logger.Warn("刷新近期索引过期时间失败",
			zap.String("index", indexKey),
			zap.Error(err))
	}
	return nil
}

// Recent 返回用户最近的查询结果，新的在前。limit <= 0 表示索引内全部。
// 索引里尚存但值已过期的条目会被跳过。
func (s *CacheStore) Recent(ctx context.Context, userID string, limit int64) ([]types.RunResult, error) {
	indexKey := s.keys.RecentKey(userID)

	members, err := s.manager.IndexMembers(ctx, indexKey, limit)
	if err != nil {
		return nil, types.NewError(types.ErrPersistence, "读取近期索引失败").WithCause(err)
	}

	results := make([]types.RunResult, 0, len(members))
	for _, key := range members {
		var result types.RunResult
		if err := s.manager.GetJSON(ctx, key, &result); err != nil {
			if !cache.IsCacheMiss(err) {
				s.logger.Warn("读取近期条目失败，跳过",
					zap.String("key", key),
					zap.Error(err))
			}
			continue
		}
		results = append(results, result)
	}
	return results, nil
}
