// Copyright 2025-2026 RunLog Authors. All rights reserved.
// Use of this source code is governed by the project license.

package run

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ZhouKai90/runlog/internal/metrics"
	"github.com/ZhouKai90/runlog/types"
)

// ===== 📜 审计日志存储 =====

// RunRecord 审计日志表的一行，对应一次成功完成的查询。
type RunRecord struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    string    `gorm:"column:user_id;size:100;index;not null"`
	Prompt    string    `gorm:"size:500;not null"`
	Tool      string    `gorm:"size:32;not null"`
	Response  string    `gorm:"type:text;not null"`
	Tokens    int       `gorm:"not null"`
	Timestamp time.Time `gorm:"index;not null"`
}

// TableName 指定表名
func (RunRecord) TableName() string {
	return "run_logs"
}

// LogStore 追加写的审计日志。只插入，不更新不删除。
type LogStore struct {
	db        *gorm.DB
	logger    *zap.Logger
	collector *metrics.Collector
}

// NewLogStore 创建审计日志存储并迁移表结构
func NewLogStore(db *gorm.DB, logger *zap.Logger) (*LogStore, error) {
	if db == nil {
		return nil, types.NewError(types.ErrPersistence, "数据库连接不能为空")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := db.AutoMigrate(&RunRecord{}); err != nil {
		return nil, types.NewError(types.ErrPersistence, "迁移审计日志表失败").WithCause(err)
	}
	return &LogStore{db: db, logger: logger}, nil
}

// WithCollector 设置指标收集器，记录每次数据库操作的耗时
func (s *LogStore) WithCollector(collector *metrics.Collector) *LogStore {
	s.collector = collector
	return s
}

func (s *LogStore) recordQuery(operation string, start time.Time) {
	if s.collector != nil {
		s.collector.RecordDBQuery(RunRecord{}.TableName(), operation, time.Since(start))
	}
}

// Append 追加一条审计记录。Response 列保存完整结果的 JSON 序列化。
func (s *LogStore) Append(ctx context.Context, result *types.RunResult) error {
	defer s.recordQuery("insert", time.Now())

	data, err := json.Marshal(result)
	if err != nil {
		return types.NewError(types.ErrPersistence, "序列化审计记录失败").WithCause(err)
	}

	record := RunRecord{
		UserID:    result.UserID,
		Prompt:    result.Prompt,
		Tool:      string(result.Tool()),
		Response:  string(data),
		Tokens:    result.TokenCount,
		Timestamp: result.Timestamp,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return types.NewError(types.ErrPersistence, "写入审计记录失败").WithCause(err)
	}
	return nil
}

// History 按时间倒序返回用户的审计记录，limit <= 0 表示不限条数。
func (s *LogStore) History(ctx context.Context, userID string, limit int) ([]RunRecord, error) {
	defer s.recordQuery("select", time.Now())

	query := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []RunRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, types.NewError(types.ErrPersistence, "查询审计记录失败").WithCause(err)
	}
	return records, nil
}

// Count 返回用户的审计记录总数
func (s *LogStore) Count(ctx context.Context, userID string) (int64, error) {
	defer s.recordQuery("count", time.Now())

	var count int64
	err := s.db.WithContext(ctx).
		Model(&RunRecord{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, types.NewError(types.ErrPersistence, "统计审计记录失败").WithCause(err)
	}
	return count, nil
}
