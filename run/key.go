// Copyright 2025-2026 RunLog Authors. All rights reserved.
// Use of this source code is governed by the project license.

package run

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/ZhouKai90/runlog/types"
)

// ===== 🔑 缓存键派生 =====

// KeyBuilder 从请求字段确定性地派生缓存键与索引键。
// prompt 参与键的方式是其 SHA-256 十六进制摘要，
// 因此键长有界且任意 prompt 内容不会破坏键的分段结构。
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder 创建键构造器，prefix 为空时使用 "runlog"。
func NewKeyBuilder(prefix string) KeyBuilder {
	if prefix == "" {
		prefix = "runlog"
	}
	return KeyBuilder{prefix: prefix}
}

// RunKey 返回一次查询的缓存键：<prefix>:<userId>:<tool>:<sha256(prompt)>。
func (k KeyBuilder) RunKey(userID string, tool types.ToolType, prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return fmt.Sprintf("%s:%s:%s:%s", k.prefix, userID, tool, hex.EncodeToString(sum[:]))
}

// RecentKey 返回用户近期查询索引（sorted set）的键。
func (k KeyBuilder) RecentKey(userID string) string {
	return fmt.Sprintf("%s:recent:%s", k.prefix, userID)
}
