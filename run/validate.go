// Copyright 2025-2026 RunLog Authors. All rights reserved.
// Use of this source code is governed by the project license.

package run

import (
	"fmt"
	"unicode/utf8"

	"github.com/ZhouKai90/runlog/types"
)

// ===== ✅ 请求校验 =====

const (
	// MaxPromptLen 提示词最大长度（字符数）
	MaxPromptLen = 500
	// MaxUserIDLen 用户标识最大长度（字符数）
	MaxUserIDLen = 100
)

// ValidateRequest 校验请求，返回第一条违规对应的错误。
// 校验顺序固定：prompt 非空 → prompt 长度 → userId 非空 → userId 长度 → tool 枚举。
func ValidateRequest(req types.RunRequest) error {
	if req.Prompt == "" {
		return types.NewInvalidRequestError("prompt must not be empty")
	}
	if utf8.RuneCountInString(req.Prompt) > MaxPromptLen {
		return types.NewInvalidRequestError(fmt.Sprintf("prompt must not exceed %d characters", MaxPromptLen))
	}
	if req.UserID == "" {
		return types.NewInvalidRequestError("userId must not be empty")
	}
	if utf8.RuneCountInString(req.UserID) > MaxUserIDLen {
		return types.NewInvalidRequestError(fmt.Sprintf("userId must not exceed %d characters", MaxUserIDLen))
	}
	if !req.Tool.Valid() {
		return types.NewInvalidRequestError(fmt.Sprintf("unsupported tool %q, must be one of %q or %q",
			string(req.Tool), types.ToolWebSearch, types.ToolCalculator))
	}
	return nil
}
