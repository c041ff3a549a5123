// Copyright 2025-2026 RunLog Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
# 概述

Package gemini 实现基于 Google Gemini generateContent API 的
llm.Summarizer。请求通过 x-goog-api-key 认证，响应取首个候选的
文本，Token 用量来自 usageMetadata.totalTokenCount（缺失记 0）。

# 错误语义

  - 429 与 5xx 视为可重试的上游错误，按配置的 MaxRetries 重试
  - 其余 4xx 不重试（认证、配额、请求格式问题）
  - 超时映射为 UPSTREAM_TIMEOUT
*/
package gemini
