// Copyright (c) RunLog Authors.
// Licensed under the MIT License.

/*
Package types 提供 RunLog 服务的全局共享类型定义。

# 概述

types 是服务最底层的公共包，不依赖任何内部包，为 run、tools、llm、
api 等上层模块提供统一的类型契约。所有跨包共享的结构体、枚举和
错误码均定义于此，以避免循环依赖。

# 核心类型

  - ToolType          — 工具枚举（web-search / calculator）
  - RunRequest        — 校验后的查询请求（userId + tool + prompt）
  - RunResult         — 一次工具执行的完整结果信封
  - ToolOutput        — 按工具类型打标签的输出联合体
  - SearchResult      — 单条搜索结果（title + link）
  - Error / ErrorCode — 结构化错误体系，含 HTTP 状态码与 Retryable 标记

# 主要能力

  - 错误工具链：AsError / IsErrorCode / IsRetryable
  - 常用错误构造：NewInvalidRequestError / NewUpstreamError
*/
package types
