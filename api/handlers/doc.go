// Copyright (c) RunLog Authors.
// Licensed under the MIT License.

/*
Package handlers 提供 RunLog HTTP API 的请求处理器实现。

# 概述

handlers 包实现了 RunLog 所有 HTTP 端点的请求处理逻辑，
包括查询编排、近期查询列表、健康检查以及统一的响应/错误处理。
所有 Handler 均遵循标准 net/http 接口，通过 Swagger 注解生成 API 文档。

# 核心类型

  - QueryHandler    — 查询处理器（POST /api/v1/query, GET /api/v1/recent）
  - HealthHandler   — 服务健康检查（/health, /healthz, /ready, /version）
  - ResponseWriter  — 包装 http.ResponseWriter 以捕获状态码
  - HealthCheck     — 可插拔健康检查接口（PingCheck 覆盖 Redis 与数据库）

# 主要能力

  - 统一错误格式：{error, code, timestamp}，WriteError 自动映射状态码
  - 成功响应按工具类型打标：web-search 带 results，calculator 带 result
  - 请求验证：DecodeJSONBody（体积限制 + 严格模式）、ValidateContentType
  - ErrorCode → HTTP 状态码自动映射（400 校验 / 500 工具与协作方失败）
  - 可扩展健康检查：RegisterCheck 注册自定义 HealthCheck 实现
*/
package handlers
