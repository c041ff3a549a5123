// Copyright (c) RunLog Authors.
// Licensed under the MIT License.

/*
Package main 提供 RunLog 服务端程序入口。

# 概述

cmd/runlog 是 RunLog 服务的可执行入口，提供 HTTP API 服务、
健康检查和版本查询等子命令。程序支持 YAML 配置文件加载、
结构化日志（zap）、Prometheus 指标采集以及 OpenTelemetry 追踪。

# 核心类型

  - Server     — 主服务器，管理 HTTP、Metrics 双端口及优雅关闭
  - Middleware — HTTP 中间件函数签名 func(http.Handler) http.Handler

# 主要能力

  - 子命令：serve（启动服务）、version、health
  - 中间件链：Recovery、RequestID、SecurityHeaders、RequestLogger、
    MetricsMiddleware、CORS、RateLimiter（基于 IP）、APIKeyAuth、JWTAuth
  - 核心管道装配：Redis 缓存 + GORM 审计日志 + 工具调度 + Gemini 摘要
  - Metrics 服务器：独立端口暴露 /metrics（Prometheus）
  - 优雅关闭：信号监听 → 关闭 HTTP → 关闭 Metrics → 关闭存储与遥测
  - 构建注入：Version、BuildTime、GitCommit 通过 ldflags 设置
  - TLS：配置证书后以 HTTPS 提供服务
*/
package main
