// Copyright 2025-2026 RunLog Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
# 概述

Package run 实现查询编排与缓存管道：请求校验、缓存键派生、
命中短路、工具调度、以及缓存与审计日志的并发双写。

# 核心类型

  - Orchestrator — 每请求状态机：校验 → 缓存查询 → 调度 → 持久化 → 响应
  - CacheStore — 带 TTL 与每用户近期索引的结果缓存适配器
  - LogStore — 追加写审计日志（run_logs 表）
  - Dispatcher — 按工具类型调用搜索/计算器并生成摘要
  - KeyBuilder — 确定性缓存键派生

# 行为约定

  - 缓存命中原样返回首次结果，不重新打时间戳、不重复记日志
  - 持久化失败只记日志与指标，绝不影响已计算出的响应
  - 调度一旦开始即不随调用方断开而取消
*/
package run
