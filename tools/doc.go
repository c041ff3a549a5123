// Copyright 2025-2026 RunLog Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
# 概述

Package tools 提供查询端点可调度的两类工具实现：网页搜索与
计算器。两者都以小接口暴露，便于上层按工具类型路由并在测试中
替换为桩实现。

# 核心接口/类型

  - SearchProvider — 网页搜索接口，返回标题/链接结果列表
  - DuckDuckGo — 基于 DuckDuckGo HTML 端点的 SearchProvider 实现
  - Evaluator — 算术表达式求值接口
  - Calculator — 支持 + - * / % ^、括号与一元负号的求值实现

# 行为约定

  - 搜索最多返回配置的 MaxResults 条结果，零结果视为错误
  - 计算结果必须是有限数值，除零或语法错误均视为非法表达式
*/
package tools
