// Copyright 2025-2026 RunLog Authors. All rights reserved.
// Use of this source code is governed by a MIT-style license.

/*
Package testutil 提供 RunLog 测试的共享工具和辅助函数。

# 概述

testutil 包为整个项目的单元测试与基准测试提供统一的辅助能力，
避免各包重复实现相似的测试基础设施。所有测试应优先使用此包
中的工具函数和 Mock 实现。

# 核心能力

  - 上下文辅助: TestContext / TestContextWithTimeout / CancelledContext，
    自动注册 Cleanup 防止泄漏
  - 断言工具: AssertJSONEqual / AssertNoError / AssertError /
    AssertErrorCode / AssertContains 等
  - 异步断言: AssertEventuallyTrue / AssertEventuallyEqual，
    支持超时轮询等待条件满足
  - 数据工具: MustJSON / MustParseJSON / CopySearchResults，
    简化测试数据构造与深拷贝
  - 基准辅助: BenchmarkHelper 封装 testing.B 常用操作

# 子包

  - testutil/mocks: Mock 实现，包括 MockSearchProvider（网页搜索）、
    MockEvaluator（计算器）、MockSummarizer（LLM 摘要），
    均支持 Builder 模式与错误注入
  - testutil/fixtures: 测试数据工厂，提供预置 RunRequest、
    RunResult、搜索结果等样例

# 使用示例

	ctx := testutil.TestContext(t)
	search := mocks.NewMockSearchProvider().WithResults(fixtures.SearchResults(3))
	results, err := search.Search(ctx, "golang")
	testutil.AssertNoError(t, err)
*/
package testutil
