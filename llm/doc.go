// Copyright 2025-2026 RunLog Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
# 概述

Package llm 定义摘要层：把工具输出拼装为提示词、控制输入 Token
预算，并通过 Summarizer 接口调用底层模型。具体的模型客户端实现
位于 providers 子目录。

# 核心接口/类型

  - Summarizer — 摘要接口，输入拼装好的提示词，返回文本与 Token 总量
  - Summary — 摘要结果（Text / TotalTokens）
  - TokenCounter — Token 计数与截断接口
  - TiktokenCounter — 基于 tiktoken 的 TokenCounter 实现
  - BuildPrompt — 按工具类型把输出拼装为摘要提示词

# 行为约定

  - 摘要文本允许为空，Token 总量缺省为 0
  - 启用预算时输入提示词被截断到 MaxInputTokens 以内再发送
*/
package llm
