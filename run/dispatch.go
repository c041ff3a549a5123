// Copyright 2025-2026 RunLog Authors. All rights reserved.
// Use of this source code is governed by the project license.

package run

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ZhouKai90/runlog/llm"
	"github.com/ZhouKai90/runlog/tools"
	"github.com/ZhouKai90/runlog/types"
)

// ===== 🎯 工具调度 =====

// Dispatcher 按请求的工具类型调用对应的协作方并生成摘要。
// 每次调度要么产出完整结果，要么返回带类型码的错误，没有中间态。
type Dispatcher struct {
	search     tools.SearchProvider
	calculator tools.Evaluator
	summarizer llm.Summarizer
	logger     *zap.Logger
}

// NewDispatcher 创建调度器
func NewDispatcher(search tools.SearchProvider, calculator tools.Evaluator, summarizer llm.Summarizer, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		search:     search,
		calculator: calculator,
		summarizer: summarizer,
		logger:     logger,
	}
}

// Dispatch 执行一次查询：调用工具、生成摘要、在完成时打时间戳。
// 时间戳取自结果组装完成的时刻，而非请求到达的时刻。
func (d *Dispatcher) Dispatch(ctx context.Context, req types.RunRequest) (*types.RunResult, error) {
	output, err := d.runTool(ctx, req)
	if err != nil {
		return nil, err
	}

	prompt, err := llm.BuildPrompt(req.Prompt, output)
	if err != nil {
		return nil, types.NewError(types.ErrInternalError, "组装摘要提示词失败").WithCause(err)
	}

	summary, err := d.summarizer.Summarize(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return &types.RunResult{
		UserID:     req.UserID,
		Prompt:     req.Prompt,
		Output:     output,
		Summary:    summary.Text,
		TokenCount: summary.TotalTokens,
		Timestamp:  time.Now().UTC(),
	}, nil
}

// runTool 调用请求指定的工具，其余工具的故障与之无关。
func (d *Dispatcher) runTool(ctx context.Context, req types.RunRequest) (types.ToolOutput, error) {
	switch req.Tool {
	case types.ToolWebSearch:
		results, err := d.search.Search(ctx, req.Prompt)
		if err != nil {
			return types.ToolOutput{}, err
		}
		return types.ToolOutput{Tool: types.ToolWebSearch, Results: results}, nil

	case types.ToolCalculator:
		value, err := d.calculator.Evaluate(req.Prompt)
		if err != nil {
			return types.ToolOutput{}, err
		}
		return types.ToolOutput{Tool: types.ToolCalculator, Value: value}, nil

	default:
		// 校验层已拦截，触达此处说明调用顺序被破坏
		return types.ToolOutput{}, types.NewError(types.ErrInternalError, "调度了未知工具 "+string(req.Tool))
	}
}
