package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ZhouKai90/runlog/internal/metrics"
	"github.com/ZhouKai90/runlog/internal/tlsutil"
	"github.com/ZhouKai90/runlog/llm"
	"github.com/ZhouKai90/runlog/types"
)

// Provider 实现 Google Gemini 的摘要调用
// Gemini API 特点：
// 1. 使用 x-goog-api-key 请求头认证
// 2. generateContent 返回 candidates 与 usageMetadata
// 3. usageMetadata 缺失时 Token 总量记为 0
type Provider struct {
	cfg       Config
	client    *http.Client
	logger    *zap.Logger
	collector *metrics.Collector
}

// Config Gemini 客户端配置
type Config struct {
	// API Key
	APIKey string `yaml:"api_key" json:"api_key"`
	// 基础 URL，默认官方端点
	BaseURL string `yaml:"base_url" json:"base_url"`
	// 模型名称
	Model string `yaml:"model" json:"model"`
	// 请求超时
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
	// 最大重试次数（仅对可重试错误）
	MaxRetries int `yaml:"max_retries" json:"max_retries"`
}

// New 创建 Gemini Provider
func New(cfg Config, logger *zap.Logger) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	return &Provider{
		cfg:    cfg,
		client: tlsutil.SecureHTTPClient(cfg.Timeout),
		logger: logger.With(zap.String("component", "gemini")),
	}
}

// WithCollector 设置指标收集器，记录摘要请求的次数、耗时与 Token 用量
func (p *Provider) WithCollector(collector *metrics.Collector) *Provider {
	p.collector = collector
	return p
}

// Name 返回 Provider 名称
func (p *Provider) Name() string { return "gemini" }

// Model 返回配置的模型名称
func (p *Provider) Model() string { return p.cfg.Model }

// Gemini 请求/响应结构
type geminiContent struct {
	Role  string       `json:"role,omitempty"` // user, model
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
	Index        int           `json:"index"`
}

type geminiUsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

type geminiResponse struct {
	Candidates    []geminiCandidate    `json:"candidates"`
	UsageMetadata *geminiUsageMetadata `json:"usageMetadata,omitempty"`
	ModelVersion  string               `json:"modelVersion,omitempty"`
	ResponseID    string               `json:"responseId,omitempty"`
}

type geminiErrorResp struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (p *Provider) buildHeaders(req *http.Request) {
	// Gemini 使用 x-goog-api-key 认证
	req.Header.Set("x-goog-api-key", p.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
}

// Summarize 调用 generateContent 并提取首个候选的文本与 Token 用量。
// 实现 llm.Summarizer。
func (p *Provider) Summarize(ctx context.Context, prompt string) (*llm.Summary, error) {
	start := time.Now()
	summary, err := p.summarize(ctx, prompt)

	if p.collector != nil {
		status := "success"
		tokens := 0
		if err != nil {
			status = "error"
		} else {
			tokens = summary.TotalTokens
		}
		p.collector.RecordSummaryRequest(p.Name(), p.cfg.Model, status, time.Since(start), tokens)
	}
	return summary, err
}

func (p *Provider) summarize(ctx context.Context, prompt string) (*llm.Summary, error) {
	body := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, types.NewUpstreamError("marshal gemini request", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent",
		strings.TrimRight(p.cfg.BaseURL, "/"), p.cfg.Model)

	var lastErr error
	attempts := p.cfg.MaxRetries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		summary, err := p.generateContent(ctx, endpoint, payload)
		if err == nil {
			return summary, nil
		}
		lastErr = err

		if !types.IsRetryable(err) || ctx.Err() != nil {
			return nil, err
		}

		p.logger.Warn("gemini request failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}

	return nil, lastErr
}

func (p *Provider) generateContent(ctx context.Context, endpoint string, payload []byte) (*llm.Summary, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, types.NewUpstreamError("build gemini request", err)
	}
	p.buildHeaders(httpReq)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, types.NewError(types.ErrUpstreamTimeout, "gemini request timed out").
				WithCause(err).WithRetryable(true)
		}
		return nil, types.NewUpstreamError("gemini request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg := readErrorMessage(resp.Body)
		return nil, mapHTTPError(resp.StatusCode, msg)
	}

	var geminiResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return nil, types.NewUpstreamError("decode gemini response", err)
	}

	summary := &llm.Summary{}
	if len(geminiResp.Candidates) > 0 && len(geminiResp.Candidates[0].Content.Parts) > 0 {
		summary.Text = geminiResp.Candidates[0].Content.Parts[0].Text
	}
	if geminiResp.UsageMetadata != nil {
		summary.TotalTokens = geminiResp.UsageMetadata.TotalTokenCount
	}

	p.logger.Debug("gemini summarization completed",
		zap.Int("total_tokens", summary.TotalTokens),
		zap.Bool("empty_text", summary.Text == ""),
	)

	return summary, nil
}

// readErrorMessage 提取 Gemini 错误响应中的 message 字段
func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}

	var errResp geminiErrorResp
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}
	return strings.TrimSpace(string(data))
}

// mapHTTPError 将 Gemini HTTP 错误映射为统一错误
func mapHTTPError(status int, msg string) *types.Error {
	if msg == "" {
		msg = fmt.Sprintf("gemini returned status %d", status)
	}

	switch {
	case status == http.StatusTooManyRequests:
		return types.NewError(types.ErrUpstreamError, msg).
			WithHTTPStatus(http.StatusBadGateway).WithRetryable(true)
	case status >= 500:
		return types.NewError(types.ErrUpstreamError, msg).
			WithHTTPStatus(http.StatusBadGateway).WithRetryable(true)
	default:
		// 4xx（认证、配额、请求格式）重试无意义
		return types.NewError(types.ErrUpstreamError, msg).
			WithHTTPStatus(http.StatusBadGateway)
	}
}
