package llm

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter counts tokens and truncates text to a token budget.
type TokenCounter interface {
	Count(text string) (int, error)
	Truncate(text string, maxTokens int) (string, error)
}

// TiktokenCounter 基于 tiktoken 编码实现 TokenCounter。
// Gemini 不公开其分词器，cl100k_base 在预算场景下是足够好的近似。
type TiktokenCounter struct {
	encoding string
	enc      *tiktoken.Tiktoken
	once     sync.Once
	initErr  error
}

// NewTiktokenCounter 创建计数器，encoding 为空时使用 cl100k_base。
func NewTiktokenCounter(encoding string) *TiktokenCounter {
	if encoding == "" {
		encoding = "cl100k_base"
	}
	return &TiktokenCounter{encoding: encoding}
}

// init 延迟初始化编码（首次使用时可能下载数据）。
func (t *TiktokenCounter) init() error {
	t.once.Do(func() {
		enc, err := tiktoken.GetEncoding(t.encoding)
		if err != nil {
			t.initErr = fmt.Errorf("init tiktoken encoding %s: %w", t.encoding, err)
			return
		}
		t.enc = enc
	})
	return t.initErr
}

// Count 返回文本的 Token 数。
func (t *TiktokenCounter) Count(text string) (int, error) {
	if err := t.init(); err != nil {
		return 0, err
	}
	return len(t.enc.Encode(text, nil, nil)), nil
}

// Truncate 将文本截断到 maxTokens 以内；未超限时原样返回。
func (t *TiktokenCounter) Truncate(text string, maxTokens int) (string, error) {
	if err := t.init(); err != nil {
		return "", err
	}

	tokens := t.enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text, nil
	}
	return t.enc.Decode(tokens[:maxTokens]), nil
}
