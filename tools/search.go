package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/ZhouKai90/runlog/internal/tlsutil"
	"github.com/ZhouKai90/runlog/types"
)

// SearchProvider performs a web search for a free-form query.
type SearchProvider interface {
	Search(ctx context.Context, query string) ([]types.SearchResult, error)
}

// SearchConfig configures the DuckDuckGo provider.
type SearchConfig struct {
	// Endpoint is the HTML search endpoint.
	Endpoint string `yaml:"endpoint" json:"endpoint"`

	// Timeout bounds a single search request.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	// MaxResults caps the number of returned results.
	MaxResults int `yaml:"max_results" json:"max_results"`

	// UserAgent is sent with every request.
	UserAgent string `yaml:"user_agent" json:"user_agent"`
}

// DefaultSearchConfig returns the default search configuration.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		Endpoint:   "https://html.duckduckgo.com/html/",
		Timeout:    10 * time.Second,
		MaxResults: 10,
		UserAgent:  "Mozilla/5.0 (compatible; runlog/1.0)",
	}
}

// DuckDuckGo is a SearchProvider backed by the DuckDuckGo HTML endpoint.
// The endpoint returns server-rendered HTML; results are anchors carrying
// the "result__a" class.
type DuckDuckGo struct {
	config SearchConfig
	client *http.Client
	logger *zap.Logger
}

// NewDuckDuckGo creates a DuckDuckGo search provider.
func NewDuckDuckGo(config SearchConfig, logger *zap.Logger) *DuckDuckGo {
	if config.Endpoint == "" {
		config.Endpoint = DefaultSearchConfig().Endpoint
	}
	if config.MaxResults <= 0 {
		config.MaxResults = DefaultSearchConfig().MaxResults
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultSearchConfig().Timeout
	}

	return &DuckDuckGo{
		config: config,
		client: tlsutil.SecureHTTPClient(config.Timeout),
		logger: logger.With(zap.String("component", "web_search")),
	}
}

// Search queries the HTML endpoint and extracts up to MaxResults results.
// Zero results is an error: the caller treats it as a failed run.
func (d *DuckDuckGo) Search(ctx context.Context, query string) ([]types.SearchResult, error) {
	endpoint := fmt.Sprintf("%s?q=%s", d.config.Endpoint, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, types.NewUpstreamError("build search request", err)
	}
	req.Header.Set("User-Agent", d.config.UserAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Warn("search request failed", zap.String("query", query), zap.Error(err))
		return nil, types.NewUpstreamError("search request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		d.logger.Warn("search returned non-200",
			zap.String("query", query),
			zap.Int("status", resp.StatusCode),
		)
		return nil, types.NewUpstreamError(fmt.Sprintf("search returned status %d", resp.StatusCode), nil)
	}

	results, err := d.parseResults(resp.Body)
	if err != nil {
		return nil, types.NewUpstreamError("parse search results", err)
	}

	if len(results) == 0 {
		return nil, types.NewError(types.ErrNoResults, "no search results found")
	}

	d.logger.Debug("search completed",
		zap.String("query", query),
		zap.Int("results", len(results)),
	)

	return results, nil
}

// parseResults walks the HTML tree collecting result anchors until the
// configured cap is reached.
func (d *DuckDuckGo) parseResults(r io.Reader) ([]types.SearchResult, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var results []types.SearchResult
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(results) >= d.config.MaxResults {
			return
		}

		if n.Type == html.ElementNode && n.Data == "a" && hasClass(n, "result__a") {
			title := strings.TrimSpace(textContent(n))
			link := attr(n, "href")
			if title != "" && link != "" {
				results = append(results, types.SearchResult{Title: title, Link: link})
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return results, nil
}

// hasClass reports whether the node's class attribute contains name.
func hasClass(n *html.Node, name string) bool {
	for _, cls := range strings.Fields(attr(n, "class")) {
		if cls == name {
			return true
		}
	}
	return false
}

// attr returns the value of the named attribute, or "".
func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// textContent concatenates all text nodes under n.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
