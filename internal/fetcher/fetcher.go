package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	// minContentChars 命中选择器的内容低于该长度时视为非正文，继续尝试下一个
	minContentChars = 100
)

// strippedTags 与正文无关的元素，解析前整体移除
const strippedTags = "script, style, nav, header, footer, aside, iframe, noscript"

// contentSelectors 按优先级排列的正文容器选择器
var contentSelectors = []string{
	"article",
	"[role=\"main\"]",
	".article-content",
	".post-content",
	".entry-content",
	".content",
	"main",
	".story-body",
}

var (
	blankLinePattern = regexp.MustCompile(`\n\s*\n`)
	spaceRunPattern  = regexp.MustCompile(` +`)
)

// FetchError 抓取网页失败
type FetchError struct {
	URL        string
	StatusCode int // 0表示未收到HTTP响应
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch %s: status code %d", e.URL, e.StatusCode)
	}

	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Result 网页抓取结果
type Result struct {
	Content string // 清洗后的正文
	Title   string // 页面标题，可能为空
}

// Config 网页抓取配置
type Config struct {
	Timeout   time.Duration // 单次请求超时
	UserAgent string        // 请求携带的User-Agent
}

// DefaultConfig 返回默认抓取配置
func DefaultConfig() *Config {
	return &Config{
		Timeout:   defaultTimeout,
		UserAgent: defaultUserAgent,
	}
}

// Option 抓取配置选项函数类型
type Option func(*Config)

// WithTimeout 设置请求超时
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithUserAgent 设置User-Agent
func WithUserAgent(userAgent string) Option {
	return func(c *Config) {
		c.UserAgent = userAgent
	}
}

// Fetcher 抓取网页并提取文章正文
type Fetcher struct {
	config     *Config
	httpClient *http.Client
}

// NewFetcher 创建网页抓取器
func NewFetcher(opts ...Option) *Fetcher {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(config)
	}

	return &Fetcher{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Fetch 抓取指定URL并提取正文和标题。
// 自动跟随重定向，非2xx状态码或网络错误返回FetchError。
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", f.config.UserAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	doc.Find(strippedTags).Remove()

	return &Result{
		Content: extractContent(doc),
		Title:   extractTitle(doc),
	}, nil
}

// extractContent 按选择器优先级提取正文，全部未命中时回退到整个body
func extractContent(doc *goquery.Document) string {
	for _, selector := range contentSelectors {
		element := doc.Find(selector).First()
		if element.Length() == 0 {
			continue
		}

		text := blockText(element)
		if utf8.RuneCountInString(text) > minContentChars {
			return cleanWhitespace(text)
		}
	}

	return cleanWhitespace(blockText(doc.Find("body").First()))
}

// extractTitle 依次尝试title标签、og:title、首个h1
func extractTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("head title").First().Text()); title != "" {
		return title
	}

	if ogTitle, ok := doc.Find("meta[property='og:title']").Attr("content"); ok {
		if title := strings.TrimSpace(ogTitle); title != "" {
			return title
		}
	}

	return strings.TrimSpace(doc.Find("h1").First().Text())
}

// blockText 收集选区内所有文本节点，逐个去除首尾空白后按行拼接
func blockText(sel *goquery.Selection) string {
	var parts []string
	collectText(sel, &parts)

	return strings.Join(parts, "\n")
}

func collectText(sel *goquery.Selection, parts *[]string) {
	sel.Contents().Each(func(_ int, child *goquery.Selection) {
		if goquery.NodeName(child) == "#text" {
			if text := strings.TrimSpace(child.Text()); text != "" {
				*parts = append(*parts, text)
			}
			return
		}
		collectText(child, parts)
	})
}

// cleanWhitespace 折叠多余空行和连续空格
func cleanWhitespace(text string) string {
	text = blankLinePattern.ReplaceAllString(text, "\n\n")
	text = spaceRunPattern.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}
