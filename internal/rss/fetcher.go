package rss

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/iabetor/newsreader/internal/logger"
	"github.com/mmcdole/gofeed"
)

const (
	defaultFetchTimeout = 30 * time.Second
	defaultMaxBodySize  = 10 << 20 // 10MB

	// 直连时使用的浏览器 UA 和 Referer，部分站点会拒绝无标识的客户端。
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/74.0.3729.169 Safari/537.36"
	DefaultReferer   = "https://www.google.com/"
)

// Fetcher 负责抓取和解析订阅源内容。
// 除了构造时的只读设置外不保存任何状态，每次调用都使用独立的连接。
type Fetcher struct {
	timeout     time.Duration
	userAgent   string
	referer     string
	maxBodySize int64
}

// FetcherOption 配置 Fetcher。
type FetcherOption func(*Fetcher)

// WithTimeout 设置单次抓取的超时时间。
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithUserAgent 设置直连时的 User-Agent。
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithReferer 设置直连时的 Referer。
func WithReferer(ref string) FetcherOption {
	return func(f *Fetcher) {
		if ref != "" {
			f.referer = ref
		}
	}
}

// WithMaxBodySize 设置响应内容的最大字节数，超出时返回 *FetchError。
func WithMaxBodySize(n int64) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBodySize = n
		}
	}
}

// NewFetcher 创建 RSS 内容抓取器。
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		timeout:     defaultFetchTimeout,
		userAgent:   DefaultUserAgent,
		referer:     DefaultReferer,
		maxBodySize: defaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch 抓取 feedURL 并返回规范化后的条目。
// 请求协议对应的代理存在时经代理访问，否则直连并带上浏览器 UA 和 Referer。
// 网络错误返回 *FetchError；内容无法解析或是 Atom 等不支持的格式时返回 *ParseError。
func (f *Fetcher) Fetch(ctx context.Context, feedURL string, proxy ProxySettings) ([]FeedItem, error) {
	body, err := f.download(ctx, feedURL, proxy)
	if err != nil {
		return nil, &FetchError{URL: feedURL, Err: err}
	}

	switch typ := gofeed.DetectFeedType(bytes.NewReader(body)); typ {
	case gofeed.FeedTypeAtom, gofeed.FeedTypeJSON:
		logger.Warnf("[rss] %s 是 %s 格式，只支持 RSS/RDF", feedURL, feedTypeName(typ))
		return nil, &ParseError{URL: feedURL, Err: fmt.Errorf("%w: %s", ErrUnsupportedFormat, feedTypeName(typ))}
	}

	items, err := parseItems(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{URL: feedURL, Err: err}
	}

	logger.Debugf("[rss] %s 共 %d 条", feedURL, len(items))
	return items, nil
}

func feedTypeName(typ gofeed.FeedType) string {
	switch typ {
	case gofeed.FeedTypeAtom:
		return "Atom"
	case gofeed.FeedTypeJSON:
		return "JSON Feed"
	case gofeed.FeedTypeRSS:
		return "RSS"
	default:
		return "unknown"
	}
}

// download 执行 GET 请求并读取响应内容。
func (f *Fetcher) download(ctx context.Context, feedURL string, proxy ProxySettings) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}

	proxyURL, err := proxy.ProxyFor(req.URL.Scheme)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	defer transport.CloseIdleConnections()

	if proxyURL != nil {
		logger.Debugf("[rss] 通过代理 %s 抓取 %s", proxyURL.Host, feedURL)
		transport.Proxy = http.ProxyURL(proxyURL)
	} else {
		transport.Proxy = nil
		req.Header.Set("User-Agent", f.userAgent)
		req.Header.Set("Referer", f.referer)
	}

	client := &http.Client{Timeout: f.timeout, Transport: transport}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBodySize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, f.maxBodySize)
	}
	return body, nil
}
