// Package rss 提供订阅源配置存储和 RSS/RDF 内容抓取功能。
package rss

import (
	"net/url"
	"strings"
)

// Feed 订阅源信息。
type Feed struct {
	Name        string
	URL         string
	Description string
	IsFavorite  bool
}

// FeedItem 订阅源条目。所有字段总有值，缺失时使用默认值。
type FeedItem struct {
	Channel string
	Type    string
	Link    string
	Title   string
	Date    string
	Desc    string
}

// 条目字段默认值。
const (
	DefaultChannel = "no channelname"
	DefaultType    = "feed"
	DefaultTitle   = "<no title>"
)

// IsNested 判断条目是否指向另一个订阅源（folder / pubfeed）。
func (it FeedItem) IsNested() bool {
	return strings.HasPrefix(it.Type, "folder") || strings.HasPrefix(it.Type, "pubfeed")
}

// AsFeed 把嵌套条目转换成可直接抓取的订阅源。
func (it FeedItem) AsFeed() Feed {
	return Feed{
		Name:        it.Title,
		URL:         it.Link,
		Description: it.Desc,
	}
}

// ProxySettings 代理配置：协议 -> 代理地址（如 "proxy.lan:3128"）。
type ProxySettings map[string]string

// ProxyFor 返回指定协议应使用的代理地址，没有配置时返回 nil。
// https 没有单独配置时沿用 http 的代理。
func (p ProxySettings) ProxyFor(scheme string) (*url.URL, error) {
	addr := p[scheme]
	if addr == "" && scheme == "https" {
		addr = p["http"]
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, nil
	}
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	return url.Parse(addr)
}
