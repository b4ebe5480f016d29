package rss

import (
	"io"

	"golang.org/x/net/html"
)

// 各 RSS 方言使用的命名空间。
const (
	nsRSS10      = "http://purl.org/rss/1.0/"
	nsRSS090     = "http://my.netscape.com/rdf/simple/0.9/"
	nsDublinCore = "http://purl.org/dc/elements/1.1/"
)

var (
	// feedNamespaces 按优先级排列：无命名空间（RSS 0.91~0.94、2.0）、RSS 1.0、RSS 0.90。
	feedNamespaces = []string{"", nsRSS10, nsRSS090}
	// dublinCoreNamespaces 在 feedNamespaces 都找不到时使用。
	dublinCoreNamespaces = []string{nsDublinCore}
)

// findMatches 依次尝试 namespaces，返回第一个有匹配结果的命名空间下的全部元素。
// 一旦某个命名空间命中，后面的命名空间不再查找。
func findMatches(node *xmlNode, tag string, namespaces []string) []*xmlNode {
	for _, ns := range namespaces {
		if found := node.descendants(ns, tag); len(found) > 0 {
			return found
		}
	}
	return nil
}

// findFirstMatch 返回 findMatches 结果中的第一个元素，没有则返回 nil。
func findFirstMatch(node *xmlNode, tag string, namespaces []string) *xmlNode {
	if found := findMatches(node, tag, namespaces); len(found) > 0 {
		return found[0]
	}
	return nil
}

func nodeText(node *xmlNode, tag string, namespaces []string) string {
	if m := findFirstMatch(node, tag, namespaces); m != nil {
		return m.text()
	}
	return ""
}

// lookupText 两级查找：先查 RSS 命名空间，再查 Dublin Core，都为空时返回 def。
func lookupText(node *xmlNode, tag, def string) string {
	if s := nodeText(node, tag, feedNamespaces); s != "" {
		return s
	}
	if s := nodeText(node, tag, dublinCoreNamespaces); s != "" {
		return s
	}
	return def
}

// Parse 解析 RSS/RDF 文档并返回规范化后的条目，顺序与文档中 item 的顺序一致。
// 文档中没有 item 时返回空切片而不是错误。
func Parse(r io.Reader) ([]FeedItem, error) {
	items, err := parseItems(r)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	return items, nil
}

func parseItems(r io.Reader) ([]FeedItem, error) {
	doc, err := parseTree(r)
	if err != nil {
		return nil, err
	}

	channel := lookupText(doc, "title", DefaultChannel)

	nodes := findMatches(doc, "item", feedNamespaces)
	items := make([]FeedItem, 0, len(nodes))
	for _, n := range nodes {
		items = append(items, FeedItem{
			Channel: channel,
			Type:    lookupText(n, "type", DefaultType),
			Link:    lookupText(n, "link", ""),
			Title:   html.UnescapeString(lookupText(n, "title", DefaultTitle)),
			Date:    lookupText(n, "pubDate", lookupText(n, "date", "")),
			Desc:    html.UnescapeString(lookupText(n, "description", "")),
		})
	}
	return items, nil
}
