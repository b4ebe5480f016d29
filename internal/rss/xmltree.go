package rss

import (
	"errors"
	"fmt"
	"io"
	"strings"

	xpp "github.com/mmcdole/goxpp"
	"golang.org/x/net/html/charset"
)

var errNoRootElement = errors.New("no root element")

// xmlNode 是解析期间使用的最小元素树，只保留命名空间、标签名和直接文本子节点。
// 树的生命周期限定在一次 Parse 调用内。
type xmlNode struct {
	space    string
	name     string
	parent   *xmlNode
	children []*xmlNode
	texts    []string
}

// text 拼接所有直接文本子节点（不加分隔符）。
func (n *xmlNode) text() string {
	return strings.Join(n.texts, "")
}

// descendants 按文档顺序返回所有匹配的后代元素，不包含 n 本身。
func (n *xmlNode) descendants(space, name string) []*xmlNode {
	var out []*xmlNode
	var walk func(cur *xmlNode)
	walk = func(cur *xmlNode) {
		for _, c := range cur.children {
			if c.space == space && c.name == name {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

// parseTree 读取整个 XML 文档，返回一个虚拟的文档节点，其子节点为根元素。
// 元素的 space 是解析后的命名空间 URI，没有命名空间时为空串。
// 使用严格模式：HTML 页面、标签不匹配和未定义的实体都会返回错误。
func parseTree(r io.Reader) (*xmlNode, error) {
	p := xpp.NewXMLPullParser(r, true, charset.NewReaderLabel)

	doc := &xmlNode{}
	cur := doc
	for {
		event, err := p.Next()
		if err != nil {
			return nil, err
		}

		switch event {
		case xpp.StartTag:
			n := &xmlNode{space: p.Space, name: p.Name, parent: cur}
			cur.children = append(cur.children, n)
			cur = n
		case xpp.EndTag:
			if cur.parent == nil {
				return nil, fmt.Errorf("unexpected end tag </%s>", p.Name)
			}
			cur = cur.parent
		case xpp.Text:
			// 根元素之外的文本（例如纯文本响应）不属于任何元素
			if cur != doc {
				cur.texts = append(cur.texts, p.Text)
			}
		case xpp.EndDocument:
			if len(doc.children) == 0 {
				return nil, errNoRootElement
			}
			if cur != doc {
				return nil, fmt.Errorf("unexpected EOF inside <%s>", cur.name)
			}
			return doc, nil
		}
	}
}
