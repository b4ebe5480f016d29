package rss

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateName 同名订阅源已存在。
	ErrDuplicateName = errors.New("feed already exists")
	// ErrNotFound 订阅源不存在。
	ErrNotFound = errors.New("feed not found in config")
	// ErrEmptyName 订阅源名称为空。
	ErrEmptyName = errors.New("feed name must not be empty")
	// ErrUnsupportedFormat 文档是 Atom 等不支持的格式。
	ErrUnsupportedFormat = errors.New("unsupported feed format")
	// ErrResponseTooLarge 响应内容超过允许的大小。
	ErrResponseTooLarge = errors.New("response too large")
)

// ConfigParseError 订阅源配置文件无法读取或格式错误。
// 只会被记录到日志，调用方看到的是空列表。
type ConfigParseError struct {
	Path string
	Err  error
}

func (e *ConfigParseError) Error() string {
	return fmt.Sprintf("illegal config file %s: %v", e.Path, e.Err)
}

func (e *ConfigParseError) Unwrap() error { return e.Err }

// FetchError 网络层错误：连接失败、超时、DNS 解析失败或 HTTP 错误状态码。
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError 订阅源内容不是合法的 XML。
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("parse feed: %v", e.Err)
	}
	return fmt.Sprintf("parse feed %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
