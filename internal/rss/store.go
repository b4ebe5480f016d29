package rss

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/iabetor/newsreader/internal/logger"
)

// 状态提示文本，供界面层直接展示。
const (
	MsgFeedAdded   = "Feed added"
	MsgFeedUpdated = "Feed updated"
)

// feedsDocument 对应订阅源配置文件：
//
//	<feeds>
//	  <feed><name/><url/><description/></feed>
//	  <proxy><useproxy/><http/><ftp/></proxy>
//	</feeds>
type feedsDocument struct {
	XMLName xml.Name    `xml:"feeds"`
	Feeds   []feedEntry `xml:"feed"`
	Proxy   *proxyEntry `xml:"proxy,omitempty"`
}

type feedEntry struct {
	Name        string `xml:"name"`
	URL         string `xml:"url"`
	Description string `xml:"description,omitempty"`
}

type proxyEntry struct {
	UseProxy *struct{} `xml:"useproxy"`
	HTTP     string    `xml:"http,omitempty"`
	FTP      string    `xml:"ftp,omitempty"`
}

// FeedStore 订阅源持久化存储，以 XML 文件为后端。
// 每次修改都会重写整个文件。
type FeedStore struct {
	mu       sync.RWMutex
	filePath string
	feeds    []Feed
	proxy    *proxyEntry
}

// NewFeedStore 创建订阅源存储并加载 path 指向的配置文件。
func NewFeedStore(path string) (*FeedStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("创建数据目录失败: %w", err)
	}
	s := &FeedStore{filePath: path}
	s.Load()
	return s, nil
}

// Path 返回配置文件路径。
func (s *FeedStore) Path() string {
	return s.filePath
}

// Load 重新读取配置文件。文件缺失或格式错误时记录日志并使用空列表，不返回错误。
func (s *FeedStore) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := readFeedsDocument(s.filePath)
	if err != nil {
		logger.Warnf("[rss] 加载订阅源配置失败（将使用空列表）: %v", err)
		s.feeds = make([]Feed, 0)
		s.proxy = nil
		return
	}

	s.feeds = make([]Feed, 0, len(doc.Feeds))
	for _, e := range doc.Feeds {
		s.feeds = append(s.feeds, Feed{
			Name:        strings.TrimSpace(e.Name),
			URL:         strings.TrimSpace(e.URL),
			Description: strings.TrimSpace(e.Description),
			IsFavorite:  true,
		})
	}
	s.proxy = doc.Proxy
	logger.Debugf("[rss] 已加载 %d 个订阅源: %s", len(s.feeds), s.filePath)
}

func readFeedsDocument(path string) (*feedsDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigParseError{Path: path, Err: err}
	}
	var doc feedsDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &ConfigParseError{Path: path, Err: err}
	}
	return &doc, nil
}

func (s *FeedStore) save() error {
	doc := feedsDocument{Proxy: s.proxy}
	for _, f := range s.feeds {
		doc.Feeds = append(doc.Feeds, feedEntry{
			Name:        f.Name,
			URL:         f.URL,
			Description: f.Description,
		})
	}

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化订阅源失败: %w", err)
	}
	data = append([]byte(xml.Header), data...)
	data = append(data, '\n')

	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("写入订阅源配置失败: %w", err)
	}
	if err := os.Rename(tmp, s.filePath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("写入订阅源配置失败: %w", err)
	}
	return nil
}

// List 按文档顺序列出所有订阅源。
func (s *FeedStore) List() []Feed {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]Feed, len(s.feeds))
	copy(result, s.feeds)
	return result
}

func (s *FeedStore) indexOf(name string) int {
	for i, f := range s.feeds {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// FindByName 按名称精确查找订阅源。
func (s *FeedStore) FindByName(name string) (Feed, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(name); i >= 0 {
		return s.feeds[i], true
	}
	return Feed{}, false
}

// Add 添加订阅源并标记为收藏。名称为空时返回 ErrEmptyName，同名订阅源已存在时返回 ErrDuplicateName。
func (s *FeedStore) Add(feed Feed) (string, error) {
	if strings.TrimSpace(feed.Name) == "" {
		return "", ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(feed.Name) >= 0 {
		return "", fmt.Errorf("%w: %s", ErrDuplicateName, feed.Name)
	}

	feed.IsFavorite = true
	s.feeds = append(s.feeds, feed)
	if err := s.save(); err != nil {
		s.feeds = s.feeds[:len(s.feeds)-1]
		return "", err
	}
	return MsgFeedAdded, nil
}

// Update 用 feed 替换名为 oldName 的订阅源，feed 可以带新名称。
// oldName 不存在时返回 ErrNotFound；新名称为空时返回 ErrEmptyName；
// 新名称与其他订阅源冲突时返回 ErrDuplicateName。
func (s *FeedStore) Update(oldName string, feed Feed) (string, error) {
	if strings.TrimSpace(feed.Name) == "" {
		return "", ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(oldName)
	if i < 0 {
		return "", fmt.Errorf("%w: %s", ErrNotFound, oldName)
	}
	if feed.Name != oldName && s.indexOf(feed.Name) >= 0 {
		return "", fmt.Errorf("%w: %s", ErrDuplicateName, feed.Name)
	}

	old := s.feeds[i]
	s.feeds[i] = feed
	if err := s.save(); err != nil {
		s.feeds[i] = old
		return "", err
	}
	return MsgFeedUpdated, nil
}

// Delete 删除第一个名为 name 的订阅源。不存在时什么也不做。
func (s *FeedStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(name)
	if i < 0 {
		return nil
	}
	s.feeds = append(s.feeds[:i], s.feeds[i+1:]...)
	return s.save()
}

// ProxySettings 返回代理配置。没有 <proxy> 块或缺少 <useproxy/> 时第二个返回值为 false。
func (s *FeedStore) ProxySettings() (ProxySettings, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.proxy == nil || s.proxy.UseProxy == nil {
		return nil, false
	}
	settings := ProxySettings{}
	if v := strings.TrimSpace(s.proxy.HTTP); v != "" {
		settings["http"] = v
	}
	if v := strings.TrimSpace(s.proxy.FTP); v != "" {
		settings["ftp"] = v
	}
	return settings, true
}
