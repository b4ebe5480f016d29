package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 是 newsreader 的顶层配置结构。
type Config struct {
	Feeds FeedsConfig `yaml:"feeds"`
	Fetch FetchConfig `yaml:"fetch"`
	Log   LogConfig   `yaml:"log"`
}

// FeedsConfig 订阅源存储配置。
type FeedsConfig struct {
	// File 订阅源 XML 配置文件路径。
	File string `yaml:"file"`
}

// FetchConfig 抓取配置。
type FetchConfig struct {
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	UserAgent      string `yaml:"user_agent"`
	Referer        string `yaml:"referer"`
}

// Timeout 返回抓取超时时间。
func (c FetchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LogConfig 日志配置。
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
}

// Load 读取 YAML 配置文件并返回 Config。
// 支持 ${VAR_NAME} 形式的环境变量展开。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}

	expanded := os.Expand(string(data), func(key string) string {
		return os.Getenv(key)
	})

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}

	setDefaults(cfg)
	return cfg, nil
}

// Default 返回没有配置文件时使用的默认配置。
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// setDefaults 为未设置的配置项填充默认值。
func setDefaults(cfg *Config) {
	if cfg.Feeds.File == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			cfg.Feeds.File = filepath.Join(home, ".newsreader", "feeds.xml")
		} else {
			cfg.Feeds.File = "./feeds.xml"
		}
	}
	cfg.Feeds.File = expandHome(cfg.Feeds.File)
	cfg.Log.File = expandHome(cfg.Log.File)

	if cfg.Fetch.TimeoutSeconds <= 0 {
		cfg.Fetch.TimeoutSeconds = 30
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	cfg.Fetch.UserAgent = strings.TrimSpace(cfg.Fetch.UserAgent)
	cfg.Fetch.Referer = strings.TrimSpace(cfg.Fetch.Referer)
}

// expandHome 把 ~/ 开头的路径替换为用户主目录，Go 不会自动展开 ~。
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, _ := os.UserHomeDir()
	if home == "" {
		return path
	}
	return filepath.Join(home, path[2:])
}
