package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iabetor/newsreader/internal/config"
	"github.com/iabetor/newsreader/internal/logger"
	"github.com/iabetor/newsreader/internal/rss"
)

func usage() {
	fmt.Fprintf(os.Stderr, `用法: newsreader [-config path] <command> [args]

命令:
  list                                   列出所有订阅源
  read <name>                            抓取订阅源并列出条目
  show <name> <n>                        查看第 n 条的内容
  add <name> <url> [description]         添加订阅源
  change <old> <name> <url> [description] 修改订阅源
  delete <name>                          删除订阅源
`)
	flag.PrintDefaults()
}

func main() {
	configPath := flag.String("config", "", "配置文件路径（为空则使用默认配置）")
	flag.Usage = usage
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
			os.Exit(1)
		}
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	store, err := rss.NewFeedStore(cfg.Feeds.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "打开订阅源配置失败: %v\n", err)
		os.Exit(1)
	}
	fetcher := rss.NewFetcher(
		rss.WithTimeout(cfg.Fetch.Timeout()),
		rss.WithUserAgent(cfg.Fetch.UserAgent),
		rss.WithReferer(cfg.Fetch.Referer),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{store: store, fetcher: fetcher, out: os.Stdout}
	if err := a.run(ctx, flag.Args()); err != nil {
		if errors.Is(err, errUsage) {
			usage()
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
