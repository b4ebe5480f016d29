package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iabetor/newsreader/internal/logger"
	"github.com/iabetor/newsreader/internal/rss"
)

var errUsage = errors.New("usage")

// app 是订阅源存储和抓取器之上的命令行界面层。
type app struct {
	store   *rss.FeedStore
	fetcher *rss.Fetcher
	out     io.Writer
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	cmd, args := args[0], args[1:]
	switch cmd {
	case "list":
		return a.list()
	case "read":
		if len(args) != 1 {
			return errUsage
		}
		return a.read(ctx, args[0])
	case "show":
		if len(args) != 2 {
			return errUsage
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("条目序号无效: %s", args[1])
		}
		return a.show(ctx, args[0], n)
	case "add":
		if len(args) < 2 || len(args) > 3 {
			return errUsage
		}
		return a.add(feedFromArgs(args))
	case "change":
		if len(args) < 3 || len(args) > 4 {
			return errUsage
		}
		return a.change(args[0], feedFromArgs(args[1:]))
	case "delete":
		if len(args) != 1 {
			return errUsage
		}
		return a.delete(args[0])
	default:
		return errUsage
	}
}

// feedFromArgs 按 name url [description] 的顺序构造订阅源，名称去掉末尾空白。
func feedFromArgs(args []string) rss.Feed {
	feed := rss.Feed{
		Name: strings.TrimRight(args[0], " \t\r\n"),
		URL:  args[1],
	}
	if len(args) > 2 {
		feed.Description = args[2]
	}
	return feed
}

func (a *app) list() error {
	feeds := a.store.List()
	if len(feeds) == 0 {
		fmt.Fprintln(a.out, "当前没有任何订阅源。")
		return nil
	}
	for i, f := range feeds {
		fmt.Fprintf(a.out, "%d. %s (%s)", i+1, f.Name, f.URL)
		if f.Description != "" {
			fmt.Fprintf(a.out, " - %s", f.Description)
		}
		fmt.Fprintln(a.out)
	}
	return nil
}

func (a *app) lookup(name string) (rss.Feed, error) {
	feed, ok := a.store.FindByName(name)
	if !ok {
		return rss.Feed{}, fmt.Errorf("%w: %s", rss.ErrNotFound, name)
	}
	return feed, nil
}

// fetch 抓取订阅源，代理配置从存储中读取后显式传入。
func (a *app) fetch(ctx context.Context, feed rss.Feed) ([]rss.FeedItem, error) {
	proxy, _ := a.store.ProxySettings()
	logger.Infof("[main] 正在读取 %s ...", feed.URL)

	items, err := a.fetcher.Fetch(ctx, feed.URL, proxy)
	if err != nil {
		return nil, describeFetchError(feed.Name, err)
	}
	logger.Infof("[main] %s 共有 %d 条", feed.Name, len(items))
	return items, nil
}

// describeFetchError 区分“无法访问”和“无法解析”两类错误，给出不同提示。
func describeFetchError(name string, err error) error {
	var ferr *rss.FetchError
	var perr *rss.ParseError
	switch {
	case errors.As(err, &ferr):
		return fmt.Errorf("无法访问订阅源 %s，请检查地址是否正确: %w", name, err)
	case errors.As(err, &perr):
		return fmt.Errorf("无法解析订阅源 %s 的内容: %w", name, err)
	default:
		return err
	}
}

func (a *app) read(ctx context.Context, name string) error {
	feed, err := a.lookup(name)
	if err != nil {
		return err
	}
	items, err := a.fetch(ctx, feed)
	if err != nil {
		return err
	}
	a.printItems(feed.Name, items)
	return nil
}

func (a *app) printItems(name string, items []rss.FeedItem) {
	if len(items) == 0 {
		fmt.Fprintf(a.out, "%s 没有任何条目。\n", name)
		return
	}
	fmt.Fprintf(a.out, "%s\n\n", items[0].Channel)
	for i, it := range items {
		marker := ""
		if it.IsNested() {
			marker = " [+]"
		}
		fmt.Fprintf(a.out, "%d. %s%s\n", i+1, it.Title, marker)
	}
}

func (a *app) show(ctx context.Context, name string, n int) error {
	feed, err := a.lookup(name)
	if err != nil {
		return err
	}
	items, err := a.fetch(ctx, feed)
	if err != nil {
		return err
	}
	if n < 1 || n > len(items) {
		return fmt.Errorf("条目序号超出范围: %d（共 %d 条）", n, len(items))
	}

	item := items[n-1]
	if item.IsNested() {
		nested := item.AsFeed()
		nestedItems, err := a.fetch(ctx, nested)
		if err != nil {
			return err
		}
		a.printItems(nested.Name, nestedItems)
		return nil
	}

	fmt.Fprintf(a.out, "%s\n\n%s\n\n%s\n%s\n", item.Title, item.Desc, item.Date, item.Link)
	return nil
}

func (a *app) add(feed rss.Feed) error {
	msg, err := a.store.Add(feed)
	if err != nil {
		return fmt.Errorf("添加订阅源失败: %w", err)
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

func (a *app) change(oldName string, feed rss.Feed) error {
	msg, err := a.store.Update(oldName, feed)
	if err != nil {
		return fmt.Errorf("修改订阅源失败: %w", err)
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

func (a *app) delete(name string) error {
	if err := a.store.Delete(name); err != nil {
		return fmt.Errorf("删除订阅源失败: %w", err)
	}
	fmt.Fprintf(a.out, "已删除 %s\n", name)
	return nil
}
