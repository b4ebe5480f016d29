package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iabetor/newsreader/internal/rss"
)

const testChannel = `<rss version="2.0"><channel><title>Chan</title>
  <item><title>Article &amp;amp; More</title><link>%[1]s/a</link><description>Body</description><pubDate>Mon, 02 Mar 2026 10:00:00 GMT</pubDate></item>
  <item><title>Sub Folder</title><link>%[1]s/sub</link><type>folder</type></item>
</channel></rss>`

const testSubChannel = `<rss version="2.0"><channel><title>Sub</title>
  <item><title>Nested One</title></item>
</channel></rss>`

func newTestApp(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()
	store, err := rss.NewFeedStore(filepath.Join(t.TempDir(), "feeds.xml"))
	if err != nil {
		t.Fatalf("NewFeedStore 失败: %v", err)
	}
	var out bytes.Buffer
	return &app{store: store, fetcher: rss.NewFetcher(), out: &out}, &out
}

func newFeedServer() *httptest.Server {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sub":
			fmt.Fprint(w, testSubChannel)
		case "/broken":
			fmt.Fprint(w, "<<<")
		default:
			fmt.Fprintf(w, testChannel, srv.URL)
		}
	}))
	return srv
}

func TestAppAddListDelete(t *testing.T) {
	a, out := newTestApp(t)
	ctx := context.Background()

	if err := a.run(ctx, []string{"add", "News  ", "https://example.com/rss", "daily"}); err != nil {
		t.Fatalf("add 失败: %v", err)
	}
	if !strings.Contains(out.String(), rss.MsgFeedAdded) {
		t.Errorf("缺少状态信息: %s", out.String())
	}

	out.Reset()
	if err := a.run(ctx, []string{"list"}); err != nil {
		t.Fatalf("list 失败: %v", err)
	}
	if got := out.String(); got != "1. News (https://example.com/rss) - daily\n" {
		t.Errorf("list 输出不匹配: %q", got)
	}

	err := a.run(ctx, []string{"add", "News", "https://other"})
	if !errors.Is(err, rss.ErrDuplicateName) {
		t.Errorf("期望 ErrDuplicateName，得到 %v", err)
	}

	if err := a.run(ctx, []string{"change", "News", "Daily News", "https://example.com/rss2"}); err != nil {
		t.Fatalf("change 失败: %v", err)
	}
	if _, ok := a.store.FindByName("Daily News"); !ok {
		t.Error("改名后应能找到新名称")
	}

	if err := a.run(ctx, []string{"delete", "Daily News"}); err != nil {
		t.Fatalf("delete 失败: %v", err)
	}
	if len(a.store.List()) != 0 {
		t.Error("删除后列表应为空")
	}
}

func TestAppRead(t *testing.T) {
	srv := newFeedServer()
	defer srv.Close()

	a, out := newTestApp(t)
	if _, err := a.store.Add(rss.Feed{Name: "Test", URL: srv.URL}); err != nil {
		t.Fatal(err)
	}

	if err := a.run(context.Background(), []string{"read", "Test"}); err != nil {
		t.Fatalf("read 失败: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "1. Article & More\n") {
		t.Errorf("缺少第一条: %s", got)
	}
	if !strings.Contains(got, "2. Sub Folder [+]\n") {
		t.Errorf("嵌套条目应有标记: %s", got)
	}
}

func TestAppShow(t *testing.T) {
	srv := newFeedServer()
	defer srv.Close()

	a, out := newTestApp(t)
	if _, err := a.store.Add(rss.Feed{Name: "Test", URL: srv.URL}); err != nil {
		t.Fatal(err)
	}

	if err := a.run(context.Background(), []string{"show", "Test", "1"}); err != nil {
		t.Fatalf("show 失败: %v", err)
	}
	want := "Article & More\n\nBody\n\nMon, 02 Mar 2026 10:00:00 GMT\n" + srv.URL + "/a\n"
	if out.String() != want {
		t.Errorf("show 输出不匹配:\n%q\nwant\n%q", out.String(), want)
	}

	out.Reset()
	if err := a.run(context.Background(), []string{"show", "Test", "2"}); err != nil {
		t.Fatalf("show 嵌套条目失败: %v", err)
	}
	if !strings.Contains(out.String(), "1. Nested One") {
		t.Errorf("嵌套订阅源应列出其条目: %s", out.String())
	}

	if err := a.run(context.Background(), []string{"show", "Test", "9"}); err == nil {
		t.Error("序号越界应返回错误")
	}
}

func TestAppFetchErrors(t *testing.T) {
	srv := newFeedServer()
	defer srv.Close()

	a, _ := newTestApp(t)
	_, _ = a.store.Add(rss.Feed{Name: "Broken", URL: srv.URL + "/broken"})

	err := a.run(context.Background(), []string{"read", "Broken"})
	var perr *rss.ParseError
	if !errors.As(err, &perr) || !strings.Contains(err.Error(), "无法解析") {
		t.Errorf("期望解析错误提示，得到 %v", err)
	}

	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()
	_, _ = a.store.Add(rss.Feed{Name: "Dead", URL: deadURL})

	err = a.run(context.Background(), []string{"read", "Dead"})
	var ferr *rss.FetchError
	if !errors.As(err, &ferr) || !strings.Contains(err.Error(), "无法访问") {
		t.Errorf("期望访问错误提示，得到 %v", err)
	}
}

func TestAppUsage(t *testing.T) {
	a, _ := newTestApp(t)
	for _, args := range [][]string{nil, {"unknown"}, {"read"}, {"add", "only-name"}, {"show", "x"}} {
		if err := a.run(context.Background(), args); !errors.Is(err, errUsage) {
			t.Errorf("%v: 期望 errUsage，得到 %v", args, err)
		}
	}

	if err := a.run(context.Background(), []string{"read", "missing"}); !errors.Is(err, rss.ErrNotFound) {
		t.Errorf("期望 ErrNotFound，得到 %v", err)
	}
}
