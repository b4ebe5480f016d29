package rss

import "testing"

func TestFeedItemIsNested(t *testing.T) {
	cases := []struct {
		typ  string
		want bool
	}{
		{"feed", false},
		{"folder", true},
		{"folder/news", true},
		{"pubfeed", true},
		{"pubfeeds", true},
		{"", false},
		{"myfolder", false},
	}
	for _, c := range cases {
		if got := (FeedItem{Type: c.typ}).IsNested(); got != c.want {
			t.Errorf("IsNested(%q) = %v, want %v", c.typ, got, c.want)
		}
	}
}

func TestFeedItemAsFeed(t *testing.T) {
	it := FeedItem{Type: "folder", Title: "Sub", Link: "https://example.com/sub.rss", Desc: "nested"}
	f := it.AsFeed()
	if f.Name != "Sub" || f.URL != "https://example.com/sub.rss" || f.Description != "nested" {
		t.Errorf("转换结果不匹配: %+v", f)
	}
	if f.IsFavorite {
		t.Error("嵌套订阅源不应标记为收藏")
	}
}

func TestProxySettingsProxyFor(t *testing.T) {
	p := ProxySettings{"http": "proxy.lan:3128", "ftp": "ftp://proxy.lan:2121"}

	u, err := p.ProxyFor("http")
	if err != nil || u == nil || u.String() != "http://proxy.lan:3128" {
		t.Errorf("http 代理不匹配: %v, %v", u, err)
	}
	u, err = p.ProxyFor("https")
	if err != nil || u == nil || u.Host != "proxy.lan:3128" {
		t.Errorf("https 应沿用 http 代理: %v, %v", u, err)
	}
	u, _ = p.ProxyFor("ftp")
	if u == nil || u.Scheme != "ftp" {
		t.Errorf("ftp 代理不匹配: %v", u)
	}

	u, err = ProxySettings{"ftp": "x:1"}.ProxyFor("http")
	if err != nil || u != nil {
		t.Errorf("未配置的协议应直连: %v, %v", u, err)
	}
}

func TestProxySettingsCredentials(t *testing.T) {
	u, err := ProxySettings{"http": "user:secret@proxy.lan:8080"}.ProxyFor("http")
	if err != nil {
		t.Fatalf("ProxyFor 失败: %v", err)
	}
	if u.User.Username() != "user" {
		t.Errorf("用户名不匹配: %s", u.User.Username())
	}
	if pw, _ := u.User.Password(); pw != "secret" {
		t.Errorf("密码不匹配: %s", pw)
	}
}
