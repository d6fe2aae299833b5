package core

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/git-pkgs/nugetcheck/fetch"
)

func TestDefaultClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "nugetcheck" {
			t.Errorf("User-Agent = %q, want %q", ua, "nugetcheck")
		}
		_, _ = w.Write([]byte(`{"versions":["1.0.0"]}`))
	}))
	defer server.Close()

	c := DefaultClient()
	if _, ok := c.(*fetch.CircuitBreakerFetcher); !ok {
		t.Errorf("DefaultClient() = %T, want *fetch.CircuitBreakerFetcher", c)
	}

	resp, err := c.Get(context.Background(), server.URL, nil)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !resp.OK() {
		t.Errorf("StatusCode = %d", resp.StatusCode)
	}
}

func TestNewFeedDefaults(t *testing.T) {
	var got FeedConfig
	var gotClient Client
	Register("capture", func(src FeedSource, client Client, cfg FeedConfig) Feed {
		got, gotClient = cfg, client
		return &fakeFeed{src: src}
	})

	if _, err := NewFeed(FeedSource{Protocol: "capture"}, nil, FeedConfig{}); err != nil {
		t.Fatalf("NewFeed failed: %v", err)
	}
	if gotClient == nil {
		t.Error("factory received a nil client")
	}
	if got.Logger == nil {
		t.Error("factory received a nil logger")
	}
	if got.DefaultRepositoryURL != DefaultRepositoryURL {
		t.Errorf("DefaultRepositoryURL = %q, want %q", got.DefaultRepositoryURL, DefaultRepositoryURL)
	}

	found := false
	for _, p := range SupportedProtocols() {
		if p == "capture" {
			found = true
		}
	}
	if !found {
		t.Errorf("SupportedProtocols() = %v, missing %q", SupportedProtocols(), "capture")
	}
}
