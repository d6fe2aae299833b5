package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetSuccess(t *testing.T) {
	content := `{"versions":["1.0.0"]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(content))
	}))
	defer server.Close()

	f := NewFetcher()
	resp, err := f.Get(context.Background(), server.URL+"/foo/index.json", nil)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if !resp.OK() {
		t.Errorf("OK() = false for status %d", resp.StatusCode)
	}
	if resp.ContentType != "application/json" {
		t.Errorf("ContentType = %q, want %q", resp.ContentType, "application/json")
	}
	if string(resp.Body) != content {
		t.Errorf("Body = %q, want %q", string(resp.Body), content)
	}
	if resp.URL != server.URL+"/foo/index.json" {
		t.Errorf("URL = %q", resp.URL)
	}
}

func TestGetNonSuccessIsNotAnError(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusUnauthorized, http.StatusInternalServerError} {
		t.Run(fmt.Sprint(status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			}))
			defer server.Close()

			resp, err := NewFetcher().Get(context.Background(), server.URL, nil)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if resp.StatusCode != status {
				t.Errorf("StatusCode = %d, want %d", resp.StatusCode, status)
			}
			if resp.OK() {
				t.Error("OK() = true, want false")
			}
		})
	}
}

func TestGetNoRetryByDefault(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, _ = NewFetcher().Get(context.Background(), server.URL, nil)
	if got := attempts.Load(); got != 1 {
		t.Errorf("attempts = %d, want 1", got)
	}
}

func TestGetRateLimitRetry(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("success"))
	}))
	defer server.Close()

	f := NewFetcher(WithMaxRetries(3), WithBaseDelay(10*time.Millisecond))
	resp, err := f.Get(context.Background(), server.URL, nil)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(resp.Body) != "success" {
		t.Errorf("Body = %q, want %q", string(resp.Body), "success")
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestGetMaxRetries(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	f := NewFetcher(WithMaxRetries(2), WithBaseDelay(10*time.Millisecond))
	resp, err := f.Get(context.Background(), server.URL, nil)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want 503", resp.StatusCode)
	}

	// Initial attempt + 2 retries = 3 total
	if got := attempts.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestGetHeaders(t *testing.T) {
	var gotUA, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	f := NewFetcher(WithUserAgent("custom-agent/2.0"))
	_, err := f.Get(context.Background(), server.URL, map[string]string{"Authorization": "Basic dXNlcjpwYXNz", "": "ignored"})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if gotUA != "custom-agent/2.0" {
		t.Errorf("User-Agent = %q, want %q", gotUA, "custom-agent/2.0")
	}
	if gotAuth != "Basic dXNlcjpwYXNz" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Basic dXNlcjpwYXNz")
	}
}

func TestGetMaxBodySize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 1024)))
	}))
	defer server.Close()

	resp, err := NewFetcher(WithMaxBodySize(100)).Get(context.Background(), server.URL, nil)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(resp.Body) != 100 {
		t.Errorf("body length = %d, want 100", len(resp.Body))
	}
}

func TestGetTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()
	defer close(release)

	f := NewFetcher(WithTimeout(50 * time.Millisecond))
	_, err := f.Get(context.Background(), server.URL, nil)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !IsConnectionFailure(err) {
		t.Errorf("IsConnectionFailure(%v) = false, want true", err)
	}
}

func TestGetConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewFetcher(WithTimeout(time.Second)).Get(context.Background(), url, nil)
	if err == nil {
		t.Fatal("expected connection error")
	}
	if !IsConnectionFailure(err) {
		t.Errorf("IsConnectionFailure(%v) = false, want true", err)
	}
}

func TestGetContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		_, _ = w.Write([]byte("success"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFetcher().Get(ctx, server.URL, nil)
	if err == nil {
		t.Fatal("expected error on context cancellation")
	}
	if IsConnectionFailure(err) {
		t.Errorf("IsConnectionFailure(%v) = true for a cancelled request", err)
	}
}

func TestIsConnectionFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"deadline", fmt.Errorf("wrapped: %w", context.DeadlineExceeded), true},
		{"canceled", fmt.Errorf("wrapped: %w", context.Canceled), false},
		{"upstream down", fmt.Errorf("breaker: %w", ErrUpstreamDown), true},
		{"dial", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, true},
		{"dns", &net.DNSError{Err: "no such host", Name: "feed.invalid"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConnectionFailure(tt.err); got != tt.want {
				t.Errorf("IsConnectionFailure(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestGetDNSCaching(t *testing.T) {
	var requestCount atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount.Add(1)
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	f := NewFetcher()

	// Make multiple requests to the same host
	for i := range 3 {
		if _, err := f.Get(context.Background(), server.URL, nil); err != nil {
			t.Fatalf("Get %d failed: %v", i+1, err)
		}
	}

	if got := requestCount.Load(); got != 3 {
		t.Errorf("requestCount = %d, want 3", got)
	}
}
