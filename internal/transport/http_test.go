package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHTTPTransport_PostOK(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("expected json content type, got %s", ct)
		}
		var in map[string]any
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if in["prompt"] != "hi" {
			t.Fatalf("unexpected prompt: %v", in["prompt"])
		}
		w.Write([]byte(`{"response":"hello"}`))
	}))
	defer ts.Close()

	tr := NewHTTPTransport()
	res, err := tr.Post(context.Background(), ts.URL, []byte(`{"prompt":"hi"}`))
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if res.ExitCode != 0 {
		t.Fatalf("expected exit 0, got %d", res.ExitCode)
	}
	if string(res.Stdout) != `{"response":"hello"}` {
		t.Fatalf("unexpected stdout: %s", res.Stdout)
	}
	if res.Killed() {
		t.Fatalf("successful call must not report killed")
	}
}

func TestHTTPTransport_HTTPErrorKeepsBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer ts.Close()

	tr := NewHTTPTransport()
	res, err := tr.Post(context.Background(), ts.URL, []byte(`{}`))
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if res.ExitCode == 0 {
		t.Fatalf("expected non-zero exit for HTTP error")
	}
	if !strings.Contains(string(res.Stdout), "rate limited") {
		t.Fatalf("error body must be preserved, got %s", res.Stdout)
	}
}

func TestHTTPTransport_CancelledContext(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer ts.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	tr := NewHTTPTransport()
	_, err := tr.Post(ctx, ts.URL, []byte(`{}`))
	if err == nil {
		t.Fatalf("expected error after cancel")
	}
	if ctx.Err() == nil {
		t.Fatalf("context should be cancelled")
	}
}

func TestPinger_OK(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"models":[]}`))
	}))
	defer ts.Close()

	p := NewPinger(ts.URL + "/api/tags")
	if err := p.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestPinger_Non200(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	p := NewPinger(ts.URL)
	if err := p.Ping(context.Background()); err == nil {
		t.Fatalf("expected error on non-200")
	}
}
