package provider

import (
	"strings"
	"testing"
)

func TestDetect_GeminiHost(t *testing.T) {
	url := "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"
	if got := Detect(url); got != Chat {
		t.Fatalf("expected Chat for gemini host, got %v", got)
	}
}

func TestDetect_AnyOtherHost(t *testing.T) {
	cases := []string{
		"http://localhost:11434/api/generate",
		"http://192.168.1.20:11434/api/generate",
		"https://my-ollama.example.com/api/generate",
	}
	for _, url := range cases {
		if got := Detect(url); got != Generation {
			t.Fatalf("expected Generation for %s, got %v", url, got)
		}
	}
}

func TestDetect_UnparseableFallsBackToSubstring(t *testing.T) {
	if got := Detect("generativelanguage.googleapis.com/v1beta"); got != Chat {
		t.Fatalf("expected Chat from substring fallback, got %v", got)
	}
}

func TestRequestURL_AppendsKeyForChat(t *testing.T) {
	cfg := Config{
		Endpoint: "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent",
		APIKey:   "secret",
	}
	url, err := RequestURL(cfg)
	if err != nil {
		t.Fatalf("RequestURL: %v", err)
	}
	if !strings.Contains(url, "key=secret") {
		t.Fatalf("expected key query param, got %s", url)
	}
}

func TestRequestURL_KeepsExistingKey(t *testing.T) {
	cfg := Config{
		Endpoint: "https://generativelanguage.googleapis.com/v1beta/models/m:generateContent?key=inline",
		APIKey:   "other",
	}
	url, err := RequestURL(cfg)
	if err != nil {
		t.Fatalf("RequestURL: %v", err)
	}
	if !strings.Contains(url, "key=inline") || strings.Contains(url, "other") {
		t.Fatalf("existing key must win, got %s", url)
	}
}

func TestRequestURL_GenerationUntouched(t *testing.T) {
	cfg := Config{Endpoint: "http://localhost:11434/api/generate", APIKey: "ignored"}
	url, err := RequestURL(cfg)
	if err != nil {
		t.Fatalf("RequestURL: %v", err)
	}
	if url != cfg.Endpoint {
		t.Fatalf("generation endpoint must not change, got %s", url)
	}
}

func TestHealthURL(t *testing.T) {
	cfg := Config{Endpoint: "http://localhost:11434/api/generate"}
	url, err := HealthURL(cfg)
	if err != nil {
		t.Fatalf("HealthURL: %v", err)
	}
	if url != "http://localhost:11434/api/tags" {
		t.Fatalf("unexpected health url: %s", url)
	}
}
