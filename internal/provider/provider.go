package provider

import (
	"fmt"
	"net/url"
	"strings"
)

// Kind identifies the wire schema of an inference backend.
type Kind int

const (
	// Generation is the Ollama-style /api/generate schema.
	Generation Kind = iota
	// Chat is the Gemini-style generateContent schema.
	Chat
)

func (k Kind) String() string {
	switch k {
	case Generation:
		return "generation"
	case Chat:
		return "chat"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Config describes one inference backend. Immutable after construction;
// reconfiguring means building a new Config.
type Config struct {
	Endpoint     string
	Model        string
	APIKey       string
	SystemPrompt string
}

// Kind detects the schema from the configured endpoint.
func (c Config) Kind() Kind {
	return Detect(c.Endpoint)
}

// chatHost is the host pattern that selects the chat-style schema.
const chatHost = "generativelanguage.googleapis.com"

// Detect picks the provider schema by pattern-matching the URL host.
// Anything that is not the Gemini API host is treated as generation-style.
func Detect(rawURL string) Kind {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		// unparseable URLs fall back to a plain substring match
		if strings.Contains(rawURL, chatHost) {
			return Chat
		}
		return Generation
	}
	if strings.Contains(u.Hostname(), chatHost) {
		return Chat
	}
	return Generation
}

// RequestURL returns the URL the request must be POSTed to. For the
// chat-style schema the API key travels as a query parameter, appended
// only when the endpoint does not carry one already.
func RequestURL(cfg Config) (string, error) {
	kind := cfg.Kind()
	if kind != Chat || cfg.APIKey == "" {
		return cfg.Endpoint, nil
	}
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	if q.Get("key") == "" {
		q.Set("key", cfg.APIKey)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// HealthURL returns a cheap GET target for readiness checks.
// Ollama exposes /api/tags; the Gemini API lists models under /v1beta/models.
func HealthURL(cfg Config) (string, error) {
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	switch cfg.Kind() {
	case Chat:
		u.Path = "/v1beta/models"
		q := url.Values{}
		if cfg.APIKey != "" {
			q.Set("key", cfg.APIKey)
		}
		u.RawQuery = q.Encode()
	default:
		u.Path = "/api/tags"
		u.RawQuery = ""
	}
	return u.String(), nil
}
