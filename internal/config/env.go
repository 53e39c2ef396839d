package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/askline/askline/internal/logx"
)

type EnvVars struct {
	AppEnv       string        `envconfig:"APP_ENV" default:"dev"`
	Port         string        `envconfig:"PORT" default:"8787"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"15s"`

	// Provider configuration. The endpoint decides the wire schema:
	// the Gemini API host selects chat-style, anything else generation-style.
	Endpoint     string `envconfig:"ASKLINE_ENDPOINT" default:"http://localhost:11434/api/generate"`
	Model        string `envconfig:"ASKLINE_MODEL" default:"llama3.2"`
	APIKey       string `envconfig:"ASKLINE_API_KEY"`
	SystemPrompt string `envconfig:"ASKLINE_SYSTEM_PROMPT"`

	// Transport selects how the outbound call runs: "curl" (subprocess,
	// killable) or "http" (in-process).
	Transport string `envconfig:"ASKLINE_TRANSPORT" default:"curl"`

	// ProfilesFile points at the optional YAML profile list.
	ProfilesFile string `envconfig:"ASKLINE_PROFILES" default:"profiles.yaml"`

	// ServeAPIKey protects the HTTP host surface when set.
	ServeAPIKey string `envconfig:"API_KEY"`

	EventBuffer int `envconfig:"EVENT_BUFFER" default:"16"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// geminiKeyEnv is the fallback key variable for the chat-style provider
// when no explicit key was configured.
const geminiKeyEnv = "GEMINI_API_KEY"

// LoadEnv reads .env (when present) and then the process environment.
func LoadEnv() (*EnvVars, error) {
	if err := godotenv.Load(); err == nil {
		logx.Info("Config", ".env loaded")
	}
	var v EnvVars
	if err := envconfig.Process("", &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// GeminiKeyFallback returns the environment key for chat-style endpoints
// when the explicit key is empty.
func GeminiKeyFallback(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return os.Getenv(geminiKeyEnv)
}
