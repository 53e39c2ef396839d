package ollama

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/askline/askline/internal/logx"
)

// RegisterHandlers mounts a fake Ollama: POST /api/generate answers with a
// canned generation-style body, GET /api/tags reports one installed model.
func RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/api/generate", handleGenerate)
	mux.HandleFunc("/api/tags", handleTags)
}

func handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req struct {
		Model  string `json:"model"`
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid request"})
		return
	}
	if req.Model == "" {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "model is required"})
		return
	}

	logx.Info("Mock", "ollama generate model=%s prompt=%q", req.Model, truncate(req.Prompt, 60))

	// prompts mentioning "think" get a reasoning block, to exercise stripping
	text := "mock answer: " + truncate(req.Prompt, 40)
	if strings.Contains(strings.ToLower(req.Prompt), "think") {
		text = "<think>pondering the prompt</think>" + text
	}

	json.NewEncoder(w).Encode(map[string]any{
		"model":    req.Model,
		"response": text,
		"done":     true,
	})
}

func handleTags(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]any{
		"models": []map[string]any{
			{"name": "llama3.2"},
		},
	})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
