package gemini

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/askline/askline/internal/logx"
)

// RegisterHandlers mounts a fake Gemini generateContent endpoint. A key
// query parameter is required, mirroring the real API's failure shape.
func RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/v1beta/models/", handleGenerateContent)
}

func handleGenerateContent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, ":generateContent") {
		http.NotFound(w, r)
		return
	}
	if r.URL.Query().Get("key") == "" {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "API key not valid. Please pass a valid API key."},
		})
		return
	}

	var req struct {
		Contents []struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Contents) == 0 || len(req.Contents[0].Parts) == 0 {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "contents are required"},
		})
		return
	}

	prompt := req.Contents[0].Parts[0].Text
	logx.Info("Mock", "gemini generateContent prompt=%q", prompt)

	json.NewEncoder(w).Encode(map[string]any{
		"candidates": []map[string]any{
			{
				"content": map[string]any{
					"parts": []map[string]string{
						{"text": "mock gemini answer: " + prompt},
					},
				},
			},
		},
	})
}
