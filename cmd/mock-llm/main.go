package main

import (
	"log"
	"net/http"

	mockGemini "github.com/askline/askline/internal/mocks/gemini"
	mockOllama "github.com/askline/askline/internal/mocks/ollama"
)

var listenAndServe = http.ListenAndServe

func buildMux() *http.ServeMux {
	mux := http.NewServeMux()
	mockOllama.RegisterHandlers(mux)
	mockGemini.RegisterHandlers(mux)
	return mux
}

func main() {
	mux := buildMux()
	log.Println("[MOCK LLM] listening on :9000")
	listenAndServe(":9000", mux)
}
