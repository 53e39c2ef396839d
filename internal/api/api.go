package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/askline/askline/internal/coordinator"
	"github.com/askline/askline/internal/events"
	"github.com/askline/askline/internal/logx"
)

// Host is the HTTP surface a client drives the coordinator through:
// POST /ask submits, GET /result polls, POST /cancel kills the in-flight
// request. Auth and rate limiting mirror what any exposed endpoint needs.
type Host struct {
	coord *coordinator.Coordinator
	store *ResultStore

	// minimal auth and rate limiting
	apiKey string
	// naive fixed-window rate limiter per client key
	rl struct {
		Window  time.Duration
		Limit   int
		mu      chan struct{} // lightweight mutex using channel
		buckets map[string]*rateBucket
	}
}

func NewHost(coord *coordinator.Coordinator, store *ResultStore) *Host {
	h := &Host{
		coord:  coord,
		store:  store,
		apiKey: strings.TrimSpace(os.Getenv("API_KEY")),
	}
	h.rl.Window = 1 * time.Minute
	h.rl.Limit = 60
	h.rl.mu = make(chan struct{}, 1)
	h.rl.buckets = make(map[string]*rateBucket)
	return h
}

// Max request size for POST /ask to protect the server (1MB)
const maxAskBodyBytes int64 = 1 << 20

// rateBucket tracks hits in a fixed window
type rateBucket struct {
	start time.Time
	hits  int
}

// acquireRL returns error if rate limit exceeded
func (h *Host) acquireRL(key string) error {
	if key == "" {
		key = "anon"
	}
	h.rl.mu <- struct{}{}
	defer func() { <-h.rl.mu }()

	b, ok := h.rl.buckets[key]
	now := time.Now()
	if !ok || now.Sub(b.start) >= h.rl.Window {
		h.rl.buckets[key] = &rateBucket{start: now, hits: 1}
		return nil
	}
	if b.hits >= h.rl.Limit {
		return errors.New("rate limit exceeded")
	}
	b.hits++
	return nil
}

// getClientKey picks an identifier for auth/rate limit: API key if present, else IP
func getClientKey(r *http.Request) string {
	if k := r.Header.Get("X-API-Key"); k != "" {
		return "key:" + k
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return "key:" + strings.TrimSpace(auth[7:])
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return "ip:" + host
}

// checkAuth enforces API key when configured via API_KEY env var
func (h *Host) checkAuth(r *http.Request) bool {
	if h.apiKey == "" {
		return true // auth disabled
	}
	if k := r.Header.Get("X-API-Key"); k != "" && k == h.apiKey {
		return true
	}
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		token := strings.TrimSpace(auth[7:])
		return token == h.apiKey
	}
	return false
}

// HandleEvent feeds coordinator completions into the result store. It runs
// on the event loop, so each completion lands exactly once.
func (h *Host) HandleEvent(ev events.Event) {
	switch ev.Kind {
	case events.Result:
		h.store.Put(ev.RequestID, Outcome{Status: "done", Response: ev.Text})
	case events.Failure:
		h.store.Put(ev.RequestID, Outcome{Status: "error", Err: ev.Text})
	}
}

type askResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// RegisterHTTP mounts the host endpoints.
func (h *Host) RegisterHTTP(mux *http.ServeMux) {
	mux.HandleFunc("/ask", h.handleAsk)
	mux.HandleFunc("/result", h.handleResult)
	mux.HandleFunc("/cancel", h.handleCancel)
}

func (h *Host) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !h.checkAuth(r) {
		w.Header().Set("WWW-Authenticate", "Bearer, X-API-Key")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if err := h.acquireRL(getClientKey(r)); err != nil {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
		return
	}
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		http.Error(w, "unsupported media type", http.StatusUnsupportedMediaType)
		return
	}

	type Req struct {
		Prompt string `json:"prompt"`
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAskBodyBytes)
	var req Req
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpErr := http.StatusBadRequest
		if err.Error() == "http: request body too large" {
			httpErr = http.StatusRequestEntityTooLarge
		}
		http.Error(w, "invalid request body", httpErr)
		return
	}

	if req.Prompt == "" {
		http.Error(w, "prompt required", http.StatusBadRequest)
		return
	}

	// a new submit supersedes the pending one; flip its stored state first
	h.store.MarkCancelled()

	// detached context: the request outlives this handler and is only ever
	// stopped through Cancel or a superseding Submit
	handle, err := h.coord.Submit(context.Background(), req.Prompt)
	if err != nil {
		if errors.Is(err, coordinator.ErrEmptyPrompt) {
			http.Error(w, "prompt is empty after cleaning", http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.store.MarkPending(handle.ID)
	logx.L(handle.ID, "Api", "accepted prompt (%d bytes)", len(req.Prompt))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(askResponse{ID: handle.ID, Status: "pending"})
}

func (h *Host) handleResult(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !h.checkAuth(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "id required", http.StatusBadRequest)
		return
	}

	out, ok := h.store.Get(id)
	if !ok {
		http.Error(w, "unknown request id", http.StatusNotFound)
		return
	}

	// terminal outcomes are single-read
	if out.Status != "pending" {
		h.store.Delete(id)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

func (h *Host) handleCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !h.checkAuth(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	cancelled := h.coord.Cancel()
	if cancelled {
		h.store.MarkCancelled()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"cancelled": cancelled})
}
