package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/askline/askline/internal/app"
	mockOllama "github.com/askline/askline/internal/mocks/ollama"
)

// startApp builds the real app against a fake Ollama backend and exposes
// its full hardened handler through an httptest server (no real port).
func startApp(t *testing.T) (*httptest.Server, *httptest.Server) {
	t.Helper()

	backendMux := http.NewServeMux()
	mockOllama.RegisterHandlers(backendMux)
	backend := httptest.NewServer(backendMux)
	t.Cleanup(backend.Close)

	t.Setenv("ASKLINE_ENDPOINT", backend.URL+"/api/generate")
	t.Setenv("ASKLINE_MODEL", "llama3.2")
	t.Setenv("ASKLINE_TRANSPORT", "http")
	t.Setenv("API_KEY", "")

	a, err := app.New()
	if err != nil {
		t.Fatalf("app.New() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() {
		_ = a.RunLoop(ctx)
	}()

	front := httptest.NewServer(a.Handler())
	t.Cleanup(front.Close)
	return front, backend
}

func ask(t *testing.T, url, prompt string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"prompt": prompt})
	resp, err := http.Post(url+"/ask", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /ask: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202 from /ask, got %d", resp.StatusCode)
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode /ask response: %v", err)
	}
	return out.ID
}

func pollResult(t *testing.T, url, id string) (status, response, errMsg string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/result?id=" + id)
		if err != nil {
			t.Fatalf("GET /result: %v", err)
		}
		var out struct {
			Status   string `json:"status"`
			Response string `json:"response"`
			Err      string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			resp.Body.Close()
			t.Fatalf("decode /result: %v", err)
		}
		resp.Body.Close()
		if out.Status != "pending" {
			return out.Status, out.Response, out.Err
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("request %s never left pending", id)
	return "", "", ""
}

func TestE2E_AskThroughMockOllama(t *testing.T) {
	front, _ := startApp(t)

	id := ask(t, front.URL, "explain this line")
	status, response, _ := pollResult(t, front.URL, id)

	if status != "done" {
		t.Fatalf("expected done, got %s", status)
	}
	if !strings.Contains(response, "explain this line") {
		t.Fatalf("mock echoes the prompt, got %q", response)
	}
}

func TestE2E_ThinkBlockStripped(t *testing.T) {
	front, _ := startApp(t)

	// the mock wraps prompts containing "think" in a reasoning block
	id := ask(t, front.URL, "think about loops")
	status, response, _ := pollResult(t, front.URL, id)

	if status != "done" {
		t.Fatalf("expected done, got %s", status)
	}
	if strings.Contains(response, "<think>") {
		t.Fatalf("think block must be stripped, got %q", response)
	}
}

func TestE2E_CancelIsSilent(t *testing.T) {
	front, _ := startApp(t)

	id := ask(t, front.URL, "anything")

	resp, err := http.Post(front.URL+"/cancel", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /cancel: %v", err)
	}
	var out map[string]bool
	json.NewDecoder(resp.Body).Decode(&out)
	resp.Body.Close()

	// cancel may race the fast mock completion; either the request was
	// still pending (now cancelled) or it already finished (done)
	status, _, _ := pollResult(t, front.URL, id)
	if status != "cancelled" && status != "done" {
		t.Fatalf("unexpected status after cancel: %s", status)
	}
}

func TestE2E_HealthAndMetrics(t *testing.T) {
	front, _ := startApp(t)

	resp, err := http.Get(front.URL + "/health/live")
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("live: %v %v", err, resp)
	}
	resp.Body.Close()

	resp, err = http.Get(front.URL + "/health/ready")
	if err != nil {
		t.Fatalf("ready: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ready should be 200 against the mock backend, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	id := ask(t, front.URL, "metrics fodder")
	pollResult(t, front.URL, id)

	resp, err = http.Get(front.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	if !strings.Contains(buf.String(), "askline_requests_total") {
		t.Fatalf("metrics output missing request counter")
	}
}
