package history

import (
	"html/template"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/askline/askline/internal/events"
)

// Exchange is one finished prompt/response pair (or failure).
type Exchange struct {
	Time      time.Time
	RequestID string
	Prompt    string
	Response  string
	Err       string
}

// maxEntries bounds the in-memory history; older exchanges are dropped.
const maxEntries = 100

// Store keeps the most recent exchanges for the debug UI and for hosts
// that want to re-render past answers. History lives only as long as the
// process.
type Store struct {
	mu      sync.RWMutex
	entries []Exchange
}

func NewStore() *Store {
	return &Store{}
}

// Record appends a completed exchange, evicting the oldest past capacity.
func (s *Store) Record(ex Exchange) {
	if ex.Time.IsZero() {
		ex.Time = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, ex)
	if len(s.entries) > maxEntries {
		s.entries = s.entries[len(s.entries)-maxEntries:]
	}
}

// HandleEvent is the events.Handler that feeds the store. Loading events
// are ignored; only completions become history.
func (s *Store) HandleEvent(ev events.Event) {
	switch ev.Kind {
	case events.Result:
		s.Record(Exchange{RequestID: ev.RequestID, Prompt: ev.Prompt, Response: ev.Text})
	case events.Failure:
		s.Record(Exchange{RequestID: ev.RequestID, Prompt: ev.Prompt, Err: ev.Text})
	}
}

// snapshot returns a copy safe to sort and render.
func (s *Store) snapshot() []Exchange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Exchange, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len reports how many exchanges are stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

var indexTpl = template.Must(template.New("index").Parse(`<!doctype html>
<html><head><title>askline history</title></head><body>
<h1>History</h1>
<table border="1" cellpadding="4">
<tr><th>Time</th><th>Request</th><th>Prompt</th><th>Outcome</th></tr>
{{range .}}
<tr>
<td>{{.Time.Format "15:04:05"}}</td>
<td><a href="/ui/exchange?id={{.RequestID}}">{{.RequestID}}</a></td>
<td>{{.Prompt}}</td>
<td>{{if .Err}}{{.Err}}{{else}}ok{{end}}</td>
</tr>
{{end}}
</table>
</body></html>`))

var exchangeTpl = template.Must(template.New("exchange").Parse(`<!doctype html>
<html><head><title>askline exchange</title></head><body>
<h1>{{.RequestID}}</h1>
<h2>Prompt</h2><pre>{{.Prompt}}</pre>
{{if .Err}}<h2>Error</h2><pre>{{.Err}}</pre>{{else}}<h2>Response</h2><pre>{{.Response}}</pre>{{end}}
<p><a href="/ui">back</a></p>
</body></html>`))

// HandleIndex lists stored exchanges, newest first.
func (s *Store) HandleIndex(w http.ResponseWriter, r *http.Request) {
	rows := s.snapshot()
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Time.After(rows[j].Time)
	})
	if err := indexTpl.Execute(w, rows); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// HandleExchange shows one exchange in full.
func (s *Store) HandleExchange(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Redirect(w, r, "/ui", http.StatusFound)
		return
	}
	for _, ex := range s.snapshot() {
		if ex.RequestID == id {
			if err := exchangeTpl.Execute(w, ex); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}
	}
	http.Error(w, "exchange not found", http.StatusNotFound)
}
