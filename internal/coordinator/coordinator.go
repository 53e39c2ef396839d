package coordinator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/askline/askline/internal/events"
	"github.com/askline/askline/internal/logx"
	"github.com/askline/askline/internal/metrics"
	"github.com/askline/askline/internal/prompt"
	"github.com/askline/askline/internal/provider"
	"github.com/askline/askline/internal/transport"
)

// Handle identifies one submitted request.
type Handle struct {
	ID  string
	Gen uint64
}

// State is a snapshot of the coordinator, for hosts that want to re-render
// the last exchange.
type State struct {
	Pending      bool
	LastPrompt   string
	LastResponse string
}

type inflight struct {
	id     string
	gen    uint64
	prompt string
	cancel context.CancelFunc
}

// Coordinator owns at most one active request against one provider
// endpoint. Submitting while a request is pending cancels the old request
// first; a cancelled request never reaches the event sink. Completion
// relevance is decided by a generation counter compared under the lock, so
// a late event from a killed transport call is a no-op.
type Coordinator struct {
	cfg  provider.Config
	kind provider.Kind
	url  string
	tr   transport.Transport
	sink events.Sink

	mu           sync.Mutex
	gen          uint64
	active       *inflight
	lastPrompt   string
	lastResponse string
}

// New validates the provider config and builds a coordinator. The request
// URL (including the chat-style key parameter) is resolved once here;
// reconfiguring means constructing a new Coordinator.
func New(cfg provider.Config, tr transport.Transport, sink events.Sink) (*Coordinator, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("coordinator: endpoint is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("coordinator: model is required")
	}
	if tr == nil {
		return nil, errors.New("coordinator: transport is required")
	}
	url, err := provider.RequestURL(cfg)
	if err != nil {
		return nil, fmt.Errorf("coordinator: %w", err)
	}
	return &Coordinator{
		cfg:  cfg,
		kind: cfg.Kind(),
		url:  url,
		tr:   tr,
		sink: sink,
	}, nil
}

// Kind exposes the detected provider schema.
func (c *Coordinator) Kind() provider.Kind { return c.kind }

// ErrEmptyPrompt is returned when the prompt is empty once comment markers
// and whitespace are trimmed.
var ErrEmptyPrompt = errors.New("prompt is empty after cleaning")

// Submit starts a new request and returns immediately. Any in-flight
// request is cancelled first: its handle is cleared before its transport
// call is killed, so even a synchronous completion of the old call cannot
// be mistaken for the new request's result.
func (c *Coordinator) Submit(ctx context.Context, raw string) (Handle, error) {
	cleaned := prompt.Clean(raw)
	if cleaned == "" {
		return Handle{}, ErrEmptyPrompt
	}
	if err := prompt.Validate(cleaned); err != nil {
		return Handle{}, err
	}

	body, err := provider.BuildPayload(c.kind, c.cfg.Model, c.cfg.SystemPrompt, cleaned)
	if err != nil {
		return Handle{}, err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	rctx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	if old := c.active; old != nil {
		// clear before kill: the stale completion checks gen under the lock
		c.active = nil
		old.cancel()
		metrics.Cancellations.Inc(map[string]string{"provider": c.kind.String(), "reason": "superseded"})
		logx.L(old.id, "Coordinator", "request superseded")
	}
	c.gen++
	req := &inflight{
		id:     uuid.NewString(),
		gen:    c.gen,
		prompt: cleaned,
		cancel: cancel,
	}
	c.active = req
	c.mu.Unlock()

	c.publish(events.Event{Kind: events.Loading, RequestID: req.id, Prompt: cleaned})
	logx.L(req.id, "Coordinator", "submitted (%s, %d bytes payload)", c.kind, len(body))

	go c.run(rctx, req, body)

	return Handle{ID: req.id, Gen: req.gen}, nil
}

// Cancel kills the active request, if any. The pending completion is
// suppressed: the handle is cleared first, so the late transport event
// fails the generation check and is dropped silently.
func (c *Coordinator) Cancel() bool {
	c.mu.Lock()
	req := c.active
	if req == nil {
		c.mu.Unlock()
		return false
	}
	c.active = nil
	c.mu.Unlock()

	req.cancel()
	metrics.Cancellations.Inc(map[string]string{"provider": c.kind.String(), "reason": "user"})
	logx.L(req.id, "Coordinator", "cancelled")
	return true
}

// State returns a snapshot of the coordinator.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Pending:      c.active != nil,
		LastPrompt:   c.lastPrompt,
		LastResponse: c.lastResponse,
	}
}

func (c *Coordinator) run(ctx context.Context, req *inflight, body []byte) {
	start := time.Now()
	res, err := c.tr.Post(ctx, c.url, body)
	c.complete(req, res, err, time.Since(start))
}

// complete normalizes transport outcome into exactly one event, or into
// silence when the request is no longer current.
func (c *Coordinator) complete(req *inflight, res *transport.Result, err error, elapsed time.Duration) {
	c.mu.Lock()
	if c.active == nil || c.active.gen != req.gen {
		// stale: superseded or cancelled after the transport call finished
		c.mu.Unlock()
		logx.L(req.id, "Coordinator", "stale completion dropped")
		return
	}
	c.active = nil

	if err != nil {
		c.mu.Unlock()
		if errors.Is(err, context.Canceled) {
			// killed by us between the gen check and the kill; expected, silent
			return
		}
		c.fail(req, "Error: "+err.Error(), elapsed)
		return
	}

	if res.ExitCode != 0 {
		c.mu.Unlock()
		if res.Killed() {
			// signal exit without a ctx error; treat as a cancellation
			return
		}
		c.fail(req, provider.ErrorMessage(res.Stdout, res.Stderr), elapsed)
		return
	}

	text, perr := provider.ParseResponse(c.kind, res.Stdout)
	if perr != nil {
		c.mu.Unlock()
		// an HTTP 200 can still carry a provider error object
		var parseErr *provider.ParseError
		if errors.As(perr, &parseErr) {
			if msg, ok := provider.ErrorBody(res.Stdout); ok {
				c.fail(req, "Error: "+msg, elapsed)
				return
			}
		}
		c.fail(req, perr.Error(), elapsed)
		return
	}

	text = provider.StripThink(text)
	c.lastPrompt = req.prompt
	c.lastResponse = text
	c.mu.Unlock()

	metrics.Requests.Inc(map[string]string{"provider": c.kind.String(), "outcome": "ok"})
	metrics.RequestDur.Observe(map[string]string{"provider": c.kind.String(), "outcome": "ok"}, elapsed.Seconds())
	logx.L(req.id, "Coordinator", "completed in %v", elapsed)
	c.publish(events.Event{Kind: events.Result, RequestID: req.id, Prompt: req.prompt, Text: text})
}

func (c *Coordinator) fail(req *inflight, msg string, elapsed time.Duration) {
	metrics.Requests.Inc(map[string]string{"provider": c.kind.String(), "outcome": "error"})
	metrics.RequestDur.Observe(map[string]string{"provider": c.kind.String(), "outcome": "error"}, elapsed.Seconds())
	logx.L(req.id, "Coordinator", "failed: %s", strings.TrimSpace(msg))
	c.publish(events.Event{Kind: events.Failure, RequestID: req.id, Prompt: req.prompt, Text: msg})
}

func (c *Coordinator) publish(ev events.Event) {
	if c.sink != nil {
		c.sink.Publish(ev)
	}
}
