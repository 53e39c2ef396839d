package events

import (
	"context"

	"github.com/askline/askline/internal/logx"
)

// Kind classifies a lifecycle event of one request.
type Kind string

const (
	Loading Kind = "loading"
	Result  Kind = "result"
	Failure Kind = "error"
)

// Event is the single completion/progress notification shape the host sees.
// Text carries the response on Result and the human-readable message on
// Failure; it is empty on Loading.
type Event struct {
	Kind      Kind
	RequestID string
	Prompt    string
	Text      string
}

// Handler consumes events. Handlers run on the dispatch goroutine, one at a
// time, so they never observe two events concurrently.
type Handler func(Event)

// Sink is the publishing side the coordinator talks to.
type Sink interface {
	Publish(ev Event)
}

// Loop delivers published events to every subscriber from a single
// goroutine. Subscribe before Start; the subscriber list is not guarded.
type Loop struct {
	ch   chan Event
	subs []Handler
}

func New(buffer int) *Loop {
	if buffer <= 0 {
		buffer = 16
	}
	return &Loop{
		ch: make(chan Event, buffer),
	}
}

var _ Sink = (*Loop)(nil)

func (l *Loop) Subscribe(h Handler) {
	l.subs = append(l.subs, h)
}

// Publish queues an event for dispatch. Blocks when the buffer is full so
// events are never dropped.
func (l *Loop) Publish(ev Event) {
	l.ch <- ev
}

// Start runs the dispatch loop until ctx is done.
func (l *Loop) Start(ctx context.Context) error {
	for {
		select {
		case ev := <-l.ch:
			l.dispatch(ev)
		case <-ctx.Done():
			return nil
		}
	}
}

func (l *Loop) dispatch(ev Event) {
	defer func() {
		if r := recover(); r != nil {
			logx.Error("Events", "panic recovered in handler: %v", r)
		}
	}()
	for _, h := range l.subs {
		h(ev)
	}
}
