package audit

import (
	"context"
	"log/slog"
	"sync"

	"atelier/pkg/platform/middleware/requesttime"
)

// Publisher records audit events off the request hot path. Emit never fails
// the caller: a full buffer or a broken sink costs an audit row, not a login.
type Publisher struct {
	store  Store
	logger *slog.Logger
	events chan Event
	wg     sync.WaitGroup
	async  bool
}

type PublisherOption func(*Publisher)

// WithAsyncBuffer queues events and persists them from a background
// goroutine. Events are dropped with a warning when the buffer is full.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.events = make(chan Event, size)
			p.async = true
		}
	}
}

func WithLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.async {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.events {
		if err := p.store.Append(context.Background(), event); err != nil {
			p.logger.Error("failed to persist audit event",
				"error", err, "action", event.Action, "actor", event.Actor)
		}
	}
}

// Close stops the async publisher and waits for queued events to drain.
func (p *Publisher) Close() {
	if p.async && p.events != nil {
		close(p.events)
		p.wg.Wait()
	}
}

func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = requesttime.Now(ctx)
	}

	p.logger.InfoContext(ctx, string(event.Action),
		"log_type", "audit",
		"actor", event.Actor,
		"success", event.Success,
		"detail", event.Detail,
		"ip", event.IP,
		"user_agent", event.UserAgent,
	)

	if p.async {
		select {
		case p.events <- event:
		default:
			p.logger.Warn("audit buffer full, event dropped",
				"action", event.Action, "actor", event.Actor)
		}
		return
	}
	if err := p.store.Append(ctx, event); err != nil {
		p.logger.ErrorContext(ctx, "failed to persist audit event",
			"error", err, "action", event.Action, "actor", event.Actor)
	}
}
