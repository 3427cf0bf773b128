package events

import (
	"context"
	"sync"
)

// Sink receives published events. Implementations must be safe for
// concurrent use.
type Sink interface {
	Write(ctx context.Context, event Event) error
}

// Publisher emits events either synchronously or through a buffered worker.
type Publisher struct {
	sink  Sink
	inbox chan Event
	done  chan struct{}
	once  sync.Once
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer enables a background worker with the given buffer size.
// Emit then never blocks on the sink; Close drains the buffer.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan Event, size)
	}
}

func NewPublisher(sink Sink, opts ...Option) *Publisher {
	p := &Publisher{sink: sink, done: make(chan struct{})}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		go p.drain()
	}
	return p
}

// Emit publishes one event. In async mode a full buffer drops the event
// rather than stalling the write path; events are advisory, not ledger.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if p.inbox == nil {
		return p.sink.Write(ctx, event)
	}
	select {
	case p.inbox <- event:
	default:
	}
	return nil
}

func (p *Publisher) drain() {
	for event := range p.inbox {
		_ = p.sink.Write(context.Background(), event)
	}
	close(p.done)
}

// Close stops the worker after flushing buffered events.
func (p *Publisher) Close() {
	p.once.Do(func() {
		if p.inbox != nil {
			close(p.inbox)
			<-p.done
		}
	})
}

// MemorySink accumulates events for inspection in tests.
type MemorySink struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Write(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of everything written so far.
func (s *MemorySink) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events...)
}

// NopPublisher satisfies callers when event publishing is not configured.
func NopPublisher() *Publisher {
	return NewPublisher(nopSink{})
}

type nopSink struct{}

func (nopSink) Write(context.Context, Event) error { return nil }
