// Package notify fans out document change notifications between server
// instances. Payloads are opaque to the bus.
package notify

import (
	"context"
	"sync"
)

// Handler receives one published payload.
type Handler func(payload []byte)

// Bus is a topic-based publish/subscribe channel.
type Bus interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	// Subscribe registers h for topic. The returned cancel func stops
	// delivery and is safe to call more than once.
	Subscribe(ctx context.Context, topic string, h Handler) (cancel func(), err error)
	Close() error
}

// Local is an in-process Bus for single-instance deployments. Handlers run
// synchronously on the publishing goroutine.
type Local struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]Handler
}

var _ Bus = (*Local)(nil)

func NewLocal() *Local {
	return &Local{subs: make(map[string]map[int]Handler)}
}

func (l *Local) Publish(_ context.Context, topic string, payload []byte) error {
	l.mu.RLock()
	handlers := make([]Handler, 0, len(l.subs[topic]))
	for _, h := range l.subs[topic] {
		handlers = append(handlers, h)
	}
	l.mu.RUnlock()

	for _, h := range handlers {
		h(payload)
	}
	return nil
}

func (l *Local) Subscribe(_ context.Context, topic string, h Handler) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextID
	l.nextID++
	if l.subs[topic] == nil {
		l.subs[topic] = make(map[int]Handler)
	}
	l.subs[topic][id] = h

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.subs[topic], id)
			if len(l.subs[topic]) == 0 {
				delete(l.subs, topic)
			}
		})
	}, nil
}

// Subscribers reports how many handlers are registered for topic.
func (l *Local) Subscribers(topic string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.subs[topic])
}

func (l *Local) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subs = make(map[string]map[int]Handler)
	return nil
}
