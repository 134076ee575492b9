package event

import "sync"

type Handler func(payload any)

// Bus fans a published payload out to every subscriber of the event, each on
// its own goroutine. Publishers never wait on handlers.
type Bus struct {
	handlers map[string][]Handler
	mu       sync.RWMutex
	inflight sync.WaitGroup
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
	}
}

func (b *Bus) Subscribe(event string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[event] = append(b.handlers[event], handler)
}

func (b *Bus) Publish(event string, payload any) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, h := range b.handlers[event] {
		b.inflight.Add(1)
		go func(h Handler) {
			defer b.inflight.Done()
			h(payload)
		}(h)
	}
}

// Wait blocks until every handler started so far has returned.
func (b *Bus) Wait() {
	b.inflight.Wait()
}
