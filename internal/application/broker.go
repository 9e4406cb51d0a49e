package application

import (
	"sync"
	"time"
)

// ThreadChanged is the parameterless thread-changed signal. At is only for
// logging.
type ThreadChanged struct {
	At time.Time
}

type changeSubscriber struct {
	id int64
	ch chan ThreadChanged
}

// ChangeBroker fans the thread-changed signal out to page-level listeners.
// Publishing never blocks: a listener whose buffer is full misses the signal,
// which is harmless because one pending signal already triggers a refresh.
type ChangeBroker struct {
	mu          sync.RWMutex
	closed      bool
	nextID      int64
	bufferSize  int
	subscribers map[int64]changeSubscriber
}

// NewChangeBroker creates a broker whose subscriber channels hold bufferSize
// pending signals.
func NewChangeBroker(bufferSize int) *ChangeBroker {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &ChangeBroker{
		bufferSize:  bufferSize,
		subscribers: make(map[int64]changeSubscriber),
	}
}

// Subscribe registers a listener. The returned func unsubscribes and closes
// the channel.
func (b *ChangeBroker) Subscribe() (<-chan ThreadChanged, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan ThreadChanged, b.bufferSize)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	b.nextID++
	sub := changeSubscriber{id: b.nextID, ch: ch}
	b.subscribers[sub.id] = sub
	return ch, func() {
		b.unsubscribe(sub.id)
	}
}

// Publish broadcasts the signal and returns how many listeners received it.
func (b *ChangeBroker) Publish() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return 0
	}

	event := ThreadChanged{At: time.Now()}
	delivered := 0
	for _, sub := range b.subscribers {
		select {
		case sub.ch <- event:
			delivered++
		default:
		}
	}
	return delivered
}

// Close closes every subscriber channel. Later publishes are dropped.
func (b *ChangeBroker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subscribers {
		close(sub.ch)
		delete(b.subscribers, id)
	}
}

func (b *ChangeBroker) unsubscribe(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sub, ok := b.subscribers[id]
	if !ok {
		return
	}
	delete(b.subscribers, id)
	close(sub.ch)
}
