package options

import (
	"context"
	"sync"

	"github.com/goliatone/go-lookup/pkg/interfaces"
)

type (
	ChangeEvent = interfaces.ChangeEvent
	ChangeType  = interfaces.ChangeType
)

const watcherBuffer = 16

// Broadcaster fans change events out to subscribers. Delivery is best effort:
// a subscriber whose buffer is full misses the event.
type Broadcaster struct {
	mu       sync.Mutex
	watchers map[uint64]chan ChangeEvent
	nextID   uint64
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{watchers: make(map[uint64]chan ChangeEvent)}
}

var _ interfaces.ChangeSubscriber = (*Broadcaster)(nil)

// Subscribe registers a watcher until ctx is done, then closes its channel.
func (b *Broadcaster) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		ch := make(chan ChangeEvent)
		close(ch)
		return ch, nil
	}
	ch := make(chan ChangeEvent, watcherBuffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.watchers[id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.watchers, id)
		close(ch)
		b.mu.Unlock()
	}()

	return ch, nil
}

// Broadcast never blocks. Sends happen under the lock so a watcher cannot be
// closed mid send.
func (b *Broadcaster) Broadcast(evt ChangeEvent) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.watchers {
		select {
		case ch <- evt:
		default:
		}
	}
}
