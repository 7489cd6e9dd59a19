package notify

import (
	"context"
	"sync"

	"github.com/Skotchmaster/shopstate/internal/store"
)

// StorageChange is what other tabs learn about a write: which key, and who
// wrote it. Like a browser storage event it carries no value.
type StorageChange struct {
	Key    store.Key `json:"key"`
	Origin string    `json:"origin"`
}

type Broadcaster interface {
	Publish(ctx context.Context, ch StorageChange) error
	Subscribe(fn func(StorageChange)) (unsubscribe func())
}

// Fanout keeps the subscriber list shared by every Broadcaster implementation.
type Fanout struct {
	mu   sync.RWMutex
	next uint64
	subs []entry[func(StorageChange)]
}

func (f *Fanout) Subscribe(fn func(StorageChange)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	id := f.next
	f.subs = append(f.subs, entry[func(StorageChange)]{id: id, fn: fn})

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.subs = removeEntry(f.subs, id)
	}
}

func (f *Fanout) Dispatch(ch StorageChange) {
	f.mu.RLock()
	subs := make([]entry[func(StorageChange)], len(f.subs))
	copy(subs, f.subs)
	f.mu.RUnlock()

	for _, s := range subs {
		s.fn(ch)
	}
}

// Hub delivers changes synchronously to every tab living in this process.
type Hub struct {
	Fanout
}

func NewHub() *Hub {
	return &Hub{}
}

func (h *Hub) Publish(_ context.Context, ch StorageChange) error {
	h.Dispatch(ch)
	return nil
}
