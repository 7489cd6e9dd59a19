// Package notify broadcasts payload-free invalidation events. Listeners that
// receive an event re-read the store; the event itself carries no state.
package notify

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Skotchmaster/shopstate/internal/store"
	"github.com/Skotchmaster/shopstate/pkg/logging"
)

type Event string

const (
	CartUpdated  Event = "cartUpdated"
	LikesUpdated Event = "likesUpdated"
	SavesUpdated Event = "savesUpdated"
)

var eventKeys = map[Event]store.Key{
	CartUpdated:  store.KeyCart,
	LikesUpdated: store.KeyLikes,
	SavesUpdated: store.KeySaved,
}

func (e Event) Key() store.Key {
	return eventKeys[e]
}

// EventForKey maps a storage key to the event that invalidates it.
func EventForKey(k store.Key) (Event, bool) {
	for e, key := range eventKeys {
		if key == k {
			return e, true
		}
	}
	return "", false
}

type Handler func()

type StorageHandler func(key store.Key)

type entry[H any] struct {
	id uint64
	fn H
}

// Notifier is the event bus of one tab. It also acts as the store's
// ChangeSink, forwarding writes to other tabs through a Broadcaster.
type Notifier struct {
	origin string

	mu       sync.RWMutex
	next     uint64
	handlers map[Event][]entry[Handler]
	storage  []entry[StorageHandler]

	bc     Broadcaster
	detach func()
}

func New() *Notifier {
	return NewWithOrigin(uuid.NewString())
}

func NewWithOrigin(origin string) *Notifier {
	return &Notifier{
		origin:   origin,
		handlers: make(map[Event][]entry[Handler]),
	}
}

func (n *Notifier) Origin() string {
	return n.origin
}

// Emit runs the same-tab handlers registered for e, synchronously and in
// registration order.
func (n *Notifier) Emit(e Event) {
	n.mu.RLock()
	hs := make([]entry[Handler], len(n.handlers[e]))
	copy(hs, n.handlers[e])
	n.mu.RUnlock()

	for _, h := range hs {
		h.fn()
	}
}

// OnChange registers h for e. The returned func removes it and may be called
// more than once.
func (n *Notifier) OnChange(e Event, h Handler) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.next++
	id := n.next
	n.handlers[e] = append(n.handlers[e], entry[Handler]{id: id, fn: h})

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		n.handlers[e] = removeEntry(n.handlers[e], id)
	}
}

// OnStorage registers h for every storage change made by another tab,
// including keys that have no Event.
func (n *Notifier) OnStorage(h StorageHandler) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.next++
	id := n.next
	n.storage = append(n.storage, entry[StorageHandler]{id: id, fn: h})

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		n.storage = removeEntry(n.storage, id)
	}
}

func removeEntry[H any](list []entry[H], id uint64) []entry[H] {
	out := list[:0:0]
	for _, e := range list {
		if e.id != id {
			out = append(out, e)
		}
	}
	return out
}

// Attach connects the notifier to a cross-tab channel, replacing any
// previous one.
func (n *Notifier) Attach(b Broadcaster) {
	n.Detach()
	unsub := b.Subscribe(n.receive)

	n.mu.Lock()
	n.bc = b
	n.detach = unsub
	n.mu.Unlock()
}

func (n *Notifier) Detach() {
	n.mu.Lock()
	detach := n.detach
	n.bc, n.detach = nil, nil
	n.mu.Unlock()

	if detach != nil {
		detach()
	}
}

// StorageChanged publishes a local write to the other tabs.
func (n *Notifier) StorageChanged(ctx context.Context, key store.Key) {
	n.mu.RLock()
	bc := n.bc
	n.mu.RUnlock()
	if bc == nil {
		return
	}

	if err := bc.Publish(ctx, StorageChange{Key: key, Origin: n.origin}); err != nil {
		logging.FromContext(ctx).With("svc", "notify.publish").
			Error("storage_change_publish_error", "key", string(key), "error", err)
	}
}

func (n *Notifier) receive(ch StorageChange) {
	if ch.Origin == n.origin {
		return
	}

	n.mu.RLock()
	hs := make([]entry[StorageHandler], len(n.storage))
	copy(hs, n.storage)
	n.mu.RUnlock()

	for _, h := range hs {
		h.fn(ch.Key)
	}
	if e, ok := EventForKey(ch.Key); ok {
		n.Emit(e)
	}
}
