// Package store persists named JSON collections, the way a browser profile
// keeps them in local storage. Callers always read, modify and write a whole
// collection; there are no partial updates and no transactions across keys.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/Skotchmaster/shopstate/pkg/logging"
)

type Key string

const (
	KeyCart     Key = "cart"
	KeyLikes    Key = "likedProducts"
	KeySaved    Key = "savedProducts"
	KeyOrders   Key = "orders"
	KeyProducts Key = "products"
	KeyUser     Key = "user"
)

func AllKeys() []Key {
	return []Key{KeyCart, KeyLikes, KeySaved, KeyOrders, KeyProducts, KeyUser}
}

// Backend is raw string storage. Implementations must be safe for concurrent use.
type Backend interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// ChangeSink receives every key that was written or cleared through the store.
// It is the cross-tab channel: same-tab listeners still need an explicit emit.
type ChangeSink interface {
	StorageChanged(ctx context.Context, key Key)
}

type Store struct {
	Backend Backend
	Sink    ChangeSink

	// OnCorrupt is called after an unparsable value has been discarded.
	OnCorrupt func(key Key)

	locks sync.Map // Key -> *sync.Mutex
}

func New(b Backend) *Store {
	return &Store{Backend: b}
}

// Lock serializes read-modify-write cycles on keys within this store and
// returns the matching unlock. Keys are taken in sorted order so overlapping
// sets cannot deadlock. Other stores over the same backend are not excluded.
func (s *Store) Lock(keys ...Key) (unlock func()) {
	ks := slices.Clone(keys)
	slices.Sort(ks)
	ks = slices.Compact(ks)

	held := make([]*sync.Mutex, 0, len(ks))
	for _, k := range ks {
		v, _ := s.locks.LoadOrStore(k, &sync.Mutex{})
		mu := v.(*sync.Mutex)
		mu.Lock()
		held = append(held, mu)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

func (s *Store) Write(ctx context.Context, key Key, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", key, err)
	}
	if err := s.Backend.Set(ctx, string(key), string(data)); err != nil {
		return fmt.Errorf("store: write %s: %w", key, err)
	}
	s.changed(ctx, key)
	return nil
}

func (s *Store) Clear(ctx context.Context, key Key) error {
	if err := s.Backend.Delete(ctx, string(key)); err != nil {
		return fmt.Errorf("store: clear %s: %w", key, err)
	}
	s.changed(ctx, key)
	return nil
}

// Reset clears the given keys, or every known key when none are given.
func (s *Store) Reset(ctx context.Context, keys ...Key) error {
	if len(keys) == 0 {
		keys = AllKeys()
	}
	defer s.Lock(keys...)()
	for _, k := range keys {
		if err := s.Clear(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) changed(ctx context.Context, key Key) {
	if s.Sink != nil {
		s.Sink.StorageChanged(ctx, key)
	}
}

// decode unmarshals the stored value into dst. A missing key reports false.
// A value that does not parse is logged, removed and also reported as missing.
func (s *Store) decode(ctx context.Context, key Key, dst any) (bool, error) {
	raw, ok, err := s.Backend.Get(ctx, string(key))
	if err != nil {
		return false, fmt.Errorf("store: read %s: %w", key, err)
	}
	if !ok || raw == "" {
		return false, nil
	}

	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		l := logging.FromContext(ctx).With("svc", "store.read")
		l.Warn("corrupt_value_discarded", "key", string(key), "error", err)
		if err := s.Clear(ctx, key); err != nil {
			l.Error("discard_corrupt_value_error", "key", string(key), "error", err)
		}
		if s.OnCorrupt != nil {
			s.OnCorrupt(key)
		}
		return false, nil
	}
	return true, nil
}

// ReadList returns the collection under key, never nil.
func ReadList[T any](ctx context.Context, s *Store, key Key) ([]T, error) {
	var items []T
	ok, err := s.decode(ctx, key, &items)
	if err != nil {
		return nil, err
	}
	if !ok || items == nil {
		return []T{}, nil
	}
	return items, nil
}

func WriteList[T any](ctx context.Context, s *Store, key Key, items []T) error {
	if items == nil {
		items = []T{}
	}
	return s.Write(ctx, key, items)
}

// UpdateList reads the collection under key, applies fn and writes the result
// back, holding the key's lock throughout. Nothing is written when fn fails
// or reports no change.
func UpdateList[T any](ctx context.Context, s *Store, key Key, fn func(items []T) (out []T, changed bool, err error)) ([]T, error) {
	defer s.Lock(key)()

	items, err := ReadList[T](ctx, s, key)
	if err != nil {
		return nil, err
	}
	out, changed, err := fn(items)
	if err != nil {
		return nil, err
	}
	if !changed {
		return out, nil
	}
	if err := WriteList(ctx, s, key, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadRecord returns the single record under key, or nil when absent.
func ReadRecord[T any](ctx context.Context, s *Store, key Key) (*T, error) {
	var rec T
	ok, err := s.decode(ctx, key, &rec)
	if err != nil || !ok {
		return nil, err
	}
	return &rec, nil
}

func WriteRecord[T any](ctx context.Context, s *Store, key Key, rec T) error {
	return s.Write(ctx, key, rec)
}
