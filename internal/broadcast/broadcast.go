// Package broadcast carries storage changes between processes, so that
// separate storefront instances behave like tabs of one browser profile.
package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Skotchmaster/shopstate/internal/notify"
	"github.com/Skotchmaster/shopstate/pkg/logging"
)

// Runner is a broadcaster that needs a receive loop.
type Runner interface {
	notify.Broadcaster
	Run(ctx context.Context) error
	Close() error
}

func encodeChange(ch notify.StorageChange) ([]byte, error) {
	data, err := json.Marshal(ch)
	if err != nil {
		return nil, fmt.Errorf("broadcast: encode: %w", err)
	}
	return data, nil
}

func decodeChange(data []byte) (notify.StorageChange, error) {
	var ch notify.StorageChange
	if err := json.Unmarshal(data, &ch); err != nil {
		return ch, fmt.Errorf("broadcast: decode: %w", err)
	}
	if ch.Key == "" || ch.Origin == "" {
		return ch, errors.New("broadcast: key and origin required")
	}
	return ch, nil
}

func dispatch(ctx context.Context, f *notify.Fanout, svc string, data []byte) {
	ch, err := decodeChange(data)
	if err != nil {
		logging.FromContext(ctx).With("svc", svc).Warn("storage_change_dropped", "error", err)
		return
	}
	f.Dispatch(ch)
}
