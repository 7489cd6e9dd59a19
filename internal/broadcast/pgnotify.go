package broadcast

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shopstate/internal/notify"
	"github.com/Skotchmaster/shopstate/pkg/logging"
)

const (
	minReconnect = 10 * time.Second
	maxReconnect = time.Minute
	pingInterval = 90 * time.Second
)

// PGNotify uses Postgres LISTEN/NOTIFY. Publishing goes through gorm on the
// same database the GormBackend writes to.
type PGNotify struct {
	notify.Fanout

	DB       *gorm.DB
	Channel  string
	listener *pq.Listener
}

func NewPGNotify(db *gorm.DB, dsn, channel string) (*PGNotify, error) {
	listener := pq.NewListener(dsn, minReconnect, maxReconnect, nil)
	if err := listener.Listen(channel); err != nil {
		listener.Close()
		return nil, fmt.Errorf("pg: listen %s: %w", channel, err)
	}
	return &PGNotify{DB: db, Channel: channel, listener: listener}, nil
}

func (p *PGNotify) Publish(ctx context.Context, ch notify.StorageChange) error {
	data, err := encodeChange(ch)
	if err != nil {
		return err
	}
	if err := p.DB.WithContext(ctx).Exec("SELECT pg_notify(?, ?)", p.Channel, string(data)).Error; err != nil {
		return fmt.Errorf("pg: notify %s: %w", p.Channel, err)
	}
	return nil
}

func (p *PGNotify) Run(ctx context.Context) error {
	l := logging.FromContext(ctx).With("svc", "broadcast.pg")
	l.Info("pg_listener_started", "channel", p.Channel)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.Info("pg_listener_stopped")
			return nil
		case n := <-p.listener.Notify:
			// nil after a reconnect; changes made meanwhile are lost.
			if n == nil {
				l.Warn("pg_listener_reconnected")
				continue
			}
			dispatch(ctx, &p.Fanout, "broadcast.pg", []byte(n.Extra))
		case <-ticker.C:
			go func() {
				if err := p.listener.Ping(); err != nil {
					l.Warn("pg_listener_ping_error", "error", err)
				}
			}()
		}
	}
}

func (p *PGNotify) Close() error {
	return p.listener.Close()
}
