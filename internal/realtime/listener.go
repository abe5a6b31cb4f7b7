package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"timebridge/internal/config"

	"github.com/jackc/pgx/v5"
)

const reconnectDelay = 5 * time.Second

// Listener bridges postgres LISTEN/NOTIFY into the hub over a dedicated pgx
// connection, reconnecting until stopped.
type Listener struct {
	hub    *Hub
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func (l *Listener) StartWorkers() {
	l.ctx, l.cancel = context.WithCancel(context.Background())

	l.wg.Add(1)
	go l.listenLoop()

	l.logger.Info("Change listener started", "channel", notifyChannel)
}

func (l *Listener) Stop() {
	if l.cancel == nil {
		return
	}

	l.cancel()
	l.wg.Wait()
}

func (l *Listener) listenLoop() {
	defer l.wg.Done()

	for {
		if config.IsShouldShutdown() || l.ctx.Err() != nil {
			l.logger.Info("Change listener shutting down")
			return
		}

		err := l.listen()
		if err != nil && !errors.Is(err, context.Canceled) {
			l.logger.Error("Change listener disconnected, reconnecting",
				"error", err,
				"delay", reconnectDelay)
		}

		select {
		case <-l.ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

// publishResync tells subscribers to reload everything. Notifications sent
// while the connection was down are gone, so each (re)LISTEN starts with a
// full refresh.
func (l *Listener) publishResync() {
	for _, collection := range AllCollections {
		l.hub.Publish(Change{Collection: collection, Operation: OperationDeleteAll})
	}
}

func (l *Listener) listen() error {
	conn, err := pgx.Connect(l.ctx, config.GetEnv().DatabaseDsn)
	if err != nil {
		return err
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(l.ctx, "LISTEN "+notifyChannel); err != nil {
		return err
	}

	l.publishResync()

	for {
		notification, err := conn.WaitForNotification(l.ctx)
		if err != nil {
			return err
		}

		var change Change
		if err := json.Unmarshal([]byte(notification.Payload), &change); err != nil {
			l.logger.Warn("Skipping malformed change notification",
				"payload", notification.Payload,
				"error", err)
			continue
		}

		l.hub.Publish(change)
	}
}
