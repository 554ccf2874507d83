// Package queue keeps the pool of unloved identities topped up. When
// the pool runs low it pulls a bounded batch of identities off the
// sample stream and stores them for later selection.
package queue

import (
	"context"
	"fmt"

	"github.com/lovepool/lovebot/botdb"
	"github.com/lovepool/lovebot/logger"
	"github.com/lovepool/lovebot/stream"
)

const (
	// DefaultQueueSize is the pool size below which a refill runs.
	DefaultQueueSize = 100
	// DefaultBufferSize bounds how many sample events one refill
	// consumes. See the note on the stop check in EnsureFutureUsers.
	DefaultBufferSize = 50
)

type Manager struct {
	DB         botdb.Querier
	Sampler    stream.Sampler
	QueueSize  int64
	BufferSize int
}

func New(db botdb.Querier, sampler stream.Sampler) *Manager {
	return &Manager{
		DB:         db,
		Sampler:    sampler,
		QueueSize:  DefaultQueueSize,
		BufferSize: DefaultBufferSize,
	}
}

// EnsureFutureUsers checks the unloved pool and, when it is at or
// below the queue size, ingests from the sample stream until the
// buffer is used up. Per-identity store failures are logged and
// swallowed so they never interrupt stream consumption; a stream
// failure is returned to the caller.
func (m *Manager) EnsureFutureUsers(ctx context.Context) error {
	log := logger.FromContext(ctx)

	count, err := m.DB.CountUnloved(ctx)
	if err != nil {
		return fmt.Errorf("counting unloved identities: %w", err)
	}
	if count > m.QueueSize {
		log.Debug("queue has enough future users", "unloved", count)
		return nil
	}

	log.Info("refilling the queue", "unloved", count, "buffer", m.BufferSize)

	ictx, cancel := context.WithCancel(ctx)
	defer cancel()

	// remaining is only touched from the ingestion callback, which the
	// sampler runs one event at a time.
	remaining := m.BufferSize
	stored := 0

	err = m.Sampler.Ingest(ictx, func(ctx context.Context, id string) {
		if err := m.DB.EnsureIdentity(ctx, id); err != nil {
			log.Warn("could not store sampled identity", "identity", id, "err", err)
		} else {
			stored++
		}

		// The stop check uses the counter's value before the decrement,
		// so a refill consumes BufferSize+1 events before stopping.
		// Inherited behavior; kept until someone decides the buffer
		// should be exact.
		stop := remaining < 0
		remaining--
		if stop {
			cancel()
		}
	})
	if err != nil {
		return fmt.Errorf("sample ingestion: %w", err)
	}

	log.Info("queue refilled", "stored", stored)
	return nil
}
