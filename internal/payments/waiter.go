package payments

import (
	"context"
	"time"
)

// DefaultPollInterval is how often a PollingWaiter re-reads a session.
const DefaultPollInterval = 750 * time.Millisecond

// SessionReader is the read side of the Manager.
type SessionReader interface {
	GetSession(ctx context.Context, id string) (Session, error)
}

// Awaiter blocks until a session settles.
type Awaiter interface {
	Await(ctx context.Context, id string) (Session, error)
}

// PollingWaiter re-reads a session on a fixed interval until it is confirmed,
// awaiting review or expired.
type PollingWaiter struct {
	sessions SessionReader
	interval time.Duration
}

func NewPollingWaiter(sessions SessionReader, interval time.Duration) *PollingWaiter {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &PollingWaiter{sessions: sessions, interval: interval}
}

func (w *PollingWaiter) Await(ctx context.Context, id string) (Session, error) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		session, err := w.sessions.GetSession(ctx, id)
		if err != nil {
			return Session{}, err
		}
		if session.Status.IsSettled() {
			return session, nil
		}
		select {
		case <-ctx.Done():
			return Session{}, ctx.Err()
		case <-ticker.C:
		}
	}
}
