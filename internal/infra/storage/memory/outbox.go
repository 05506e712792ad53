package memory

import (
	"context"
	"sync"

	appoutbox "staynest/internal/app/outbox"
)

// Outbox buffers event records and discards them on flush. Memory mode has
// no broker, so events end at the process boundary.
type Outbox struct {
	mu     sync.Mutex
	staged []appoutbox.EventRecord
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.staged = append(o.staged, record)
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.staged = nil
	return nil
}

var _ appoutbox.Outbox = (*Outbox)(nil)
