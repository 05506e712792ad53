package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"staynest/internal/domain/shared/events"
)

// EventRecord is the persisted form of a domain event, written in the same
// transaction as the aggregate change and relayed to the broker later.
type EventRecord struct {
	ID         string
	Name       string
	Payload    []byte
	OccurredAt time.Time
	Aggregate  string
	Headers    map[string]string
}

// Outbox accumulates records during a command and flushes them after commit.
type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
	Flush(ctx context.Context) error
}

type EventEncoder interface {
	Encode(ev events.DomainEvent) (EventRecord, error)
}

// JSONEventEncoder serializes events as JSON payloads. IDGenerator is
// overridable for deterministic ids in tests.
type JSONEventEncoder struct {
	IDGenerator func() string
}

func (e JSONEventEncoder) Encode(ev events.DomainEvent) (EventRecord, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return EventRecord{}, fmt.Errorf("outbox: encode %s: %w", ev.EventName(), err)
	}
	newID := e.IDGenerator
	if newID == nil {
		newID = timestampID
	}
	return EventRecord{
		ID:         newID(),
		Name:       ev.EventName(),
		Payload:    payload,
		OccurredAt: ev.OccurredAt(),
		Aggregate:  ev.AggregateID(),
		Headers:    map[string]string{},
	}, nil
}

// RecordDomainEvents encodes and stages an aggregate's pending events.
// Handlers call it after mutating the aggregate and before commit.
func RecordDomainEvents(ctx context.Context, box Outbox, encoder EventEncoder, evs []events.DomainEvent) error {
	if box == nil || len(evs) == 0 {
		return nil
	}
	if encoder == nil {
		encoder = JSONEventEncoder{}
	}
	for _, ev := range evs {
		record, err := encoder.Encode(ev)
		if err != nil {
			return err
		}
		if err := box.Add(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

func timestampID() string {
	return fmt.Sprintf("evt-%d", time.Now().UnixNano())
}
