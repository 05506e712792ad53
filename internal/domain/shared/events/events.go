package events

import "time"

type EventID string

// DomainEvent is a fact recorded by an aggregate during a mutation. Events
// stay pending on the aggregate until the handler hands them to the outbox.
type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// EventRecorder collects pending events. Aggregates embed it; repositories
// zero it out when loading so stored copies never carry stale events.
type EventRecorder struct {
	pending []DomainEvent
}

func (r *EventRecorder) Record(event DomainEvent) {
	if event == nil {
		return
	}
	r.pending = append(r.pending, event)
}

// PendingEvents returns a copy so callers cannot mutate the recorder.
func (r *EventRecorder) PendingEvents() []DomainEvent {
	out := make([]DomainEvent, len(r.pending))
	copy(out, r.pending)
	return out
}

func (r *EventRecorder) ClearEvents() {
	r.pending = nil
}

// BaseEvent supplies the DomainEvent boilerplate for concrete event types.
type BaseEvent struct {
	Name      string
	Aggregate string
	Time      time.Time
}

func (e BaseEvent) EventName() string     { return e.Name }
func (e BaseEvent) AggregateID() string   { return e.Aggregate }
func (e BaseEvent) OccurredAt() time.Time { return e.Time }
