package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrWorkerNotConfigured = errors.New("outbox: worker missing dependencies")

const (
	defaultPollInterval = 500 * time.Millisecond
	defaultRetryDelay   = 5 * time.Second
)

type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// Worker polls the outbox and relays claimed records to the broker as
// CloudEvents. Several workers may run against the same store; Claim keeps
// them from double-sending.
type Worker struct {
	Store       *Store
	Producer    Producer
	Interval    time.Duration
	TopicPrefix string
	Source      string
	ID          string
	Backoff     []time.Duration
}

func (w *Worker) Run(ctx context.Context) error {
	if w.Store == nil || w.Producer == nil {
		return ErrWorkerNotConfigured
	}
	ticker := time.NewTicker(w.pollInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.relayOne(ctx); err != nil {
				return err
			}
		}
	}
}

// relayOne claims and publishes a single record. Publish failures reschedule
// the record instead of stopping the worker; only store errors propagate.
func (w *Worker) relayOne(ctx context.Context) error {
	doc, err := w.Store.Claim(ctx, w.workerID())
	if err != nil || doc == nil {
		return err
	}
	payload, headers, err := w.envelope(doc)
	if err != nil {
		_ = w.Store.MarkFailed(ctx, doc.ID, w.nextRetry(doc.Attempts), err.Error())
		return nil
	}
	if err := w.Producer.Publish(ctx, w.topicFor(doc.Name), doc.Aggregate, payload, headers); err != nil {
		_ = w.Store.MarkFailed(ctx, doc.ID, w.nextRetry(doc.Attempts), err.Error())
		return nil
	}
	return w.Store.MarkSent(ctx, doc.ID)
}

// envelope wraps the stored payload in a CloudEvents structure.
func (w *Worker) envelope(doc *EventDocument) ([]byte, map[string]string, error) {
	if doc.Headers == nil {
		doc.Headers = map[string]string{}
	}
	data := map[string]any{}
	if err := json.Unmarshal(doc.Payload, &data); err != nil {
		return nil, nil, err
	}
	event := map[string]any{
		"specversion":     "1.0",
		"id":              uuid.NewString(),
		"type":            doc.Name + ".v1",
		"source":          w.eventSource(),
		"time":            doc.OccurredAt,
		"datacontenttype": "application/json",
		"data":            data,
	}
	if trace, ok := doc.Headers["traceparent"]; ok {
		event["traceparent"] = trace
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, nil, err
	}
	headers := map[string]string{"content-type": "application/cloudevents+json"}
	for k, v := range doc.Headers {
		headers[k] = v
	}
	return payload, headers, nil
}

// topicFor maps "booking.requested" to "<prefix>booking.events.v1": one topic
// per aggregate family.
func (w *Worker) topicFor(name string) string {
	family := name
	if idx := strings.IndexRune(name, '.'); idx > 0 {
		family = name[:idx]
	}
	return w.TopicPrefix + family + ".events.v1"
}

func (w *Worker) workerID() string {
	if w.ID != "" {
		return w.ID
	}
	return uuid.NewString()
}

func (w *Worker) pollInterval() time.Duration {
	if w.Interval <= 0 {
		return defaultPollInterval
	}
	return w.Interval
}

func (w *Worker) nextRetry(attempts int) time.Time {
	if attempts < len(w.Backoff) {
		return time.Now().Add(w.Backoff[attempts])
	}
	if n := len(w.Backoff); n > 0 {
		return time.Now().Add(w.Backoff[n-1])
	}
	return time.Now().Add(defaultRetryDelay)
}

func (w *Worker) eventSource() string {
	if w.Source != "" {
		return w.Source
	}
	return "app://staynest"
}
