package policies

import "context"

// Notifier delivers a templated message to a recipient address. The auth
// service uses it for one-time codes and the event consumer for booking
// lifecycle emails; implementations decide the transport.
type Notifier interface {
	Send(ctx context.Context, to string, template string, data any) error
}
