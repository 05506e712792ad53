package notify

import (
	"context"
	"log/slog"

	"staynest/internal/app/policies"
)

// LogNotifier writes notifications to the application log instead of
// delivering them. Used when no SMTP host is configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Send(_ context.Context, to string, template string, data any) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("notification", "to", to, "template", template, "data", data)
	return nil
}

var _ policies.Notifier = LogNotifier{}
