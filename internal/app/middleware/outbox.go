package middleware

import (
	"context"

	"staynest/internal/app/commands"
	"staynest/internal/app/outbox"
)

// OutboxFlush pushes staged event records to their destination after the
// command (and its transaction, which sits inside this wrapper) succeeded.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		call := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			result, err := call(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				return nil, err
			}
			return result, nil
		})
	}
}
