package middleware

import (
	"context"

	"staynest/internal/app/commands"
	"staynest/internal/app/queries"
)

// CommandMiddleware wraps a command bus with cross-cutting behavior.
type CommandMiddleware func(next commands.Bus) commands.Bus

// QueryMiddleware wraps a query bus the same way.
type QueryMiddleware func(next queries.Bus) queries.Bus

// ChainCommands applies wrappers outermost-first: the first middleware sees
// the command before any of the later ones.
func ChainCommands(base commands.Bus, wrappers ...CommandMiddleware) commands.Bus {
	bus := base
	for i := len(wrappers) - 1; i >= 0; i-- {
		bus = wrappers[i](bus)
	}
	return bus
}

// ChainQueries applies query wrappers outermost-first.
func ChainQueries(base queries.Bus, wrappers ...QueryMiddleware) queries.Bus {
	bus := base
	for i := len(wrappers) - 1; i >= 0; i-- {
		bus = wrappers[i](bus)
	}
	return bus
}

// commandFunc and queryFunc let middleware stay plain closures instead of
// one struct type per wrapper.
type commandFunc func(ctx context.Context, cmd commands.Command) (any, error)

func (f commandFunc) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	return f(ctx, cmd)
}

func wrapCommand(next commands.Bus) commandFunc {
	return func(ctx context.Context, cmd commands.Command) (any, error) {
		return next.Dispatch(ctx, cmd)
	}
}

type queryFunc func(ctx context.Context, query queries.Query) (any, error)

func (f queryFunc) Ask(ctx context.Context, q queries.Query) (any, error) {
	return f(ctx, q)
}

func wrapQuery(next queries.Bus) queryFunc {
	return func(ctx context.Context, q queries.Query) (any, error) {
		return next.Ask(ctx, q)
	}
}
