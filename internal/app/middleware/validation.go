package middleware

import (
	"context"

	"staynest/internal/app/commands"
	"staynest/internal/app/queries"
)

type Validator interface {
	Validate(ctx context.Context, message any) error
}

// Validation rejects commands that fail payload validation before any other
// middleware touches them.
func Validation(v Validator) CommandMiddleware {
	if v == nil {
		panic("middleware: validator required")
	}
	return func(next commands.Bus) commands.Bus {
		call := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := v.Validate(ctx, cmd); err != nil {
				return nil, err
			}
			return call(ctx, cmd)
		})
	}
}

// QueryValidation does the same for the query bus.
func QueryValidation(v Validator) QueryMiddleware {
	if v == nil {
		panic("middleware: validator required")
	}
	return func(next queries.Bus) queries.Bus {
		call := wrapQuery(next)
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := v.Validate(ctx, q); err != nil {
				return nil, err
			}
			return call(ctx, q)
		})
	}
}
