package commands

import (
	"context"
	"errors"
)

// Command is a write intent. Key identifies the handler to run; keys are
// package-scoped constants on the command types themselves.
type Command interface {
	Key() string
}

// Handler executes one command type.
type Handler[C Command, R any] interface {
	Handle(ctx context.Context, cmd C) (R, error)
}

// HandlerFunc lets a plain function serve as a Handler.
type HandlerFunc[C Command, R any] func(ctx context.Context, cmd C) (R, error)

func (f HandlerFunc[C, R]) Handle(ctx context.Context, cmd C) (R, error) {
	return f(ctx, cmd)
}

// Bus dispatches commands, usually through the middleware pipeline.
type Bus interface {
	Dispatch(ctx context.Context, cmd Command) (any, error)
}

var (
	ErrHandlerNotFound = errors.New("commands: handler not found")
	ErrInvalidCommand  = errors.New("commands: invalid command for handler")
	ErrResultType      = errors.New("commands: result type mismatch")
	ErrNilBus          = errors.New("commands: nil bus")
)

// Dispatch sends the command through the bus and asserts the result type, so
// call sites get a typed value instead of `any`.
func Dispatch[C Command, R any](ctx context.Context, bus Bus, cmd C) (R, error) {
	var zero R
	if bus == nil {
		return zero, ErrNilBus
	}
	raw, err := bus.Dispatch(ctx, cmd)
	if err != nil {
		return zero, err
	}
	if raw == nil {
		return zero, nil
	}
	result, ok := raw.(R)
	if !ok {
		return zero, ErrResultType
	}
	return result, nil
}
