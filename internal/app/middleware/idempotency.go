package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"time"

	"staynest/internal/app/commands"
)

// IdempotentCommand marks commands whose results replay on key collision.
// ResultPrototype must return a pointer to the handler's result type so the
// stored payload can be decoded back into it.
type IdempotentCommand interface {
	commands.Command
	IdempotencyKey() string
	ResultPrototype() any
}

// IdempotencyRecord is the stored outcome of a keyed command, success or
// failure alike.
type IdempotencyRecord struct {
	Key        string
	Payload    []byte
	Error      string
	OccurredAt time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

type ResultCodec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, out any) error
}

type JSONResultCodec struct{}

func (JSONResultCodec) Encode(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSONResultCodec) Decode(data []byte, out any) error { return json.Unmarshal(data, out) }

var errMissingPrototype = errors.New("middleware: idempotent command requires result prototype")

// Idempotency replays the stored outcome for commands that carry an
// idempotency key. First execution runs the command and records the result;
// replays never reach the handler. A nil codec defaults to JSON.
func Idempotency(store IdempotencyStore, codec ResultCodec) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	if codec == nil {
		codec = JSONResultCodec{}
	}
	return func(next commands.Bus) commands.Bus {
		call := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			keyed, ok := cmd.(IdempotentCommand)
			if !ok {
				return call(ctx, cmd)
			}
			key := keyed.IdempotencyKey()
			if key == "" {
				return call(ctx, cmd)
			}

			cached, found, err := store.Get(ctx, key)
			if err != nil {
				return nil, err
			}
			if found {
				return replay(keyed, cached, codec)
			}

			result, err := call(ctx, cmd)
			record := IdempotencyRecord{Key: key, OccurredAt: time.Now().UTC()}
			if err != nil {
				record.Error = err.Error()
				if saveErr := store.Save(ctx, record); saveErr != nil {
					return nil, errors.Join(err, saveErr)
				}
				return nil, err
			}
			if result != nil {
				record.Payload, err = codec.Encode(result)
				if err != nil {
					return nil, err
				}
			}
			if err := store.Save(ctx, record); err != nil {
				return nil, err
			}
			return result, nil
		})
	}
}

func replay(cmd IdempotentCommand, record IdempotencyRecord, codec ResultCodec) (any, error) {
	if record.Error != "" {
		return nil, errors.New(record.Error)
	}
	proto := cmd.ResultPrototype()
	if proto == nil {
		return nil, errMissingPrototype
	}
	if err := codec.Decode(record.Payload, proto); err != nil {
		return nil, err
	}
	if rv := reflect.ValueOf(proto); rv.Kind() == reflect.Ptr && !rv.IsNil() {
		return rv.Interface(), nil
	}
	return proto, nil
}
