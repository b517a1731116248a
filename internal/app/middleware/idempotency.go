package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"time"

	"bookingengine/internal/app/commands"
)

// IdempotentCommand is implemented by commands a client may safely retry.
type IdempotentCommand interface {
	commands.Command
	IdempotencyKey() string
	// ResultPrototype returns a pointer to a zero value of the handler result.
	ResultPrototype() any
}

type IdempotencyRecord struct {
	Key        string
	Command    string
	Payload    []byte
	OccurredAt time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

var errMissingPrototype = errors.New("middleware: idempotent command requires result prototype")

// Idempotency replays the stored result when a command key was already
// handled. Only successful results are stored, so a failed attempt can be
// retried with the same key.
func Idempotency(store IdempotencyStore) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			idCmd, ok := cmd.(IdempotentCommand)
			if !ok || idCmd.IdempotencyKey() == "" {
				return next.Dispatch(ctx, cmd)
			}
			key := cmd.Key() + ":" + idCmd.IdempotencyKey()

			rec, found, err := store.Get(ctx, key)
			if err != nil {
				return nil, err
			}
			if found {
				proto := idCmd.ResultPrototype()
				if proto == nil {
					return nil, errMissingPrototype
				}
				if err := json.Unmarshal(rec.Payload, proto); err != nil {
					return nil, err
				}
				return reflect.Indirect(reflect.ValueOf(proto)).Interface(), nil
			}

			result, err := next.Dispatch(ctx, cmd)
			if err != nil {
				return nil, err
			}
			payload, err := json.Marshal(result)
			if err != nil {
				return nil, err
			}
			if err := store.Save(ctx, IdempotencyRecord{Key: key, Command: cmd.Key(), Payload: payload, OccurredAt: time.Now().UTC()}); err != nil {
				return nil, err
			}
			return result, nil
		})
	}
}
