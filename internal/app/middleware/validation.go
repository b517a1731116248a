package middleware

import (
	"context"
	"fmt"

	"bookingengine/internal/app/commands"
	"bookingengine/internal/app/queries"
)

// Validatable queries check their own required fields before dispatch.
type Validatable interface {
	Validate() error
}

// QueryValidation rejects invalid queries before they reach a handler. Errors
// are wrapped with ErrInvalidArgument so the HTTP layer can answer 400.
func QueryValidation() QueryMiddleware {
	return func(next queries.Bus) queries.Bus {
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if v, ok := q.(Validatable); ok {
				if err := v.Validate(); err != nil {
					return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
				}
			}
			return next.Ask(ctx, q)
		})
	}
}

// CommandValidation is QueryValidation for the command bus.
func CommandValidation() CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if v, ok := cmd.(Validatable); ok {
				if err := v.Validate(); err != nil {
					return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
				}
			}
			return next.Dispatch(ctx, cmd)
		})
	}
}
