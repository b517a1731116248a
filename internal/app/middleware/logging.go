package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bookingengine/internal/app/commands"
	"bookingengine/internal/app/queries"
)

var ErrInvalidArgument = errors.New("invalid argument")

// QueryLogging logs every dispatched query with its duration. Failures are
// logged at Warn; successes at Debug.
func QueryLogging(logger *slog.Logger) QueryMiddleware {
	if logger == nil {
		panic("middleware: logger required")
	}
	return func(next queries.Bus) queries.Bus {
		return queryFunc(func(ctx context.Context, q queries.Query) (res any, err error) {
			start := time.Now()
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("query %s panicked: %v", q.Key(), r)
					logger.Error("query panicked", "query", q.Key(), "panic", r)
				}
			}()
			res, err = next.Ask(ctx, q)
			attrs := []any{"query", q.Key(), "duration_ms", time.Since(start).Milliseconds()}
			if err != nil {
				logger.Warn("query failed", append(attrs, "error", err)...)
				return nil, err
			}
			logger.Debug("query served", attrs...)
			return res, nil
		})
	}
}

// CommandLogging records each command outcome. Writes are logged at Info.
func CommandLogging(logger *slog.Logger) CommandMiddleware {
	if logger == nil {
		panic("middleware: logger required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (res any, err error) {
			start := time.Now()
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("command %s panicked: %v", cmd.Key(), r)
					logger.Error("command panicked", "command", cmd.Key(), "panic", r)
				}
			}()
			res, err = next.Dispatch(ctx, cmd)
			attrs := []any{"command", cmd.Key(), "duration_ms", time.Since(start).Milliseconds()}
			if err != nil {
				logger.Warn("command failed", append(attrs, "error", err)...)
				return nil, err
			}
			logger.Info("command handled", attrs...)
			return res, nil
		})
	}
}
