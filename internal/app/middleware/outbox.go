package middleware

import (
	"context"

	"staypricing/internal/app/commands"
	"staypricing/internal/app/outbox"
)

// OutboxFlush publishes listing.published and booking.* events once the
// command that staged them has returned. A failed command flushes nothing.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := nextFn(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}
