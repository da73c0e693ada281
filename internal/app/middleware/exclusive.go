package middleware

import (
	"context"
	"sync"

	"staypricing/internal/app/commands"
)

// ExclusiveCommand is implemented by commands that must not run twice at once
// for the same key.
type ExclusiveCommand interface {
	commands.Command
	ExclusiveKey() string
}

// Exclusive rejects an ExclusiveCommand with busy while another one holding
// the same key is still in flight. It does not queue.
func Exclusive(busy error) CommandMiddleware {
	if busy == nil {
		panic("middleware: busy error required")
	}
	var (
		mu     sync.Mutex
		active = make(map[string]struct{})
	)
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			ex, ok := cmd.(ExclusiveCommand)
			if !ok || ex.ExclusiveKey() == "" {
				return nextFn(ctx, cmd)
			}
			key := ex.Key() + ":" + ex.ExclusiveKey()
			mu.Lock()
			if _, running := active[key]; running {
				mu.Unlock()
				return nil, busy
			}
			active[key] = struct{}{}
			mu.Unlock()
			defer func() {
				mu.Lock()
				delete(active, key)
				mu.Unlock()
			}()
			return nextFn(ctx, cmd)
		})
	}
}
