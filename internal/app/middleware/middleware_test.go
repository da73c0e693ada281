package middleware

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staypricing/internal/app/commands"
	"staypricing/internal/app/queries"
)

type echoResult struct {
	N int `json:"n"`
}

type echoCommand struct {
	IdemKey string
	Role    string
	Missing bool
}

func (c echoCommand) Key() string            { return "test.echo" }
func (c echoCommand) IdempotencyKey() string { return c.IdemKey }
func (c echoCommand) ResultPrototype() any   { return &echoResult{} }
func (c echoCommand) ExclusiveKey() string   { return "same" }
func (c echoCommand) RequiredRole() string   { return c.Role }
func (c echoCommand) Validate() error {
	if c.Missing {
		return errors.New("field is required")
	}
	return nil
}

type mapStore struct {
	mu   sync.Mutex
	recs map[string]IdempotencyRecord
}

func newMapStore() *mapStore { return &mapStore{recs: map[string]IdempotencyRecord{}} }

func (s *mapStore) Get(ctx context.Context, key string) (IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[key]
	return rec, ok, nil
}

func (s *mapStore) Save(ctx context.Context, rec IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[rec.Key] = rec
	return nil
}

func counterBus(t *testing.T, fail *atomic.Bool) (*commands.InMemoryBus, *atomic.Int64) {
	t.Helper()
	var calls atomic.Int64
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler(bus, "test.echo", commands.HandlerFunc[echoCommand, *echoResult](
		func(ctx context.Context, cmd echoCommand) (*echoResult, error) {
			n := calls.Add(1)
			if fail != nil && fail.Load() {
				return nil, errors.New("boom")
			}
			return &echoResult{N: int(n)}, nil
		}))
	return bus, &calls
}

func TestIdempotencyReplaysResult(t *testing.T) {
	base, calls := counterBus(t, nil)
	bus := ChainCommands(base, Idempotency(newMapStore(), nil, time.Hour))
	ctx := context.Background()

	first, err := commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{IdemKey: "k"})
	require.NoError(t, err)
	second, err := commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{IdemKey: "k"})
	require.NoError(t, err)

	assert.Equal(t, first.N, second.N)
	assert.Equal(t, int64(1), calls.Load())

	_, err = commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load(), "no key means no replay")
}

func TestIdempotencyExpiresAfterTTL(t *testing.T) {
	store := newMapStore()
	base, calls := counterBus(t, nil)
	bus := ChainCommands(base, Idempotency(store, nil, time.Minute))
	ctx := context.Background()

	_, err := commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{IdemKey: "k"})
	require.NoError(t, err)

	rec := store.recs["test.echo:k"]
	rec.OccurredAt = rec.OccurredAt.Add(-2 * time.Minute)
	store.recs["test.echo:k"] = rec

	_, err = commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{IdemKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load())
}

func TestIdempotencyDoesNotRecordFailures(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	base, calls := counterBus(t, &fail)
	store := newMapStore()
	bus := ChainCommands(base, Idempotency(store, nil, 0))
	ctx := context.Background()

	_, err := commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{IdemKey: "k"})
	require.Error(t, err)
	assert.Empty(t, store.recs)

	fail.Store(false)
	out, err := commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{IdemKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, 2, out.N)
	assert.Equal(t, int64(2), calls.Load())
}

func TestExclusiveRejectsConcurrentSameKey(t *testing.T) {
	busy := errors.New("busy")
	release := make(chan struct{})
	entered := make(chan struct{})
	base := commands.NewInMemoryBus()
	commands.RegisterHandler(base, "test.echo", commands.HandlerFunc[echoCommand, *echoResult](
		func(ctx context.Context, cmd echoCommand) (*echoResult, error) {
			close(entered)
			<-release
			return &echoResult{N: 1}, nil
		}))
	bus := ChainCommands(base, Exclusive(busy))
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := bus.Dispatch(ctx, echoCommand{})
		done <- err
	}()
	<-entered

	_, err := bus.Dispatch(ctx, echoCommand{})
	assert.ErrorIs(t, err, busy)

	close(release)
	require.NoError(t, <-done)
}

func TestValidationWrapsSelfValidatingErrors(t *testing.T) {
	base, calls := counterBus(t, nil)
	bus := ChainCommands(base, Validation(MessageValidator{}))

	_, err := bus.Dispatch(context.Background(), echoCommand{Missing: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidMessage)
	assert.EqualError(t, err, "field is required")
	assert.Zero(t, calls.Load())
}

func TestAuthorizationChecksRequiredRole(t *testing.T) {
	base, calls := counterBus(t, nil)
	bus := ChainCommands(base, Authorization(RoleAuthorizer{}))
	ctx := context.Background()

	_, err := bus.Dispatch(ctx, echoCommand{Role: "host"})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	guest := ContextWithPrincipal(ctx, Principal{UserID: "u1", Roles: []string{"guest"}})
	_, err = bus.Dispatch(guest, echoCommand{Role: "host"})
	assert.ErrorIs(t, err, ErrForbidden)

	hostCtx := ContextWithPrincipal(ctx, Principal{UserID: "u2", Roles: []string{"host"}})
	_, err = bus.Dispatch(hostCtx, echoCommand{Role: "host"})
	require.NoError(t, err)

	_, err = bus.Dispatch(ctx, echoCommand{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load())
}

type echoQuery struct{ Role string }

func (q echoQuery) Key() string          { return "test.query" }
func (q echoQuery) RequiredRole() string { return q.Role }

func TestQueryAuthorization(t *testing.T) {
	base := queries.NewInMemoryBus()
	queries.RegisterHandler(base, "test.query", queries.HandlerFunc[echoQuery, string](
		func(ctx context.Context, q echoQuery) (string, error) { return "ok", nil }))
	bus := ChainQueries(base, QueryValidation(MessageValidator{}), QueryAuthorization(RoleAuthorizer{}))

	_, err := queries.Ask[echoQuery, string](context.Background(), bus, echoQuery{Role: "host"})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	out, err := queries.Ask[echoQuery, string](context.Background(), bus, echoQuery{})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}
