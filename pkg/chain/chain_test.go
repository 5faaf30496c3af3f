package chain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/courier/pkg/chain"
	"github.com/aretw0/courier/pkg/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type OrderRequest struct{ ID int }

type Order struct {
	ID    int
	Total int
}

type OrderDTO struct {
	ID    int
	Total int
}

type orderFlow struct {
	validateFails bool
	persisted     int
}

func (f *orderFlow) fetch(c *chain.Context) result.Result[Order] {
	req := chain.Get[OrderRequest](c)
	return result.Success(Order{ID: req.ID, Total: 100})
}

func (f *orderFlow) validate(c *chain.Context) result.Result[result.Unit] {
	order := chain.Get[Order](c)
	if f.validateFails || order.Total <= 0 {
		return result.Failure[result.Unit](result.NewError("Invalid-Total", "must be positive"))
	}
	return result.Success(result.Unit{})
}

type Persisted struct{ Order Order }

type stepError struct{ msg string }

func (e stepError) Error() string { return e.msg }

func (f *orderFlow) persist(c *chain.Context) result.Result[Persisted] {
	f.persisted++
	return result.Success(Persisted{Order: chain.Get[Order](c)})
}

func toDTO(c *chain.Context) result.Result[OrderDTO] {
	p := chain.Get[Persisted](c)
	return result.Success(OrderDTO{ID: p.Order.ID, Total: p.Order.Total})
}

func TestChain_EndToEnd_Success(t *testing.T) {
	flow := &orderFlow{}

	res := chain.Map(
		chain.Then(chain.Then(chain.Then(chain.Start(OrderRequest{ID: 1}), flow.fetch), flow.validate), flow.persist),
		toDTO,
	)

	require.True(t, res.IsSuccess())
	assert.Equal(t, OrderDTO{ID: 1, Total: 100}, res.Value())
	assert.Equal(t, 1, flow.persisted)
}

func TestChain_EndToEnd_ValidationFailure(t *testing.T) {
	flow := &orderFlow{validateFails: true}

	res := chain.Map(
		chain.Run(chain.Start(OrderRequest{ID: 1}),
			chain.Step(flow.fetch),
			chain.Step(flow.validate),
			chain.Step(flow.persist),
		),
		toDTO,
	)

	require.True(t, res.IsFailure())
	assert.Equal(t, []result.Error{{Code: "Invalid-Total", Message: "must be positive"}}, res.Errors())
	assert.Zero(t, flow.persisted, "persist must not run after a failed step")
}

func TestChain_ShortCircuit(t *testing.T) {
	calls := 0
	fail := func(c *chain.Context) result.Result[int] {
		calls++
		return result.Failure[int](result.NewError("First", "first failure"))
	}
	never := func(c *chain.Context) result.Result[string] {
		t.Fatal("step after a failure must not run")
		return result.Success("unreachable")
	}
	alsoFail := func(c *chain.Context) result.Result[bool] {
		t.Fatal("step after a failure must not run")
		return result.Failure[bool](result.NewError("Second", ""))
	}

	res := chain.Then(chain.Then(chain.Then(chain.Start("seed"), fail), never), alsoFail)

	require.True(t, res.IsFailure())
	assert.Equal(t, 1, calls)
	assert.Equal(t, []result.Error{{Code: "First", Message: "first failure"}}, res.Errors())
}

func TestContext_TryAddKeepsFirst(t *testing.T) {
	c := chain.Start().Value()

	assert.True(t, c.TryAdd(Order{ID: 1}))
	assert.False(t, c.TryAdd(Order{ID: 2}))
	assert.Equal(t, Order{ID: 1}, chain.Get[Order](c))
	assert.Equal(t, 1, c.Len())
}

func TestContext_DuplicateFailsFast(t *testing.T) {
	t.Run("Add", func(t *testing.T) {
		c := chain.Start(Order{ID: 1}).Value()
		assertMisuse(t, chain.ErrDuplicate, func() { c.Add(Order{ID: 2}) })
	})

	t.Run("Start", func(t *testing.T) {
		assertMisuse(t, chain.ErrDuplicate, func() { chain.Start(1, 2) })
	})

	t.Run("Then", func(t *testing.T) {
		again := func(c *chain.Context) result.Result[OrderRequest] {
			return result.Success(OrderRequest{ID: 9})
		}
		assertMisuse(t, chain.ErrDuplicate, func() { chain.Then(chain.Start(OrderRequest{ID: 1}), again) })
	})
}

func TestContext_UnitStepsStoreNothing(t *testing.T) {
	check := func(c *chain.Context) result.Result[result.Unit] {
		return result.Success(result.Unit{})
	}

	res := chain.Run(chain.Start(OrderRequest{ID: 1}), chain.Step(check), chain.Step(check))

	require.True(t, res.IsSuccess())
	assert.Equal(t, 1, res.Value().Len())
}

func TestContext_GetMissing(t *testing.T) {
	c := chain.Start().Value()
	assertMisuse(t, chain.ErrMissing, func() { chain.Get[Order](c) })

	_, ok := chain.Lookup[Order](c)
	assert.False(t, ok)
}

func TestContext_GetByInterface(t *testing.T) {
	c := chain.Start(Order{ID: 1}, errors.New("only error")).Value()

	err := chain.Get[error](c)
	assert.EqualError(t, err, "only error")

	c.Add(stepError{msg: "second error type"})
	assertMisuse(t, chain.ErrAmbiguous, func() { chain.Get[error](c) })
}

func TestContext_NilValue(t *testing.T) {
	assertMisuse(t, chain.ErrNilValue, func() { chain.Start(nil) })
}

func TestFinalize(t *testing.T) {
	var seen int
	res := chain.Finalize(chain.Start(Order{ID: 3}), func(c *chain.Context) {
		seen = chain.Get[Order](c).ID
	})
	require.True(t, res.IsSuccess())
	assert.True(t, res.Value())
	assert.Equal(t, 3, seen)

	failed := result.Failure[*chain.Context](result.NewError("Gone", ""))
	res = chain.Finalize(failed, func(c *chain.Context) { t.Fatal("action must not run") })
	assert.Equal(t, failed.Errors(), res.Errors())
}

func TestChain_AsyncCombinations(t *testing.T) {
	ctx := context.Background()
	flow := &orderFlow{}

	fetchAsync := func(ctx context.Context, c *chain.Context) *result.Future[Order] {
		return result.Go(func() result.Result[Order] { return flow.fetch(c) })
	}
	persistAsync := func(ctx context.Context, c *chain.Context) *result.Future[Persisted] {
		return result.Go(func() result.Result[Persisted] { return flow.persist(c) })
	}

	pending := chain.ThenAsync(ctx, chain.Start(OrderRequest{ID: 5}), fetchAsync)
	pending = chain.AwaitThen(ctx, pending, flow.validate)
	pending = chain.AwaitThenAsync(ctx, pending, persistAsync)

	res, err := chain.MapAsync(ctx, pending, toDTO).Await(ctx)
	require.NoError(t, err)
	require.True(t, res.IsSuccess())
	assert.Equal(t, OrderDTO{ID: 5, Total: 100}, res.Value())
}

func TestChain_AsyncShortCircuit(t *testing.T) {
	ctx := context.Background()
	flow := &orderFlow{validateFails: true}
	persistAsync := func(ctx context.Context, c *chain.Context) *result.Future[Persisted] {
		t.Fatal("persist must not be started")
		return nil
	}

	pending := chain.AwaitThen(ctx, result.Resolved(chain.Then(chain.Start(OrderRequest{ID: 1}), flow.fetch)), flow.validate)
	pending = chain.AwaitThenAsync(ctx, pending, persistAsync)

	res, err := pending.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Invalid-Total", res.Errors()[0].Code)

	failed := result.Failure[*chain.Context](result.NewError("Early", ""))
	direct, err := chain.ThenAsync(ctx, failed, persistAsync).Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, failed.Errors(), direct.Errors())
}

func TestChain_AwaitCanceled(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	slow := result.Go(func() result.Result[*chain.Context] {
		<-release
		return chain.Start()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := chain.AwaitThen(ctx, slow, func(c *chain.Context) result.Result[int] {
		return result.Success(1)
	}).Await(context.Background())
	require.NoError(t, err)
	require.True(t, res.IsFailure())
	assert.Equal(t, chain.CodeCanceled, res.Errors()[0].Code)
	assert.Contains(t, res.Errors()[0].Message, context.Canceled.Error(), "the failure carries the context error")
}

func assertMisuse(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value should be an error, got %T", r)
		var misuse *chain.MisuseError
		require.ErrorAs(t, err, &misuse)
		assert.ErrorIs(t, err, target)
	}()
	fn()
}
