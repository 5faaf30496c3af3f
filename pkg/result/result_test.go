package result_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/courier/pkg/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_SuccessAndFailureAreExclusive(t *testing.T) {
	ok := result.Success(42)
	assert.True(t, ok.IsSuccess())
	assert.False(t, ok.IsFailure())
	assert.Nil(t, ok.Errors())
	assert.NoError(t, ok.Err())
	assert.Equal(t, 42, ok.Value())

	bad := result.Failure[int](result.NewError("Order.Invalid", "bad total"))
	assert.False(t, bad.IsSuccess())
	assert.True(t, bad.IsFailure())
	_, got := bad.Get()
	assert.False(t, got)
	assert.Panics(t, func() { bad.Value() })
}

func TestResult_FailureRequiresErrors(t *testing.T) {
	assert.Panics(t, func() { result.Failure[string]() })
}

func TestResult_ErrorsAreCopied(t *testing.T) {
	errs := []result.Error{result.NewError("A", "a"), result.NewError("B", "b")}
	r := result.Failure[int](errs...)

	errs[0].Code = "mutated"
	out := r.Errors()
	out[1].Code = "mutated"

	assert.Equal(t, []result.Error{{Code: "A", Message: "a"}, {Code: "B", Message: "b"}}, r.Errors())
	first, ok := r.FirstError()
	require.True(t, ok)
	assert.Equal(t, "A", first.Code)
}

func TestResult_ErrJoinsAll(t *testing.T) {
	a := result.NewError("A", "first")
	b := result.NewError("B", "second")
	err := result.Failure[int](a, b).Err()

	require.Error(t, err)
	assert.True(t, errors.Is(err, a))
	assert.True(t, errors.Is(err, b))
	assert.Contains(t, err.Error(), "A: first")
}

func TestPropagate_KeepsErrors(t *testing.T) {
	src := result.Failure[int](result.NewError("X", "y"))
	dst := result.Propagate[string](src)
	assert.Equal(t, src.Errors(), dst.Errors())

	assert.Panics(t, func() { result.Propagate[string](result.Success(1)) })
}

func TestFold(t *testing.T) {
	describe := func(r result.Result[int]) string {
		return result.Fold(r,
			func(v int) string { return "ok" },
			func(errs []result.Error) string { return errs[0].Code },
		)
	}
	assert.Equal(t, "ok", describe(result.Success(1)))
	assert.Equal(t, "E", describe(result.Failure[int](result.NewError("E", ""))))
}

func TestFuture_Await(t *testing.T) {
	f := result.Go(func() result.Result[int] {
		time.Sleep(5 * time.Millisecond)
		return result.Success(7)
	})

	r, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, r.Value())

	resolved, err := result.Resolved(result.Success("now")).Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "now", resolved.Value())
}

func TestFuture_AwaitCanceled(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	f := result.Go(func() result.Result[int] {
		<-release
		return result.Success(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, result.ErrAwaitCanceled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFuture_PanicIsRaisedOnAwait(t *testing.T) {
	f := result.Go(func() result.Result[int] {
		panic("boom")
	})
	<-f.Done()

	assert.PanicsWithValue(t, "boom", func() {
		_, _ = f.Await(context.Background())
	})
}
