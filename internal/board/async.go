package board

import (
	"context"

	"github.com/abhisek/starpath/internal/progress"
	"github.com/abhisek/starpath/internal/todo"
)

// Go runs op on its own goroutine and hands the result to cb. op is not
// cancelled when ctx is: a mutation that reached the store always
// finishes its merge or rollback.
func Go[T any](ctx context.Context, b *Board, op func(context.Context) (T, error), cb func(T, error)) {
	ctx = context.WithoutCancel(ctx)
	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		v, err := op(ctx)
		if cb != nil {
			cb(v, err)
		}
	}()
}

// Wait blocks until every async mutation has delivered its callback.
func (b *Board) Wait() {
	b.inflight.Wait()
}

// ToggleAsync is Toggle on a goroutine.
func (b *Board) ToggleAsync(ctx context.Context, id string, cb func(todo.Item, error)) {
	Go(ctx, b, func(ctx context.Context) (todo.Item, error) { return b.Toggle(ctx, id) }, cb)
}

// AddAsync is Add on a goroutine.
func (b *Board) AddAsync(ctx context.Context, text, category string, cb func(todo.Item, error)) {
	Go(ctx, b, func(ctx context.Context) (todo.Item, error) { return b.Add(ctx, text, category) }, cb)
}

// DeleteAsync is Delete on a goroutine.
func (b *Board) DeleteAsync(ctx context.Context, id string, cb func(error)) {
	Go(ctx, b, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, b.Delete(ctx, id)
	}, func(_ struct{}, err error) {
		if cb != nil {
			cb(err)
		}
	})
}

// UnlockNodeAsync is UnlockNode on a goroutine.
func (b *Board) UnlockNodeAsync(ctx context.Context, nodeID string, cb func(*progress.Result, error)) {
	Go(ctx, b, func(ctx context.Context) (*progress.Result, error) { return b.UnlockNode(ctx, nodeID) }, cb)
}

// CompleteNodeAsync is CompleteNode on a goroutine.
func (b *Board) CompleteNodeAsync(ctx context.Context, nodeID string, cb func(*progress.Result, error)) {
	Go(ctx, b, func(ctx context.Context) (*progress.Result, error) { return b.CompleteNode(ctx, nodeID) }, cb)
}
