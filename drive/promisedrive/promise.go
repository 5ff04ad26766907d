package promisedrive

import (
	"context"
	"sync"

	"github.com/asmsh/promise"
)

// None is the value of a promise for an operation that completes without results.
type None struct{}

// Promise is the pending outcome of an operation called without a completion callback.
//
// A Promise settles exactly once: fulfilled with a value, or rejected with the error
// the operation reported, unmodified. Later completions of a misbehaving drive are ignored.
//
// The outcome is held by a promise.GoPromise whose result is the value followed by the error.
// It is created through promise.NonSafeAPI: an uncaught rejection must not panic.
type Promise[T any] struct {
	settled chan promise.Res
	done    chan struct{}
	once    sync.Once
	result  func() (promise.Res, bool)
}

func newPromise[T any]() *Promise[T] {
	p := &Promise[T]{
		settled: make(chan promise.Res, 1),
		done:    make(chan struct{}),
	}

	p.result = promise.NonSafeAPI.GoRes(func() promise.Res {
		return <-p.settled
	}).GetRes

	return p
}

func (p *Promise[T]) settle(value T, err error) {
	p.once.Do(func() {
		p.settled <- promise.Res{value, err}
		close(p.done)
	})
}

func (p *Promise[T]) resolve(value T) {
	p.settle(value, nil)
}

func (p *Promise[T]) reject(err error) {
	var zero T
	p.settle(zero, err)
}

// Done returns a channel that is closed once the promise has settled.
func (p *Promise[T]) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the promise settles and returns its value or error.
func (p *Promise[T]) Wait() (T, error) {
	res, _ := p.result()

	return valueOf[T](res)
}

// Await blocks until the promise settles or ctx is done.
// Giving up on ctx does not cancel the operation itself.
func (p *Promise[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.Wait()
	default:
	}

	select {
	case <-p.done:
		return p.Wait()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then calls fn with the settled value and error on a separate goroutine.
func (p *Promise[T]) Then(fn func(value T, err error)) {
	go func() {
		fn(p.Wait())
	}()
}

// valueOf splits a settled result into the typed value and the trailing error.
func valueOf[T any](res promise.Res) (T, error) {
	var value T
	var err error

	if len(res) > 0 {
		if v, ok := res[0].(T); ok {
			value = v
		}
	}

	if len(res) > 1 {
		err, _ = res[len(res)-1].(error)
	}

	return value, err
}
