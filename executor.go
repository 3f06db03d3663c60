package cassandra

import (
	"context"
	"sync"
)

// Result is the outcome of executing a Statement.
type Result interface {
	// PagingState returns the token continuing the query at the next page,
	// or nil on the last page.
	PagingState() []byte
}

// Executor runs statements against a cluster. Execute must snapshot the
// statement with Statement.Request before returning, so the caller may
// rebind or close it while the Future is pending.
type Executor interface {
	Prepare(ctx context.Context, query string) (*PreparedStatement, error)
	Execute(ctx context.Context, stmt *Statement) *Future
}

// Future is the pending outcome of an Execute call.
type Future struct {
	done   chan struct{}
	once   sync.Once
	result Result
	err    error
}

// NewFuture runs fn in a new goroutine and returns a Future resolving to its
// outcome. A cancelled ctx resolves the Future with ctx.Err() without
// waiting for fn.
func NewFuture(ctx context.Context, fn func(context.Context) (Result, error)) *Future {
	f := &Future{done: make(chan struct{})}
	go func() {
		res, err := fn(ctx)
		f.resolve(res, err)
	}()
	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				f.resolve(nil, ctx.Err())
			case <-f.done:
			}
		}()
	}
	return f
}

// FailedFuture returns a Future already resolved with err.
func FailedFuture(err error) *Future {
	f := &Future{done: make(chan struct{})}
	f.resolve(nil, err)
	return f
}

func (f *Future) resolve(res Result, err error) {
	f.once.Do(func() {
		f.result, f.err = res, err
		close(f.done)
	})
}

// Done is closed once the outcome is available.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the outcome is available.
func (f *Future) Wait() (Result, error) {
	<-f.done
	return f.result, f.err
}
