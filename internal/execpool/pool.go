// Package execpool bounds how many blocking collector calls may run at once,
// so a slow collector backpressures its callers instead of piling up
// goroutines and memory.
package execpool

import "context"

// Pool is a fixed set of execution slots. Do blocks while every slot is busy;
// there is no queue beyond the waiting callers themselves.
type Pool struct {
	slots chan struct{}
}

func New(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{slots: make(chan struct{}, size)}
}

// Do acquires a slot, runs fn, and releases the slot. The context only guards
// the wait for a slot; once fn starts it runs to completion.
func (p *Pool) Do(ctx context.Context, fn func() ([]byte, error)) ([]byte, error) {
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-p.slots }()
	return fn()
}

// Size reports the pool's slot count.
func (p *Pool) Size() int {
	return cap(p.slots)
}
