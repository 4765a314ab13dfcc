package gateway

import (
	"context"
	"sync/atomic"
)

// Sequencer hands out increasing request numbers so a caller can ignore
// responses that arrive after a newer request was made
type Sequencer struct {
	n atomic.Uint64
}

// Next returns a new sequence number, making every earlier one stale
func (s *Sequencer) Next() uint64 {
	return s.n.Add(1)
}

// IsCurrent reports whether seq is the most recent number handed out
func (s *Sequencer) IsCurrent(seq uint64) bool {
	return s.n.Load() == seq
}

// Call is an in-flight gateway operation
type Call[T any] struct {
	Seq  uint64
	done chan struct{}
	val  T
	err  error
}

// Go runs fn in a goroutine and returns a Call tagged with the next number
// from seq. Failures are not retried.
func Go[T any](ctx context.Context, seq *Sequencer, fn func(context.Context) (T, error)) *Call[T] {
	c := &Call[T]{Seq: seq.Next(), done: make(chan struct{})}
	go func() {
		defer close(c.done)
		c.val, c.err = fn(ctx)
	}()
	return c
}

// Done is closed when the call has finished
func (c *Call[T]) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the call finishes or ctx is cancelled
func (c *Call[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-c.done:
		return c.val, c.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Current waits for the call and reports whether its result is still the
// latest one issued by seq. A stale result should be dropped.
func (c *Call[T]) Current(ctx context.Context, seq *Sequencer) (T, bool, error) {
	val, err := c.Wait(ctx)
	return val, seq.IsCurrent(c.Seq), err
}
