// Package stream implements the lazy, single-consumption, asynchronous
// streams that carry bindings and quads between operators. Its push/pull
// channel discipline is modeled directly on the teacher's
// pkg/minikanren.Stream: a goroutine producer, an unbuffered channel, and a
// done channel that a consumer closes to cancel the producer.
package stream

import (
	"context"
	"sync"
)

// Metadata describes properties of a stream that may only be knowable once
// the underlying source has been (partially or fully) consulted. Callers
// invoke Stream.Metadata() to fetch it lazily.
type Metadata struct {
	// TotalItems is the known or estimated cardinality of the stream, or -1
	// if unknown.
	TotalItems int64
}

// UnknownTotal is used as Metadata.TotalItems when cardinality cannot be
// estimated.
const UnknownTotal int64 = -1

// Producer is called once, in its own goroutine, to push values into a
// Stream. It must respect ctx.Done() and stop sending (and return) once the
// context is cancelled. A non-nil returned error is delivered to the
// consumer as the stream's terminal error.
type Producer[T any] func(ctx context.Context, emit func(T) bool) error

// Stream is a generic, single-consumption, asynchronous sequence of values
// of type T (Bindings or Quad in sparqlflow). It is safe to call Next from
// only one goroutine at a time; Destroy may be called concurrently with
// Next.
type Stream[T any] struct {
	variables []string
	metaFn    func() Metadata

	ch     chan T
	errCh  chan error
	ctx    context.Context
	cancel context.CancelFunc

	once sync.Once
	done bool
	err  error
}

// New constructs a Stream with the given variable list and lazy metadata
// thunk, running producer in a new goroutine derived from parent's
// cancellation scope. Closing the returned Stream (Destroy) cancels that
// derived context, which cascades to any upstream stream producer derived
// from the same chain.
func New[T any](parent context.Context, variables []string, metaFn func() Metadata, producer Producer[T]) *Stream[T] {
	ctx, cancel := context.WithCancel(parent)
	s := &Stream[T]{
		variables: variables,
		metaFn:    metaFn,
		ch:        make(chan T),
		errCh:     make(chan error, 1),
		ctx:       ctx,
		cancel:    cancel,
	}

	go func() {
		defer close(s.ch)
		emit := func(v T) bool {
			select {
			case s.ch <- v:
				return true
			case <-ctx.Done():
				return false
			}
		}
		err := producer(ctx, emit)
		if err != nil {
			s.errCh <- err
		}
		close(s.errCh)
	}()

	return s
}

// Variables returns the ordered list of variable names this stream's values
// are defined over. For quad streams this is empty.
func (s *Stream[T]) Variables() []string {
	return s.variables
}

// Metadata evaluates and returns the stream's metadata. It may be called
// more than once; implementations should memoize internally if evaluation
// is expensive.
func (s *Stream[T]) Metadata() Metadata {
	if s.metaFn == nil {
		return Metadata{TotalItems: UnknownTotal}
	}
	return s.metaFn()
}

// Next pulls the next value. ok is false when the stream is exhausted; err
// is non-nil if the producer terminated abnormally (propagated exactly
// once, per the substrate's error propagation policy).
func (s *Stream[T]) Next() (value T, ok bool, err error) {
	if s.done {
		var zero T
		return zero, false, nil
	}
	v, open := <-s.ch
	if open {
		return v, true, nil
	}
	s.done = true
	select {
	case e, has := <-s.errCh:
		if has {
			s.err = e
		}
	default:
	}
	var zero T
	return zero, false, s.err
}

// Destroy cancels the stream's derived context, unblocking any pending send
// in the producer and cascading cancellation to upstream producers that
// share the same context chain. Safe to call multiple times.
func (s *Stream[T]) Destroy() {
	s.once.Do(func() {
		s.cancel()
	})
}

// Drain consumes and discards every remaining value, returning the first
// error encountered (if any). Used by operators (Ask, Reduced-as-passthrough
// callers) that need to fully exhaust an upstream without caring about its
// values.
func Drain[T any](s *Stream[T]) error {
	for {
		_, ok, err := s.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
}

// Collect reads every remaining value into a slice. Used by blocking
// operators (OrderBy, Group, Distinct-by-hash) that must materialize their
// input.
func Collect[T any](s *Stream[T]) ([]T, error) {
	var out []T
	for {
		v, ok, err := s.Next()
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, v)
	}
}

// FromSlice returns a Stream that replays a fixed slice of values, useful
// for operators whose result is computed eagerly (OrderBy, Group, Values)
// but must still be exposed as a Stream downstream.
func FromSlice[T any](parent context.Context, variables []string, values []T) *Stream[T] {
	total := int64(len(values))
	return New(parent, variables, func() Metadata { return Metadata{TotalItems: total} },
		func(ctx context.Context, emit func(T) bool) error {
			for _, v := range values {
				if !emit(v) {
					return nil
				}
			}
			return nil
		})
}
