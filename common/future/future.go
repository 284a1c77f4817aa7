// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package future provides a minimal Future and Promise abstraction on top of
// channels. A Promise fulfills exactly one Future, which can be awaited once.
//
// The producer side typically looks as follows:
//
//	promise, f := future.Create[T]()
//	go func() {
//	    promise.Fulfill(compute())
//	}()
//	return f
//
// Go wraps this pattern for functions, and AwaitAll collects the values of a
// group of futures in order.
package future

// Promise is the handle used to fulfill a Future.
type Promise[T any] struct {
	C chan<- T
}

// Future is a placeholder for a value that becomes available later.
type Future[T any] struct {
	C <-chan T
}

// Create initializes a linked Promise and Future pair.
func Create[T any]() (Promise[T], Future[T]) {
	ch := make(chan T, 1)
	return Promise[T]{C: ch}, Future[T]{C: ch}
}

// Immediate creates a Future that is already fulfilled with the given value.
func Immediate[T any](value T) Future[T] {
	ch := make(chan T, 1)
	ch <- value
	close(ch)
	return Future[T]{C: ch}
}

// Go runs the given function in a new goroutine and returns a Future for its
// result.
func Go[T any](run func() T) Future[T] {
	promise, future := Create[T]()
	go func() {
		promise.Fulfill(run())
	}()
	return future
}

// Fulfill makes the given value available to the linked Future. A Promise
// may only be fulfilled once.
func (p Promise[T]) Fulfill(value T) {
	p.C <- value
	close(p.C)
}

// Await blocks until the Future is fulfilled and returns its value. Futures
// can only be consumed once.
func (f Future[T]) Await() T {
	return <-f.C
}

// AwaitAll awaits all given futures and returns their values in the order of
// the futures.
func AwaitAll[T any](futures []Future[T]) []T {
	values := make([]T, len(futures))
	for i, f := range futures {
		values[i] = f.Await()
	}
	return values
}

// Then creates a new Future by applying the given transformation to the value
// of the original Future once it is fulfilled.
func Then[A, B any](f Future[A], transform func(A) B) Future[B] {
	return Go(func() B {
		return transform(f.Await())
	})
}
