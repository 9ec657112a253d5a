// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Futures provide a placeholder for the result of a computation running on
// another goroutine. A Promise is used to fulfill a Future; the consumer
// blocks in Await until the value is available.
//
// The producer side typically looks as follows:
//
//	promise, future := future.Create[T]()
//	go func() {
//	   promise.Fulfill(someOperation())
//	}()
//	return future
//
// Spawn covers the common case of running a fallible function on its own
// goroutine, including the recovery of panics.
package future

import (
	"fmt"

	"github.com/pepyakin/rusty-cannon/common/result"
)

// Promise represents the handle used to fulfill a Future.
type Promise[T any] struct {
	C chan<- T
}

// Future represents a placeholder for a value that will be available in the
// future.
type Future[T any] struct {
	C <-chan T
}

// Create initializes a new Promise and Future pair.
func Create[T any]() (Promise[T], Future[T]) {
	ch := make(chan T, 1)
	return Promise[T]{C: ch}, Future[T]{C: ch}
}

// Fulfill makes the value available to the Future. A Promise may only be
// fulfilled once.
func (p Promise[T]) Fulfill(value T) {
	p.C <- value
	close(p.C)
}

// Await blocks until the Future is fulfilled and returns the value. Futures
// can only be consumed once.
func (f Future[T]) Await() T {
	return <-f.C
}

// Spawn runs f on a new goroutine and returns a Future for its result. A
// panic in f is recovered and reported as an error; if the goroutine is
// ended through runtime.Goexit, the Future holds the zero value and no
// error.
func Spawn[T any](f func() (T, error)) Future[result.Result[T]] {
	promise, future := Create[result.Result[T]]()
	go func() {
		var res result.Result[T]
		defer func() {
			if r := recover(); r != nil {
				err, ok := r.(error)
				if !ok {
					err = fmt.Errorf("panic: %v", r)
				}
				res = result.Err[T](err)
			}
			promise.Fulfill(res)
		}()
		value, err := f()
		res = result.Of(value, err)
	}()
	return future
}
