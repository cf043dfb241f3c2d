// Package result carries the success-or-failure outcome of repository calls
// so callers branch on a value instead of on a raised fault.
package result

import (
	"errors"
	"fmt"
)

// Void is the success payload of operations that return nothing.
type Void struct{}

type Result[T any] struct {
	value T
	err   error
}

func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Fail builds a failure. A nil err is replaced with a generic one so a
// failure can never be mistaken for success.
func Fail[T any](err error) Result[T] {
	if err == nil {
		err = errors.New("unknown failure")
	}
	return Result[T]{err: err}
}

func From[T any](value T, err error) Result[T] {
	if err != nil {
		return Fail[T](err)
	}
	return Ok(value)
}

// Capture runs fn and converts both a returned error and a panic into a
// failure.
func Capture[T any](fn func() (T, error)) (res Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			res = Fail[T](fmt.Errorf("panic: %v", r))
		}
	}()
	return From(fn())
}

func (r Result[T]) IsSuccess() bool {
	return r.err == nil
}

// Value returns the success payload, or the zero value on failure.
func (r Result[T]) Value() T {
	return r.value
}

func (r Result[T]) Err() error {
	return r.err
}

// Message is the human-readable failure text; empty on success.
func (r Result[T]) Message() string {
	if r.err == nil {
		return ""
	}
	return r.err.Error()
}

func (r Result[T]) Get() (T, error) {
	return r.value, r.err
}
