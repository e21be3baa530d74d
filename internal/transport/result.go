// Package transport performs authenticated JSON requests against the leads
// API and reports each outcome as a typed Result.
package transport

import "fmt"

// Kind classifies a failed request.
type Kind int

const (
	// KindNetwork covers requests that never produced a response.
	KindNetwork Kind = iota + 1
	// KindUnauthorized is a 401 or 403 from the API.
	KindUnauthorized
	// KindRejected is any other non-2xx response.
	KindRejected
	// KindDecode means the response body could not be read or parsed.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindUnauthorized:
		return "unauthorized"
	case KindRejected:
		return "rejected"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is the failure half of a Result.
type Error struct {
	Kind    Kind
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("transport: %s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("transport: %s: %s", e.Kind, e.Message)
}

// Result is either Ok(value) or Err(kind, message).
type Result[T any] struct {
	value T
	err   *Error
}

// Ok wraps a successful value.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Err builds a failed result.
func Err[T any](kind Kind, message string) Result[T] {
	return Result[T]{err: &Error{Kind: kind, Message: message}}
}

// ErrStatus builds a failed result that remembers the HTTP status.
func ErrStatus[T any](kind Kind, status int, message string) Result[T] {
	return Result[T]{err: &Error{Kind: kind, Status: status, Message: message}}
}

// IsOk reports whether the result holds a value.
func (r Result[T]) IsOk() bool { return r.err == nil }

// Value returns the value and whether it is present.
func (r Result[T]) Value() (T, bool) {
	return r.value, r.err == nil
}

// Failure returns the error half, or nil for Ok results.
func (r Result[T]) Failure() *Error { return r.err }

// Unwrap converts the result into Go's (value, error) form.
func (r Result[T]) Unwrap() (T, error) {
	if r.err != nil {
		var zero T
		return zero, r.err
	}
	return r.value, nil
}

// Map transforms the value of an Ok result. f may fail, in which case the
// result becomes Err(KindDecode, ...).
func Map[T, U any](r Result[T], f func(T) (U, error)) Result[U] {
	if r.err != nil {
		return Result[U]{err: r.err}
	}
	out, err := f(r.value)
	if err != nil {
		return Err[U](KindDecode, err.Error())
	}
	return Ok(out)
}
