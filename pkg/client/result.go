package client

// Result is the uniform shape returned by every public facade operation.
// Callers must check Success before reading Data.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`

	// ServedStale is set when Data came from stale cache after a
	// transport failure.
	ServedStale bool `json:"served_stale,omitempty"`
}

// OK builds a success result.
func OK[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// OKStale builds a success result served from stale cache.
func OKStale[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data, ServedStale: true}
}

// Fail builds a failure result from an error.
func Fail[T any](err error) Result[T] {
	return Result[T]{Error: err.Error()}
}
