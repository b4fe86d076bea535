package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the executor.
var (
	// ErrInconsistentRevalidation is returned when the server answers
	// 304 Not Modified but no cached entry exists to serve. A body is
	// never synthesized.
	ErrInconsistentRevalidation = errors.New("not modified without cached entry")

	// ErrDecode is returned when a response body is not valid JSON.
	ErrDecode = errors.New("malformed response body")
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents transport-level failures (no response).
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassRevalidation represents an inconsistent 304 from the server.
	ErrorClassRevalidation ErrorClass = "revalidation"

	// ErrorClassDecode represents a malformed response body.
	ErrorClassDecode ErrorClass = "decode"
)

// APIError represents a backend request failure with additional context.
type APIError struct {
	StatusCode int
	Class      ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		if e.StatusCode > 0 {
			return fmt.Sprintf("content API %s error (status %d): %s: %v",
				e.Class, e.StatusCode, e.Message, e.Err)
		}
		return fmt.Sprintf("content API %s error: %s: %v", e.Class, e.Message, e.Err)
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("content API %s error (status %d): %s",
			e.Class, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("content API %s error: %s", e.Class, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// classifyStatus categorizes an HTTP status code.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}
