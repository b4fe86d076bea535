package client

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestAPIErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want []string
	}{
		{
			name: "status and message",
			err: &APIError{
				StatusCode: 404,
				Class:      ErrorClassClient,
				Message:    "unknown screen",
			},
			want: []string{"client", "404", "unknown screen"},
		},
		{
			name: "wrapped cause",
			err: &APIError{
				Class:   ErrorClassNetwork,
				Message: "request failed",
				Err:     fmt.Errorf("dial tcp: connection refused"),
			},
			want: []string{"network", "connection refused"},
		},
		{
			name: "revalidation",
			err: &APIError{
				StatusCode: 304,
				Class:      ErrorClassRevalidation,
				Message:    "server reported not modified",
				Err:        ErrInconsistentRevalidation,
			},
			want: []string{"revalidation", "not modified"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, fragment := range tt.want {
				if !strings.Contains(msg, fragment) {
					t.Errorf("Error() = %q, want containing %q", msg, fragment)
				}
			}
		})
	}
}

func TestAPIErrorUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := &APIError{Class: ErrorClassNetwork, Message: "request failed", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("errors.Is() did not reach the wrapped cause")
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		statusCode int
		want       ErrorClass
	}{
		{400, ErrorClassClient},
		{404, ErrorClassClient},
		{499, ErrorClassClient},
		{500, ErrorClassServer},
		{503, ErrorClassServer},
		{200, ""},
		{304, ""},
	}

	for _, tt := range tests {
		if got := classifyStatus(tt.statusCode); got != tt.want {
			t.Errorf("classifyStatus(%d) = %v, want %v", tt.statusCode, got, tt.want)
		}
	}
}

func TestResultHelpers(t *testing.T) {
	ok := OK(42)
	if !ok.Success || ok.Data != 42 || ok.ServedStale {
		t.Errorf("OK() = %+v", ok)
	}

	stale := OKStale("cached")
	if !stale.Success || !stale.ServedStale {
		t.Errorf("OKStale() = %+v", stale)
	}

	fail := Fail[int](errors.New("boom"))
	if fail.Success || fail.Error != "boom" {
		t.Errorf("Fail() = %+v", fail)
	}
}
