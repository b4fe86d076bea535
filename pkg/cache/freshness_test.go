package cache

import (
	"testing"
	"time"
)

func TestComputeWindow(t *testing.T) {
	defaultWindow := 30 * time.Second

	tests := []struct {
		name         string
		cacheControl string
		want         time.Duration
	}{
		{
			name:         "no directive uses default",
			cacheControl: "",
			want:         defaultWindow,
		},
		{
			name:         "max-age wins over default",
			cacheControl: "max-age=300",
			want:         300 * time.Second,
		},
		{
			name:         "max-age among other directives",
			cacheControl: "public, max-age=120, must-revalidate",
			want:         120 * time.Second,
		},
		{
			name:         "case insensitive",
			cacheControl: "Max-Age=60",
			want:         60 * time.Second,
		},
		{
			name:         "zero max-age honored",
			cacheControl: "max-age=0",
			want:         0,
		},
		{
			name:         "malformed value falls back to default",
			cacheControl: "max-age=soon",
			want:         defaultWindow,
		},
		{
			name:         "negative value falls back to default",
			cacheControl: "max-age=-5",
			want:         defaultWindow,
		},
		{
			name:         "unrelated directives ignored",
			cacheControl: "no-transform, public",
			want:         defaultWindow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeWindow(defaultWindow, tt.cacheControl); got != tt.want {
				t.Errorf("ComputeWindow(%v, %q) = %v, want %v",
					defaultWindow, tt.cacheControl, got, tt.want)
			}
		})
	}
}

func TestComputeWindowZeroDefault(t *testing.T) {
	if got := ComputeWindow(0, ""); got != DefaultFreshnessWindow {
		t.Errorf("ComputeWindow(0, \"\") = %v, want %v", got, DefaultFreshnessWindow)
	}
}
