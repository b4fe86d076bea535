package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/finadmin/content-client/internal/testutil"
	"github.com/finadmin/content-client/pkg/cache"
)

func newTestExecutor() (*Executor, *cache.MemoryStore) {
	store := cache.NewMemoryStore()
	return NewExecutor(store, &http.Client{Timeout: 5 * time.Second}), store
}

func seedEntry(t *testing.T, store cache.Store, fingerprint string, entry *cache.Entry) {
	t.Helper()
	store.Put(context.Background(), fingerprint, entry)
}

// fingerprintFor exposes the executor's fingerprint for a GET target so
// tests can seed the store under the right key.
func fingerprintFor(t *testing.T, target string) string {
	t.Helper()
	u, err := url.Parse(target)
	if err != nil {
		t.Fatalf("parse target: %v", err)
	}
	return (&Executor{}).fingerprint(u, Options{})
}

func TestExecuteCachesValidatedResponse(t *testing.T) {
	backend := testutil.NewMockBackend()
	defer backend.Close()

	backend.SetResponse("/api/content/home", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"portal.home.1.text.title":"Welcome"}`,
		Headers: map[string]string{
			"ETag":          `"v1"`,
			"Cache-Control": "max-age=60",
		},
	})

	exec, store := newTestExecutor()
	target := backend.URL() + "/api/content/home"

	exchange, err := exec.Execute(context.Background(), target, Options{}, time.Second)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if exchange.Revalidated || exchange.ServedStale {
		t.Error("first fetch should be neither revalidated nor stale")
	}

	entry, ok := store.Get(context.Background(), fingerprintFor(t, target))
	if !ok {
		t.Fatal("response with ETag was not cached")
	}
	if entry.Validator != `"v1"` {
		t.Errorf("Validator = %q, want %q", entry.Validator, `"v1"`)
	}
	if entry.FreshnessWindow != 60*time.Second {
		t.Errorf("FreshnessWindow = %v, want 60s from max-age", entry.FreshnessWindow)
	}
}

func TestExecuteContentVersionFallbackValidator(t *testing.T) {
	backend := testutil.NewMockBackend()
	defer backend.Close()

	backend.SetResponse("/api/content/home", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"k":"v"}`,
		Headers:    map[string]string{"X-Content-Version": "rev-42"},
	})

	exec, store := newTestExecutor()
	target := backend.URL() + "/api/content/home"

	if _, err := exec.Execute(context.Background(), target, Options{}, time.Minute); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	entry, ok := store.Get(context.Background(), fingerprintFor(t, target))
	if !ok {
		t.Fatal("response with content-version marker was not cached")
	}
	if entry.Validator != "rev-42" {
		t.Errorf("Validator = %q, want rev-42", entry.Validator)
	}
}

func TestExecuteSkipsCacheWithoutValidator(t *testing.T) {
	backend := testutil.NewMockBackend()
	defer backend.Close()

	backend.SetResponse("/api/content/home", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"k":"v"}`,
	})

	exec, store := newTestExecutor()
	target := backend.URL() + "/api/content/home"

	if _, err := exec.Execute(context.Background(), target, Options{}, time.Minute); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if _, ok := store.Get(context.Background(), fingerprintFor(t, target)); ok {
		t.Error("response without validator or version marker must not be cached")
	}
}

func TestExecuteRevalidationShortCircuit(t *testing.T) {
	backend := testutil.NewMockBackend()
	defer backend.Close()

	backend.SetHandler("/api/content/home",
		testutil.NewConditionalHandler(`"v1"`, `{"k":"new"}`))

	exec, store := newTestExecutor()
	target := backend.URL() + "/api/content/home"
	fingerprint := fingerprintFor(t, target)

	cachedPayload := `{"k":"cached"}`
	storedAt := time.Now().Add(-500 * time.Millisecond)
	seedEntry(t, store, fingerprint, &cache.Entry{
		Payload:         []byte(cachedPayload),
		Validator:       `"v1"`,
		StoredAt:        storedAt,
		FreshnessWindow: time.Second,
	})

	exchange, err := exec.Execute(context.Background(), target, Options{}, time.Second)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !exchange.Revalidated {
		t.Error("Revalidated = false, want true")
	}
	if string(exchange.Payload) != cachedPayload {
		t.Errorf("Payload = %s, want cached payload", exchange.Payload)
	}
	if backend.ConditionalCount() != 1 {
		t.Errorf("ConditionalCount = %d, want 1", backend.ConditionalCount())
	}

	// No new entry may be written on a 304
	entry, _ := store.Get(context.Background(), fingerprint)
	if !entry.StoredAt.Equal(storedAt) {
		t.Error("304 must not rewrite the cache entry")
	}
}

func TestExecuteStaleEntrySkipsConditionalHeader(t *testing.T) {
	backend := testutil.NewMockBackend()
	defer backend.Close()

	backend.SetResponse("/api/content/home", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"k":"new"}`,
		Headers:    map[string]string{"ETag": `"v2"`},
	})

	exec, store := newTestExecutor()
	target := backend.URL() + "/api/content/home"
	fingerprint := fingerprintFor(t, target)

	// Entry well past its freshness window
	seedEntry(t, store, fingerprint, &cache.Entry{
		Payload:         []byte(`{"k":"old"}`),
		Validator:       `"v1"`,
		StoredAt:        time.Now().Add(-2 * time.Second),
		FreshnessWindow: time.Second,
	})

	exchange, err := exec.Execute(context.Background(), target, Options{}, time.Second)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if backend.ConditionalCount() != 0 {
		t.Errorf("ConditionalCount = %d, want 0 for stale entry", backend.ConditionalCount())
	}
	if string(exchange.Payload) != `{"k":"new"}` {
		t.Errorf("Payload = %s, want new body", exchange.Payload)
	}

	// New entry overwrites the old one
	entry, _ := store.Get(context.Background(), fingerprint)
	if entry.Validator != `"v2"` {
		t.Errorf("Validator = %q, want replacement validator", entry.Validator)
	}
}

func TestExecuteNoValidatorNeverConditional(t *testing.T) {
	backend := testutil.NewMockBackend()
	defer backend.Close()

	backend.SetResponse("/api/content/home", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"k":"v"}`,
	})

	exec, store := newTestExecutor()
	target := backend.URL() + "/api/content/home"

	// Fresh entry, but no validator: must not short-circuit
	seedEntry(t, store, fingerprintFor(t, target), &cache.Entry{
		Payload:         []byte(`{"k":"cached"}`),
		StoredAt:        time.Now(),
		FreshnessWindow: time.Minute,
	})

	if _, err := exec.Execute(context.Background(), target, Options{}, time.Minute); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if backend.ConditionalCount() != 0 {
		t.Errorf("ConditionalCount = %d, want 0 for entry without validator",
			backend.ConditionalCount())
	}
}

func TestExecuteInconsistentNotModified(t *testing.T) {
	backend := testutil.NewMockBackend()
	defer backend.Close()

	backend.SetResponse("/api/content/home", testutil.MockResponse{
		StatusCode: http.StatusNotModified,
	})

	exec, _ := newTestExecutor()
	target := backend.URL() + "/api/content/home"

	_, err := exec.Execute(context.Background(), target, Options{}, time.Minute)
	if err == nil {
		t.Fatal("Execute() succeeded on 304 with empty cache")
	}
	if !errors.Is(err, ErrInconsistentRevalidation) {
		t.Errorf("error = %v, want ErrInconsistentRevalidation", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Class != ErrorClassRevalidation {
		t.Errorf("error class = %v, want revalidation", err)
	}
}

func TestExecuteStaleFallback(t *testing.T) {
	// A backend that is already closed produces a transport failure.
	backend := testutil.NewMockBackend()
	target := backend.URL() + "/api/content/home"
	backend.Close()

	tests := []struct {
		name      string
		age       time.Duration
		window    time.Duration
		wantStale bool
	}{
		{
			name:      "within double window",
			age:       1500 * time.Millisecond,
			window:    time.Second,
			wantStale: true,
		},
		{
			name:      "fresh entry also eligible",
			age:       100 * time.Millisecond,
			window:    time.Second,
			wantStale: true,
		},
		{
			name:      "beyond double window",
			age:       2500 * time.Millisecond,
			window:    time.Second,
			wantStale: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec, store := newTestExecutor()
			seedEntry(t, store, fingerprintFor(t, target), &cache.Entry{
				Payload:         []byte(`{"k":"stale"}`),
				Validator:       `"v1"`,
				StoredAt:        time.Now().Add(-tt.age),
				FreshnessWindow: tt.window,
			})

			exchange, err := exec.Execute(context.Background(), target, Options{}, tt.window)
			if tt.wantStale {
				if err != nil {
					t.Fatalf("Execute() error = %v, want stale fallback", err)
				}
				if !exchange.ServedStale {
					t.Error("ServedStale = false, want true")
				}
				if string(exchange.Payload) != `{"k":"stale"}` {
					t.Errorf("Payload = %s, want cached payload", exchange.Payload)
				}
			} else {
				if err == nil {
					t.Fatal("Execute() succeeded beyond the stale bound")
				}
				var apiErr *APIError
				if !errors.As(err, &apiErr) || apiErr.Class != ErrorClassNetwork {
					t.Errorf("error = %v, want network class", err)
				}
			}
		})
	}
}

func TestExecuteTransportFailureEmptyCache(t *testing.T) {
	backend := testutil.NewMockBackend()
	target := backend.URL() + "/api/content/home"
	backend.Close()

	exec, _ := newTestExecutor()
	_, err := exec.Execute(context.Background(), target, Options{}, time.Second)
	if err == nil {
		t.Fatal("Execute() succeeded with no backend and no cache")
	}
}

func TestExecuteServerErrorMessage(t *testing.T) {
	backend := testutil.NewMockBackend()
	defer backend.Close()

	tests := []struct {
		name        string
		resp        testutil.MockResponse
		wantClass   ErrorClass
		wantMessage string
	}{
		{
			name: "error field",
			resp: testutil.MockResponse{
				StatusCode: http.StatusBadRequest,
				Body:       `{"error":"unknown screen"}`,
			},
			wantClass:   ErrorClassClient,
			wantMessage: "unknown screen",
		},
		{
			name: "message field",
			resp: testutil.MockResponse{
				StatusCode: http.StatusInternalServerError,
				Body:       `{"message":"translation store offline"}`,
			},
			wantClass:   ErrorClassServer,
			wantMessage: "translation store offline",
		},
		{
			name: "undecodable body falls back to status",
			resp: testutil.MockResponse{
				StatusCode: http.StatusBadGateway,
				Body:       "upstream exploded",
			},
			wantClass:   ErrorClassServer,
			wantMessage: "502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend.SetResponse("/api/content/home", tt.resp)

			exec, _ := newTestExecutor()
			_, err := exec.Execute(context.Background(),
				backend.URL()+"/api/content/home", Options{}, time.Second)
			if err == nil {
				t.Fatal("Execute() succeeded on error status")
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %T, want *APIError", err)
			}
			if apiErr.Class != tt.wantClass {
				t.Errorf("Class = %v, want %v", apiErr.Class, tt.wantClass)
			}
			if !strings.Contains(apiErr.Message, tt.wantMessage) {
				t.Errorf("Message = %q, want containing %q", apiErr.Message, tt.wantMessage)
			}
		})
	}
}

func TestExecuteDecodeFailure(t *testing.T) {
	backend := testutil.NewMockBackend()
	defer backend.Close()

	backend.SetResponse("/api/content/home", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"k":`,
	})

	exec, _ := newTestExecutor()
	_, err := exec.Execute(context.Background(),
		backend.URL()+"/api/content/home", Options{}, time.Second)
	if !errors.Is(err, ErrDecode) {
		t.Errorf("error = %v, want ErrDecode", err)
	}
}

func TestSend(t *testing.T) {
	backend := testutil.NewMockBackend()
	defer backend.Close()

	var gotMethod, gotBody string
	backend.SetHandler("/api/banks", func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		body := make([]byte, r.ContentLength)
		r.Body.Read(body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":7,"name":"First Federal"}`))
	})

	exec, store := newTestExecutor()
	body, err := exec.Send(context.Background(), backend.URL()+"/api/banks", Options{
		Method: http.MethodPost,
		Body:   []byte(`{"name":"First Federal"}`),
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if gotMethod != http.MethodPost {
		t.Errorf("method = %s, want POST", gotMethod)
	}
	if gotBody != `{"name":"First Federal"}` {
		t.Errorf("body = %s, want request body forwarded", gotBody)
	}
	if string(body) != `{"id":7,"name":"First Federal"}` {
		t.Errorf("response = %s", body)
	}
	if store.Stats(context.Background()).Count != 0 {
		t.Error("Send() must not populate the cache")
	}
}

func TestFreshnessScenario(t *testing.T) {
	// Entry stored with validator v1 and a 1s window. While fresh, a 304
	// serves the cached payload. Once past the window, the call skips the
	// conditional header, fetches a new payload with validator v2, and
	// overwrites the entry.
	var serveNew bool
	backend := testutil.NewMockBackend()
	defer backend.Close()
	backend.SetHandler("/api/content/home", func(w http.ResponseWriter, r *http.Request) {
		if !serveNew && r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v2"`)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"k":"second"}`))
	})

	exec, store := newTestExecutor()
	target := backend.URL() + "/api/content/home"
	fingerprint := fingerprintFor(t, target)

	origStoredAt := time.Now().Add(-500 * time.Millisecond)
	seedEntry(t, store, fingerprint, &cache.Entry{
		Payload:         []byte(`{"k":"first"}`),
		Validator:       `"v1"`,
		StoredAt:        origStoredAt,
		FreshnessWindow: time.Second,
	})

	// t=500ms: fresh, revalidated via 304
	exchange, err := exec.Execute(context.Background(), target, Options{}, time.Second)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !exchange.Revalidated || string(exchange.Payload) != `{"k":"first"}` {
		t.Fatalf("fresh revalidation: got %+v", exchange)
	}

	// t=1500ms: stale, full fetch replaces the entry
	serveNew = true
	entry, _ := store.Get(context.Background(), fingerprint)
	entry.StoredAt = time.Now().Add(-1500 * time.Millisecond)
	seedEntry(t, store, fingerprint, entry)

	exchange, err = exec.Execute(context.Background(), target, Options{}, time.Second)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if string(exchange.Payload) != `{"k":"second"}` {
		t.Errorf("Payload = %s, want new body", exchange.Payload)
	}

	replaced, _ := store.Get(context.Background(), fingerprint)
	if replaced.Validator != `"v2"` {
		t.Errorf("Validator = %q, want v2 after overwrite", replaced.Validator)
	}
	if !replaced.StoredAt.After(origStoredAt) {
		t.Error("StoredAt did not advance on overwrite")
	}
}

func TestExecuteAttachesContentTypeHeader(t *testing.T) {
	var gotContentType string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{}`))
	}))
	defer backend.Close()

	exec, _ := newTestExecutor()
	if _, err := exec.Execute(context.Background(), backend.URL, Options{}, time.Second); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}
}
