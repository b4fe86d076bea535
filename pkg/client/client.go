// Package client provides the conditional request executor for the content
// API: cache-aware request execution with validator-based revalidation and
// stale fallback on transport failure.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/finadmin/content-client/pkg/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for executor operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "content_requests_total",
		Help: "Total backend requests by target path and outcome",
	}, []string{"path", "outcome"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "content_request_duration_seconds",
		Help:    "Backend request duration in seconds by target path",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"path"})
)

// Options describes the variable parts of a request. The zero value is a
// GET with no body and no extra headers.
type Options struct {
	// Method is the HTTP method (defaults to GET)
	Method string

	// Body is the JSON request body, if any
	Body []byte

	// Headers are extra request headers. Accept-Language participates in
	// the cache fingerprint; everything else does not.
	Headers map[string]string
}

// Exchange is the outcome of a successful Execute call.
type Exchange struct {
	// Payload is the response body (or the cached body on revalidation
	// and stale fallback)
	Payload []byte

	// Revalidated is set when the server confirmed the cached body via
	// 304 Not Modified
	Revalidated bool

	// ServedStale is set when the payload came from stale cache after a
	// transport failure
	ServedStale bool
}

// Executor issues backend requests through the cache: it attaches the
// stored validator when revalidating, short-circuits on 304, stores fresh
// responses, and degrades to stale cache when the transport fails.
type Executor struct {
	httpClient *http.Client
	store      cache.Store
	logger     zerolog.Logger
}

// NewExecutor creates an executor over the given store.
func NewExecutor(store cache.Store, httpClient *http.Client) *Executor {
	if store == nil {
		panic("cache store cannot be nil")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Executor{
		httpClient: httpClient,
		store:      store,
		logger:     log.With().Str("component", "executor").Logger(),
	}
}

// Execute performs a cache-aware request against target.
//
// The flow: fingerprint the request, look up the cached entry, attach its
// validator as If-None-Match when the entry is still fresh, then issue the
// call. A 304 confirms the cached body without transferring a new one. Any
// other success stores a new entry when the response carries a validator
// (ETag, or X-Content-Version as fallback). A transport failure falls back
// to the cached body while the entry is within twice its freshness window.
func (e *Executor) Execute(ctx context.Context, target string, opts Options, defaultWindow time.Duration) (*Exchange, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("parse target: %w", err)
	}

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(u.Path).Observe(time.Since(startTime).Seconds())
	}()

	fingerprint := e.fingerprint(u, opts)
	entry, _ := e.store.Get(ctx, fingerprint)

	req, err := e.newRequest(ctx, target, opts)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if entry != nil && entry.IsFresh(now) && entry.HasValidator() {
		req.Header.Set("If-None-Match", entry.Validator)
		e.logger.Debug().
			Str("path", u.Path).
			Str("validator", entry.Validator).
			Msg("Making conditional request")
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return e.handleTransportFailure(u.Path, entry, now, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return e.handleNotModified(u.Path, entry)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return e.handleSuccess(ctx, u.Path, fingerprint, resp, defaultWindow)
	}

	return nil, e.serverError(u.Path, resp)
}

// Send performs a plain request with no cache involvement. Used for
// mutations and for operations whose responses must never be reused.
func (e *Executor) Send(ctx context.Context, target string, opts Options) ([]byte, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("parse target: %w", err)
	}

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(u.Path).Observe(time.Since(startTime).Seconds())
	}()

	req, err := e.newRequest(ctx, target, opts)
	if err != nil {
		return nil, err
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues(u.Path, "network_error").Inc()
		return nil, &APIError{Class: ErrorClassNetwork, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			requestsTotal.WithLabelValues(u.Path, "network_error").Inc()
			return nil, &APIError{Class: ErrorClassNetwork, Message: "read response body", Err: err}
		}
		if len(body) > 0 && !json.Valid(body) {
			requestsTotal.WithLabelValues(u.Path, "decode_error").Inc()
			return nil, &APIError{Class: ErrorClassDecode, Message: "response is not valid JSON", Err: ErrDecode}
		}
		requestsTotal.WithLabelValues(u.Path, fmt.Sprintf("%d", resp.StatusCode)).Inc()
		return body, nil
	}

	return nil, e.serverError(u.Path, resp)
}

// fingerprint builds the cache key for a parsed target and options.
func (e *Executor) fingerprint(u *url.URL, opts Options) string {
	key := cache.Key{
		Method:      opts.Method,
		Target:      u.Scheme + "://" + u.Host + u.Path,
		QueryParams: u.Query(),
		Body:        opts.Body,
	}
	if lang, ok := opts.Headers["Accept-Language"]; ok {
		key.Headers = map[string]string{"accept-language": lang}
	}
	return key.Fingerprint()
}

// newRequest builds the outbound HTTP request.
func (e *Executor) newRequest(ctx context.Context, target string, opts Options) (*http.Request, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if len(opts.Body) > 0 {
		body = bytes.NewReader(opts.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	return req, nil
}

// handleTransportFailure applies the stale-fallback policy: serve the
// cached body when the entry is younger than twice its freshness window,
// fail otherwise.
func (e *Executor) handleTransportFailure(path string, entry *cache.Entry, now time.Time, cause error) (*Exchange, error) {
	if entry != nil && entry.WithinStaleBound(now) {
		cache.StaleServed.Inc()
		requestsTotal.WithLabelValues(path, "stale_fallback").Inc()
		e.logger.Warn().
			Err(cause).
			Str("path", path).
			Dur("age", entry.Age(now)).
			Dur("window", entry.FreshnessWindow).
			Msg("Transport failure - serving stale cache")
		return &Exchange{Payload: entry.Payload, ServedStale: true}, nil
	}

	requestsTotal.WithLabelValues(path, "network_error").Inc()
	e.logger.Error().Err(cause).Str("path", path).Msg("Request failed with no usable cache")
	return nil, &APIError{Class: ErrorClassNetwork, Message: "request failed", Err: cause}
}

// handleNotModified serves the cached body confirmed by a 304. A 304 with
// no cached entry is an inconsistent-server condition: never guess at a
// body.
func (e *Executor) handleNotModified(path string, entry *cache.Entry) (*Exchange, error) {
	if entry == nil {
		requestsTotal.WithLabelValues(path, "inconsistent_304").Inc()
		e.logger.Error().Str("path", path).Msg("304 received with no cached entry")
		return nil, &APIError{
			StatusCode: http.StatusNotModified,
			Class:      ErrorClassRevalidation,
			Message:    "server reported not modified",
			Err:        ErrInconsistentRevalidation,
		}
	}

	cache.NotModifiedResponses.Inc()
	requestsTotal.WithLabelValues(path, "304").Inc()
	e.logger.Debug().Str("path", path).Msg("304 Not Modified - using cached body")
	return &Exchange{Payload: entry.Payload, Revalidated: true}, nil
}

// handleSuccess decodes the body and stores a new entry when the response
// carries a validator or content-version marker.
func (e *Executor) handleSuccess(ctx context.Context, path, fingerprint string, resp *http.Response, defaultWindow time.Duration) (*Exchange, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		requestsTotal.WithLabelValues(path, "network_error").Inc()
		return nil, &APIError{Class: ErrorClassNetwork, Message: "read response body", Err: err}
	}
	if len(body) > 0 && !json.Valid(body) {
		requestsTotal.WithLabelValues(path, "decode_error").Inc()
		return nil, &APIError{Class: ErrorClassDecode, Message: "response is not valid JSON", Err: ErrDecode}
	}

	validator := resp.Header.Get("ETag")
	if validator == "" {
		validator = resp.Header.Get("X-Content-Version")
	}

	if validator != "" {
		window := cache.ComputeWindow(defaultWindow, resp.Header.Get("Cache-Control"))
		e.store.Put(ctx, fingerprint, &cache.Entry{
			Payload:         body,
			Validator:       validator,
			StoredAt:        time.Now(),
			FreshnessWindow: window,
		})
		e.logger.Debug().
			Str("path", path).
			Str("validator", validator).
			Dur("window", window).
			Msg("Cached response")
	}

	requestsTotal.WithLabelValues(path, fmt.Sprintf("%d", resp.StatusCode)).Inc()
	return &Exchange{Payload: body}, nil
}

// serverError extracts the server-reported message from an error response.
func (e *Executor) serverError(path string, resp *http.Response) error {
	class := classifyStatus(resp.StatusCode)
	requestsTotal.WithLabelValues(path, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	message := resp.Status
	body, err := io.ReadAll(resp.Body)
	if err == nil && len(body) > 0 {
		var payload struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &payload) == nil {
			if payload.Error != "" {
				message = payload.Error
			} else if payload.Message != "" {
				message = payload.Message
			}
		}
	}

	e.logger.Warn().
		Str("path", path).
		Int("status", resp.StatusCode).
		Str("error_class", string(class)).
		Msg("Backend request error")

	return &APIError{
		StatusCode: resp.StatusCode,
		Class:      class,
		Message:    message,
	}
}
