// Package portal is the public surface of the content API client. It
// routes content operations through the caching executor and the
// multilingual aggregator, banking-entity CRUD through plain request
// execution, and substitutes deterministic mock payloads when the
// configured backend is a placeholder.
package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/finadmin/content-client/pkg/cache"
	"github.com/finadmin/content-client/pkg/client"
	"github.com/finadmin/content-client/pkg/content"
	"github.com/finadmin/content-client/pkg/fallback"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds the facade configuration.
type Config struct {
	// BaseURL is the primary backend address
	BaseURL string

	// ContentBaseURL is the content-specific backend address
	// (defaults to BaseURL)
	ContentBaseURL string

	// UseRealContent disables placeholder detection: every address is
	// treated as a real backend. Defaults to false.
	UseRealContent bool

	// DefaultFreshness is the freshness window used when the server
	// sends no cache directive
	DefaultFreshness time.Duration

	// Languages are the content locales, first one primary
	Languages []string

	// Actor is recorded in aggregated entry metadata
	Actor string

	// Store is the cache backend (defaults to a new in-memory store)
	Store cache.Store

	// HTTPClient overrides the transport (mainly for tests)
	HTTPClient *http.Client
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:          baseURL,
		DefaultFreshness: 5 * time.Minute,
		Languages:        []string{"ru", "he", "en"},
		Actor:            "portal-admin",
	}
}

// Portal is the API facade.
type Portal struct {
	cfg      Config
	executor *client.Executor
	store    cache.Store
	policy   fallback.TargetPolicy
	logger   zerolog.Logger
}

// New creates a facade from the configuration. The cache store lives for
// the lifetime of the returned instance.
func New(cfg Config) (*Portal, error) {
	if cfg.ContentBaseURL == "" {
		cfg.ContentBaseURL = cfg.BaseURL
	}
	if cfg.DefaultFreshness <= 0 {
		cfg.DefaultFreshness = 5 * time.Minute
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = []string{"ru", "he", "en"}
	}
	if cfg.Actor == "" {
		cfg.Actor = "portal-admin"
	}
	if cfg.Store == nil {
		cfg.Store = cache.NewMemoryStore()
	}

	policy := fallback.PolicyFor(cfg.UseRealContent)
	if cfg.UseRealContent && cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required when real content mode is enabled")
	}

	return &Portal{
		cfg:      cfg,
		executor: client.NewExecutor(cfg.Store, cfg.HTTPClient),
		store:    cfg.Store,
		policy:   policy,
		logger:   log.With().Str("component", "portal").Logger(),
	}, nil
}

// GetScreenContent returns the raw content document for one screen and
// language.
func (p *Portal) GetScreenContent(ctx context.Context, screen, lang string) client.Result[map[string]string] {
	values, stale, err := p.fetchScreen(ctx, screen, lang)
	if err != nil {
		return client.Fail[map[string]string](err)
	}
	if stale {
		return client.OKStale(values)
	}
	return client.OK(values)
}

// GetAggregatedContent fetches every configured language for a screen and
// merges the responses into one ordered collection. Languages that fail
// are skipped with a warning; the call fails only when no language could
// be fetched.
func (p *Portal) GetAggregatedContent(ctx context.Context, screen string) client.Result[[]content.Entry] {
	responses := make([]content.LanguageResponse, 0, len(p.cfg.Languages))
	var anyStale bool
	var firstErr error

	for i, lang := range p.cfg.Languages {
		values, stale, err := p.fetchScreen(ctx, screen, lang)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			p.logger.Warn().
				Err(err).
				Str("screen", screen).
				Str("lang", lang).
				Msg("Skipping language in aggregation")
			continue
		}
		anyStale = anyStale || stale
		responses = append(responses, content.LanguageResponse{
			Language: lang,
			Primary:  i == 0,
			Values:   values,
		})
	}

	if len(responses) == 0 {
		if firstErr == nil {
			firstErr = fmt.Errorf("no languages configured")
		}
		return client.Fail[[]content.Entry](firstErr)
	}

	entries := content.AggregateWith(responses, content.Metadata{
		CreatedBy: p.cfg.Actor,
		UpdatedBy: p.cfg.Actor,
	})

	p.logger.Debug().
		Str("screen", screen).
		Int("languages", len(responses)).
		Int("entries", len(entries)).
		Msg("Aggregated content")

	if anyStale {
		return client.OKStale(entries)
	}
	return client.OK(entries)
}

// GetDropdownOptions returns the option list behind a dropdown content key.
func (p *Portal) GetDropdownOptions(ctx context.Context, screen, lang, key string) client.Result[[]string] {
	values, stale, err := p.fetchScreen(ctx, screen, lang)
	if err != nil {
		return client.Fail[[]string](err)
	}

	value, ok := values[key]
	if !ok {
		return client.Fail[[]string](fmt.Errorf("content key %q not found on screen %q", key, screen))
	}

	options, err := content.ParseOptions(value)
	if err != nil {
		return client.Fail[[]string](err)
	}
	if stale {
		return client.OKStale(options)
	}
	return client.OK(options)
}

// UpdateTranslation writes one localized value. Never cached. In
// placeholder mode this is a deterministic no-op success.
func (p *Portal) UpdateTranslation(ctx context.Context, screen, lang, key, value string) client.Result[struct{}] {
	if p.policy.IsPlaceholder(p.cfg.ContentBaseURL) {
		p.logger.Debug().
			Str("screen", screen).
			Str("lang", lang).
			Str("key", key).
			Msg("Placeholder backend - translation update is a no-op")
		return client.OK(struct{}{})
	}

	body, err := json.Marshal(map[string]string{
		"screen":   screen,
		"language": lang,
		"key":      key,
		"value":    value,
	})
	if err != nil {
		return client.Fail[struct{}](err)
	}

	_, err = p.executor.Send(ctx, p.cfg.ContentBaseURL+"/api/translations", client.Options{
		Method: http.MethodPost,
		Body:   body,
	})
	if err != nil {
		return client.Fail[struct{}](err)
	}
	return client.OK(struct{}{})
}

// ClearCache removes every cached entry. Exposed to operators.
func (p *Portal) ClearCache(ctx context.Context) client.Result[struct{}] {
	p.store.Clear(ctx)
	p.logger.Info().Msg("Content cache cleared")
	return client.OK(struct{}{})
}

// CacheStats returns a diagnostic snapshot of the cache.
func (p *Portal) CacheStats(ctx context.Context) client.Result[cache.Stats] {
	return client.OK(p.store.Stats(ctx))
}

// fetchScreen resolves one screen+language document, through the mock
// payloads when the content backend is a placeholder, through the caching
// executor otherwise.
func (p *Portal) fetchScreen(ctx context.Context, screen, lang string) (map[string]string, bool, error) {
	if p.policy.IsPlaceholder(p.cfg.ContentBaseURL) {
		return fallback.ScreenContent(screen, lang), false, nil
	}

	target := fmt.Sprintf("%s/api/content/%s?lang=%s",
		p.cfg.ContentBaseURL, url.PathEscape(screen), url.QueryEscape(lang))

	exchange, err := p.executor.Execute(ctx, target, client.Options{
		Headers: map[string]string{"Accept-Language": lang},
	}, p.cfg.DefaultFreshness)
	if err != nil {
		return nil, false, err
	}

	var values map[string]string
	if err := json.Unmarshal(exchange.Payload, &values); err != nil {
		return nil, false, &client.APIError{
			Class:   client.ErrorClassDecode,
			Message: "content document is not a string map",
			Err:     client.ErrDecode,
		}
	}

	return values, exchange.ServedStale, nil
}
