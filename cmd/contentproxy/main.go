// Command contentproxy exposes the content API facade over HTTP: screen
// content, multilingual aggregation, banking-entity CRUD, and cache
// operator endpoints, plus health and Prometheus metrics.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/finadmin/content-client/pkg/cache"
	"github.com/finadmin/content-client/pkg/client"
	"github.com/finadmin/content-client/pkg/logging"
	"github.com/finadmin/content-client/pkg/portal"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	configPath := getEnv("CONFIG_PATH", "contentproxy.yaml")
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
		Output: os.Stderr,
	})

	portalCfg := portal.DefaultConfig(cfg.Backend.BaseURL)
	portalCfg.ContentBaseURL = cfg.Backend.ContentBaseURL
	portalCfg.UseRealContent = cfg.Backend.UseRealContent
	portalCfg.DefaultFreshness = cfg.freshness
	portalCfg.Languages = cfg.Languages

	if cfg.Cache.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.Cache.RedisAddr).Msg("Redis unreachable")
		}
		portalCfg.Store = cache.NewRedisStore(redisClient)
		logger.Info().Str("addr", cfg.Cache.RedisAddr).Msg("Using Redis cache store")
	}

	p, err := portal.New(portalCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create portal facade")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /content/{screen}", contentHandler(p, cfg.Languages[0]))
	mux.HandleFunc("GET /content/{screen}/aggregate", aggregateHandler(p))
	mux.HandleFunc("POST /translations", translationHandler(p))
	mux.HandleFunc("GET /banks", banksListHandler(p))
	mux.HandleFunc("POST /banks", bankCreateHandler(p))
	mux.HandleFunc("PUT /banks/{id}", bankUpdateHandler(p))
	mux.HandleFunc("DELETE /banks/{id}", bankDeleteHandler(p))
	mux.HandleFunc("POST /cache/clear", cacheClearHandler(p))
	mux.HandleFunc("GET /cache/stats", cacheStatsHandler(p))

	addr := ":" + strconv.Itoa(cfg.Server.Port)
	logger.Info().
		Str("addr", addr).
		Bool("real_content", cfg.Backend.UseRealContent).
		Msg("Starting content proxy")

	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

func contentHandler(p *portal.Portal, defaultLang string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang := r.URL.Query().Get("lang")
		if lang == "" {
			lang = defaultLang
		}
		writeResult(w, p.GetScreenContent(r.Context(), r.PathValue("screen"), lang))
	}
}

func aggregateHandler(p *portal.Portal) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, p.GetAggregatedContent(r.Context(), r.PathValue("screen")))
	}
}

func translationHandler(p *portal.Portal) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Screen   string `json:"screen"`
			Language string `json:"language"`
			Key      string `json:"key"`
			Value    string `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		writeResult(w, p.UpdateTranslation(r.Context(), body.Screen, body.Language, body.Key, body.Value))
	}
}

func banksListHandler(p *portal.Portal) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, p.ListBanks(r.Context()))
	}
}

func bankCreateHandler(p *portal.Portal) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var bank portal.Bank
		if err := json.NewDecoder(r.Body).Decode(&bank); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		writeResult(w, p.CreateBank(r.Context(), bank))
	}
}

func bankUpdateHandler(p *portal.Portal) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid bank id", http.StatusBadRequest)
			return
		}
		var bank portal.Bank
		if err := json.NewDecoder(r.Body).Decode(&bank); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		bank.ID = id
		writeResult(w, p.UpdateBank(r.Context(), bank))
	}
}

func bankDeleteHandler(p *portal.Portal) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid bank id", http.StatusBadRequest)
			return
		}
		writeResult(w, p.DeleteBank(r.Context(), id))
	}
}

func cacheClearHandler(p *portal.Portal) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, p.ClearCache(r.Context()))
	}
}

func cacheStatsHandler(p *portal.Portal) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, p.CacheStats(r.Context()))
	}
}

// writeResult renders the uniform result shape as JSON. Failures map to
// 502: the proxy itself worked, the upstream operation did not.
func writeResult[T any](w http.ResponseWriter, result client.Result[T]) {
	w.Header().Set("Content-Type", "application/json")
	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadGateway
	}
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger := logging.NewLogger("contentproxy")
		logger.Warn().Err(err).Msg("Failed to write response")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
