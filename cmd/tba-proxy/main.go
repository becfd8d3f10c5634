package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/Sternrassler/tba-client/pkg/client"
	"github.com/Sternrassler/tba-client/pkg/fanout"
	"github.com/Sternrassler/tba-client/pkg/logging"
	"github.com/Sternrassler/tba-client/pkg/metrics"
	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const requestTimeout = 30 * time.Second

func main() {
	// .env is optional
	_ = godotenv.Load()

	logging.Setup(logging.FromEnv())
	logger := logging.NewLogger("tba-proxy")

	port := getEnv("PORT", "8080")
	redisURL := getEnv("REDIS_URL", "")

	cfg := client.DefaultConfig()
	cfg.PersistentSession = true

	if redisURL != "" {
		redisClient, err := newRedisClient(redisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("Invalid REDIS_URL")
		}
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Fatal().Err(err).Str("redis", redisURL).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()
		cfg.Redis = redisClient
		logger.Info().Str("redis", redisURL).Msg("Connected to Redis")
	}

	tbaClient, err := client.New(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create TBA client")
	}
	defer tbaClient.Close()

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           otelhttp.NewHandler(newRouter(tbaClient, logger), "tba-proxy"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("Starting TBA proxy server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

func newRedisClient(url string) (*redis.Client, error) {
	if !strings.Contains(url, "://") {
		return redis.NewClient(&redis.Options{Addr: url}), nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	return redis.NewClient(opts), nil
}

func newRouter(c *client.Client, logger zerolog.Logger) *mux.Router {
	h := &handler{client: c, logger: logger}

	router := mux.NewRouter()
	router.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	router.HandleFunc("/teams/{key}", h.team).Methods(http.MethodGet)
	router.HandleFunc("/events/{year:[0-9]{4}}", h.events).Methods(http.MethodGet)
	router.HandleFunc("/event/{key}/rankings", h.rankings).Methods(http.MethodGet)
	return router
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

type handler struct {
	client *client.Client
	logger zerolog.Logger
}

// team serves GET /teams/{key}[?simple=true].
func (h *handler) team(w http.ResponseWriter, r *http.Request) {
	mode, err := modeFromQuery(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	team, err := h.client.Team(ctx, mux.Vars(r)["key"], mode)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, team)
}

// events serves GET /events/{year}[?to=YYYY][&simple=true|&keys=true].
// "to" is exclusive.
func (h *handler) events(w http.ResponseWriter, r *http.Request) {
	mode, err := modeFromQuery(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	from, _ := strconv.Atoi(mux.Vars(r)["year"])
	years := fanout.Year(from)
	if to := r.URL.Query().Get("to"); to != "" {
		end, err := strconv.Atoi(to)
		if err != nil {
			h.respondError(w, r, errors.Mark(errors.Newf("to=%q is not a year", to), client.ErrInvalidArgument))
			return
		}
		years = fanout.YearRange(from, end)
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if mode == client.ModeKeys {
		keys, err := h.client.EventKeys(ctx, years)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, keys)
		return
	}

	events, err := h.client.Events(ctx, years, mode)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, events)
}

// rankings serves GET /event/{key}/rankings.
func (h *handler) rankings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	rankings, err := h.client.EventRankings(ctx, mux.Vars(r)["key"])
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if rankings == nil {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "no rankings"})
		return
	}
	respondJSON(w, http.StatusOK, rankings)
}

func modeFromQuery(r *http.Request) (client.Mode, error) {
	q := r.URL.Query()
	simple, _ := strconv.ParseBool(q.Get("simple"))
	keys, _ := strconv.ParseBool(q.Get("keys"))
	return client.ParseMode(simple, keys)
}

// statusFor maps a client error to the proxy's response status.
func statusFor(err error) int {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, client.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.As(err, &apiErr) && apiErr.Class == client.ErrorClassClient:
		return apiErr.StatusCode
	case errors.As(err, &apiErr) && apiErr.Class == client.ErrorClassRateLimit:
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (h *handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	h.logger.Warn().
		Err(err).
		Str(logging.FieldPath, r.URL.Path).
		Int(logging.FieldStatus, status).
		Msg("Proxy request failed")
	respondJSON(w, status, map[string]interface{}{
		"error":  err.Error(),
		"status": status,
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	body, err := sonic.Marshal(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
