package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"edge-gatekeeper/middleware/envelope"
	"edge-gatekeeper/middleware/ratelimit"
	"edge-gatekeeper/middleware/ratelimit/domain"
	"edge-gatekeeper/middleware/ratelimit/infra"
	"edge-gatekeeper/middleware/requestid"
	"edge-gatekeeper/middleware/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	_ = godotenv.Load()

	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.production)

	target, err := url.Parse(cfg.upstreamURL)
	if err != nil {
		log.Fatalf("invalid UPSTREAM_URL: %v", err)
	}

	respond := &envelope.Writer{
		AllowedOrigins: cfg.allowedOrigins(),
		Disclosure:     cfg.disclosure(),
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Error("proxy error", "path", r.URL.Path, "error", err)
		respond.WriteError(w, r, "Upstream unavailable", http.StatusBadGateway, err.Error())
	}

	store, janitor := newStore(cfg)

	var statsStore domain.StatsStore
	if cfg.statsEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.statsRedisAddr,
			Password: cfg.statsRedisPassword,
			DB:       cfg.statsRedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			log.Fatalf("redis stats ping error: %v", err)
		}

		statsStore = infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.statsPrefix),
			infra.WithStatsTTL(cfg.statsTTL),
			infra.WithStatsBucket(cfg.statsBucket),
			infra.WithStatsTrackKeys(cfg.statsTrackKeys),
		)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	janitor(ctx)

	var refresher session.Refresher
	if cfg.sessionRefreshURL != "" {
		refresher = &session.HTTPRefresher{URL: cfg.sessionRefreshURL}
	}
	provider := &session.CookieProvider{
		Secret:        []byte(cfg.sessionSecret),
		AccessCookie:  cfg.accessCookie,
		RefreshCookie: cfg.refreshCookie,
		Refresher:     refresher,
		CookieSecure:  cfg.production,
		Logger:        logger,
	}

	limit := func(p domain.Policy) func(http.Handler) http.Handler {
		return ratelimit.Middleware(ratelimit.Options{
			Store:           store,
			Policy:          p,
			Stats:           statsStore,
			TrustedIPHeader: cfg.trustedIPHeader,
			Respond:         respond,
			Logger:          logger,
		})
	}

	validate := envelope.NewValidator()
	proxyHandler := http.HandlerFunc(proxy.ServeHTTP)

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(envelope.Recover(respond, logger))
	r.Use(envelope.Preflight(respond))
	r.Use(session.Guard(session.GuardOptions{
		Provider: provider,
		Policy:   session.DefaultPolicy(),
		Logger:   logger,
	}))
	r.Use(ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{
		Max:            cfg.concurrencyMax,
		AcquireTimeout: cfg.concurrencyTimeout,
		Respond:        respond,
	}))

	r.Route("/api", func(api chi.Router) {
		api.With(limit(cfg.contactPolicy)).Post("/contact", proxyHandler)
		api.With(limit(cfg.profilePolicy), session.RequireSession(respond)).Put("/profile", proxyHandler)
		api.With(limit(cfg.generalPolicy)).HandleFunc("/*", proxyHandler)
	})

	r.Route("/gatekeeper/ratelimit", func(g chi.Router) {
		g.Use(session.RequireSession(respond))
		g.Post("/reset", resetHandler(store, respond, validate))
		g.Post("/clear", clearHandler(store, respond))
	})

	r.NotFound(proxyHandler)

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("gatekeeper listening",
		"addr", cfg.listenAddr,
		"upstream", target.String(),
		"algorithm", cfg.rateAlgorithm,
		"trustedIPHeader", cfg.trustedIPHeader,
		"statsEnabled", cfg.statsEnabled,
		"concurrencyMax", cfg.concurrencyMax)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}

func newLogger(production bool) *slog.Logger {
	if production {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// newStore escolhe o algoritmo de admissão e devolve o hook do janitor.
func newStore(cfg config) (domain.Checker, func(infra.DoneContext)) {
	if cfg.rateAlgorithm == "smooth" {
		s := infra.NewSmoothStore()
		return s, s.StartJanitor
	}
	s := infra.NewWindowStore(infra.WithSweepEvery(cfg.sweepEvery))
	return s, s.StartJanitor
}

type resetRequest struct {
	Identifier string `json:"identifier" validate:"required,min=1"`
}

func resetHandler(store domain.Checker, respond *envelope.Writer, validate *validator.Validate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.WriteError(w, r, "Invalid JSON in request body", http.StatusBadRequest, err.Error())
			return
		}
		if err := validate.Struct(req); err != nil {
			respond.WriteValidationError(w, r, err)
			return
		}

		store.Reset(domain.Key(req.Identifier))
		respond.WriteSuccess(w, r, nil, "Rate limit reset", http.StatusOK)
	}
}

func clearHandler(store domain.Checker, respond *envelope.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store.Clear()
		respond.WriteSuccess(w, r, nil, "Rate limits cleared", http.StatusOK)
	}
}

type config struct {
	listenAddr  string
	upstreamURL string
	production  bool

	siteURL    string
	devOrigins []string

	trustedIPHeader string
	rateAlgorithm   string
	sweepEvery      time.Duration

	contactPolicy domain.Policy
	profilePolicy domain.Policy
	generalPolicy domain.Policy

	concurrencyMax     int
	concurrencyTimeout time.Duration

	sessionSecret     string
	accessCookie      string
	refreshCookie     string
	sessionRefreshURL string

	statsEnabled       bool
	statsRedisAddr     string
	statsRedisPassword string
	statsRedisDB       int
	statsPrefix        string
	statsTTL           time.Duration
	statsBucket        string
	statsTrackKeys     bool
}

func (c config) disclosure() envelope.Disclosure {
	if c.production {
		return envelope.DiscloseSanitized
	}
	return envelope.DiscloseAll
}

// allowedOrigins monta a allow-list de CORS: a URL canônica do site primeiro
// (ela é o fallback), depois as origens de desenvolvimento.
func (c config) allowedOrigins() []string {
	return append([]string{c.siteURL}, c.devOrigins...)
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", ":8080")
	cfg.upstreamURL = os.Getenv("UPSTREAM_URL")
	cfg.production = strings.EqualFold(getenvDefault("APP_ENV", "development"), "production")

	cfg.siteURL = getenvDefault("SITE_URL", "http://localhost:3000")
	cfg.devOrigins = splitCSV(getenvDefault("DEV_ORIGINS", "http://localhost:3000,http://localhost:3001"))

	cfg.trustedIPHeader = getenvDefault("RATE_TRUSTED_IP_HEADER", ratelimit.DefaultTrustedIPHeader)
	cfg.rateAlgorithm = strings.ToLower(getenvDefault("RATE_ALGORITHM", "window"))
	cfg.sweepEvery = getenvDurationDefault("RATE_SWEEP_EVERY", 5*time.Minute)

	var err error
	if cfg.contactPolicy, err = parsePolicy("contact", getenvDefault("RATE_POLICY_CONTACT", "5:1h")); err != nil {
		return config{}, err
	}
	if cfg.profilePolicy, err = parsePolicy("profile", getenvDefault("RATE_POLICY_PROFILE", "20:1h")); err != nil {
		return config{}, err
	}
	if cfg.generalPolicy, err = parsePolicy("general", getenvDefault("RATE_POLICY_GENERAL", "100:15m")); err != nil {
		return config{}, err
	}

	cfg.concurrencyMax = getenvIntDefault("CONCURRENCY_MAX", 100)
	cfg.concurrencyTimeout = getenvDurationDefault("CONCURRENCY_TIMEOUT", 0)

	cfg.sessionSecret = os.Getenv("SESSION_SECRET")
	cfg.accessCookie = getenvDefault("SESSION_ACCESS_COOKIE", session.DefaultAccessCookie)
	cfg.refreshCookie = getenvDefault("SESSION_REFRESH_COOKIE", session.DefaultRefreshCookie)
	cfg.sessionRefreshURL = os.Getenv("SESSION_REFRESH_URL")

	cfg.statsEnabled = getenvBoolDefault("RATE_STATS_ENABLED", false)
	cfg.statsRedisAddr = getenvDefault("RATE_STATS_REDIS_ADDR", "")
	cfg.statsRedisPassword = os.Getenv("RATE_STATS_REDIS_PASSWORD")
	cfg.statsRedisDB = getenvIntDefault("RATE_STATS_REDIS_DB", 0)
	cfg.statsPrefix = getenvDefault("RATE_STATS_PREFIX", "gatekeeper:stats")
	cfg.statsTTL = getenvDurationDefault("RATE_STATS_TTL", 24*time.Hour)
	cfg.statsBucket = getenvDefault("RATE_STATS_BUCKET", "minute")
	cfg.statsTrackKeys = getenvBoolDefault("RATE_STATS_TRACK_KEYS", false)

	if cfg.upstreamURL == "" {
		return config{}, errors.New("UPSTREAM_URL is required")
	}
	if cfg.sessionSecret == "" {
		return config{}, errors.New("SESSION_SECRET is required")
	}
	if cfg.rateAlgorithm != "window" && cfg.rateAlgorithm != "smooth" {
		return config{}, fmt.Errorf("RATE_ALGORITHM must be window or smooth, got %q", cfg.rateAlgorithm)
	}
	if cfg.statsEnabled && strings.TrimSpace(cfg.statsRedisAddr) == "" {
		return config{}, errors.New("RATE_STATS_REDIS_ADDR is required when RATE_STATS_ENABLED=true")
	}
	if cfg.concurrencyMax < 0 {
		return config{}, errors.New("CONCURRENCY_MAX must be >= 0")
	}
	return cfg, nil
}

// parsePolicy interpreta "LIMIT:WINDOW" (ex: "5:1h", "100:15m").
func parsePolicy(name, raw string) (domain.Policy, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) != 2 {
		return domain.Policy{}, fmt.Errorf("policy %s must follow LIMIT:WINDOW, got %q", name, raw)
	}
	limit, err := strconv.Atoi(parts[0])
	if err != nil || limit <= 0 {
		return domain.Policy{}, fmt.Errorf("policy %s has invalid limit %q", name, parts[0])
	}
	window, err := time.ParseDuration(parts[1])
	if err != nil || window <= 0 {
		return domain.Policy{}, fmt.Errorf("policy %s has invalid window %q", name, parts[1])
	}
	return domain.Policy{Name: name, Limit: limit, Window: window}, nil
}

func splitCSV(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(item); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
