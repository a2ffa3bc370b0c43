package main

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cartify-platform/commerce-core/internal/config"
	"github.com/cartify-platform/commerce-core/internal/crypto"
	"github.com/cartify-platform/commerce-core/internal/monitoring"
	"github.com/cartify-platform/commerce-core/internal/service"
	"github.com/cartify-platform/commerce-core/internal/store"
	"github.com/cartify-platform/commerce-core/internal/tenancy"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	opts := []store.Option{}
	if cfg.RedisAddr != "" {
		opts = append(opts, store.WithCache(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})))
	}
	if cfg.EncryptionKey != "" {
		key, err := hex.DecodeString(cfg.EncryptionKey)
		if err != nil {
			log.Fatal().Err(err).Msg("ENCRYPTION_KEY is not valid hex")
		}
		cipher, err := crypto.New(key)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize cipher")
		}
		opts = append(opts, store.WithCipher(cipher))
	}

	st, err := store.NewPostgres(cfg.DatabaseURL, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer st.Close()

	onboarding := service.NewOnboarding(st)
	defer onboarding.Close()
	directory := service.NewDirectory(st, onboarding.Queue())

	monitoring.InitMetrics()

	// Metrics and health live on their own listener, away from tenant
	// traffic.
	go func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})
		mux.Handle("/metrics", promhttp.Handler())

		log.Info().Str("addr", cfg.MetricsAddr).Msg("Health and metrics server started")
		if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Metrics server error")
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		tenant, ok := tenancy.TenantFrom(r.Context())
		if !ok {
			http.Error(w, "no tenant in request", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(tenant)
	})
	handler := tenancy.Middleware(directory)(mux)

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: handler}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("Storefront server started")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	if err := server.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close HTTP server")
	}
	log.Info().Msg("Server exiting")
}
