// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carta-do-futuro/internal/config"
	"carta-do-futuro/internal/domain/ports/adapter"
	authAdapters "carta-do-futuro/internal/infra/adapters/auth"
	payAdapters "carta-do-futuro/internal/infra/adapters/payment"
	storAdapters "carta-do-futuro/internal/infra/adapters/storage"
	pg "carta-do-futuro/internal/infra/db/postgres"
	"carta-do-futuro/internal/infra/logging"
	"carta-do-futuro/internal/infra/metrics"
	red "carta-do-futuro/internal/infra/redis"
	"carta-do-futuro/internal/infra/web"
	"carta-do-futuro/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	logger.Info().
		Str("base_url", cfg.App.BaseURL).
		Str("mp_token", logging.Redact(cfg.Payment.MercadoPago.AccessToken, cfg.Runtime.Dev)).
		Msg("configuration loaded")
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	// ---- Redis ----
	if cfg.Redis.URL == "" {
		log.Fatalf("redis.url is required (notification dedup and resume tokens)")
	}
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()
	dedup := red.NewNotificationDedup(redisClient, cfg.Redis.TTL)
	resumeStore := red.NewResumeStore(redisClient)
	limiter := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	profileRepo := pg.NewProfileRepo(pool)
	letterRepo := pg.NewLetterRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Adapters ----
	gateway, err := payAdapters.NewMercadoPagoGateway(cfg.Payment.MercadoPago.AccessToken, cfg.Payment.MercadoPago.Timeout)
	if err != nil {
		log.Fatalf("mercadopago gateway: %v", err)
	}
	verifier, err := authAdapters.NewSupabaseVerifier(cfg.Auth)
	if err != nil {
		log.Fatalf("auth verifier: %v", err)
	}
	var media adapter.MediaStore
	if cfg.Storage.Bucket != "" {
		media, err = storAdapters.NewS3MediaStore(ctx, cfg.Storage)
		if err != nil {
			log.Fatalf("media store: %v", err)
		}
		logger.Info().Str("bucket", cfg.Storage.Bucket).Msg("media storage enabled")
	} else {
		logger.Warn().Msg("storage.bucket not set; letter media disabled")
	}

	// ---- Use cases ----
	checkoutUC := usecase.NewCheckoutUseCase(gateway, cfg.App.BaseURL, cfg.WebhookURL(), logger)
	entitlementUC := usecase.NewEntitlementUseCase(profileRepo, dedup, logger)
	profileUC := usecase.NewProfileUseCase(profileRepo, txManager, logger)
	letterUC := usecase.NewLetterUseCase(letterRepo, profileRepo, media, logger)
	resumeSecret := cfg.App.ResumeSecret
	if resumeSecret == "" {
		resumeSecret = cfg.Auth.JWTSecret
	}
	resumeUC := usecase.NewResumeUseCase(resumeSecret, cfg.App.ResumeTTL, resumeStore, profileRepo, checkoutUC, logger)

	// ---- HTTP server ----
	signature := web.NewSignatureVerifier(cfg.Payment.MercadoPago.WebhookSecret)
	srv := web.NewServer(checkoutUC, entitlementUC, resumeUC, letterUC, profileUC, gateway, verifier, signature, limiter, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Str("webhook", cfg.WebhookURL()).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}
