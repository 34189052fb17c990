package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bakery-backend/internal/config"
	"bakery-backend/internal/database"
	"bakery-backend/internal/inventory"
	"bakery-backend/internal/logger"
	"bakery-backend/internal/metrics"
	"bakery-backend/internal/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config yüklenemedi:", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	if cfg.UsingDefaultDSN() {
		log.Warn().Msg("BAKERY_DB_DSN tanımlı değil, yerel varsayılan kullanılıyor")
	}

	db, err := database.Open(cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Veritabanı açılamadı")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	var cache inventory.ProductCache
	if cfg.Redis.Enabled() {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("BAKERY_REDIS_URL geçersiz")
		}
		client := redis.NewClient(opts)
		defer client.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			log.Warn().Err(err).Msg("Redis'e ulaşılamadı, ürün cache devre dışı")
		} else {
			cache = inventory.NewRedisProductCache(client, cfg.Redis.ProductCacheTTL, log)
			log.Info().Msg("Ürün cache Redis üzerinde")
		}
		cancel()
	}

	registry := inventory.NewRegistry(db, inventory.RegistryOptions{
		Cache:            cache,
		Logger:           log,
		Metrics:          m,
		ReorderChunkSize: cfg.Ledger.ReorderChunkSize,
	})
	ledger := inventory.NewLedger(db, inventory.LedgerOptions{
		Logger:    log,
		Metrics:   m,
		ChunkSize: cfg.Ledger.ChunkSize,
		TxTimeout: cfg.Ledger.TxTimeout,
		Location:  cfg.App.Location(),
	})

	app := server.New(server.Deps{
		Config:   cfg,
		DB:       db,
		Logger:   log,
		Registry: registry,
		Ledger:   ledger,
		Gatherer: reg,
	})

	go func() {
		log.Info().Str("port", cfg.App.HTTPPort).Msg("Server çalışıyor")
		if err := app.Listen(":" + cfg.App.HTTPPort); err != nil {
			log.Error().Err(err).Msg("HTTP sunucusu durdu")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Kapanış sinyali alındı")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Sunucu kapatılamadı")
	}
}
