package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/weiwei-tsao/gold-catalog/internal/business/catalog"
	"github.com/weiwei-tsao/gold-catalog/internal/business/quote"
	"github.com/weiwei-tsao/gold-catalog/internal/platform/cache"
	"github.com/weiwei-tsao/gold-catalog/internal/platform/config"
	firestoreclient "github.com/weiwei-tsao/gold-catalog/internal/platform/firestore"
	"github.com/weiwei-tsao/gold-catalog/internal/platform/goldapi"
	apirouter "github.com/weiwei-tsao/gold-catalog/internal/platform/http"
	"github.com/weiwei-tsao/gold-catalog/internal/platform/logging"
	"github.com/weiwei-tsao/gold-catalog/internal/repository"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load(".env.local", ".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load: %v", err)
	}
	if err := logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatalf("logging setup: %v", err)
	}

	gin.SetMode(cfg.GinMode)

	if cfg.GoldAPIKey == "" && !cfg.GoldAPIMock {
		slog.Warn("GOLD_API_KEY is not set; /api/getGold will answer 500")
	}
	goldClient := goldapi.New(nil, goldapi.Config{
		APIKey:  cfg.GoldAPIKey,
		BaseURL: cfg.GoldAPIURL,
		Mock:    cfg.GoldAPIMock,
		Timeout: cfg.HTTPTimeout,
	})

	var store cache.Store
	if cfg.QuoteCacheTTL > 0 {
		if cfg.RedisURL != "" {
			redisStore, err := cache.NewRedis(ctx, cfg.RedisURL, "gold-catalog:")
			if err != nil {
				log.Fatalf("redis init: %v", err)
			}
			defer redisStore.Close()
			store = redisStore
			slog.Info("quote cache enabled", "backend", "redis", "ttl", cfg.QuoteCacheTTL)
		} else {
			store = cache.NewMemory()
			slog.Info("quote cache enabled", "backend", "memory", "ttl", cfg.QuoteCacheTTL)
		}
	}
	quotes := quote.NewService(goldClient, store, cfg.QuoteCacheTTL)

	fetcher := catalog.NewHTTPFetcher(cfg.HTTPTimeout)
	prices := catalog.NewHTTPPriceSource(fetcher, cfg.SiteBaseURL)

	var products catalog.CatalogSource
	switch cfg.CatalogSource {
	case config.CatalogSourceFirestore:
		firestoreClient, credsSource, err := firestoreclient.New(ctx, cfg)
		if err != nil {
			log.Fatalf("firestore init: %v", err)
		}
		defer firestoreClient.Close()

		if err := firestoreclient.Ping(ctx, firestoreClient); err != nil {
			log.Fatalf("firestore ping: %v", err)
		}
		slog.Info("connected to Firestore", "project", cfg.FirebaseProjectID, "credentials", credsSource)
		products = catalog.NewRepositoryCatalogSource(repository.NewCatalogRepository(firestoreClient))
	default:
		products = catalog.NewHTTPCatalogSource(fetcher, cfg.SiteBaseURL)
	}

	views := catalog.NewManager(prices, products, catalog.ManagerConfig{
		TTL:         cfg.ViewTTL,
		LoadTimeout: cfg.ViewLoadTimeout,
	})
	go views.Run(ctx)

	router, err := apirouter.NewRouter(quotes, views, apirouter.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		CatalogFile:    cfg.CatalogFile,
	})
	if err != nil {
		log.Fatalf("router init: %v", err)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()
	slog.Info("server listening", "port", cfg.Port, "site", cfg.SiteBaseURL, "catalog", cfg.CatalogSource)

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	slog.Info("server exited")
}
