// Command agentd is the HTTP decision service: one process fronting any
// number of per-agent Loop Coordinators over the route table in
// internal/httpapi, replacing the pack's REPL-driven controller entrypoint
// with a long-running server per the auth/gameplay services' own main.go
// shape (gin + go-gin-prometheus + graceful shutdown).
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/storage"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	ginprometheus "github.com/zsais/go-gin-prometheus"

	"github.com/ardenlabs/playrunner/internal/blob"
	"github.com/ardenlabs/playrunner/internal/config"
	"github.com/ardenlabs/playrunner/internal/httpapi"
	"github.com/ardenlabs/playrunner/internal/kv"
	"github.com/ardenlabs/playrunner/internal/logging"
	"github.com/ardenlabs/playrunner/internal/modelprovider"
	"github.com/ardenlabs/playrunner/internal/obslog"
	"github.com/ardenlabs/playrunner/internal/secure"
)

// #region main

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "agentd: config: %v\n", err)
		os.Exit(1)
	}
	obslog.Init(cfg.Env, cfg.LogLevel)

	kvStore, err := buildKVStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build kv store")
	}
	blobStore, err := buildBlobStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build blob store")
	}
	model := buildModelClient(cfg)

	handler := httpapi.New(kvStore, blobStore, model)

	auditDB, err := logging.OpenAuditDB(cfg.AuditDBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open audit db")
	}
	defer auditDB.Close()
	handler.SetAuditDB(auditDB)

	gin.SetMode(gin.ReleaseMode)
	if cfg.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(requestLogger(), gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	p := ginprometheus.NewPrometheus("agentd")
	handler.RegisterRoutes(router)
	p.Use(router)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 65 * time.Second, // above DecideTimeout so decide calls never get cut by the server
		IdleTimeout:  60 * time.Second,
	}

	log.Info().Str("port", cfg.ServerPort).Msg("starting agentd")
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server listen error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down agentd")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}

// #endregion main

// #region wiring

func buildKVStore(cfg config.Config) (kv.Store, error) {
	switch cfg.KVBackend {
	case "sqlite":
		return kv.NewSQLiteStore(cfg.SQLitePath)
	case "redis":
		return kv.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), nil
	default:
		return kv.NewMemStore(), nil
	}
}

func buildBlobStore(cfg config.Config) (blob.Store, error) {
	switch cfg.BlobBackend {
	case "gcs":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("agentd: gcs client: %w", err)
		}
		return blob.NewGCSStore(client, cfg.GCSBucket), nil
	default:
		return blob.NewLocalStore(cfg.BlobLocalDir, cfg.BlobBaseURL), nil
	}
}

func buildModelClient(cfg config.Config) *modelprovider.Client {
	apiKey := cfg.ModelAPIKey
	if apiKey == "" {
		cache := secure.NewCache(cfg.CredentialCache)
		if cached, ok, err := cache.Get(cfg.ModelProvider); err == nil && ok {
			apiKey = cached
		}
	}
	return modelprovider.NewClient(apiKey, cfg.ModelBaseURL, cfg.ModelID)
}

// #endregion wiring

// #region middleware

// requestLogger replaces the pack's zap-based gin middleware with an
// equivalent zerolog one, since this service's ambient logger is zerolog
// rather than zap.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		log.Info().
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("clientIP", c.ClientIP()).
			Msg("request")
	}
}

// #endregion middleware
