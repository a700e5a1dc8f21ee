//	@title			Buket API
//	@version		1.0
//	@description	Stores uploaded images in a GitHub repository and serves them through the jsDelivr CDN.
//
//	@host		localhost:3000
//	@BasePath	/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token, required on write endpoints when JWT_SECRET is set. Format: **Bearer {token}**

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/buket/service/internal/activity"
	"github.com/buket/service/internal/cdn"
	"github.com/buket/service/internal/config"
	"github.com/buket/service/internal/db"
	"github.com/buket/service/internal/image"
	"github.com/buket/service/internal/logger"
	"github.com/buket/service/internal/server"
	"github.com/buket/service/internal/storage"

	_ "github.com/buket/service/docs/swagger"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	zl, err := logger.New(logger.Options{
		Level:      cfg.LogLevel,
		Production: cfg.IsProduction(),
		File:       cfg.LogFile,
	})
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx := context.Background()

	store, urls, err := openStore(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("content store init failed", zap.String("backend", cfg.StorageBackend), zap.Error(err))
	}

	// Wire dependencies: store → service → handler
	var (
		svcOpts         []image.Option
		activityHandler *activity.Handler
	)
	if cfg.DatabaseURL != "" {
		pool, err := db.Connect(ctx, cfg.DatabaseURL, zl)
		if err != nil {
			zl.Fatal("database connection failed", zap.Error(err))
		}
		defer pool.Close()

		if err := db.Migrate(cfg.DatabaseURL, zl); err != nil {
			zl.Fatal("database migration failed", zap.Error(err))
		}

		events := activity.NewRepository(pool)
		svcOpts = append(svcOpts, image.WithRecorder(events))
		activityHandler = activity.NewHandler(events, zl)
	}

	imageSvc := image.NewService(store, urls, zl, svcOpts...)
	imageHandler := image.NewHandler(imageSvc, cfg.MaxUploadBytes, zl)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := server.NewRouter(server.Deps{
		Images:    imageHandler,
		Activity:  activityHandler,
		Registry:  registry,
		JWTSecret: cfg.JWTSecret,
		Log:       zl,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.UpstreamTimeout*2 + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		zl.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.AppEnv),
			zap.String("backend", cfg.StorageBackend),
			zap.Bool("auth", cfg.JWTSecret != ""),
			zap.Bool("activity", activityHandler != nil),
		)
		zl.Info("swagger UI at http://localhost:" + cfg.Port + "/swagger/")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zl.Info("shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("forced shutdown", zap.Error(err))
		return
	}

	zl.Info("server stopped")
}

// openStore builds the configured content store and the matching URL builder.
func openStore(ctx context.Context, cfg *config.Config, zl *zap.Logger) (storage.ContentStore, image.URLBuilder, error) {
	switch cfg.StorageBackend {
	case config.BackendMinio:
		store, err := storage.NewMinioStore(ctx, storage.MinioOptions{
			Endpoint:  cfg.StorageEndpoint,
			AccessKey: cfg.StorageAccessKey,
			SecretKey: cfg.StorageSecretKey,
			Bucket:    cfg.StorageBucket,
			Folder:    cfg.GitHubFolder,
			UseSSL:    cfg.StorageUseSSL,
		}, zl)
		if err != nil {
			return nil, nil, err
		}
		return store, cdn.Prefix{Base: cfg.StoragePublicBase, Folder: cfg.GitHubFolder}, nil
	default:
		store, err := storage.NewGitHubStore(storage.GitHubOptions{
			APIBase: cfg.GitHubAPIURL,
			Token:   cfg.GitHubToken,
			Owner:   cfg.GitHubUser,
			Repo:    cfg.GitHubRepo,
			Folder:  cfg.GitHubFolder,
			Timeout: cfg.UpstreamTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, cdn.JSDelivr{
			Base:   cfg.CDNBaseURL,
			Owner:  cfg.GitHubUser,
			Repo:   cfg.GitHubRepo,
			Folder: cfg.GitHubFolder,
		}, nil
	}
}
