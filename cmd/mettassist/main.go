package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/Fraol-M/metta-assistant/internal/ai"
	"github.com/Fraol-M/metta-assistant/internal/config"
	"github.com/Fraol-M/metta-assistant/internal/db"
	"github.com/Fraol-M/metta-assistant/internal/embedcache"
	"github.com/Fraol-M/metta-assistant/internal/handler"
	"github.com/Fraol-M/metta-assistant/internal/job"
	"github.com/Fraol-M/metta-assistant/internal/pkg/jwt"
	"github.com/Fraol-M/metta-assistant/internal/repo"
	"github.com/Fraol-M/metta-assistant/internal/schedule"
	"github.com/Fraol-M/metta-assistant/internal/service"
	"github.com/Fraol-M/metta-assistant/internal/source"
	"github.com/Fraol-M/metta-assistant/internal/vectorstore"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "mettassist",
		Short: "metta assistant backend server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the api server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			conn, err := db.Open(cfg.DB)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, conn)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logutil.GetLogger(ctx).Info("starting server",
		zap.Int("port", cfg.Port),
		zap.String("vector_store", cfg.VectorStore.Type),
		zap.String("ai_provider", cfg.AI.Provider),
	)

	userRepo := repo.NewUserRepo(conn)
	chunkRepo := repo.NewChunkRepo(conn)

	signer := jwt.NewSigner(
		[]byte(cfg.JWTSecret),
		time.Duration(cfg.AccessTTLMinutes)*time.Minute,
		time.Duration(cfg.RefreshTTLHours)*time.Hour,
	)

	provider, err := ai.NewProvider(cfg.AI.Provider, cfg.AI.Data)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}
	embedder := ai.NewEmbedder(provider, cfg.AI.Model)
	if cfg.AI.CacheSize > 0 {
		cacheTTL := time.Duration(cfg.AI.CacheTTLMinutes) * time.Minute
		if cacheTTL <= 0 {
			cacheTTL = time.Hour
		}
		embedder = embedcache.WrapLruCacheToEmbedder(embedder, cfg.AI.CacheSize, cacheTTL)
	}

	vectors, err := vectorstore.New(cfg.VectorStore, conn)
	if err != nil {
		return fmt.Errorf("init vector store: %w", err)
	}
	defer vectors.Close()

	fetcher, err := source.New(cfg.Source)
	if err != nil {
		return fmt.Errorf("init source fetcher: %w", err)
	}

	authService := service.NewAuthService(userRepo, signer)
	embedService := service.NewEmbedService(chunkRepo, embedder, vectors, cfg.Embed.BatchSize)
	searchService := service.NewSearchService(embedder, vectors)
	ingestService := service.NewIngestService(chunkRepo, fetcher)
	chunkService := service.NewChunkService(chunkRepo)

	if err := authService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	if cfg.Embed.Cron != "" {
		scheduler := schedule.NewScheduler()
		if err := scheduler.AddJob(job.NewEmbeddingJob(embedService), cfg.Embed.Cron); err != nil {
			return fmt.Errorf("schedule embedding job: %w", err)
		}
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	router := handler.NewRouter(handler.RouterDeps{
		Signer:      signer,
		Auth:        handler.NewAuthHandler(authService),
		Chunks:      handler.NewChunkHandler(ingestService, embedService, searchService, chunkService),
		Protected:   handler.NewProtectedHandler(),
		CORSOrigins: cfg.CORSOrigins,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		Handler: router,
	}
	logutil.GetLogger(ctx).Info("http server listening", zap.String("addr", server.Addr))

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
