package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/mhang/tilemark/internal/cleanup"
	"github.com/mhang/tilemark/internal/config"
	"github.com/mhang/tilemark/internal/db"
	"github.com/mhang/tilemark/internal/diskstat"
	"github.com/mhang/tilemark/internal/handler"
	"github.com/mhang/tilemark/internal/media"
	"github.com/mhang/tilemark/internal/watermark"
	"github.com/mhang/tilemark/internal/worker"
)

func Run(ctx context.Context, cfg *config.Config) error {
	// Ensure data directories exist
	for _, dir := range []string{cfg.DataDir, filepath.Join(cfg.DataDir, "jobs")} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	media.FFmpegPath = cfg.FFmpegPath
	media.FFprobePath = cfg.FFprobePath

	fonts, err := watermark.NewFontProvisioner(cfg.FontPath)
	if err != nil {
		return err
	}
	slog.Info("font loaded", "path", fonts.Path())

	// Open database
	database, err := db.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer database.Close()

	// Run migrations
	if err := db.Migrate(database); err != nil {
		return err
	}
	slog.Info("database ready")

	pipeline := watermark.NewPipeline(fonts)

	// Start cleanup scheduler
	cleaner := &cleanup.Cleaner{
		DB:       database,
		DataDir:  cfg.DataDir,
		Interval: time.Duration(cfg.CleanupIntervalMins) * time.Minute,
		MaxAge:   time.Duration(cfg.JobMaxAgeHours) * time.Hour,
	}
	cleaner.Start(ctx)
	defer cleaner.Stop()

	// Start worker pool
	pool := worker.NewPool(database, cfg, pipeline)
	pool.Start(ctx)
	defer pool.Stop()

	// Rate limiter for API endpoints: 2 requests/second, burst of 60
	apiRL := handler.NewRateLimiter(2.0, 60)
	defer apiRL.Stop()

	// Start disk stats cache
	diskCache := diskstat.New(cfg.DataDir, 60*time.Second)
	diskCache.Start()
	defer diskCache.Stop()

	// Build handler and routes
	h := handler.New(database, cfg, diskCache)
	router := h.Routes(apiRL)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		slog.Info("shutting down server")
		srv.Shutdown(context.Background())
	}()

	slog.Info("server starting", "addr", cfg.ListenAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
