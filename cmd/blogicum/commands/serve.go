// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"blogicum/internal/blog"
	"blogicum/internal/cache"
	"blogicum/internal/database"
	"blogicum/internal/handlers"
	"blogicum/internal/middleware"
	"blogicum/internal/render"
	"blogicum/internal/router"
	"blogicum/internal/session"
	"blogicum/internal/storage"
	"blogicum/internal/store"
)

const (
	// Login and code submissions allowed per client IP per window.
	loginAttempts = 10
	loginWindow   = time.Minute

	shutdownTimeout = 30 * time.Second
)

var seed bool

// serveCmd starts the web server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().BoolVar(&seed, "seed", false, "Load demo content first (development only)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL and run pending migrations.
	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if seed {
		if !cfg.IsDev() {
			return errors.New("--seed is only allowed in development")
		}
		if err := database.Seed(ctx, db); err != nil {
			return err
		}
	}

	// Connect to Valkey (session store).
	valkeyClient, err := cache.Connect(ctx, cache.Options{
		Host:     cfg.ValkeyHost,
		Port:     cfg.ValkeyPort,
		Password: cfg.ValkeyPassword,
	})
	if err != nil {
		return err
	}
	defer valkeyClient.Close()

	// In non-development environments, mark cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies, cfg.SessionTTL)

	// Post images go to S3 when configured, otherwise to MEDIA_DIR.
	blobs, mediaHandler, err := openBlobs()
	if err != nil {
		return err
	}
	images := storage.NewImages(blobs)

	renderer, err := render.New(render.Options{MediaURL: images.URL})
	if err != nil {
		return fmt.Errorf("initialize template renderer: %w", err)
	}

	userStore := store.NewUserStore(db)
	svc := blog.New(blog.Deps{
		Users:      userStore,
		Categories: store.NewCategoryStore(db),
		Locations:  store.NewLocationStore(db),
		Posts:      store.NewPostStore(db),
		Comments:   store.NewCommentStore(db),
		Images:     images,
	})

	// Create handler groups with their dependencies.
	base := handlers.NewBase(renderer, sessionStore, svc, cfg.LoginURL)

	limiter := middleware.NewRateLimiter(loginAttempts, loginWindow)
	limiter.OnLimit = http.HandlerFunc(base.TooManyRequests)

	var metrics *middleware.Metrics
	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics = middleware.NewMetrics(reg)

		mux := http.NewServeMux()
		mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		metricsSrv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			slog.Info("metrics listener starting", "addr", cfg.MetricsAddr)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics listener failed", "error", err)
			}
		}()
	}

	r, err := router.New(router.Deps{
		Sessions:     sessionStore,
		Base:         base,
		Public:       handlers.NewPublic(base),
		Posts:        handlers.NewPosts(base),
		Comments:     handlers.NewComments(base),
		Profile:      handlers.NewProfile(base),
		Auth:         handlers.NewAuth(base, userStore),
		LoginLimiter: limiter,
		Health: map[string]func(context.Context) error{
			"postgres": db.PingContext,
			"valkey":   cache.Check(valkeyClient),
		},
		Metrics:      metrics,
		Media:        mediaHandler,
		MediaPath:    cfg.MediaURL,
		LoginURL:     cfg.LoginURL,
		SecureCookie: secureCookies,
		TrustProxy:   cfg.TrustProxy,
	})
	if err != nil {
		return err
	}

	// Create the HTTP server with sensible timeouts. Reads allow for a
	// slow image upload.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if metricsSrv != nil {
		metricsSrv.Shutdown(shutdownCtx)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// openBlobs picks the image backend. The handler is non-nil only for the
// local directory, which the application serves itself.
func openBlobs() (storage.Blobs, http.Handler, error) {
	if cfg.S3Enabled() {
		s3, err := storage.NewS3(storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("initialize s3 storage: %w", err)
		}
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
		return s3, nil, nil
	}

	local, err := storage.NewLocal(cfg.MediaDir, cfg.MediaURL)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize media directory: %w", err)
	}
	if !strings.HasPrefix(cfg.MediaURL, "/") {
		slog.Warn("MEDIA_URL is not a local path, uploads are served by someone else", "media_url", cfg.MediaURL)
		return local, nil, nil
	}
	slog.Info("local media storage", "dir", cfg.MediaDir, "url", cfg.MediaURL)
	return local, local.Handler(), nil
}
