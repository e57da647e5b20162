package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/fairshare/internal/auth"
	"github.com/mmynk/fairshare/internal/billstore"
	"github.com/mmynk/fairshare/internal/config"
	"github.com/mmynk/fairshare/internal/extract"
	"github.com/mmynk/fairshare/internal/metrics"
	"github.com/mmynk/fairshare/internal/middleware"
	"github.com/mmynk/fairshare/internal/service"
	"github.com/mmynk/fairshare/internal/storage"
	"github.com/mmynk/fairshare/internal/storage/sqlite"
	"github.com/mmynk/fairshare/pkg/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("FAIRSHARE_CONFIG"))
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Setup structured logging
	logging.Configure(logging.Options{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
	})

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.Store.DSN)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "dsn", cfg.Store.DSN)

	tokens, err := auth.NewSessionTokens(cfg.Session.Secret, cfg.Session.TokenTTL)
	if err != nil {
		return err
	}
	if cfg.Session.Secret == "" {
		slog.Warn("No session secret configured, tokens will not survive a restart")
	}

	m := metrics.New()
	billstore.RejectHook = m.RejectedMutation

	var client extract.Client
	if cfg.ExtractionEnabled() {
		client = extract.NewClient(cfg.Anthropic.APIKey)
	} else {
		slog.Warn("ANTHROPIC_API_KEY not set, receipt extraction is disabled")
	}
	extractor := extract.NewService(client, extract.Config{
		Model:         cfg.Anthropic.Model,
		MaxTokens:     cfg.Anthropic.MaxTokens,
		RatePerMinute: cfg.Extract.RatePerMinute,
		MaxImageBytes: cfg.Extract.MaxImageBytes,
	})

	svc := service.NewBillService(store, tokens, extractor, m, cfg.Session.TTL)

	mux := http.NewServeMux()

	// Register Connect service
	path, handler := service.NewBillServiceHandler(svc, connect.WithInterceptors(
		middleware.MetricsInterceptor(m),
		middleware.RequireSession(tokens, service.PublicProcedures...),
		middleware.LoggingInterceptor(),
	))
	mux.Handle(path, handler)
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	if cfg.Server.StaticPath != "" {
		staticDir, err := filepath.Abs(cfg.Server.StaticPath)
		if err != nil {
			return fmt.Errorf("failed to resolve static path: %w", err)
		}
		slog.Info("Serving static files", "path", staticDir)
		mux.HandleFunc("/", staticHandler(staticDir))
	}

	// Add logging and CORS middleware, then wrap with h2c for HTTP/2 without TLS
	h2cHandler := h2c.NewHandler(loggingMiddleware(corsMiddleware(mux)), &http2.Server{})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           h2cHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Connect server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		purgeLoop(ctx, store, m, cfg.Session.PurgeInterval)
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// purgeLoop removes expired sessions every interval until ctx is done.
func purgeLoop(ctx context.Context, store storage.Store, m *metrics.Metrics, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := store.PurgeExpired(ctx, now)
			if err != nil {
				slog.Error("Failed to purge sessions", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("Purged expired sessions", "count", n)
			}
			if live, err := store.CountSessions(ctx); err == nil {
				m.SetActiveSessions(live)
			}
		}
	}
}

// staticHandler serves the frontend, falling back to index.html.
func staticHandler(staticDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Check if this is an API request (Connect RPC)
		if strings.HasPrefix(r.URL.Path, "/fairshare.v1.") {
			http.NotFound(w, r)
			return
		}

		urlPath := r.URL.Path
		if urlPath == "/" {
			urlPath = "/index.html"
		}

		filePath := filepath.Join(staticDir, filepath.Clean(urlPath))
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
			return
		}

		http.ServeFile(w, r, filePath)
	}
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
