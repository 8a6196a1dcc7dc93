package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Sternrassler/restext/internal/bookstore"
	"github.com/Sternrassler/restext/pkg/logging"
	"github.com/Sternrassler/restext/pkg/metrics"
	"github.com/Sternrassler/restext/pkg/settings"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "restext-demo: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Configuration from file and environment
	s, err := loadSettings(getEnv("RESTEXT_CONFIG", ""))
	if err != nil {
		return err
	}
	port := getEnv("PORT", "8080")
	dbPath := getEnv("DATABASE_PATH", "restext-demo.db")

	log := logging.Setup(logging.FromSettings(s))

	db, err := openDB(dbPath)
	if err != nil {
		return err
	}
	log.Info().Str("database", dbPath).Msg("database opened")

	app, err := bookstore.Open(db, s, true)
	if err != nil {
		return fmt.Errorf("open bookstore: %w", err)
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           newMux(app, db),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Int("routes", len(app.Routes())).Msg("starting restext demo server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loadSettings(path string) (settings.Settings, error) {
	s := settings.Default()
	if path != "" {
		var err error
		if s, err = settings.Load(path); err != nil {
			return s, err
		}
	}
	return settings.FromEnv(s)
}

func openDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	// sqlite serialises writers; one connection also keeps ":memory:"
	// databases shared.
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func newMux(app *bookstore.App, db *gorm.DB) http.Handler {
	mux := chi.NewRouter()
	mux.Get("/health", healthHandler)
	mux.Get("/ready", readyHandler(db))
	mux.Handle("/metrics", metrics.Handler())
	mux.Mount("/", app.Handler())
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

func readyHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			logger := logging.NewLogger("restext-demo")
			logger.Warn().Err(err).Msg("database not ready")
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
