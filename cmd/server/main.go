/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the leave rules engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and environment config
  2. Parse command-line flags (override env)
  3. Initialize SQLite store
  4. Wire attendance tracker, eligibility gate and leave service
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides PORT)
  -db      SQLite database path (overrides DB_PATH)
           Use ":memory:" for an in-memory database

ELIGIBILITY GATE:
  An employee becomes eligible for leave credits after
  LEAVE_ELIGIBILITY_MONTHS (default 6) of tenure. Tenure comes from the
  hire date on the employee record; an unknown employee is ineligible.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  ./server -db="./data/leave.db"
  ./server -db=":memory:" -port=3000

SEE ALSO:
  - config/config.go: Environment configuration
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/BisoyJan/primehub-systems-sub013/api"
	"github.com/BisoyJan/primehub-systems-sub013/attendance"
	"github.com/BisoyJan/primehub-systems-sub013/config"
	"github.com/BisoyJan/primehub-systems-sub013/leave"
	"github.com/BisoyJan/primehub-systems-sub013/store/sqlite"
)

func main() {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Flags override env
	port := flag.Int("port", cfg.App.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DB.Path, "SQLite database path")
	flag.Parse()
	cfg.App.Port = *port
	cfg.DB.Path = *dbPath

	logger := newLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	store, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	tracker := attendance.NewTracker(store, logger)
	eligible := tenureEligibility(store, cfg.Leave.EligibilityMonths)
	service := leave.NewService(store, tracker, eligible, logger)

	handler := api.NewHandler(service, tracker, store)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server starting", "addr", server.Addr, "env", cfg.App.Env, "db", cfg.DB.Path)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// newLogger builds the process logger at the configured level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// tenureEligibility gates credit eligibility on months of tenure. Unknown
// employees are ineligible, so their credited requests convert to UPTO
// rather than failing.
func tenureEligibility(store *sqlite.Store, months int) leave.EligibilityFunc {
	return func(ctx context.Context, employeeID string, _ leave.Type, now time.Time) (bool, error) {
		emp, err := store.GetEmployee(ctx, employeeID)
		if err != nil {
			return false, err
		}
		if emp == nil {
			return false, nil
		}
		return !emp.HireDate.AddDate(0, months, 0).After(now), nil
	}
}
