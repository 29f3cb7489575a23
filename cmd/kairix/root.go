package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kairix/todo/internal/api"
	"github.com/kairix/todo/internal/auth"
	"github.com/kairix/todo/internal/config"
	"github.com/kairix/todo/internal/store"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags: -ldflags "-X main.Version=1.0.0"
var Version = "dev"

// Database overrides shared by every command.
var (
	dbDriverFlag string
	dbPathFlag   string
	dbDSNFlag    string
)

var rootCmd = &cobra.Command{
	Use:          "kairix",
	Short:        "Kairix - task tracking service",
	Long:         "Runs the task, tag and reminder HTTP service. Subcommands inspect the database offline.",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         run,
	Version:      Version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbDriverFlag, "db-driver", "",
		"Database driver: sqlite or postgres (overrides config and KAIRIX_DB_DRIVER)")
	rootCmd.PersistentFlags().StringVar(&dbPathFlag, "db-path", "",
		"SQLite database file (overrides config and KAIRIX_DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&dbDSNFlag, "db-dsn", "",
		"PostgreSQL connection string (overrides KAIRIX_DB_DSN)")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(apikeyCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func run(cmd *cobra.Command, args []string) error {
	// 1. Signal handling
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// 2. Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// 3. Initialize logger
	slog.SetDefault(newLogger(os.Stdout, cfg.Log))
	slog.Info("configuration loaded", "driver", cfg.Database.Driver, "level", cfg.Log.Level)

	// 4. Initialize store (migrations, WAL mode)
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	slog.Info("store initialized", "dialect", db.Dialect())

	// 5. Access gate
	keys := auth.NewKeyFile(cfg.Auth.KeysFile)
	logGateStatus(keys)

	// 6. Initialize HTTP router
	handler := api.NewHandler(db, keys, Version, api.SearchLimits{
		Default: cfg.Search.DefaultLimit,
		Max:     cfg.Search.MaxLimit,
	})
	srv := newHTTPServer(cfg.Server, api.NewRouter(handler))

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		db.Close()
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}

	return serve(ctx, srv, ln, db, time.Duration(cfg.Server.ShutdownTimeout))
}

// loadConfig loads configuration and applies the database flags on top.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dbDriverFlag != "" {
		cfg.Database.Driver = strings.ToLower(dbDriverFlag)
	}
	if dbPathFlag != "" {
		cfg.Database.Path = dbPathFlag
	}
	if dbDSNFlag != "" {
		cfg.Database.DSN = dbDSNFlag
	}
	return cfg, nil
}

// openStore connects to the configured database and applies migrations.
func openStore(cfg *config.Config) (*store.SQLStore, error) {
	dialect, err := store.ParseDialect(cfg.Database.Driver)
	if err != nil {
		return nil, err
	}
	target := cfg.Database.Target()
	if target == "" {
		if dialect == store.DialectPostgres {
			return nil, errors.New("postgres driver needs --db-dsn, KAIRIX_DB_DSN or DATABASE_URL")
		}
		return nil, errors.New("sqlite driver needs a database path")
	}
	return store.Open(dialect, target)
}

func newHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       time.Duration(cfg.ReadTimeout),
		ReadHeaderTimeout: time.Duration(cfg.ReadTimeout),
		WriteTimeout:      time.Duration(cfg.WriteTimeout),
	}
}

func logGateStatus(keys *auth.KeyFile) {
	enabled, err := keys.Enabled()
	switch {
	case err != nil:
		slog.Error("api key file unreadable, requests will fail", "path", keys.Path(), "error", err)
	case enabled:
		slog.Info("access gate enabled", "path", keys.Path())
	default:
		slog.Warn("api key file not found, access gate disabled", "path", keys.Path())
	}
}

// serve runs srv on ln until ctx is cancelled or the server fails, then
// drains in-flight requests and closes the store.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, db store.Store, shutdownTimeout time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "address", ln.Addr().String())
		// ErrServerClosed is the expected error when Shutdown() is called gracefully.
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			serveErr <- err
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown initiated")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	// Stop HTTP server (drains in-flight requests)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if err := db.Close(); err != nil {
		slog.Error("store close error", "error", err)
	}

	slog.Info("shutdown complete")

	select {
	case err := <-serveErr:
		return err
	default:
		return nil
	}
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
