package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/profitability/internal/app"
	"github.com/rpggio/profitability/internal/config"
	"github.com/rpggio/profitability/internal/mcp"
	"github.com/rpggio/profitability/internal/transport"
)

func main() {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == "stdio" {
		logWriter = os.Stderr
	}
	if cfg.Log.File != "" {
		fileWriter, file, err := newLogFileWriter(cfg.Log.File, cfg.Log.Truncate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer file.Close()
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := app.OpenDB(ctx, cfg.DB)
	if err != nil {
		logger.Error("failed to open database", "driver", cfg.DB.Driver, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	store := config.NewStore(cfg)
	if path := os.Getenv("PROFIT_CONFIG_PATH"); path != "" {
		go func() {
			if err := config.Watch(ctx, store, path, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("config watcher stopped", "error", err)
			}
		}()
	}

	a := app.New(db, store, app.Options{Logger: logger})
	mcpServer := mcp.NewServer(mcp.Config{
		Services:      a.Services(),
		Resolver:      a.Resolver(),
		AuthEnabled:   cfg.Auth.Enabled,
		TransportMode: cfg.Transport.Mode,
		DefaultViewer: cfg.Transport.ViewerID,
		Logger:        logger,
	})

	if cfg.Transport.Mode == "stdio" {
		runStdioMode(ctx, logger, mcpServer, cfg.Transport.ViewerID)
		return
	}

	var auth func(http.Handler) http.Handler
	if cfg.Auth.Enabled {
		auth = transport.AuthMiddleware(a.Resolver())
	}
	runHTTPMode(ctx, logger, mcpServer, transport.Config{
		Engine:        a.Engine,
		Auth:          auth,
		DefaultViewer: cfg.Transport.ViewerID,
		Logger:        logger,
	}, cfg.Server.Host, cfg.Server.Port)
}

func runStdioMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server, viewerID string) {
	logger.Info("starting stdio transport", "viewer_id", viewerID)

	// Run blocks until stdin closes or the context is canceled.
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("stdio server error", "error", err)
		os.Exit(1)
	}
}

func runHTTPMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server, httpCfg transport.Config, host string, port int) {
	httpCfg.MCP = sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)

	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           transport.NewServer(httpCfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", addr, "auth", httpCfg.Auth != nil)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

const (
	maxLogSizeBytes  = 6 * 1024 * 1024
	keepLogSizeBytes = 5 * 1024 * 1024
)

// logFileWriter appends to a file and keeps only its newest bytes once it
// outgrows maxLogSizeBytes.
type logFileWriter struct {
	path string
	file *os.File
	mu   sync.Mutex
}

func newLogFileWriter(path string, truncate bool) (*logFileWriter, *os.File, error) {
	if err := ensureLogDir(path); err != nil {
		return nil, nil, err
	}
	flags := os.O_CREATE | os.O_RDWR | os.O_APPEND
	if truncate {
		flags |= os.O_TRUNC
	}
	file, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, nil, err
	}
	writer := &logFileWriter{path: path, file: file}
	if err := writer.truncateIfNeeded(); err != nil {
		file.Close()
		return nil, nil, err
	}
	return writer, file, nil
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (w *logFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := w.file.Write(p)
	if err != nil {
		return n, err
	}
	if err := w.truncateIfNeeded(); err != nil {
		return n, err
	}
	return n, nil
}

func (w *logFileWriter) truncateIfNeeded() error {
	info, err := w.file.Stat()
	if err != nil {
		return err
	}
	size := info.Size()
	if size <= maxLogSizeBytes {
		return nil
	}

	buf := make([]byte, keepLogSizeBytes)
	n, err := w.file.ReadAt(buf, size-keepLogSizeBytes)
	if err != nil && err != io.EOF {
		return err
	}
	buf = buf[:n]

	if err := w.file.Truncate(0); err != nil {
		return err
	}
	// O_APPEND writes land at the new end.
	_, err = w.file.Write(buf)
	return err
}
