package serverrun

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	cfgpkg "github.com/rzbill/flume/internal/config"
	"github.com/rzbill/flume/internal/runtime"
	httpserver "github.com/rzbill/flume/internal/server/http"
	streamsvc "github.com/rzbill/flume/internal/services/streams"
	pebblestore "github.com/rzbill/flume/internal/storage/pebble"
	logpkg "github.com/rzbill/flume/pkg/log"
)

// getenv is swappable for tests.
var getenv = os.Getenv

func getenvDefault(key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

type Options struct {
	DataDir       string
	HTTPAddr      string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
}

// Run starts the HTTP server and blocks until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	// Layer a local signal context over the provided one so direct callers
	// get clean shutdown even without a signal-aware parent.
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.DataDir == "" {
		opts.DataDir = cfgpkg.DefaultDataDir()
	}
	storeDir := filepath.Join(opts.DataDir, "store")
	rt, err := runtime.Open(runtime.Options{
		DataDir:       storeDir,
		Fsync:         opts.Fsync,
		FsyncInterval: opts.FsyncInterval,
		Config:        opts.Config,
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	logCfg := &logpkg.Config{
		Level:  getenvDefault("FLUME_LOG_LEVEL", "info"),
		Format: getenvDefault("FLUME_LOG_FORMAT", "text"),
	}
	procLogger, err := logpkg.ApplyConfig(logCfg)
	if err != nil {
		procLogger = logpkg.NewLogger()
	}
	// Route stdlib logs (e.g., Pebble) through our logger.
	logpkg.RedirectStdLog(procLogger)

	procLogger.Info("Starting Flume server",
		logpkg.Str("http", opts.HTTPAddr),
		logpkg.Str("data_dir", opts.DataDir),
		logpkg.Str("level", logCfg.Level),
		logpkg.Str("format", logCfg.Format),
	)

	streams := streamsvc.NewWithLogger(rt, procLogger.With(logpkg.Component("streams")))
	hsrv := httpserver.NewWithService(rt, streams, procLogger.With(logpkg.Component("http")))

	if err := hsrv.ListenAndServe(sctx, opts.HTTPAddr); err != nil && sctx.Err() == nil {
		procLogger.Error("http server failed", logpkg.Err(err))
		return err
	}
	procLogger.Info("Flume server stopped")
	return nil
}
