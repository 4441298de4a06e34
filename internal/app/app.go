package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	nethttp "net/http"
	"os"
	"path/filepath"

	"newomega/server/internal/config"
	"newomega/server/internal/fights"
	servernet "newomega/server/internal/net"
	"newomega/server/internal/observability"
	"newomega/server/internal/store"
	"newomega/server/internal/telemetry"
	"newomega/server/logging"
	loggingSinks "newomega/server/logging/sinks"
)

// Options carries process-level dependencies that do not come from the
// configuration file.
type Options struct {
	Logger telemetry.Logger
}

// Run serves the fight API until ctx is cancelled or the listener fails.
func Run(ctx context.Context, cfg config.Config, opts Options) error {
	telemetryLogger := opts.Logger
	if telemetryLogger == nil {
		telemetryLogger = telemetry.WrapLogger(log.Default())
	}
	cfg = cfg.Normalized()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	metrics := &logging.Metrics{}
	router, err := NewLoggingRouter(cfg, metrics)
	if err != nil {
		return fmt.Errorf("failed to construct logging router: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			telemetryLogger.Printf("failed to close logging router: %v", cerr)
		}
	}()

	db, err := store.Open(ctx, cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("failed to open fight store: %w", err)
	}
	defer db.Close()

	service := fights.NewService(db, fights.Config{
		Publisher:     router,
		Logger:        telemetryLogger,
		Metrics:       telemetry.WrapMetrics(metrics),
		MaxRounds:     cfg.Rules.MaxRounds,
		Budget:        cfg.Rules.SimulateBudget,
		SeedRoot:      cfg.Rules.SeedRoot,
		ListLimit:     cfg.Rules.ListLimit,
		VerifyWorkers: cfg.Rules.VerifyWorkers,
	})

	handler := servernet.NewHTTPHandler(service, servernet.HTTPHandlerConfig{
		Logger:        telemetryLogger,
		Publisher:     router,
		Metrics:       metrics,
		Observability: observability.Config{EnablePprof: cfg.Server.EnablePprof},
	})

	srv := &nethttp.Server{Addr: cfg.Server.Addr, Handler: handler}
	errs := make(chan error, 1)
	go func() {
		telemetryLogger.Printf("server listening on %s", srv.Addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if errors.Is(err, nethttp.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// NewLoggingRouter builds the event router and the sinks named in cfg. Event
// counts land in metrics when it is non-nil.
func NewLoggingRouter(cfg config.Config, metrics *logging.Metrics) (*logging.Router, error) {
	logConfig := cfg.LoggingConfig()
	logConfig.Metrics = metrics
	var sinks []logging.NamedSink
	if logConfig.HasSink("console") {
		sinks = append(sinks, logging.NamedSink{Name: "console", Sink: loggingSinks.NewConsoleSink(os.Stdout, logConfig.Console)})
	}
	if logConfig.HasSink("json") {
		path := logConfig.JSON.FilePath
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create log directory: %w", err)
			}
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open json log: %w", err)
		}
		sinks = append(sinks, logging.NamedSink{Name: "json", Sink: &fileSink{JSON: loggingSinks.NewJSON(file, logConfig.JSON.FlushInterval), file: file}})
	}
	return logging.NewRouter(logging.ClockFunc(timeNow), logConfig, sinks)
}
